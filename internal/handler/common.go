package handler // handler defines the HTTP handlers for the API

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"

    "github.com/houseshow/houseshow/internal/middleware"
    "github.com/houseshow/houseshow/internal/model"
    "github.com/houseshow/houseshow/internal/repository"
    "github.com/houseshow/houseshow/internal/workflow"
)

// Validator adapts go-playground/validator to Echo's Validator interface.
// Register it on the Echo instance so handlers can call c.Validate.
type Validator struct {
    validate *validator.Validate
}

func NewValidator() *Validator {
    return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(i interface{}) error {
    if err := v.validate.Struct(i); err != nil {
        return echo.NewHTTPError(http.StatusBadRequest, err.Error())
    }
    return nil
}

// currentActor pulls the authenticated actor from the context.  Routes
// behind JWTAuth always have one; a missing actor means a wiring mistake.
func currentActor(c echo.Context) (model.Actor, bool) {
    return middleware.CurrentActor(c)
}

func unauthorized(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid id")
    }
    return id, nil
}

// writeError translates workflow and repository errors into HTTP responses:
// validation 400, forbidden 403, not found 404, conflicts 409, anything
// else 500.
func writeError(c echo.Context, err error) error {
    var ve *workflow.ValidationError
    switch {
    case errors.As(err, &ve):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, repository.ErrBookingNotFound),
        errors.Is(err, repository.ErrConcertNotFound),
        errors.Is(err, repository.ErrRSVPNotFound),
        errors.Is(err, repository.ErrProfileNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    case errors.Is(err, repository.ErrDuplicateRSVP):
        return c.JSON(http.StatusConflict, echo.Map{"error": "already requested"})
    case errors.Is(err, repository.ErrCapacityExceeded):
        return c.JSON(http.StatusConflict, echo.Map{"error": "capacity exceeded"})
    case errors.Is(err, repository.ErrInvalidState):
        return c.JSON(http.StatusConflict, echo.Map{"error": "conflicting state"})
    default:
        c.Logger().Errorf("internal error: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
}
