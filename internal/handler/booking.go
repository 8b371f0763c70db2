package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/houseshow/houseshow/internal/model"
    "github.com/houseshow/houseshow/internal/workflow"
)

// BookingHandler exposes the booking lifecycle endpoints.
type BookingHandler struct {
    Bookings *workflow.BookingWorkflow
}

func NewBookingHandler(b *workflow.BookingWorkflow) *BookingHandler {
    return &BookingHandler{Bookings: b}
}

type createBookingReq struct {
    CounterpartyID     uint64                `json:"counterparty_id" validate:"required"`
    EventDate          string                `json:"event_date" validate:"required"` // YYYY-MM-DD
    StartTime          string                `json:"start_time" validate:"required"`
    DurationMin        uint32                `json:"duration_min" validate:"required,min=15,max=720"`
    ExpectedAttendance uint32                `json:"expected_attendance" validate:"required,min=1"`
    DoorFeeCents       uint32                `json:"door_fee_cents"`
    Message            string                `json:"message" validate:"max=2000"`
    Lodging            *model.LodgingRequest `json:"lodging,omitempty"`
}

// Create records a new booking request between the actor and the
// counterparty.
func (h *BookingHandler) Create(c echo.Context) error {
    actor, ok := currentActor(c)
    if !ok {
        return unauthorized(c)
    }
    var req createBookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if err := c.Validate(&req); err != nil {
        return err
    }
    date, err := time.Parse("2006-01-02", req.EventDate)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_date must be YYYY-MM-DD"})
    }

    booking, err := h.Bookings.Create(c.Request().Context(), actor, workflow.CreateBookingInput{
        CounterpartyID:     req.CounterpartyID,
        EventDate:          date,
        StartTime:          req.StartTime,
        DurationMin:        req.DurationMin,
        ExpectedAttendance: req.ExpectedAttendance,
        DoorFeeCents:       req.DoorFeeCents,
        Message:            req.Message,
        Lodging:            req.Lodging,
    })
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, booking)
}

// List returns the actor's bookings.
func (h *BookingHandler) List(c echo.Context) error {
    actor, ok := currentActor(c)
    if !ok {
        return unauthorized(c)
    }
    bookings, err := h.Bookings.ListMine(c.Request().Context(), actor)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// Get returns one booking to one of its parties.
func (h *BookingHandler) Get(c echo.Context) error {
    actor, ok := currentActor(c)
    if !ok {
        return unauthorized(c)
    }
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    booking, err := h.Bookings.Get(c.Request().Context(), actor, id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, booking)
}

// Respond confirms or declines a requested booking.  Confirmation returns
// the newly created concert alongside the booking.
func (h *BookingHandler) Respond(c echo.Context) error {
    actor, ok := currentActor(c)
    if !ok {
        return unauthorized(c)
    }
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    var req workflow.RespondInput
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if err := c.Validate(&req); err != nil {
        return err
    }
    booking, concert, err := h.Bookings.Respond(c.Request().Context(), actor, id, req)
    if err != nil {
        return writeError(c, err)
    }
    resp := echo.Map{"booking": booking}
    if concert != nil {
        resp["concert"] = concert
    }
    return c.JSON(http.StatusOK, resp)
}

// Cancel withdraws a booking; confirmed bookings cascade to their concert.
func (h *BookingHandler) Cancel(c echo.Context) error {
    actor, ok := currentActor(c)
    if !ok {
        return unauthorized(c)
    }
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    booking, err := h.Bookings.Cancel(c.Request().Context(), actor, id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, booking)
}
