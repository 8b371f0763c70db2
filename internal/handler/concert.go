package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/houseshow/houseshow/internal/repository"
    "github.com/houseshow/houseshow/internal/workflow"
)

// ConcertHandler exposes concert browsing and the capacity snapshot.  The
// public routes sit behind the Redis response cache.
type ConcertHandler struct {
    Concerts *repository.ConcertRepo
    RSVPs    *workflow.RSVPWorkflow
}

func NewConcertHandler(concerts *repository.ConcertRepo, rsvps *workflow.RSVPWorkflow) *ConcertHandler {
    return &ConcertHandler{Concerts: concerts, RSVPs: rsvps}
}

// ListPublic returns upcoming publicly listed concerts.
func (h *ConcertHandler) ListPublic(c echo.Context) error {
    concerts, err := h.Concerts.ListPublicUpcoming(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"concerts": concerts})
}

// Get returns a single concert.
func (h *ConcertHandler) Get(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concert id"})
    }
    concert, err := h.Concerts.GetByID(c.Request().Context(), id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, concert)
}

// Capacity reports the admission snapshot for a concert.
func (h *ConcertHandler) Capacity(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concert id"})
    }
    status, err := h.RSVPs.CapacityStatus(c.Request().Context(), id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, status)
}

// ListMine returns the concerts the authenticated venue operator hosts.
func (h *ConcertHandler) ListMine(c echo.Context) error {
    actor, ok := currentActor(c)
    if !ok {
        return unauthorized(c)
    }
    concerts, err := h.Concerts.ListByOperator(c.Request().Context(), actor.ID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"concerts": concerts})
}
