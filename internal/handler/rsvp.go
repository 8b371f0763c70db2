package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/houseshow/houseshow/internal/workflow"
)

// RSVPHandler exposes the guest admission endpoints.
type RSVPHandler struct {
    RSVPs *workflow.RSVPWorkflow
}

func NewRSVPHandler(r *workflow.RSVPWorkflow) *RSVPHandler {
    return &RSVPHandler{RSVPs: r}
}

// Submit records the actor's attendance request for a concert.
func (h *RSVPHandler) Submit(c echo.Context) error {
    actor, ok := currentActor(c)
    if !ok {
        return unauthorized(c)
    }
    concertID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concert id"})
    }
    var req workflow.SubmitRSVPInput
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if err := c.Validate(&req); err != nil {
        return err
    }
    rsvp, err := h.RSVPs.Submit(c.Request().Context(), actor, concertID, req)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, rsvp)
}

// ListMine returns the actor's own requests across concerts.
func (h *RSVPHandler) ListMine(c echo.Context) error {
    actor, ok := currentActor(c)
    if !ok {
        return unauthorized(c)
    }
    rsvps, err := h.RSVPs.ListMine(c.Request().Context(), actor)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"rsvps": rsvps})
}

// ListForConcert returns every request against one of the actor's concerts.
func (h *RSVPHandler) ListForConcert(c echo.Context) error {
    actor, ok := currentActor(c)
    if !ok {
        return unauthorized(c)
    }
    concertID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concert id"})
    }
    rsvps, err := h.RSVPs.ListForConcert(c.Request().Context(), actor, concertID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"rsvps": rsvps})
}

// Decide resolves a pending request with approve, decline or waitlist.
func (h *RSVPHandler) Decide(c echo.Context) error {
    actor, ok := currentActor(c)
    if !ok {
        return unauthorized(c)
    }
    rsvpID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rsvp id"})
    }
    var req workflow.DecideInput
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if err := c.Validate(&req); err != nil {
        return err
    }
    rsvp, err := h.RSVPs.Decide(c.Request().Context(), actor, rsvpID, req)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, rsvp)
}

// Delete withdraws the actor's own request before the concert date.
func (h *RSVPHandler) Delete(c echo.Context) error {
    actor, ok := currentActor(c)
    if !ok {
        return unauthorized(c)
    }
    rsvpID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rsvp id"})
    }
    if err := h.RSVPs.Cancel(c.Request().Context(), actor, rsvpID); err != nil {
        return writeError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
