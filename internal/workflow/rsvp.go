package workflow

import (
    "context"
    "fmt"

    "github.com/houseshow/houseshow/internal/model"
    "github.com/houseshow/houseshow/internal/repository"
)

// RSVPWorkflow drives guest admission: submission against a scheduled
// concert, the host's approve/decline/waitlist decision and guest
// cancellation.  Capacity accounting lives in the store layer under the
// concert lock; this layer enforces roles, standing and input rules.
type RSVPWorkflow struct {
    rsvps    RSVPStore
    concerts ConcertStore
    users    DirectoryStore
    capacity CapacityStore
    notifier Notifier
}

// NewRSVPWorkflow wires the RSVP workflow over its collaborators.
func NewRSVPWorkflow(rsvps RSVPStore, concerts ConcertStore, users DirectoryStore, capacity CapacityStore, notifier Notifier) *RSVPWorkflow {
    return &RSVPWorkflow{rsvps: rsvps, concerts: concerts, users: users, capacity: capacity, notifier: notifier}
}

// SubmitRSVPInput carries a guest's attendance request.
type SubmitRSVPInput struct {
    GuestCount      uint32 `json:"guest_count" validate:"required,min=1,max=10"`
    SpecialRequests string `json:"special_requests" validate:"max=1000"`
}

// Submit records an attendance request for a scheduled, future concert.  The
// request starts PENDING, or APPROVED immediately when the concert does not
// require approval and capacity allows.  One request per guest per concert.
func (w *RSVPWorkflow) Submit(ctx context.Context, actor model.Actor, concertID uint64, in SubmitRSVPInput) (*model.RSVP, error) {
    if actor.Role != model.RoleGuest {
        return nil, fmt.Errorf("submit rsvp: %w", repository.ErrForbidden)
    }
    if in.GuestCount < model.MinGuestCount || in.GuestCount > model.MaxGuestCount {
        return nil, invalid("guest_count",
            fmt.Sprintf("must be between %d and %d", model.MinGuestCount, model.MaxGuestCount))
    }

    user, err := w.users.GetByID(ctx, actor.ID)
    if err != nil {
        return nil, fmt.Errorf("submit rsvp: guest account: %w", err)
    }
    if !user.IsActive {
        return nil, fmt.Errorf("submit rsvp: account suspended: %w", repository.ErrForbidden)
    }

    concert, err := w.concerts.GetByID(ctx, concertID)
    if err != nil {
        return nil, fmt.Errorf("submit rsvp: %w", err)
    }
    if concert.Status != model.ConcertScheduled {
        return nil, fmt.Errorf("submit rsvp: concert is %s: %w", concert.Status, repository.ErrInvalidState)
    }
    if !futureDate(concert.EventDate) {
        return nil, invalid("concert", "the concert date has passed")
    }

    rsvp := &model.RSVP{
        ConcertID:       concertID,
        GuestID:         actor.ID,
        GuestCount:      in.GuestCount,
        SpecialRequests: in.SpecialRequests,
    }
    if err := w.rsvps.Submit(ctx, rsvp); err != nil {
        return nil, fmt.Errorf("submit rsvp: %w", err)
    }
    if rsvp.Status == model.RSVPApproved {
        emit(ctx, w.notifier, model.NotifyRSVPApproved, "rsvp", rsvp.ID, actor.ID)
    } else {
        emit(ctx, w.notifier, model.NotifyRSVPSubmitted, "rsvp", rsvp.ID, concert.VenueOperatorID)
    }
    return rsvp, nil
}

// DecideInput carries the host's decision on a pending request.
type DecideInput struct {
    Decision     string `json:"decision" validate:"required,oneof=APPROVED DECLINED WAITLISTED"`
    HostResponse string `json:"host_response" validate:"max=1000"`
}

// Decide resolves a pending request.  Approval re-validates capacity under
// the concert lock, so a decision made against a stale count still cannot
// admit more guests than the concert holds.
func (w *RSVPWorkflow) Decide(ctx context.Context, actor model.Actor, rsvpID uint64, in DecideInput) (*model.RSVP, error) {
    if actor.Role != model.RoleVenueOperator {
        return nil, fmt.Errorf("decide rsvp: %w", repository.ErrForbidden)
    }
    switch in.Decision {
    case model.RSVPApproved, model.RSVPDeclined, model.RSVPWaitlisted:
    default:
        return nil, invalid("decision", "must be APPROVED, DECLINED or WAITLISTED")
    }

    rsvp, err := w.rsvps.Decide(ctx, rsvpID, actor.ID, in.Decision, in.HostResponse)
    if err != nil {
        return nil, fmt.Errorf("decide rsvp: %w", err)
    }
    switch rsvp.Status {
    case model.RSVPApproved:
        emit(ctx, w.notifier, model.NotifyRSVPApproved, "rsvp", rsvp.ID, rsvp.GuestID)
    case model.RSVPDeclined:
        emit(ctx, w.notifier, model.NotifyRSVPDeclined, "rsvp", rsvp.ID, rsvp.GuestID)
    case model.RSVPWaitlisted:
        emit(ctx, w.notifier, model.NotifyRSVPWaitlisted, "rsvp", rsvp.ID, rsvp.GuestID)
    }
    return rsvp, nil
}

// Cancel withdraws the guest's own request before the concert date,
// releasing any capacity it held.
func (w *RSVPWorkflow) Cancel(ctx context.Context, actor model.Actor, rsvpID uint64) error {
    if actor.Role != model.RoleGuest {
        return fmt.Errorf("cancel rsvp: %w", repository.ErrForbidden)
    }
    rsvp, err := w.rsvps.Delete(ctx, rsvpID, actor.ID)
    if err != nil {
        return fmt.Errorf("cancel rsvp: %w", err)
    }
    if concert, err := w.concerts.GetByID(ctx, rsvp.ConcertID); err == nil {
        emit(ctx, w.notifier, model.NotifyRSVPCancelled, "rsvp", rsvp.ID, concert.VenueOperatorID)
    }
    return nil
}

// ListForConcert returns every request against a concert the actor operates.
func (w *RSVPWorkflow) ListForConcert(ctx context.Context, actor model.Actor, concertID uint64) ([]model.RSVP, error) {
    if actor.Role != model.RoleVenueOperator {
        return nil, fmt.Errorf("list rsvps: %w", repository.ErrForbidden)
    }
    rsvps, err := w.rsvps.ListByConcert(ctx, concertID, actor.ID)
    if err != nil {
        return nil, fmt.Errorf("list rsvps: %w", err)
    }
    return rsvps, nil
}

// ListMine returns the actor's own requests across concerts.
func (w *RSVPWorkflow) ListMine(ctx context.Context, actor model.Actor) ([]model.RSVP, error) {
    rsvps, err := w.rsvps.ListByGuest(ctx, actor.ID)
    if err != nil {
        return nil, fmt.Errorf("list rsvps: %w", err)
    }
    return rsvps, nil
}

// CapacityStatus reports the admission snapshot for a concert.
func (w *RSVPWorkflow) CapacityStatus(ctx context.Context, concertID uint64) (model.CapacityStatus, error) {
    status, err := w.capacity.Status(ctx, concertID)
    if err != nil {
        return model.CapacityStatus{}, fmt.Errorf("capacity status: %w", err)
    }
    return status, nil
}
