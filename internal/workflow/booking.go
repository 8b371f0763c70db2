package workflow

import (
    "context"
    "fmt"
    "time"

    "github.com/houseshow/houseshow/internal/model"
    "github.com/houseshow/houseshow/internal/repository"
)

// BookingWorkflow drives the booking lifecycle from request through
// confirmation, decline or cancellation, creating the concert exactly once
// when a booking is confirmed.
type BookingWorkflow struct {
    bookings BookingStore
    users    DirectoryStore
    notifier Notifier
}

// NewBookingWorkflow wires the booking workflow over its collaborators.
func NewBookingWorkflow(bookings BookingStore, users DirectoryStore, notifier Notifier) *BookingWorkflow {
    return &BookingWorkflow{bookings: bookings, users: users, notifier: notifier}
}

// CreateBookingInput carries a new booking request.  CounterpartyID names
// the other party: the venue operator when a performer requests, the
// performer when a venue operator invites.
type CreateBookingInput struct {
    CounterpartyID     uint64                `json:"counterparty_id" validate:"required"`
    EventDate          time.Time             `json:"event_date" validate:"required"`
    StartTime          string                `json:"start_time" validate:"required"`
    DurationMin        uint32                `json:"duration_min" validate:"required,min=15,max=720"`
    ExpectedAttendance uint32                `json:"expected_attendance" validate:"required,min=1"`
    DoorFeeCents       uint32                `json:"door_fee_cents"`
    Message            string                `json:"message" validate:"max=2000"`
    Lodging            *model.LodgingRequest `json:"lodging,omitempty"`
}

// Create validates a booking request and records it as REQUESTED.  Both
// parties must hold complete profiles with contact details, the date must be
// in the future and the expected attendance may not exceed the venue's
// maximum capacity.
func (w *BookingWorkflow) Create(ctx context.Context, actor model.Actor, in CreateBookingInput) (*model.Booking, error) {
    var performerID, venueOperatorID uint64
    switch actor.Role {
    case model.RolePerformer:
        performerID, venueOperatorID = actor.ID, in.CounterpartyID
    case model.RoleVenueOperator:
        performerID, venueOperatorID = in.CounterpartyID, actor.ID
    default:
        return nil, fmt.Errorf("create booking: %w", repository.ErrForbidden)
    }
    if performerID == venueOperatorID {
        return nil, invalid("counterparty_id", "performer and venue operator must be different accounts")
    }
    if !futureDate(in.EventDate) {
        return nil, invalid("event_date", "must be a future date")
    }
    if _, err := parseClock(in.StartTime); err != nil {
        return nil, invalid("start_time", "must use HH:MM format")
    }
    if in.Lodging != nil {
        if in.Lodging.GuestCount == 0 || in.Lodging.Nights == 0 {
            return nil, invalid("lodging", "guest count and nights must be positive")
        }
    }

    performer, err := w.users.GetPerformerProfile(ctx, performerID)
    if err != nil {
        return nil, fmt.Errorf("create booking: performer profile: %w", err)
    }
    venue, err := w.users.GetVenueProfile(ctx, venueOperatorID)
    if err != nil {
        return nil, fmt.Errorf("create booking: venue profile: %w", err)
    }
    if performer.ContactPhone == "" || venue.ContactPhone == "" {
        return nil, invalid("contact", "both parties must have contact details on file")
    }
    if in.ExpectedAttendance > venue.MaxCapacity {
        return nil, invalid("expected_attendance",
            fmt.Sprintf("exceeds venue capacity of %d", venue.MaxCapacity))
    }

    booking := &model.Booking{
        PerformerID:        performerID,
        VenueOperatorID:    venueOperatorID,
        EventDate:          in.EventDate,
        StartTime:          in.StartTime,
        DurationMin:        in.DurationMin,
        ExpectedAttendance: in.ExpectedAttendance,
        DoorFeeCents:       in.DoorFeeCents,
        Message:            in.Message,
        Lodging:            in.Lodging,
        Status:             model.BookingRequested,
    }
    if err := w.bookings.Create(ctx, booking); err != nil {
        return nil, fmt.Errorf("create booking: %w", err)
    }
    counterparty := in.CounterpartyID
    emit(ctx, w.notifier, model.NotifyBookingRequested, "booking", booking.ID, counterparty)
    return booking, nil
}

// Get returns a booking to one of its parties.
func (w *BookingWorkflow) Get(ctx context.Context, actor model.Actor, bookingID uint64) (*model.Booking, error) {
    booking, err := w.bookings.GetByID(ctx, bookingID)
    if err != nil {
        return nil, fmt.Errorf("get booking: %w", err)
    }
    if !booking.IsParty(actor.ID) {
        return nil, fmt.Errorf("get booking: %w", repository.ErrForbidden)
    }
    return booking, nil
}

// ListMine returns the bookings the actor participates in, on the side
// matching their role.
func (w *BookingWorkflow) ListMine(ctx context.Context, actor model.Actor) ([]model.Booking, error) {
    if actor.Role != model.RolePerformer && actor.Role != model.RoleVenueOperator {
        return nil, fmt.Errorf("list bookings: %w", repository.ErrForbidden)
    }
    bookings, err := w.bookings.ListForUser(ctx, actor.ID, actor.Role)
    if err != nil {
        return nil, fmt.Errorf("list bookings: %w", err)
    }
    return bookings, nil
}

// RespondInput carries the venue operator's decision on a requested booking.
// The concert seed fields only apply when approving; zero values fall back to
// defaults derived from the booking and the parties' profiles.
type RespondInput struct {
    Approve          bool    `json:"approve"`
    Message          string  `json:"message" validate:"max=2000"`
    Title            string  `json:"title" validate:"max=200"`
    Description      string  `json:"description" validate:"max=2000"`
    Capacity         uint32  `json:"capacity"`
    Public           *bool   `json:"public,omitempty"`
    RequiresApproval *bool   `json:"requires_approval,omitempty"`
    DoorFeeCents     *uint32 `json:"door_fee_cents,omitempty"`
}

// Respond confirms or declines a requested booking.  Confirming creates the
// concert in the same transaction; the store guarantees at most one concert
// per booking even under concurrent responses.
func (w *BookingWorkflow) Respond(ctx context.Context, actor model.Actor, bookingID uint64, in RespondInput) (*model.Booking, *model.Concert, error) {
    if actor.Role != model.RoleVenueOperator {
        return nil, nil, fmt.Errorf("respond booking: %w", repository.ErrForbidden)
    }

    var seed *model.Concert
    if in.Approve {
        booking, err := w.bookings.GetByID(ctx, bookingID)
        if err != nil {
            return nil, nil, fmt.Errorf("respond booking: %w", err)
        }
        seed, err = w.concertSeed(ctx, booking, in)
        if err != nil {
            return nil, nil, err
        }
    }

    booking, concert, err := w.bookings.Respond(ctx, bookingID, actor.ID, in.Approve, in.Message, seed)
    if err != nil {
        return nil, nil, fmt.Errorf("respond booking: %w", err)
    }
    if in.Approve {
        emit(ctx, w.notifier, model.NotifyBookingConfirmed, "booking", booking.ID, booking.PerformerID)
    } else {
        emit(ctx, w.notifier, model.NotifyBookingDeclined, "booking", booking.ID, booking.PerformerID)
    }
    return booking, concert, nil
}

// concertSeed builds the concert row created alongside a confirmation.  The
// capacity comes from the request when given, otherwise from the venue
// profile's maximum.
func (w *BookingWorkflow) concertSeed(ctx context.Context, booking *model.Booking, in RespondInput) (*model.Concert, error) {
    venue, err := w.users.GetVenueProfile(ctx, booking.VenueOperatorID)
    if err != nil {
        return nil, fmt.Errorf("respond booking: venue profile: %w", err)
    }
    capacity := in.Capacity
    if capacity == 0 {
        capacity = venue.MaxCapacity
    }
    if capacity == 0 {
        return nil, invalid("capacity", "a positive capacity is required to confirm")
    }
    if capacity > venue.MaxCapacity {
        return nil, invalid("capacity",
            fmt.Sprintf("exceeds venue capacity of %d", venue.MaxCapacity))
    }

    title := in.Title
    if title == "" {
        performer, err := w.users.GetPerformerProfile(ctx, booking.PerformerID)
        if err != nil {
            return nil, fmt.Errorf("respond booking: performer profile: %w", err)
        }
        title = fmt.Sprintf("%s at %s", performer.ActName, venue.VenueName)
    }
    doorFee := booking.DoorFeeCents
    if in.DoorFeeCents != nil {
        doorFee = *in.DoorFeeCents
    }
    public := true
    if in.Public != nil {
        public = *in.Public
    }
    requiresApproval := true
    if in.RequiresApproval != nil {
        requiresApproval = *in.RequiresApproval
    }
    return &model.Concert{
        Title:            title,
        Description:      in.Description,
        StartTime:        booking.StartTime,
        EndTime:          endClock(booking.StartTime, booking.DurationMin),
        MaxCapacity:      capacity,
        DoorFeeCents:     doorFee,
        Public:           public,
        RequiresApproval: requiresApproval,
        Status:           model.ConcertScheduled,
    }, nil
}

// Cancel withdraws a booking on the performer's behalf.  Cancelling a
// confirmed booking cascades to the concert; its RSVPs stay untouched as a
// record of who had planned to attend.
func (w *BookingWorkflow) Cancel(ctx context.Context, actor model.Actor, bookingID uint64) (*model.Booking, error) {
    if actor.Role != model.RolePerformer {
        return nil, fmt.Errorf("cancel booking: %w", repository.ErrForbidden)
    }
    booking, concert, err := w.bookings.Cancel(ctx, bookingID, actor.ID)
    if err != nil {
        return nil, fmt.Errorf("cancel booking: %w", err)
    }
    emit(ctx, w.notifier, model.NotifyBookingCancelled, "booking", booking.ID, booking.VenueOperatorID)
    if concert != nil {
        emit(ctx, w.notifier, model.NotifyConcertCancelled, "concert", concert.ID, booking.VenueOperatorID)
    }
    return booking, nil
}

// parseClock parses an HH:MM wall-clock value.
func parseClock(s string) (time.Time, error) {
    return time.Parse("15:04", s)
}

// endClock adds a duration in minutes to an HH:MM start, wrapping past
// midnight.  The start is validated before any caller reaches this point.
func endClock(start string, durationMin uint32) string {
    t, err := parseClock(start)
    if err != nil {
        return start
    }
    return t.Add(time.Duration(durationMin) * time.Minute).Format("15:04")
}
