package model

import "time"

// Concert statuses.
const (
    ConcertScheduled = "SCHEDULED"
    ConcertLive      = "LIVE"
    ConcertCompleted = "COMPLETED"
    ConcertCancelled = "CANCELLED"
)

// Concert is the public event derived from a confirmed booking.  Exactly one
// concert exists per booking (enforced both in the confirm transaction and by
// a UNIQUE constraint on concerts.booking_id).  MaxCapacity is fixed at
// creation and never decreases below the approved admission count.
//
// Fields:
//  ID               – primary key identifier.
//  BookingID        – the confirmed booking this concert was derived from.
//  VenueOperatorID  – host of the concert (denormalized for ownership checks).
//  PerformerID      – performing act (denormalized for display).
//  Title            – audience-facing title.
//  Description      – audience-facing description.
//  EventDate        – concert date.
//  StartTime        – doors/start, "HH:MM" wall clock.
//  EndTime          – scheduled end, "HH:MM" wall clock.
//  MaxCapacity      – admission ceiling, always > 0.
//  DoorFeeCents     – suggested door fee in cents.
//  Public           – whether the concert appears in public browse.
//  RequiresApproval – false enables the RSVP auto-approval path.
//  Status           – one of the Concert* constants above.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last modification timestamp.
type Concert struct {
    ID               uint64    `json:"id"`
    BookingID        uint64    `json:"booking_id"`
    VenueOperatorID  uint64    `json:"venue_operator_id"`
    PerformerID      uint64    `json:"performer_id"`
    Title            string    `json:"title"`
    Description      string    `json:"description,omitempty"`
    EventDate        time.Time `json:"event_date"`
    StartTime        string    `json:"start_time"`
    EndTime          string    `json:"end_time"`
    MaxCapacity      uint32    `json:"max_capacity"`
    DoorFeeCents     uint32    `json:"door_fee_cents"`
    Public           bool      `json:"public"`
    RequiresApproval bool      `json:"requires_approval"`
    Status           string    `json:"status"`
    CreatedAt        time.Time `json:"created_at"`
    UpdatedAt        time.Time `json:"updated_at"`
}

// CapacityStatus is the admission snapshot returned by the capacity endpoint.
// AvailableSpots counts only against approved admissions; pending requests
// are reported separately so hosts can see demand.
type CapacityStatus struct {
    ConcertID      uint64 `json:"concert_id"`
    Approved       uint32 `json:"approved"`
    Pending        uint32 `json:"pending"`
    Maximum        uint32 `json:"maximum"`
    AvailableSpots uint32 `json:"available_spots"`
}
