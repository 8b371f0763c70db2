package model

import "time"

// Booking statuses.  REQUESTED is the initial state; DECLINED, CANCELLED
// and CONFIRMED are terminal for the booking workflow (CONFIRMED spawns a
// dependent concert lifecycle).
const (
    BookingRequested = "REQUESTED"
    BookingConfirmed = "CONFIRMED"
    BookingDeclined  = "DECLINED"
    BookingCancelled = "CANCELLED"
)

// Booking is a negotiation between a performer and a venue operator for a
// single performance date.  Parties are immutable after creation; the
// timestamps are each set exactly once and are monotonically non-decreasing.
//
// Fields:
//  ID                 – primary key identifier.
//  PerformerID        – requesting performer (users.id).
//  VenueOperatorID    – responding venue operator (users.id).
//  EventDate          – requested performance date (date portion meaningful).
//  StartTime          – requested start, "HH:MM" wall clock at the venue.
//  DurationMin        – estimated set length in minutes.
//  ExpectedAttendance – performer's audience estimate.
//  DoorFeeCents       – proposed door fee / guarantee in cents.
//  Message            – requester's free-text note (optional).
//  ResponseMessage    – responder's free-text note (optional).
//  Lodging            – lodging sub-request, nil when not requested.
//  Status             – one of the Booking* constants above.
//  CreatedAt          – when the request was made.
//  RespondedAt        – when the venue operator responded (nil until then).
//  ConfirmedAt        – when the booking was confirmed (nil unless CONFIRMED).
type Booking struct {
    ID                 uint64          `json:"id"`
    PerformerID        uint64          `json:"performer_id"`
    VenueOperatorID    uint64          `json:"venue_operator_id"`
    EventDate          time.Time       `json:"event_date"`
    StartTime          string          `json:"start_time"`
    DurationMin        uint32          `json:"duration_min"`
    ExpectedAttendance uint32          `json:"expected_attendance"`
    DoorFeeCents       uint32          `json:"door_fee_cents"`
    Message            string          `json:"message,omitempty"`
    ResponseMessage    string          `json:"response_message,omitempty"`
    Lodging            *LodgingRequest `json:"lodging,omitempty"`
    Status             string          `json:"status"`
    CreatedAt          time.Time       `json:"created_at"`
    RespondedAt        *time.Time      `json:"responded_at,omitempty"`
    ConfirmedAt        *time.Time      `json:"confirmed_at,omitempty"`
}

// LodgingRequest is the structured detail blob of a lodging sub-request.
// The booking workflow treats it as opaque beyond presence/absence.
type LodgingRequest struct {
    GuestCount   uint32 `json:"guest_count"`
    Nights       uint32 `json:"nights"`
    SpecialNeeds string `json:"special_needs,omitempty"`
}

// IsParty reports whether the given user is one of the two booking parties.
func (b *Booking) IsParty(userID uint64) bool {
    return userID == b.PerformerID || userID == b.VenueOperatorID
}
