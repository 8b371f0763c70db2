package model

import "time"

// RSVP statuses.  PENDING is the initial state unless the concert skips
// approval, in which case submission creates the record directly as
// APPROVED.  Guest cancellation deletes the record outright rather than
// moving it to a terminal state.
const (
    RSVPPending    = "PENDING"
    RSVPApproved   = "APPROVED"
    RSVPWaitlisted = "WAITLISTED"
    RSVPDeclined   = "DECLINED"
)

// GuestCount bounds for a single RSVP.
const (
    MinGuestCount = 1
    MaxGuestCount = 10
)

// RSVP is a guest's admission request against a concert.  At most one RSVP
// exists per (guest, concert) pair.  The sum of approved guest counts for a
// concert never exceeds the concert's maximum capacity; that invariant is
// enforced by the capacity ledger inside the submit/decide transactions.
//
// Fields:
//  ID              – primary key identifier.
//  ConcertID       – concert being requested.
//  GuestID         – requesting guest (users.id).
//  GuestCount      – party size, 1–10 inclusive.
//  SpecialRequests – free-text note to the host (optional).
//  HostResponse    – venue operator's note recorded at decision time.
//  Status          – one of the RSVP* constants above.
//  RequestedAt     – submission timestamp.
//  DecidedAt       – last status change (nil while PENDING).
type RSVP struct {
    ID              uint64     `json:"id"`
    ConcertID       uint64     `json:"concert_id"`
    GuestID         uint64     `json:"guest_id"`
    GuestCount      uint32     `json:"guest_count"`
    SpecialRequests string     `json:"special_requests,omitempty"`
    HostResponse    string     `json:"host_response,omitempty"`
    Status          string     `json:"status"`
    RequestedAt     time.Time  `json:"requested_at"`
    DecidedAt       *time.Time `json:"decided_at,omitempty"`
}
