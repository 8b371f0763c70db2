package model

import "time"

// Notification intent types emitted by the workflows.  One intent is
// published per state transition; delivery, retries and templating are the
// dispatcher's concern, not ours.
const (
    NotifyBookingRequested = "booking.requested"
    NotifyBookingConfirmed = "booking.confirmed"
    NotifyBookingDeclined  = "booking.declined"
    NotifyBookingCancelled = "booking.cancelled"
    NotifyConcertCancelled = "concert.cancelled"
    NotifyRSVPSubmitted    = "rsvp.submitted"
    NotifyRSVPApproved     = "rsvp.approved"
    NotifyRSVPDeclined     = "rsvp.declined"
    NotifyRSVPWaitlisted   = "rsvp.waitlisted"
    NotifyRSVPCancelled    = "rsvp.cancelled"
)

// NotificationIntent is the fire-and-forget record handed to the
// coordination notifier after a state transition commits.  The ID lets the
// downstream dispatcher deduplicate redeliveries.
type NotificationIntent struct {
    ID          string    `json:"id"`           // uuid assigned at emission
    Type        string    `json:"type"`         // one of the Notify* constants
    SubjectKind string    `json:"subject_kind"` // "booking" | "concert" | "rsvp"
    SubjectID   uint64    `json:"subject_id"`
    Recipients  []uint64  `json:"recipients"` // user ids to notify
    OccurredAt  time.Time `json:"occurred_at"`
}
