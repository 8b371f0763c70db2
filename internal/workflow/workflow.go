// Package workflow implements the booking and RSVP state machines.  The
// workflows validate input, enforce role capabilities, orchestrate the
// transactional store operations and emit notification intents.  They depend
// on narrow store interfaces so the state machines can be exercised without
// a database; the repository layer provides the production implementations.
package workflow

import (
    "context"
    "log"
    "time"

    "github.com/google/uuid"

    "github.com/houseshow/houseshow/internal/model"
)

// BookingStore is the persistence surface the booking workflow needs.
// Respond and Cancel are atomic: status check, status write and any concert
// cascade happen in one transaction with the booking row locked.
type BookingStore interface {
    Create(ctx context.Context, b *model.Booking) error
    GetByID(ctx context.Context, id uint64) (*model.Booking, error)
    ListForUser(ctx context.Context, userID uint64, role model.Role) ([]model.Booking, error)
    Respond(ctx context.Context, bookingID, actorID uint64, approve bool, responseMessage string, seed *model.Concert) (*model.Booking, *model.Concert, error)
    Cancel(ctx context.Context, bookingID, actorID uint64) (*model.Booking, *model.Concert, error)
}

// ConcertStore is the read surface over concerts.
type ConcertStore interface {
    GetByID(ctx context.Context, id uint64) (*model.Concert, error)
}

// RSVPStore is the persistence surface the RSVP workflow needs.  Submit,
// Decide and Delete are atomic and serialize per concert; Decide re-checks
// capacity under the concert lock.
type RSVPStore interface {
    Submit(ctx context.Context, rsvp *model.RSVP) error
    Decide(ctx context.Context, rsvpID, actorID uint64, decision, hostResponse string) (*model.RSVP, error)
    Delete(ctx context.Context, rsvpID, guestID uint64) (*model.RSVP, error)
    GetByID(ctx context.Context, id uint64) (*model.RSVP, error)
    ListByConcert(ctx context.Context, concertID, operatorID uint64) ([]model.RSVP, error)
    ListByGuest(ctx context.Context, guestID uint64) ([]model.RSVP, error)
}

// DirectoryStore resolves accounts and the role profiles the booking
// workflow validates against.
type DirectoryStore interface {
    GetByID(ctx context.Context, id uint64) (model.User, error)
    GetVenueProfile(ctx context.Context, userID uint64) (model.VenueProfile, error)
    GetPerformerProfile(ctx context.Context, userID uint64) (model.PerformerProfile, error)
}

// CapacityStore exposes the non-locking capacity snapshot.
type CapacityStore interface {
    Status(ctx context.Context, concertID uint64) (model.CapacityStatus, error)
}

// Notifier is the coordination notifier collaborator.  Publishing is
// fire-and-forget: a failed publish is logged by the workflows and never
// affects the state transition that triggered it.
type Notifier interface {
    Publish(ctx context.Context, intent model.NotificationIntent) error
}

// emit builds a notification intent for a committed transition and hands it
// to the notifier.  Errors are logged and swallowed.
func emit(ctx context.Context, n Notifier, intentType, subjectKind string, subjectID uint64, recipients ...uint64) {
    if n == nil {
        return
    }
    intent := model.NotificationIntent{
        ID:          uuid.NewString(),
        Type:        intentType,
        SubjectKind: subjectKind,
        SubjectID:   subjectID,
        Recipients:  recipients,
        OccurredAt:  time.Now().UTC(),
    }
    if err := n.Publish(ctx, intent); err != nil {
        log.Printf("notify: publish %s for %s/%d failed: %v", intentType, subjectKind, subjectID, err)
    }
}

// futureDate reports whether d falls strictly after today in UTC.
func futureDate(d time.Time) bool {
    now := time.Now().UTC()
    today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
    return d.After(today)
}
