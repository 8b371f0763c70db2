// Package repository contains the data access layer: raw SQL against MySQL
// with caller- or repository-owned transactions.  This file defines the
// sentinel errors shared across repositories.  Higher layers match them with
// errors.Is and translate them to the API error taxonomy: validation 400,
// permission 403, not-found 404, duplicate/invalid-state/capacity 409.
package repository

import "errors"

// ErrForbidden is returned when the caller is not the actor a transition
// reserves: a non-respondent answering a booking, a non-host deciding an
// RSVP, and so on.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidState is returned when an entity is not in a state that permits
// the requested transition, including the case where a concurrently
// cancelled RSVP no longer exists at decision time.
var ErrInvalidState = errors.New("invalid state for transition")

// ErrCapacityExceeded is returned when admitting the requested guests would
// push a concert's approved total past its maximum capacity.  It is an
// expected outcome, not a failure: callers offer the waitlist instead.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// ErrDuplicateRSVP is returned when a guest already has an RSVP for the
// concert.  The UNIQUE (concert_id, guest_id) index raises it even under
// concurrent submission.
var ErrDuplicateRSVP = errors.New("duplicate rsvp for concert")

// ErrEmailExists is returned when registering an email that is already taken.
var ErrEmailExists = errors.New("email already exists")

// Not-found sentinels, one per aggregate.
var (
    ErrBookingNotFound = errors.New("booking not found")
    ErrConcertNotFound = errors.New("concert not found")
    ErrRSVPNotFound    = errors.New("rsvp not found")
    ErrProfileNotFound = errors.New("profile not found")
)
