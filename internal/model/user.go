package model

import "time"

// User is an account row from the `users` table.  Passwords are stored as
// bcrypt hashes only.  IsActive doubles as the good-standing flag consulted
// by RSVP submission.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique, lowercased email address.
//  PasswordHash – bcrypt hash of the password.
//  Role         – the account's role (see Role constants).
//  IsActive     – whether the account is in good standing.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type User struct {
    ID           uint64    `json:"id"`
    Email        string    `json:"email"`
    PasswordHash string    `json:"-"`
    Role         Role      `json:"role"`
    IsActive     bool      `json:"is_active"`
    CreatedAt    time.Time `json:"created_at"`
    UpdatedAt    time.Time `json:"updated_at"`
}

// VenueProfile carries the venue-operator facts the booking workflow reads:
// the declared maximum capacity caps a booking's expected attendance and is
// the default concert capacity at confirmation, and the contact phone is a
// required field for accepting booking requests.
type VenueProfile struct {
    UserID       uint64 `json:"user_id"`
    VenueName    string `json:"venue_name"`
    City         string `json:"city"`
    MaxCapacity  uint32 `json:"max_capacity"`
    ContactPhone string `json:"contact_phone"`
}

// PerformerProfile describes a performing act.  The contact phone is a
// required field for creating booking requests.
type PerformerProfile struct {
    UserID       uint64 `json:"user_id"`
    ActName      string `json:"act_name"`
    Genre        string `json:"genre,omitempty"`
    ContactPhone string `json:"contact_phone"`
}

// Session models a row in the `sessions` table.  Only the SHA-256 hash of
// the refresh token is stored.
type Session struct {
    ID        uint64     `json:"id"`
    UserID    uint64     `json:"user_id"`
    TokenHash string     `json:"-"`
    ExpiresAt time.Time  `json:"expires_at"`
    RevokedAt *time.Time `json:"revoked_at,omitempty"`
    CreatedAt time.Time  `json:"created_at"`
}
