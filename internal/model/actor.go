package model

// Role is the closed set of actor roles understood by the workflows.
// The role is resolved exactly once at the API boundary (JWT middleware)
// and passed into business logic as part of an Actor value; handlers and
// workflows never re-derive it from session data.
type Role string

const (
    RolePerformer     Role = "PERFORMER"      // books venues for performances
    RoleVenueOperator Role = "VENUE_OPERATOR" // hosts concerts, decides bookings and RSVPs
    RoleGuest         Role = "GUEST"          // requests admission to concerts
    RoleAdministrator Role = "ADMINISTRATOR"  // operational access, no special workflow powers
)

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
    switch r {
    case RolePerformer, RoleVenueOperator, RoleGuest, RoleAdministrator:
        return true
    }
    return false
}

// Actor is the authenticated identity performing an operation.  It is the
// typed capability handed to the workflow layer.
//
// Fields:
//  ID   – stable user identifier (users.id).
//  Role – the actor's resolved role.
type Actor struct {
    ID   uint64 // users.id
    Role Role   // resolved role claim
}
