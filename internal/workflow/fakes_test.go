package workflow_test

import (
    "context"
    "sync"
    "time"

    "github.com/houseshow/houseshow/internal/model"
    "github.com/houseshow/houseshow/internal/repository"
    "github.com/houseshow/houseshow/internal/workflow"
)

// newEnv wires both workflows over one shared in-memory store.
func newEnv() (*memStore, *captureNotifier, *workflow.BookingWorkflow, *workflow.RSVPWorkflow) {
    store := newMemStore()
    notifier := &captureNotifier{}
    bookings := workflow.NewBookingWorkflow(bookingStoreFake{store}, store, notifier)
    rsvps := workflow.NewRSVPWorkflow(rsvpStoreFake{store}, concertStoreFake{store}, store, store, notifier)
    return store, notifier, bookings, rsvps
}

// memStore is an in-memory stand-in for the repository layer.  A single
// mutex plays the role the concert row lock plays in MySQL: every mutating
// operation holds it end to end, so interleavings observe the same
// serialization the production stores guarantee.
type memStore struct {
    mu     sync.Mutex
    nextID uint64

    users      map[uint64]model.User
    venues     map[uint64]model.VenueProfile
    performers map[uint64]model.PerformerProfile

    bookings         map[uint64]*model.Booking
    concerts         map[uint64]*model.Concert
    concertByBooking map[uint64]uint64
    rsvps            map[uint64]*model.RSVP
}

func newMemStore() *memStore {
    return &memStore{
        users:            make(map[uint64]model.User),
        venues:           make(map[uint64]model.VenueProfile),
        performers:       make(map[uint64]model.PerformerProfile),
        bookings:         make(map[uint64]*model.Booking),
        concerts:         make(map[uint64]*model.Concert),
        concertByBooking: make(map[uint64]uint64),
        rsvps:            make(map[uint64]*model.RSVP),
    }
}

func (s *memStore) id() uint64 {
    s.nextID++
    return s.nextID
}

// addVenueOperator seeds an active venue operator with a profile.
func (s *memStore) addVenueOperator(id uint64, maxCapacity uint32) {
    s.users[id] = model.User{ID: id, Role: model.RoleVenueOperator, IsActive: true}
    s.venues[id] = model.VenueProfile{
        UserID: id, VenueName: "The Basement", City: "Portland",
        MaxCapacity: maxCapacity, ContactPhone: "555-0101",
    }
}

// addPerformer seeds an active performer with a profile.
func (s *memStore) addPerformer(id uint64) {
    s.users[id] = model.User{ID: id, Role: model.RolePerformer, IsActive: true}
    s.performers[id] = model.PerformerProfile{
        UserID: id, ActName: "Night Shift", Genre: "indie", ContactPhone: "555-0102",
    }
}

// addGuest seeds a guest account; active controls good standing.
func (s *memStore) addGuest(id uint64, active bool) {
    s.users[id] = model.User{ID: id, Role: model.RoleGuest, IsActive: active}
}

// addConcert seeds a scheduled concert directly, bypassing the booking flow.
func (s *memStore) addConcert(c model.Concert) uint64 {
    s.mu.Lock()
    defer s.mu.Unlock()
    c.ID = s.id()
    if c.Status == "" {
        c.Status = model.ConcertScheduled
    }
    s.concerts[c.ID] = &c
    return c.ID
}

// DirectoryStore

func (s *memStore) GetByID(ctx context.Context, id uint64) (model.User, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    u, ok := s.users[id]
    if !ok {
        return model.User{}, repository.ErrProfileNotFound
    }
    return u, nil
}

func (s *memStore) GetVenueProfile(ctx context.Context, userID uint64) (model.VenueProfile, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    p, ok := s.venues[userID]
    if !ok {
        return model.VenueProfile{}, repository.ErrProfileNotFound
    }
    return p, nil
}

func (s *memStore) GetPerformerProfile(ctx context.Context, userID uint64) (model.PerformerProfile, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    p, ok := s.performers[userID]
    if !ok {
        return model.PerformerProfile{}, repository.ErrProfileNotFound
    }
    return p, nil
}

// BookingStore

func (s *memStore) Create(ctx context.Context, b *model.Booking) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    b.ID = s.id()
    b.CreatedAt = time.Now().UTC()
    cp := *b
    s.bookings[b.ID] = &cp
    return nil
}

func (s *memStore) GetBooking(id uint64) (*model.Booking, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    b, ok := s.bookings[id]
    if !ok {
        return nil, false
    }
    cp := *b
    return &cp, true
}

func (s *memStore) GetByIDBooking(ctx context.Context, id uint64) (*model.Booking, error) {
    b, ok := s.GetBooking(id)
    if !ok {
        return nil, repository.ErrBookingNotFound
    }
    return b, nil
}

func (s *memStore) ListForUser(ctx context.Context, userID uint64, role model.Role) ([]model.Booking, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []model.Booking
    for _, b := range s.bookings {
        if (role == model.RolePerformer && b.PerformerID == userID) ||
            (role == model.RoleVenueOperator && b.VenueOperatorID == userID) {
            out = append(out, *b)
        }
    }
    return out, nil
}

func (s *memStore) Respond(ctx context.Context, bookingID, actorID uint64, approve bool, responseMessage string, seed *model.Concert) (*model.Booking, *model.Concert, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    b, ok := s.bookings[bookingID]
    if !ok {
        return nil, nil, repository.ErrBookingNotFound
    }
    if b.VenueOperatorID != actorID {
        return nil, nil, repository.ErrForbidden
    }
    if b.Status != model.BookingRequested {
        return nil, nil, repository.ErrInvalidState
    }
    now := time.Now().UTC()
    b.ResponseMessage = responseMessage
    b.RespondedAt = &now
    if !approve {
        b.Status = model.BookingDeclined
        cp := *b
        return &cp, nil, nil
    }
    if _, exists := s.concertByBooking[bookingID]; exists {
        return nil, nil, repository.ErrInvalidState
    }
    b.Status = model.BookingConfirmed
    b.ConfirmedAt = &now
    concert := *seed
    concert.ID = s.id()
    concert.BookingID = bookingID
    concert.PerformerID = b.PerformerID
    concert.VenueOperatorID = b.VenueOperatorID
    concert.EventDate = b.EventDate
    concert.CreatedAt = now
    s.concerts[concert.ID] = &concert
    s.concertByBooking[bookingID] = concert.ID
    bcp, ccp := *b, concert
    return &bcp, &ccp, nil
}

func (s *memStore) Cancel(ctx context.Context, bookingID, actorID uint64) (*model.Booking, *model.Concert, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    b, ok := s.bookings[bookingID]
    if !ok {
        return nil, nil, repository.ErrBookingNotFound
    }
    if b.PerformerID != actorID {
        return nil, nil, repository.ErrForbidden
    }
    if b.Status != model.BookingRequested && b.Status != model.BookingConfirmed {
        return nil, nil, repository.ErrInvalidState
    }
    wasConfirmed := b.Status == model.BookingConfirmed
    b.Status = model.BookingCancelled
    var ccp *model.Concert
    if wasConfirmed {
        if cid, exists := s.concertByBooking[bookingID]; exists {
            c := s.concerts[cid]
            if c.Status != model.ConcertCancelled {
                c.Status = model.ConcertCancelled
            }
            cp := *c
            ccp = &cp
        }
    }
    bcp := *b
    return &bcp, ccp, nil
}

// ConcertStore

func (s *memStore) GetConcert(ctx context.Context, id uint64) (*model.Concert, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    c, ok := s.concerts[id]
    if !ok {
        return nil, repository.ErrConcertNotFound
    }
    cp := *c
    return &cp, nil
}

// RSVPStore

// committedLocked sums approved and pending guest counts.  Callers hold mu.
func (s *memStore) committedLocked(concertID uint64) (approved, pending uint32) {
    for _, r := range s.rsvps {
        if r.ConcertID != concertID {
            continue
        }
        switch r.Status {
        case model.RSVPApproved:
            approved += r.GuestCount
        case model.RSVPPending:
            pending += r.GuestCount
        }
    }
    return approved, pending
}

func (s *memStore) Submit(ctx context.Context, rsvp *model.RSVP) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    concert, ok := s.concerts[rsvp.ConcertID]
    if !ok {
        return repository.ErrConcertNotFound
    }
    if concert.Status != model.ConcertScheduled {
        return repository.ErrInvalidState
    }
    for _, r := range s.rsvps {
        if r.ConcertID == rsvp.ConcertID && r.GuestID == rsvp.GuestID {
            return repository.ErrDuplicateRSVP
        }
    }
    approved, pending := s.committedLocked(rsvp.ConcertID)
    if approved+pending+rsvp.GuestCount > concert.MaxCapacity {
        return repository.ErrCapacityExceeded
    }
    rsvp.Status = model.RSVPPending
    if !concert.RequiresApproval {
        rsvp.Status = model.RSVPApproved
    }
    rsvp.ID = s.id()
    rsvp.RequestedAt = time.Now().UTC()
    cp := *rsvp
    s.rsvps[rsvp.ID] = &cp
    return nil
}

func (s *memStore) Decide(ctx context.Context, rsvpID, actorID uint64, decision, hostResponse string) (*model.RSVP, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    r, ok := s.rsvps[rsvpID]
    if !ok {
        return nil, repository.ErrInvalidState
    }
    concert := s.concerts[r.ConcertID]
    if concert.VenueOperatorID != actorID {
        return nil, repository.ErrForbidden
    }
    if r.Status != model.RSVPPending {
        return nil, repository.ErrInvalidState
    }
    if decision == model.RSVPApproved {
        approved, _ := s.committedLocked(r.ConcertID)
        if approved+r.GuestCount > concert.MaxCapacity {
            return nil, repository.ErrCapacityExceeded
        }
    }
    now := time.Now().UTC()
    r.Status = decision
    r.HostResponse = hostResponse
    r.DecidedAt = &now
    cp := *r
    return &cp, nil
}

func (s *memStore) Delete(ctx context.Context, rsvpID, guestID uint64) (*model.RSVP, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    r, ok := s.rsvps[rsvpID]
    if !ok {
        return nil, repository.ErrRSVPNotFound
    }
    if r.GuestID != guestID {
        return nil, repository.ErrForbidden
    }
    concert := s.concerts[r.ConcertID]
    if !concert.EventDate.After(time.Now().UTC()) {
        return nil, repository.ErrInvalidState
    }
    delete(s.rsvps, rsvpID)
    cp := *r
    return &cp, nil
}

func (s *memStore) GetRSVP(ctx context.Context, id uint64) (*model.RSVP, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    r, ok := s.rsvps[id]
    if !ok {
        return nil, repository.ErrRSVPNotFound
    }
    cp := *r
    return &cp, nil
}

func (s *memStore) ListByConcert(ctx context.Context, concertID, operatorID uint64) ([]model.RSVP, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    concert, ok := s.concerts[concertID]
    if !ok {
        return nil, repository.ErrConcertNotFound
    }
    if concert.VenueOperatorID != operatorID {
        return nil, repository.ErrForbidden
    }
    var out []model.RSVP
    for _, r := range s.rsvps {
        if r.ConcertID == concertID {
            out = append(out, *r)
        }
    }
    return out, nil
}

func (s *memStore) ListByGuest(ctx context.Context, guestID uint64) ([]model.RSVP, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []model.RSVP
    for _, r := range s.rsvps {
        if r.GuestID == guestID {
            out = append(out, *r)
        }
    }
    return out, nil
}

// CapacityStore

func (s *memStore) Status(ctx context.Context, concertID uint64) (model.CapacityStatus, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    concert, ok := s.concerts[concertID]
    if !ok {
        return model.CapacityStatus{}, repository.ErrConcertNotFound
    }
    approved, pending := s.committedLocked(concertID)
    status := model.CapacityStatus{
        ConcertID: concertID,
        Approved:  approved,
        Pending:   pending,
        Maximum:   concert.MaxCapacity,
    }
    if concert.MaxCapacity > approved {
        status.AvailableSpots = concert.MaxCapacity - approved
    }
    return status, nil
}

// The store interfaces all name their point read GetByID, so the fakes wrap
// memStore to resolve the method set per interface.

type bookingStoreFake struct{ *memStore }

func (f bookingStoreFake) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    return f.GetByIDBooking(ctx, id)
}

type concertStoreFake struct{ *memStore }

func (f concertStoreFake) GetByID(ctx context.Context, id uint64) (*model.Concert, error) {
    return f.GetConcert(ctx, id)
}

type rsvpStoreFake struct{ *memStore }

func (f rsvpStoreFake) GetByID(ctx context.Context, id uint64) (*model.RSVP, error) {
    return f.GetRSVP(ctx, id)
}

// captureNotifier records published intents for assertions.
type captureNotifier struct {
    mu      sync.Mutex
    intents []model.NotificationIntent
}

func (n *captureNotifier) Publish(ctx context.Context, intent model.NotificationIntent) error {
    n.mu.Lock()
    defer n.mu.Unlock()
    n.intents = append(n.intents, intent)
    return nil
}

func (n *captureNotifier) ofType(intentType string) []model.NotificationIntent {
    n.mu.Lock()
    defer n.mu.Unlock()
    var out []model.NotificationIntent
    for _, i := range n.intents {
        if i.Type == intentType {
            out = append(out, i)
        }
    }
    return out
}
