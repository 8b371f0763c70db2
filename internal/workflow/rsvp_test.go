package workflow_test

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/houseshow/houseshow/internal/model"
    "github.com/houseshow/houseshow/internal/repository"
    "github.com/houseshow/houseshow/internal/workflow"
)

func concertFixture(store *memStore, capacity uint32, requiresApproval bool) uint64 {
    return store.addConcert(model.Concert{
        BookingID:        500,
        VenueOperatorID:  operatorID,
        PerformerID:      performerID,
        Title:            "Night Shift at The Basement",
        EventDate:        time.Now().UTC().AddDate(0, 0, 10),
        StartTime:        "20:00",
        EndTime:          "21:30",
        MaxCapacity:      capacity,
        Public:           true,
        RequiresApproval: requiresApproval,
    })
}

func TestSubmitPending(t *testing.T) {
    store, notifier, _, rsvps := newEnv()
    store.addGuest(guestID, true)
    concertID := concertFixture(store, 20, true)

    rsvp, err := rsvps.Submit(context.Background(), guest, concertID, workflow.SubmitRSVPInput{
        GuestCount:      2,
        SpecialRequests: "wheelchair access",
    })
    require.NoError(t, err)
    assert.Equal(t, model.RSVPPending, rsvp.Status)
    assert.Equal(t, guestID, rsvp.GuestID)

    submitted := notifier.ofType(model.NotifyRSVPSubmitted)
    require.Len(t, submitted, 1)
    assert.Equal(t, []uint64{operatorID}, submitted[0].Recipients)
}

func TestSubmitAutoApproved(t *testing.T) {
    store, notifier, _, rsvps := newEnv()
    store.addGuest(guestID, true)
    concertID := concertFixture(store, 20, false)

    rsvp, err := rsvps.Submit(context.Background(), guest, concertID, workflow.SubmitRSVPInput{GuestCount: 3})
    require.NoError(t, err)
    assert.Equal(t, model.RSVPApproved, rsvp.Status)

    approved := notifier.ofType(model.NotifyRSVPApproved)
    require.Len(t, approved, 1)
    assert.Equal(t, []uint64{guestID}, approved[0].Recipients)
    assert.Empty(t, notifier.ofType(model.NotifyRSVPSubmitted))
}

func TestSubmitDuplicate(t *testing.T) {
    store, _, _, rsvps := newEnv()
    store.addGuest(guestID, true)
    concertID := concertFixture(store, 20, true)

    _, err := rsvps.Submit(context.Background(), guest, concertID, workflow.SubmitRSVPInput{GuestCount: 1})
    require.NoError(t, err)
    _, err = rsvps.Submit(context.Background(), guest, concertID, workflow.SubmitRSVPInput{GuestCount: 1})
    assert.ErrorIs(t, err, repository.ErrDuplicateRSVP)
}

func TestSubmitCancelledConcert(t *testing.T) {
    store, _, _, rsvps := newEnv()
    store.addGuest(guestID, true)
    concertID := store.addConcert(model.Concert{
        VenueOperatorID: operatorID,
        EventDate:       time.Now().UTC().AddDate(0, 0, 10),
        MaxCapacity:     20,
        Status:          model.ConcertCancelled,
    })

    _, err := rsvps.Submit(context.Background(), guest, concertID, workflow.SubmitRSVPInput{GuestCount: 1})
    assert.ErrorIs(t, err, repository.ErrInvalidState)
}

func TestSubmitPastConcert(t *testing.T) {
    store, _, _, rsvps := newEnv()
    store.addGuest(guestID, true)
    concertID := store.addConcert(model.Concert{
        VenueOperatorID: operatorID,
        EventDate:       time.Now().UTC().AddDate(0, 0, -1),
        MaxCapacity:     20,
    })

    _, err := rsvps.Submit(context.Background(), guest, concertID, workflow.SubmitRSVPInput{GuestCount: 1})
    assert.True(t, workflow.IsValidation(err))
}

func TestSubmitSuspendedGuest(t *testing.T) {
    store, _, _, rsvps := newEnv()
    store.addGuest(guestID, false)
    concertID := concertFixture(store, 20, true)

    _, err := rsvps.Submit(context.Background(), guest, concertID, workflow.SubmitRSVPInput{GuestCount: 1})
    assert.ErrorIs(t, err, repository.ErrForbidden)
}

func TestSubmitGuestCountBounds(t *testing.T) {
    store, _, _, rsvps := newEnv()
    store.addGuest(guestID, true)
    concertID := concertFixture(store, 20, true)

    _, err := rsvps.Submit(context.Background(), guest, concertID, workflow.SubmitRSVPInput{GuestCount: 11})
    assert.True(t, workflow.IsValidation(err))
    _, err = rsvps.Submit(context.Background(), guest, concertID, workflow.SubmitRSVPInput{GuestCount: 0})
    assert.True(t, workflow.IsValidation(err))
}

// Pending requests count against capacity at submission time.
func TestSubmitCapacityIncludesPending(t *testing.T) {
    store, _, _, rsvps := newEnv()
    store.addGuest(10, true)
    store.addGuest(11, true)
    concertID := concertFixture(store, 5, true)

    _, err := rsvps.Submit(context.Background(), model.Actor{ID: 10, Role: model.RoleGuest}, concertID, workflow.SubmitRSVPInput{GuestCount: 4})
    require.NoError(t, err)
    _, err = rsvps.Submit(context.Background(), model.Actor{ID: 11, Role: model.RoleGuest}, concertID, workflow.SubmitRSVPInput{GuestCount: 2})
    assert.ErrorIs(t, err, repository.ErrCapacityExceeded)
}

func TestDecideApprove(t *testing.T) {
    store, notifier, _, rsvps := newEnv()
    store.addGuest(guestID, true)
    concertID := concertFixture(store, 20, true)
    rsvp, err := rsvps.Submit(context.Background(), guest, concertID, workflow.SubmitRSVPInput{GuestCount: 2})
    require.NoError(t, err)

    decided, err := rsvps.Decide(context.Background(), operator, rsvp.ID, workflow.DecideInput{
        Decision:     model.RSVPApproved,
        HostResponse: "Door opens at 19:30.",
    })
    require.NoError(t, err)
    assert.Equal(t, model.RSVPApproved, decided.Status)
    require.NotNil(t, decided.DecidedAt)

    approved := notifier.ofType(model.NotifyRSVPApproved)
    require.Len(t, approved, 1)
    assert.Equal(t, []uint64{guestID}, approved[0].Recipients)
}

// Approval re-checks capacity at decision time even though both requests
// were accepted as pending.
func TestDecideApproveRechecksCapacity(t *testing.T) {
    store, _, _, rsvps := newEnv()
    store.addGuest(10, true)
    store.addGuest(11, true)
    concertID := concertFixture(store, 6, true)

    first, err := rsvps.Submit(context.Background(), model.Actor{ID: 10, Role: model.RoleGuest}, concertID, workflow.SubmitRSVPInput{GuestCount: 4})
    require.NoError(t, err)
    second, err := rsvps.Submit(context.Background(), model.Actor{ID: 11, Role: model.RoleGuest}, concertID, workflow.SubmitRSVPInput{GuestCount: 2})
    require.NoError(t, err)

    // Shrink the room before any decision is made.
    store.mu.Lock()
    store.concerts[concertID].MaxCapacity = 4
    store.mu.Unlock()

    _, err = rsvps.Decide(context.Background(), operator, first.ID, workflow.DecideInput{Decision: model.RSVPApproved})
    require.NoError(t, err)
    _, err = rsvps.Decide(context.Background(), operator, second.ID, workflow.DecideInput{Decision: model.RSVPApproved})
    assert.ErrorIs(t, err, repository.ErrCapacityExceeded)

    got, err := store.GetRSVP(context.Background(), second.ID)
    require.NoError(t, err)
    assert.Equal(t, model.RSVPPending, got.Status)
}

// Waitlisted and declined requests release their hold on capacity.
func TestDecideWaitlistReleasesCapacity(t *testing.T) {
    store, notifier, _, rsvps := newEnv()
    store.addGuest(10, true)
    store.addGuest(11, true)
    concertID := concertFixture(store, 5, true)

    first, err := rsvps.Submit(context.Background(), model.Actor{ID: 10, Role: model.RoleGuest}, concertID, workflow.SubmitRSVPInput{GuestCount: 4})
    require.NoError(t, err)
    _, err = rsvps.Decide(context.Background(), operator, first.ID, workflow.DecideInput{Decision: model.RSVPWaitlisted})
    require.NoError(t, err)
    assert.Len(t, notifier.ofType(model.NotifyRSVPWaitlisted), 1)

    _, err = rsvps.Submit(context.Background(), model.Actor{ID: 11, Role: model.RoleGuest}, concertID, workflow.SubmitRSVPInput{GuestCount: 5})
    assert.NoError(t, err)
}

func TestDecideAfterGuestCancelled(t *testing.T) {
    store, _, _, rsvps := newEnv()
    store.addGuest(guestID, true)
    concertID := concertFixture(store, 20, true)
    rsvp, err := rsvps.Submit(context.Background(), guest, concertID, workflow.SubmitRSVPInput{GuestCount: 2})
    require.NoError(t, err)

    require.NoError(t, rsvps.Cancel(context.Background(), guest, rsvp.ID))
    _, err = rsvps.Decide(context.Background(), operator, rsvp.ID, workflow.DecideInput{Decision: model.RSVPApproved})
    assert.ErrorIs(t, err, repository.ErrInvalidState)
}

func TestDecideByStranger(t *testing.T) {
    store, _, _, rsvps := newEnv()
    store.addGuest(guestID, true)
    concertID := concertFixture(store, 20, true)
    rsvp, err := rsvps.Submit(context.Background(), guest, concertID, workflow.SubmitRSVPInput{GuestCount: 2})
    require.NoError(t, err)

    stranger := model.Actor{ID: 99, Role: model.RoleVenueOperator}
    _, err = rsvps.Decide(context.Background(), stranger, rsvp.ID, workflow.DecideInput{Decision: model.RSVPApproved})
    assert.ErrorIs(t, err, repository.ErrForbidden)
}

func TestDecideBadDecision(t *testing.T) {
    store, _, _, rsvps := newEnv()
    store.addGuest(guestID, true)
    concertID := concertFixture(store, 20, true)
    rsvp, err := rsvps.Submit(context.Background(), guest, concertID, workflow.SubmitRSVPInput{GuestCount: 2})
    require.NoError(t, err)

    _, err = rsvps.Decide(context.Background(), operator, rsvp.ID, workflow.DecideInput{Decision: "MAYBE"})
    assert.True(t, workflow.IsValidation(err))
}

// Cancelling an approved RSVP frees its allocation for the next guest.
func TestCancelReleasesCapacity(t *testing.T) {
    store, notifier, _, rsvps := newEnv()
    store.addGuest(10, true)
    store.addGuest(11, true)
    concertID := concertFixture(store, 5, false)

    first, err := rsvps.Submit(context.Background(), model.Actor{ID: 10, Role: model.RoleGuest}, concertID, workflow.SubmitRSVPInput{GuestCount: 5})
    require.NoError(t, err)
    _, err = rsvps.Submit(context.Background(), model.Actor{ID: 11, Role: model.RoleGuest}, concertID, workflow.SubmitRSVPInput{GuestCount: 1})
    require.ErrorIs(t, err, repository.ErrCapacityExceeded)

    require.NoError(t, rsvps.Cancel(context.Background(), model.Actor{ID: 10, Role: model.RoleGuest}, first.ID))
    assert.Len(t, notifier.ofType(model.NotifyRSVPCancelled), 1)

    _, err = rsvps.Submit(context.Background(), model.Actor{ID: 11, Role: model.RoleGuest}, concertID, workflow.SubmitRSVPInput{GuestCount: 5})
    assert.NoError(t, err)
}

func TestCancelSomeoneElsesRSVP(t *testing.T) {
    store, _, _, rsvps := newEnv()
    store.addGuest(guestID, true)
    store.addGuest(44, true)
    concertID := concertFixture(store, 20, true)
    rsvp, err := rsvps.Submit(context.Background(), guest, concertID, workflow.SubmitRSVPInput{GuestCount: 2})
    require.NoError(t, err)

    err = rsvps.Cancel(context.Background(), model.Actor{ID: 44, Role: model.RoleGuest}, rsvp.ID)
    assert.ErrorIs(t, err, repository.ErrForbidden)
}

func TestCapacityStatus(t *testing.T) {
    store, _, _, rsvps := newEnv()
    store.addGuest(10, true)
    store.addGuest(11, true)
    concertID := concertFixture(store, 10, true)

    first, err := rsvps.Submit(context.Background(), model.Actor{ID: 10, Role: model.RoleGuest}, concertID, workflow.SubmitRSVPInput{GuestCount: 4})
    require.NoError(t, err)
    _, err = rsvps.Decide(context.Background(), operator, first.ID, workflow.DecideInput{Decision: model.RSVPApproved})
    require.NoError(t, err)
    _, err = rsvps.Submit(context.Background(), model.Actor{ID: 11, Role: model.RoleGuest}, concertID, workflow.SubmitRSVPInput{GuestCount: 3})
    require.NoError(t, err)

    status, err := rsvps.CapacityStatus(context.Background(), concertID)
    require.NoError(t, err)
    assert.Equal(t, uint32(4), status.Approved)
    assert.Equal(t, uint32(3), status.Pending)
    assert.Equal(t, uint32(10), status.Maximum)
    assert.Equal(t, uint32(6), status.AvailableSpots)
}

func TestListForConcertRequiresOperator(t *testing.T) {
    store, _, _, rsvps := newEnv()
    store.addGuest(guestID, true)
    concertID := concertFixture(store, 20, true)
    _, err := rsvps.Submit(context.Background(), guest, concertID, workflow.SubmitRSVPInput{GuestCount: 2})
    require.NoError(t, err)

    list, err := rsvps.ListForConcert(context.Background(), operator, concertID)
    require.NoError(t, err)
    assert.Len(t, list, 1)

    _, err = rsvps.ListForConcert(context.Background(), guest, concertID)
    assert.ErrorIs(t, err, repository.ErrForbidden)
}
