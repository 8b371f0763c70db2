package workflow_test

import (
    "context"
    "errors"
    "sync"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/houseshow/houseshow/internal/model"
    "github.com/houseshow/houseshow/internal/repository"
    "github.com/houseshow/houseshow/internal/workflow"
)

// Many guests race to join an auto-approval concert.  No interleaving may
// push the approved total past the maximum.
func TestConcurrentSubmitsNeverOversell(t *testing.T) {
    store, _, _, rsvps := newEnv()
    const capacity = 12
    const guests = 40
    concertID := concertFixture(store, capacity, false)

    var wg sync.WaitGroup
    for i := 0; i < guests; i++ {
        id := uint64(100 + i)
        store.addGuest(id, true)
        wg.Add(1)
        go func() {
            defer wg.Done()
            actor := model.Actor{ID: id, Role: model.RoleGuest}
            _, err := rsvps.Submit(context.Background(), actor, concertID, workflow.SubmitRSVPInput{GuestCount: 2})
            if err != nil {
                assert.ErrorIs(t, err, repository.ErrCapacityExceeded)
            }
        }()
    }
    wg.Wait()

    status, err := rsvps.CapacityStatus(context.Background(), concertID)
    require.NoError(t, err)
    assert.LessOrEqual(t, status.Approved, uint32(capacity))
    assert.Equal(t, uint32(capacity), status.Approved+status.AvailableSpots)
}

// Concurrent approvals of pending requests must respect the maximum even
// when every request was accepted while the room still had space.
func TestConcurrentDecisionsNeverOversell(t *testing.T) {
    store, _, _, rsvps := newEnv()
    const capacity = 10
    concertID := concertFixture(store, capacity, true)

    var pending []uint64
    for i := 0; i < 5; i++ {
        id := uint64(200 + i)
        store.addGuest(id, true)
        actor := model.Actor{ID: id, Role: model.RoleGuest}
        rsvp, err := rsvps.Submit(context.Background(), actor, concertID, workflow.SubmitRSVPInput{GuestCount: 2})
        require.NoError(t, err)
        pending = append(pending, rsvp.ID)
    }

    // Shrink the room so only some of the pending requests can fit.
    store.mu.Lock()
    store.concerts[concertID].MaxCapacity = 6
    store.mu.Unlock()

    var wg sync.WaitGroup
    errs := make([]error, len(pending))
    for i, id := range pending {
        wg.Add(1)
        go func(i int, id uint64) {
            defer wg.Done()
            _, errs[i] = rsvps.Decide(context.Background(), operator, id, workflow.DecideInput{Decision: model.RSVPApproved})
        }(i, id)
    }
    wg.Wait()

    approvedCalls := 0
    for _, err := range errs {
        if err == nil {
            approvedCalls++
        } else {
            assert.True(t, errors.Is(err, repository.ErrCapacityExceeded))
        }
    }
    assert.Equal(t, 3, approvedCalls)

    status, err := rsvps.CapacityStatus(context.Background(), concertID)
    require.NoError(t, err)
    assert.Equal(t, uint32(6), status.Approved)
}

// A guest cancelling while approvals run releases capacity without ever
// letting the approved total exceed the maximum at any point.
func TestInterleavedCancelAndDecide(t *testing.T) {
    store, _, _, rsvps := newEnv()
    concertID := concertFixture(store, 4, true)

    var ids []uint64
    for i := 0; i < 4; i++ {
        id := uint64(300 + i)
        store.addGuest(id, true)
        actor := model.Actor{ID: id, Role: model.RoleGuest}
        rsvp, err := rsvps.Submit(context.Background(), actor, concertID, workflow.SubmitRSVPInput{GuestCount: 1})
        require.NoError(t, err)
        ids = append(ids, rsvp.ID)
    }

    var wg sync.WaitGroup
    for i, rsvpID := range ids {
        wg.Add(1)
        go func(i int, rsvpID uint64) {
            defer wg.Done()
            if i%2 == 0 {
                actor := model.Actor{ID: uint64(300 + i), Role: model.RoleGuest}
                _ = rsvps.Cancel(context.Background(), actor, rsvpID)
            } else {
                _, _ = rsvps.Decide(context.Background(), operator, rsvpID, workflow.DecideInput{Decision: model.RSVPApproved})
            }
        }(i, rsvpID)
    }
    wg.Wait()

    status, err := rsvps.CapacityStatus(context.Background(), concertID)
    require.NoError(t, err)
    assert.LessOrEqual(t, status.Approved, uint32(4))
    assert.Equal(t, uint32(2), status.Approved)
    assert.Zero(t, status.Pending)
}
