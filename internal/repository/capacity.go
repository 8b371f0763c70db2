package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/houseshow/houseshow/internal/model"
)

// CapacityLedger computes the per-concert admission aggregate.  The *Tx
// methods MUST be called inside the same transaction that holds the
// concert row lock and performs the dependent write; the aggregate is never
// cached across that boundary.  Status is the only non-locking read and is
// for display purposes only.
type CapacityLedger struct {
    db *sql.DB
}

// NewCapacityLedger returns a ledger bound to the given database.
func NewCapacityLedger(db *sql.DB) *CapacityLedger { return &CapacityLedger{db: db} }

// ApprovedTx returns the sum of approved guest counts for a concert within
// the caller's transaction.
func (l *CapacityLedger) ApprovedTx(ctx context.Context, tx *sql.Tx, concertID uint64) (uint32, error) {
    var approved uint32
    err := tx.QueryRowContext(ctx,
        `SELECT COALESCE(SUM(guest_count),0) FROM rsvps WHERE concert_id=? AND status=?`,
        concertID, model.RSVPApproved).Scan(&approved)
    return approved, err
}

// CommittedTx returns both the approved and the pending guest-count sums for
// a concert within the caller's transaction.  Submission uses the combined
// figure as its pre-check so hosts are not flooded with unservable requests.
func (l *CapacityLedger) CommittedTx(ctx context.Context, tx *sql.Tx, concertID uint64) (approved, pending uint32, err error) {
    err = tx.QueryRowContext(ctx,
        `SELECT
            COALESCE(SUM(CASE WHEN status=? THEN guest_count END),0),
            COALESCE(SUM(CASE WHEN status=? THEN guest_count END),0)
         FROM rsvps WHERE concert_id=?`,
        model.RSVPApproved, model.RSVPPending, concertID).Scan(&approved, &pending)
    return approved, pending, err
}

// CanAdmitTx reports whether admitting additionalGuests keeps the approved
// total within maxCapacity.  It must run under the concert row lock.
func (l *CapacityLedger) CanAdmitTx(ctx context.Context, tx *sql.Tx, concertID uint64, maxCapacity, additionalGuests uint32) (bool, error) {
    approved, err := l.ApprovedTx(ctx, tx, concertID)
    if err != nil {
        return false, err
    }
    return approved+additionalGuests <= maxCapacity, nil
}

// Status returns the capacity snapshot for a concert without locking.
// It returns ErrConcertNotFound when the concert does not exist.
func (l *CapacityLedger) Status(ctx context.Context, concertID uint64) (model.CapacityStatus, error) {
    st := model.CapacityStatus{ConcertID: concertID}
    err := l.db.QueryRowContext(ctx,
        `SELECT c.max_capacity,
                COALESCE(SUM(CASE WHEN r.status=? THEN r.guest_count END),0),
                COALESCE(SUM(CASE WHEN r.status=? THEN r.guest_count END),0)
         FROM concerts c
         LEFT JOIN rsvps r ON r.concert_id = c.id
         WHERE c.id = ?
         GROUP BY c.id, c.max_capacity`,
        model.RSVPApproved, model.RSVPPending, concertID).
        Scan(&st.Maximum, &st.Approved, &st.Pending)
    if errors.Is(err, sql.ErrNoRows) {
        return st, ErrConcertNotFound
    }
    if err != nil {
        return st, err
    }
    if st.Approved < st.Maximum {
        st.AvailableSpots = st.Maximum - st.Approved
    }
    return st, nil
}
