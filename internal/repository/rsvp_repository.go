package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/houseshow/houseshow/internal/model"
)

// RSVPRepo manages the `rsvps` table.  Submit, Decide and Delete own their
// transactions and all follow the same lock order (concert row first, then
// the RSVP row), so two admission writers for the same concert serialize on
// the concert lock and the capacity ledger always sees committed state plus
// the current transaction's own writes.
type RSVPRepo struct {
    db     *sql.DB
    ledger *CapacityLedger
}

// NewRSVPRepo returns an RSVPRepo using the given ledger for capacity math.
func NewRSVPRepo(db *sql.DB, ledger *CapacityLedger) *RSVPRepo {
    return &RSVPRepo{db: db, ledger: ledger}
}

const rsvpCols = `id, concert_id, guest_id, guest_count, special_requests, host_response,
       status, requested_at, decided_at`

// Submit inserts an admission request against a concert.  Within one
// transaction it locks the concert row, rejects duplicates, pre-checks that
// approved+pending+new stays within capacity, and inserts the record:
// PENDING normally, or directly APPROVED when the concert does not require
// approval (the held lock makes the pre-check authoritative for the
// auto-approval path).  The passed struct is populated on success.
func (r *RSVPRepo) Submit(ctx context.Context, rsvp *model.RSVP) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    concert, err := lockConcertTx(ctx, tx, rsvp.ConcertID)
    if err != nil {
        return err
    }
    if concert.Status != model.ConcertScheduled {
        return ErrInvalidState
    }

    var existing uint64
    err = tx.QueryRowContext(ctx,
        `SELECT id FROM rsvps WHERE concert_id=? AND guest_id=? LIMIT 1`,
        rsvp.ConcertID, rsvp.GuestID).Scan(&existing)
    if err == nil {
        return ErrDuplicateRSVP
    }
    if !errors.Is(err, sql.ErrNoRows) {
        return err
    }

    approved, pending, err := r.ledger.CommittedTx(ctx, tx, rsvp.ConcertID)
    if err != nil {
        return err
    }
    if approved+pending+rsvp.GuestCount > concert.MaxCapacity {
        return ErrCapacityExceeded
    }

    status := model.RSVPPending
    if !concert.RequiresApproval {
        status = model.RSVPApproved
    }
    res, err := tx.ExecContext(ctx,
        `INSERT INTO rsvps (concert_id, guest_id, guest_count, special_requests, status)
         VALUES (?,?,?,?,?)`,
        rsvp.ConcertID, rsvp.GuestID, rsvp.GuestCount, rsvp.SpecialRequests, status)
    if err != nil {
        if isDuplicateKey(err) {
            return ErrDuplicateRSVP
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    rsvp.ID = uint64(id)
    got, err := scanRSVP(tx.QueryRowContext(ctx, `SELECT `+rsvpCols+` FROM rsvps WHERE id = ?`, rsvp.ID))
    if err != nil {
        return err
    }

    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    *rsvp = *got
    return nil
}

// Decide applies the venue operator's approve/decline/waitlist decision to a
// PENDING RSVP.  The capacity check for approve is re-validated here, at
// decision time, under the concert row lock, never trusted from submission
// time.  A second approver whose admission would overflow observes the first
// approver's committed count and gets ErrCapacityExceeded.  An RSVP the
// guest concurrently cancelled no longer exists and yields ErrInvalidState
// rather than a silent success.
func (r *RSVPRepo) Decide(ctx context.Context, rsvpID, actorID uint64, decision, hostResponse string) (*model.RSVP, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // Resolve the concert before taking any lock so every writer acquires
    // the concert lock first.
    var concertID uint64
    err = tx.QueryRowContext(ctx, `SELECT concert_id FROM rsvps WHERE id=?`, rsvpID).Scan(&concertID)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrInvalidState
    }
    if err != nil {
        return nil, err
    }
    concert, err := lockConcertTx(ctx, tx, concertID)
    if err != nil {
        return nil, err
    }
    if concert.VenueOperatorID != actorID {
        return nil, ErrForbidden
    }

    rsvp, err := scanRSVP(tx.QueryRowContext(ctx,
        `SELECT `+rsvpCols+` FROM rsvps WHERE id = ? FOR UPDATE`, rsvpID))
    if errors.Is(err, ErrRSVPNotFound) {
        // deleted between the unlocked read and the lock: already cancelled
        return nil, ErrInvalidState
    }
    if err != nil {
        return nil, err
    }
    if rsvp.Status != model.RSVPPending {
        return nil, ErrInvalidState
    }

    if decision == model.RSVPApproved {
        ok, err := r.ledger.CanAdmitTx(ctx, tx, concertID, concert.MaxCapacity, rsvp.GuestCount)
        if err != nil {
            return nil, err
        }
        if !ok {
            return nil, ErrCapacityExceeded
        }
    }

    now := time.Now().UTC()
    if _, err := tx.ExecContext(ctx,
        `UPDATE rsvps SET status=?, host_response=?, decided_at=? WHERE id=?`,
        decision, hostResponse, now, rsvpID); err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true

    rsvp.Status = decision
    rsvp.HostResponse = hostResponse
    rsvp.DecidedAt = &now
    return rsvp, nil
}

// Delete removes a guest's own RSVP outright, freeing its guest-count
// allocation.  Legal only while the concert date is in the future.  The
// concert lock is taken first so a concurrent decision on the same RSVP is
// mutually exclusive with the removal.
func (r *RSVPRepo) Delete(ctx context.Context, rsvpID, guestID uint64) (*model.RSVP, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    var concertID uint64
    err = tx.QueryRowContext(ctx, `SELECT concert_id FROM rsvps WHERE id=?`, rsvpID).Scan(&concertID)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrRSVPNotFound
    }
    if err != nil {
        return nil, err
    }
    concert, err := lockConcertTx(ctx, tx, concertID)
    if err != nil {
        return nil, err
    }

    rsvp, err := scanRSVP(tx.QueryRowContext(ctx,
        `SELECT `+rsvpCols+` FROM rsvps WHERE id = ? FOR UPDATE`, rsvpID))
    if err != nil {
        return nil, err
    }
    if rsvp.GuestID != guestID {
        return nil, ErrForbidden
    }
    if !concertDateInFuture(concert.EventDate) {
        return nil, ErrInvalidState
    }

    if _, err := tx.ExecContext(ctx, `DELETE FROM rsvps WHERE id=?`, rsvpID); err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return rsvp, nil
}

// GetByID retrieves an RSVP, returning ErrRSVPNotFound when absent.
func (r *RSVPRepo) GetByID(ctx context.Context, id uint64) (*model.RSVP, error) {
    return scanRSVP(r.db.QueryRowContext(ctx, `SELECT `+rsvpCols+` FROM rsvps WHERE id = ?`, id))
}

// ListByConcert returns all RSVPs for a concert, oldest first, after
// verifying the caller hosts it.
func (r *RSVPRepo) ListByConcert(ctx context.Context, concertID, operatorID uint64) ([]model.RSVP, error) {
    var actualOperator uint64
    err := r.db.QueryRowContext(ctx,
        `SELECT venue_operator_id FROM concerts WHERE id=?`, concertID).Scan(&actualOperator)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrConcertNotFound
    }
    if err != nil {
        return nil, err
    }
    if actualOperator != operatorID {
        return nil, ErrForbidden
    }
    return r.list(ctx,
        `SELECT `+rsvpCols+` FROM rsvps WHERE concert_id = ? ORDER BY requested_at ASC`, concertID)
}

// ListByGuest returns a guest's RSVPs, newest first.
func (r *RSVPRepo) ListByGuest(ctx context.Context, guestID uint64) ([]model.RSVP, error) {
    return r.list(ctx,
        `SELECT `+rsvpCols+` FROM rsvps WHERE guest_id = ? ORDER BY requested_at DESC`, guestID)
}

func (r *RSVPRepo) list(ctx context.Context, q string, args ...any) ([]model.RSVP, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.RSVP, 0)
    for rows.Next() {
        rec, err := scanRSVP(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *rec)
    }
    return out, rows.Err()
}

// concertDateInFuture reports whether the concert date is strictly after
// today (UTC).  Day granularity: a same-day concert counts as started.
func concertDateInFuture(date time.Time) bool {
    now := time.Now().UTC()
    today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
    return date.After(today)
}

func scanRSVP(row rowScanner) (*model.RSVP, error) {
    var (
        rec       model.RSVP
        special   sql.NullString
        host      sql.NullString
        decidedAt sql.NullTime
    )
    err := row.Scan(&rec.ID, &rec.ConcertID, &rec.GuestID, &rec.GuestCount, &special, &host,
        &rec.Status, &rec.RequestedAt, &decidedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrRSVPNotFound
    }
    if err != nil {
        return nil, err
    }
    rec.SpecialRequests = special.String
    rec.HostResponse = host.String
    if decidedAt.Valid {
        t := decidedAt.Time
        rec.DecidedAt = &t
    }
    return &rec, nil
}
