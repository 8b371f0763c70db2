package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/houseshow/houseshow/internal/model"
)

// ConcertRepo manages read access to the `concerts` table.  Concert rows are
// only ever written by the booking workflow (creation at confirmation,
// cascade on cancellation), so the write paths live as package helpers used
// inside BookingRepo's transactions.
type ConcertRepo struct {
    db *sql.DB
}

// NewConcertRepo returns a ConcertRepo bound to the given database.
func NewConcertRepo(db *sql.DB) *ConcertRepo { return &ConcertRepo{db: db} }

const concertCols = `id, booking_id, venue_operator_id, performer_id, title, description,
       event_date, start_time, end_time, max_capacity, door_fee_cents,
       is_public, requires_approval, status, created_at, updated_at`

// GetByID retrieves a concert, returning ErrConcertNotFound when absent.
func (r *ConcertRepo) GetByID(ctx context.Context, id uint64) (*model.Concert, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+concertCols+` FROM concerts WHERE id = ?`, id)
    return scanConcert(row)
}

// GetByBookingID retrieves the concert derived from a booking, returning
// ErrConcertNotFound when the booking was never confirmed.
func (r *ConcertRepo) GetByBookingID(ctx context.Context, bookingID uint64) (*model.Concert, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+concertCols+` FROM concerts WHERE booking_id = ?`, bookingID)
    return scanConcert(row)
}

// ListPublicUpcoming returns public, scheduled concerts whose date has not
// passed, soonest first.
func (r *ConcertRepo) ListPublicUpcoming(ctx context.Context) ([]model.Concert, error) {
    return r.list(ctx,
        `SELECT `+concertCols+` FROM concerts
         WHERE is_public = 1 AND status = ? AND event_date >= UTC_DATE()
         ORDER BY event_date ASC, start_time ASC`,
        model.ConcertScheduled)
}

// ListByOperator returns all concerts hosted by a venue operator, newest
// date first.
func (r *ConcertRepo) ListByOperator(ctx context.Context, operatorID uint64) ([]model.Concert, error) {
    return r.list(ctx,
        `SELECT `+concertCols+` FROM concerts WHERE venue_operator_id = ? ORDER BY event_date DESC`,
        operatorID)
}

func (r *ConcertRepo) list(ctx context.Context, q string, args ...any) ([]model.Concert, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Concert, 0)
    for rows.Next() {
        c, err := scanConcert(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *c)
    }
    return out, rows.Err()
}

// insertConcertTx inserts a concert inside the caller's transaction and
// populates generated/default fields on the passed struct.  The UNIQUE index
// on booking_id surfaces duplicate creation as a 1062 error.
func insertConcertTx(ctx context.Context, tx *sql.Tx, c *model.Concert) error {
    res, err := tx.ExecContext(ctx,
        `INSERT INTO concerts (booking_id, venue_operator_id, performer_id, title, description,
                               event_date, start_time, end_time, max_capacity, door_fee_cents,
                               is_public, requires_approval, status)
         VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
        c.BookingID, c.VenueOperatorID, c.PerformerID, c.Title, c.Description,
        c.EventDate.UTC().Format("2006-01-02"), c.StartTime, c.EndTime, c.MaxCapacity,
        c.DoorFeeCents, c.Public, c.RequiresApproval, model.ConcertScheduled)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    c.ID = uint64(id)
    row := tx.QueryRowContext(ctx, `SELECT `+concertCols+` FROM concerts WHERE id = ?`, c.ID)
    got, err := scanConcert(row)
    if err != nil {
        return err
    }
    *c = *got
    return nil
}

// cancelConcertByBookingTx moves the concert of a cancelled booking to
// CANCELLED inside the caller's transaction and returns the updated concert.
// Existing RSVP rows are deliberately untouched.
func cancelConcertByBookingTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (*model.Concert, error) {
    row := tx.QueryRowContext(ctx,
        `SELECT `+concertCols+` FROM concerts WHERE booking_id = ? FOR UPDATE`, bookingID)
    c, err := scanConcert(row)
    if err != nil {
        return nil, err
    }
    if c.Status == model.ConcertCancelled {
        return c, nil
    }
    if _, err := tx.ExecContext(ctx,
        `UPDATE concerts SET status=? WHERE id=?`, model.ConcertCancelled, c.ID); err != nil {
        return nil, err
    }
    c.Status = model.ConcertCancelled
    return c, nil
}

// lockConcertTx reads a concert row FOR UPDATE inside the caller's
// transaction.  Every admission write takes this lock first, which is what
// serializes capacity checks per concert.
func lockConcertTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Concert, error) {
    row := tx.QueryRowContext(ctx, `SELECT `+concertCols+` FROM concerts WHERE id = ? FOR UPDATE`, id)
    return scanConcert(row)
}

func scanConcert(row rowScanner) (*model.Concert, error) {
    var (
        c    model.Concert
        desc sql.NullString
    )
    err := row.Scan(&c.ID, &c.BookingID, &c.VenueOperatorID, &c.PerformerID, &c.Title, &desc,
        &c.EventDate, &c.StartTime, &c.EndTime, &c.MaxCapacity, &c.DoorFeeCents,
        &c.Public, &c.RequiresApproval, &c.Status, &c.CreatedAt, &c.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrConcertNotFound
    }
    if err != nil {
        return nil, err
    }
    c.Description = desc.String
    return &c, nil
}
