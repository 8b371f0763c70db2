package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "time"

    "github.com/houseshow/houseshow/internal/model"
)

// BookingRepo manages the `bookings` table and the booking state machine's
// transactional writes.  Respond and Cancel own their transactions: the
// status check, the status write and any concert cascade commit or roll back
// as one unit, with the booking row locked for the duration so two racing
// transitions cannot both observe REQUESTED.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingCols = `id, performer_id, venue_operator_id, event_date, start_time, duration_min,
       expected_attendance, door_fee_cents, message, response_message, lodging_json,
       status, created_at, responded_at, confirmed_at`

// Create inserts a new booking in REQUESTED state and populates the
// generated ID and DB-default fields on the passed struct.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
    var lodging any
    if b.Lodging != nil {
        raw, err := json.Marshal(b.Lodging)
        if err != nil {
            return err
        }
        lodging = string(raw)
    }
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO bookings (performer_id, venue_operator_id, event_date, start_time, duration_min,
                               expected_attendance, door_fee_cents, message, lodging_json, status)
         VALUES (?,?,?,?,?,?,?,?,?,?)`,
        b.PerformerID, b.VenueOperatorID, b.EventDate.UTC().Format("2006-01-02"), b.StartTime,
        b.DurationMin, b.ExpectedAttendance, b.DoorFeeCents, b.Message, lodging, model.BookingRequested)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    got, err := r.GetByID(ctx, b.ID)
    if err != nil {
        return err
    }
    *b = *got
    return nil
}

// GetByID retrieves a booking, returning ErrBookingNotFound when absent.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+bookingCols+` FROM bookings WHERE id = ?`, id)
    return scanBooking(row)
}

// ListForUser returns the bookings the user is a party to, on the side their
// role implies, newest first.
func (r *BookingRepo) ListForUser(ctx context.Context, userID uint64, role model.Role) ([]model.Booking, error) {
    col := "performer_id"
    if role == model.RoleVenueOperator {
        col = "venue_operator_id"
    }
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+bookingCols+` FROM bookings WHERE `+col+` = ? ORDER BY created_at DESC`, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Booking, 0)
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *b)
    }
    return out, rows.Err()
}

// Respond atomically applies the venue operator's decision to a REQUESTED
// booking.  On approve it transitions the booking to CONFIRMED and creates
// the concert in the same transaction, seeded from the passed template (the
// workflow fills title, capacity and flags; party/booking references are set
// here).  The concerts.booking_id UNIQUE index is the last line of defense
// against double creation.  Returns ErrForbidden when actorID is not the
// respondent and ErrInvalidState when the booking already left REQUESTED.
func (r *BookingRepo) Respond(ctx context.Context, bookingID, actorID uint64, approve bool, responseMessage string, seed *model.Concert) (*model.Booking, *model.Concert, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    b, err := lockBookingTx(ctx, tx, bookingID)
    if err != nil {
        return nil, nil, err
    }
    if b.VenueOperatorID != actorID {
        return nil, nil, ErrForbidden
    }
    if b.Status != model.BookingRequested {
        return nil, nil, ErrInvalidState
    }

    now := time.Now().UTC()
    var concert *model.Concert
    if approve {
        if _, err := tx.ExecContext(ctx,
            `UPDATE bookings SET status=?, response_message=?, responded_at=?, confirmed_at=? WHERE id=?`,
            model.BookingConfirmed, responseMessage, now, now, bookingID); err != nil {
            return nil, nil, err
        }
        seed.BookingID = b.ID
        seed.PerformerID = b.PerformerID
        seed.VenueOperatorID = b.VenueOperatorID
        seed.EventDate = b.EventDate
        if err := insertConcertTx(ctx, tx, seed); err != nil {
            if isDuplicateKey(err) {
                // a racing confirm slipped in between lock acquisition paths
                return nil, nil, ErrInvalidState
            }
            return nil, nil, err
        }
        concert = seed
    } else {
        if _, err := tx.ExecContext(ctx,
            `UPDATE bookings SET status=?, response_message=?, responded_at=? WHERE id=?`,
            model.BookingDeclined, responseMessage, now, bookingID); err != nil {
            return nil, nil, err
        }
    }

    if err := tx.Commit(); err != nil {
        return nil, nil, err
    }
    committed = true
    updated, err := r.GetByID(ctx, bookingID)
    return updated, concert, err
}

// Cancel atomically cancels a booking on behalf of its performer.  Legal
// from REQUESTED or CONFIRMED.  When a concert already exists it is cascaded
// to CANCELLED in the same transaction; its RSVPs are left frozen at their
// prior status for the attendance history.  The cascaded concert (nil when
// none existed) is returned alongside the updated booking.
func (r *BookingRepo) Cancel(ctx context.Context, bookingID, actorID uint64) (*model.Booking, *model.Concert, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    b, err := lockBookingTx(ctx, tx, bookingID)
    if err != nil {
        return nil, nil, err
    }
    if b.PerformerID != actorID {
        return nil, nil, ErrForbidden
    }
    if b.Status != model.BookingRequested && b.Status != model.BookingConfirmed {
        return nil, nil, ErrInvalidState
    }

    if _, err := tx.ExecContext(ctx,
        `UPDATE bookings SET status=? WHERE id=?`, model.BookingCancelled, bookingID); err != nil {
        return nil, nil, err
    }
    var concert *model.Concert
    if b.Status == model.BookingConfirmed {
        concert, err = cancelConcertByBookingTx(ctx, tx, bookingID)
        if err != nil {
            return nil, nil, err
        }
    }

    if err := tx.Commit(); err != nil {
        return nil, nil, err
    }
    committed = true
    updated, err := r.GetByID(ctx, bookingID)
    return updated, concert, err
}

// lockBookingTx reads a booking row FOR UPDATE inside the caller's
// transaction, returning ErrBookingNotFound when absent.
func lockBookingTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
    row := tx.QueryRowContext(ctx, `SELECT `+bookingCols+` FROM bookings WHERE id = ? FOR UPDATE`, id)
    return scanBooking(row)
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
    Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*model.Booking, error) {
    var (
        b           model.Booking
        message     sql.NullString
        response    sql.NullString
        lodging     sql.NullString
        respondedAt sql.NullTime
        confirmedAt sql.NullTime
    )
    err := row.Scan(&b.ID, &b.PerformerID, &b.VenueOperatorID, &b.EventDate, &b.StartTime,
        &b.DurationMin, &b.ExpectedAttendance, &b.DoorFeeCents, &message, &response,
        &lodging, &b.Status, &b.CreatedAt, &respondedAt, &confirmedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrBookingNotFound
    }
    if err != nil {
        return nil, err
    }
    b.Message = message.String
    b.ResponseMessage = response.String
    if lodging.Valid && lodging.String != "" {
        var l model.LodgingRequest
        if err := json.Unmarshal([]byte(lodging.String), &l); err == nil {
            b.Lodging = &l
        }
    }
    if respondedAt.Valid {
        t := respondedAt.Time
        b.RespondedAt = &t
    }
    if confirmedAt.Valid {
        t := confirmedAt.Time
        b.ConfirmedAt = &t
    }
    return &b, nil
}
