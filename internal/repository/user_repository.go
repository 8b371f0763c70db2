package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/houseshow/houseshow/internal/model"
    "github.com/houseshow/houseshow/internal/utils"
)

// UserRepo manages rows in the `users` table plus the role-specific profile
// tables (`venue_profiles`, `performer_profiles`).
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user with a bcrypt-hashed password and returns its ID.
// MySQL duplicate-key (1062) on the email unique index maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, email, password string, role model.Role, cost int) (uint64, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return 0, err
    }
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO users (email, password_hash, role) VALUES (?,?,?)",
        email, hash, string(role))
    if err != nil {
        if isDuplicateKey(err) {
            return 0, ErrEmailExists
        }
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByEmail fetches an account by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    return r.scanOne(ctx,
        "SELECT id,email,password_hash,role,is_active,created_at,updated_at FROM users WHERE email=? LIMIT 1",
        email)
}

// GetByID fetches an account by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
    return r.scanOne(ctx,
        "SELECT id,email,password_hash,role,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1",
        id)
}

func (r *UserRepo) scanOne(ctx context.Context, q string, arg any) (model.User, error) {
    var (
        u    model.User
        role string
    )
    err := r.DB.QueryRowContext(ctx, q, arg).
        Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
    u.Role = model.Role(role)
    return u, err
}

// UpsertVenueProfile writes the venue operator's profile row.
func (r *UserRepo) UpsertVenueProfile(ctx context.Context, p model.VenueProfile) error {
    _, err := r.DB.ExecContext(ctx,
        `INSERT INTO venue_profiles (user_id, venue_name, city, max_capacity, contact_phone)
         VALUES (?,?,?,?,?)
         ON DUPLICATE KEY UPDATE venue_name=VALUES(venue_name), city=VALUES(city),
                                 max_capacity=VALUES(max_capacity), contact_phone=VALUES(contact_phone)`,
        p.UserID, p.VenueName, p.City, p.MaxCapacity, p.ContactPhone)
    return err
}

// GetVenueProfile returns the profile for a venue operator, or
// ErrProfileNotFound when none has been recorded.
func (r *UserRepo) GetVenueProfile(ctx context.Context, userID uint64) (model.VenueProfile, error) {
    var p model.VenueProfile
    err := r.DB.QueryRowContext(ctx,
        "SELECT user_id, venue_name, city, max_capacity, contact_phone FROM venue_profiles WHERE user_id=?",
        userID).Scan(&p.UserID, &p.VenueName, &p.City, &p.MaxCapacity, &p.ContactPhone)
    if errors.Is(err, sql.ErrNoRows) {
        return p, ErrProfileNotFound
    }
    return p, err
}

// UpsertPerformerProfile writes the performer's act profile row.
func (r *UserRepo) UpsertPerformerProfile(ctx context.Context, p model.PerformerProfile) error {
    _, err := r.DB.ExecContext(ctx,
        `INSERT INTO performer_profiles (user_id, act_name, genre, contact_phone)
         VALUES (?,?,?,?)
         ON DUPLICATE KEY UPDATE act_name=VALUES(act_name), genre=VALUES(genre),
                                 contact_phone=VALUES(contact_phone)`,
        p.UserID, p.ActName, p.Genre, p.ContactPhone)
    return err
}

// GetPerformerProfile returns the act profile for a performer, or
// ErrProfileNotFound when none has been recorded.
func (r *UserRepo) GetPerformerProfile(ctx context.Context, userID uint64) (model.PerformerProfile, error) {
    var p model.PerformerProfile
    err := r.DB.QueryRowContext(ctx,
        "SELECT user_id, act_name, genre, contact_phone FROM performer_profiles WHERE user_id=?",
        userID).Scan(&p.UserID, &p.ActName, &p.Genre, &p.ContactPhone)
    if errors.Is(err, sql.ErrNoRows) {
        return p, ErrProfileNotFound
    }
    return p, err
}

// isDuplicateKey reports whether err is a MySQL 1062 duplicate-entry error.
func isDuplicateKey(err error) bool {
    return err != nil && strings.Contains(err.Error(), "1062")
}
