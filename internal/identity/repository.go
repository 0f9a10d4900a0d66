package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound signals that no user matched the lookup key.
	ErrNotFound = errors.New("identity: user not found")
	// ErrDuplicate signals a unique-key violation on email or username.
	ErrDuplicate = errors.New("identity: email or username already exists")
)

// Repository is the persistence contract for users and their sub-identities.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, params CreateUserParams) (User, error)

	// UpdatePassword replaces the stored password field. Used by the
	// plaintext-to-hash migration; callers treat failures as best-effort.
	UpdatePassword(ctx context.Context, id int64, hashed string) error

	// TouchLastLogin records a login timestamp. Best-effort.
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error

	// HasTeacherProfile and HasRepresentativeProfile resolve the optional
	// sub-identities. Absence is not an error; both may be true at once.
	HasTeacherProfile(ctx context.Context, userID int64) (bool, error)
	HasRepresentativeProfile(ctx context.Context, userID int64) (bool, error)
}

// CreateUserParams contains write parameters for creating users.
type CreateUserParams struct {
	Email      string
	Username   string
	Password   string // already hashed by the caller
	Status     string
	RoleID     int
	FirstName  string
	LastName   string
	NationalID string
}

const userColumns = `id, email, username, password, status, role_id, first_name, last_name, national_id, last_login_at, created_at, updated_at`

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	db *sql.DB
}

func NewPGRepository(db *sql.DB) *PGRepository {
	return &PGRepository{db: db}
}

func (r *PGRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("identity: get user by email: %w", err)
	}
	return u, nil
}

func (r *PGRepository) GetByID(ctx context.Context, id int64) (User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("identity: get user by id: %w", err)
	}
	return u, nil
}

func (r *PGRepository) Create(ctx context.Context, params CreateUserParams) (User, error) {
	q := `
INSERT INTO users (email, username, password, status, role_id, first_name, last_name, national_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRowContext(ctx, q,
		params.Email,
		params.Username,
		params.Password,
		params.Status,
		params.RoleID,
		params.FirstName,
		params.LastName,
		params.NationalID,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrDuplicate
		}
		return User{}, fmt.Errorf("identity: create user: %w", err)
	}
	return u, nil
}

func (r *PGRepository) UpdatePassword(ctx context.Context, id int64, hashed string) error {
	const q = `UPDATE users SET password = $2, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, hashed)
	if err != nil {
		return fmt.Errorf("identity: update password: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	const q = `UPDATE users SET last_login_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, id, at.UTC()); err != nil {
		return fmt.Errorf("identity: touch last login: %w", err)
	}
	return nil
}

func (r *PGRepository) HasTeacherProfile(ctx context.Context, userID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM teachers WHERE user_id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("identity: teacher lookup: %w", err)
	}
	return exists, nil
}

func (r *PGRepository) HasRepresentativeProfile(ctx context.Context, userID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM representatives WHERE user_id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("identity: representative lookup: %w", err)
	}
	return exists, nil
}

func scanUser(row *sql.Row) (User, error) {
	var (
		u         User
		lastLogin sql.NullTime
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.Password,
		&u.Status,
		&u.RoleID,
		&u.FirstName,
		&u.LastName,
		&u.NationalID,
		&lastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	// pgx surfaces Postgres errors with SQLSTATE in the message via the
	// stdlib driver; 23505 is unique_violation.
	type sqlState interface{ SQLState() string }
	var s sqlState
	return errors.As(err, &s) && s.SQLState() == "23505"
}
