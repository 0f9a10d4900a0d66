package students

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"school-platform/pkg/utils"
)

var ErrNotFound = errors.New("students: not found")

// Repository is the persistence contract for students and representatives.
type Repository interface {
	List(ctx context.Context, limit, offset int) ([]Student, error)
	Get(ctx context.Context, id int64) (Student, error)
	Enroll(ctx context.Context, req EnrollRequest) (Student, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (Student, error)
	Delete(ctx context.Context, id int64) error

	SearchRepresentatives(ctx context.Context, query string, limit int) ([]Representative, error)
}

const studentColumns = `id, first_name, last_name, national_id, grade_level, section, representative_id, created_at, updated_at`

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	db *sql.DB
}

func NewPGRepository(db *sql.DB) *PGRepository {
	return &PGRepository{db: db}
}

func (r *PGRepository) List(ctx context.Context, limit, offset int) ([]Student, error) {
	q := `SELECT ` + studentColumns + ` FROM students ORDER BY last_name, first_name LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("students: list: %w", err)
	}
	defer rows.Close()

	var out []Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("students: list scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, id int64) (Student, error) {
	q := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	s, err := scanStudent(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, ErrNotFound
		}
		return Student{}, fmt.Errorf("students: get: %w", err)
	}
	return s, nil
}

// Enroll creates the student and, when present, its representative inside one
// transaction so a failed link never leaves an orphan row.
func (r *PGRepository) Enroll(ctx context.Context, req EnrollRequest) (Student, error) {
	var out Student
	err := utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		var repID *int64
		if req.Representative != nil {
			const insRep = `
INSERT INTO representatives (first_name, last_name, national_id, phone, email)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (national_id) DO UPDATE SET phone = EXCLUDED.phone, email = EXCLUDED.email
RETURNING id`
			var id int64
			if err := tx.QueryRowContext(ctx, insRep,
				req.Representative.FirstName,
				req.Representative.LastName,
				req.Representative.NationalID,
				req.Representative.Phone,
				req.Representative.Email,
			).Scan(&id); err != nil {
				return fmt.Errorf("insert representative: %w", err)
			}
			repID = &id
		}

		insStudent := `
INSERT INTO students (first_name, last_name, national_id, grade_level, section, representative_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + studentColumns
		s, err := scanStudent(tx.QueryRowContext(ctx, insStudent,
			req.FirstName,
			req.LastName,
			req.NationalID,
			req.GradeLevel,
			req.Section,
			repID,
		))
		if err != nil {
			return fmt.Errorf("insert student: %w", err)
		}
		out = s
		return nil
	})
	if err != nil {
		return Student{}, fmt.Errorf("students: enroll: %w", err)
	}
	return out, nil
}

func (r *PGRepository) Update(ctx context.Context, id int64, req UpdateRequest) (Student, error) {
	q := `
UPDATE students SET
  first_name  = COALESCE($2, first_name),
  last_name   = COALESCE($3, last_name),
  grade_level = COALESCE($4, grade_level),
  section     = COALESCE($5, section),
  updated_at  = now()
WHERE id = $1
RETURNING ` + studentColumns
	s, err := scanStudent(r.db.QueryRowContext(ctx, q, id, req.FirstName, req.LastName, req.GradeLevel, req.Section))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, ErrNotFound
		}
		return Student{}, fmt.Errorf("students: update: %w", err)
	}
	return s, nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("students: delete: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) SearchRepresentatives(ctx context.Context, query string, limit int) ([]Representative, error) {
	const q = `
SELECT id, first_name, last_name, national_id, phone, email, created_at
FROM representatives
WHERE first_name ILIKE '%' || $1 || '%'
   OR last_name  ILIKE '%' || $1 || '%'
   OR national_id ILIKE '%' || $1 || '%'
ORDER BY last_name, first_name
LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, query, limit)
	if err != nil {
		return nil, fmt.Errorf("students: search representatives: %w", err)
	}
	defer rows.Close()

	var out []Representative
	for rows.Next() {
		var rep Representative
		if err := rows.Scan(&rep.ID, &rep.FirstName, &rep.LastName, &rep.NationalID, &rep.Phone, &rep.Email, &rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("students: search scan: %w", err)
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (Student, error) {
	var (
		s     Student
		repID sql.NullInt64
	)
	err := row.Scan(
		&s.ID,
		&s.FirstName,
		&s.LastName,
		&s.NationalID,
		&s.GradeLevel,
		&s.Section,
		&repID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return Student{}, err
	}
	if repID.Valid {
		v := repID.Int64
		s.RepresentativeID = &v
	}
	return s, nil
}
