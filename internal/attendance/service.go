package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"school-platform/pkg/utils"
)

var ErrInvalidArgument = errors.New("attendance: invalid argument")

// maxBatchSize bounds one submission to a classroom-sized batch.
const maxBatchSize = 100

// Repository is the persistence contract for attendance records.
type Repository interface {
	// UpsertBatch writes all records atomically; re-submitted (student, date)
	// pairs replace the earlier mark.
	UpsertBatch(ctx context.Context, recordedBy int64, at time.Time, records []Record) error
	ListByDate(ctx context.Context, date string) ([]StoredRecord, error)
}

// Service validates attendance batches before they reach storage.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// SubmitBatch validates and stores one day's marks for a group of students.
func (s *Service) SubmitBatch(ctx context.Context, recordedBy int64, records []Record) error {
	if recordedBy <= 0 {
		return ErrInvalidArgument
	}
	if len(records) == 0 || len(records) > maxBatchSize {
		return ErrInvalidArgument
	}
	for _, r := range records {
		if r.StudentID <= 0 {
			return ErrInvalidArgument
		}
		if _, err := time.Parse("2006-01-02", r.Date); err != nil {
			return fmt.Errorf("%w: bad date %q", ErrInvalidArgument, r.Date)
		}
		if !isValidStatus(r.Status) {
			return fmt.Errorf("%w: bad status %q", ErrInvalidArgument, r.Status)
		}
	}
	return s.repo.UpsertBatch(ctx, recordedBy, s.clock().UTC(), records)
}

func (s *Service) ListByDate(ctx context.Context, date string) ([]StoredRecord, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, ErrInvalidArgument
	}
	return s.repo.ListByDate(ctx, date)
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	db *sql.DB
}

func NewPGRepository(db *sql.DB) *PGRepository {
	return &PGRepository{db: db}
}

func (r *PGRepository) UpsertBatch(ctx context.Context, recordedBy int64, at time.Time, records []Record) error {
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		const q = `
INSERT INTO attendance (student_id, date, status, note, recorded_by, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (student_id, date) DO UPDATE SET
  status      = EXCLUDED.status,
  note        = EXCLUDED.note,
  recorded_by = EXCLUDED.recorded_by,
  recorded_at = EXCLUDED.recorded_at`
		for _, rec := range records {
			if _, err := tx.ExecContext(ctx, q, rec.StudentID, rec.Date, rec.Status, rec.Note, recordedBy, at); err != nil {
				return fmt.Errorf("attendance: upsert (%d, %s): %w", rec.StudentID, rec.Date, err)
			}
		}
		return nil
	})
}

func (r *PGRepository) ListByDate(ctx context.Context, date string) ([]StoredRecord, error) {
	const q = `
SELECT student_id, to_char(date, 'YYYY-MM-DD'), status, note, recorded_by, recorded_at
FROM attendance
WHERE date = $1
ORDER BY student_id`
	rows, err := r.db.QueryContext(ctx, q, date)
	if err != nil {
		return nil, fmt.Errorf("attendance: list by date: %w", err)
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		var rec StoredRecord
		if err := rows.Scan(&rec.StudentID, &rec.Date, &rec.Status, &rec.Note, &rec.RecordedBy, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("attendance: scan: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
