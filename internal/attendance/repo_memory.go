package attendance

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repository useful for tests.
type MemoryRepo struct {
	mu      sync.Mutex
	records map[recordKey]StoredRecord
}

type recordKey struct {
	studentID int64
	date      string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{records: make(map[recordKey]StoredRecord)}
}

func (r *MemoryRepo) UpsertBatch(ctx context.Context, recordedBy int64, at time.Time, records []Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		r.records[recordKey{rec.StudentID, rec.Date}] = StoredRecord{
			Record:     rec,
			RecordedBy: recordedBy,
			RecordedAt: at,
		}
	}
	return nil
}

func (r *MemoryRepo) ListByDate(ctx context.Context, date string) ([]StoredRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []StoredRecord
	for _, rec := range r.records {
		if rec.Date == date {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}
