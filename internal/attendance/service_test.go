package attendance

import (
	"context"
	"errors"
	"testing"
)

func TestSubmitBatch_Validation(t *testing.T) {
	s := NewService(NewMemoryRepo())

	cases := []struct {
		name       string
		recordedBy int64
		records    []Record
	}{
		{"empty batch", 1, nil},
		{"no recorder", 0, []Record{{StudentID: 1, Date: "2026-03-02", Status: StatusPresent}}},
		{"bad student", 1, []Record{{StudentID: 0, Date: "2026-03-02", Status: StatusPresent}}},
		{"bad date", 1, []Record{{StudentID: 1, Date: "02/03/2026", Status: StatusPresent}}},
		{"bad status", 1, []Record{{StudentID: 1, Date: "2026-03-02", Status: "presente?"}}},
	}
	for _, tc := range cases {
		if err := s.SubmitBatch(context.Background(), tc.recordedBy, tc.records); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("%s: expected ErrInvalidArgument, got %v", tc.name, err)
		}
	}
}

func TestSubmitBatch_UpsertReplacesMark(t *testing.T) {
	repo := NewMemoryRepo()
	s := NewService(repo)

	first := []Record{
		{StudentID: 1, Date: "2026-03-02", Status: StatusAbsent},
		{StudentID: 2, Date: "2026-03-02", Status: StatusPresent},
	}
	if err := s.SubmitBatch(context.Background(), 10, first); err != nil {
		t.Fatalf("first batch: %v", err)
	}

	// The teacher corrects student 1 to late; student 2 stays untouched.
	fix := []Record{{StudentID: 1, Date: "2026-03-02", Status: StatusLate, Note: "llegó 8:40"}}
	if err := s.SubmitBatch(context.Background(), 10, fix); err != nil {
		t.Fatalf("fix batch: %v", err)
	}

	got, err := s.ListByDate(context.Background(), "2026-03-02")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].StudentID != 1 || got[0].Status != StatusLate {
		t.Fatalf("expected corrected mark for student 1, got %+v", got[0])
	}
	if got[1].StudentID != 2 || got[1].Status != StatusPresent {
		t.Fatalf("expected untouched mark for student 2, got %+v", got[1])
	}
}

func TestListByDate_RejectsBadDate(t *testing.T) {
	s := NewService(NewMemoryRepo())
	if _, err := s.ListByDate(context.Background(), "yesterday"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
