package students

import (
	"context"
	"errors"
	"testing"
)

func TestEnroll_RequiresCoreFields(t *testing.T) {
	s := NewService(NewMemoryRepo())

	_, err := s.Enroll(context.Background(), EnrollRequest{FirstName: " ", LastName: "Diaz", NationalID: "E-1"})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	_, err = s.Enroll(context.Background(), EnrollRequest{
		FirstName:  "Luis",
		LastName:   "Diaz",
		NationalID: "E-1",
		Representative: &RepresentativeInput{
			FirstName: "Carmen",
			// missing last name and national id
		},
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for incomplete representative, got %v", err)
	}
}

func TestEnroll_LinksRepresentative(t *testing.T) {
	s := NewService(NewMemoryRepo())

	st, err := s.Enroll(context.Background(), EnrollRequest{
		FirstName:  "Luis",
		LastName:   "Diaz",
		NationalID: "E-1",
		GradeLevel: "5",
		Section:    "B",
		Representative: &RepresentativeInput{
			FirstName:  "Carmen",
			LastName:   "Diaz",
			NationalID: "V-9",
			Phone:      "0412-5550000",
		},
	})
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if st.RepresentativeID == nil {
		t.Fatalf("expected representative link")
	}
}

func TestEnroll_SharedRepresentativeReused(t *testing.T) {
	repo := NewMemoryRepo()
	s := NewService(repo)

	rep := &RepresentativeInput{FirstName: "Carmen", LastName: "Diaz", NationalID: "V-9"}
	first, err := s.Enroll(context.Background(), EnrollRequest{FirstName: "Luis", LastName: "Diaz", NationalID: "E-1", Representative: rep})
	if err != nil {
		t.Fatalf("first enroll: %v", err)
	}
	second, err := s.Enroll(context.Background(), EnrollRequest{FirstName: "Sofia", LastName: "Diaz", NationalID: "E-2", Representative: rep})
	if err != nil {
		t.Fatalf("second enroll: %v", err)
	}
	if *first.RepresentativeID != *second.RepresentativeID {
		t.Fatalf("expected siblings to share a representative, got %d and %d", *first.RepresentativeID, *second.RepresentativeID)
	}
}

func TestUpdate_RejectsEmptyPatch(t *testing.T) {
	s := NewService(NewMemoryRepo())
	if _, err := s.Update(context.Background(), 1, UpdateRequest{}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSearchRepresentatives(t *testing.T) {
	repo := NewMemoryRepo()
	s := NewService(repo)

	_, err := s.Enroll(context.Background(), EnrollRequest{
		FirstName: "Luis", LastName: "Diaz", NationalID: "E-1",
		Representative: &RepresentativeInput{FirstName: "Carmen", LastName: "Diaz", NationalID: "V-9"},
	})
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}

	got, err := s.SearchRepresentatives(context.Background(), "carmen", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].FirstName != "Carmen" {
		t.Fatalf("unexpected search result: %+v", got)
	}

	if _, err := s.SearchRepresentatives(context.Background(), "  ", 0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for blank query, got %v", err)
	}
}

func TestList_ClampsLimits(t *testing.T) {
	repo := NewMemoryRepo()
	s := NewService(repo)
	for _, name := range []string{"Ana", "Bea", "Cai"} {
		if _, err := s.Enroll(context.Background(), EnrollRequest{FirstName: name, LastName: "Lopez", NationalID: "E-" + name}); err != nil {
			t.Fatalf("enroll: %v", err)
		}
	}
	got, err := s.List(context.Background(), -5, -1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 students, got %d", len(got))
	}
}
