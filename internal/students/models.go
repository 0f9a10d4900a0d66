package students

import "time"

// Student mirrors the students table.
type Student struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	NationalID string `json:"nationalId"`
	GradeLevel string `json:"gradeLevel"`
	Section    string `json:"section"`

	// RepresentativeID links the student to a representative; nil while the
	// enrollment is incomplete.
	RepresentativeID *int64 `json:"representativeId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Representative mirrors the representatives table.
type Representative struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	NationalID string `json:"nationalId"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`

	CreatedAt time.Time `json:"createdAt"`
}

// EnrollRequest creates a student and, when representative data is present,
// the representative row in the same transaction.
type EnrollRequest struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	NationalID string `json:"nationalId"`
	GradeLevel string `json:"gradeLevel"`
	Section    string `json:"section"`

	Representative *RepresentativeInput `json:"representative,omitempty"`
}

type RepresentativeInput struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	NationalID string `json:"nationalId"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

// UpdateRequest patches mutable student fields. Nil means leave unchanged.
type UpdateRequest struct {
	FirstName  *string `json:"firstName,omitempty"`
	LastName   *string `json:"lastName,omitempty"`
	GradeLevel *string `json:"gradeLevel,omitempty"`
	Section    *string `json:"section,omitempty"`
}
