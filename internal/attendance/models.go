package attendance

import "time"

// Status values accepted for an attendance record.
const (
	StatusPresent = "presente"
	StatusAbsent  = "ausente"
	StatusLate    = "tarde"
	StatusExcused = "justificado"
)

func isValidStatus(s string) bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	default:
		return false
	}
}

// Record is one student's attendance mark for one day.
// (student_id, date) is the natural key; re-submitting replaces the mark.
type Record struct {
	StudentID int64  `json:"studentId"`
	Date      string `json:"date"` // YYYY-MM-DD
	Status    string `json:"status"`
	Note      string `json:"note,omitempty"`
}

// StoredRecord is a Record plus persistence metadata.
type StoredRecord struct {
	Record
	RecordedBy int64     `json:"recordedBy"`
	RecordedAt time.Time `json:"recordedAt"`
}
