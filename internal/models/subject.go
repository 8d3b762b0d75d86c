package models

import "time"

// ExamType categorises how a subject is assessed.
type ExamType string

const (
	ExamTypeTheory    ExamType = "THEORY"
	ExamTypePractical ExamType = "PRACTICAL"
	ExamTypeJury      ExamType = "JURY"
	ExamTypeProject   ExamType = "PROJECT"
)

// Subject represents an academic subject offered to a single batch. Subjects
// are matched across batches by Code when cloning timetables.
type Subject struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Code             string    `db:"code" json:"code"`
	Credits          int       `db:"credits" json:"credits"`
	TotalHours       int       `db:"total_hours" json:"total_hours"`
	ExamType         ExamType  `db:"exam_type" json:"exam_type"`
	BatchID          string    `db:"batch_id" json:"batch_id"`
	PrimaryFacultyID *string   `db:"primary_faculty_id" json:"primary_faculty_id,omitempty"`
	CoFacultyID      *string   `db:"co_faculty_id" json:"co_faculty_id,omitempty"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
