package models

import "time"

// Holiday is an institution-wide non-teaching day. Scheduling onto a holiday
// is advisory only (warning), never a hard failure.
type Holiday struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Date        time.Time `db:"date" json:"date"`
	HolidayType string    `db:"holiday_type" json:"holiday_type"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ExamPeriod is a date range during which exams run. When BlockRegularClasses
// is set, scheduling regular classes inside the range is a hard constraint.
type ExamPeriod struct {
	ID                  string    `db:"id" json:"id"`
	Name                string    `db:"name" json:"name"`
	StartDate           time.Time `db:"start_date" json:"start_date"`
	EndDate             time.Time `db:"end_date" json:"end_date"`
	BlockRegularClasses bool      `db:"block_regular_classes" json:"block_regular_classes"`
	BatchID             *string   `db:"batch_id" json:"batch_id,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// Covers reports whether the given date falls inside the exam period.
func (p *ExamPeriod) Covers(d time.Time) bool {
	day := d.Truncate(24 * time.Hour)
	return !day.Before(p.StartDate.Truncate(24*time.Hour)) && !day.After(p.EndDate.Truncate(24*time.Hour))
}

// FacultyBlackoutPeriod is a faculty-declared range during which they should
// not be scheduled. Blackouts are advisory: violations surface as warnings.
type FacultyBlackoutPeriod struct {
	ID        string    `db:"id" json:"id"`
	FacultyID string    `db:"faculty_id" json:"faculty_id"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	Reason    *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Covers reports whether the given date falls inside the blackout.
func (b *FacultyBlackoutPeriod) Covers(d time.Time) bool {
	day := d.Truncate(24 * time.Hour)
	return !day.Before(b.StartDate.Truncate(24*time.Hour)) && !day.After(b.EndDate.Truncate(24*time.Hour))
}
