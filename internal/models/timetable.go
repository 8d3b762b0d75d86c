package models

import (
	"strings"
	"time"
)

// DayOfWeek enumerates scheduling weekdays.
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

var weekdayNames = map[time.Weekday]DayOfWeek{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

// DayOfWeekFromDate maps a calendar date onto the scheduling weekday enum.
func DayOfWeekFromDate(d time.Time) DayOfWeek {
	return weekdayNames[d.Weekday()]
}

// ParseDayOfWeek normalises arbitrary-case day names; empty result means invalid.
func ParseDayOfWeek(raw string) DayOfWeek {
	day := DayOfWeek(strings.ToUpper(strings.TrimSpace(raw)))
	switch day {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return day
	default:
		return ""
	}
}

// EntryType distinguishes regular weekly classes from ad-hoc events.
type EntryType string

const (
	EntryTypeRegular EntryType = "REGULAR"
	EntryTypeEvent   EntryType = "EVENT"
)

// TimetableEntry is one scheduled occurrence of a subject taught by a faculty
// member to a batch in a time slot. A nil Date means the entry recurs weekly on
// its day of week. Entries are soft-deleted by clearing IsActive; the bulk
// engine never hard-deletes them.
type TimetableEntry struct {
	ID         string     `db:"id" json:"id"`
	BatchID    string     `db:"batch_id" json:"batch_id"`
	SubjectID  string     `db:"subject_id" json:"subject_id"`
	FacultyID  string     `db:"faculty_id" json:"faculty_id"`
	TimeSlotID string     `db:"time_slot_id" json:"time_slot_id"`
	DayOfWeek  DayOfWeek  `db:"day_of_week" json:"day_of_week"`
	Date       *time.Time `db:"date" json:"date,omitempty"`
	EntryType  EntryType  `db:"entry_type" json:"entry_type"`
	IsActive   bool       `db:"is_active" json:"is_active"`
	Notes      *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// SlotKey identifies the uniqueness dimension for active entries:
// (batch, time slot, day of week, date). A nil date is keyed as the empty
// string and therefore collides with itself only; the logical weekly-vs-dated
// overlap is handled by the conflict detector, not the key.
func (e *TimetableEntry) SlotKey() string {
	date := ""
	if e.Date != nil {
		date = e.Date.Format("2006-01-02")
	}
	return e.BatchID + "|" + e.TimeSlotID + "|" + string(e.DayOfWeek) + "|" + date
}

// TimetableEntryFilter narrows entry listings.
type TimetableEntryFilter struct {
	BatchID   string
	FacultyID string
	SubjectID string
	DateFrom  *time.Time
	DateTo    *time.Time
	Active    *bool
}
