package models

import "time"

// ConflictDimension is the shared attribute that makes two time-overlapping
// events mutually exclusive.
type ConflictDimension string

const (
	ConflictDimensionFaculty ConflictDimension = "FACULTY"
	ConflictDimensionBatch   ConflictDimension = "BATCH"
)

// ConflictSeverity tiers detected conflicts. Faculty conflicts are critical
// (one person cannot be in two rooms); batch conflicts are organisationally
// correctable and rank medium.
type ConflictSeverity string

const (
	SeverityCritical ConflictSeverity = "CRITICAL"
	SeverityMedium   ConflictSeverity = "MEDIUM"
)

// CalendarEvent is a transient, fully-resolved occurrence fed to the conflict
// detector. DayKey groups events that can collide: an ISO date for dated
// entries, or "weekly:<DAY>" for recurring ones. Recurring entries are
// additionally expanded onto each dated day in scope by the caller so that a
// weekly entry conflicts with dated entries on the same weekday.
type CalendarEvent struct {
	ID        string
	BatchID   string
	FacultyID string
	SubjectID string
	DayKey    string
	Start     time.Time
	End       time.Time
	Label     string
}

// EventConflict is a detected overlap between two calendar events. Transient:
// produced by the detector, consumed by the validator and preview generator,
// never persisted.
type EventConflict struct {
	EventAID    string            `json:"event_a_id"`
	EventBID    string            `json:"event_b_id"`
	Dimension   ConflictDimension `json:"dimension"`
	Severity    ConflictSeverity  `json:"severity"`
	Description string            `json:"description"`
}

// ConflictCheckResult aggregates a detector pass.
type ConflictCheckResult struct {
	HasConflicts  bool            `json:"has_conflicts"`
	TotalCount    int             `json:"total_count"`
	CriticalCount int             `json:"critical_count"`
	Conflicts     []EventConflict `json:"conflicts"`
}
