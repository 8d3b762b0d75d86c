package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// OperationType enumerates the bulk timetable mutations.
type OperationType string

const (
	OperationClone          OperationType = "CLONE_TIMETABLE"
	OperationFacultyReplace OperationType = "FACULTY_REPLACE"
	OperationReschedule     OperationType = "BULK_RESCHEDULE"
)

// OperationStatus captures the bulk operation lifecycle.
// PENDING -> RUNNING -> {COMPLETED, FAILED, CANCELLED}; RUNNING may also move
// to PAUSED and back. Terminal rows are never written again.
type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "PENDING"
	OperationStatusRunning   OperationStatus = "RUNNING"
	OperationStatusPaused    OperationStatus = "PAUSED"
	OperationStatusCompleted OperationStatus = "COMPLETED"
	OperationStatusFailed    OperationStatus = "FAILED"
	OperationStatusCancelled OperationStatus = "CANCELLED"
)

// Terminal reports whether no further writes to the operation are permitted.
func (s OperationStatus) Terminal() bool {
	switch s {
	case OperationStatusCompleted, OperationStatusFailed, OperationStatusCancelled:
		return true
	default:
		return false
	}
}

// ConflictPolicy controls how executors treat an occupied target slot.
type ConflictPolicy string

const (
	ConflictPolicySkip     ConflictPolicy = "skip"
	ConflictPolicyOverride ConflictPolicy = "override"
)

// MoveType selects the date mapping strategy for BulkReschedule.
type MoveType string

const (
	MoveTypeShift        MoveType = "shift"
	MoveTypeMap          MoveType = "map"
	MoveTypeRedistribute MoveType = "redistribute"
)

// DateRange is an inclusive calendar window.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days returns the inclusive length of the range in days.
func (r DateRange) Days() int {
	return int(r.End.Truncate(24*time.Hour).Sub(r.Start.Truncate(24*time.Hour))/(24*time.Hour)) + 1
}

// CloneParams describes a timetable clone from one batch to another.
type CloneParams struct {
	SourceBatchID   string         `json:"sourceBatchId"`
	TargetBatchID   string         `json:"targetBatchId"`
	DateRange       *DateRange     `json:"dateRange,omitempty"`
	PreserveFaculty bool           `json:"preserveFaculty"`
	HandleConflicts ConflictPolicy `json:"handleConflicts"`
}

// FacultyReplaceParams describes reassigning sessions between faculty members.
type FacultyReplaceParams struct {
	CurrentFacultyID string     `json:"currentFacultyId"`
	NewFacultyID     string     `json:"newFacultyId"`
	BatchID          *string    `json:"batchId,omitempty"`
	SubjectID        *string    `json:"subjectId,omitempty"`
	EffectiveFrom    *time.Time `json:"effectiveFrom,omitempty"`
	MaintainWorkload bool       `json:"maintainWorkload"`
}

// RescheduleParams describes moving dated entries between date windows.
type RescheduleParams struct {
	SourceRange      DateRange `json:"sourceRange"`
	TargetRange      DateRange `json:"targetRange"`
	BatchID          *string   `json:"batchId,omitempty"`
	MoveType         MoveType  `json:"moveType"`
	ExcludeWeekends  bool      `json:"excludeWeekends"`
	RespectBlackouts bool      `json:"respectBlackouts"`
}

// OperationParams is the tagged union of bulk operation inputs. Exactly one of
// the payload pointers is set, selected by Operation. It is serialized as
// JSONB only at the persistence edge.
type OperationParams struct {
	Operation      OperationType         `json:"operation"`
	Clone          *CloneParams          `json:"clone,omitempty"`
	FacultyReplace *FacultyReplaceParams `json:"facultyReplace,omitempty"`
	Reschedule     *RescheduleParams     `json:"reschedule,omitempty"`
}

// Value marshals params to JSON for persistence.
func (p OperationParams) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal operation params: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the params struct.
func (p *OperationParams) Scan(value interface{}) error {
	if value == nil {
		*p = OperationParams{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for OperationParams", value)
	}
	if len(data) == 0 {
		*p = OperationParams{}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal operation params: %w", err)
	}
	return nil
}

// OperationResultSummary is the persisted aggregate outcome of a finished
// operation.
type OperationResultSummary struct {
	Summary    string   `json:"summary"`
	Errors     []string `json:"errors,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
	Affected   int      `json:"affected"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
}

// Value marshals the summary for persistence.
func (r OperationResultSummary) Value() (driver.Value, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal operation result: %w", err)
	}
	return data, nil
}

// Scan unmarshals the persisted summary.
func (r *OperationResultSummary) Scan(value interface{}) error {
	if value == nil {
		*r = OperationResultSummary{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for OperationResultSummary", value)
	}
	if len(data) == 0 {
		*r = OperationResultSummary{}
		return nil
	}
	if err := json.Unmarshal(data, r); err != nil {
		return fmt.Errorf("unmarshal operation result: %w", err)
	}
	return nil
}

// BulkOperation is one persisted invocation of a bulk timetable mutation.
type BulkOperation struct {
	ID            string                  `db:"id" json:"id"`
	Type          OperationType           `db:"type" json:"type"`
	Params        OperationParams         `db:"params" json:"params"`
	Status        OperationStatus         `db:"status" json:"status"`
	Progress      int                     `db:"progress" json:"progress"`
	AffectedCount int                     `db:"affected_count" json:"affected_count"`
	SuccessCount  int                     `db:"success_count" json:"success_count"`
	FailedCount   int                     `db:"failed_count" json:"failed_count"`
	Result        *OperationResultSummary `db:"result" json:"result,omitempty"`
	ErrorMessage  *string                 `db:"error_message" json:"error_message,omitempty"`
	StartedBy     string                  `db:"started_by" json:"started_by"`
	StartedAt     time.Time               `db:"started_at" json:"started_at"`
	CompletedAt   *time.Time              `db:"completed_at" json:"completed_at,omitempty"`
}

// LogLevel classifies operation log entries.
type LogLevel string

const (
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// OperationLog is one append-only, timestamped message attached to a
// BulkOperation. Rows are never mutated after insert.
type OperationLog struct {
	ID          string    `db:"id" json:"id"`
	OperationID string    `db:"operation_id" json:"operation_id"`
	Level       LogLevel  `db:"level" json:"level"`
	Message     string    `db:"message" json:"message"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// OperationFilter narrows history listings.
type OperationFilter struct {
	Type      OperationType
	Status    []OperationStatus
	StartedBy string
	Page      int
	PageSize  int
}
