package dto

import (
	"time"

	"github.com/Ankish8/College-Management-sub001/internal/models"
)

// DateRangePayload mirrors the wire shape of an inclusive date window.
type DateRangePayload struct {
	Start time.Time `json:"start" binding:"required"`
	End   time.Time `json:"end" binding:"required"`
}

// SourceData scopes the entries a bulk operation reads from.
type SourceData struct {
	BatchID   *string           `json:"batchId,omitempty"`
	FacultyID *string           `json:"facultyId,omitempty"`
	SubjectID *string           `json:"subjectId,omitempty"`
	DateRange *DateRangePayload `json:"dateRange,omitempty"`
}

// TargetData scopes where a bulk operation writes to.
type TargetData struct {
	BatchID   *string           `json:"batchId,omitempty"`
	FacultyID *string           `json:"facultyId,omitempty"`
	DateRange *DateRangePayload `json:"dateRange,omitempty"`
	DayOffset *int              `json:"dayOffset,omitempty"`
}

// OperationOptions carries the per-kind flags plus execution-mode switches.
// preserveConflicts/updateExisting are accepted as wire aliases for
// handleConflicts=skip|override.
type OperationOptions struct {
	HandleConflicts   string     `json:"handleConflicts,omitempty"`
	PreserveConflicts *bool      `json:"preserveConflicts,omitempty"`
	UpdateExisting    *bool      `json:"updateExisting,omitempty"`
	PreserveFaculty   bool       `json:"preserveFaculty,omitempty"`
	MaintainWorkload  bool       `json:"maintainWorkload,omitempty"`
	EffectiveFrom     *time.Time `json:"effectiveFrom,omitempty"`
	MoveType          string     `json:"moveType,omitempty"`
	ExcludeWeekends   bool       `json:"excludeWeekends,omitempty"`
	RespectBlackouts  bool       `json:"respectBlackouts,omitempty"`

	ValidateOnly              bool `json:"validateOnly,omitempty"`
	DryRun                    bool `json:"dryRun,omitempty"`
	Async                     bool `json:"async,omitempty"`
	ShowConflictVisualization bool `json:"showConflictVisualization,omitempty"`
}

// BulkOperationRequest is the common request shape for all three operations.
type BulkOperationRequest struct {
	Operation  string           `json:"operation" binding:"required"`
	SourceData *SourceData      `json:"sourceData,omitempty"`
	TargetData *TargetData      `json:"targetData,omitempty"`
	Options    OperationOptions `json:"options"`
}

// OperationResult is the deterministic outcome of an executed operation.
// Partial success reports Success=false while still reflecting the committed
// Successful count.
type OperationResult struct {
	Success        bool             `json:"success"`
	Affected       int              `json:"affected"`
	Successful     int              `json:"successful"`
	Failed         int              `json:"failed"`
	Errors         []string         `json:"errors"`
	Warnings       []string         `json:"warnings"`
	Summary        string           `json:"summary"`
	OperationID    string           `json:"operationId"`
	DryRun         bool             `json:"dryRun,omitempty"`
	PreviewResults *PreviewResponse `json:"previewResults,omitempty"`
}

// ValidationResult is the validator's pre-flight verdict. Warnings never
// affect IsValid.
type ValidationResult struct {
	IsValid           bool                   `json:"isValid"`
	Conflicts         []string               `json:"conflicts"`
	Warnings          []string               `json:"warnings"`
	AffectedCount     int                    `json:"affectedCount"`
	DetectedConflicts []models.EventConflict `json:"detectedConflicts"`
	Suggestions       []string               `json:"suggestions"`
}

// ProposedChange is one bucketed dry-run outcome for a timetable entry.
type ProposedChange struct {
	EntryID     string     `json:"entryId,omitempty"`
	BatchID     string     `json:"batchId"`
	SubjectID   string     `json:"subjectId"`
	FacultyID   string     `json:"facultyId"`
	TimeSlotID  string     `json:"timeSlotId"`
	DayOfWeek   string     `json:"dayOfWeek"`
	Date        *time.Time `json:"date,omitempty"`
	Description string     `json:"description"`
}

// ResourceImpact estimates per-resource load deltas of a proposed operation.
type ResourceImpact struct {
	FacultyLoadDelta map[string]int `json:"facultyLoadDelta"`
	BatchLoadDelta   map[string]int `json:"batchLoadDelta"`
}

// ConflictVisualization groups detected conflicts for rendering.
type ConflictVisualization struct {
	TotalCount    int                    `json:"totalCount"`
	CriticalCount int                    `json:"criticalCount"`
	Conflicts     []models.EventConflict `json:"conflicts"`
}

// PreviewResponse is a dry-run's simulated outcome; nothing is written.
type PreviewResponse struct {
	Validation               ValidationResult       `json:"validation"`
	Creates                  []ProposedChange       `json:"creates"`
	Updates                  []ProposedChange       `json:"updates"`
	Deletes                  []ProposedChange       `json:"deletes"`
	ConflictVisualization    *ConflictVisualization `json:"conflictVisualization,omitempty"`
	ResourceImpact           ResourceImpact         `json:"resourceImpact"`
	EstimatedDurationSeconds int                    `json:"estimatedDurationSeconds"`
}

// ProgressResponse is returned by progress polls. EstimatedTimeRemaining is
// omitted while progress is zero.
type ProgressResponse struct {
	OperationID            string                 `json:"operationId"`
	StartedBy              string                 `json:"startedBy,omitempty"`
	Status                 models.OperationStatus `json:"status"`
	Progress               int                    `json:"progress"`
	Message                string                 `json:"message"`
	EstimatedTimeRemaining *int64                 `json:"estimatedTimeRemaining,omitempty"`
	StartedAt              *time.Time             `json:"startedAt,omitempty"`
	CompletedAt            *time.Time             `json:"completedAt,omitempty"`
	AffectedCount          *int                   `json:"affectedCount,omitempty"`
	SuccessCount           *int                   `json:"successCount,omitempty"`
	FailedCount            *int                   `json:"failedCount,omitempty"`
	Errors                 []string               `json:"errors,omitempty"`
}

// HistoryItem summarises one past operation.
type HistoryItem struct {
	ID            string                 `json:"id"`
	Type          models.OperationType   `json:"type"`
	Status        models.OperationStatus `json:"status"`
	StartTime     time.Time              `json:"startTime"`
	EndTime       *time.Time             `json:"endTime,omitempty"`
	Summary       string                 `json:"summary"`
	AffectedCount int                    `json:"affectedCount"`
	SuccessCount  int                    `json:"successCount"`
	FailedCount   int                    `json:"failedCount"`
	Progress      int                    `json:"progress"`
}

// HistoryQuery filters the operation history listing. StartedBy narrows the
// listing to one actor's operations.
type HistoryQuery struct {
	Type      string
	Status    []string
	StartedBy string
	Page      int
	PageSize  int
}

// OperationDetail combines one operation with its log trail.
type OperationDetail struct {
	Operation models.BulkOperation  `json:"operation"`
	Logs      []models.OperationLog `json:"logs"`
}
