package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Ankish8/College-Management-sub001/internal/dto"
	"github.com/Ankish8/College-Management-sub001/internal/models"
	appErrors "github.com/Ankish8/College-Management-sub001/pkg/errors"
)

// OperationValidator runs read-only pre-flight checks for a bulk operation:
// referential resolution, degenerate-input detection, and a simulated
// post-operation conflict scan. It never writes.
type OperationValidator struct {
	batches   batchStore
	faculty   facultyStore
	entries   timetableStore
	calendar  calendarStore
	timeSlots timeSlotStore
	detector  *ConflictDetector
	logger    *zap.Logger
}

// NewOperationValidator constructs the validator.
func NewOperationValidator(batches batchStore, faculty facultyStore, entries timetableStore, calendar calendarStore, timeSlots timeSlotStore, detector *ConflictDetector, logger *zap.Logger) *OperationValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if detector == nil {
		detector = NewConflictDetector()
	}
	return &OperationValidator{
		batches:   batches,
		faculty:   faculty,
		entries:   entries,
		calendar:  calendar,
		timeSlots: timeSlots,
		detector:  detector,
		logger:    logger,
	}
}

// Validate returns the pre-flight verdict for the given parameters. Hard
// conflicts clear IsValid; warnings never do. Errors are reserved for
// infrastructure failures.
func (v *OperationValidator) Validate(ctx context.Context, params models.OperationParams) (*dto.ValidationResult, error) {
	result := &dto.ValidationResult{
		IsValid:           true,
		Conflicts:         []string{},
		Warnings:          []string{},
		DetectedConflicts: []models.EventConflict{},
		Suggestions:       []string{},
	}

	slots, err := v.timeSlots.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slots")
	}
	index := newSlotIndex(slots)

	switch params.Operation {
	case models.OperationClone:
		err = v.validateClone(ctx, params.Clone, index, result)
	case models.OperationFacultyReplace:
		err = v.validateFacultyReplace(ctx, params.FacultyReplace, index, result)
	case models.OperationReschedule:
		err = v.validateReschedule(ctx, params.Reschedule, index, result)
	default:
		result.IsValid = false
		result.Conflicts = append(result.Conflicts, fmt.Sprintf("unsupported operation: %s", params.Operation))
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	result.Suggestions = append(result.Suggestions,
		"review faculty availability before committing",
		"run a dry-run preview to inspect the proposed changes")
	result.IsValid = result.IsValid && len(result.Conflicts) == 0
	return result, nil
}

func (v *OperationValidator) validateClone(ctx context.Context, params *models.CloneParams, index *slotIndex, result *dto.ValidationResult) error {
	if params == nil {
		result.Conflicts = append(result.Conflicts, "clone parameters are missing")
		return nil
	}
	if params.SourceBatchID == params.TargetBatchID {
		result.Conflicts = append(result.Conflicts, "source and target batch must differ")
		return nil
	}
	if !v.batchExists(ctx, params.SourceBatchID, "source batch", result) {
		return nil
	}
	if !v.batchExists(ctx, params.TargetBatchID, "target batch", result) {
		return nil
	}

	source, err := v.entries.ListActiveByBatch(ctx, params.SourceBatchID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load source entries")
	}
	affected := filterCloneEntries(source, params.DateRange)
	result.AffectedCount = len(affected)
	if len(affected) == 0 {
		result.Warnings = append(result.Warnings, "source batch has no matching active entries")
		return nil
	}

	target, err := v.entries.ListActiveByBatch(ctx, params.TargetBatchID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load target entries")
	}

	proposed := make([]models.TimetableEntry, 0, len(affected))
	for _, e := range affected {
		clone := e
		clone.ID = "proposed-" + e.ID
		clone.BatchID = params.TargetBatchID
		if !params.PreserveFaculty {
			// without faculty preservation the clone keeps the slot free of
			// cross-batch faculty collisions by definition
			clone.FacultyID = ""
		}
		proposed = append(proposed, clone)
	}
	check := v.detector.Detect(buildEvents(append(target, proposed...), index))
	v.foldConflicts(check, result)
	return nil
}

func (v *OperationValidator) validateFacultyReplace(ctx context.Context, params *models.FacultyReplaceParams, index *slotIndex, result *dto.ValidationResult) error {
	if params == nil {
		result.Conflicts = append(result.Conflicts, "faculty replace parameters are missing")
		return nil
	}
	if params.CurrentFacultyID == params.NewFacultyID {
		result.Conflicts = append(result.Conflicts, "current and new faculty must differ")
		return nil
	}
	if !v.facultyExists(ctx, params.CurrentFacultyID, "current faculty", result) {
		return nil
	}
	if !v.facultyExists(ctx, params.NewFacultyID, "new faculty", result) {
		return nil
	}
	if params.BatchID != nil && !v.batchExists(ctx, *params.BatchID, "batch filter", result) {
		return nil
	}

	affected, err := v.entries.ListForFacultyReplace(ctx, params.CurrentFacultyID, params.BatchID, params.SubjectID, params.EffectiveFrom)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load affected entries")
	}
	result.AffectedCount = len(affected)
	if len(affected) == 0 {
		result.Warnings = append(result.Warnings, "no active entries match the replacement scope")
		return nil
	}

	existing, err := v.entries.ListActiveByFaculty(ctx, params.NewFacultyID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load new faculty schedule")
	}
	proposed := make([]models.TimetableEntry, 0, len(affected))
	for _, e := range affected {
		next := e
		next.ID = "proposed-" + e.ID
		next.FacultyID = params.NewFacultyID
		proposed = append(proposed, next)
	}
	check := v.detector.Detect(buildEvents(append(existing, proposed...), index))
	v.foldConflicts(check, result)

	// blackouts are advisory for a replacement, never hard conflicts
	window := affectedDateWindow(affected)
	if window != nil {
		blackouts, err := v.calendar.ListBlackoutsOverlapping(ctx, window.Start, window.End)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load blackout periods")
		}
		for _, e := range affected {
			if e.Date == nil {
				continue
			}
			for _, b := range blackouts {
				if b.FacultyID == params.NewFacultyID && b.Covers(*e.Date) {
					result.Warnings = append(result.Warnings, fmt.Sprintf("entry on %s falls inside new faculty blackout period", e.Date.Format("2006-01-02")))
				}
			}
		}
	}
	return nil
}

func (v *OperationValidator) validateReschedule(ctx context.Context, params *models.RescheduleParams, index *slotIndex, result *dto.ValidationResult) error {
	if params == nil {
		result.Conflicts = append(result.Conflicts, "reschedule parameters are missing")
		return nil
	}
	if params.SourceRange.End.Before(params.SourceRange.Start) || params.TargetRange.End.Before(params.TargetRange.Start) {
		result.Conflicts = append(result.Conflicts, "date range end must not precede start")
		return nil
	}
	if params.BatchID != nil && !v.batchExists(ctx, *params.BatchID, "batch filter", result) {
		return nil
	}

	affected, err := v.entries.ListDatedInRange(ctx, params.SourceRange.Start, params.SourceRange.End, params.BatchID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dated entries")
	}
	result.AffectedCount = len(affected)
	if len(affected) == 0 {
		result.Warnings = append(result.Warnings, "no dated entries fall inside the source window")
		return nil
	}

	holidays, err := v.calendar.ListHolidaysBetween(ctx, params.TargetRange.Start, params.TargetRange.End)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load holidays")
	}
	examPeriods, err := v.calendar.ListExamPeriodsOverlapping(ctx, params.TargetRange.Start, params.TargetRange.End, true)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam periods")
	}

	proposed := make([]models.TimetableEntry, 0, len(affected))
	for _, e := range affected {
		targetDate := MapDate(*e.Date, params.SourceRange, params.TargetRange, params.MoveType)
		if params.ExcludeWeekends {
			moved := false
			targetDate, moved = AdvanceWeekend(targetDate)
			if moved {
				result.Warnings = append(result.Warnings, fmt.Sprintf("entry %s advanced past a weekend to %s", e.ID, targetDate.Format("2006-01-02")))
			}
		}
		for _, p := range examPeriods {
			if p.Covers(targetDate) {
				result.Conflicts = append(result.Conflicts, fmt.Sprintf("entry %s would land inside exam period %q which blocks regular classes", e.ID, p.Name))
			}
		}
		for _, h := range holidays {
			if sameDate(h.Date, targetDate) {
				result.Warnings = append(result.Warnings, fmt.Sprintf("entry %s would land on holiday %q (%s)", e.ID, h.Name, targetDate.Format("2006-01-02")))
			}
		}
		next := e
		next.ID = "proposed-" + e.ID
		next.Date = &targetDate
		next.DayOfWeek = models.DayOfWeekFromDate(targetDate)
		proposed = append(proposed, next)
	}

	existing, err := v.entries.ListDatedInRange(ctx, params.TargetRange.Start, params.TargetRange.End, params.BatchID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load target-window entries")
	}
	check := v.detector.Detect(buildEvents(append(existing, proposed...), index))
	v.foldConflicts(check, result)
	return nil
}

func (v *OperationValidator) batchExists(ctx context.Context, id, label string, result *dto.ValidationResult) bool {
	if _, err := v.batches.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			result.Conflicts = append(result.Conflicts, fmt.Sprintf("%s not found: %s", label, id))
			return false
		}
		v.logger.Warn("batch lookup failed", zap.String("batch_id", id), zap.Error(err))
		result.Conflicts = append(result.Conflicts, fmt.Sprintf("%s could not be resolved: %s", label, id))
		return false
	}
	return true
}

func (v *OperationValidator) facultyExists(ctx context.Context, id, label string, result *dto.ValidationResult) bool {
	if _, err := v.faculty.FindFacultyByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			result.Conflicts = append(result.Conflicts, fmt.Sprintf("%s not found or not an active faculty member: %s", label, id))
			return false
		}
		v.logger.Warn("faculty lookup failed", zap.String("faculty_id", id), zap.Error(err))
		result.Conflicts = append(result.Conflicts, fmt.Sprintf("%s could not be resolved: %s", label, id))
		return false
	}
	return true
}

func (v *OperationValidator) foldConflicts(check models.ConflictCheckResult, result *dto.ValidationResult) {
	result.DetectedConflicts = append(result.DetectedConflicts, check.Conflicts...)
	for _, c := range check.Conflicts {
		if c.Severity == models.SeverityCritical {
			result.Conflicts = append(result.Conflicts, c.Description)
		} else {
			result.Warnings = append(result.Warnings, c.Description)
		}
	}
}

// filterCloneEntries keeps recurring entries always and dated entries only
// when they fall inside the optional clone window.
func filterCloneEntries(entries []models.TimetableEntry, window *models.DateRange) []models.TimetableEntry {
	if window == nil {
		return entries
	}
	out := make([]models.TimetableEntry, 0, len(entries))
	for _, e := range entries {
		if e.Date == nil {
			out = append(out, e)
			continue
		}
		d := e.Date.Truncate(24 * time.Hour)
		if !d.Before(window.Start.Truncate(24*time.Hour)) && !d.After(window.End.Truncate(24*time.Hour)) {
			out = append(out, e)
		}
	}
	return out
}

func affectedDateWindow(entries []models.TimetableEntry) *models.DateRange {
	var window *models.DateRange
	for _, e := range entries {
		if e.Date == nil {
			continue
		}
		if window == nil {
			window = &models.DateRange{Start: *e.Date, End: *e.Date}
			continue
		}
		if e.Date.Before(window.Start) {
			window.Start = *e.Date
		}
		if e.Date.After(window.End) {
			window.End = *e.Date
		}
	}
	return window
}

func sameDate(a, b time.Time) bool {
	return a.Truncate(24*time.Hour).Equal(b.Truncate(24 * time.Hour))
}
