package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ankish8/College-Management-sub001/internal/models"
)

func cloneParams(sourceBatch, targetBatch string, preserveFaculty bool) models.OperationParams {
	return models.OperationParams{
		Operation: models.OperationClone,
		Clone: &models.CloneParams{
			SourceBatchID:   sourceBatch,
			TargetBatchID:   targetBatch,
			PreserveFaculty: preserveFaculty,
			HandleConflicts: models.ConflictPolicySkip,
		},
	}
}

func TestValidatorRejectsUnknownSourceBatch(t *testing.T) {
	f := newEngineFixture(t)

	result, err := f.svc.validator.Validate(context.Background(), cloneParams("batch-9", "batch-2", false))
	require.NoError(t, err)
	require.False(t, result.IsValid)
	require.Contains(t, result.Conflicts[0], "source batch not found: batch-9")
}

func TestValidatorRejectsDegenerateClone(t *testing.T) {
	f := newEngineFixture(t)

	result, err := f.svc.validator.Validate(context.Background(), cloneParams("batch-1", "batch-1", false))
	require.NoError(t, err)
	require.False(t, result.IsValid)
	require.Contains(t, result.Conflicts[0], "source and target batch must differ")
}

func TestValidatorDetectsFacultyDoubleBookingOnClone(t *testing.T) {
	f := newEngineFixture(t)
	f.entries.entries = []models.TimetableEntry{
		weeklyEntry("entry-1", "batch-1", "subject-1", "faculty-1", "slot-1", models.Monday),
		weeklyEntry("entry-2", "batch-2", "subject-2", "faculty-1", "slot-1", models.Monday),
	}

	result, err := f.svc.validator.Validate(context.Background(), cloneParams("batch-1", "batch-2", true))
	require.NoError(t, err)
	require.False(t, result.IsValid)
	require.Equal(t, 1, result.AffectedCount)
	require.NotEmpty(t, result.DetectedConflicts)
	require.Equal(t, models.SeverityCritical, result.DetectedConflicts[0].Severity)
	require.Contains(t, result.Conflicts[0], "faculty double-booked")
}

func TestValidatorClonedSlotCollisionIsOnlyAWarningWithoutFaculty(t *testing.T) {
	f := newEngineFixture(t)
	f.entries.entries = []models.TimetableEntry{
		weeklyEntry("entry-1", "batch-1", "subject-1", "faculty-1", "slot-1", models.Monday),
		weeklyEntry("entry-2", "batch-2", "subject-2", "faculty-1", "slot-1", models.Monday),
	}

	// without preserveFaculty the simulated clones carry no faculty, so the
	// collision degrades to a batch-level warning
	result, err := f.svc.validator.Validate(context.Background(), cloneParams("batch-1", "batch-2", false))
	require.NoError(t, err)
	require.True(t, result.IsValid)
	require.NotEmpty(t, result.Warnings)
	require.Contains(t, result.Warnings[0], "batch double-booked")
}

func TestValidatorFacultyReplaceEmptyScopeWarns(t *testing.T) {
	f := newEngineFixture(t)

	params := models.OperationParams{
		Operation: models.OperationFacultyReplace,
		FacultyReplace: &models.FacultyReplaceParams{
			CurrentFacultyID: "faculty-1",
			NewFacultyID:     "faculty-2",
		},
	}
	result, err := f.svc.validator.Validate(context.Background(), params)
	require.NoError(t, err)
	require.True(t, result.IsValid)
	require.Equal(t, 0, result.AffectedCount)
	require.Contains(t, result.Warnings[0], "no active entries match")
}

func TestValidatorFacultyReplaceBlackoutIsAdvisory(t *testing.T) {
	f := newEngineFixture(t)
	f.entries.entries = []models.TimetableEntry{
		datedEntry("entry-1", "batch-1", "subject-1", "faculty-1", "slot-1", date(2025, 8, 4)),
	}
	f.calendar.blackouts = []models.FacultyBlackoutPeriod{
		{ID: "blk-1", FacultyID: "faculty-2", StartDate: date(2025, 8, 1), EndDate: date(2025, 8, 10)},
	}

	params := models.OperationParams{
		Operation: models.OperationFacultyReplace,
		FacultyReplace: &models.FacultyReplaceParams{
			CurrentFacultyID: "faculty-1",
			NewFacultyID:     "faculty-2",
		},
	}
	result, err := f.svc.validator.Validate(context.Background(), params)
	require.NoError(t, err)
	require.True(t, result.IsValid, "a blackout never blocks the operation")
	require.Contains(t, result.Warnings[0], "blackout")
}

func TestValidatorRescheduleIntoExamPeriodIsHardConflict(t *testing.T) {
	f := newEngineFixture(t)
	f.entries.entries = []models.TimetableEntry{
		datedEntry("entry-1", "batch-1", "subject-1", "faculty-1", "slot-1", date(2025, 8, 4)),
	}
	f.calendar.examPeriods = []models.ExamPeriod{
		{ID: "exam-1", Name: "Midterms", StartDate: date(2025, 8, 11), EndDate: date(2025, 8, 15), BlockRegularClasses: true},
	}

	params := models.OperationParams{
		Operation: models.OperationReschedule,
		Reschedule: &models.RescheduleParams{
			SourceRange: models.DateRange{Start: date(2025, 8, 4), End: date(2025, 8, 8)},
			TargetRange: models.DateRange{Start: date(2025, 8, 11), End: date(2025, 8, 15)},
			MoveType:    models.MoveTypeShift,
		},
	}
	result, err := f.svc.validator.Validate(context.Background(), params)
	require.NoError(t, err)
	require.False(t, result.IsValid)
	require.Contains(t, result.Conflicts[0], `exam period "Midterms"`)
}

func TestValidatorRescheduleOntoHolidayOnlyWarns(t *testing.T) {
	f := newEngineFixture(t)
	f.entries.entries = []models.TimetableEntry{
		datedEntry("entry-1", "batch-1", "subject-1", "faculty-1", "slot-1", date(2025, 8, 4)),
	}
	f.calendar.holidays = []models.Holiday{
		{ID: "hol-1", Name: "Independence Day", Date: date(2025, 8, 11)},
	}

	params := models.OperationParams{
		Operation: models.OperationReschedule,
		Reschedule: &models.RescheduleParams{
			SourceRange: models.DateRange{Start: date(2025, 8, 4), End: date(2025, 8, 8)},
			TargetRange: models.DateRange{Start: date(2025, 8, 11), End: date(2025, 8, 15)},
			MoveType:    models.MoveTypeShift,
		},
	}
	result, err := f.svc.validator.Validate(context.Background(), params)
	require.NoError(t, err)
	require.True(t, result.IsValid)
	require.Contains(t, result.Warnings[0], `holiday "Independence Day"`)
}

func TestValidatorRescheduleWarnsOnWeekendAdvance(t *testing.T) {
	f := newEngineFixture(t)
	f.entries.entries = []models.TimetableEntry{
		datedEntry("entry-1", "batch-1", "subject-1", "faculty-1", "slot-1", date(2025, 8, 9)), // Saturday
	}

	params := models.OperationParams{
		Operation: models.OperationReschedule,
		Reschedule: &models.RescheduleParams{
			SourceRange:     models.DateRange{Start: date(2025, 8, 4), End: date(2025, 8, 9)},
			TargetRange:     models.DateRange{Start: date(2025, 8, 11), End: date(2025, 8, 16)},
			MoveType:        models.MoveTypeShift,
			ExcludeWeekends: true,
		},
	}
	result, err := f.svc.validator.Validate(context.Background(), params)
	require.NoError(t, err)
	require.True(t, result.IsValid)
	require.Contains(t, result.Warnings[0], "advanced past a weekend to 2025-08-18")
}
