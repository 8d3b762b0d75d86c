package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ankish8/College-Management-sub001/internal/models"
)

func TestPreviewCloneBucketsCreates(t *testing.T) {
	f := newEngineFixture(t)
	f.entries.entries = []models.TimetableEntry{
		weeklyEntry("entry-1", "batch-1", "subject-1", "faculty-1", "slot-1", models.Monday),
		weeklyEntry("entry-2", "batch-1", "subject-1", "faculty-1", "slot-2", models.Tuesday),
	}

	resp, err := f.svc.preview.Generate(context.Background(), cloneParams("batch-1", "batch-2", true))
	require.NoError(t, err)
	require.True(t, resp.Validation.IsValid)
	require.Len(t, resp.Creates, 2)
	require.Empty(t, resp.Updates)
	require.Empty(t, resp.Deletes)
	require.Equal(t, "batch-2", resp.Creates[0].BatchID)
	require.Equal(t, 2, resp.ResourceImpact.BatchLoadDelta["batch-2"])
	require.Equal(t, 2, resp.ResourceImpact.FacultyLoadDelta["faculty-1"])
	require.Equal(t, 60, resp.EstimatedDurationSeconds)
}

func TestPreviewCloneSkipPolicyProducesNoChangeForCollisions(t *testing.T) {
	f := newEngineFixture(t)
	f.entries.entries = []models.TimetableEntry{
		weeklyEntry("entry-1", "batch-1", "subject-1", "faculty-1", "slot-1", models.Monday),
		weeklyEntry("entry-2", "batch-2", "subject-2", "faculty-2", "slot-1", models.Monday),
	}

	resp, err := f.svc.preview.Generate(context.Background(), cloneParams("batch-1", "batch-2", false))
	require.NoError(t, err)
	require.True(t, resp.Validation.IsValid)
	require.Empty(t, resp.Creates)
	require.Empty(t, resp.Deletes)
}

func TestPreviewCloneOverridePolicyPairsDeleteWithCreate(t *testing.T) {
	f := newEngineFixture(t)
	f.entries.entries = []models.TimetableEntry{
		weeklyEntry("entry-1", "batch-1", "subject-1", "faculty-1", "slot-1", models.Monday),
		weeklyEntry("entry-2", "batch-2", "subject-2", "faculty-2", "slot-1", models.Monday),
	}

	params := cloneParams("batch-1", "batch-2", false)
	params.Clone.HandleConflicts = models.ConflictPolicyOverride

	resp, err := f.svc.preview.Generate(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, resp.Deletes, 1)
	require.Equal(t, "entry-2", resp.Deletes[0].EntryID)
	require.Len(t, resp.Creates, 1)
}

func TestPreviewStopsAtInvalidValidation(t *testing.T) {
	f := newEngineFixture(t)

	resp, err := f.svc.preview.Generate(context.Background(), cloneParams("batch-9", "batch-2", false))
	require.NoError(t, err)
	require.False(t, resp.Validation.IsValid)
	require.Empty(t, resp.Creates)
	require.Empty(t, resp.Updates)
	require.Equal(t, 0, resp.EstimatedDurationSeconds)
}

func TestPreviewFacultyReplaceReportsLoadDeltas(t *testing.T) {
	f := newEngineFixture(t)
	f.entries.entries = []models.TimetableEntry{
		weeklyEntry("entry-1", "batch-1", "subject-1", "faculty-1", "slot-1", models.Monday),
	}

	params := models.OperationParams{
		Operation: models.OperationFacultyReplace,
		FacultyReplace: &models.FacultyReplaceParams{
			CurrentFacultyID: "faculty-1",
			NewFacultyID:     "faculty-2",
		},
	}
	resp, err := f.svc.preview.Generate(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, resp.Updates, 1)
	require.Equal(t, "faculty-2", resp.Updates[0].FacultyID)
	require.Equal(t, -1, resp.ResourceImpact.FacultyLoadDelta["faculty-1"])
	require.Equal(t, 1, resp.ResourceImpact.FacultyLoadDelta["faculty-2"])
}

func TestPreviewRescheduleDescribesMoves(t *testing.T) {
	f := newEngineFixture(t)
	f.entries.entries = []models.TimetableEntry{
		datedEntry("entry-1", "batch-1", "subject-1", "faculty-1", "slot-1", date(2025, 8, 4)),
	}

	params := models.OperationParams{
		Operation: models.OperationReschedule,
		Reschedule: &models.RescheduleParams{
			SourceRange: models.DateRange{Start: date(2025, 8, 4), End: date(2025, 8, 8)},
			TargetRange: models.DateRange{Start: date(2025, 8, 11), End: date(2025, 8, 15)},
			MoveType:    models.MoveTypeShift,
			BatchID:     strp("batch-1"),
		},
	}
	resp, err := f.svc.preview.Generate(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, resp.Updates, 1)
	require.Contains(t, resp.Updates[0].Description, "from 2025-08-04 to 2025-08-11")
	require.Equal(t, date(2025, 8, 11), *resp.Updates[0].Date)
}

func TestPreviewSurfacesConflictVisualization(t *testing.T) {
	f := newEngineFixture(t)
	f.entries.entries = []models.TimetableEntry{
		weeklyEntry("entry-1", "batch-1", "subject-1", "faculty-1", "slot-1", models.Monday),
		weeklyEntry("entry-2", "batch-2", "subject-2", "faculty-1", "slot-1", models.Monday),
	}

	resp, err := f.svc.preview.Generate(context.Background(), cloneParams("batch-1", "batch-2", true))
	require.NoError(t, err)
	require.NotNil(t, resp.ConflictVisualization)
	require.Equal(t, 1, resp.ConflictVisualization.TotalCount)
	require.Equal(t, 1, resp.ConflictVisualization.CriticalCount)
}
