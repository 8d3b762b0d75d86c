package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Ankish8/College-Management-sub001/internal/dto"
	"github.com/Ankish8/College-Management-sub001/internal/models"
	"github.com/Ankish8/College-Management-sub001/pkg/config"
	appErrors "github.com/Ankish8/College-Management-sub001/pkg/errors"
)

func newTrackerForTest(store *operationStoreStub) *OperationTracker {
	return NewOperationTracker(store, cacheStub{}, nil, config.EngineConfig{}, nil)
}

func cloneParamsForTest() models.OperationParams {
	return models.OperationParams{
		Operation: models.OperationClone,
		Clone: &models.CloneParams{
			SourceBatchID:   "batch-1",
			TargetBatchID:   "batch-2",
			HandleConflicts: models.ConflictPolicySkip,
		},
	}
}

func TestTrackerBeginCreatesRowAndOpeningLog(t *testing.T) {
	store := newOperationStoreStub()
	tracker := newTrackerForTest(store)

	op, err := tracker.Begin(context.Background(), cloneParamsForTest(), "admin-1", models.OperationStatusRunning)
	require.NoError(t, err)
	require.NotEmpty(t, op.ID)
	require.Equal(t, models.OperationClone, op.Type)
	require.Equal(t, models.OperationStatusRunning, op.Status)

	logs := store.logs[op.ID]
	require.Len(t, logs, 1)
	require.Equal(t, models.LogLevelInfo, logs[0].Level)
	require.Contains(t, logs[0].Message, "CLONE_TIMETABLE")
}

func TestTrackerProgressOnTerminalRowReportsConflict(t *testing.T) {
	store := newOperationStoreStub()
	tracker := newTrackerForTest(store)

	op, err := tracker.Begin(context.Background(), cloneParamsForTest(), "admin-1", models.OperationStatusRunning)
	require.NoError(t, err)

	require.NoError(t, tracker.Progress(context.Background(), op.ID, 42, Tally{Affected: 10, Successful: 4}))
	require.Equal(t, 42, store.ops[op.ID].Progress)

	require.NoError(t, tracker.Cancel(context.Background(), op.ID))

	err = tracker.Progress(context.Background(), op.ID, 50, Tally{})
	require.ErrorIs(t, err, errOperationTerminal)
	require.Equal(t, models.OperationStatusCancelled, store.ops[op.ID].Status)
}

func TestTrackerProgressClampsRange(t *testing.T) {
	store := newOperationStoreStub()
	tracker := newTrackerForTest(store)

	op, err := tracker.Begin(context.Background(), cloneParamsForTest(), "admin-1", models.OperationStatusRunning)
	require.NoError(t, err)

	require.NoError(t, tracker.Progress(context.Background(), op.ID, 180, Tally{}))
	require.Equal(t, 100, store.ops[op.ID].Progress)
	require.NoError(t, tracker.Progress(context.Background(), op.ID, -5, Tally{}))
	require.Equal(t, 0, store.ops[op.ID].Progress)
}

func TestTrackerCancelTerminalOperationConflicts(t *testing.T) {
	store := newOperationStoreStub()
	tracker := newTrackerForTest(store)

	op, err := tracker.Begin(context.Background(), cloneParamsForTest(), "admin-1", models.OperationStatusRunning)
	require.NoError(t, err)
	require.NoError(t, tracker.Complete(context.Background(), op.ID, &models.OperationResultSummary{Summary: "done"}))

	err = tracker.Cancel(context.Background(), op.ID)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	require.Contains(t, err.Error(), "already completed")
}

func TestTrackerCancelPausedOperationConflicts(t *testing.T) {
	store := newOperationStoreStub()
	tracker := newTrackerForTest(store)

	op, err := tracker.Begin(context.Background(), cloneParamsForTest(), "admin-1", models.OperationStatusRunning)
	require.NoError(t, err)
	store.ops[op.ID].Status = models.OperationStatusPaused

	err = tracker.Cancel(context.Background(), op.ID)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	require.Contains(t, err.Error(), "cannot be cancelled")
	require.Equal(t, models.OperationStatusPaused, store.ops[op.ID].Status)
}

func TestTrackerCancelUnknownOperation(t *testing.T) {
	store := newOperationStoreStub()
	tracker := newTrackerForTest(store)

	err := tracker.Cancel(context.Background(), "missing")
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestTrackerGetProgressComputesETA(t *testing.T) {
	store := newOperationStoreStub()
	tracker := newTrackerForTest(store)

	op, err := tracker.Begin(context.Background(), cloneParamsForTest(), "admin-1", models.OperationStatusRunning)
	require.NoError(t, err)
	// 50% done after ~40 seconds: about 40 seconds remain
	store.ops[op.ID].StartedAt = time.Now().UTC().Add(-40 * time.Second)
	store.ops[op.ID].Progress = 50

	resp, cached, err := tracker.GetProgress(context.Background(), op.ID)
	require.NoError(t, err)
	require.False(t, cached)
	require.Equal(t, "admin-1", resp.StartedBy)
	require.Equal(t, 50, resp.Progress)
	require.NotNil(t, resp.EstimatedTimeRemaining)
	require.InDelta(t, 40, float64(*resp.EstimatedTimeRemaining), 2)
}

func TestTrackerGetProgressOmitsETAAtZeroProgress(t *testing.T) {
	store := newOperationStoreStub()
	tracker := newTrackerForTest(store)

	op, err := tracker.Begin(context.Background(), cloneParamsForTest(), "admin-1", models.OperationStatusRunning)
	require.NoError(t, err)

	resp, cached, err := tracker.GetProgress(context.Background(), op.ID)
	require.NoError(t, err)
	require.False(t, cached)
	require.Nil(t, resp.EstimatedTimeRemaining)
	require.Equal(t, "operation started: CLONE_TIMETABLE", resp.Message)
}

func TestTrackerGetProgressOmitsETAOnTerminalRow(t *testing.T) {
	store := newOperationStoreStub()
	tracker := newTrackerForTest(store)

	op, err := tracker.Begin(context.Background(), cloneParamsForTest(), "admin-1", models.OperationStatusRunning)
	require.NoError(t, err)
	require.NoError(t, tracker.Complete(context.Background(), op.ID, &models.OperationResultSummary{
		Summary: "done", Affected: 3, Successful: 3,
	}))

	resp, cached, err := tracker.GetProgress(context.Background(), op.ID)
	require.NoError(t, err)
	require.False(t, cached)
	require.Equal(t, models.OperationStatusCompleted, resp.Status)
	require.Equal(t, 100, resp.Progress)
	require.Nil(t, resp.EstimatedTimeRemaining)
}

func TestTrackerHistorySummarisesResultsAndFailures(t *testing.T) {
	store := newOperationStoreStub()
	tracker := newTrackerForTest(store)

	done, err := tracker.Begin(context.Background(), cloneParamsForTest(), "admin-1", models.OperationStatusRunning)
	require.NoError(t, err)
	require.NoError(t, tracker.Complete(context.Background(), done.ID, &models.OperationResultSummary{
		Summary: "Cloned 5 of 5 entries", Affected: 5, Successful: 5,
	}))

	failed, err := tracker.Begin(context.Background(), cloneParamsForTest(), "admin-1", models.OperationStatusRunning)
	require.NoError(t, err)
	require.NoError(t, tracker.Fail(context.Background(), failed.ID, "source batch not found"))

	items, total, err := tracker.History(context.Background(), dto.HistoryQuery{Type: "clone_timetable"})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, items, 2)

	byID := make(map[string]dto.HistoryItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	require.Equal(t, "Cloned 5 of 5 entries", byID[done.ID].Summary)
	require.Equal(t, 5, byID[done.ID].SuccessCount)
	require.Equal(t, "source batch not found", byID[failed.ID].Summary)
	require.Equal(t, models.OperationStatusFailed, byID[failed.ID].Status)
}

func TestTrackerHistoryFiltersByStarter(t *testing.T) {
	store := newOperationStoreStub()
	tracker := newTrackerForTest(store)

	mine, err := tracker.Begin(context.Background(), cloneParamsForTest(), "faculty-1", models.OperationStatusRunning)
	require.NoError(t, err)
	_, err = tracker.Begin(context.Background(), cloneParamsForTest(), "admin-1", models.OperationStatusRunning)
	require.NoError(t, err)

	items, total, err := tracker.History(context.Background(), dto.HistoryQuery{StartedBy: "faculty-1"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, items, 1)
	require.Equal(t, mine.ID, items[0].ID)
}

func TestTrackerMarkRunningRequiresPending(t *testing.T) {
	store := newOperationStoreStub()
	tracker := newTrackerForTest(store)

	op, err := tracker.Begin(context.Background(), cloneParamsForTest(), "admin-1", models.OperationStatusPending)
	require.NoError(t, err)
	require.NoError(t, tracker.MarkRunning(context.Background(), op.ID))
	require.Equal(t, models.OperationStatusRunning, store.ops[op.ID].Status)

	err = tracker.MarkRunning(context.Background(), op.ID)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
