package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Ankish8/College-Management-sub001/internal/dto"
	"github.com/Ankish8/College-Management-sub001/internal/models"
	"github.com/Ankish8/College-Management-sub001/pkg/config"
	appErrors "github.com/Ankish8/College-Management-sub001/pkg/errors"
)

// OperationTracker owns the bulk operation state machine: row creation,
// progress writes, lifecycle transitions, logs, progress polls, and history.
// Terminal rows are immutable; the guarded repository updates enforce that and
// the tracker translates the resulting sql.ErrNoRows into conflict errors.
type OperationTracker struct {
	repo    operationStore
	cache   progressCache
	metrics *MetricsService
	cfg     config.EngineConfig
	logger  *zap.Logger
}

// NewOperationTracker constructs the tracker.
func NewOperationTracker(repo operationStore, cache progressCache, metrics *MetricsService, cfg config.EngineConfig, logger *zap.Logger) *OperationTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OperationTracker{repo: repo, cache: cache, metrics: metrics, cfg: cfg, logger: logger}
}

func progressCacheKey(id string) string {
	return "bulkops:progress:" + id
}

// Begin creates the operation row in the given initial status and appends the
// opening log entry.
func (t *OperationTracker) Begin(ctx context.Context, params models.OperationParams, startedBy string, status models.OperationStatus) (*models.BulkOperation, error) {
	op := &models.BulkOperation{
		Type:      params.Operation,
		Params:    params,
		Status:    status,
		StartedBy: startedBy,
		StartedAt: time.Now().UTC(),
	}
	if err := t.repo.Create(ctx, op); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create operation")
	}
	t.Log(ctx, op.ID, models.LogLevelInfo, fmt.Sprintf("operation started: %s", params.Operation))
	return op, nil
}

// MarkRunning promotes a PENDING operation before async execution. A row that
// is no longer PENDING (e.g. cancelled while queued) reports ErrConflict.
func (t *OperationTracker) MarkRunning(ctx context.Context, id string) error {
	if err := t.repo.MarkRunning(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrConflict, "operation is no longer pending")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start operation")
	}
	t.invalidate(ctx, id)
	return nil
}

// Log appends one leveled log row; failures are logged and swallowed so the
// executor never aborts on telemetry.
func (t *OperationTracker) Log(ctx context.Context, operationID string, level models.LogLevel, message string) {
	err := t.repo.AppendLog(ctx, &models.OperationLog{
		OperationID: operationID,
		Level:       level,
		Message:     message,
	})
	if err != nil {
		t.logger.Warn("failed to append operation log", zap.String("operation_id", operationID), zap.Error(err))
	}
}

// Progress persists a progress snapshot. sql.ErrNoRows from the guarded
// update means the row went terminal underneath us (cancellation).
func (t *OperationTracker) Progress(ctx context.Context, id string, progress int, tally Tally) error {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	if err := t.repo.UpdateProgress(ctx, id, progress, tally.Affected, tally.Successful, tally.Failed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errOperationTerminal
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update progress")
	}
	t.invalidate(ctx, id)
	return nil
}

// Cancelled reports whether the operation has been cancelled. The executor
// checks it cooperatively between per-entry transactions.
func (t *OperationTracker) Cancelled(ctx context.Context, id string) bool {
	status, err := t.repo.GetStatus(ctx, id)
	if err != nil {
		t.logger.Warn("failed to read operation status", zap.String("operation_id", id), zap.Error(err))
		return false
	}
	return status == models.OperationStatusCancelled
}

// Complete finalises the operation with its result summary.
func (t *OperationTracker) Complete(ctx context.Context, id string, result *models.OperationResultSummary) error {
	if err := t.repo.Complete(ctx, id, result); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errOperationTerminal
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete operation")
	}
	t.Log(ctx, id, models.LogLevelInfo, result.Summary)
	t.invalidate(ctx, id)
	return nil
}

// Fail finalises the operation with an error message.
func (t *OperationTracker) Fail(ctx context.Context, id, message string) error {
	if err := t.repo.Fail(ctx, id, message); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errOperationTerminal
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark operation failed")
	}
	t.Log(ctx, id, models.LogLevelError, message)
	t.invalidate(ctx, id)
	return nil
}

// Cancel requests cancellation of a PENDING or RUNNING operation. Work that
// prior iterations already committed is not rolled back.
func (t *OperationTracker) Cancel(ctx context.Context, id string) error {
	op, err := t.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load operation")
	}
	switch op.Status {
	case models.OperationStatusPending, models.OperationStatusRunning:
	default:
		if op.Status.Terminal() {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("operation already %s", strings.ToLower(string(op.Status))))
		}
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("operation is %s and cannot be cancelled", strings.ToLower(string(op.Status))))
	}
	if err := t.repo.Cancel(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrConflict, "operation already finished")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel operation")
	}
	t.Log(ctx, id, models.LogLevelWarning, "operation cancelled by user")
	t.invalidate(ctx, id)
	return nil
}

// GetProgress serves a progress poll, from redis when a fresh snapshot
// exists, otherwise from the store. The boolean reports whether the snapshot
// came from cache. ETA uses (elapsed/progress)*(100-progress) and is omitted
// until progress is positive.
func (t *OperationTracker) GetProgress(ctx context.Context, id string) (*dto.ProgressResponse, bool, error) {
	if t.cache != nil {
		start := time.Now()
		var cached dto.ProgressResponse
		err := t.cache.Get(ctx, progressCacheKey(id), &cached)
		t.metrics.RecordCacheOperation(err == nil, time.Since(start))
		if err == nil {
			return &cached, true, nil
		}
	}

	op, err := t.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.ErrNotFound
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load operation")
	}

	resp := &dto.ProgressResponse{
		OperationID:   op.ID,
		StartedBy:     op.StartedBy,
		Status:        op.Status,
		Progress:      op.Progress,
		StartedAt:     &op.StartedAt,
		CompletedAt:   op.CompletedAt,
		AffectedCount: &op.AffectedCount,
		SuccessCount:  &op.SuccessCount,
		FailedCount:   &op.FailedCount,
	}
	resp.Message = t.latestMessage(ctx, op)
	if op.Result != nil && len(op.Result.Errors) > 0 {
		resp.Errors = op.Result.Errors
	}
	if op.ErrorMessage != nil {
		resp.Errors = append(resp.Errors, *op.ErrorMessage)
	}
	if !op.Status.Terminal() && op.Progress > 0 {
		elapsed := time.Since(op.StartedAt)
		remaining := int64(float64(elapsed/time.Second) / float64(op.Progress) * float64(100-op.Progress))
		resp.EstimatedTimeRemaining = &remaining
	}

	if t.cache != nil {
		ttl := t.cfg.ProgressCacheTTL
		if ttl <= 0 {
			ttl = 2 * time.Second
		}
		if err := t.cache.Set(ctx, progressCacheKey(id), resp, ttl); err != nil {
			t.logger.Warn("failed to cache progress snapshot", zap.String("operation_id", id), zap.Error(err))
		}
	}
	return resp, false, nil
}

// History returns a page of past operations with the unpaged total.
func (t *OperationTracker) History(ctx context.Context, query dto.HistoryQuery) ([]dto.HistoryItem, int, error) {
	filter := models.OperationFilter{
		StartedBy: query.StartedBy,
		Page:      query.Page,
		PageSize:  query.PageSize,
	}
	if query.Type != "" {
		filter.Type = models.OperationType(strings.ToUpper(strings.TrimSpace(query.Type)))
	}
	for _, s := range query.Status {
		filter.Status = append(filter.Status, models.OperationStatus(strings.ToUpper(strings.TrimSpace(s))))
	}
	ops, total, err := t.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list operations")
	}
	items := make([]dto.HistoryItem, 0, len(ops))
	for _, op := range ops {
		item := dto.HistoryItem{
			ID:            op.ID,
			Type:          op.Type,
			Status:        op.Status,
			StartTime:     op.StartedAt,
			EndTime:       op.CompletedAt,
			AffectedCount: op.AffectedCount,
			SuccessCount:  op.SuccessCount,
			FailedCount:   op.FailedCount,
			Progress:      op.Progress,
		}
		if op.Result != nil {
			item.Summary = op.Result.Summary
		} else if op.ErrorMessage != nil {
			item.Summary = *op.ErrorMessage
		}
		items = append(items, item)
	}
	return items, total, nil
}

// Detail returns one operation with its full log trail.
func (t *OperationTracker) Detail(ctx context.Context, id string) (*dto.OperationDetail, error) {
	op, err := t.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load operation")
	}
	logs, err := t.repo.ListLogs(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load operation logs")
	}
	return &dto.OperationDetail{Operation: *op, Logs: logs}, nil
}

func (t *OperationTracker) latestMessage(ctx context.Context, op *models.BulkOperation) string {
	log, err := t.repo.LatestLog(ctx, op.ID)
	if err == nil {
		return log.Message
	}
	switch op.Status {
	case models.OperationStatusPending:
		return "operation queued"
	case models.OperationStatusRunning:
		return "operation in progress"
	default:
		return strings.ToLower(string(op.Status))
	}
}

func (t *OperationTracker) invalidate(ctx context.Context, id string) {
	if t.cache == nil {
		return
	}
	if err := t.cache.DeleteByPattern(ctx, progressCacheKey(id)); err != nil {
		t.logger.Warn("failed to invalidate progress cache", zap.String("operation_id", id), zap.Error(err))
	}
}

// errOperationTerminal signals that a lifecycle write hit a row that already
// reached a terminal state.
var errOperationTerminal = appErrors.Clone(appErrors.ErrConflict, "operation already reached a terminal state")
