package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Ankish8/College-Management-sub001/internal/dto"
	"github.com/Ankish8/College-Management-sub001/internal/models"
	"github.com/Ankish8/College-Management-sub001/pkg/config"
	appErrors "github.com/Ankish8/College-Management-sub001/pkg/errors"
	"github.com/Ankish8/College-Management-sub001/pkg/jobs"
)

// executor is one bulk operation kind's contribution to the shared lifecycle:
// resolve inputs and preload state, apply one entry inside the transaction,
// and summarise the folded tally.
type executor interface {
	prepare(ctx context.Context) (int, error)
	apply(ctx context.Context, tx sqlx.ExtContext, i int) (EntryOutcome, error)
	finalize(ctx context.Context, tally *Tally) error
	summary(t *Tally) string
}

// BulkOperationService orchestrates the three bulk timetable mutations behind
// one request shape. Execution is synchronous by default; the async option
// queues the operation onto the background worker pool instead.
type BulkOperationService struct {
	validator *OperationValidator
	tracker   *OperationTracker
	preview   *PreviewService
	tx        txProvider
	ops       operationStore
	batches   batchStore
	faculty   facultyStore
	subjects  subjectStore
	entries   timetableStore
	calendar  calendarStore
	timeSlots timeSlotStore
	cfg       config.EngineConfig
	metrics   *MetricsService
	logger    *zap.Logger
	queue     *jobs.Queue
}

// BulkOperationServiceDeps bundles the service's collaborators.
type BulkOperationServiceDeps struct {
	Validator  *OperationValidator
	Tracker    *OperationTracker
	Preview    *PreviewService
	TxProvider txProvider
	Operations operationStore
	Batches    batchStore
	Faculty    facultyStore
	Subjects   subjectStore
	Entries    timetableStore
	Calendar   calendarStore
	TimeSlots  timeSlotStore
	Engine     config.EngineConfig
	Metrics    *MetricsService
	Logger     *zap.Logger
}

// NewBulkOperationService constructs the service.
func NewBulkOperationService(deps BulkOperationServiceDeps) *BulkOperationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BulkOperationService{
		validator: deps.Validator,
		tracker:   deps.Tracker,
		preview:   deps.Preview,
		tx:        deps.TxProvider,
		ops:       deps.Operations,
		batches:   deps.Batches,
		faculty:   deps.Faculty,
		subjects:  deps.Subjects,
		entries:   deps.Entries,
		calendar:  deps.Calendar,
		timeSlots: deps.TimeSlots,
		cfg:       deps.Engine,
		metrics:   deps.Metrics,
		logger:    logger,
	}
}

// AttachQueue wires the background queue used for async execution. Called
// once at startup after the queue's handler is bound to HandleJob.
func (s *BulkOperationService) AttachQueue(queue *jobs.Queue) {
	s.queue = queue
}

// Validate runs the read-only pre-flight for a request.
func (s *BulkOperationService) Validate(ctx context.Context, req dto.BulkOperationRequest) (*dto.ValidationResult, error) {
	params, err := buildOperationParams(req)
	if err != nil {
		return nil, err
	}
	return s.validator.Validate(ctx, params)
}

// Preview runs the dry-run generator for a request.
func (s *BulkOperationService) Preview(ctx context.Context, req dto.BulkOperationRequest) (*dto.PreviewResponse, error) {
	params, err := buildOperationParams(req)
	if err != nil {
		return nil, err
	}
	return s.preview.Generate(ctx, params)
}

// Execute runs a bulk operation for the given actor. The returned result is
// deterministic: a non-empty summary always, success=false whenever any entry
// failed. With options.async the operation is queued and the result carries
// only the operation id.
func (s *BulkOperationService) Execute(ctx context.Context, req dto.BulkOperationRequest, actorID string) (*dto.OperationResult, error) {
	params, err := buildOperationParams(req)
	if err != nil {
		return nil, err
	}

	if req.Options.Async {
		return s.enqueue(ctx, params, actorID)
	}

	op, err := s.tracker.Begin(ctx, params, actorID, models.OperationStatusRunning)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, op), nil
}

// HandleJob is the background queue handler. The payload is the operation id
// created by Execute in PENDING status.
func (s *BulkOperationService) HandleJob(ctx context.Context, job jobs.Job) error {
	operationID, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("unexpected job payload type %T", job.Payload)
	}
	op, err := s.ops.GetByID(ctx, operationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("queued operation vanished", zap.String("operation_id", operationID))
			return nil
		}
		return err
	}
	if err := s.tracker.MarkRunning(ctx, operationID); err != nil {
		// cancelled while queued, or already picked up
		s.logger.Info("queued operation not started", zap.String("operation_id", operationID), zap.Error(err))
		return nil
	}
	result := s.run(ctx, op)
	s.logger.Info("queued operation finished",
		zap.String("operation_id", operationID),
		zap.Bool("success", result.Success),
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed))
	return nil
}

func (s *BulkOperationService) enqueue(ctx context.Context, params models.OperationParams, actorID string) (*dto.OperationResult, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "background execution is not available")
	}
	op, err := s.tracker.Begin(ctx, params, actorID, models.OperationStatusPending)
	if err != nil {
		return nil, err
	}
	err = s.queue.Enqueue(jobs.Job{
		ID:      op.ID,
		Type:    string(params.Operation),
		Payload: op.ID,
	})
	if err != nil {
		failMsg := "failed to queue operation"
		if ferr := s.tracker.Fail(ctx, op.ID, failMsg); ferr != nil {
			s.logger.Warn("could not mark unqueued operation failed", zap.String("operation_id", op.ID), zap.Error(ferr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, failMsg)
	}
	return &dto.OperationResult{
		Success:     true,
		OperationID: op.ID,
		Errors:      []string{},
		Warnings:    []string{},
		Summary:     fmt.Sprintf("%s queued for background execution", params.Operation),
	}, nil
}

// run drives the shared executor lifecycle: resolve, load, one transactional
// write scope over all entries, progress updates in small separate writes,
// then a terminal transition. Business failures stay per-entry; unexpected
// errors roll back the whole transaction.
func (s *BulkOperationService) run(ctx context.Context, op *models.BulkOperation) *dto.OperationResult {
	started := time.Now()
	result := &dto.OperationResult{
		OperationID: op.ID,
		Errors:      []string{},
		Warnings:    []string{},
	}

	exec, err := s.newExecutor(op)
	if err != nil {
		return s.failResult(ctx, op, started, result, appErrors.FromError(err).Message)
	}
	total, err := exec.prepare(ctx)
	if err != nil {
		return s.failResult(ctx, op, started, result, appErrors.FromError(err).Message)
	}
	if total == 0 {
		s.tracker.Log(ctx, op.ID, models.LogLevelWarning, "no matching entries; nothing to do")
		summary := &models.OperationResultSummary{Summary: "no matching entries; nothing to do"}
		if err := s.tracker.Complete(ctx, op.ID, summary); err != nil && !errors.Is(err, errOperationTerminal) {
			s.logger.Warn("failed to complete empty operation", zap.String("operation_id", op.ID), zap.Error(err))
		}
		s.metrics.ObserveOperation(op.Type, models.OperationStatusCompleted, 0, 0, time.Since(started))
		result.Success = true
		result.Summary = summary.Summary
		result.Warnings = append(result.Warnings, "no matching entries")
		return result
	}

	// cooperative cancellation point: after setup, before the atomic write
	if s.tracker.Cancelled(ctx, op.ID) {
		result.Summary = "operation cancelled before execution"
		result.Errors = append(result.Errors, "operation cancelled")
		return result
	}

	tally := Tally{Affected: total}
	if err := s.tracker.Progress(ctx, op.ID, 10, tally); err != nil && !errors.Is(err, errOperationTerminal) {
		s.logger.Warn("failed to record setup progress", zap.String("operation_id", op.ID), zap.Error(err))
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return s.failResult(ctx, op, started, result, "failed to open transaction")
	}
	var txErr error
	defer func() {
		if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	every := s.cfg.ProgressUpdateEvery
	if every <= 0 {
		every = 5
	}
	progressHalted := false
	for i := 0; i < total; i++ {
		outcome, err := exec.apply(ctx, tx, i)
		if err != nil {
			txErr = err
			s.logger.Error("bulk operation aborted",
				zap.String("operation_id", op.ID),
				zap.String("type", string(op.Type)),
				zap.Error(err))
			return s.failResult(ctx, op, started, result, fmt.Sprintf("unexpected failure, all changes rolled back: %v", err))
		}
		tally.Fold(outcome)
		if (i+1)%every == 0 && !progressHalted {
			progress := 10 + (i+1)*80/total
			if err := s.tracker.Progress(ctx, op.ID, progress, tally); err != nil {
				if errors.Is(err, errOperationTerminal) {
					// cancelled mid-flight: the dispatched transaction still
					// completes, no further tracker writes
					progressHalted = true
				} else {
					s.logger.Warn("failed to record progress", zap.String("operation_id", op.ID), zap.Error(err))
				}
			}
		}
	}

	if err := exec.finalize(ctx, &tally); err != nil {
		s.logger.Warn("executor finalize failed", zap.String("operation_id", op.ID), zap.Error(err))
	}
	if err := tx.Commit(); err != nil {
		txErr = err
		return s.failResult(ctx, op, started, result, fmt.Sprintf("failed to commit transaction: %v", err))
	}

	summary := &models.OperationResultSummary{
		Summary:    exec.summary(&tally),
		Errors:     tally.Errors,
		Warnings:   tally.Warnings,
		Affected:   tally.Affected,
		Successful: tally.Successful,
		Failed:     tally.Failed,
	}
	if err := s.tracker.Complete(ctx, op.ID, summary); err != nil && !errors.Is(err, errOperationTerminal) {
		s.logger.Warn("failed to complete operation", zap.String("operation_id", op.ID), zap.Error(err))
	}

	s.metrics.ObserveOperation(op.Type, models.OperationStatusCompleted, tally.Successful, tally.Failed, time.Since(started))

	result.Success = tally.Clean()
	result.Affected = tally.Affected
	result.Successful = tally.Successful
	result.Failed = tally.Failed
	result.Errors = append(result.Errors, tally.Errors...)
	result.Warnings = append(result.Warnings, tally.Warnings...)
	result.Summary = summary.Summary
	return result
}

func (s *BulkOperationService) newExecutor(op *models.BulkOperation) (executor, error) {
	switch op.Type {
	case models.OperationClone:
		if op.Params.Clone == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "clone parameters are missing")
		}
		return &cloneExecutor{svc: s, opID: op.ID, params: op.Params.Clone}, nil
	case models.OperationFacultyReplace:
		if op.Params.FacultyReplace == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "faculty replace parameters are missing")
		}
		return &facultyReplaceExecutor{svc: s, opID: op.ID, params: op.Params.FacultyReplace}, nil
	case models.OperationReschedule:
		if op.Params.Reschedule == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "reschedule parameters are missing")
		}
		return &rescheduleExecutor{svc: s, opID: op.ID, params: op.Params.Reschedule}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported operation type: %s", op.Type))
	}
}

func (s *BulkOperationService) failResult(ctx context.Context, op *models.BulkOperation, started time.Time, result *dto.OperationResult, message string) *dto.OperationResult {
	if err := s.tracker.Fail(ctx, op.ID, message); err != nil && !errors.Is(err, errOperationTerminal) {
		s.logger.Warn("failed to mark operation failed", zap.String("operation_id", op.ID), zap.Error(err))
	}
	s.metrics.ObserveOperation(op.Type, models.OperationStatusFailed, 0, 0, time.Since(started))
	result.Success = false
	result.Errors = append(result.Errors, message)
	result.Summary = "operation failed: " + message
	return result
}
