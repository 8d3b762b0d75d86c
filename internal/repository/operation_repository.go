package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Ankish8/College-Management-sub001/internal/models"
)

// OperationRepository provides persistence for bulk operations and their
// append-only logs. Lifecycle writes are guarded so terminal rows can never be
// mutated: every UPDATE filters on non-terminal status and reports
// sql.ErrNoRows when nothing matched.
type OperationRepository struct {
	db *sqlx.DB
}

// NewOperationRepository creates a new operation repository.
func NewOperationRepository(db *sqlx.DB) *OperationRepository {
	return &OperationRepository{db: db}
}

const operationColumns = `id, type, params, status, progress, affected_count, success_count, failed_count, result, error_message, started_by, started_at, completed_at`

// Create inserts a new operation row.
func (r *OperationRepository) Create(ctx context.Context, op *models.BulkOperation) error {
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	if op.StartedAt.IsZero() {
		op.StartedAt = time.Now().UTC()
	}

	const query = `INSERT INTO bulk_operations
		(id, type, params, status, progress, affected_count, success_count, failed_count, result, error_message, started_by, started_at, completed_at)
		VALUES (:id, :type, :params, :status, :progress, :affected_count, :success_count, :failed_count, :result, :error_message, :started_by, :started_at, :completed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, op); err != nil {
		return fmt.Errorf("create bulk operation: %w", err)
	}
	return nil
}

// GetByID fetches an operation by ID. Returns sql.ErrNoRows if not found.
func (r *OperationRepository) GetByID(ctx context.Context, id string) (*models.BulkOperation, error) {
	query := fmt.Sprintf(`SELECT %s FROM bulk_operations WHERE id = $1`, operationColumns)
	var op models.BulkOperation
	if err := r.db.GetContext(ctx, &op, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("get bulk operation: %w", err)
	}
	return &op, nil
}

// MarkRunning transitions a PENDING operation to RUNNING. Returns
// sql.ErrNoRows when the row is missing or already past PENDING.
func (r *OperationRepository) MarkRunning(ctx context.Context, id string) error {
	const query = `UPDATE bulk_operations SET status = $2 WHERE id = $1 AND status = $3`
	res, err := r.db.ExecContext(ctx, query, id, models.OperationStatusRunning, models.OperationStatusPending)
	if err != nil {
		return fmt.Errorf("mark operation running: %w", err)
	}
	return requireRowAffected(res)
}

// UpdateProgress writes progress and running counters on a non-terminal row.
func (r *OperationRepository) UpdateProgress(ctx context.Context, id string, progress, affected, success, failed int) error {
	const query = `UPDATE bulk_operations
		SET progress = $2, affected_count = $3, success_count = $4, failed_count = $5
		WHERE id = $1 AND status NOT IN ($6, $7, $8)`
	res, err := r.db.ExecContext(ctx, query, id, progress, affected, success, failed,
		models.OperationStatusCompleted, models.OperationStatusFailed, models.OperationStatusCancelled)
	if err != nil {
		return fmt.Errorf("update operation progress: %w", err)
	}
	return requireRowAffected(res)
}

// Complete finalises a non-terminal operation as COMPLETED with its result
// summary and 100% progress.
func (r *OperationRepository) Complete(ctx context.Context, id string, result *models.OperationResultSummary) error {
	const query = `UPDATE bulk_operations
		SET status = $2, progress = 100, affected_count = $3, success_count = $4, failed_count = $5, result = $6, completed_at = $7
		WHERE id = $1 AND status NOT IN ($8, $9, $10)`
	res, err := r.db.ExecContext(ctx, query, id, models.OperationStatusCompleted,
		result.Affected, result.Successful, result.Failed, result, time.Now().UTC(),
		models.OperationStatusCompleted, models.OperationStatusFailed, models.OperationStatusCancelled)
	if err != nil {
		return fmt.Errorf("complete operation: %w", err)
	}
	return requireRowAffected(res)
}

// Fail finalises a non-terminal operation as FAILED with an error message.
func (r *OperationRepository) Fail(ctx context.Context, id, message string) error {
	const query = `UPDATE bulk_operations
		SET status = $2, error_message = $3, completed_at = $4
		WHERE id = $1 AND status NOT IN ($5, $6, $7)`
	res, err := r.db.ExecContext(ctx, query, id, models.OperationStatusFailed, message, time.Now().UTC(),
		models.OperationStatusCompleted, models.OperationStatusFailed, models.OperationStatusCancelled)
	if err != nil {
		return fmt.Errorf("fail operation: %w", err)
	}
	return requireRowAffected(res)
}

// Cancel finalises a non-terminal operation as CANCELLED. The executor loop
// observes the new status between transactions and stops.
func (r *OperationRepository) Cancel(ctx context.Context, id string) error {
	const query = `UPDATE bulk_operations
		SET status = $2, completed_at = $3
		WHERE id = $1 AND status IN ($4, $5)`
	res, err := r.db.ExecContext(ctx, query, id, models.OperationStatusCancelled, time.Now().UTC(),
		models.OperationStatusPending, models.OperationStatusRunning)
	if err != nil {
		return fmt.Errorf("cancel operation: %w", err)
	}
	return requireRowAffected(res)
}

// GetStatus reads only the current status of an operation. The executor
// polls it between entry transactions to honour cancellation.
func (r *OperationRepository) GetStatus(ctx context.Context, id string) (models.OperationStatus, error) {
	const query = `SELECT status FROM bulk_operations WHERE id = $1`
	var status models.OperationStatus
	if err := r.db.GetContext(ctx, &status, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", sql.ErrNoRows
		}
		return "", fmt.Errorf("get operation status: %w", err)
	}
	return status, nil
}

// List returns a page of operations newest first, with the unpaged total.
func (r *OperationRepository) List(ctx context.Context, filter models.OperationFilter) ([]models.BulkOperation, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	if len(filter.Status) > 0 {
		placeholders := make([]string, 0, len(filter.Status))
		for _, s := range filter.Status {
			args = append(args, s)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filter.StartedBy != "" {
		args = append(args, filter.StartedBy)
		conditions = append(conditions, fmt.Sprintf("started_by = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM bulk_operations WHERE %s`, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count bulk operations: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = 20
	}
	args = append(args, size, (page-1)*size)
	query := fmt.Sprintf(`SELECT %s FROM bulk_operations WHERE %s ORDER BY started_at DESC LIMIT $%d OFFSET $%d`,
		operationColumns, where, len(args)-1, len(args))

	var ops []models.BulkOperation
	if err := r.db.SelectContext(ctx, &ops, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list bulk operations: %w", err)
	}
	return ops, total, nil
}

// AppendLog inserts one log row for an operation. Logs are append-only.
func (r *OperationRepository) AppendLog(ctx context.Context, log *models.OperationLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO bulk_operation_logs (id, operation_id, level, message, created_at)
		VALUES (:id, :operation_id, :level, :message, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("append operation log: %w", err)
	}
	return nil
}

// ListLogs returns an operation's logs in insertion order.
func (r *OperationRepository) ListLogs(ctx context.Context, operationID string) ([]models.OperationLog, error) {
	const query = `SELECT id, operation_id, level, message, created_at
		FROM bulk_operation_logs WHERE operation_id = $1 ORDER BY created_at ASC, id ASC`
	var logs []models.OperationLog
	if err := r.db.SelectContext(ctx, &logs, query, operationID); err != nil {
		return nil, fmt.Errorf("list operation logs: %w", err)
	}
	return logs, nil
}

// LatestLog returns the most recent log row, or sql.ErrNoRows when the
// operation has none yet.
func (r *OperationRepository) LatestLog(ctx context.Context, operationID string) (*models.OperationLog, error) {
	const query = `SELECT id, operation_id, level, message, created_at
		FROM bulk_operation_logs WHERE operation_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`
	var log models.OperationLog
	if err := r.db.GetContext(ctx, &log, query, operationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("latest operation log: %w", err)
	}
	return &log, nil
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
