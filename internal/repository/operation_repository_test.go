package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/Ankish8/College-Management-sub001/internal/models"
)

func newOperationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestOperationRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newOperationRepoMock(t)
	defer cleanup()

	repo := NewOperationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bulk_operations")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	op := &models.BulkOperation{
		Type: models.OperationClone,
		Params: models.OperationParams{
			Operation: models.OperationClone,
			Clone: &models.CloneParams{
				SourceBatchID:   "batch-1",
				TargetBatchID:   "batch-2",
				HandleConflicts: models.ConflictPolicySkip,
			},
		},
		Status:    models.OperationStatusRunning,
		StartedBy: "admin-1",
	}
	require.NoError(t, repo.Create(context.Background(), op))
	require.NotEmpty(t, op.ID)

	rows := sqlmock.NewRows([]string{"id", "type", "params", "status", "progress", "affected_count", "success_count", "failed_count", "result", "error_message", "started_by", "started_at", "completed_at"}).
		AddRow(op.ID, "CLONE_TIMETABLE", `{"operation":"CLONE_TIMETABLE","clone":{"sourceBatchId":"batch-1","targetBatchId":"batch-2","preserveFaculty":false,"handleConflicts":"skip"}}`,
			"RUNNING", 10, 0, 0, 0, nil, nil, "admin-1", time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, type, params, status")).
		WithArgs(op.ID).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), op.ID)
	require.NoError(t, err)
	require.Equal(t, models.OperationClone, found.Type)
	require.NotNil(t, found.Params.Clone)
	require.Equal(t, "batch-2", found.Params.Clone.TargetBatchID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOperationRepositoryGuardedUpdates(t *testing.T) {
	db, mock, cleanup := newOperationRepoMock(t)
	defer cleanup()

	repo := NewOperationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bulk_operations")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateProgress(context.Background(), "op-1", 50, 20, 18, 2))

	// Terminal rows never match the guard; the caller sees ErrNoRows.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bulk_operations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateProgress(context.Background(), "op-1", 60, 24, 22, 2)
	require.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bulk_operations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.Cancel(context.Background(), "op-1")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOperationRepositoryComplete(t *testing.T) {
	db, mock, cleanup := newOperationRepoMock(t)
	defer cleanup()

	repo := NewOperationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bulk_operations")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Complete(context.Background(), "op-1", &models.OperationResultSummary{
		Summary:    "Cloned 24 entries",
		Affected:   24,
		Successful: 24,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOperationRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newOperationRepoMock(t)
	defer cleanup()

	repo := NewOperationRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM bulk_operations")).
		WithArgs("FACULTY_REPLACE", "RUNNING").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	rows := sqlmock.NewRows([]string{"id", "type", "params", "status", "progress", "affected_count", "success_count", "failed_count", "result", "error_message", "started_by", "started_at", "completed_at"}).
		AddRow("op-1", "FACULTY_REPLACE", `{"operation":"FACULTY_REPLACE"}`, "RUNNING", 40, 10, 8, 0, nil, nil, "admin-1", time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, type, params, status")).
		WithArgs("FACULTY_REPLACE", "RUNNING", 20, 0).
		WillReturnRows(rows)

	ops, total, err := repo.List(context.Background(), models.OperationFilter{
		Type:   models.OperationFacultyReplace,
		Status: []models.OperationStatus{models.OperationStatusRunning},
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, ops, 1)
	require.Equal(t, "op-1", ops[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOperationRepositoryLogs(t *testing.T) {
	db, mock, cleanup := newOperationRepoMock(t)
	defer cleanup()

	repo := NewOperationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bulk_operation_logs")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	log := &models.OperationLog{OperationID: "op-1", Level: models.LogLevelInfo, Message: "Starting timetable clone"}
	require.NoError(t, repo.AppendLog(context.Background(), log))
	require.NotEmpty(t, log.ID)

	rows := sqlmock.NewRows([]string{"id", "operation_id", "level", "message", "created_at"}).
		AddRow(log.ID, "op-1", "info", "Starting timetable clone", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, operation_id, level, message")).
		WithArgs("op-1").
		WillReturnRows(rows)

	logs, err := repo.ListLogs(context.Background(), "op-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, models.LogLevelInfo, logs[0].Level)
	require.NoError(t, mock.ExpectationsWereMet())
}
