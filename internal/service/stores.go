package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Ankish8/College-Management-sub001/internal/models"
)

// Narrow store contracts consumed by the engine services. Satisfied by the
// repository package in production and by stubs in tests.

type batchStore interface {
	FindByID(ctx context.Context, id string) (*models.Batch, error)
}

type facultyStore interface {
	FindFacultyByID(ctx context.Context, id string) (*models.User, error)
}

type subjectStore interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	ListActiveByBatch(ctx context.Context, batchID string) ([]models.Subject, error)
	CreateWithTx(ctx context.Context, exec sqlx.ExtContext, subject *models.Subject) error
	ReassignFacultyWithTx(ctx context.Context, exec sqlx.ExtContext, subjectID, fromFacultyID, toFacultyID string) error
}

type timetableStore interface {
	ListActiveByBatch(ctx context.Context, batchID string) ([]models.TimetableEntry, error)
	ListActiveByFaculty(ctx context.Context, facultyID string) ([]models.TimetableEntry, error)
	CountActiveByFaculty(ctx context.Context, facultyID string) (int, error)
	ListForFacultyReplace(ctx context.Context, facultyID string, batchID, subjectID *string, effectiveFrom *time.Time) ([]models.TimetableEntry, error)
	ListDatedInRange(ctx context.Context, start, end time.Time, batchID *string) ([]models.TimetableEntry, error)
	CreateWithTx(ctx context.Context, exec sqlx.ExtContext, entry *models.TimetableEntry) error
	UpdateScheduleWithTx(ctx context.Context, exec sqlx.ExtContext, entry *models.TimetableEntry) error
	DeactivateWithTx(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type calendarStore interface {
	ListHolidaysBetween(ctx context.Context, start, end time.Time) ([]models.Holiday, error)
	ListExamPeriodsOverlapping(ctx context.Context, start, end time.Time, blockingOnly bool) ([]models.ExamPeriod, error)
	ListBlackoutsOverlapping(ctx context.Context, start, end time.Time) ([]models.FacultyBlackoutPeriod, error)
}

type timeSlotStore interface {
	ListActive(ctx context.Context) ([]models.TimeSlot, error)
}

type operationStore interface {
	Create(ctx context.Context, op *models.BulkOperation) error
	GetByID(ctx context.Context, id string) (*models.BulkOperation, error)
	MarkRunning(ctx context.Context, id string) error
	UpdateProgress(ctx context.Context, id string, progress, affected, success, failed int) error
	Complete(ctx context.Context, id string, result *models.OperationResultSummary) error
	Fail(ctx context.Context, id, message string) error
	Cancel(ctx context.Context, id string) error
	GetStatus(ctx context.Context, id string) (models.OperationStatus, error)
	List(ctx context.Context, filter models.OperationFilter) ([]models.BulkOperation, int, error)
	AppendLog(ctx context.Context, log *models.OperationLog) error
	ListLogs(ctx context.Context, operationID string) ([]models.OperationLog, error)
	LatestLog(ctx context.Context, operationID string) (*models.OperationLog, error)
}

type progressCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}
