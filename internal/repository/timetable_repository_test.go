package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/Ankish8/College-Management-sub001/internal/models"
)

func newTimetableRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func timetableRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "batch_id", "subject_id", "faculty_id", "time_slot_id", "day_of_week", "date", "entry_type", "is_active", "notes", "created_at", "updated_at"})
}

func TestTimetableRepositoryListActiveByBatch(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	rows := timetableRows().
		AddRow("entry-1", "batch-1", "subject-1", "faculty-1", "slot-1", "MONDAY", nil, "REGULAR", true, nil, time.Now(), time.Now()).
		AddRow("entry-2", "batch-1", "subject-2", "faculty-2", "slot-2", "MONDAY", nil, "REGULAR", true, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_entries e")).
		WithArgs("batch-1").
		WillReturnRows(rows)

	entries, err := repo.ListActiveByBatch(context.Background(), "batch-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, models.Monday, entries[0].DayOfWeek)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListForFacultyReplace(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	batchID := "batch-1"
	effective := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	date := effective.AddDate(0, 0, 3)
	rows := timetableRows().
		AddRow("entry-1", "batch-1", "subject-1", "faculty-old", "slot-1", "THURSDAY", date, "REGULAR", true, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_entries e")).
		WithArgs("faculty-old", batchID, effective).
		WillReturnRows(rows)

	entries, err := repo.ListForFacultyReplace(context.Background(), "faculty-old", &batchID, nil, &effective)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "faculty-old", entries[0].FacultyID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryCreateWithTx(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_entries")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	entry := &models.TimetableEntry{
		BatchID:    "batch-2",
		SubjectID:  "subject-1",
		FacultyID:  "faculty-1",
		TimeSlotID: "slot-1",
		DayOfWeek:  models.Tuesday,
		EntryType:  models.EntryTypeRegular,
		IsActive:   true,
	}
	require.NoError(t, repo.CreateWithTx(context.Background(), tx, entry))
	require.NotEmpty(t, entry.ID)
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryDeactivateWithTx(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetable_entries SET is_active = FALSE")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.DeactivateWithTx(context.Background(), tx, "entry-1"))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}
