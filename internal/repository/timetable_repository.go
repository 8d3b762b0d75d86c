package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Ankish8/College-Management-sub001/internal/models"
)

// TimetableRepository provides persistence for timetable entries.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new timetable repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

const entryColumns = `e.id, e.batch_id, e.subject_id, e.faculty_id, e.time_slot_id, e.day_of_week, e.date, e.entry_type, e.is_active, e.notes, e.created_at, e.updated_at`

// ListActiveByBatch returns the active entries of one batch ordered by day
// and slot sequence.
func (r *TimetableRepository) ListActiveByBatch(ctx context.Context, batchID string) ([]models.TimetableEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetable_entries e
		JOIN time_slots ts ON ts.id = e.time_slot_id
		WHERE e.batch_id = $1 AND e.is_active = TRUE
		ORDER BY e.day_of_week ASC, ts.sort_order ASC, e.date ASC NULLS FIRST`, entryColumns)
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, batchID); err != nil {
		return nil, fmt.Errorf("list entries by batch: %w", err)
	}
	return entries, nil
}

// ListActiveByFaculty returns all active entries taught by a faculty member.
func (r *TimetableRepository) ListActiveByFaculty(ctx context.Context, facultyID string) ([]models.TimetableEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetable_entries e
		JOIN time_slots ts ON ts.id = e.time_slot_id
		WHERE e.faculty_id = $1 AND e.is_active = TRUE
		ORDER BY e.day_of_week ASC, ts.sort_order ASC`, entryColumns)
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, facultyID); err != nil {
		return nil, fmt.Errorf("list entries by faculty: %w", err)
	}
	return entries, nil
}

// CountActiveByFaculty returns the active-entry workload of a faculty member.
func (r *TimetableRepository) CountActiveByFaculty(ctx context.Context, facultyID string) (int, error) {
	const query = `SELECT COUNT(*) FROM timetable_entries WHERE faculty_id = $1 AND is_active = TRUE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, facultyID); err != nil {
		return 0, fmt.Errorf("count entries by faculty: %w", err)
	}
	return count, nil
}

// ListForFacultyReplace returns the active entries a faculty replacement
// touches: all entries of the current faculty, optionally narrowed by batch,
// subject, and effective date (recurring entries always match).
func (r *TimetableRepository) ListForFacultyReplace(ctx context.Context, facultyID string, batchID, subjectID *string, effectiveFrom *time.Time) ([]models.TimetableEntry, error) {
	conditions := []string{"e.faculty_id = $1", "e.is_active = TRUE"}
	args := []interface{}{facultyID}
	if batchID != nil {
		args = append(args, *batchID)
		conditions = append(conditions, fmt.Sprintf("e.batch_id = $%d", len(args)))
	}
	if subjectID != nil {
		args = append(args, *subjectID)
		conditions = append(conditions, fmt.Sprintf("e.subject_id = $%d", len(args)))
	}
	if effectiveFrom != nil {
		args = append(args, *effectiveFrom)
		conditions = append(conditions, fmt.Sprintf("(e.date IS NULL OR e.date >= $%d)", len(args)))
	}
	query := fmt.Sprintf(`SELECT %s FROM timetable_entries e
		JOIN time_slots ts ON ts.id = e.time_slot_id
		WHERE %s
		ORDER BY e.day_of_week ASC, ts.sort_order ASC`, entryColumns, strings.Join(conditions, " AND "))
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list entries for faculty replace: %w", err)
	}
	return entries, nil
}

// ListDatedInRange returns active dated entries inside the window, ordered by
// date then slot sequence so the reschedule executor resolves slot contention
// deterministically.
func (r *TimetableRepository) ListDatedInRange(ctx context.Context, start, end time.Time, batchID *string) ([]models.TimetableEntry, error) {
	args := []interface{}{start, end}
	batchCond := ""
	if batchID != nil {
		args = append(args, *batchID)
		batchCond = fmt.Sprintf(" AND e.batch_id = $%d", len(args))
	}
	query := fmt.Sprintf(`SELECT %s FROM timetable_entries e
		JOIN time_slots ts ON ts.id = e.time_slot_id
		WHERE e.is_active = TRUE AND e.date IS NOT NULL AND e.date >= $1 AND e.date <= $2%s
		ORDER BY e.date ASC, ts.sort_order ASC`, entryColumns, batchCond)
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list dated entries in range: %w", err)
	}
	return entries, nil
}

// CreateWithTx inserts an entry inside the provided transaction scope.
func (r *TimetableRepository) CreateWithTx(ctx context.Context, exec sqlx.ExtContext, entry *models.TimetableEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	const query = `INSERT INTO timetable_entries
		(id, batch_id, subject_id, faculty_id, time_slot_id, day_of_week, date, entry_type, is_active, notes, created_at, updated_at)
		VALUES (:id, :batch_id, :subject_id, :faculty_id, :time_slot_id, :day_of_week, :date, :entry_type, :is_active, :notes, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, entry); err != nil {
		return fmt.Errorf("create timetable entry: %w", err)
	}
	return nil
}

// UpdateScheduleWithTx rewrites the schedulable fields of an entry inside the
// provided transaction scope.
func (r *TimetableRepository) UpdateScheduleWithTx(ctx context.Context, exec sqlx.ExtContext, entry *models.TimetableEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	const query = `UPDATE timetable_entries
		SET faculty_id = :faculty_id, time_slot_id = :time_slot_id, day_of_week = :day_of_week, date = :date, notes = :notes, updated_at = :updated_at
		WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, entry); err != nil {
		return fmt.Errorf("update timetable entry: %w", err)
	}
	return nil
}

// DeactivateWithTx soft-deletes an entry inside the provided transaction
// scope. The engine never hard-deletes entries.
func (r *TimetableRepository) DeactivateWithTx(ctx context.Context, exec sqlx.ExtContext, id string) error {
	const query = `UPDATE timetable_entries SET is_active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := exec.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate timetable entry: %w", err)
	}
	return nil
}
