package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Ankish8/College-Management-sub001/internal/models"
)

// CalendarRepository provides read access to the academic calendar: holidays,
// exam periods, and faculty blackout periods.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository creates a new calendar repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// ListHolidaysBetween returns holidays inside the window ordered by date.
func (r *CalendarRepository) ListHolidaysBetween(ctx context.Context, start, end time.Time) ([]models.Holiday, error) {
	const query = `SELECT id, name, date, holiday_type, created_at
		FROM holidays WHERE date >= $1 AND date <= $2 ORDER BY date ASC`
	var holidays []models.Holiday
	if err := r.db.SelectContext(ctx, &holidays, query, start, end); err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	return holidays, nil
}

// ListExamPeriodsOverlapping returns exam periods overlapping the window.
// When blockingOnly is set, only periods that block regular classes are
// returned.
func (r *CalendarRepository) ListExamPeriodsOverlapping(ctx context.Context, start, end time.Time, blockingOnly bool) ([]models.ExamPeriod, error) {
	query := `SELECT id, name, start_date, end_date, block_regular_classes, batch_id, created_at
		FROM exam_periods WHERE start_date <= $2 AND end_date >= $1`
	if blockingOnly {
		query += ` AND block_regular_classes = TRUE`
	}
	query += ` ORDER BY start_date ASC`
	var periods []models.ExamPeriod
	if err := r.db.SelectContext(ctx, &periods, query, start, end); err != nil {
		return nil, fmt.Errorf("list exam periods: %w", err)
	}
	return periods, nil
}

// ListBlackoutsOverlapping returns faculty blackout periods overlapping the
// window, across all faculty.
func (r *CalendarRepository) ListBlackoutsOverlapping(ctx context.Context, start, end time.Time) ([]models.FacultyBlackoutPeriod, error) {
	const query = `SELECT id, faculty_id, start_date, end_date, reason, created_at
		FROM faculty_blackout_periods WHERE start_date <= $2 AND end_date >= $1 ORDER BY start_date ASC`
	var blackouts []models.FacultyBlackoutPeriod
	if err := r.db.SelectContext(ctx, &blackouts, query, start, end); err != nil {
		return nil, fmt.Errorf("list blackout periods: %w", err)
	}
	return blackouts, nil
}
