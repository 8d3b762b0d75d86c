package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Ankish8/College-Management-sub001/internal/models"
)

// SubjectRepository provides persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new subject repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

const subjectColumns = `id, name, code, credits, total_hours, exam_type, batch_id, primary_faculty_id, co_faculty_id, is_active, created_at, updated_at`

// FindByID fetches a subject by ID. Returns sql.ErrNoRows if not found.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	query := fmt.Sprintf(`SELECT %s FROM subjects WHERE id = $1`, subjectColumns)
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find subject by id: %w", err)
	}
	return &subject, nil
}

// ListActiveByBatch returns the active subjects of a batch keyed for clone
// matching, ordered by code.
func (r *SubjectRepository) ListActiveByBatch(ctx context.Context, batchID string) ([]models.Subject, error) {
	query := fmt.Sprintf(`SELECT %s FROM subjects WHERE batch_id = $1 AND is_active = TRUE ORDER BY code ASC`, subjectColumns)
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, batchID); err != nil {
		return nil, fmt.Errorf("list subjects by batch: %w", err)
	}
	return subjects, nil
}

// CreateWithTx inserts a subject inside the provided transaction scope. The
// clone executor uses it to materialise missing target-batch subjects.
func (r *SubjectRepository) CreateWithTx(ctx context.Context, exec sqlx.ExtContext, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = now
	}
	subject.UpdatedAt = now

	const query = `INSERT INTO subjects
		(id, name, code, credits, total_hours, exam_type, batch_id, primary_faculty_id, co_faculty_id, is_active, created_at, updated_at)
		VALUES (:id, :name, :code, :credits, :total_hours, :exam_type, :batch_id, :primary_faculty_id, :co_faculty_id, :is_active, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// ReassignFacultyWithTx moves a subject's primary or co-faculty binding from
// one faculty to another inside the provided transaction scope.
func (r *SubjectRepository) ReassignFacultyWithTx(ctx context.Context, exec sqlx.ExtContext, subjectID, fromFacultyID, toFacultyID string) error {
	const query = `UPDATE subjects SET
		primary_faculty_id = CASE WHEN primary_faculty_id = $2 THEN $3 ELSE primary_faculty_id END,
		co_faculty_id = CASE WHEN co_faculty_id = $2 THEN $3 ELSE co_faculty_id END,
		updated_at = $4
		WHERE id = $1`
	if _, err := exec.ExecContext(ctx, query, subjectID, fromFacultyID, toFacultyID, time.Now().UTC()); err != nil {
		return fmt.Errorf("reassign subject faculty: %w", err)
	}
	return nil
}
