package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Ankish8/College-Management-sub001/internal/models"
	appErrors "github.com/Ankish8/College-Management-sub001/pkg/errors"
)

type batchStoreStub struct {
	batches map[string]models.Batch
}

func (s *batchStoreStub) FindByID(ctx context.Context, id string) (*models.Batch, error) {
	if b, ok := s.batches[id]; ok {
		return &b, nil
	}
	return nil, sql.ErrNoRows
}

type facultyStoreStub struct {
	users map[string]models.User
}

func (s *facultyStoreStub) FindFacultyByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

type subjectStoreStub struct {
	subjects map[string]models.Subject
	created  []models.Subject
}

func (s *subjectStoreStub) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if sub, ok := s.subjects[id]; ok {
		return &sub, nil
	}
	return nil, sql.ErrNoRows
}

func (s *subjectStoreStub) ListActiveByBatch(ctx context.Context, batchID string) ([]models.Subject, error) {
	var out []models.Subject
	for _, sub := range s.subjects {
		if sub.BatchID == batchID && sub.IsActive {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *subjectStoreStub) CreateWithTx(ctx context.Context, exec sqlx.ExtContext, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = fmt.Sprintf("subject-%d", len(s.subjects)+1)
	}
	s.subjects[subject.ID] = *subject
	s.created = append(s.created, *subject)
	return nil
}

func (s *subjectStoreStub) ReassignFacultyWithTx(ctx context.Context, exec sqlx.ExtContext, subjectID, fromFacultyID, toFacultyID string) error {
	sub, ok := s.subjects[subjectID]
	if !ok {
		return sql.ErrNoRows
	}
	if sub.PrimaryFacultyID != nil && *sub.PrimaryFacultyID == fromFacultyID {
		sub.PrimaryFacultyID = &toFacultyID
	}
	if sub.CoFacultyID != nil && *sub.CoFacultyID == fromFacultyID {
		sub.CoFacultyID = &toFacultyID
	}
	s.subjects[subjectID] = sub
	return nil
}

type timetableStoreStub struct {
	entries []models.TimetableEntry
	slots   map[string]models.TimeSlot
	failOn  string // entry id whose write returns a storage error
}

func (s *timetableStoreStub) ListActiveByBatch(ctx context.Context, batchID string) ([]models.TimetableEntry, error) {
	var out []models.TimetableEntry
	for _, e := range s.entries {
		if e.BatchID == batchID && e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *timetableStoreStub) ListActiveByFaculty(ctx context.Context, facultyID string) ([]models.TimetableEntry, error) {
	var out []models.TimetableEntry
	for _, e := range s.entries {
		if e.FacultyID == facultyID && e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *timetableStoreStub) CountActiveByFaculty(ctx context.Context, facultyID string) (int, error) {
	list, _ := s.ListActiveByFaculty(ctx, facultyID)
	return len(list), nil
}

func (s *timetableStoreStub) ListForFacultyReplace(ctx context.Context, facultyID string, batchID, subjectID *string, effectiveFrom *time.Time) ([]models.TimetableEntry, error) {
	var out []models.TimetableEntry
	for _, e := range s.entries {
		if e.FacultyID != facultyID || !e.IsActive {
			continue
		}
		if batchID != nil && e.BatchID != *batchID {
			continue
		}
		if subjectID != nil && e.SubjectID != *subjectID {
			continue
		}
		if effectiveFrom != nil && e.Date != nil && e.Date.Before(*effectiveFrom) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *timetableStoreStub) ListDatedInRange(ctx context.Context, start, end time.Time, batchID *string) ([]models.TimetableEntry, error) {
	var out []models.TimetableEntry
	for _, e := range s.entries {
		if !e.IsActive || e.Date == nil {
			continue
		}
		if e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		if batchID != nil && e.BatchID != *batchID {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(*out[j].Date) {
			return out[i].Date.Before(*out[j].Date)
		}
		return s.slots[out[i].TimeSlotID].SortOrder < s.slots[out[j].TimeSlotID].SortOrder
	})
	return out, nil
}

func (s *timetableStoreStub) CreateWithTx(ctx context.Context, exec sqlx.ExtContext, entry *models.TimetableEntry) error {
	if entry.ID == "" {
		entry.ID = fmt.Sprintf("entry-%d", len(s.entries)+1)
	}
	if s.failOn != "" && entry.SubjectID == s.failOn {
		return fmt.Errorf("storage write failed")
	}
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *timetableStoreStub) UpdateScheduleWithTx(ctx context.Context, exec sqlx.ExtContext, entry *models.TimetableEntry) error {
	if s.failOn == entry.ID {
		return fmt.Errorf("storage write failed")
	}
	for i := range s.entries {
		if s.entries[i].ID == entry.ID {
			s.entries[i] = *entry
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *timetableStoreStub) DeactivateWithTx(ctx context.Context, exec sqlx.ExtContext, id string) error {
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].IsActive = false
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *timetableStoreStub) byID(id string) *models.TimetableEntry {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return &s.entries[i]
		}
	}
	return nil
}

type calendarStoreStub struct {
	holidays    []models.Holiday
	examPeriods []models.ExamPeriod
	blackouts   []models.FacultyBlackoutPeriod
}

func (s *calendarStoreStub) ListHolidaysBetween(ctx context.Context, start, end time.Time) ([]models.Holiday, error) {
	var out []models.Holiday
	for _, h := range s.holidays {
		if !h.Date.Before(start) && !h.Date.After(end) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *calendarStoreStub) ListExamPeriodsOverlapping(ctx context.Context, start, end time.Time, blockingOnly bool) ([]models.ExamPeriod, error) {
	var out []models.ExamPeriod
	for _, p := range s.examPeriods {
		if p.StartDate.After(end) || p.EndDate.Before(start) {
			continue
		}
		if blockingOnly && !p.BlockRegularClasses {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *calendarStoreStub) ListBlackoutsOverlapping(ctx context.Context, start, end time.Time) ([]models.FacultyBlackoutPeriod, error) {
	var out []models.FacultyBlackoutPeriod
	for _, b := range s.blackouts {
		if b.StartDate.After(end) || b.EndDate.Before(start) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

type timeSlotStoreStub struct {
	slots []models.TimeSlot
}

func (s *timeSlotStoreStub) ListActive(ctx context.Context) ([]models.TimeSlot, error) {
	ordered := append([]models.TimeSlot(nil), s.slots...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].SortOrder < ordered[j].SortOrder })
	return ordered, nil
}

// operationStoreStub mimics the guarded-update semantics of the real
// repository: terminal rows reject further lifecycle writes with ErrNoRows.
type operationStoreStub struct {
	ops    map[string]*models.BulkOperation
	logs   map[string][]models.OperationLog
	nextID int
}

func newOperationStoreStub() *operationStoreStub {
	return &operationStoreStub{ops: make(map[string]*models.BulkOperation), logs: make(map[string][]models.OperationLog)}
}

func (s *operationStoreStub) Create(ctx context.Context, op *models.BulkOperation) error {
	if op.ID == "" {
		s.nextID++
		op.ID = fmt.Sprintf("op-%d", s.nextID)
	}
	cp := *op
	s.ops[op.ID] = &cp
	return nil
}

func (s *operationStoreStub) GetByID(ctx context.Context, id string) (*models.BulkOperation, error) {
	if op, ok := s.ops[id]; ok {
		cp := *op
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *operationStoreStub) MarkRunning(ctx context.Context, id string) error {
	op, ok := s.ops[id]
	if !ok || op.Status != models.OperationStatusPending {
		return sql.ErrNoRows
	}
	op.Status = models.OperationStatusRunning
	return nil
}

func (s *operationStoreStub) UpdateProgress(ctx context.Context, id string, progress, affected, success, failed int) error {
	op, ok := s.ops[id]
	if !ok || op.Status.Terminal() {
		return sql.ErrNoRows
	}
	op.Progress = progress
	op.AffectedCount = affected
	op.SuccessCount = success
	op.FailedCount = failed
	return nil
}

func (s *operationStoreStub) Complete(ctx context.Context, id string, result *models.OperationResultSummary) error {
	op, ok := s.ops[id]
	if !ok || op.Status.Terminal() {
		return sql.ErrNoRows
	}
	now := time.Now().UTC()
	op.Status = models.OperationStatusCompleted
	op.Progress = 100
	op.AffectedCount = result.Affected
	op.SuccessCount = result.Successful
	op.FailedCount = result.Failed
	op.Result = result
	op.CompletedAt = &now
	return nil
}

func (s *operationStoreStub) Fail(ctx context.Context, id, message string) error {
	op, ok := s.ops[id]
	if !ok || op.Status.Terminal() {
		return sql.ErrNoRows
	}
	now := time.Now().UTC()
	op.Status = models.OperationStatusFailed
	op.ErrorMessage = &message
	op.CompletedAt = &now
	return nil
}

func (s *operationStoreStub) Cancel(ctx context.Context, id string) error {
	op, ok := s.ops[id]
	if !ok || (op.Status != models.OperationStatusPending && op.Status != models.OperationStatusRunning) {
		return sql.ErrNoRows
	}
	now := time.Now().UTC()
	op.Status = models.OperationStatusCancelled
	op.CompletedAt = &now
	return nil
}

func (s *operationStoreStub) GetStatus(ctx context.Context, id string) (models.OperationStatus, error) {
	if op, ok := s.ops[id]; ok {
		return op.Status, nil
	}
	return "", sql.ErrNoRows
}

func (s *operationStoreStub) List(ctx context.Context, filter models.OperationFilter) ([]models.BulkOperation, int, error) {
	var out []models.BulkOperation
	for _, op := range s.ops {
		if filter.Type != "" && op.Type != filter.Type {
			continue
		}
		if filter.StartedBy != "" && op.StartedBy != filter.StartedBy {
			continue
		}
		if len(filter.Status) > 0 {
			match := false
			for _, st := range filter.Status {
				if op.Status == st {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *op)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, len(out), nil
}

func (s *operationStoreStub) AppendLog(ctx context.Context, log *models.OperationLog) error {
	if log.ID == "" {
		log.ID = fmt.Sprintf("log-%d", len(s.logs[log.OperationID])+1)
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	s.logs[log.OperationID] = append(s.logs[log.OperationID], *log)
	return nil
}

func (s *operationStoreStub) ListLogs(ctx context.Context, operationID string) ([]models.OperationLog, error) {
	return append([]models.OperationLog(nil), s.logs[operationID]...), nil
}

func (s *operationStoreStub) LatestLog(ctx context.Context, operationID string) (*models.OperationLog, error) {
	logs := s.logs[operationID]
	if len(logs) == 0 {
		return nil, sql.ErrNoRows
	}
	last := logs[len(logs)-1]
	return &last, nil
}

type cacheStub struct{}

func (s cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (s cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (s cacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	return nil
}
