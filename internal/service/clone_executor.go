package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Ankish8/College-Management-sub001/internal/models"
	appErrors "github.com/Ankish8/College-Management-sub001/pkg/errors"
)

// cloneExecutor copies a source batch's active timetable into a target batch,
// lazily materialising missing subjects (matched by code) and resolving slot
// collisions under the configured conflict policy.
type cloneExecutor struct {
	svc    *BulkOperationService
	opID   string
	params *models.CloneParams

	affected       []models.TimetableEntry
	sourceBatch    *models.Batch
	targetBatch    *models.Batch
	sourceSubjects map[string]models.Subject // by id
	targetByCode   map[string]models.Subject
	occupied       map[string]string // target slot key -> entry id
	facultyBusy    map[string]bool   // facultyID|slot|day|date outside the source batch
}

func (e *cloneExecutor) prepare(ctx context.Context) (int, error) {
	p := e.params
	if p.SourceBatchID == p.TargetBatchID {
		return 0, appErrors.Clone(appErrors.ErrValidation, "source and target batch must differ")
	}
	source, err := e.svc.batches.FindByID(ctx, p.SourceBatchID)
	if err != nil {
		return 0, resolveErr(err, "source batch", p.SourceBatchID)
	}
	target, err := e.svc.batches.FindByID(ctx, p.TargetBatchID)
	if err != nil {
		return 0, resolveErr(err, "target batch", p.TargetBatchID)
	}
	e.sourceBatch, e.targetBatch = source, target

	entries, err := e.svc.entries.ListActiveByBatch(ctx, p.SourceBatchID)
	if err != nil {
		return 0, err
	}
	e.affected = filterCloneEntries(entries, p.DateRange)
	if len(e.affected) == 0 {
		return 0, nil
	}

	sourceSubjects, err := e.svc.subjects.ListActiveByBatch(ctx, p.SourceBatchID)
	if err != nil {
		return 0, err
	}
	e.sourceSubjects = make(map[string]models.Subject, len(sourceSubjects))
	for _, s := range sourceSubjects {
		e.sourceSubjects[s.ID] = s
	}
	targetSubjects, err := e.svc.subjects.ListActiveByBatch(ctx, p.TargetBatchID)
	if err != nil {
		return 0, err
	}
	e.targetByCode = make(map[string]models.Subject, len(targetSubjects))
	for _, s := range targetSubjects {
		e.targetByCode[s.Code] = s
	}

	targetEntries, err := e.svc.entries.ListActiveByBatch(ctx, p.TargetBatchID)
	if err != nil {
		return 0, err
	}
	e.occupied = make(map[string]string, len(targetEntries))
	for _, t := range targetEntries {
		e.occupied[t.SlotKey()] = t.ID
	}

	e.facultyBusy = make(map[string]bool)
	if p.PreserveFaculty {
		seen := make(map[string]bool)
		for _, entry := range e.affected {
			if seen[entry.FacultyID] {
				continue
			}
			seen[entry.FacultyID] = true
			schedule, err := e.svc.entries.ListActiveByFaculty(ctx, entry.FacultyID)
			if err != nil {
				return 0, err
			}
			for _, s := range schedule {
				if s.BatchID == p.SourceBatchID {
					continue
				}
				e.facultyBusy[facultySlotKey(s.FacultyID, &s)] = true
			}
		}
	}
	return len(e.affected), nil
}

func (e *cloneExecutor) apply(ctx context.Context, tx sqlx.ExtContext, i int) (EntryOutcome, error) {
	src := e.affected[i]
	outcome := Succeeded()

	sourceSubject, ok := e.sourceSubjects[src.SubjectID]
	if !ok {
		return Failed(fmt.Sprintf("source subject %s not found for entry %s", src.SubjectID, src.ID)), nil
	}
	targetSubject, ok := e.targetByCode[sourceSubject.Code]
	if !ok {
		created := models.Subject{
			Name:       sourceSubject.Name,
			Code:       sourceSubject.Code,
			Credits:    sourceSubject.Credits,
			TotalHours: sourceSubject.TotalHours,
			ExamType:   sourceSubject.ExamType,
			BatchID:    e.params.TargetBatchID,
			IsActive:   true,
		}
		if e.params.PreserveFaculty {
			created.PrimaryFacultyID = sourceSubject.PrimaryFacultyID
			created.CoFacultyID = sourceSubject.CoFacultyID
		}
		if err := e.svc.subjects.CreateWithTx(ctx, tx, &created); err != nil {
			return EntryOutcome{}, err
		}
		e.targetByCode[created.Code] = created
		targetSubject = created
		outcome = outcome.WithWarning(fmt.Sprintf("created subject %q in target batch", created.Code))
	}

	clone := src
	clone.ID = ""
	clone.BatchID = e.params.TargetBatchID
	clone.SubjectID = targetSubject.ID
	clone.Notes = annotateNote(src.Notes, fmt.Sprintf("Cloned from %s", e.sourceBatch.Name))

	key := clone.SlotKey()
	existingID, taken := e.occupied[key]
	if taken && e.params.HandleConflicts != models.ConflictPolicyOverride {
		return Skipped(fmt.Sprintf("slot occupied in target batch at %s %s; entry skipped", src.DayOfWeek, src.TimeSlotID)), nil
	}

	// All skip reasons must be ruled out before an override deactivates the
	// displaced entry, or a skipped clone would leave the slot vacated.
	if e.params.PreserveFaculty {
		if e.facultyBusy[facultySlotKey(clone.FacultyID, &clone)] {
			return Skipped(fmt.Sprintf("faculty already scheduled elsewhere at %s %s; entry skipped", src.DayOfWeek, src.TimeSlotID)), nil
		}
	}

	if taken {
		if err := e.svc.entries.DeactivateWithTx(ctx, tx, existingID); err != nil {
			return EntryOutcome{}, err
		}
		outcome = outcome.WithWarning(fmt.Sprintf("overrode existing entry at %s %s", src.DayOfWeek, src.TimeSlotID))
	}

	if err := e.svc.entries.CreateWithTx(ctx, tx, &clone); err != nil {
		return EntryOutcome{}, err
	}
	e.occupied[key] = clone.ID
	if e.params.PreserveFaculty {
		e.facultyBusy[facultySlotKey(clone.FacultyID, &clone)] = true
	}
	return outcome, nil
}

func (e *cloneExecutor) finalize(ctx context.Context, tally *Tally) error {
	return nil
}

func (e *cloneExecutor) summary(t *Tally) string {
	return fmt.Sprintf("Cloned %d of %d entries from %s to %s", t.Successful, t.Affected, e.sourceBatch.Name, e.targetBatch.Name)
}

// facultySlotKey identifies a faculty's occupancy of one (slot, day, date).
func facultySlotKey(facultyID string, entry *models.TimetableEntry) string {
	date := ""
	if entry.Date != nil {
		date = entry.Date.Format("2006-01-02")
	}
	return facultyID + "|" + entry.TimeSlotID + "|" + string(entry.DayOfWeek) + "|" + date
}

func annotateNote(notes *string, annotation string) *string {
	if notes == nil || *notes == "" {
		return &annotation
	}
	combined := *notes + " | " + annotation
	return &combined
}

func resolveErr(err error, label, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s not found: %s", label, id))
	}
	return err
}
