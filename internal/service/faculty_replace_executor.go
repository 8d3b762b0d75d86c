package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Ankish8/College-Management-sub001/internal/models"
	appErrors "github.com/Ankish8/College-Management-sub001/pkg/errors"
)

// facultyReplaceExecutor reassigns active timetable entries from one faculty
// member to another, keeping subject ownership pointers consistent and
// skipping entries that would double-book the new faculty.
type facultyReplaceExecutor struct {
	svc    *BulkOperationService
	opID   string
	params *models.FacultyReplaceParams

	affected   []models.TimetableEntry
	current    *models.User
	newFaculty *models.User
	occupied   map[string]bool // new faculty slot occupancy
	blackouts  []models.FacultyBlackoutPeriod
	subjects   map[string]models.Subject // by id, for ownership updates
	reassigned map[string]bool           // subject ids already repointed
	oldCount   int
	newCount   int
}

func (e *facultyReplaceExecutor) prepare(ctx context.Context) (int, error) {
	p := e.params
	if p.CurrentFacultyID == p.NewFacultyID {
		return 0, appErrors.Clone(appErrors.ErrValidation, "current and new faculty must differ")
	}
	current, err := e.svc.faculty.FindFacultyByID(ctx, p.CurrentFacultyID)
	if err != nil {
		return 0, resolveErr(err, "current faculty", p.CurrentFacultyID)
	}
	newFaculty, err := e.svc.faculty.FindFacultyByID(ctx, p.NewFacultyID)
	if err != nil {
		return 0, resolveErr(err, "new faculty", p.NewFacultyID)
	}
	e.current, e.newFaculty = current, newFaculty
	if p.BatchID != nil {
		if _, err := e.svc.batches.FindByID(ctx, *p.BatchID); err != nil {
			return 0, resolveErr(err, "batch filter", *p.BatchID)
		}
	}

	e.affected, err = e.svc.entries.ListForFacultyReplace(ctx, p.CurrentFacultyID, p.BatchID, p.SubjectID, p.EffectiveFrom)
	if err != nil {
		return 0, err
	}
	if len(e.affected) == 0 {
		return 0, nil
	}

	schedule, err := e.svc.entries.ListActiveByFaculty(ctx, p.NewFacultyID)
	if err != nil {
		return 0, err
	}
	e.occupied = make(map[string]bool, len(schedule))
	for _, s := range schedule {
		e.occupied[facultySlotKey(p.NewFacultyID, &s)] = true
	}

	if window := affectedDateWindow(e.affected); window != nil {
		blackouts, err := e.svc.calendar.ListBlackoutsOverlapping(ctx, window.Start, window.End)
		if err != nil {
			return 0, err
		}
		for _, b := range blackouts {
			if b.FacultyID == p.NewFacultyID {
				e.blackouts = append(e.blackouts, b)
			}
		}
	}

	e.subjects = make(map[string]models.Subject)
	e.reassigned = make(map[string]bool)
	for _, entry := range e.affected {
		if _, ok := e.subjects[entry.SubjectID]; ok {
			continue
		}
		subject, err := e.svc.subjects.FindByID(ctx, entry.SubjectID)
		if err != nil {
			return 0, resolveErr(err, "subject", entry.SubjectID)
		}
		e.subjects[entry.SubjectID] = *subject
	}

	e.oldCount, err = e.svc.entries.CountActiveByFaculty(ctx, p.CurrentFacultyID)
	if err != nil {
		return 0, err
	}
	e.newCount, err = e.svc.entries.CountActiveByFaculty(ctx, p.NewFacultyID)
	if err != nil {
		return 0, err
	}
	return len(e.affected), nil
}

func (e *facultyReplaceExecutor) apply(ctx context.Context, tx sqlx.ExtContext, i int) (EntryOutcome, error) {
	entry := e.affected[i]
	key := facultySlotKey(e.params.NewFacultyID, &entry)
	if e.occupied[key] {
		return Skipped(fmt.Sprintf("%s already teaches at %s %s; entry %s left with %s",
			e.newFaculty.FullName, entry.DayOfWeek, entry.TimeSlotID, entry.ID, e.current.FullName)), nil
	}

	outcome := Succeeded()
	if entry.Date != nil {
		for _, b := range e.blackouts {
			if b.Covers(*entry.Date) {
				outcome = outcome.WithWarning(fmt.Sprintf("entry on %s falls inside %s's blackout period",
					entry.Date.Format("2006-01-02"), e.newFaculty.FullName))
				break
			}
		}
	}

	updated := entry
	updated.FacultyID = e.params.NewFacultyID
	updated.Notes = annotateNote(entry.Notes, fmt.Sprintf("Faculty changed from %s to %s", e.current.FullName, e.newFaculty.FullName))
	if err := e.svc.entries.UpdateScheduleWithTx(ctx, tx, &updated); err != nil {
		return EntryOutcome{}, err
	}
	e.occupied[key] = true

	// keep subject ownership in step with the timetable
	if subject, ok := e.subjects[entry.SubjectID]; ok && !e.reassigned[subject.ID] {
		ownsPrimary := subject.PrimaryFacultyID != nil && *subject.PrimaryFacultyID == e.params.CurrentFacultyID
		ownsCo := subject.CoFacultyID != nil && *subject.CoFacultyID == e.params.CurrentFacultyID
		if ownsPrimary || ownsCo {
			if err := e.svc.subjects.ReassignFacultyWithTx(ctx, tx, subject.ID, e.params.CurrentFacultyID, e.params.NewFacultyID); err != nil {
				return EntryOutcome{}, err
			}
			e.reassigned[subject.ID] = true
		}
	}
	return outcome, nil
}

func (e *facultyReplaceExecutor) finalize(ctx context.Context, tally *Tally) error {
	if !e.params.MaintainWorkload || e.oldCount == 0 {
		return nil
	}
	ratio := e.svc.cfg.WorkloadWarnRatio
	if ratio <= 0 {
		ratio = 1.2
	}
	projected := e.newCount + tally.Successful
	if float64(projected) > ratio*float64(e.oldCount) {
		warning := fmt.Sprintf("%s's workload rises to %d active entries, above %.0f%% of %s's prior %d",
			e.newFaculty.FullName, projected, ratio*100, e.current.FullName, e.oldCount)
		tally.Warnings = append(tally.Warnings, warning)
		e.svc.tracker.Log(ctx, e.opID, models.LogLevelWarning, warning)
	}
	return nil
}

func (e *facultyReplaceExecutor) summary(t *Tally) string {
	return fmt.Sprintf("Reassigned %d of %d entries from %s to %s", t.Successful, t.Affected, e.current.FullName, e.newFaculty.FullName)
}
