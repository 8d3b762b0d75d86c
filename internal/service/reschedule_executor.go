package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Ankish8/College-Management-sub001/internal/models"
	appErrors "github.com/Ankish8/College-Management-sub001/pkg/errors"
)

// rescheduleExecutor moves dated entries from a source window onto a target
// window under a date mapping strategy. Entries arrive ordered by (date,
// slot sequence) so earlier entries claim contested target slots first and
// later ones fall to alternatives deterministically.
type rescheduleExecutor struct {
	svc    *BulkOperationService
	opID   string
	params *models.RescheduleParams

	affected    []models.TimetableEntry
	holidays    []models.Holiday
	examPeriods []models.ExamPeriod
	blackouts   []models.FacultyBlackoutPeriod
	occupied    map[string]bool // batch slot occupancy across the target window
	slots       *slotIndex
}

func (e *rescheduleExecutor) prepare(ctx context.Context) (int, error) {
	p := e.params
	if p.SourceRange.End.Before(p.SourceRange.Start) || p.TargetRange.End.Before(p.TargetRange.Start) {
		return 0, appErrors.Clone(appErrors.ErrValidation, "date range end must not precede start")
	}
	if p.BatchID != nil {
		if _, err := e.svc.batches.FindByID(ctx, *p.BatchID); err != nil {
			return 0, resolveErr(err, "batch filter", *p.BatchID)
		}
	}

	var err error
	e.affected, err = e.svc.entries.ListDatedInRange(ctx, p.SourceRange.Start, p.SourceRange.End, p.BatchID)
	if err != nil {
		return 0, err
	}
	if len(e.affected) == 0 {
		return 0, nil
	}

	e.holidays, err = e.svc.calendar.ListHolidaysBetween(ctx, p.TargetRange.Start, p.TargetRange.End)
	if err != nil {
		return 0, err
	}
	e.examPeriods, err = e.svc.calendar.ListExamPeriodsOverlapping(ctx, p.TargetRange.Start, p.TargetRange.End, true)
	if err != nil {
		return 0, err
	}
	if p.RespectBlackouts {
		e.blackouts, err = e.svc.calendar.ListBlackoutsOverlapping(ctx, p.TargetRange.Start, p.TargetRange.End)
		if err != nil {
			return 0, err
		}
	}

	targetEntries, err := e.svc.entries.ListDatedInRange(ctx, p.TargetRange.Start, p.TargetRange.End, p.BatchID)
	if err != nil {
		return 0, err
	}
	moving := make(map[string]bool, len(e.affected))
	for _, a := range e.affected {
		moving[a.ID] = true
	}
	e.occupied = make(map[string]bool, len(targetEntries))
	for _, t := range targetEntries {
		// When the windows overlap the affected entries show up in the
		// target preload too; their current keys are vacated by the move,
		// not obstacles to it.
		if moving[t.ID] {
			continue
		}
		e.occupied[t.SlotKey()] = true
	}

	slots, err := e.svc.timeSlots.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	e.slots = newSlotIndex(slots)
	return len(e.affected), nil
}

func (e *rescheduleExecutor) apply(ctx context.Context, tx sqlx.ExtContext, i int) (EntryOutcome, error) {
	entry := e.affected[i]
	outcome := Succeeded()

	targetDate := MapDate(*entry.Date, e.params.SourceRange, e.params.TargetRange, e.params.MoveType)
	if e.params.ExcludeWeekends {
		moved := false
		targetDate, moved = AdvanceWeekend(targetDate)
		if moved {
			outcome = outcome.WithWarning(fmt.Sprintf("entry %s advanced past a weekend to %s", entry.ID, targetDate.Format("2006-01-02")))
		}
	}

	for _, p := range e.examPeriods {
		if p.Covers(targetDate) {
			e.occupied[entry.SlotKey()] = true // stays put; its slot is taken again
			return Failed(fmt.Sprintf("entry %s cannot move to %s: exam period %q blocks regular classes",
				entry.ID, targetDate.Format("2006-01-02"), p.Name)), nil
		}
	}
	for _, h := range e.holidays {
		if sameDate(h.Date, targetDate) {
			outcome = outcome.WithWarning(fmt.Sprintf("entry %s lands on holiday %q (%s)", entry.ID, h.Name, targetDate.Format("2006-01-02")))
		}
	}
	if e.params.RespectBlackouts {
		for _, b := range e.blackouts {
			if b.FacultyID == entry.FacultyID && b.Covers(targetDate) {
				outcome = outcome.WithWarning(fmt.Sprintf("entry %s lands inside its faculty's blackout period on %s", entry.ID, targetDate.Format("2006-01-02")))
			}
		}
	}

	moved := entry
	moved.Date = &targetDate
	moved.DayOfWeek = models.DayOfWeekFromDate(targetDate)

	if e.occupied[moved.SlotKey()] {
		alternative, ok := e.findAlternativeSlot(&moved)
		if !ok {
			e.occupied[entry.SlotKey()] = true
			return Failed(fmt.Sprintf("entry %s cannot move to %s: slot occupied and no free alternative slot",
				entry.ID, targetDate.Format("2006-01-02"))), nil
		}
		moved.TimeSlotID = alternative.ID
		outcome = outcome.WithWarning(fmt.Sprintf("entry %s moved to alternative slot %s on %s", entry.ID, alternative.Name, targetDate.Format("2006-01-02")))
	}

	moved.Notes = annotateNote(entry.Notes, fmt.Sprintf("Rescheduled from %s", entry.Date.Format("2006-01-02")))
	if err := e.svc.entries.UpdateScheduleWithTx(ctx, tx, &moved); err != nil {
		return EntryOutcome{}, err
	}
	e.occupied[moved.SlotKey()] = true
	return outcome, nil
}

// findAlternativeSlot walks the canonical slot sequence, trying at most the
// configured number of free slots for the entry's batch and target date.
func (e *rescheduleExecutor) findAlternativeSlot(entry *models.TimetableEntry) (models.TimeSlot, bool) {
	attempts := e.svc.cfg.AlternativeSlotAttempts
	if attempts <= 0 {
		attempts = 3
	}
	tried := 0
	for _, slot := range e.slots.ordered {
		if slot.ID == entry.TimeSlotID {
			continue
		}
		if tried >= attempts {
			break
		}
		tried++
		candidate := *entry
		candidate.TimeSlotID = slot.ID
		if !e.occupied[candidate.SlotKey()] {
			return slot, true
		}
	}
	return models.TimeSlot{}, false
}

func (e *rescheduleExecutor) finalize(ctx context.Context, tally *Tally) error {
	return nil
}

func (e *rescheduleExecutor) summary(t *Tally) string {
	return fmt.Sprintf("Rescheduled %d of %d entries from %s..%s to %s..%s",
		t.Successful, t.Affected,
		e.params.SourceRange.Start.Format("2006-01-02"), e.params.SourceRange.End.Format("2006-01-02"),
		e.params.TargetRange.Start.Format("2006-01-02"), e.params.TargetRange.End.Format("2006-01-02"))
}
