package service

import (
	"fmt"
	"time"

	"github.com/Ankish8/College-Management-sub001/internal/models"
)

// slotIndex keys active time slots by id for event building and alternative
// slot searches.
type slotIndex struct {
	byID    map[string]models.TimeSlot
	ordered []models.TimeSlot
}

func newSlotIndex(slots []models.TimeSlot) *slotIndex {
	idx := &slotIndex{byID: make(map[string]models.TimeSlot, len(slots)), ordered: slots}
	for _, s := range slots {
		idx.byID[s.ID] = s
	}
	return idx
}

// clockOn parses an "HH:MM" wall-clock string onto the given anchor date.
func clockOn(anchor time.Time, clock string) time.Time {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return anchor
	}
	return time.Date(anchor.Year(), anchor.Month(), anchor.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}

// weeklyAnchor is an arbitrary fixed Monday used to place recurring slot times
// on a comparable axis inside one weekly day-key bucket.
var weeklyAnchor = time.Date(2000, time.January, 3, 0, 0, 0, 0, time.UTC)

// buildEvents resolves timetable entries into detector events. Dated entries
// produce one event keyed by their ISO date. Recurring entries produce one
// event keyed "weekly:<DAY>" plus a twin on every dated day in scope that
// falls on their weekday, so weekly and dated entries on the same weekday can
// collide.
func buildEvents(entries []models.TimetableEntry, slots *slotIndex) []models.CalendarEvent {
	datesByWeekday := make(map[models.DayOfWeek]map[string]time.Time)
	for _, e := range entries {
		if e.Date == nil {
			continue
		}
		d := e.Date.Truncate(24 * time.Hour)
		dow := models.DayOfWeekFromDate(d)
		if datesByWeekday[dow] == nil {
			datesByWeekday[dow] = make(map[string]time.Time)
		}
		datesByWeekday[dow][d.Format("2006-01-02")] = d
	}

	var events []models.CalendarEvent
	for _, e := range entries {
		slot, ok := slots.byID[e.TimeSlotID]
		if !ok {
			continue
		}
		label := fmt.Sprintf("entry %s (%s %s-%s)", e.ID, e.DayOfWeek, slot.StartTime, slot.EndTime)
		if e.Date != nil {
			d := e.Date.Truncate(24 * time.Hour)
			events = append(events, models.CalendarEvent{
				ID:        e.ID,
				BatchID:   e.BatchID,
				FacultyID: e.FacultyID,
				SubjectID: e.SubjectID,
				DayKey:    d.Format("2006-01-02"),
				Start:     clockOn(d, slot.StartTime),
				End:       clockOn(d, slot.EndTime),
				Label:     label,
			})
			continue
		}
		events = append(events, models.CalendarEvent{
			ID:        e.ID,
			BatchID:   e.BatchID,
			FacultyID: e.FacultyID,
			SubjectID: e.SubjectID,
			DayKey:    "weekly:" + string(e.DayOfWeek),
			Start:     clockOn(weeklyAnchor, slot.StartTime),
			End:       clockOn(weeklyAnchor, slot.EndTime),
			Label:     label,
		})
		for _, d := range datesByWeekday[e.DayOfWeek] {
			events = append(events, models.CalendarEvent{
				ID:        e.ID,
				BatchID:   e.BatchID,
				FacultyID: e.FacultyID,
				SubjectID: e.SubjectID,
				DayKey:    d.Format("2006-01-02"),
				Start:     clockOn(d, slot.StartTime),
				End:       clockOn(d, slot.EndTime),
				Label:     label,
			})
		}
	}
	return events
}
