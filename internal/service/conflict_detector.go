package service

import (
	"fmt"

	"github.com/Ankish8/College-Management-sub001/internal/models"
)

// ConflictDetector finds pairwise overlaps in a resolved event set. It is a
// pure function over its input and shared by the validator, the executors,
// and the dry-run preview.
type ConflictDetector struct{}

// NewConflictDetector constructs the detector.
func NewConflictDetector() *ConflictDetector {
	return &ConflictDetector{}
}

// Detect partitions events by day and emits a conflict for every
// time-overlapping pair that shares a faculty (critical) or a batch (medium).
// Pairs sharing neither never conflict, regardless of overlap.
func (d *ConflictDetector) Detect(events []models.CalendarEvent) models.ConflictCheckResult {
	byDay := make(map[string][]models.CalendarEvent)
	for _, ev := range events {
		byDay[ev.DayKey] = append(byDay[ev.DayKey], ev)
	}

	result := models.ConflictCheckResult{Conflicts: []models.EventConflict{}}
	for _, day := range byDay {
		for i := 0; i < len(day); i++ {
			for j := i + 1; j < len(day); j++ {
				a, b := day[i], day[j]
				if !overlaps(a, b) {
					continue
				}
				if a.FacultyID != "" && a.FacultyID == b.FacultyID {
					result.Conflicts = append(result.Conflicts, models.EventConflict{
						EventAID:    a.ID,
						EventBID:    b.ID,
						Dimension:   models.ConflictDimensionFaculty,
						Severity:    models.SeverityCritical,
						Description: fmt.Sprintf("faculty double-booked: %s overlaps %s", a.Label, b.Label),
					})
					result.CriticalCount++
				} else if a.BatchID != "" && a.BatchID == b.BatchID {
					result.Conflicts = append(result.Conflicts, models.EventConflict{
						EventAID:    a.ID,
						EventBID:    b.ID,
						Dimension:   models.ConflictDimensionBatch,
						Severity:    models.SeverityMedium,
						Description: fmt.Sprintf("batch double-booked: %s overlaps %s", a.Label, b.Label),
					})
				}
			}
		}
	}
	result.TotalCount = len(result.Conflicts)
	result.HasConflicts = result.TotalCount > 0
	return result
}

func overlaps(a, b models.CalendarEvent) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}
