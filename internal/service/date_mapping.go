package service

import (
	"time"

	"github.com/Ankish8/College-Management-sub001/internal/models"
)

const day = 24 * time.Hour

// MapDate computes the target date for a source date d under the selected
// move strategy. d is expected to lie inside source.
//
//   - shift: constant offset targetStart-sourceStart; target window length is
//     ignored beyond its start.
//   - map: linear interpolation of d's fractional position in the source
//     window onto the target window.
//   - redistribute: d's zero-based day index scaled by targetDays/sourceDays
//     with integer truncation, added to targetStart. Never leaves the target
//     window.
func MapDate(d time.Time, source, target models.DateRange, moveType models.MoveType) time.Time {
	d = d.Truncate(day)
	sourceStart := source.Start.Truncate(day)
	sourceEnd := source.End.Truncate(day)
	targetStart := target.Start.Truncate(day)
	targetEnd := target.End.Truncate(day)

	switch moveType {
	case models.MoveTypeMap:
		sourceSpan := sourceEnd.Sub(sourceStart)
		if sourceSpan <= 0 {
			return targetStart
		}
		fraction := float64(d.Sub(sourceStart)) / float64(sourceSpan)
		offsetDays := int(fraction*float64(targetEnd.Sub(targetStart)/day) + 0.5)
		return targetStart.AddDate(0, 0, offsetDays)
	case models.MoveTypeRedistribute:
		sourceDays := source.Days()
		if sourceDays <= 0 {
			return targetStart
		}
		index := int(d.Sub(sourceStart) / day)
		scaled := index * target.Days() / sourceDays
		if scaled >= target.Days() {
			scaled = target.Days() - 1
		}
		return targetStart.AddDate(0, 0, scaled)
	default: // shift
		return d.Add(targetStart.Sub(sourceStart))
	}
}

// AdvanceWeekend moves a weekend date forward day-by-day to the next weekday.
// The second return reports whether the date moved.
func AdvanceWeekend(d time.Time) (time.Time, bool) {
	moved := false
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
		moved = true
	}
	return d, moved
}
