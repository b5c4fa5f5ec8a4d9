/*
breaks.go - Break-to-shift mapping

Breaks attached to a shift are normalized against the date, clipped to the
shift interval, and dropped when they fall entirely outside it. The clipped
list, in chronological order, is what the block builder subtracts.
*/
package engine

import (
	"sort"
	"time"
)

// MappedBreak is a break clipped onto a concrete shift interval.
type MappedBreak struct {
	Def     BreakDefinition
	Raw     Interval // normalized, before clipping
	Clipped Interval
	Minutes int // floor of the clipped length
}

// MapBreaks clips defs to the shift interval. Returns the ordered mapped
// breaks and their floor-summed minutes. Breaks that fail to normalize
// (zero-sentinel clocks) or don't overlap the shift are discarded.
func MapBreaks(date Date, shift Interval, defs []BreakDefinition) ([]MappedBreak, int) {
	var mapped []MappedBreak
	total := 0
	for _, def := range defs {
		raw, err := NewInterval(date, def.StartTime, def.EndTime)
		if err != nil {
			continue
		}
		// Breaks in an overnight shift's early-morning tail normalize onto
		// the previous calendar day; retry shifted forward before discarding.
		if OverlapSeconds(raw, shift) == 0 {
			shifted := Interval{Start: raw.Start.Add(24 * time.Hour), End: raw.End.Add(24 * time.Hour)}
			if OverlapSeconds(shifted, shift) == 0 {
				continue
			}
			raw = shifted
		}
		clipped := raw.Clip(shift)
		if clipped.IsEmpty() {
			continue
		}
		mb := MappedBreak{Def: def, Raw: raw, Clipped: clipped, Minutes: clipped.Minutes()}
		mapped = append(mapped, mb)
		total += mb.Minutes
	}
	sort.Slice(mapped, func(i, j int) bool {
		return mapped[i].Clipped.Start.Before(mapped[j].Clipped.Start)
	})
	return mapped, total
}
