/*
interval.go - Half-open interval algebra over concrete timestamps

PURPOSE:
  All shift, break, and punch windows reduce to [Start, End) intervals on a
  concrete date. Three primitives drive the whole engine:
  - NewInterval:     clock pair -> interval, with overnight wraparound
  - OverlapSeconds:  max(0, min(ends) - max(starts))
  - SubtractAll:     remove a window from an interval set, preserving order

OVERNIGHT RULE:
  end <= start means the interval crosses midnight; 24h is added to the end.
  A 22:00-06:00 shift on March 10 spans March 10 22:00 .. March 11 06:00.
*/
package engine

import "time"

// Interval is a half-open [Start, End) window on the timeline.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval anchors a clock pair onto a date. Returns ErrNoInterval when
// either clock is the zero sentinel. end <= start wraps past midnight.
func NewInterval(date Date, start, end Clock) (Interval, error) {
	if start.IsZero() || end.IsZero() {
		return Interval{}, ErrNoInterval
	}
	s := start.On(date)
	e := end.On(date)
	if !e.After(s) {
		e = e.Add(24 * time.Hour)
	}
	return Interval{Start: s, End: e}, nil
}

// Seconds returns the interval length in whole seconds.
func (iv Interval) Seconds() int64 {
	return int64(iv.End.Sub(iv.Start) / time.Second)
}

// Minutes floors the interval length to whole minutes.
func (iv Interval) Minutes() int {
	return int(iv.Seconds() / 60)
}

// IsEmpty reports a zero- or negative-length interval.
func (iv Interval) IsEmpty() bool {
	return !iv.End.After(iv.Start)
}

// Contains reports whether t falls inside [Start, End).
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// Clip bounds iv to bound. The result may be empty.
func (iv Interval) Clip(bound Interval) Interval {
	out := iv
	if out.Start.Before(bound.Start) {
		out.Start = bound.Start
	}
	if out.End.After(bound.End) {
		out.End = bound.End
	}
	return out
}

// OverlapSeconds returns the overlap of a and b in whole seconds, never
// negative.
func OverlapSeconds(a, b Interval) int64 {
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	if !end.After(start) {
		return 0
	}
	return int64(end.Sub(start) / time.Second)
}

// Subtract removes sub from iv, yielding 0, 1, or 2 remainders in order.
func (iv Interval) Subtract(sub Interval) []Interval {
	// No overlap: interval survives whole.
	if !sub.End.After(iv.Start) || !iv.End.After(sub.Start) {
		return []Interval{iv}
	}
	var out []Interval
	if sub.Start.After(iv.Start) {
		out = append(out, Interval{Start: iv.Start, End: sub.Start})
	}
	if iv.End.After(sub.End) {
		out = append(out, Interval{Start: sub.End, End: iv.End})
	}
	return out
}

// SubtractAll removes sub from every interval in set, preserving order.
// Empty remainders are dropped.
func SubtractAll(set []Interval, sub Interval) []Interval {
	out := make([]Interval, 0, len(set)+1)
	for _, iv := range set {
		for _, rest := range iv.Subtract(sub) {
			if !rest.IsEmpty() {
				out = append(out, rest)
			}
		}
	}
	return out
}
