/*
credit.go - Day-credit calculation

PURPOSE:
  Overlap the day's punches against the working blocks to get rendered time,
  then convert to a truncated day fraction:

    adjusted = rendered + late-forgiven lead time
    days_credited = clamp01(floor(adjusted_min / credit_basis_min * 100) / 100)

LATE FORGIVENESS:
  A late punch-in already shrinks rendered time; the deduction evaluator
  penalizes the same lateness again. To avoid the double penalty, the lead
  time from block start to the late punch-in is added back to the credit side
  for every late block that has actual worked time. The deduction still
  reduces deducted_days separately; the two feed different payslip lines.
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditResult is the rendered-time side of one computation.
type CreditResult struct {
	ActualWorkedSeconds int64
	IgnoredLateSeconds  int64 // forgiven lead time, diagnostics
	AdjustedMinutes     int
	DaysCredited        decimal.Decimal
	EarlyOut            bool
}

// WorkedIntervals builds the day's worked intervals from complete punch
// pairs. Incomplete pairs contribute nothing.
func WorkedIntervals(date Date, punches PunchCard) []Interval {
	var out []Interval
	if iv, err := NewInterval(date, punches.TimeInMorning, punches.TimeOutMorning); err == nil {
		out = append(out, iv)
	}
	if iv, err := NewInterval(date, punches.TimeInAfternoon, punches.TimeOutAfternoon); err == nil {
		out = append(out, iv)
	}
	return out
}

// AlignWorked retries non-overlapping worked intervals 24h forward: punches in
// an overnight shift's early-morning tail normalize onto the previous calendar
// day, the same way break windows do.
func AlignWorked(shift Interval, worked []Interval) []Interval {
	out := make([]Interval, 0, len(worked))
	for _, w := range worked {
		if OverlapSeconds(w, shift) == 0 {
			shifted := Interval{Start: w.Start.Add(24 * time.Hour), End: w.End.Add(24 * time.Hour)}
			if OverlapSeconds(shifted, shift) > 0 {
				w = shifted
			}
		}
		out = append(out, w)
	}
	return out
}

// CalculateCredit fills each block's WorkedSeconds and computes the credited
// day fraction. set is mutated in place so diagnostics carry per-block
// rendered time.
func CalculateCredit(date Date, wt WorkTime, set *BlockSet, worked []Interval) CreditResult {
	var res CreditResult

	for i := range set.Blocks {
		blk := &set.Blocks[i]
		blk.WorkedSeconds = 0
		for _, w := range worked {
			blk.WorkedSeconds += OverlapSeconds(w, blk.Interval)
		}
		res.ActualWorkedSeconds += blk.WorkedSeconds
	}

	// Late forgiveness: recover the lead time of every late block that has
	// actual worked time, so lateness is not penalized on both sides.
	for _, blk := range set.Blocks {
		punchIn := locateBlockPunch(blk, worked)
		if punchIn == nil || blk.WorkedSeconds == 0 {
			continue
		}
		in := adjustOvernight(*punchIn, blk.Interval.Start)
		baseline := blockBaseline(date, wt, blk)
		if in.After(baseline) && in.After(blk.Interval.Start) {
			res.IgnoredLateSeconds += int64(in.Sub(blk.Interval.Start).Seconds())
		}
	}

	res.AdjustedMinutes = int((res.ActualWorkedSeconds + res.IgnoredLateSeconds) / 60)

	res.DaysCredited = decimal.Zero
	if res.AdjustedMinutes > 0 {
		basis := decimal.NewFromInt(int64(set.CreditBasisMinutes()))
		frac := decimal.NewFromInt(int64(res.AdjustedMinutes)).DivRound(basis, 8)
		res.DaysCredited = Clamp01(TruncFrac2(frac))
	}

	res.EarlyOut = earlyOut(set, worked)
	return res
}

// earlyOut: the last punch-out lands before the scheduled end of the last
// block.
func earlyOut(set *BlockSet, worked []Interval) bool {
	if len(set.Blocks) == 0 || len(worked) == 0 {
		return false
	}
	last := worked[0].End
	for _, w := range worked[1:] {
		if w.End.After(last) {
			last = w.End
		}
	}
	return last.Before(set.Blocks[len(set.Blocks)-1].Interval.End)
}
