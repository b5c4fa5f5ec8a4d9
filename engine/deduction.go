/*
deduction.go - Tiered late-arrival deduction evaluation

PURPOSE:
  Each working block is an independent late-evaluation unit. Per block:
  1. Compute the valid-arrival baseline (grace boundary).
  2. Locate the block's punch-in; no punch means absence, never lateness.
  3. late_minutes = floor((punch_in - baseline) / 60) when positive.
  4. Resolve the tier for (work time, block index), wildcard fallback.
  5. Resolve the covering rule; nearest-lower-bucket fallback.
  6. Accumulate the clamped deduction fraction, capped at 1.0 overall.

BASELINES:
  Block 1:   the shift's valid-in-end when set, else start + 5min grace.
  Block k>1: the preceding break's valid-break-in-end (or its clipped end)
             when that break splits the shift, else start + 5min.
  A baseline more than 12h before its block start crossed midnight during
  normalization and gets 24h added. Punch-ins are adjusted identically.

LOOKUP MISSES:
  Missing tier or rule degrades to zero deduction with a diagnostic note.
  Deduction gaps must never make a row uncomputable.
*/
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// defaultGrace is the punch-in grace applied when no explicit valid-in
// boundary is configured for a block.
const defaultGrace = 5 * time.Minute

// DeductionOutcome is the late-deduction side of one computation.
type DeductionOutcome struct {
	// TotalFraction is the accumulated deduction across blocks, clamped per
	// rule to [0,1] and capped at 1.0 overall.
	TotalFraction decimal.Decimal

	// DeductedDays is TotalFraction rounded to 2 decimals; zero when no block
	// incurred a deduction.
	DeductedDays decimal.Decimal

	// LastRuleID is the last rule touched. Informational: with multiple late
	// blocks the fractions are additive but only one rule id is stored.
	LastRuleID RuleID

	Applied []AppliedRule
	Notes   []string
}

// LateDeductionEvaluator resolves tiers and rules for late blocks.
type LateDeductionEvaluator struct {
	Deductions DeductionStore
}

// Evaluate runs the per-block deduction pipeline. worked are the day's
// normalized worked intervals (shared with the credit calculator so both see
// the same punch locations).
func (ev *LateDeductionEvaluator) Evaluate(ctx context.Context, date Date, wt WorkTime, set BlockSet, worked []Interval) (DeductionOutcome, error) {
	out := DeductionOutcome{
		TotalFraction: decimal.Zero,
		DeductedDays:  decimal.Zero,
	}
	one := decimal.NewFromInt(1)

	for _, blk := range set.Blocks {
		punchIn := locateBlockPunch(blk, worked)
		if punchIn == nil {
			continue // absence is not lateness
		}
		baseline := blockBaseline(date, wt, blk)
		in := adjustOvernight(*punchIn, blk.Interval.Start)
		if !in.After(baseline) {
			continue
		}
		lateMinutes := int(in.Sub(baseline) / time.Minute)

		rule, tierID, note, err := ev.resolveRule(ctx, wt.ID, blk.Index, lateMinutes)
		if err != nil {
			return out, err
		}
		if rule == nil {
			out.Notes = append(out.Notes, note)
			continue
		}

		value := Clamp01(rule.DeductionValue)
		out.TotalFraction = out.TotalFraction.Add(value)
		if out.TotalFraction.GreaterThan(one) {
			out.TotalFraction = one
		}
		out.LastRuleID = rule.ID
		out.Applied = append(out.Applied, AppliedRule{
			BlockIndex:  blk.Index,
			TierID:      tierID,
			RuleID:      rule.ID,
			LateMinutes: lateMinutes,
			Value:       value,
		})
	}

	if out.TotalFraction.IsPositive() {
		out.DeductedDays = out.TotalFraction.Round(2)
	}
	return out, nil
}

// resolveRule finds the tier for (workTime, block), wildcard fallback, then
// the matching rule. A nil rule with a note means "no deduction, log it".
func (ev *LateDeductionEvaluator) resolveRule(ctx context.Context, workTimeID WorkTimeID, blockIndex, lateMinutes int) (*LateDeductionRule, TierID, string, error) {
	tier, err := ev.Deductions.FindTier(ctx, workTimeID, blockIndex)
	if err != nil {
		return nil, "", "", fmt.Errorf("find tier: %w", err)
	}
	if tier == nil {
		tier, err = ev.Deductions.FindTier(ctx, workTimeID, 0)
		if err != nil {
			return nil, "", "", fmt.Errorf("find wildcard tier: %w", err)
		}
	}
	if tier == nil {
		return nil, "", fmt.Sprintf("block %d: %v (work time %s)", blockIndex, ErrNoTierMapped, workTimeID), nil
	}

	rules, err := ev.Deductions.FindRules(ctx, tier.ID)
	if err != nil {
		return nil, tier.ID, "", fmt.Errorf("find rules: %w", err)
	}
	if rule := matchRule(rules, lateMinutes); rule != nil {
		return rule, tier.ID, "", nil
	}
	return nil, tier.ID, fmt.Sprintf("block %d: %v (tier %s, %d min late)", blockIndex, ErrNoRuleMatch, tier.ID, lateMinutes), nil
}

// matchRule picks the greatest MinMinutes whose range covers lateMinutes;
// failing that, the greatest MinMinutes at or below lateMinutes regardless of
// its upper bound (nearest-lower-bucket policy).
func matchRule(rules []LateDeductionRule, lateMinutes int) *LateDeductionRule {
	var covering, lower *LateDeductionRule
	for i := range rules {
		r := &rules[i]
		if r.MinMinutes > lateMinutes {
			continue
		}
		if lower == nil || r.MinMinutes >= lower.MinMinutes {
			lower = r
		}
		if r.Covers(lateMinutes) {
			if covering == nil || r.MinMinutes >= covering.MinMinutes {
				covering = r
			}
		}
	}
	if covering != nil {
		return covering
	}
	return lower
}

// =============================================================================
// BASELINES AND PUNCH LOCATION (shared with the credit calculator)
// =============================================================================

// blockBaseline returns the latest on-time punch-in for a block.
func blockBaseline(date Date, wt WorkTime, blk WorkingBlock) time.Time {
	var baseline time.Time
	switch {
	case blk.Index == 1 && !wt.ValidInEnd.IsZero():
		baseline = wt.ValidInEnd.On(date)
	case blk.Index > 1 && blk.PrecedingBreak != nil && blk.PrecedingBreak.Def.IsShiftSplit:
		pb := blk.PrecedingBreak
		if !pb.Def.ValidBreakInEnd.IsZero() {
			baseline = pb.Def.ValidBreakInEnd.On(date)
		} else {
			baseline = pb.Clipped.End
		}
	default:
		baseline = blk.Interval.Start.Add(defaultGrace)
	}
	return adjustOvernight(baseline, blk.Interval.Start)
}

// adjustOvernight adds 24h to t when it precedes ref by more than 12h: the
// clock normalized onto the wrong side of midnight.
func adjustOvernight(t, ref time.Time) time.Time {
	if ref.Sub(t) > 12*time.Hour {
		return t.Add(24 * time.Hour)
	}
	return t
}

// locateBlockPunch finds the punch-in belonging to a block: the earliest
// worked interval starting inside it, or starting up to 30 minutes before it
// and extending into it. Returns the punch-in time or nil.
func locateBlockPunch(blk WorkingBlock, worked []Interval) *time.Time {
	var best *time.Time
	earliest := blk.Interval.Start.Add(-30 * time.Minute)
	for _, w := range worked {
		in := w.Start
		inside := blk.Interval.Contains(in)
		leading := !in.Before(earliest) && in.Before(blk.Interval.Start) && w.End.After(blk.Interval.Start)
		if !inside && !leading {
			continue
		}
		if best == nil || in.Before(*best) {
			t := in
			best = &t
		}
	}
	return best
}
