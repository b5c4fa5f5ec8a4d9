/*
blocks.go - Working-time block construction

The shift interval minus its clipped breaks yields the ordered, disjoint
working blocks. Blocks are the unit of late evaluation: a splitting break
makes the segment after it an independent block with its own punch-in
baseline. Block counts are small (typically <= 5); everything here is plain
slice arithmetic rebuilt on every call, never persisted.
*/
package engine

// WorkingBlock is one contiguous working segment of a shift.
type WorkingBlock struct {
	Index    int // 1-based, chronological
	Interval Interval
	Seconds  int64

	// WorkedSeconds is filled by the credit calculator: overlap between the
	// block and the day's worked intervals.
	WorkedSeconds int64

	// PrecedingBreak is the mapped break before this block; nil for block 1.
	// Its split flag and valid-in window drive the block's late baseline.
	PrecedingBreak *MappedBreak
}

// BlockSet is the derived working layout of one shift on one date.
type BlockSet struct {
	Shift  Interval
	Breaks []MappedBreak
	Blocks []WorkingBlock
}

// BuildBlocks subtracts each clipped break, in chronological order, from the
// shift interval and indexes the survivors 1..N.
func BuildBlocks(shift Interval, breaks []MappedBreak) BlockSet {
	intervals := []Interval{shift}
	for _, b := range breaks {
		intervals = SubtractAll(intervals, b.Clipped)
	}

	blocks := make([]WorkingBlock, 0, len(intervals))
	for i, iv := range intervals {
		blk := WorkingBlock{Index: i + 1, Interval: iv, Seconds: iv.Seconds()}
		if i > 0 && i-1 < len(breaks) {
			blk.PrecedingBreak = &breaks[i-1]
		}
		blocks = append(blocks, blk)
	}
	return BlockSet{Shift: shift, Breaks: breaks, Blocks: blocks}
}

// CreditBasisMinutes is the day-credit denominator: floor-summed block
// durations, never below 1.
func (bs BlockSet) CreditBasisMinutes() int {
	total := 0
	for _, b := range bs.Blocks {
		total += int(b.Seconds / 60)
	}
	if total < 1 {
		total = 1
	}
	return total
}
