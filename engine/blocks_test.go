package engine_test

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/warp/attendance-engine/engine"
)

func lunchBreak(split bool) engine.BreakDefinition {
	return engine.BreakDefinition{
		ID:           "br-lunch",
		Name:         "Lunch",
		StartTime:    engine.MustClock("12:00:00"),
		EndTime:      engine.MustClock("13:00:00"),
		IsShiftSplit: split,
	}
}

// =============================================================================
// BREAK MAPPING TESTS
// =============================================================================

func TestMapBreaks_ClipsToShift(t *testing.T) {
	// GIVEN: A 09:00-18:00 shift and a break running 17:30-19:00
	// WHEN: Mapping
	// THEN: The break is clipped to 17:30-18:00, 30 minutes

	d := date(2024, time.March, 11)
	shift := mustInterval(t, d, "09:00:00", "18:00:00")
	defs := []engine.BreakDefinition{{
		ID:        "br-late",
		StartTime: engine.MustClock("17:30:00"),
		EndTime:   engine.MustClock("19:00:00"),
	}}

	mapped, total := engine.MapBreaks(d, shift, defs)
	if len(mapped) != 1 {
		t.Fatalf("expected 1 mapped break, got %d", len(mapped))
	}
	if mapped[0].Minutes != 30 || total != 30 {
		t.Errorf("minutes = %d, total = %d, want 30", mapped[0].Minutes, total)
	}
}

func TestMapBreaks_DiscardsOutsideShift(t *testing.T) {
	d := date(2024, time.March, 11)
	shift := mustInterval(t, d, "09:00:00", "18:00:00")
	defs := []engine.BreakDefinition{{
		ID:        "br-night",
		StartTime: engine.MustClock("20:00:00"),
		EndTime:   engine.MustClock("21:00:00"),
	}}

	mapped, total := engine.MapBreaks(d, shift, defs)
	if len(mapped) != 0 || total != 0 {
		t.Errorf("expected no mapped breaks, got %d (total %d)", len(mapped), total)
	}
}

func TestMapBreaks_OvernightTailBreak(t *testing.T) {
	// GIVEN: A 22:00-06:00 shift and a 02:00-02:30 meal break
	// WHEN: Mapping
	// THEN: The break lands in the early-morning tail on the next day

	d := date(2024, time.March, 11)
	shift := mustInterval(t, d, "22:00:00", "06:00:00")
	defs := []engine.BreakDefinition{{
		ID:        "br-meal",
		StartTime: engine.MustClock("02:00:00"),
		EndTime:   engine.MustClock("02:30:00"),
	}}

	mapped, total := engine.MapBreaks(d, shift, defs)
	if len(mapped) != 1 {
		t.Fatalf("expected 1 mapped break, got %d", len(mapped))
	}
	if total != 30 {
		t.Errorf("total = %d, want 30", total)
	}
	if mapped[0].Clipped.Start.Day() != 12 {
		t.Errorf("break should land on March 12, got %v", mapped[0].Clipped.Start)
	}
}

func TestMapBreaks_SortedByStart(t *testing.T) {
	d := date(2024, time.March, 11)
	shift := mustInterval(t, d, "08:00:00", "20:00:00")
	defs := []engine.BreakDefinition{
		{ID: "br-pm", StartTime: engine.MustClock("16:00:00"), EndTime: engine.MustClock("16:30:00")},
		{ID: "br-am", StartTime: engine.MustClock("10:00:00"), EndTime: engine.MustClock("10:15:00")},
	}

	mapped, _ := engine.MapBreaks(d, shift, defs)
	if len(mapped) != 2 {
		t.Fatalf("expected 2 mapped breaks, got %d", len(mapped))
	}
	if mapped[0].Def.ID != "br-am" {
		t.Errorf("breaks not sorted: first is %s", mapped[0].Def.ID)
	}
}

// =============================================================================
// BLOCK BUILDING TESTS
// =============================================================================

func TestBuildBlocks_LunchSplitsDayInTwo(t *testing.T) {
	// GIVEN: A 09:00-18:00 shift with a 12:00-13:00 lunch
	// WHEN: Building blocks
	// THEN: Block 1 = 09:00-12:00, block 2 = 13:00-18:00, indexed 1 and 2,
	//       and block 2 carries the lunch as its preceding break

	d := date(2024, time.March, 11)
	shift := mustInterval(t, d, "09:00:00", "18:00:00")
	breaks, _ := engine.MapBreaks(d, shift, []engine.BreakDefinition{lunchBreak(true)})

	set := engine.BuildBlocks(shift, breaks)
	if len(set.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(set.Blocks))
	}
	if set.Blocks[0].Index != 1 || set.Blocks[1].Index != 2 {
		t.Errorf("block indexes = %d, %d", set.Blocks[0].Index, set.Blocks[1].Index)
	}
	if set.Blocks[0].PrecedingBreak != nil {
		t.Error("block 1 must not have a preceding break")
	}
	if set.Blocks[1].PrecedingBreak == nil || set.Blocks[1].PrecedingBreak.Def.ID != "br-lunch" {
		t.Error("block 2 should carry lunch as its preceding break")
	}
}

// checkReconstruction maps the given break layout onto an 08:00-20:00 shift
// and asserts block seconds plus clipped break seconds reassemble the shift.
func checkReconstruction(t *testing.T, defs []engine.BreakDefinition) {
	t.Helper()

	d := date(2024, time.March, 11)
	shift := mustInterval(t, d, "08:00:00", "20:00:00")
	breaks, _ := engine.MapBreaks(d, shift, defs)
	set := engine.BuildBlocks(shift, breaks)

	var total int64
	for _, b := range set.Blocks {
		total += b.Seconds
	}
	for _, br := range breaks {
		total += br.Clipped.Seconds()
	}
	if total != shift.Seconds() {
		t.Errorf("blocks + breaks = %ds, shift = %ds", total, shift.Seconds())
	}
}

func TestBuildBlocks_Reconstruction(t *testing.T) {
	// Block seconds plus clipped break seconds must reassemble the shift,
	// whatever the break layout.

	br := func(id, start, end string) engine.BreakDefinition {
		return engine.BreakDefinition{
			ID:        engine.BreakID(id),
			StartTime: engine.MustClock(start),
			EndTime:   engine.MustClock(end),
		}
	}

	tests := []struct {
		name string
		defs []engine.BreakDefinition
	}{
		{"no breaks", nil},
		{"split lunch plus afternoon break", []engine.BreakDefinition{
			lunchBreak(true),
			br("br-pm", "16:00:00", "16:45:00"),
		}},
		{"break touching shift start", []engine.BreakDefinition{
			br("br-open", "08:00:00", "08:30:00"),
		}},
		{"break touching shift end", []engine.BreakDefinition{
			br("br-close", "19:30:00", "20:00:00"),
		}},
		{"adjacent breaks", []engine.BreakDefinition{
			br("br-a", "12:00:00", "12:30:00"),
			br("br-b", "12:30:00", "13:00:00"),
		}},
		{"break covering the whole shift", []engine.BreakDefinition{
			br("br-all", "07:00:00", "21:00:00"),
		}},
		{"break overhanging shift end", []engine.BreakDefinition{
			br("br-over", "19:00:00", "22:00:00"),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkReconstruction(t, tt.defs)
		})
	}
}

func TestBuildBlocks_Reconstruction_Randomized(t *testing.T) {
	// Fixed seed: failures must reproduce.
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		// Disjoint random windows walked across 07:00-21:00, so some
		// breaks clip against the shift edges and some fall outside
		// the shift entirely. Break definitions never overlap each
		// other in a real configuration.
		n := 1 + rng.Intn(3)
		defs := make([]engine.BreakDefinition, 0, n)
		cursor := 7 * 3600
		for j := 0; j < n && cursor < 21*3600; j++ {
			start := cursor + rng.Intn(3*3600)
			end := start + 300 + rng.Intn(2*3600)
			if end > 21*3600 {
				end = 21 * 3600
			}
			if end <= start {
				break
			}
			defs = append(defs, engine.BreakDefinition{
				ID:        engine.BreakID(fmt.Sprintf("br-%d-%d", i, j)),
				StartTime: engine.Clock(start),
				EndTime:   engine.Clock(end),
			})
			cursor = end
		}
		checkReconstruction(t, defs)
	}
}

func TestCreditBasisMinutes_NeverBelowOne(t *testing.T) {
	set := engine.BlockSet{}
	if got := set.CreditBasisMinutes(); got != 1 {
		t.Errorf("empty set basis = %d, want 1", got)
	}
}
