package sizeinterp

import "testing"

func twoLevelStats() []LevelStats {
	return []LevelStats{
		{Sizes: []uint32{4, 4, 4, 4}, SqErr: []float64{64, 16, 4, 1}},
		{Sizes: []uint32{2, 2, 2, 2}, SqErr: []float64{256, 64, 16, 4}},
	}
}

func TestAllocateStopsAtTolerance(t *testing.T) {
	levels := twoLevelStats()
	alloc := Allocate(levels, 0, nil)
	for l, n := range alloc.NumBitplanes {
		if n != len(levels[l].Sizes) {
			t.Fatalf("level %d: tolerance 0 must retrieve everything, got %d/%d", l, n, len(levels[l].Sizes))
		}
	}
}

func TestAllocatePrefersHigherSlope(t *testing.T) {
	levels := twoLevelStats()
	// Total error = 64+16+4+1+256+64+16+4 = 425. Ask for a tolerance
	// that needs only one bitplane; the one taken must be level 1's
	// bitplane 0 (slope 256/2=128, the best ratio), which alone brings
	// the error down to 169 <= 400.
	alloc := Allocate(levels, 20, nil) // tolSq = 400
	if alloc.NumBitplanes[1] < 1 {
		t.Fatalf("expected level 1 bitplane 0 committed first (highest slope), got %+v", alloc.NumBitplanes)
	}
}

func TestAllocateProgressiveMonotonicity(t *testing.T) {
	levels := twoLevelStats()
	coarse := Allocate(levels, 10, nil)
	fine := Allocate(levels, 2, &coarse)
	for l := range levels {
		if fine.NumBitplanes[l] < coarse.NumBitplanes[l] {
			t.Fatalf("level %d: finer tolerance reduced bitplane count %d -> %d", l, coarse.NumBitplanes[l], fine.NumBitplanes[l])
		}
	}
}

func TestAllocateNoBudgetNeeded(t *testing.T) {
	levels := twoLevelStats()
	alloc := Allocate(levels, 1000, nil)
	for l, n := range alloc.NumBitplanes {
		if n != 0 {
			t.Fatalf("level %d: generous tolerance should need zero bitplanes, got %d", l, n)
		}
	}
}
