// Package sizeinterp implements the greedy byte-budget allocator of
// spec §4.6: given per-(level, bitplane) sizes and squared-error
// contributions, choose how many bitplanes to retrieve per level for
// a requested absolute error tolerance. Grounded directly on
// jpeg2000/rate_distortion.go's AllocateLayersRateDistortionPasses:
// same "build a slope per unit, sort descending, commit greedily
// against a budget, track cumulative rate/distortion" shape, adapted
// from per-codeblock-pass units to per-level-bitplane units.
package sizeinterp

import "sort"

// LevelStats is one level's per-bitplane accounting, as recorded in
// the metadata: post-lossless stream sizes and the bitplane encoder's
// per-plane squared errors (bitplane.Result.SqErrPlane).
type LevelStats struct {
	Sizes []uint32  // Sizes[b] = bytes of bitplane b
	SqErr []float64 // SqErr[b] = squared-error contribution of bitplane b
}

// Allocation is the size interpreter's output.
type Allocation struct {
	NumBitplanes  []int    // NumBitplanes[ℓ]
	RetrieveSizes []uint64 // RetrieveSizes[ℓ], bytes
}

// contribution is one (level, bitplane) pair's marginal rate/
// distortion, mirroring jpeg2000's CodeBlockContribution.
type contribution struct {
	level  int
	plane  int // the bitplane this becomes once committed
	size   uint64
	errRed float64
	slope  float64
}

// Allocate runs the greedy policy of spec §4.6: build every
// (level, bitplane) pair's error-reduction-per-byte slope, sort
// descending, and commit in that order — skipping any pair whose
// predecessor bitplane at the same level hasn't been committed yet —
// until total_err_sq <= tolerance^2 or everything is committed.
// prior, if non-nil, is a previous Allocation to extend (spec §4.6's
// progressivity invariant: a smaller tolerance must only add
// bitplanes, never remove them).
func Allocate(levels []LevelStats, tolerance float64, prior *Allocation) Allocation {
	numLevels := len(levels)
	alloc := Allocation{
		NumBitplanes:  make([]int, numLevels),
		RetrieveSizes: make([]uint64, numLevels),
	}
	if prior != nil {
		copy(alloc.NumBitplanes, prior.NumBitplanes)
		copy(alloc.RetrieveSizes, prior.RetrieveSizes)
	}

	var totalErrSq float64
	for _, lv := range levels {
		for _, e := range lv.SqErr {
			totalErrSq += e
		}
	}
	// Remove the error already resolved by the prior allocation.
	for l := 0; l < numLevels; l++ {
		for b := 0; b < alloc.NumBitplanes[l] && b < len(levels[l].SqErr); b++ {
			totalErrSq -= levels[l].SqErr[b]
		}
	}

	tolSq := tolerance * tolerance
	if totalErrSq <= tolSq {
		return alloc
	}

	contributions := make([]contribution, 0)
	for l, lv := range levels {
		for b := alloc.NumBitplanes[l]; b < len(lv.Sizes); b++ {
			size := uint64(lv.Sizes[b])
			errRed := 0.0
			if b < len(lv.SqErr) {
				errRed = lv.SqErr[b]
			}
			slope := errRed * 1e18
			if size > 0 {
				slope = errRed / float64(size)
			}
			contributions = append(contributions, contribution{level: l, plane: b, size: size, errRed: errRed, slope: slope})
		}
	}
	sort.Slice(contributions, func(i, j int) bool {
		return contributions[i].slope > contributions[j].slope
	})

	// A bitplane can only be committed once its predecessor at the
	// same level is committed, so one descending-slope pass may strand
	// a good candidate behind a lower-slope prerequisite that sorts
	// later. Re-scan until a full pass commits nothing further.
	for {
		committed := false
		for _, c := range contributions {
			if totalErrSq <= tolSq {
				break
			}
			if alloc.NumBitplanes[c.level] != c.plane {
				continue // predecessor bitplane at this level not committed yet
			}
			alloc.NumBitplanes[c.level]++
			alloc.RetrieveSizes[c.level] += c.size
			totalErrSq -= c.errRed
			committed = true
		}
		if !committed || totalErrSq <= tolSq {
			break
		}
	}
	return alloc
}
