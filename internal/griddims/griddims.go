// Package griddims computes the per-level nested dimension vectors
// shared by the decomposer, interleaver, and orchestrators: spec §3's
// "dims_ℓ rule" and the level-geometry invariant that every
// decomposer variant must agree on (spec §4.1).
package griddims

// LevelDims returns dims_0 .. dims_L, the nested per-axis halved
// dimension vectors (spec §3). dims_L == dims (the top level covers
// the whole array).
//
// Rule (spec §4.1): start from dims; at each coarsening step, each
// axis d becomes ceil((d+1)/2).
func LevelDims(dims []uint32, targetLevel int) [][]uint32 {
	levels := make([][]uint32, targetLevel+1)
	levels[targetLevel] = append([]uint32(nil), dims...)
	cur := dims
	for l := targetLevel - 1; l >= 0; l-- {
		next := make([]uint32, len(cur))
		for a, d := range cur {
			next[a] = (d + 2) / 2 // ceil((d+1)/2)
		}
		levels[l] = next
		cur = next
	}
	return levels
}

// NumElements returns the product of a dimension vector.
func NumElements(dims []uint32) uint32 {
	n := uint32(1)
	for _, d := range dims {
		n *= d
	}
	return n
}

// LevelElements returns n_0 .. n_L, the element count of each level's
// dims vector.
func LevelElements(levelDims [][]uint32) []uint32 {
	out := make([]uint32, len(levelDims))
	for i, d := range levelDims {
		out[i] = NumElements(d)
	}
	return out
}

// MaxLevel returns floor(log2(min(dims))) - 1, the deepest
// target_level the refactor orchestrator will accept (spec §4.8 step
// 1, spec §7 InvalidArgument condition).
func MaxLevel(dims []uint32) int {
	minD := dims[0]
	for _, d := range dims[1:] {
		if d < minD {
			minD = d
		}
	}
	level := -1
	for v := minD; v > 1; v >>= 1 {
		level++
	}
	return level
}

// MinDim returns the smallest axis dimension.
func MinDim(dims []uint32) uint32 {
	minD := dims[0]
	for _, d := range dims[1:] {
		if d < minD {
			minD = d
		}
	}
	return minD
}
