package interleave

import (
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/griddims"
	"github.com/lxAltria/Multiprecision-data-refactoring/numeric"
)

// SFCInterleaver visits the shell in Morton (Z-order) order instead
// of row-major, so that nearby coefficients in the original grid tend
// to land near each other in the compact buffer — improving locality
// for the downstream lossless codec pass (spec §4.2).
func SFCInterleaver[F numeric.Float]() Interleaver[F] {
	return sfcInterleaver[F]{}
}

type sfcInterleaver[F numeric.Float] struct{}

func (sfcInterleaver[F]) Name() string { return "sfc" }

// bitsPerAxis returns how many bits are needed to represent values up
// to (exclusive) each axis extent — 0 for a size-1 (dummy) axis, so
// that padded-out axes of a 1-D/2-D array never inflate the code
// space.
func bitsPerAxis(extent griddims.Dims3) (bits [3]int, maxBits int) {
	for a, e := range extent {
		b := 0
		for (uint32(1) << b) < e {
			b++
		}
		bits[a] = b
		if b > maxBits {
			maxBits = b
		}
	}
	return bits, maxBits
}

// mortonOrder returns, in Morton (Z-order) order, every in-bounds
// coordinate triple of the box [0,extent[0]) x [0,extent[1]) x
// [0,extent[2]). Bits are allocated per axis (round-robin, skipping
// axes that have run out), so dummy axes cost nothing.
func mortonOrder(extent griddims.Dims3) [][3]uint32 {
	bits, maxBits := bitsPerAxis(extent)
	totalBits := bits[0] + bits[1] + bits[2]
	total := uint64(1) << uint(totalBits)
	out := make([][3]uint32, 0, extent.NumElements())
	for code := uint64(0); code < total; code++ {
		var c [3]uint32
		bitPos := 0
		for level := 0; level < maxBits; level++ {
			for axis := 0; axis < 3; axis++ {
				if level >= bits[axis] {
					continue
				}
				if code&(uint64(1)<<uint(bitPos)) != 0 {
					c[axis] |= 1 << uint(level)
				}
				bitPos++
			}
		}
		if c[0] < extent[0] && c[1] < extent[1] && c[2] < extent[2] {
			out = append(out, c)
		}
	}
	return out
}

func (sfcInterleaver[F]) Interleave(srcFull []F, dims, levelDims, prevDims []uint32, dstLevel []F) {
	full := griddims.Pad3(dims)
	strides := full.Strides()
	cur := griddims.Pad3(levelDims)
	prev := griddims.Pad3(prevDims)
	k := 0
	for _, c := range mortonOrder(cur) {
		if !inShell(c[0], c[1], c[2], prev) {
			continue
		}
		dstLevel[k] = srcFull[c[0]*strides[0]+c[1]*strides[1]+c[2]*strides[2]]
		k++
	}
}

func (sfcInterleaver[F]) Reposition(srcLevel []F, dimsTarget, levelDims, prevDims []uint32, dstFull []F) {
	full := griddims.Pad3(dimsTarget)
	strides := full.Strides()
	cur := griddims.Pad3(levelDims)
	prev := griddims.Pad3(prevDims)
	k := 0
	for _, c := range mortonOrder(cur) {
		if !inShell(c[0], c[1], c[2], prev) {
			continue
		}
		dstFull[c[0]*strides[0]+c[1]*strides[1]+c[2]*strides[2]] = srcLevel[k]
		k++
	}
}
