package interleave

import (
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/griddims"
	"github.com/lxAltria/Multiprecision-data-refactoring/numeric"
)

// DirectInterleaver visits the shell in plain row-major order (axis 0
// slowest, last axis fastest) — the simplest gatherer, and the
// baseline the teacher's other per-line loops (decompose, bitplane
// encoder) already assume for block ordering (spec §5 "Blocks are
// numbered in the order produced by the interleaver").
func DirectInterleaver[F numeric.Float]() Interleaver[F] {
	return directInterleaver[F]{}
}

type directInterleaver[F numeric.Float] struct{}

func (directInterleaver[F]) Name() string { return "direct" }

func (directInterleaver[F]) Interleave(srcFull []F, dims, levelDims, prevDims []uint32, dstLevel []F) {
	full := griddims.Pad3(dims)
	strides := full.Strides()
	cur := griddims.Pad3(levelDims)
	prev := griddims.Pad3(prevDims)
	k := 0
	for i0 := uint32(0); i0 < cur[0]; i0++ {
		for i1 := uint32(0); i1 < cur[1]; i1++ {
			for i2 := uint32(0); i2 < cur[2]; i2++ {
				if !inShell(i0, i1, i2, prev) {
					continue
				}
				dstLevel[k] = srcFull[i0*strides[0]+i1*strides[1]+i2*strides[2]]
				k++
			}
		}
	}
}

func (directInterleaver[F]) Reposition(srcLevel []F, dimsTarget, levelDims, prevDims []uint32, dstFull []F) {
	full := griddims.Pad3(dimsTarget)
	strides := full.Strides()
	cur := griddims.Pad3(levelDims)
	prev := griddims.Pad3(prevDims)
	k := 0
	for i0 := uint32(0); i0 < cur[0]; i0++ {
		for i1 := uint32(0); i1 < cur[1]; i1++ {
			for i2 := uint32(0); i2 < cur[2]; i2++ {
				if !inShell(i0, i1, i2, prev) {
					continue
				}
				dstFull[i0*strides[0]+i1*strides[1]+i2*strides[2]] = srcLevel[k]
				k++
			}
		}
	}
}
