// Package interleave implements the gather/scatter contract of spec
// §4.2: moving a level's shell of coefficients between the full
// decomposed array and a compact per-level buffer. Two variants are
// provided, mirroring the original MDR reference's DirectInterleaver
// and SFCInterleaver: a row-major gatherer and a Morton-order (space-
// filling curve) gatherer for better downstream compression locality.
package interleave

import (
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/griddims"
	"github.com/lxAltria/Multiprecision-data-refactoring/numeric"
)

// Interleaver gathers/scatters one level's shell of coefficients.
type Interleaver[F numeric.Float] interface {
	// Interleave gathers the dims_ℓ \ dims_{ℓ-1} coefficients of
	// srcFull (shape dims) into the compact buffer dstLevel (length
	// n_ℓ - n_{ℓ-1}).
	Interleave(srcFull []F, dims, levelDims, prevDims []uint32, dstLevel []F)
	// Reposition is the inverse scatter: dstFull (shape dimsTarget)
	// receives srcLevel's coefficients back at their hierarchical
	// positions.
	Reposition(srcLevel []F, dimsTarget, levelDims, prevDims []uint32, dstFull []F)
	Name() string
}

// inShell reports whether the multi-index (i0,i1,i2) — valid inside
// the levelDims box — belongs to level ℓ's shell, i.e. is not already
// covered by the nested prevDims (dims_{ℓ-1}) box.
func inShell(i0, i1, i2 uint32, prev griddims.Dims3) bool {
	return !(i0 < prev[0] && i1 < prev[1] && i2 < prev[2])
}
