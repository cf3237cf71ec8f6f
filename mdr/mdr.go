package mdr

import (
	"fmt"
	"math"

	"github.com/lxAltria/Multiprecision-data-refactoring/errs"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/bitplane"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/decompose"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/distributed"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/griddims"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/interleave"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/lossless"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/sizeinterp"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/store"
	"github.com/lxAltria/Multiprecision-data-refactoring/numeric"
)

// RefactorParams collects the five policy collaborators the refactor
// orchestrator composes by construction (spec §9).
type RefactorParams[F numeric.Float, U numeric.UWord] struct {
	Dims         []uint32
	TargetLevel  int
	NumBitplanes uint8
	Decomposer   decompose.Decomposer[F]
	Interleaver  interleave.Interleaver[F]
	Lossless     lossless.LevelCompressor // nil => lossless.NullLevelCompressor{}
	Writer       store.Writer
	Collective   distributed.Collective // nil => distributed.LocalCollective{}
}

func (p RefactorParams[F, U]) collective() distributed.Collective {
	if p.Collective == nil {
		return distributed.LocalCollective{}
	}
	return p.Collective
}

func (p RefactorParams[F, U]) losslessCodec() lossless.LevelCompressor {
	if p.Lossless == nil {
		return lossless.NullLevelCompressor{}
	}
	return p.Lossless
}

// Refactor implements spec §4.8's seven-step orchestration: decompose,
// interleave + bound each level, encode + error-collect + compress
// each level, all-reduce, and persist.
func Refactor[F numeric.Float, U numeric.UWord](data []F, p RefactorParams[F, U]) error {
	if p.NumBitplanes == 0 {
		return fmt.Errorf("mdr: num_bitplanes must be > 0: %w", errs.ErrInvalidArgument)
	}
	if maxLevel := griddims.MaxLevel(p.Dims); p.TargetLevel < 0 || p.TargetLevel > maxLevel {
		return fmt.Errorf("mdr: target_level %d exceeds floor(log2(min(dims)))-1 = %d: %w", p.TargetLevel, maxLevel, errs.ErrInvalidArgument)
	}
	n := griddims.NumElements(p.Dims)
	if uint32(len(data)) != n {
		return fmt.Errorf("mdr: data has %d elements, dims imply %d: %w", len(data), n, errs.ErrInvalidArgument)
	}

	buf := append([]F(nil), data...)
	p.Decomposer.Decompose(buf, p.Dims, p.TargetLevel)

	levelDims := griddims.LevelDims(p.Dims, p.TargetLevel)
	levelElems := griddims.LevelElements(levelDims)
	numLevels := p.TargetLevel + 1
	zeroDims := make([]uint32, len(p.Dims))

	shellBufs := make([][]F, numLevels)
	bounds := make([]F, numLevels)
	for l := 0; l < numLevels; l++ {
		prev := zeroDims
		var prevCount uint32
		if l > 0 {
			prev = levelDims[l-1]
			prevCount = levelElems[l-1]
		}
		shell := make([]F, levelElems[l]-prevCount)
		p.Interleaver.Interleave(buf, p.Dims, levelDims[l], prev, shell)

		var maxAbs F
		for _, v := range shell {
			a := v
			if a < 0 {
				a = -a
			}
			if a > maxAbs {
				maxAbs = a
			}
		}
		bounds[l] = reduceMaxBound(p.collective(), maxAbs)
		shellBufs[l] = shell
	}

	streamsPerLevel := make([][][]byte, numLevels)
	sizes := make([][]uint32, numLevels)
	sqErrAll := make([][]float64, numLevels)
	stopping := make([]uint8, numLevels)
	for l := 0; l < numLevels; l++ {
		e := exponentFor(float64(bounds[l]))
		res, err := bitplane.Encode[F, U](shellBufs[l], e, p.NumBitplanes)
		if err != nil {
			return err
		}
		compressed, stopIdx, err := p.losslessCodec().Compress(res.Streams)
		if err != nil {
			return err
		}
		sz := make([]uint32, len(compressed))
		for i, s := range compressed {
			sz[i] = uint32(len(s))
		}
		streamsPerLevel[l] = compressed
		sizes[l] = sz
		stopping[l] = uint8(stopIdx)
		sqErrAll[l] = res.SqErrPlane
	}

	sqErrAll = reduceSumPerLevel(p.collective(), sqErrAll)

	if p.collective().Rank() != 0 {
		return nil
	}
	mergedCount, err := p.Writer.WriteLevelComponents(streamsPerLevel)
	if err != nil {
		return err
	}
	md := Metadata[F]{
		Dims:          p.Dims,
		Bounds:        bounds,
		SqErr:         sqErrAll,
		Sizes:         sizes,
		StoppingIndex: stopping,
		MergedCount:   mergedCount,
	}
	if err := p.Writer.WriteMetadata(md.Encode()); err != nil {
		return err
	}
	return nil
}

// exponentFor computes E_ℓ = floor(log2(B)) + 1 via a frexp-style
// mantissa/exponent split (spec §3), defaulting to 1 for B = 0 (an
// all-zero level; the exponent is then irrelevant since every
// magnitude is zero regardless of E).
func exponentFor(b float64) int {
	if b == 0 {
		return 1
	}
	_, exp := math.Frexp(b)
	return exp
}

func reduceMaxBound[F numeric.Float](c distributed.Collective, b F) F {
	switch v := any(b).(type) {
	case float32:
		return F(c.AllReduceMaxF32(v))
	case float64:
		return F(c.AllReduceMaxF64(v))
	}
	return b
}

func reduceSumPerLevel(c distributed.Collective, sqErrAll [][]float64) [][]float64 {
	var flat []float64
	bounds := make([]int, len(sqErrAll))
	for l, se := range sqErrAll {
		bounds[l] = len(se)
		flat = append(flat, se...)
	}
	reduced := c.AllReduceSumF64s(flat)
	out := make([][]float64, len(sqErrAll))
	off := 0
	for l, n := range bounds {
		out[l] = append([]float64(nil), reduced[off:off+n]...)
		off += n
	}
	return out
}
