package mdr

import (
	"fmt"

	"github.com/lxAltria/Multiprecision-data-refactoring/errs"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/bitplane"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/decompose"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/griddims"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/interleave"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/lossless"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/sizeinterp"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/store"
	"github.com/lxAltria/Multiprecision-data-refactoring/numeric"
)

// Reconstructor holds the retriever's progressive state (spec §4.9):
// each call to Reconstruct retrieves only the additional bytes beyond
// what a prior call already pulled, per the size interpreter's
// progressive-monotonicity invariant (spec §4.6).
type Reconstructor[F numeric.Float, U numeric.UWord] struct {
	Decomposer  decompose.Decomposer[F]
	Interleaver interleave.Interleaver[F]
	Lossless    lossless.LevelCompressor // nil => lossless.NullLevelCompressor{}
	Retriever   store.Retriever

	md         Metadata[F]
	alloc      sizeinterp.Allocation
	levelBytes [][]byte // accumulated raw (post-lossless, pre-decompress) bytes retrieved so far per level
}

// NewReconstructor loads metadata from retriever and prepares a
// Reconstructor ready for progressive Reconstruct calls.
func NewReconstructor[F numeric.Float, U numeric.UWord](retriever store.Retriever, dec decompose.Decomposer[F], il interleave.Interleaver[F], lc lossless.LevelCompressor) (*Reconstructor[F, U], error) {
	blob, err := retriever.LoadMetadata()
	if err != nil {
		return nil, err
	}
	md, err := DecodeMetadata[F](blob)
	if err != nil {
		return nil, err
	}
	numLevels := len(md.Bounds)
	return &Reconstructor[F, U]{
		Decomposer:  dec,
		Interleaver: il,
		Lossless:    lc,
		Retriever:   retriever,
		md:          md,
		alloc:       sizeinterp.Allocation{NumBitplanes: make([]int, numLevels), RetrieveSizes: make([]uint64, numLevels)},
		levelBytes:  make([][]byte, numLevels),
	}, nil
}

func (rc *Reconstructor[F, U]) losslessCodec() lossless.LevelCompressor {
	if rc.Lossless == nil {
		return lossless.NullLevelCompressor{}
	}
	return rc.Lossless
}

// Reconstruct implements spec §4.9 steps 2-7: run the size
// interpreter against tolerance, retrieve the incremental bytes,
// decode each level that received any bitplanes, and recompose over
// the full level hierarchy; a level with no bitplanes adds no detail.
func (rc *Reconstructor[F, U]) Reconstruct(tolerance float64) ([]F, error) {
	numLevels := len(rc.md.Bounds)
	levels := make([]sizeinterp.LevelStats, numLevels)
	for l := range levels {
		levels[l] = sizeinterp.LevelStats{Sizes: rc.md.Sizes[l], SqErr: rc.md.SqErr[l]}
	}
	newAlloc := sizeinterp.Allocate(levels, tolerance, &rc.alloc)

	incremental := make([]uint64, numLevels)
	for l := range incremental {
		if newAlloc.RetrieveSizes[l] < rc.alloc.RetrieveSizes[l] {
			return nil, fmt.Errorf("mdr: size interpreter violated progressive monotonicity at level %d: %w", l, errs.ErrInvalidArgument)
		}
		incremental[l] = newAlloc.RetrieveSizes[l] - rc.alloc.RetrieveSizes[l]
	}
	got, err := rc.Retriever.RetrieveLevelComponents(incremental)
	if err != nil {
		return nil, err
	}
	for l := range got {
		if uint64(len(got[l])) != incremental[l] {
			return nil, fmt.Errorf("mdr: retriever returned %d bytes for level %d, requested %d: %w", len(got[l]), l, incremental[l], errs.ErrIoError)
		}
		rc.levelBytes[l] = append(rc.levelBytes[l], got[l]...)
	}
	rc.alloc = newAlloc

	effectiveTarget := -1
	for l := 0; l < numLevels; l++ {
		if rc.alloc.NumBitplanes[l] > 0 {
			effectiveTarget = l
		}
	}

	out := make([]F, griddims.NumElements(rc.md.Dims))
	if effectiveTarget < 0 {
		return out, nil
	}

	// Level geometry must match the refactor's, which was built for all
	// numLevels levels; levels with no bitplanes keep a zero shell.
	levelDims := griddims.LevelDims(rc.md.Dims, numLevels-1)
	levelElems := griddims.LevelElements(levelDims)
	zeroDims := make([]uint32, len(rc.md.Dims))

	for l := 0; l <= effectiveTarget; l++ {
		kReq := rc.alloc.NumBitplanes[l]
		if kReq == 0 {
			continue
		}
		K := uint8(len(rc.md.Sizes[l]))
		streams, err := splitStreams(rc.levelBytes[l], rc.md.Sizes[l][:kReq])
		if err != nil {
			return nil, fmt.Errorf("mdr: splitting level %d streams: %w", l, err)
		}
		decompressed, err := rc.losslessCodec().Decompress(streams, int(rc.md.StoppingIndex[l]))
		if err != nil {
			return nil, err
		}
		e := exponentFor(float64(rc.md.Bounds[l]))

		var prev []uint32
		var prevCount uint32
		if l > 0 {
			prev = levelDims[l-1]
			prevCount = levelElems[l-1]
		} else {
			prev = zeroDims
		}
		shellN := int(levelElems[l] - prevCount)
		shell, err := bitplane.Decode[F, U](decompressed, shellN, e, K, uint8(kReq))
		if err != nil {
			return nil, err
		}
		rc.Interleaver.Reposition(shell, rc.md.Dims, levelDims[l], prev, out)
	}

	rc.Decomposer.Recompose(out, rc.md.Dims, numLevels-1)
	return out, nil
}

// splitStreams slices a level's accumulated concatenated bytes back
// into its K per-bitplane streams using the (post-lossless) sizes
// recorded in metadata. Only the first len(sizes) streams are sliced;
// callers pass rc.md.Sizes[l][:kReq] so unretrieved trailing streams
// are simply absent (nil).
func splitStreams(concat []byte, sizes []uint32) ([][]byte, error) {
	out := make([][]byte, len(sizes))
	off := 0
	for i, sz := range sizes {
		if off+int(sz) > len(concat) {
			return nil, fmt.Errorf("stream %d: need %d bytes at offset %d, have %d: %w", i, sz, off, len(concat), errs.ErrMalformedInput)
		}
		out[i] = concat[off : off+int(sz)]
		off += int(sz)
	}
	return out, nil
}
