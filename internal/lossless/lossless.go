// Package lossless implements the compress_level/decompress_level
// contract of spec §4.4: an optional, per-bitplane-stream lossless
// pass applied after bitplane encoding and before a level's streams
// are handed to the writer. Grounded on the original C++ reference's
// `ZSTD()` wrapper call in ComposedRefactor.hpp; klauspost/compress's
// zstd package is the concrete codec, chosen because it is the
// general-purpose compressor the wider example corpus already
// standardizes on.
package lossless

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/lxAltria/Multiprecision-data-refactoring/errs"
)

// LevelCompressor compresses/decompresses the independent byte
// streams of one level. Compress may leave a stream uncompressed (and
// report so via stoppingIndex) once compression stops paying for
// itself, mirroring the original's behavior of keeping raw bytes past
// a certain bitplane.
type LevelCompressor interface {
	// Compress returns one output slice per input stream and the
	// stopping index: streams[stoppingIndex:] are passed through
	// unmodified (compression no longer helped), while
	// streams[:stoppingIndex] are compressed. A stoppingIndex of
	// len(streams) means every stream was compressed.
	Compress(streams [][]byte) (out [][]byte, stoppingIndex int, err error)
	// Decompress reverses Compress given the same stoppingIndex.
	Decompress(streams [][]byte, stoppingIndex int) (out [][]byte, err error)
	Name() string
}

// ZstdLevelCompressor compresses each stream independently with zstd,
// stopping (and leaving the remainder raw) at the first stream whose
// compressed form is not smaller than its input — later, lower-order
// bitplanes are close to incompressible noise, so this avoids paying
// the framing overhead for no gain.
type ZstdLevelCompressor struct {
	level zstd.EncoderLevel
}

// NewZstdLevelCompressor builds a compressor at the given zstd level
// (e.g. zstd.SpeedDefault).
func NewZstdLevelCompressor(level zstd.EncoderLevel) *ZstdLevelCompressor {
	return &ZstdLevelCompressor{level: level}
}

func (z *ZstdLevelCompressor) Name() string { return "zstd" }

func (z *ZstdLevelCompressor) Compress(streams [][]byte) ([][]byte, int, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(z.level))
	if err != nil {
		return nil, 0, fmt.Errorf("lossless: zstd.NewWriter: %w", err)
	}
	defer enc.Close()

	out := make([][]byte, len(streams))
	stop := len(streams)
	for i, s := range streams {
		if stop != len(streams) {
			// already stopped: copy the rest through unmodified
			out[i] = append([]byte(nil), s...)
			continue
		}
		c := enc.EncodeAll(s, nil)
		if len(c) >= len(s) {
			stop = i
			out[i] = append([]byte(nil), s...)
			continue
		}
		out[i] = c
	}
	return out, stop, nil
}

func (z *ZstdLevelCompressor) Decompress(streams [][]byte, stoppingIndex int) ([][]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("lossless: zstd.NewReader: %w", err)
	}
	defer dec.Close()

	out := make([][]byte, len(streams))
	for i, s := range streams {
		if i >= stoppingIndex {
			out[i] = s
			continue
		}
		d, err := dec.DecodeAll(s, nil)
		if err != nil {
			return nil, fmt.Errorf("lossless: decoding stream %d: %w", i, wrapCodecErr(err))
		}
		out[i] = d
	}
	return out, nil
}

func wrapCodecErr(err error) error {
	return fmt.Errorf("%v: %w", err, errs.ErrCodecFailure)
}

// NullLevelCompressor is the identity compressor: it never compresses
// anything, reporting stoppingIndex 0 always. Used in tests and as
// the teacher corpus's `NullLevelCompressor` alternative for
// baselining compression gains.
type NullLevelCompressor struct{}

func (NullLevelCompressor) Name() string { return "null" }

func (NullLevelCompressor) Compress(streams [][]byte) ([][]byte, int, error) {
	out := make([][]byte, len(streams))
	for i, s := range streams {
		out[i] = append([]byte(nil), s...)
	}
	return out, 0, nil
}

func (NullLevelCompressor) Decompress(streams [][]byte, stoppingIndex int) ([][]byte, error) {
	out := make([][]byte, len(streams))
	for i, s := range streams {
		out[i] = append([]byte(nil), s...)
	}
	return out, nil
}

var _ LevelCompressor = (*ZstdLevelCompressor)(nil)
var _ LevelCompressor = NullLevelCompressor{}
