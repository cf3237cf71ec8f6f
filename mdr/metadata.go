// Package mdr is the public API of this module: the Refactor and
// Reconstruct orchestrators of spec §4.8/§4.9, composing the
// decompose/interleave/bitplane/lossless/sizeinterp/store/distributed
// packages by construction, plus the on-disk metadata blob format of
// spec §3/§6. Grounded on original_source's
// include/Refactor/ComposedRefactor.hpp and
// .../Reconstructor/ComposedReconstructor.hpp, restructured as Go
// structs that hold owned collaborator instances rather than runtime
// polymorphic hierarchies (spec §9 "policy polymorphism: swap at
// construction, not call time").
package mdr

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/lxAltria/Multiprecision-data-refactoring/errs"
	"github.com/lxAltria/Multiprecision-data-refactoring/numeric"
)

// Metadata is the decoded form of the container metadata blob of
// spec §3 ("Container metadata") / §6 ("On-disk metadata blob"). The
// element type F is not itself recorded in the blob — like the CLI
// shape of spec §6, which carries no element-type flag, the caller is
// assumed to know F out of band (the same assumption the reference
// CLI makes by being built for one F).
type Metadata[F numeric.Float] struct {
	Dims          []uint32
	Bounds        []F         // B_ℓ, length = num_levels
	SqErr         [][]float64 // per level, length K each
	Sizes         [][]uint32  // per level, length K each (post lossless pass)
	StoppingIndex []uint8     // per level
	MergedCount   [][]uint32  // per level
}

func (m Metadata[F]) numLevels() int { return len(m.Bounds) }

// Encode serializes the metadata blob exactly per spec §3/§6: all
// multi-byte values little-endian, dims as u32, bounds as sizeof(F),
// then per-level framed (planes, sq-err), (planes, sizes), stopping
// index, and (count, merged-count) sections.
func (m Metadata[F]) Encode() []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(uint8(len(m.Dims)))
	for _, d := range m.Dims {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], d)
		buf.Write(b[:])
	}
	buf.WriteByte(uint8(m.numLevels()))
	for _, bd := range m.Bounds {
		writeFloat(buf, bd)
	}
	for _, se := range m.SqErr {
		writeU32(buf, uint32(len(se)))
		for _, v := range se {
			writeF64(buf, v)
		}
	}
	for _, sz := range m.Sizes {
		writeU32(buf, uint32(len(sz)))
		for _, v := range sz {
			writeU32(buf, v)
		}
	}
	for _, s := range m.StoppingIndex {
		buf.WriteByte(s)
	}
	for _, mc := range m.MergedCount {
		writeU32(buf, uint32(len(mc)))
		for _, v := range mc {
			writeU32(buf, v)
		}
	}
	return buf.Bytes()
}

// DecodeMetadata parses a blob produced by Metadata.Encode.
func DecodeMetadata[F numeric.Float](blob []byte) (Metadata[F], error) {
	r := bytes.NewReader(blob)
	var m Metadata[F]

	numDims, err := r.ReadByte()
	if err != nil {
		return m, malformed("reading num_dims", err)
	}
	m.Dims = make([]uint32, numDims)
	for i := range m.Dims {
		v, err := readU32(r)
		if err != nil {
			return m, malformed("reading dims", err)
		}
		m.Dims[i] = v
	}

	numLevels, err := r.ReadByte()
	if err != nil {
		return m, malformed("reading num_levels", err)
	}
	m.Bounds = make([]F, numLevels)
	for i := range m.Bounds {
		v, err := readFloat[F](r)
		if err != nil {
			return m, malformed("reading bounds", err)
		}
		m.Bounds[i] = v
	}

	m.SqErr = make([][]float64, numLevels)
	for l := range m.SqErr {
		planes, err := readU32(r)
		if err != nil {
			return m, malformed("reading sq_err planes", err)
		}
		m.SqErr[l] = make([]float64, planes)
		for b := range m.SqErr[l] {
			v, err := readF64(r)
			if err != nil {
				return m, malformed("reading sq_err", err)
			}
			m.SqErr[l][b] = v
		}
	}

	m.Sizes = make([][]uint32, numLevels)
	for l := range m.Sizes {
		planes, err := readU32(r)
		if err != nil {
			return m, malformed("reading size planes", err)
		}
		m.Sizes[l] = make([]uint32, planes)
		for b := range m.Sizes[l] {
			v, err := readU32(r)
			if err != nil {
				return m, malformed("reading stream size", err)
			}
			m.Sizes[l][b] = v
		}
	}

	m.StoppingIndex = make([]uint8, numLevels)
	for l := range m.StoppingIndex {
		v, err := r.ReadByte()
		if err != nil {
			return m, malformed("reading stopping index", err)
		}
		m.StoppingIndex[l] = v
	}

	m.MergedCount = make([][]uint32, numLevels)
	for l := range m.MergedCount {
		count, err := readU32(r)
		if err != nil {
			return m, malformed("reading merged count length", err)
		}
		m.MergedCount[l] = make([]uint32, count)
		for i := range m.MergedCount[l] {
			v, err := readU32(r)
			if err != nil {
				return m, malformed("reading merged count", err)
			}
			m.MergedCount[l][i] = v
		}
	}

	return m, nil
}

func malformed(context string, err error) error {
	return fmt.Errorf("mdr: metadata %s: %v: %w", context, err, errs.ErrMalformedInput)
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeF64(buf *bytes.Buffer, v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	buf.Write(b[:])
}

func readU32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readF64(r *bytes.Reader) (float64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b[:])), nil
}

// writeFloat/readFloat serialize the element type's own width
// (4 bytes for float32, 8 for float64), per spec §3's
// "num_levels × sizeof(F)" bounds section.
func writeFloat[F numeric.Float](buf *bytes.Buffer, f F) {
	switch v := any(f).(type) {
	case float32:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
		buf.Write(b[:])
	case float64:
		writeF64(buf, v)
	}
}

func readFloat[F numeric.Float](r *bytes.Reader) (F, error) {
	var zero F
	switch any(zero).(type) {
	case float32:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return zero, err
		}
		return F(math.Float32frombits(binary.LittleEndian.Uint32(b[:]))), nil
	case float64:
		v, err := readF64(r)
		if err != nil {
			return zero, err
		}
		return F(v), nil
	}
	return zero, nil
}
