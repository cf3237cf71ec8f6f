// Command refactor reads a raw float32 array from disk and writes a
// multilevel progressive refactor of it to ./refactored_data/, in the
// shape spec §6 describes:
//
//	refactor <input_file> <target_level> <num_bitplanes> <num_dims> <d0> [d1] [d2]
//
// The element type (float32) and bitplane word type (uint32) are
// fixed at build time, mirroring original_source/test/test_refactor.cpp
// (T = float, T_stream = uint32) — neither the CLI shape nor the
// container metadata of spec §3/§6 carries a type tag, so like the
// reference test harness this binary is built for one (F, U) pair.
// The collaborator choices (HierarchicalDecomposer, SFCInterleaver,
// zstd compression, ConcatFileWriter) mirror that same test harness's
// active (non-commented-out) selections.
package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/klauspost/compress/zstd"

	"github.com/lxAltria/Multiprecision-data-refactoring/internal/decompose"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/interleave"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/lossless"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/store"
	"github.com/lxAltria/Multiprecision-data-refactoring/mdr"
)

const outputDir = "refactored_data"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "refactor:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: refactor <input_file> <target_level> <num_bitplanes> <num_dims> <d0> [d1] [d2]")
	}
	inputFile := args[0]
	targetLevel, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid target_level: %w", err)
	}
	numBitplanes, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid num_bitplanes: %w", err)
	}
	numDims, err := strconv.Atoi(args[3])
	if err != nil {
		return fmt.Errorf("invalid num_dims: %w", err)
	}
	if numDims < 1 || numDims > 3 || len(args) != 4+numDims {
		return fmt.Errorf("expected %d dimension arguments after num_dims, got %d", numDims, len(args)-4)
	}
	dims := make([]uint32, numDims)
	for i := 0; i < numDims; i++ {
		d, err := strconv.Atoi(args[4+i])
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid dimension %d: %q", i, args[4+i])
		}
		dims[i] = uint32(d)
	}

	data, err := readFloat32File(inputFile)
	if err != nil {
		return fmt.Errorf("reading input file: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	params := mdr.RefactorParams[float32, uint32]{
		Dims:         dims,
		TargetLevel:  targetLevel,
		NumBitplanes: uint8(numBitplanes),
		Decomposer:   decompose.HierarchicalDecomposer[float32](),
		Interleaver:  interleave.SFCInterleaver[float32](),
		Lossless:     lossless.NewZstdLevelCompressor(zstd.SpeedDefault),
		Writer:       store.ConcatFileWriter{Dir: outputDir},
	}
	if err := mdr.Refactor[float32, uint32](data, params); err != nil {
		return err
	}
	fmt.Printf("refactored %d elements into %s\n", len(data), outputDir)
	return nil
}

func readFloat32File(path string) ([]float32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("input file size %d is not a multiple of 4 bytes", len(raw))
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		out[i] = math.Float32frombits(bits)
	}
	return out, nil
}
