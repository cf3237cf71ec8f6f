// Command reconstruct reads the multilevel progressive refactor left
// behind by cmd/refactor in ./refactored_data/ and reconstructs the
// array to a requested absolute error tolerance, in the shape spec §6
// describes:
//
//	reconstruct <tolerance>
//
// As with cmd/refactor, the element type (float32) and bitplane word
// type (uint32) are fixed at build time, and the collaborators
// (HierarchicalDecomposer, SFCInterleaver, zstd) mirror the same
// choices original_source/test/test_refactor.cpp makes, so the same
// built binary pair can round-trip a file it refactored itself.
// The reconstructed array is written as raw little-endian float32
// bytes to refactored_data/reconstructed.bin.
package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klauspost/compress/zstd"

	"github.com/lxAltria/Multiprecision-data-refactoring/internal/decompose"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/interleave"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/lossless"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/store"
	"github.com/lxAltria/Multiprecision-data-refactoring/mdr"
)

const dataDir = "refactored_data"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "reconstruct:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: reconstruct <tolerance>")
	}
	tolerance, err := strconv.ParseFloat(args[0], 64)
	if err != nil || tolerance < 0 {
		return fmt.Errorf("invalid tolerance: %q", args[0])
	}

	retriever := &store.ConcatFileRetriever{Dir: dataDir}
	rc, err := mdr.NewReconstructor[float32, uint32](
		retriever,
		decompose.HierarchicalDecomposer[float32](),
		interleave.SFCInterleaver[float32](),
		lossless.NewZstdLevelCompressor(zstd.SpeedDefault),
	)
	if err != nil {
		return fmt.Errorf("loading metadata: %w", err)
	}

	out, err := rc.Reconstruct(tolerance)
	if err != nil {
		return err
	}

	outPath := filepath.Join(dataDir, "reconstructed.bin")
	if err := writeFloat32File(outPath, out); err != nil {
		return fmt.Errorf("writing reconstructed array: %w", err)
	}
	fmt.Printf("reconstructed %d elements at tolerance %g into %s\n", len(out), tolerance, outPath)
	return nil
}

func writeFloat32File(path string, data []float32) error {
	raw := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	return os.WriteFile(path, raw, 0o644)
}
