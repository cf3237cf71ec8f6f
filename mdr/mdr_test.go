package mdr

import (
	"math"
	"math/rand"
	"testing"

	"github.com/lxAltria/Multiprecision-data-refactoring/internal/decompose"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/interleave"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/lossless"
	"github.com/lxAltria/Multiprecision-data-refactoring/internal/store"
)

func refactorAndOpen(t *testing.T, data []float64, dims []uint32, targetLevel int, K uint8) (*Reconstructor[float64, uint32], string) {
	t.Helper()
	dir := t.TempDir()
	w := store.ConcatFileWriter{Dir: dir}
	params := RefactorParams[float64, uint32]{
		Dims:         dims,
		TargetLevel:  targetLevel,
		NumBitplanes: K,
		Decomposer:   decompose.OrthogonalDecomposer[float64](),
		Interleaver:  interleave.DirectInterleaver[float64](),
		Lossless:     lossless.NullLevelCompressor{},
		Writer:       w,
	}
	if err := Refactor[float64, uint32](data, params); err != nil {
		t.Fatalf("Refactor: %v", err)
	}
	r := &store.ConcatFileRetriever{Dir: dir}
	rc, err := NewReconstructor[float64, uint32](r, decompose.OrthogonalDecomposer[float64](), interleave.DirectInterleaver[float64](), lossless.NullLevelCompressor{})
	if err != nil {
		t.Fatalf("NewReconstructor: %v", err)
	}
	return rc, dir
}

func maxAbsErr(a, b []float64) float64 {
	m := 0.0
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		if d > m {
			m = d
		}
	}
	return m
}

func TestTinyAllZero(t *testing.T) {
	data := make([]float64, 16)
	rc, _ := refactorAndOpen(t, data, []uint32{16}, 1, 4)
	out, err := rc.Reconstruct(0)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("index %d: got %g want 0", i, v)
		}
	}
}

func TestConstantArray(t *testing.T) {
	data := make([]float64, 32)
	for i := range data {
		data[i] = 1.0
	}
	rc, _ := refactorAndOpen(t, data, []uint32{32}, 0, 8)
	out, err := rc.Reconstruct(0)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	for i, v := range out {
		if v != 1.0 {
			t.Fatalf("index %d: got %g want 1.0", i, v)
		}
	}
}

func TestSignedScalar(t *testing.T) {
	data := []float64{1.5, -1.5}
	rc, _ := refactorAndOpen(t, data, []uint32{2}, 0, 4)
	out, err := rc.Reconstruct(0)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if out[0] != 1.5 || out[1] != -1.5 {
		t.Fatalf("got %v want [1.5 -1.5]", out)
	}
}

func TestTruncationToCoarserTolerance(t *testing.T) {
	data := make([]float64, 32)
	for i := range data {
		data[i] = float64(i) / 32
	}
	rc, _ := refactorAndOpen(t, data, []uint32{32}, 1, 12)
	out, err := rc.Reconstruct(0.25)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if e := maxAbsErr(out, data); e > 0.25 {
		t.Fatalf("max abs error %g exceeds tolerance 0.25", e)
	}

	rcFull, _ := refactorAndOpen(t, data, []uint32{32}, 1, 12)
	outFull, err := rcFull.Reconstruct(0)
	if err != nil {
		t.Fatalf("Reconstruct(0): %v", err)
	}
	quantum := math.Ldexp(1, -12+6) // rough upper bound on snap error for this scale
	if e := maxAbsErr(outFull, data); e > quantum {
		t.Fatalf("full-fidelity max abs error %g exceeds expected snap %g", e, quantum)
	}
}

func TestShortTrailingBlock(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	data := make([]float64, 70)
	for i := range data {
		data[i] = r.Float64()*2 - 1
	}
	rc, _ := refactorAndOpen(t, data, []uint32{70}, 0, 16)
	out, err := rc.Reconstruct(0)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if len(out) != 70 {
		t.Fatalf("expected 70 elements, got %d", len(out))
	}
	if e := maxAbsErr(out, data); e > 1e-3 {
		t.Fatalf("max abs error %g too large for K=16", e)
	}
}

func TestProgressiveRetrieval(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	data := make([]float64, 64)
	for i := range data {
		data[i] = r.Float64()*4 - 2
	}
	rc, _ := refactorAndOpen(t, data, []uint32{64}, 2, 20)

	coarse, err := rc.Reconstruct(1e-1)
	if err != nil {
		t.Fatalf("Reconstruct(1e-1): %v", err)
	}
	coarseErr := maxAbsErr(coarse, data)

	fine, err := rc.Reconstruct(1e-3)
	if err != nil {
		t.Fatalf("Reconstruct(1e-3): %v", err)
	}
	fineErr := maxAbsErr(fine, data)

	if fineErr > coarseErr+1e-12 {
		t.Fatalf("finer tolerance increased error: %g -> %g", coarseErr, fineErr)
	}
	for l, n := range rc.alloc.NumBitplanes {
		if n == 0 {
			t.Fatalf("level %d: expected some bitplanes retrieved by the finer pass", l)
		}
	}
}

func TestRefactorRejectsTooDeepLevel(t *testing.T) {
	dir := t.TempDir()
	params := RefactorParams[float64, uint32]{
		Dims:         []uint32{8},
		TargetLevel:  10,
		NumBitplanes: 4,
		Decomposer:   decompose.OrthogonalDecomposer[float64](),
		Interleaver:  interleave.DirectInterleaver[float64](),
		Lossless:     lossless.NullLevelCompressor{},
		Writer:       store.ConcatFileWriter{Dir: dir},
	}
	if err := Refactor[float64, uint32](make([]float64, 8), params); err == nil {
		t.Fatal("expected error for target_level too deep")
	}
}
