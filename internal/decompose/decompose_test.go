package decompose

import (
	"math"
	"math/rand"
	"testing"
)

func roundTrip(t *testing.T, name string, dec Decomposer[float64], dims []uint32, targetLevel int) {
	t.Helper()
	n := 1
	for _, d := range dims {
		n *= int(d)
	}
	r := rand.New(rand.NewSource(42))
	orig := make([]float64, n)
	for i := range orig {
		orig[i] = r.Float64()*2 - 1
	}
	buf := append([]float64(nil), orig...)
	dec.Decompose(buf, dims, targetLevel)
	dec.Recompose(buf, dims, targetLevel)
	for i := range orig {
		if math.Abs(buf[i]-orig[i]) > 1e-9 {
			t.Fatalf("%s %v L=%d: index %d: got %g, want %g", name, dims, targetLevel, i, buf[i], orig[i])
		}
	}
}

func TestOrthogonalRoundTrip1D(t *testing.T) {
	roundTrip(t, "orthogonal", OrthogonalDecomposer[float64](), []uint32{33}, 2)
}

func TestHierarchicalRoundTrip1D(t *testing.T) {
	roundTrip(t, "hierarchical", HierarchicalDecomposer[float64](), []uint32{33}, 2)
}

func TestOrthogonalRoundTrip2D(t *testing.T) {
	roundTrip(t, "orthogonal", OrthogonalDecomposer[float64](), []uint32{17, 25}, 2)
}

func TestHierarchicalRoundTrip2D(t *testing.T) {
	roundTrip(t, "hierarchical", HierarchicalDecomposer[float64](), []uint32{17, 25}, 2)
}

func TestOrthogonalRoundTrip3D(t *testing.T) {
	roundTrip(t, "orthogonal", OrthogonalDecomposer[float64](), []uint32{9, 13, 11}, 1)
}

func TestRoundTripLevelZero(t *testing.T) {
	roundTrip(t, "orthogonal", OrthogonalDecomposer[float64](), []uint32{16}, 0)
}
