package bitplane

import (
	"math"
	"math/rand"
	"testing"
)

func quantum(exp int, K uint8) float64 {
	return math.Ldexp(1, exp-int(K))
}

func roundTrip(t *testing.T, vals []float64, exp int, K uint8) []float64 {
	t.Helper()
	res, err := Encode[float64, uint8](vals, exp, K)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(res.Streams) != int(K) {
		t.Fatalf("expected %d streams, got %d", K, len(res.Streams))
	}
	got, err := Decode[float64, uint8](res.Streams, len(vals), exp, K, K)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	q := quantum(exp, K)
	for i := range vals {
		if math.Abs(got[i]-vals[i]) > q {
			t.Fatalf("index %d: got %g want %g (quantum %g)", i, got[i], vals[i], q)
		}
	}
	return got
}

func TestTinyAllZero(t *testing.T) {
	vals := make([]float64, 3)
	res, err := Encode[float64, uint8](vals, 2, 4)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for k, s := range res.SqErrPlane {
		if s != 0 {
			t.Fatalf("plane %d: expected zero error for all-zero input, got %g", k, s)
		}
	}
	got, err := Decode[float64, uint8](res.Streams, 3, 2, 4, 4)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, v := range got {
		if v != 0 {
			t.Fatalf("index %d: expected 0, got %g", i, v)
		}
	}
}

func TestConstantArraySpansTwoBlocks(t *testing.T) {
	vals := make([]float64, 10) // W=8 for uint8, so this spans a full block + a short block
	for i := range vals {
		vals[i] = 1.0
	}
	roundTrip(t, vals, 4, 8)
}

func TestSignedScalar(t *testing.T) {
	vals := []float64{-3.5, 2.25, 0, -0.125, 7.75, -7.75}
	roundTrip(t, vals, 4, 12)
}

func TestShortTrailingBlock(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	vals := make([]float64, 19) // 19 = 2*8 + 3, trailing block has 3 elements
	for i := range vals {
		vals[i] = (r.Float64()*2 - 1) * 8
	}
	roundTrip(t, vals, 5, 10)
}

func TestRandomRoundTripFloat32(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	vals := make([]float64, 37)
	for i := range vals {
		vals[i] = (r.Float64()*2 - 1) * 4
	}
	f32 := make([]float32, len(vals))
	for i, v := range vals {
		f32[i] = float32(v)
	}
	res, err := Encode[float32, uint32](f32, 3, 16)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode[float32, uint32](res.Streams, len(f32), 3, 16, 16)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	q := float32(quantum(3, 16))
	for i := range f32 {
		if d := got[i] - f32[i]; d > q || d < -q {
			t.Fatalf("index %d: got %g want %g", i, got[i], f32[i])
		}
	}
}

func TestPartialRetrievalMonotonicallyImproves(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	vals := make([]float64, 50)
	for i := range vals {
		vals[i] = (r.Float64()*2 - 1) * 10
	}
	const exp = 5
	const K = 14
	res, err := Encode[float64, uint8](vals, exp, K)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	prevErr := math.Inf(1)
	for kReq := uint8(1); kReq <= K; kReq++ {
		got, err := Decode[float64, uint8](res.Streams, len(vals), exp, K, kReq)
		if err != nil {
			t.Fatalf("Decode(k=%d): %v", kReq, err)
		}
		var sumSq float64
		for i := range vals {
			d := got[i] - vals[i]
			sumSq += d * d
		}
		if sumSq > prevErr+1e-9 {
			t.Fatalf("error increased going from k=%d to k=%d: %g -> %g", kReq-1, kReq, prevErr, sumSq)
		}
		prevErr = sumSq
	}
}

func TestInvalidNumBitplanes(t *testing.T) {
	if _, err := Encode[float64, uint8]([]float64{1, 2}, 2, 0); err == nil {
		t.Fatal("expected error for K=0")
	}
	if _, err := Decode[float64, uint8](nil, 2, 2, 0, 0); err == nil {
		t.Fatal("expected error for K=0")
	}
	if _, err := Decode[float64, uint8]([][]byte{{0, 0, 0, 0}}, 2, 2, 4, 5); err == nil {
		t.Fatal("expected error for kRequested > K")
	}
}
