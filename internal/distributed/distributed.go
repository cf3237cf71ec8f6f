// Package distributed expresses the collective-messaging runtime of
// spec §5 as a small interface, plus a single-rank stub
// implementation. The refactor suspends on exactly two collective
// operations (a global max of per-level B_ℓ, and a global sum of
// per-bitplane squared errors); everything else is pure CPU and heap
// work pushed out to the writer/retriever boundary. A real multi-rank
// binding (MPI, gRPC, or similar) is an external collaborator per
// spec §1 — this package only fixes the shape other code is written
// against.
package distributed

// Collective is the reduction surface the refactor orchestrator calls
// at its two suspension points (spec §5).
type Collective interface {
	AllReduceMaxF32(local float32) float32
	AllReduceMaxF64(local float64) float64
	AllReduceSumF64s(local []float64) []float64
	Rank() int
	Size() int
}

// LocalCollective is the single-rank identity implementation: every
// reduction is a no-op returning its own input, used when the refactor
// runs on one process (the common case this module targets directly;
// spec's Non-goals exclude a concrete multi-rank transport).
type LocalCollective struct{}

func (LocalCollective) AllReduceMaxF32(local float32) float32 { return local }
func (LocalCollective) AllReduceMaxF64(local float64) float64 { return local }

func (LocalCollective) AllReduceSumF64s(local []float64) []float64 {
	out := make([]float64, len(local))
	copy(out, local)
	return out
}

func (LocalCollective) Rank() int { return 0 }
func (LocalCollective) Size() int { return 1 }

var _ Collective = LocalCollective{}
