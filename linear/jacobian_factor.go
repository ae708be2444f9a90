// Package linear defines the block linear system a nonlinear factor
// produces on linearization and an external sparse eliminator consumes: an
// ordered sequence of per-key Jacobian blocks sharing one dense row block,
// plus a right-hand-side column, optionally tagged as constrained.
package linear

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/sim3graph"
)

// JacobianFactor is one linearized factor: rows residual rows over the
// involved unknowns, laid out as [A_1 | A_2 | ... | A_k | b] in key order.
// Blocks returned by Block are views into the shared storage, so writes to
// a block are visible in the assembled system.
type JacobianFactor struct {
	keys []sim3graph.Key
	dims []int
	offs []int // column offset of each key's block
	rows int
	cols int // total Jacobian columns, excluding the RHS

	ab *mat.Dense // rows x (sum(dims)+1)

	constrained *mat.VecDense // nil unless tagged by a constrained model
}

// NewJacobianFactor allocates a zeroed block system for the given keys,
// their local dimensions (aligned with keys) and the residual row count.
func NewJacobianFactor(keys []sim3graph.Key, dims []int, rows int) (*JacobianFactor, error) {
	if len(keys) != len(dims) {
		return nil, fmt.Errorf("linear: %d keys but %d dims", len(keys), len(dims))
	}
	if rows <= 0 {
		return nil, fmt.Errorf("linear: non-positive row count %d", rows)
	}
	offs := make([]int, len(dims))
	total := 0
	for i, d := range dims {
		if d <= 0 {
			return nil, fmt.Errorf("linear: non-positive dimension %d for key %s", d, keys[i])
		}
		offs[i] = total
		total += d
	}
	return &JacobianFactor{
		keys: append([]sim3graph.Key(nil), keys...),
		dims: append([]int(nil), dims...),
		offs: offs,
		rows: rows,
		cols: total,
		ab:   mat.NewDense(rows, total+1, nil),
	}, nil
}

// Keys returns the involved keys in block order.
func (f *JacobianFactor) Keys() []sim3graph.Key {
	return append([]sim3graph.Key(nil), f.keys...)
}

// Dims returns the per-key local dimensions in block order.
func (f *JacobianFactor) Dims() []int {
	return append([]int(nil), f.dims...)
}

// Rows returns the residual row count.
func (f *JacobianFactor) Rows() int { return f.rows }

// Block returns a mutable view of the i-th key's Jacobian block. The view
// aliases the factor's storage.
func (f *JacobianFactor) Block(i int) *mat.Dense {
	off := f.offs[i]
	return f.ab.Slice(0, f.rows, off, off+f.dims[i]).(*mat.Dense)
}

// RHS returns a mutable view of the right-hand-side column.
func (f *JacobianFactor) RHS() *mat.VecDense {
	return f.ab.ColView(f.cols).(*mat.VecDense)
}

// Matrix returns the full augmented system [A | b] as a shared view.
func (f *JacobianFactor) Matrix() *mat.Dense {
	return f.ab
}

// SetConstrained tags the factor with a constrained model's unit weighting,
// telling the eliminator to treat these rows as hard equality constraints.
func (f *JacobianFactor) SetConstrained(weights *mat.VecDense) {
	f.constrained = weights
}

// ConstrainedWeights returns the constrained weighting and true if the
// factor was produced under a constrained noise model.
func (f *JacobianFactor) ConstrainedWeights() (*mat.VecDense, bool) {
	if f.constrained == nil {
		return nil, false
	}
	return f.constrained, true
}
