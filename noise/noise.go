// Package noise holds the minimal noise-model contract consumed by residual
// factors: a declared dimension, plus the distinction between ordinary
// unweighted models and constrained models whose rows the downstream solver
// must treat as hard equality constraints.
package noise

import "gonum.org/v1/gonum/mat"

// Model is the contract every noise model satisfies: it declares the
// dimension of the residuals it weights.
type Model interface {
	Dim() int
}

// ConstrainedModel is the capability a constrained (hard equality) model
// exposes on top of Model: a unit weighting for its rows. Downstream solvers
// check for this capability with AsConstrained rather than inspecting
// concrete types.
type ConstrainedModel interface {
	Model
	UnitWeights() *mat.VecDense
}

// AsConstrained reports whether m is of the constrained kind and, if so,
// returns that capability.
func AsConstrained(m Model) (ConstrainedModel, bool) {
	c, ok := m.(ConstrainedModel)
	return c, ok
}

// Unit is the unweighted noise model: identity weighting of the given
// dimension.
type Unit struct {
	dim int
}

// NewUnit returns an unweighted model over dim residual rows.
func NewUnit(dim int) *Unit {
	return &Unit{dim: dim}
}

// Dim returns the residual dimension the model weights.
func (u *Unit) Dim() int { return u.dim }

// Constrained marks every residual row as a hard equality constraint.
type Constrained struct {
	dim int
}

// NewConstrained returns an all-rows-constrained model over dim residual
// rows.
func NewConstrained(dim int) *Constrained {
	return &Constrained{dim: dim}
}

// Dim returns the residual dimension the model constrains.
func (c *Constrained) Dim() int { return c.dim }

// UnitWeights returns the unit weighting vector attached to linear factors
// produced under this model.
func (c *Constrained) UnitWeights() *mat.VecDense {
	w := mat.NewVecDense(c.dim, nil)
	for i := 0; i < c.dim; i++ {
		w.SetVec(i, 1)
	}
	return w
}
