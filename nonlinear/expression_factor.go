package nonlinear

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/sim3graph"
	"github.com/banshee-data/sim3graph/linear"
	"github.com/banshee-data/sim3graph/noise"
)

// ErrNoNoiseModel is returned when a factor is constructed without a noise
// model.
var ErrNoNoiseModel = errors.New("nonlinear: expression factor requires a noise model")

// ErrDimensionMismatch is returned when the noise model's declared
// dimension does not match the measurement's manifold dimension.
var ErrDimensionMismatch = errors.New("nonlinear: noise model dimension does not match measurement dimension")

// ExpressionFactor is a residual factor over an expression graph: it binds
// a fixed measurement of manifold type T, a noise model of matching
// dimension and an expression evaluating to T. The residual is the
// tangent-space difference between measurement and prediction, expressed in
// the measurement's own chart.
//
// The factor is immutable after construction; UnwhitenedError and Linearize
// are pure functions of the Values snapshot.
type ExpressionFactor[T Manifold[T]] struct {
	model       noise.Model
	measurement T
	expression  Expression[T]

	keys []sim3graph.Key
	dims []int
}

// NewExpressionFactor validates the construction contract and binds the
// triple. It fails fast when the noise model is missing or its dimension
// differs from the measurement's.
func NewExpressionFactor[T Manifold[T]](model noise.Model, measurement T, expression Expression[T]) (*ExpressionFactor[T], error) {
	if model == nil {
		return nil, ErrNoNoiseModel
	}
	if model.Dim() != measurement.Dim() {
		return nil, fmt.Errorf("%w: model dim %d, measurement dim %d",
			ErrDimensionMismatch, model.Dim(), measurement.Dim())
	}
	return &ExpressionFactor[T]{
		model:       model,
		measurement: measurement,
		expression:  expression,
		keys:        expression.Keys(),
		dims:        expression.Dims(),
	}, nil
}

// Keys returns the involved unknowns in block order.
func (f *ExpressionFactor[T]) Keys() []sim3graph.Key {
	return append([]sim3graph.Key(nil), f.keys...)
}

// Dim returns the residual dimension.
func (f *ExpressionFactor[T]) Dim() int {
	return f.measurement.Dim()
}

// UnwhitenedError evaluates the expression at the given estimates and
// returns the residual measurement.LocalCoordinates(prediction), without
// applying any noise weighting.
func (f *ExpressionFactor[T]) UnwhitenedError(values *sim3graph.Values) (*mat.VecDense, error) {
	value, err := f.expression.Value(values)
	if err != nil {
		return nil, fmt.Errorf("nonlinear: expression evaluation failed: %w", err)
	}
	return f.measurement.LocalCoordinates(value), nil
}

// UnwhitenedErrorJacobians is the differentiating variant of
// UnwhitenedError. The caller supplies one output block per involved
// unknown, in key order, each sized Dim() x (that unknown's local
// dimension). The blocks are zeroed here and then filled by the expression
// graph's own differentiation. Supplying the wrong number of blocks or a
// wrongly sized block is a contract violation and panics.
func (f *ExpressionFactor[T]) UnwhitenedErrorJacobians(values *sim3graph.Values, jacobians []*mat.Dense) (*mat.VecDense, error) {
	if len(jacobians) != len(f.keys) {
		panic(fmt.Sprintf("nonlinear: got %d jacobian blocks for %d unknowns", len(jacobians), len(f.keys)))
	}
	rows := f.measurement.Dim()
	blocks := make(JacobianMap, len(f.keys))
	for i, h := range jacobians {
		r, c := h.Dims()
		if r != rows || c != f.dims[i] {
			panic(fmt.Sprintf("nonlinear: jacobian block %d for key %s is %dx%d, want %dx%d",
				i, f.keys[i], r, c, rows, f.dims[i]))
		}
		h.Zero()
		blocks[f.keys[i]] = h
	}
	value, err := f.expression.ValueAndJacobians(values, blocks)
	if err != nil {
		return nil, fmt.Errorf("nonlinear: expression evaluation failed: %w", err)
	}
	return f.measurement.LocalCoordinates(value), nil
}

// Linearize evaluates the factor at the given estimates and assembles the
// block linear system [A_1 | ... | A_k | b]: Jacobian blocks in key order
// and the negated residual as right-hand side. Factors bound to a
// constrained noise model tag the result with that model's unit weighting.
func (f *ExpressionFactor[T]) Linearize(values *sim3graph.Values) (*linear.JacobianFactor, error) {
	rows := f.measurement.Dim()
	jf, err := linear.NewJacobianFactor(f.keys, f.dims, rows)
	if err != nil {
		return nil, err
	}

	blocks := make(JacobianMap, len(f.keys))
	for i := range f.keys {
		blocks[f.keys[i]] = jf.Block(i)
	}
	value, err := f.expression.ValueAndJacobians(values, blocks)
	if err != nil {
		return nil, fmt.Errorf("nonlinear: expression evaluation failed: %w", err)
	}

	residual := f.measurement.LocalCoordinates(value)
	rhs := jf.RHS()
	for i := 0; i < rows; i++ {
		rhs.SetVec(i, -residual.AtVec(i))
	}

	if constrained, ok := noise.AsConstrained(f.model); ok {
		jf.SetConstrained(constrained.UnitWeights())
	}
	return jf, nil
}
