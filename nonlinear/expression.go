package nonlinear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/sim3graph"
)

// Manifold is the capability a value type needs to serve as a measurement
// or prediction: an intrinsic dimension, an approximate-equality predicate
// and a local-coordinates map into its tangent space. The geometry types
// (Point3, Rot3, Sim3) all satisfy it.
type Manifold[T any] interface {
	Dim() int
	Equals(other T, tol float64) bool
	LocalCoordinates(other T) *mat.VecDense
}

// JacobianMap carries the per-unknown output blocks of a differentiating
// evaluation. Each block is written by exactly one writer (the expression)
// and must not alias another unknown's block.
type JacobianMap map[sim3graph.Key]*mat.Dense

// Expression is the evaluation contract of an externally built computation
// graph over manifold-valued unknowns. The graph's own differentiation
// machinery is behind ValueAndJacobians; this package never differentiates
// anything itself.
type Expression[T any] interface {
	// Keys returns the involved unknowns in ascending order.
	Keys() []sim3graph.Key
	// Dims returns the local dimension of each unknown, aligned with Keys.
	Dims() []int
	// Value evaluates the expression at the given estimates.
	Value(values *sim3graph.Values) (T, error)
	// ValueAndJacobians evaluates the expression and fills each unknown's
	// pre-zeroed block in blocks with the Jacobian of the result with
	// respect to that unknown.
	ValueAndJacobians(values *sim3graph.Values, blocks JacobianMap) (T, error)
}

// Constant is the expression that ignores the estimates and always
// evaluates to a fixed value. It involves no unknowns.
type Constant[T any] struct {
	value T
}

// NewConstant wraps a fixed value as an expression.
func NewConstant[T any](value T) Constant[T] {
	return Constant[T]{value: value}
}

// Keys returns no keys.
func (c Constant[T]) Keys() []sim3graph.Key { return nil }

// Dims returns no dimensions.
func (c Constant[T]) Dims() []int { return nil }

// Value returns the fixed value.
func (c Constant[T]) Value(*sim3graph.Values) (T, error) { return c.value, nil }

// ValueAndJacobians returns the fixed value; there are no blocks to fill.
func (c Constant[T]) ValueAndJacobians(*sim3graph.Values, JacobianMap) (T, error) {
	return c.value, nil
}

// Leaf is the expression that reads a single unknown directly. Its Jacobian
// is the identity on the unknown's tangent space.
type Leaf[T any] struct {
	key sim3graph.Key
	dim int
}

// NewLeaf builds a leaf expression for the unknown under key with the given
// local dimension.
func NewLeaf[T any](key sim3graph.Key, dim int) Leaf[T] {
	return Leaf[T]{key: key, dim: dim}
}

// Keys returns the single involved key.
func (l Leaf[T]) Keys() []sim3graph.Key { return []sim3graph.Key{l.key} }

// Dims returns the unknown's local dimension.
func (l Leaf[T]) Dims() []int { return []int{l.dim} }

// Value reads the unknown from the estimates.
func (l Leaf[T]) Value(values *sim3graph.Values) (T, error) {
	return sim3graph.At[T](values, l.key)
}

// ValueAndJacobians reads the unknown and writes the identity into its
// block.
func (l Leaf[T]) ValueAndJacobians(values *sim3graph.Values, blocks JacobianMap) (T, error) {
	v, err := sim3graph.At[T](values, l.key)
	if err != nil {
		return v, err
	}
	if h, ok := blocks[l.key]; ok {
		for i := 0; i < l.dim; i++ {
			h.Set(i, i, 1)
		}
	}
	return v, nil
}
