package nonlinear

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/sim3graph"
	"github.com/banshee-data/sim3graph/geometry"
	"github.com/banshee-data/sim3graph/noise"
)

// transformExpr predicts the action of a Sim3 unknown on a Point3 unknown.
// It stands in for an externally built computation graph: the Jacobian
// blocks come from the analytic derivatives of the point action.
type transformExpr struct {
	pointKey sim3graph.Key // < simKey, so blocks order point first
	simKey   sim3graph.Key
}

func (e transformExpr) Keys() []sim3graph.Key {
	return []sim3graph.Key{e.pointKey, e.simKey}
}

func (e transformExpr) Dims() []int {
	return []int{geometry.Point3Dim, geometry.Sim3Dim}
}

func (e transformExpr) Value(values *sim3graph.Values) (geometry.Point3, error) {
	g, err := sim3graph.At[geometry.Sim3](values, e.simKey)
	if err != nil {
		return geometry.Point3{}, err
	}
	p, err := sim3graph.At[geometry.Point3](values, e.pointKey)
	if err != nil {
		return geometry.Point3{}, err
	}
	return g.TransformFrom(p), nil
}

func (e transformExpr) ValueAndJacobians(values *sim3graph.Values, blocks JacobianMap) (geometry.Point3, error) {
	g, err := sim3graph.At[geometry.Sim3](values, e.simKey)
	if err != nil {
		return geometry.Point3{}, err
	}
	p, err := sim3graph.At[geometry.Point3](values, e.pointKey)
	if err != nil {
		return geometry.Point3{}, err
	}
	value, h1, h2 := g.TransformFromJacobians(p)
	if h, ok := blocks[e.simKey]; ok {
		h.Copy(h1)
	}
	if h, ok := blocks[e.pointKey]; ok {
		h.Copy(h2)
	}
	return value, nil
}

// TestNewExpressionFactorContract tests the fail-fast construction checks.
func TestNewExpressionFactorContract(t *testing.T) {
	t.Parallel()

	t.Run("missing noise model", func(t *testing.T) {
		t.Parallel()
		leaf := NewLeaf[geometry.Point3](sim3graph.Symbol('p', 0), geometry.Point3Dim)
		_, err := NewExpressionFactor[geometry.Point3](nil, geometry.Point3{}, leaf)
		assert.ErrorIs(t, err, ErrNoNoiseModel)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		t.Parallel()
		// A 3-dimensional model against a 7-dimensional Sim3 measurement.
		leaf := NewLeaf[geometry.Sim3](sim3graph.Symbol('x', 0), geometry.Sim3Dim)
		_, err := NewExpressionFactor[geometry.Sim3](noise.NewUnit(3), geometry.IdentitySim3(), leaf)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("matching dimensions", func(t *testing.T) {
		t.Parallel()
		leaf := NewLeaf[geometry.Sim3](sim3graph.Symbol('x', 0), geometry.Sim3Dim)
		f, err := NewExpressionFactor[geometry.Sim3](noise.NewUnit(7), geometry.IdentitySim3(), leaf)
		require.NoError(t, err)
		assert.Equal(t, 7, f.Dim())
		assert.Equal(t, []sim3graph.Key{sim3graph.Symbol('x', 0)}, f.Keys())
	})
}

// TestUnwhitenedErrorAtMeasurement tests that a prediction equal to the
// measurement yields the zero residual.
func TestUnwhitenedErrorAtMeasurement(t *testing.T) {
	t.Parallel()

	key := sim3graph.Symbol('p', 0)
	measurement := geometry.Point3{X: 1, Y: 2, Z: 3}
	f, err := NewExpressionFactor[geometry.Point3](noise.NewUnit(3), measurement,
		NewLeaf[geometry.Point3](key, geometry.Point3Dim))
	require.NoError(t, err)

	values := sim3graph.NewValues()
	values.Insert(key, measurement)

	r, err := f.UnwhitenedError(values)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.Equal(t, 0.0, r.AtVec(i))
	}
}

// TestUnwhitenedErrorResidual tests the residual sign convention: the
// tangent difference is taken in the measurement's chart.
func TestUnwhitenedErrorResidual(t *testing.T) {
	t.Parallel()

	key := sim3graph.Symbol('p', 0)
	f, err := NewExpressionFactor[geometry.Point3](noise.NewUnit(3), geometry.Point3{X: 1, Y: 2, Z: 3},
		NewLeaf[geometry.Point3](key, geometry.Point3Dim))
	require.NoError(t, err)

	values := sim3graph.NewValues()
	values.Insert(key, geometry.Point3{X: 2, Y: 2, Z: 2})

	r, err := f.UnwhitenedError(values)
	require.NoError(t, err)
	assert.InDelta(t, 1, r.AtVec(0), 1e-15)
	assert.InDelta(t, 0, r.AtVec(1), 1e-15)
	assert.InDelta(t, -1, r.AtVec(2), 1e-15)
}

// TestUnwhitenedErrorMissingValue tests that evaluation over a Values
// snapshot missing an unknown fails with an error.
func TestUnwhitenedErrorMissingValue(t *testing.T) {
	t.Parallel()

	f, err := NewExpressionFactor[geometry.Point3](noise.NewUnit(3), geometry.Point3{},
		NewLeaf[geometry.Point3](sim3graph.Symbol('p', 0), geometry.Point3Dim))
	require.NoError(t, err)

	_, err = f.UnwhitenedError(sim3graph.NewValues())
	assert.Error(t, err)
}

// TestUnwhitenedErrorJacobiansLeaf tests that caller buffers are zeroed and
// then filled by the expression: a leaf's Jacobian is the identity.
func TestUnwhitenedErrorJacobiansLeaf(t *testing.T) {
	t.Parallel()

	key := sim3graph.Symbol('p', 0)
	f, err := NewExpressionFactor[geometry.Point3](noise.NewUnit(3), geometry.Point3{X: 1, Y: 2, Z: 3},
		NewLeaf[geometry.Point3](key, geometry.Point3Dim))
	require.NoError(t, err)

	values := sim3graph.NewValues()
	values.Insert(key, geometry.Point3{X: 0, Y: 0, Z: 1})

	// Pre-fill with garbage: the factor must zero before evaluation.
	h := mat.NewDense(3, 3, []float64{9, 9, 9, 9, 9, 9, 9, 9, 9})
	r, err := f.UnwhitenedErrorJacobians(values, []*mat.Dense{h})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			assert.Equal(t, want, h.At(i, j), "H(%d,%d)", i, j)
		}
	}
	assert.InDelta(t, -1, r.AtVec(0), 1e-15)
	assert.InDelta(t, -2, r.AtVec(1), 1e-15)
	assert.InDelta(t, -2, r.AtVec(2), 1e-15)
}

// TestUnwhitenedErrorJacobiansContract tests that mismatched buffers are a
// fatal contract violation.
func TestUnwhitenedErrorJacobiansContract(t *testing.T) {
	t.Parallel()

	key := sim3graph.Symbol('p', 0)
	f, err := NewExpressionFactor[geometry.Point3](noise.NewUnit(3), geometry.Point3{},
		NewLeaf[geometry.Point3](key, geometry.Point3Dim))
	require.NoError(t, err)

	values := sim3graph.NewValues()
	values.Insert(key, geometry.Point3{})

	t.Run("wrong block count", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			_, _ = f.UnwhitenedErrorJacobians(values, nil)
		})
	})

	t.Run("wrong block shape", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			_, _ = f.UnwhitenedErrorJacobians(values, []*mat.Dense{mat.NewDense(3, 7, nil)})
		})
	})
}

// TestLinearize tests full assembly over two heterogeneous unknowns: block
// ordering by key, analytic Jacobian contents, and the negated residual in
// the RHS column.
func TestLinearize(t *testing.T) {
	t.Parallel()

	pointKey := sim3graph.Symbol('p', 0)
	simKey := sim3graph.Symbol('x', 0)
	expr := transformExpr{pointKey: pointKey, simKey: simKey}

	g := geometry.NewSim3(geometry.RzRyRx(0.2, -0.4, 0.9), geometry.Point3{X: 1, Y: 0, Z: -2}, 1.6)
	p := geometry.Point3{X: 0.5, Y: -1, Z: 2}
	measurement := geometry.Point3{X: 1, Y: 1, Z: 1}

	f, err := NewExpressionFactor[geometry.Point3](noise.NewUnit(3), measurement, expr)
	require.NoError(t, err)

	values := sim3graph.NewValues()
	values.Insert(simKey, g)
	values.Insert(pointKey, p)

	jf, err := f.Linearize(values)
	require.NoError(t, err)

	require.Equal(t, []sim3graph.Key{pointKey, simKey}, jf.Keys())
	require.Equal(t, []int{3, 7}, jf.Dims())
	require.Equal(t, 3, jf.Rows())

	_, wantH1, wantH2 := g.TransformFromJacobians(p)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, wantH2.At(i, j), jf.Block(0).At(i, j), 1e-12, "point block (%d,%d)", i, j)
		}
		for j := 0; j < 7; j++ {
			assert.InDelta(t, wantH1.At(i, j), jf.Block(1).At(i, j), 1e-12, "sim3 block (%d,%d)", i, j)
		}
	}

	r, err := f.UnwhitenedError(values)
	require.NoError(t, err)
	rhs := jf.RHS()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, -r.AtVec(i), rhs.AtVec(i), 1e-15, "rhs component %d", i)
	}

	_, constrained := jf.ConstrainedWeights()
	assert.False(t, constrained)
}

// TestLinearizeConstrained tests that a constrained noise model tags the
// linear factor with its unit weighting.
func TestLinearizeConstrained(t *testing.T) {
	t.Parallel()

	key := sim3graph.Symbol('p', 0)
	f, err := NewExpressionFactor[geometry.Point3](noise.NewConstrained(3), geometry.Point3{X: 1, Y: 1, Z: 1},
		NewLeaf[geometry.Point3](key, geometry.Point3Dim))
	require.NoError(t, err)

	values := sim3graph.NewValues()
	values.Insert(key, geometry.Point3{X: 1, Y: 2, Z: 3})

	jf, err := f.Linearize(values)
	require.NoError(t, err)

	w, ok := jf.ConstrainedWeights()
	require.True(t, ok)
	require.Equal(t, 3, w.Len())
	for i := 0; i < 3; i++ {
		assert.Equal(t, 1.0, w.AtVec(i))
	}
}

// TestConstantExpressionFactor tests a factor over a constant expression:
// no keys, no blocks, just a residual.
func TestConstantExpressionFactor(t *testing.T) {
	t.Parallel()

	f, err := NewExpressionFactor[geometry.Point3](noise.NewUnit(3), geometry.Point3{X: 1, Y: 0, Z: 0},
		NewConstant(geometry.Point3{X: 2, Y: 0, Z: 0}))
	require.NoError(t, err)

	values := sim3graph.NewValues()
	r, err := f.UnwhitenedError(values)
	require.NoError(t, err)
	assert.InDelta(t, 1, r.AtVec(0), 1e-15)

	jf, err := f.Linearize(values)
	require.NoError(t, err)
	assert.Empty(t, jf.Keys())
	assert.InDelta(t, -1, jf.RHS().AtVec(0), 1e-15)
}
