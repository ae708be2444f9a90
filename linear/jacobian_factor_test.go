package linear

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/sim3graph"
)

// TestNewJacobianFactorLayout tests allocation, zeroing and the reported
// shape of the block system.
func TestNewJacobianFactorLayout(t *testing.T) {
	t.Parallel()

	keys := []sim3graph.Key{sim3graph.Symbol('p', 0), sim3graph.Symbol('x', 0)}
	f, err := NewJacobianFactor(keys, []int{3, 7}, 3)
	require.NoError(t, err)

	assert.Equal(t, 3, f.Rows())
	if diff := cmp.Diff(keys, f.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{3, 7}, f.Dims()); diff != "" {
		t.Errorf("dims mismatch (-want +got):\n%s", diff)
	}

	r, c := f.Matrix().Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 11, c) // 3 + 7 + RHS

	assert.Equal(t, 0.0, mat.Norm(f.Matrix(), 1))
}

// TestJacobianFactorBlockAliasing tests that Block returns live views:
// writes through a block must be visible in the assembled system at the
// block's column offset.
func TestJacobianFactorBlockAliasing(t *testing.T) {
	t.Parallel()

	keys := []sim3graph.Key{sim3graph.Symbol('p', 0), sim3graph.Symbol('x', 0)}
	f, err := NewJacobianFactor(keys, []int{3, 7}, 3)
	require.NoError(t, err)

	f.Block(0).Set(1, 2, 42)
	f.Block(1).Set(2, 6, -7)

	assert.Equal(t, 42.0, f.Matrix().At(1, 2))
	assert.Equal(t, -7.0, f.Matrix().At(2, 3+6))
}

// TestJacobianFactorRHS tests that the RHS view is the final column.
func TestJacobianFactorRHS(t *testing.T) {
	t.Parallel()

	f, err := NewJacobianFactor([]sim3graph.Key{sim3graph.Symbol('x', 0)}, []int{7}, 3)
	require.NoError(t, err)

	rhs := f.RHS()
	require.Equal(t, 3, rhs.Len())
	rhs.SetVec(0, 1.5)
	rhs.SetVec(2, -2.5)

	assert.Equal(t, 1.5, f.Matrix().At(0, 7))
	assert.Equal(t, -2.5, f.Matrix().At(2, 7))
}

// TestJacobianFactorNoKeys tests the degenerate system with only an RHS
// column, produced by constant expressions.
func TestJacobianFactorNoKeys(t *testing.T) {
	t.Parallel()

	f, err := NewJacobianFactor(nil, nil, 3)
	require.NoError(t, err)

	r, c := f.Matrix().Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 1, c)
	assert.Equal(t, 3, f.RHS().Len())
}

// TestJacobianFactorConstructionErrors tests rejection of mismatched or
// non-positive shapes.
func TestJacobianFactorConstructionErrors(t *testing.T) {
	t.Parallel()

	key := sim3graph.Symbol('x', 0)

	_, err := NewJacobianFactor([]sim3graph.Key{key}, []int{3, 7}, 3)
	assert.Error(t, err)

	_, err = NewJacobianFactor([]sim3graph.Key{key}, []int{0}, 3)
	assert.Error(t, err)

	_, err = NewJacobianFactor([]sim3graph.Key{key}, []int{3}, 0)
	assert.Error(t, err)
}

// TestJacobianFactorConstrainedTag tests the constrained weighting tag.
func TestJacobianFactorConstrainedTag(t *testing.T) {
	t.Parallel()

	f, err := NewJacobianFactor([]sim3graph.Key{sim3graph.Symbol('x', 0)}, []int{3}, 3)
	require.NoError(t, err)

	_, ok := f.ConstrainedWeights()
	assert.False(t, ok)

	w := mat.NewVecDense(3, []float64{1, 1, 1})
	f.SetConstrained(w)

	got, ok := f.ConstrainedWeights()
	require.True(t, ok)
	assert.Equal(t, w, got)
}
