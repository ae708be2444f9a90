package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPoint3Arithmetic tests the elementary vector operations.
func TestPoint3Arithmetic(t *testing.T) {
	t.Parallel()

	p := Point3{1, 2, 3}
	q := Point3{-1, 0.5, 2}

	assert.Equal(t, Point3{0, 2.5, 5}, p.Add(q))
	assert.Equal(t, Point3{2, 1.5, 1}, p.Sub(q))
	assert.Equal(t, Point3{2, 4, 6}, p.Scale(2))
	assert.InDelta(t, 5.0, Point3{3, 4, 0}.Norm(), 1e-15)
	assert.InDelta(t, 6.0, p.Dot(q), 1e-15)
}

// TestPoint3Equals tests the tolerance predicate on both sides of the
// threshold.
func TestPoint3Equals(t *testing.T) {
	t.Parallel()

	p := Point3{1, 2, 3}
	assert.True(t, p.Equals(Point3{1 + 1e-10, 2, 3}, 1e-9))
	assert.False(t, p.Equals(Point3{1 + 1e-8, 2, 3}, 1e-9))
}

// TestPoint3LocalCoordinates tests that local coordinates are plain
// subtraction and invert Retract.
func TestPoint3LocalCoordinates(t *testing.T) {
	t.Parallel()

	p := Point3{1, 2, 3}
	q := Point3{2, 1, 5}

	v := p.LocalCoordinates(q)
	require.Equal(t, 3, v.Len())
	assert.InDelta(t, 1, v.AtVec(0), 1e-15)
	assert.InDelta(t, -1, v.AtVec(1), 1e-15)
	assert.InDelta(t, 2, v.AtVec(2), 1e-15)

	assert.True(t, p.Retract(v).Equals(q, 1e-15))
}
