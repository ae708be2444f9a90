package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Point3 is a point (or free vector) in 3D space. As a manifold it is flat:
// its tangent space is itself and local coordinates are plain subtraction.
type Point3 struct {
	X, Y, Z float64
}

// Point3Dim is the intrinsic (and local) dimension of Point3.
const Point3Dim = 3

// Dim returns the manifold dimension, 3.
func (p Point3) Dim() int { return Point3Dim }

// Vector returns the point as a fresh 3-vector.
func (p Point3) Vector() *mat.VecDense {
	return mat.NewVecDense(3, []float64{p.X, p.Y, p.Z})
}

// Add returns p + q.
func (p Point3) Add(q Point3) Point3 {
	return Point3{p.X + q.X, p.Y + q.Y, p.Z + q.Z}
}

// Sub returns p - q.
func (p Point3) Sub(q Point3) Point3 {
	return Point3{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// Scale returns s * p.
func (p Point3) Scale(s float64) Point3 {
	return Point3{s * p.X, s * p.Y, s * p.Z}
}

// Norm returns the Euclidean length of p.
func (p Point3) Norm() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// Dot returns the inner product of p and q.
func (p Point3) Dot(q Point3) float64 {
	return p.X*q.X + p.Y*q.Y + p.Z*q.Z
}

// Equals reports whether every component of p and q differs by less than tol.
func (p Point3) Equals(q Point3, tol float64) bool {
	return math.Abs(p.X-q.X) < tol &&
		math.Abs(p.Y-q.Y) < tol &&
		math.Abs(p.Z-q.Z) < tol
}

// LocalCoordinates returns the tangent-space difference q - p in p's chart.
func (p Point3) LocalCoordinates(q Point3) *mat.VecDense {
	return mat.NewVecDense(3, []float64{q.X - p.X, q.Y - p.Y, q.Z - p.Z})
}

// Retract moves p by tangent vector v.
func (p Point3) Retract(v *mat.VecDense) Point3 {
	return Point3{p.X + v.AtVec(0), p.Y + v.AtVec(1), p.Z + v.AtVec(2)}
}
