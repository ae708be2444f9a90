package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Rot3 is a rotation in 3D space, stored as a row-major orthonormal matrix
// with determinant +1. The zero value is NOT a valid rotation; construct
// with IdentityRot3, NewRot3 or Rot3Expmap.
type Rot3 struct {
	m mat3
}

// Rot3Dim is the manifold dimension of SO(3).
const Rot3Dim = 3

// rot3OrthonormalTolerance bounds how far a user-supplied matrix may drift
// from orthonormality before NewRot3 rejects it.
const rot3OrthonormalTolerance = 1e-6

// Small-angle thresholds for the Rodrigues coefficients. Below
// rot3SmallAngle2 the closed forms sin(t)/t and (1-cos(t))/t^2 lose digits
// or divide by zero, so Expmap and Logmap switch to series.
const rot3SmallAngle2 = 1e-9

// IdentityRot3 returns the identity rotation.
func IdentityRot3() Rot3 {
	return Rot3{m: identity3}
}

// NewRot3 builds a rotation from a row-major 3x3 matrix. It returns an error
// if the matrix is not orthonormal with determinant +1 within tolerance.
func NewRot3(m [9]float64) (Rot3, error) {
	r := Rot3{m: mat3(m)}
	rtr := r.m.transpose().mul(r.m)
	for i := range rtr {
		want := identity3[i]
		if math.Abs(rtr[i]-want) > rot3OrthonormalTolerance {
			return Rot3{}, fmt.Errorf("rot3: matrix is not orthonormal (R^T R deviates by %g at element %d)", rtr[i]-want, i)
		}
	}
	if d := r.m.det(); math.Abs(d-1) > rot3OrthonormalTolerance {
		return Rot3{}, fmt.Errorf("rot3: matrix determinant %g is not +1", d)
	}
	return r, nil
}

// RzRyRx builds a rotation from Euler angles applied in x, then y, then z
// order (roll, pitch, yaw).
func RzRyRx(roll, pitch, yaw float64) Rot3 {
	cx, sx := math.Cos(roll), math.Sin(roll)
	cy, sy := math.Cos(pitch), math.Sin(pitch)
	cz, sz := math.Cos(yaw), math.Sin(yaw)
	rx := mat3{1, 0, 0, 0, cx, -sx, 0, sx, cx}
	ry := mat3{cy, 0, sy, 0, 1, 0, -sy, 0, cy}
	rz := mat3{cz, -sz, 0, sz, cz, 0, 0, 0, 1}
	return Rot3{m: rz.mul(ry).mul(rx)}
}

// Compose returns the product rotation r * q (q applied first).
func (r Rot3) Compose(q Rot3) Rot3 {
	return Rot3{m: r.m.mul(q.m)}
}

// Inverse returns the inverse rotation, the transpose.
func (r Rot3) Inverse() Rot3 {
	return Rot3{m: r.m.transpose()}
}

// Rotate applies the rotation to a point: R * p.
func (r Rot3) Rotate(p Point3) Point3 {
	return r.m.mulVec(p)
}

// Unrotate applies the inverse rotation: R^T * p.
func (r Rot3) Unrotate(p Point3) Point3 {
	return r.m.transpose().mulVec(p)
}

// Matrix returns the rotation as a fresh 3x3 gonum matrix.
func (r Rot3) Matrix() *mat.Dense {
	d := make([]float64, 9)
	copy(d, r.m[:])
	return mat.NewDense(3, 3, d)
}

// Dim returns the manifold dimension, 3.
func (r Rot3) Dim() int { return Rot3Dim }

// Equals reports whether the two rotation matrices agree elementwise within
// tol.
func (r Rot3) Equals(q Rot3, tol float64) bool {
	for i := range r.m {
		if math.Abs(r.m[i]-q.m[i]) >= tol {
			return false
		}
	}
	return true
}

// Rot3Expmap is the exponential map of SO(3): it converts a rotation vector
// w (axis times angle) into a rotation matrix via the Rodrigues formula
//
//	R = I + X*skew(w) + Y*skew(w)^2, X = sin(t)/t, Y = (1-cos(t))/t^2.
//
// For t^2 below rot3SmallAngle2 the coefficients use their Taylor series, so
// the map is continuous through w = 0 (where it returns the identity).
func Rot3Expmap(w Point3) Rot3 {
	theta2 := w.Dot(w)
	var x, y float64
	if theta2 < rot3SmallAngle2 {
		x = 1 - theta2/6
		y = 0.5 - theta2/24
	} else {
		theta := math.Sqrt(theta2)
		x = math.Sin(theta) / theta
		y = (1 - math.Cos(theta)) / theta2
	}
	wx := skew(w)
	return Rot3{m: identity3.add(wx.scale(x)).add(wx.mul(wx).scale(y))}
}

// Logmap is the inverse of Rot3Expmap: it returns the rotation vector of r.
// Three regimes are handled: the generic trace formula, a series branch for
// angles near zero, and an axis-from-diagonal branch for angles near pi
// where the generic formula degenerates.
func (r Rot3) Logmap() Point3 {
	m := r.m
	tr := m.trace()

	// Angle near pi: R + I has rank one and the off-diagonal difference
	// vanishes, so extract the axis from the dominant diagonal element.
	if tr+1 < 1e-10 {
		switch {
		case math.Abs(m[8]+1) > 1e-5:
			f := math.Pi / math.Sqrt(2+2*m[8])
			return Point3{f * m[2], f * m[5], f * (1 + m[8])}
		case math.Abs(m[4]+1) > 1e-5:
			f := math.Pi / math.Sqrt(2+2*m[4])
			return Point3{f * m[1], f * (1 + m[4]), f * m[7]}
		default:
			f := math.Pi / math.Sqrt(2+2*m[0])
			return Point3{f * (1 + m[0]), f * m[3], f * m[6]}
		}
	}

	var magnitude float64
	tr3 := tr - 3
	if tr3 < -1e-7 {
		theta := math.Acos((tr - 1) / 2)
		magnitude = theta / (2 * math.Sin(theta))
	} else {
		// theta near zero: theta/(2 sin theta) ~ 1/2 - (tr-3)/12.
		magnitude = 0.5 - tr3/12
	}
	return Point3{
		magnitude * (m[7] - m[5]),
		magnitude * (m[2] - m[6]),
		magnitude * (m[3] - m[1]),
	}
}

// LocalCoordinates returns the tangent vector taking r to q, Log(r^T q).
func (r Rot3) LocalCoordinates(q Rot3) *mat.VecDense {
	w := r.Inverse().Compose(q).Logmap()
	return w.Vector()
}

// Retract moves r along tangent vector v: r * Exp(v).
func (r Rot3) Retract(v *mat.VecDense) Rot3 {
	return r.Compose(Rot3Expmap(Point3{v.AtVec(0), v.AtVec(1), v.AtVec(2)}))
}
