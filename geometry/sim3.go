package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Sim3 is a similarity transform in 3D space: rotation R, translation t and
// strictly positive scale s, acting on points as p -> s*R*p + t. It forms a
// 7-dimensional Lie group; the tangent ordering is (w, u, lambda) with w the
// rotation generator, u the translation generator and lambda the log-scale.
//
// Elements are immutable: every operation returns a new value. The zero
// value is NOT a valid element (its scale is zero); construct with
// IdentitySim3, NewSim3 or Sim3Expmap.
//
// Sim3 values are comparable with ==, which demands bitwise-exact
// components and suits only deterministic, noise-free tests; use Equals for
// tolerance-based comparison.
type Sim3 struct {
	r Rot3
	t Point3
	s float64
}

// Sim3Dim is the manifold dimension of Sim(3).
const Sim3Dim = 7

// sim3SmallScale bounds the log-scale magnitude below which the
// scale-mixing coefficients of the V matrix switch to their Taylor series.
const sim3SmallScale = 1e-4

// IdentitySim3 returns the identity transform (R=I, t=0, s=1).
func IdentitySim3() Sim3 {
	return Sim3{r: IdentityRot3(), s: 1}
}

// NewSim3 builds a similarity transform from rotation, translation and
// scale. Scale must be strictly positive; violating that is a contract
// violation and panics.
func NewSim3(r Rot3, t Point3, s float64) Sim3 {
	if s <= 0 {
		panic("sim3: scale must be strictly positive")
	}
	return Sim3{r: r, t: t, s: s}
}

// NewSim3Scale returns a pure scaling transform (R=I, t=0).
func NewSim3Scale(s float64) Sim3 {
	return NewSim3(IdentityRot3(), Point3{}, s)
}

// Rotation returns the rotation component.
func (g Sim3) Rotation() Rot3 { return g.r }

// Translation returns the translation component.
func (g Sim3) Translation() Point3 { return g.t }

// Scale returns the scale component.
func (g Sim3) Scale() float64 { return g.s }

// Dim returns the manifold dimension, 7.
func (g Sim3) Dim() int { return Sim3Dim }

// Equals reports approximate equality: rotation and translation agree
// componentwise within tol and |s1 - s2| < tol.
func (g Sim3) Equals(h Sim3, tol float64) bool {
	return g.r.Equals(h.r, tol) && g.t.Equals(h.t, tol) && math.Abs(g.s-h.s) < tol
}

// Compose returns the group product g * h, the transform equivalent to
// applying h first and then g. The 1/h.s factor on g's translation keeps the
// stored representation consistent with composition of the point actions.
func (g Sim3) Compose(h Sim3) Sim3 {
	return Sim3{
		r: g.r.Compose(h.r),
		t: g.t.Scale(1 / h.s).Add(g.r.Rotate(h.t)),
		s: g.s * h.s,
	}
}

// Inverse returns the group inverse, satisfying
// g.Compose(g.Inverse()) ~ identity.
func (g Sim3) Inverse() Sim3 {
	rt := g.r.Inverse()
	return Sim3{
		r: rt,
		t: rt.Rotate(g.t.Scale(-g.s)),
		s: 1 / g.s,
	}
}

// TransformFrom applies the similarity to a point: s*R*p + t.
func (g Sim3) TransformFrom(p Point3) Point3 {
	return g.r.Rotate(p).Scale(g.s).Add(g.t)
}

// TransformFromJacobians applies the similarity to a point and additionally
// returns the 3x7 Jacobian with respect to the group parameters (column
// blocks: rotation, translation, scale) and the 3x3 Jacobian with respect to
// the point.
func (g Sim3) TransformFromJacobians(p Point3) (Point3, *mat.Dense, *mat.Dense) {
	r := g.r.m
	sr := r.scale(g.s)
	dr := sr.mul(skew(p.Scale(-1)))
	rp := g.r.Rotate(p)

	h1 := mat.NewDense(3, 7, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			h1.Set(i, j, dr[3*i+j])
			h1.Set(i, 3+j, r[3*i+j])
		}
	}
	h1.Set(0, 6, rp.X)
	h1.Set(1, 6, rp.Y)
	h1.Set(2, 6, rp.Z)

	h2 := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			h2.Set(i, j, sr[3*i+j])
		}
	}
	return rp.Scale(g.s).Add(g.t), h1, h2
}

// AdjointMap returns the 7x7 linear map transporting tangent vectors under
// conjugation by g. At the identity element it is the identity matrix.
func (g Sim3) AdjointMap() *mat.Dense {
	r := g.r.m
	sr := r.scale(g.s)
	stx := skew(g.t).mul(r).scale(g.s)
	st := g.t.Scale(-g.s)

	adj := mat.NewDense(7, 7, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			adj.Set(i, j, sr[3*i+j])
			adj.Set(i, 3+j, stx[3*i+j])
			adj.Set(3+i, 3+j, r[3*i+j])
		}
	}
	adj.Set(0, 6, st.X)
	adj.Set(1, 6, st.Y)
	adj.Set(2, 6, st.Z)
	adj.Set(6, 6, 1)
	return adj
}

// sim3V builds the 3x3 matrix V = A*I + B*skew(w) + C*skew(w)^2 coupling the
// translation generator to rotation and scale in the exponential map, after
// the closed-form Sim(3) derivation of Eade. The raw coefficients divide by
// theta^2 and powers of lambda; each one is replaced by its Taylor series
// near the corresponding pole so V is continuous through theta = 0 and
// lambda = 0, where it reduces to the SE(3) form and ultimately to the
// identity.
func sim3V(w Point3, lambda float64) mat3 {
	theta2 := w.Dot(w)

	// Rotation-side Rodrigues expansion coefficients Y, Z, W.
	var yc, zc, wc float64
	if theta2 < rot3SmallAngle2 {
		yc = 0.5 - theta2/24
		zc = 1.0/6 - theta2/120
		wc = 1.0/24 - theta2/720
	} else {
		theta := math.Sqrt(theta2)
		xc := math.Sin(theta) / theta
		yc = (1 - math.Cos(theta)) / theta2
		zc = (1 - xc) / theta2
		wc = (0.5 - yc) / theta2
	}

	// Scale-side coefficients A, beta, mu.
	l2 := lambda * lambda
	var a, beta, mu float64
	if math.Abs(lambda) < sim3SmallScale {
		a = 1 - lambda/2 + l2/6 - l2*lambda/24
		beta = 0.5 - lambda/6 + l2/24 - l2*lambda/120
		mu = 1.0/6 - lambda/24 + l2/120 - l2*lambda/720
	} else {
		em := math.Exp(-lambda)
		a = (1 - em) / lambda
		beta = (em - 1 + lambda) / l2
		mu = (1 - lambda + 0.5*l2 - em) / (l2 * lambda)
	}

	gamma := yc - lambda*zc
	upsilon := zc - lambda*wc

	// alpha blends the pure-scale and pure-rotation coefficient pairs. The
	// 0/0 at theta = lambda = 0 is harmless: there beta ~ gamma and
	// mu ~ upsilon, so any alpha yields the same limit.
	denom := l2 + theta2
	alpha := 1.0
	if denom > 0 {
		alpha = l2 / denom
	}
	b := alpha*(beta-gamma) + gamma
	c := alpha*(mu-upsilon) + upsilon

	wx := skew(w)
	return identity3.scale(a).add(wx.scale(b)).add(wx.mul(wx).scale(c))
}

// Sim3Expmap is the exponential map of Sim(3): it converts a 7-vector
// tangent (w, u, lambda) into a group element with rotation Exp(w),
// translation V*u and scale exp(lambda).
func Sim3Expmap(v *mat.VecDense) Sim3 {
	if v.Len() != Sim3Dim {
		panic("sim3: tangent vector must have length 7")
	}
	w := Point3{v.AtVec(0), v.AtVec(1), v.AtVec(2)}
	u := Point3{v.AtVec(3), v.AtVec(4), v.AtVec(5)}
	lambda := v.AtVec(6)
	vm := sim3V(w, lambda)
	return Sim3{
		r: Rot3Expmap(w),
		t: vm.mulVec(u),
		s: math.Exp(lambda),
	}
}

// Logmap is the inverse of Sim3Expmap: it recovers the tangent vector
// (w, u, lambda) with w the rotation log, lambda the scale log and
// u = V^-1 * t for the same V used in the exponential.
func (g Sim3) Logmap() *mat.VecDense {
	w := g.r.Logmap()
	lambda := math.Log(g.s)
	vm := sim3V(w, lambda)
	vinv, ok := vm.inverse()
	if !ok {
		panic("sim3: V matrix is singular in Logmap")
	}
	u := vinv.mulVec(g.t)
	return mat.NewVecDense(7, []float64{w.X, w.Y, w.Z, u.X, u.Y, u.Z, lambda})
}

// Retract moves g along tangent vector v: g * Exp(v). At the identity this
// is exactly the exponential map; no per-component approximation is used.
func (g Sim3) Retract(v *mat.VecDense) Sim3 {
	return g.Compose(Sim3Expmap(v))
}

// LocalCoordinates returns the tangent vector taking g to h,
// Log(g^-1 * h). At the identity this is exactly the logarithm map.
func (g Sim3) LocalCoordinates(h Sim3) *mat.VecDense {
	return g.Inverse().Compose(h).Logmap()
}

// Matrix returns the homogeneous 4x4 embedding [s*R t; 0 1].
func (g Sim3) Matrix() *mat.Dense {
	sr := g.r.m.scale(g.s)
	return mat.NewDense(4, 4, []float64{
		sr[0], sr[1], sr[2], g.t.X,
		sr[3], sr[4], sr[5], g.t.Y,
		sr[6], sr[7], sr[8], g.t.Z,
		0, 0, 0, 1,
	})
}

// Pose3 drops the scale, returning the rigid transform with the same
// rotation and translation s*t. The conversion is lossy and one-way; it
// exists for consumers that cannot represent scale.
func (g Sim3) Pose3() Pose3 {
	return NewPose3(g.r, g.t.Scale(g.s))
}
