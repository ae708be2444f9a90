package geometry

import "gonum.org/v1/gonum/mat"

// Pose3 is a scale-free rigid transform: rotation plus translation. It acts
// on points as R*p + t. Here it serves mainly as the target of the lossy
// Sim3 conversion for consumers that cannot represent scale.
type Pose3 struct {
	r Rot3
	t Point3
}

// IdentityPose3 returns the identity transform.
func IdentityPose3() Pose3 {
	return Pose3{r: IdentityRot3()}
}

// NewPose3 builds a rigid transform from rotation and translation.
func NewPose3(r Rot3, t Point3) Pose3 {
	return Pose3{r: r, t: t}
}

// Rotation returns the rotation component.
func (p Pose3) Rotation() Rot3 { return p.r }

// Translation returns the translation component.
func (p Pose3) Translation() Point3 { return p.t }

// TransformFrom applies the transform to a point: R*q + t.
func (p Pose3) TransformFrom(q Point3) Point3 {
	return p.r.Rotate(q).Add(p.t)
}

// Equals reports componentwise approximate equality within tol.
func (p Pose3) Equals(q Pose3, tol float64) bool {
	return p.r.Equals(q.r, tol) && p.t.Equals(q.t, tol)
}

// Matrix returns the homogeneous 4x4 form [R t; 0 1].
func (p Pose3) Matrix() *mat.Dense {
	m := p.r.m
	return mat.NewDense(4, 4, []float64{
		m[0], m[1], m[2], p.t.X,
		m[3], m[4], m[5], p.t.Y,
		m[6], m[7], m[8], p.t.Z,
		0, 0, 0, 1,
	})
}
