package geometry

// mat3 is a row-major 3x3 matrix used for the fixed-size inner kernels of
// the group operations, where allocating gonum matrices per multiply would
// dominate the cost. Layout matches the row-major [16]float64 convention
// used for 4x4 transforms elsewhere in the codebase.
type mat3 [9]float64

var identity3 = mat3{
	1, 0, 0,
	0, 1, 0,
	0, 0, 1,
}

// skew returns the cross-product matrix of v, so that skew(v)*w = v x w.
func skew(v Point3) mat3 {
	return mat3{
		0, -v.Z, v.Y,
		v.Z, 0, -v.X,
		-v.Y, v.X, 0,
	}
}

func (a mat3) mul(b mat3) mat3 {
	var c mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c[3*i+j] = a[3*i]*b[j] + a[3*i+1]*b[3+j] + a[3*i+2]*b[6+j]
		}
	}
	return c
}

func (a mat3) mulVec(v Point3) Point3 {
	return Point3{
		a[0]*v.X + a[1]*v.Y + a[2]*v.Z,
		a[3]*v.X + a[4]*v.Y + a[5]*v.Z,
		a[6]*v.X + a[7]*v.Y + a[8]*v.Z,
	}
}

func (a mat3) transpose() mat3 {
	return mat3{
		a[0], a[3], a[6],
		a[1], a[4], a[7],
		a[2], a[5], a[8],
	}
}

func (a mat3) add(b mat3) mat3 {
	var c mat3
	for i := range c {
		c[i] = a[i] + b[i]
	}
	return c
}

func (a mat3) scale(s float64) mat3 {
	var c mat3
	for i := range c {
		c[i] = s * a[i]
	}
	return c
}

func (a mat3) det() float64 {
	return a[0]*(a[4]*a[8]-a[5]*a[7]) -
		a[1]*(a[3]*a[8]-a[5]*a[6]) +
		a[2]*(a[3]*a[7]-a[4]*a[6])
}

// inverse returns the matrix inverse via the adjugate. ok is false when the
// determinant is too small for a stable solve.
func (a mat3) inverse() (mat3, bool) {
	d := a.det()
	if d == 0 {
		return mat3{}, false
	}
	inv := mat3{
		a[4]*a[8] - a[5]*a[7], a[2]*a[7] - a[1]*a[8], a[1]*a[5] - a[2]*a[4],
		a[5]*a[6] - a[3]*a[8], a[0]*a[8] - a[2]*a[6], a[2]*a[3] - a[0]*a[5],
		a[3]*a[7] - a[4]*a[6], a[1]*a[6] - a[0]*a[7], a[0]*a[4] - a[1]*a[3],
	}
	return inv.scale(1 / d), true
}

func (a mat3) trace() float64 {
	return a[0] + a[4] + a[8]
}
