package geometry

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Point3Pair is one correspondence for Align: A is the observed point in the
// target frame, B the matching point in the source frame.
type Point3Pair struct {
	A, B Point3
}

// ErrDegenerateAlignment is returned when the correspondences do not pin
// down a unique similarity (too few pairs, collinear or coincident points).
var ErrDegenerateAlignment = errors.New("geometry: degenerate point configuration for alignment")

// alignRankTolerance is the singular-value threshold below which the
// correspondence covariance is treated as rank deficient.
const alignRankTolerance = 1e-12

// Align estimates the similarity g minimizing the squared correspondence
// error sum |a_i - g.TransformFrom(b_i)|^2 over the given pairs, using the
// closed-form centroid/SVD solution. At least three non-collinear pairs are
// required.
func Align(pairs []Point3Pair) (Sim3, error) {
	n := len(pairs)
	if n < 3 {
		return Sim3{}, fmt.Errorf("geometry: alignment needs at least 3 point pairs, got %d: %w", n, ErrDegenerateAlignment)
	}

	var ca, cb Point3
	for _, pr := range pairs {
		ca = ca.Add(pr.A)
		cb = cb.Add(pr.B)
	}
	inv := 1 / float64(n)
	ca = ca.Scale(inv)
	cb = cb.Scale(inv)

	// Cross-covariance of the demeaned correspondences, plus the spread of
	// the source points for the scale ratio.
	m := mat.NewDense(3, 3, nil)
	var bNorm2 float64
	for _, pr := range pairs {
		da := pr.A.Sub(ca)
		db := pr.B.Sub(cb)
		av := []float64{da.X, da.Y, da.Z}
		bv := []float64{db.X, db.Y, db.Z}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				m.Set(i, j, m.At(i, j)+av[i]*bv[j])
			}
		}
		bNorm2 += db.Dot(db)
	}
	if bNorm2 < alignRankTolerance {
		return Sim3{}, fmt.Errorf("geometry: source points are coincident: %w", ErrDegenerateAlignment)
	}

	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDFull) {
		return Sim3{}, fmt.Errorf("geometry: SVD of correspondence covariance failed: %w", ErrDegenerateAlignment)
	}
	sv := svd.Values(nil)
	if sv[1] < alignRankTolerance {
		return Sim3{}, fmt.Errorf("geometry: correspondences are collinear: %w", ErrDegenerateAlignment)
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// Proper rotation: flip the least significant axis if U*V^T reflects.
	var uvt mat.Dense
	uvt.Mul(&u, v.T())
	d := []float64{1, 1, 1}
	if mat.Det(&uvt) < 0 {
		d[2] = -1
	}
	var rm mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += u.At(i, k) * d[k] * v.At(j, k)
			}
			rm[3*i+j] = sum
		}
	}
	r := Rot3{m: rm}

	// Scale from the ratio of projected spreads, then translation closing
	// the centroid gap under the recovered rotation and scale.
	var dot float64
	for _, pr := range pairs {
		da := pr.A.Sub(ca)
		db := pr.B.Sub(cb)
		dot += da.Dot(r.Rotate(db))
	}
	s := dot / bNorm2
	if s <= 0 {
		return Sim3{}, fmt.Errorf("geometry: non-positive recovered scale %g: %w", s, ErrDegenerateAlignment)
	}
	t := ca.Sub(r.Rotate(cb).Scale(s))
	return NewSim3(r, t, s), nil
}
