// Package geometry owns the manifold value types of the estimation core:
// 3D points, rotations (SO(3)), rigid transforms (SE(3)) and similarity
// transforms (Sim(3)) with rotation, translation and positive scale.
//
// All types are immutable values: group operations return fresh elements and
// never mutate their receivers, so independent computations are safe to run
// in parallel. Exponential and logarithm maps carry explicit small-angle and
// small-scale series fallbacks; the singular closed forms are never evaluated
// near their poles.
//
// Matrices and tangent vectors crossing the package boundary use gonum's
// mat.Dense and mat.VecDense.
package geometry
