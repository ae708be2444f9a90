// Package nonlinear implements residual factors over expression graphs.
//
// An ExpressionFactor binds a measurement, a noise model and an externally
// supplied expression (the evaluation contract of a computation graph with
// internal automatic differentiation). Evaluating the factor yields the
// tangent-space residual between measurement and prediction; linearizing it
// yields a linear.JacobianFactor ready for a sparse eliminator.
//
// Factors are immutable after construction and their evaluations are pure
// functions of the Values snapshot, so independent evaluations may run in
// parallel.
package nonlinear
