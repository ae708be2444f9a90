// Package sim3graph provides the mathematical core of a factor-graph
// nonlinear least-squares estimator: the Sim(3) similarity Lie group
// (geometry), residual factors over expression graphs (nonlinear), and the
// block linear systems they produce (linear).
//
// This package itself holds only the shared inference primitives: Key, the
// ordered identifier of an unknown, and Values, the dictionary of current
// estimates handed to factor evaluations.
//
// The iterative optimizer loop, sparse elimination and the automatic
// differentiation engine are deliberately external; they consume or feed
// these types through narrow interfaces.
package sim3graph
