// Package mde computes minimum detectable effects for two-proportion
// conversion-rate tests.
//
// The package exposes two pure functions: Power, the statistical power of a
// two-sided two-proportion z-test, and Solve, which inverts Power by monotonic
// bisection to find the smallest detectable effect for a fixed sample size
// (and, optionally, the smallest sample size for a desired effect).
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No logging, no I/O, no shared mutable state
//   - Every error wraps exactly one of ErrInput, ErrDomain, ErrRange
package mde
