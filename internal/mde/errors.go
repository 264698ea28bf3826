package mde

import "errors"

// Error classes for calculation failures. Callers distinguish them with
// errors.Is; every error produced by this package wraps exactly one.
var (
	// ErrInput marks caller configuration that violates a precondition:
	// rates, alpha, or power target outside (0,1), variant count below 2,
	// sample size below the minimum viable threshold, non-positive desired
	// effect.
	ErrInput = errors.New("invalid input")

	// ErrDomain marks a parameter combination with no mathematically
	// meaningful result: a treatment rate pushed outside (0,1), or a power
	// evaluation on fewer than one subject per group.
	ErrDomain = errors.New("outside valid domain")

	// ErrRange marks a search that has no finite solution within bounds:
	// the treatment rate would reach 1 before the target power, or the
	// required sample size exceeds the search cap.
	ErrRange = errors.New("no solution within search bounds")
)
