package mde

import (
	"fmt"
	"math"
)

const (
	// effectTolerance is the relative width at which the effect bisection
	// stops narrowing.
	effectTolerance = 1e-6

	// maxBisectIters bounds both bisections regardless of tolerance.
	maxBisectIters = 100

	// maxDoublings bounds the bracket-growing loop of the effect search.
	maxDoublings = 64

	// rangeScanPoints sizes the fixed grid walked across the admissible
	// effect range when the doubling bound cannot bracket the target.
	rangeScanPoints = 256

	// maxRequiredPerGroup caps the inverse sample-size search at a billion
	// subjects per arm.
	maxRequiredPerGroup = 1_000_000_000

	// ceilingGap keeps the effect search strictly below a treatment rate
	// of 1.
	ceilingGap = 1e-12
)

// Solve finds the minimum detectable effect for the given parameters and
// sample size: the smallest non-negative absolute rate lift whose power meets
// params.PowerTarget. When desired is non-nil it additionally computes the
// smallest per-group sample size that would detect the desired effect.
//
// Solve is pure: identical inputs always produce identical results, and
// concurrent calls need no coordination.
func Solve(params TestParameters, sample SampleSizeInput, desired *DesiredMDE) (Result, error) {
	if err := params.Validate(); err != nil {
		return Result{}, err
	}
	perGroup, err := sample.Resolve()
	if err != nil {
		return Result{}, err
	}

	effect, achieved, err := minDetectableEffect(params, perGroup)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		RelativeMDE:        effect / params.BaselineRate,
		AbsoluteMDE:        effect,
		AchievedPower:      achieved,
		SampleSizePerGroup: perGroup,
	}

	if desired != nil {
		absEffect, err := desired.Absolute(params.BaselineRate)
		if err != nil {
			return Result{}, err
		}
		required, err := requiredPerGroup(params, absEffect)
		if err != nil {
			return Result{}, err
		}
		result.RequiredSampleSize = required
	}
	return result, nil
}

// minDetectableEffect grows an upper bracket for the effect search (doubling
// from the baseline rate, capped at the treatment-rate ceiling) and bisects
// inside it. When the doubling bound reaches the ceiling without meeting the
// target, scanForCrossing walks the admissible range for an interior bracket
// before the target is ruled unreachable. Every path into the bisection
// holds the invariant power(lo) < target <= power(hi), so the returned
// effect always meets the target. Returns the effect and the power achieved
// at it.
func minDetectableEffect(params TestParameters, perGroup int) (float64, float64, error) {
	base, err := Power(params.BaselineRate, 0, perGroup, params.Alpha)
	if err != nil {
		return 0, 0, err
	}
	if base >= params.PowerTarget {
		// A zero effect already meets the target (target <= alpha/2).
		return 0, base, nil
	}

	ceiling := (1 - params.BaselineRate) - ceilingGap
	if ceiling <= 0 {
		return 0, 0, fmt.Errorf("baseline rate %v leaves no room below a treatment rate of 1: %w", params.BaselineRate, ErrRange)
	}

	lo := 0.0
	hi := math.Min(params.BaselineRate, ceiling)
	bracketed := false
	for i := 0; i < maxDoublings; i++ {
		p, err := Power(params.BaselineRate, hi, perGroup, params.Alpha)
		if err != nil {
			return 0, 0, err
		}
		if p >= params.PowerTarget {
			bracketed = true
			break
		}
		if hi >= ceiling {
			break
		}
		lo = hi
		hi = math.Min(hi*2, ceiling)
	}
	if !bracketed {
		// Power can dip back below the target near the ceiling when groups
		// are tiny and alpha strict: the pooled null SE keeps growing toward
		// a pooled rate of one half while the unpooled SE collapses as the
		// treatment rate nears 1. Rescan the admissible range before ruling
		// the target unreachable.
		lo, hi, err = scanForCrossing(params, perGroup, ceiling)
		if err != nil {
			return 0, 0, err
		}
	}

	for i := 0; i < maxBisectIters && hi-lo > hi*effectTolerance; i++ {
		mid := (lo + hi) / 2
		p, err := Power(params.BaselineRate, mid, perGroup, params.Alpha)
		if err != nil {
			return 0, 0, err
		}
		if p >= params.PowerTarget {
			hi = mid
		} else {
			lo = mid
		}
	}

	achieved, err := Power(params.BaselineRate, hi, perGroup, params.Alpha)
	if err != nil {
		return 0, 0, err
	}
	return hi, achieved, nil
}

// scanForCrossing walks a fixed grid across (0, ceiling] looking for the
// first effect whose power meets the target, returning it with the preceding
// grid point as the bisection bracket. The grid catches interior crossings
// the doubling bound steps over; a crossing narrower than one grid step is
// still reported as out of range.
func scanForCrossing(params TestParameters, perGroup int, ceiling float64) (float64, float64, error) {
	step := ceiling / rangeScanPoints
	best, bestAt := 0.0, 0.0
	for k := 1; k <= rangeScanPoints; k++ {
		effect := step * float64(k)
		p, err := Power(params.BaselineRate, effect, perGroup, params.Alpha)
		if err != nil {
			return 0, 0, err
		}
		if p >= params.PowerTarget {
			return step * float64(k-1), effect, nil
		}
		if p > best {
			best, bestAt = p, effect
		}
	}
	return 0, 0, fmt.Errorf("power peaks at %.6f (effect %.6f) across the admissible range, below target %v: %w",
		best, bestAt, params.PowerTarget, ErrRange)
}

// requiredPerGroup finds the smallest per-group sample size whose power at
// the given absolute effect meets params.PowerTarget. Power is monotonically
// non-decreasing in the sample size, so a doubling search brackets the answer
// and integer bisection narrows it to 1-sample precision.
func requiredPerGroup(params TestParameters, absEffect float64) (int, error) {
	lo, hi := minViablePerGroup-1, minViablePerGroup
	for {
		p, err := Power(params.BaselineRate, absEffect, hi, params.Alpha)
		if err != nil {
			return 0, err
		}
		if p >= params.PowerTarget {
			break
		}
		if hi >= maxRequiredPerGroup {
			return 0, fmt.Errorf("no sample size up to %d per group reaches power target %v for effect %v: %w",
				maxRequiredPerGroup, params.PowerTarget, absEffect, ErrRange)
		}
		lo = hi
		hi *= 2
		if hi > maxRequiredPerGroup {
			hi = maxRequiredPerGroup
		}
	}

	for lo+1 < hi {
		mid := lo + (hi-lo)/2
		p, err := Power(params.BaselineRate, absEffect, mid, params.Alpha)
		if err != nil {
			return 0, err
		}
		if p >= params.PowerTarget {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi, nil
}
