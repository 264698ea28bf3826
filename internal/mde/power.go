package mde

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// stdNormal is shared across calls; distuv.Normal is a value type with no
// internal state, so concurrent use is safe.
var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// Power returns the statistical power of a two-sided two-proportion z-test:
// the probability of detecting a true absolute rate difference of effectSize
// between a control arm converting at baselineRate and a treatment arm
// converting at baselineRate+effectSize, with perGroup subjects in each arm
// and significance level alpha.
//
// The null standard error pools both arms at their average rate; the
// alternative standard error uses each arm's own rate. effectSize may be
// negative for a decrease. The result is clamped to [0,1].
func Power(baselineRate, effectSize float64, perGroup int, alpha float64) (float64, error) {
	if baselineRate <= 0 || baselineRate >= 1 {
		return 0, fmt.Errorf("baseline rate %v outside (0,1): %w", baselineRate, ErrInput)
	}
	if alpha <= 0 || alpha >= 1 {
		return 0, fmt.Errorf("alpha %v outside (0,1): %w", alpha, ErrInput)
	}
	if perGroup < 1 {
		return 0, fmt.Errorf("sample size per group %d below 1: %w", perGroup, ErrDomain)
	}
	treatmentRate := baselineRate + effectSize
	if treatmentRate <= 0 || treatmentRate >= 1 {
		return 0, fmt.Errorf("treatment rate %v outside (0,1): %w", treatmentRate, ErrDomain)
	}

	n := float64(perGroup)
	pooled := (baselineRate + treatmentRate) / 2
	seNull := math.Sqrt(2 * pooled * (1 - pooled) / n)
	seAlt := math.Sqrt((baselineRate*(1-baselineRate) + treatmentRate*(1-treatmentRate)) / n)

	zCrit := stdNormal.Quantile(1 - alpha/2)
	power := stdNormal.CDF((math.Abs(effectSize) - zCrit*seNull) / seAlt)

	if power < 0 {
		power = 0
	} else if power > 1 {
		power = 1
	}
	return power, nil
}
