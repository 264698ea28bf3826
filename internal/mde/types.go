package mde

import "fmt"

// TestParameters are the fixed inputs of an MDE calculation. All three must
// be strictly inside (0,1).
type TestParameters struct {
	BaselineRate float64 `json:"baseline_rate"`
	PowerTarget  float64 `json:"power_target"`
	Alpha        float64 `json:"alpha"`
}

// Validate checks the (0,1) invariant on every field.
func (p TestParameters) Validate() error {
	if p.BaselineRate <= 0 || p.BaselineRate >= 1 {
		return fmt.Errorf("baseline rate %v outside (0,1): %w", p.BaselineRate, ErrInput)
	}
	if p.PowerTarget <= 0 || p.PowerTarget >= 1 {
		return fmt.Errorf("power target %v outside (0,1): %w", p.PowerTarget, ErrInput)
	}
	if p.Alpha <= 0 || p.Alpha >= 1 {
		return fmt.Errorf("alpha %v outside (0,1): %w", p.Alpha, ErrInput)
	}
	return nil
}

// SampleSizeInput selects one of two ways to express test traffic: a direct
// per-group count, or a total population split evenly across variants.
// PerGroup wins when set; otherwise TotalPopulation and VariantCount must
// both be set.
type SampleSizeInput struct {
	PerGroup        int `json:"sample_size_per_group,omitempty"`
	TotalPopulation int `json:"total_population,omitempty"`
	VariantCount    int `json:"variant_count,omitempty"`
}

// minViablePerGroup is the smallest per-group sample size the solver accepts.
// Below two subjects per arm a two-proportion test is meaningless.
const minViablePerGroup = 2

// Resolve returns the per-group sample size. Population mode divides with
// floor semantics; the remainder is unassigned traffic.
func (s SampleSizeInput) Resolve() (int, error) {
	switch {
	case s.PerGroup > 0:
		if s.PerGroup < minViablePerGroup {
			return 0, fmt.Errorf("sample size per group %d below minimum %d: %w", s.PerGroup, minViablePerGroup, ErrInput)
		}
		return s.PerGroup, nil
	case s.TotalPopulation > 0:
		if s.VariantCount < 2 {
			return 0, fmt.Errorf("variant count %d below 2: %w", s.VariantCount, ErrInput)
		}
		perGroup := s.TotalPopulation / s.VariantCount
		if perGroup < minViablePerGroup {
			return 0, fmt.Errorf("population %d across %d variants leaves %d per group, below minimum %d: %w",
				s.TotalPopulation, s.VariantCount, perGroup, minViablePerGroup, ErrInput)
		}
		return perGroup, nil
	default:
		return 0, fmt.Errorf("sample size missing: set sample_size_per_group or total_population with variant_count: %w", ErrInput)
	}
}

// DesiredMDE is an optional target effect the caller wants to detect. When
// Relative is true, Value is a fraction of the baseline rate; otherwise it is
// an absolute percentage-point delta.
type DesiredMDE struct {
	Value    float64 `json:"value"`
	Relative bool    `json:"relative"`
}

// Absolute normalizes the desired effect to an absolute delta against the
// given baseline rate.
func (d DesiredMDE) Absolute(baselineRate float64) (float64, error) {
	if d.Value <= 0 {
		return 0, fmt.Errorf("desired MDE %v must be positive: %w", d.Value, ErrInput)
	}
	abs := d.Value
	if d.Relative {
		abs = d.Value * baselineRate
	}
	if baselineRate+abs >= 1 {
		return 0, fmt.Errorf("desired MDE %v pushes treatment rate to %v, at or above 1: %w", abs, baselineRate+abs, ErrInput)
	}
	return abs, nil
}

// Result is the outcome of a solve. RequiredSampleSize is populated only when
// a desired MDE was supplied.
type Result struct {
	RelativeMDE        float64 `json:"relative_mde"`
	AbsoluteMDE        float64 `json:"absolute_mde"`
	AchievedPower      float64 `json:"achieved_power"`
	SampleSizePerGroup int     `json:"sample_size_per_group"`
	RequiredSampleSize int     `json:"required_sample_size_for_desired_mde,omitempty"`
}
