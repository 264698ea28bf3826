package mde

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPower_ReferenceValues(t *testing.T) {
	// Expected values computed with the standard normal distribution:
	// power = Phi((|e| - z(1-a/2)*seNull)/seAlt), seNull pooled at the
	// average rate, seAlt per-arm.
	tests := []struct {
		name     string
		baseline float64
		effect   float64
		perGroup int
		alpha    float64
		want     float64
	}{
		{"one point lift at 10% baseline", 0.10, 0.01, 10000, 0.05, 0.6355980},
		{"1.2 point lift at 10% baseline", 0.10, 0.012, 10000, 0.05, 0.7871589},
		{"two point lift at 10% baseline", 0.10, 0.02, 10000, 0.05, 0.9947843},
		{"five point lift at 50% baseline", 0.50, 0.05, 1000, 0.05, 0.6099752},
		{"half point lift at 2% baseline", 0.02, 0.005, 50000, 0.05, 0.9996259},
		{"stricter alpha lowers power", 0.10, 0.01, 10000, 0.01, 0.3938762},
		{"three point lift at 30% baseline", 0.30, 0.03, 4000, 0.05, 0.8234975},
		{"tiny sample", 0.50, 0.30, 5, 0.05, 0.1545582},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Power(tt.baseline, tt.effect, tt.perGroup, tt.alpha)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestPower_DecreaseDirection(t *testing.T) {
	// A one-point drop from a 10% baseline: the treatment arm has lower
	// variance than the control, so power exceeds the symmetric increase.
	down, err := Power(0.10, -0.01, 10000, 0.05)
	require.NoError(t, err)
	assert.InDelta(t, 0.6742453, down, 1e-6)

	up, err := Power(0.10, 0.01, 10000, 0.05)
	require.NoError(t, err)
	assert.Greater(t, down, up)
}

func TestPower_ZeroEffectIsHalfAlpha(t *testing.T) {
	// With no true effect the test rejects in the counted direction with
	// probability alpha/2 exactly: both standard errors coincide.
	for _, alpha := range []float64{0.01, 0.05, 0.07, 0.10} {
		got, err := Power(0.37, 0, 123, alpha)
		require.NoError(t, err)
		assert.InDelta(t, alpha/2, got, 1e-12)
	}
}

func TestPower_LargeSampleSaturates(t *testing.T) {
	got, err := Power(0.10, 0.001, 50_000_000, 0.05)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = Power(0.10, 0.0001, 50_000_000, 0.05)
	require.NoError(t, err)
	assert.InDelta(t, 0.3845060, got, 1e-6)
}

func TestPower_Errors(t *testing.T) {
	tests := []struct {
		name     string
		baseline float64
		effect   float64
		perGroup int
		alpha    float64
		wantErr  error
	}{
		{"treatment rate at 1", 0.90, 0.10, 1000, 0.05, ErrDomain},
		{"treatment rate above 1", 0.90, 0.20, 1000, 0.05, ErrDomain},
		{"treatment rate at 0", 0.10, -0.10, 1000, 0.05, ErrDomain},
		{"treatment rate below 0", 0.10, -0.15, 1000, 0.05, ErrDomain},
		{"zero sample size", 0.10, 0.01, 0, 0.05, ErrDomain},
		{"negative sample size", 0.10, 0.01, -5, 0.05, ErrDomain},
		{"baseline at 0", 0, 0.01, 1000, 0.05, ErrInput},
		{"baseline at 1", 1, 0.01, 1000, 0.05, ErrInput},
		{"alpha at 0", 0.10, 0.01, 1000, 0, ErrInput},
		{"alpha at 1", 0.10, 0.01, 1000, 1, ErrInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Power(tt.baseline, tt.effect, tt.perGroup, tt.alpha)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
