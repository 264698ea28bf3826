package report

import (
	"errors"
	"fmt"

	"github.com/ignite/mde-calculator/internal/mde"
)

// CurvePoint is one sample of the power function around the solved MDE.
type CurvePoint struct {
	RelativeEffect float64 `json:"relative_effect"`
	AbsoluteEffect float64 `json:"absolute_effect"`
	Power          float64 `json:"power"`
}

// Curve is the power sweep the chart plots, plus the reference values
// its two dashed rules mark.
type Curve struct {
	Points      []CurvePoint `json:"points"`
	PowerTarget float64      `json:"power_target"`
	RelativeMDE float64      `json:"relative_mde"`
	AbsoluteMDE float64      `json:"absolute_mde"`
}

const curvePoints = 100

// Sweep samples power at evenly spaced effects spanning half to one and
// a half times the solved MDE. Points whose treatment rate would leave
// (0,1) are dropped from the tail of the sweep.
func Sweep(params mde.TestParameters, result mde.Result) (*Curve, error) {
	lo := 0.5 * result.AbsoluteMDE
	hi := 1.5 * result.AbsoluteMDE
	step := (hi - lo) / (curvePoints - 1)

	points := make([]CurvePoint, 0, curvePoints)
	for i := 0; i < curvePoints; i++ {
		effect := lo + float64(i)*step
		p, err := mde.Power(params.BaselineRate, effect, result.SampleSizePerGroup, params.Alpha)
		if err != nil {
			if errors.Is(err, mde.ErrDomain) {
				continue
			}
			return nil, err
		}
		points = append(points, CurvePoint{
			RelativeEffect: effect / params.BaselineRate,
			AbsoluteEffect: effect,
			Power:          p,
		})
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("no effect between %g and %g keeps the treatment rate inside (0,1): %w", lo, hi, mde.ErrDomain)
	}

	return &Curve{
		Points:      points,
		PowerTarget: params.PowerTarget,
		RelativeMDE: result.RelativeMDE,
		AbsoluteMDE: result.AbsoluteMDE,
	}, nil
}
