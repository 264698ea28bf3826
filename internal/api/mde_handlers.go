package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ignite/mde-calculator/internal/chart"
	"github.com/ignite/mde-calculator/internal/config"
	"github.com/ignite/mde-calculator/internal/mde"
	"github.com/ignite/mde-calculator/internal/pkg/httputil"
	"github.com/ignite/mde-calculator/internal/pkg/logger"
	"github.com/ignite/mde-calculator/internal/report"
)

// MDEService exposes the calculator over HTTP. The handlers parse and
// range-check raw inputs, call the solver, and attach presentation
// artifacts; all statistics live in the mde package.
type MDEService struct {
	cfg      *config.Config
	renderer *report.Renderer
}

// NewMDEService creates the calculator service.
func NewMDEService(cfg *config.Config) *MDEService {
	return &MDEService{
		cfg:      cfg,
		renderer: report.NewRenderer(),
	}
}

// RegisterRoutes mounts the calculator endpoints.
func (s *MDEService) RegisterRoutes(r chi.Router) {
	r.Route("/mde", func(r chi.Router) {
		r.Post("/solve", s.HandleSolve)
		r.Post("/power", s.HandlePower)
		r.Post("/curve", s.HandleCurve)
		r.Post("/curve/chart.png", s.HandleCurveChart)
	})
}

// SolveRequest is the body for /mde/solve and the curve endpoints.
// baseline_rate is a fraction in (0,1); baseline_percent is the same
// value as a percentage in (0,100) and may be sent instead. power_target
// and alpha fall back to the configured defaults when omitted.
type SolveRequest struct {
	BaselineRate       float64         `json:"baseline_rate,omitempty"`
	BaselinePercent    float64         `json:"baseline_percent,omitempty"`
	PowerTarget        float64         `json:"power_target,omitempty"`
	Alpha              float64         `json:"alpha,omitempty"`
	SampleSizePerGroup int             `json:"sample_size_per_group,omitempty"`
	TotalPopulation    int             `json:"total_population,omitempty"`
	VariantCount       int             `json:"variant_count,omitempty"`
	DesiredMDE         *DesiredMDEBody `json:"desired_mde,omitempty"`
}

// DesiredMDEBody is the optional inverse-search target.
type DesiredMDEBody struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"` // "relative" (default) or "absolute"
}

// SolveResponse carries the solved MDE plus the traffic echo and
// narrative shown by clients.
type SolveResponse struct {
	CalculationID      string  `json:"calculation_id"`
	RelativeMDE        float64 `json:"relative_mde"`
	AbsoluteMDE        float64 `json:"absolute_mde"`
	AchievedPower      float64 `json:"achieved_power"`
	SampleSizePerGroup int     `json:"sample_size_per_group"`
	VariantCount       int     `json:"variant_count"`
	TotalTraffic       int     `json:"total_traffic"`
	RequiredSampleSize int     `json:"required_sample_size_for_desired_mde,omitempty"`
	Narrative          string  `json:"narrative"`
}

// PowerRequest is the body for /mde/power.
type PowerRequest struct {
	BaselineRate       float64 `json:"baseline_rate,omitempty"`
	BaselinePercent    float64 `json:"baseline_percent,omitempty"`
	EffectSize         float64 `json:"effect_size"`
	SampleSizePerGroup int     `json:"sample_size_per_group"`
	Alpha              float64 `json:"alpha,omitempty"`
}

// PowerResponse is the body returned by /mde/power.
type PowerResponse struct {
	Power float64 `json:"power"`
}

// CurveResponse is the sweep returned by /mde/curve.
type CurveResponse struct {
	CalculationID string `json:"calculation_id"`
	*report.Curve
}

// HandleSolve finds the minimum detectable effect for the given traffic.
//
//	POST /api/mde/solve
func (s *MDEService) HandleSolve(w http.ResponseWriter, r *http.Request) {
	var req SolveRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	params, sample, err := s.resolveInputs(&req)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	desired, err := req.DesiredMDE.toCore()
	if err != nil {
		writeCoreError(w, err)
		return
	}

	result, err := mde.Solve(params, sample, desired)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	variants := req.VariantCount
	if variants < 2 {
		variants = 2
	}

	narrative, err := s.renderer.Summary(params, result, variants)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	calcID := uuid.New().String()
	logger.Info("mde solved",
		"calculation_id", calcID,
		"baseline_rate", params.BaselineRate,
		"per_group", result.SampleSizePerGroup,
		"relative_mde", result.RelativeMDE,
	)

	httputil.OK(w, SolveResponse{
		CalculationID:      calcID,
		RelativeMDE:        result.RelativeMDE,
		AbsoluteMDE:        result.AbsoluteMDE,
		AchievedPower:      result.AchievedPower,
		SampleSizePerGroup: result.SampleSizePerGroup,
		VariantCount:       variants,
		TotalTraffic:       result.SampleSizePerGroup * variants,
		RequiredSampleSize: result.RequiredSampleSize,
		Narrative:          narrative,
	})
}

// HandlePower evaluates the power function once.
//
//	POST /api/mde/power
func (s *MDEService) HandlePower(w http.ResponseWriter, r *http.Request) {
	var req PowerRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	baseline, err := resolveBaseline(req.BaselineRate, req.BaselinePercent)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	alpha := req.Alpha
	if alpha == 0 {
		alpha = s.cfg.Solver.DefaultAlpha
	}

	power, err := mde.Power(baseline, req.EffectSize, req.SampleSizePerGroup, alpha)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	httputil.OK(w, PowerResponse{Power: power})
}

// HandleCurve solves and sweeps the power function around the MDE.
//
//	POST /api/mde/curve
func (s *MDEService) HandleCurve(w http.ResponseWriter, r *http.Request) {
	curve, ok := s.solveCurve(w, r)
	if !ok {
		return
	}

	httputil.OK(w, CurveResponse{
		CalculationID: uuid.New().String(),
		Curve:         curve,
	})
}

// HandleCurveChart renders the sweep as a PNG at the configured
// dimensions.
//
//	POST /api/mde/curve/chart.png
func (s *MDEService) HandleCurveChart(w http.ResponseWriter, r *http.Request) {
	curve, ok := s.solveCurve(w, r)
	if !ok {
		return
	}

	data, err := chart.PNG(curve, s.cfg.Chart.Width, s.cfg.Chart.Height)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Warn("chart write failed", "error", err)
	}
}

// HandleHealth reports liveness.
//
//	GET /health
func (s *MDEService) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, healthStatus())
}

// solveCurve runs the shared solve-then-sweep path of the curve
// endpoints. On failure it writes the error response and returns ok
// false.
func (s *MDEService) solveCurve(w http.ResponseWriter, r *http.Request) (*report.Curve, bool) {
	var req SolveRequest
	if !httputil.Decode(w, r, &req) {
		return nil, false
	}

	params, sample, err := s.resolveInputs(&req)
	if err != nil {
		writeCoreError(w, err)
		return nil, false
	}

	result, err := mde.Solve(params, sample, nil)
	if err != nil {
		writeCoreError(w, err)
		return nil, false
	}

	curve, err := report.Sweep(params, result)
	if err != nil {
		writeCoreError(w, err)
		return nil, false
	}

	return curve, true
}

// resolveInputs converts the raw request into core inputs, applying
// percent conversion and the configured solver defaults.
func (s *MDEService) resolveInputs(req *SolveRequest) (mde.TestParameters, mde.SampleSizeInput, error) {
	baseline, err := resolveBaseline(req.BaselineRate, req.BaselinePercent)
	if err != nil {
		return mde.TestParameters{}, mde.SampleSizeInput{}, err
	}

	params := mde.TestParameters{
		BaselineRate: baseline,
		PowerTarget:  req.PowerTarget,
		Alpha:        req.Alpha,
	}
	if params.PowerTarget == 0 {
		params.PowerTarget = s.cfg.Solver.DefaultPowerTarget
	}
	if params.Alpha == 0 {
		params.Alpha = s.cfg.Solver.DefaultAlpha
	}

	sample := mde.SampleSizeInput{
		PerGroup:        req.SampleSizePerGroup,
		TotalPopulation: req.TotalPopulation,
		VariantCount:    req.VariantCount,
	}

	return params, sample, nil
}

// resolveBaseline picks between the fraction and percent forms of the
// baseline rate. Percent inputs are range-checked here so the caller
// sees the raw value in the error.
func resolveBaseline(rate, percent float64) (float64, error) {
	if percent != 0 {
		if rate != 0 {
			return 0, fmt.Errorf("baseline_rate and baseline_percent are mutually exclusive: %w", mde.ErrInput)
		}
		if percent <= 0 || percent >= 100 {
			return 0, fmt.Errorf("baseline_percent %g outside (0, 100): %w", percent, mde.ErrInput)
		}
		return percent / 100, nil
	}
	return rate, nil
}

// toCore converts the request body to the solver's desired-MDE input.
// A nil body means no inverse search.
func (d *DesiredMDEBody) toCore() (*mde.DesiredMDE, error) {
	if d == nil {
		return nil, nil
	}
	switch d.Unit {
	case "", "relative":
		return &mde.DesiredMDE{Value: d.Value, Relative: true}, nil
	case "absolute":
		return &mde.DesiredMDE{Value: d.Value}, nil
	default:
		return nil, fmt.Errorf("desired_mde unit %q not one of relative, absolute: %w", d.Unit, mde.ErrInput)
	}
}

// writeCoreError maps solver error classes onto HTTP statuses: bad
// inputs and domain violations are 400s, an unreachable target power is
// a 422.
func writeCoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mde.ErrRange):
		httputil.ErrorWithCode(w, http.StatusUnprocessableEntity, "range_error", err.Error())
	case errors.Is(err, mde.ErrInput):
		httputil.ErrorWithCode(w, http.StatusBadRequest, "input_error", err.Error())
	case errors.Is(err, mde.ErrDomain):
		httputil.ErrorWithCode(w, http.StatusBadRequest, "domain_error", err.Error())
	default:
		httputil.InternalError(w, err)
	}
}
