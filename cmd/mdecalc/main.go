// mdecalc is a one-shot minimum detectable effect calculator.
//
// Usage:
//   go run ./cmd/mdecalc --baseline=10 --sample-size=10000
//   go run ./cmd/mdecalc --baseline=10 --total-population=30000 --variants=3
//   go run ./cmd/mdecalc --baseline=10 --sample-size=10000 --desired-mde=10 --desired-unit=relative
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/ignite/mde-calculator/internal/mde"
	"github.com/ignite/mde-calculator/internal/report"
)

type calcOptions struct {
	BaselinePercent float64
	SampleSize      int
	TotalPopulation int
	Variants        int
	PowerTarget     float64
	Alpha           float64
	DesiredMDE      float64
	DesiredUnit     string
}

func main() {
	opts := calcOptions{
		Variants:    2,
		PowerTarget: 0.8,
		Alpha:       0.05,
		DesiredUnit: "relative",
	}

	flag.Float64Var(&opts.BaselinePercent, "baseline", 0, "Baseline conversion rate as a percentage, e.g. 10 for 10% (required)")
	flag.IntVar(&opts.SampleSize, "sample-size", 0, "Sample size per variation")
	flag.IntVar(&opts.TotalPopulation, "total-population", 0, "Total population split across all variations (alternative to --sample-size)")
	flag.IntVar(&opts.Variants, "variants", opts.Variants, "Number of variations sharing the population")
	flag.Float64Var(&opts.PowerTarget, "power", opts.PowerTarget, "Target statistical power (0-1)")
	flag.Float64Var(&opts.Alpha, "alpha", opts.Alpha, "Significance level (0-1)")
	flag.Float64Var(&opts.DesiredMDE, "desired-mde", 0, "Desired MDE as a percentage; also reports the sample size needed to reach it")
	flag.StringVar(&opts.DesiredUnit, "desired-unit", opts.DesiredUnit, "Unit for --desired-mde: relative or absolute")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL [%s]: %v\n", errorClass(err), err)
		os.Exit(1)
	}
}

func run(opts calcOptions) error {
	if opts.BaselinePercent == 0 {
		return fmt.Errorf("--baseline is required (percent, e.g. 10 for a 10%% conversion rate): %w", mde.ErrInput)
	}
	if opts.BaselinePercent <= 0 || opts.BaselinePercent >= 100 {
		return fmt.Errorf("baseline percent %g outside (0, 100): %w", opts.BaselinePercent, mde.ErrInput)
	}

	params := mde.TestParameters{
		BaselineRate: opts.BaselinePercent / 100,
		PowerTarget:  opts.PowerTarget,
		Alpha:        opts.Alpha,
	}
	sample := mde.SampleSizeInput{
		PerGroup:        opts.SampleSize,
		TotalPopulation: opts.TotalPopulation,
		VariantCount:    opts.Variants,
	}

	var desired *mde.DesiredMDE
	if opts.DesiredMDE != 0 {
		if opts.DesiredMDE < 0 {
			return fmt.Errorf("desired MDE percent %g must be positive: %w", opts.DesiredMDE, mde.ErrInput)
		}
		switch opts.DesiredUnit {
		case "relative":
			desired = &mde.DesiredMDE{Value: opts.DesiredMDE / 100, Relative: true}
		case "absolute":
			desired = &mde.DesiredMDE{Value: opts.DesiredMDE / 100}
		default:
			return fmt.Errorf("desired unit %q not one of relative, absolute: %w", opts.DesiredUnit, mde.ErrInput)
		}
	}

	result, err := mde.Solve(params, sample, desired)
	if err != nil {
		return err
	}

	variants := opts.Variants
	if variants < 2 {
		variants = 2
	}

	printReport(params, result, variants, opts, desired)

	return nil
}

func printReport(params mde.TestParameters, result mde.Result, variants int, opts calcOptions, desired *mde.DesiredMDE) {
	fmt.Println("=========================================================")
	fmt.Println(" MDE CALCULATOR")
	fmt.Println("=========================================================")
	fmt.Printf("  %-26s%.1f%%\n", "Baseline rate:", opts.BaselinePercent)
	fmt.Printf("  %-26s%g\n", "Significance level:", params.Alpha)
	fmt.Printf("  %-26s%.0f%%\n", "Target power:", params.PowerTarget*100)
	fmt.Printf("  %-26s%d\n", "Variations:", variants)
	fmt.Println("---------------------------------------------------------")
	fmt.Printf("  %-26s%s\n", "Sample size per group:", report.Comma(int64(result.SampleSizePerGroup)))
	fmt.Printf("  %-26s%s\n", "Total traffic:", report.Comma(int64(result.SampleSizePerGroup*variants)))
	fmt.Printf("  %-26s%.2f%%\n", "Relative MDE:", result.RelativeMDE*100)
	fmt.Printf("  %-26s%.2f pp\n", "Absolute MDE:", result.AbsoluteMDE*100)
	fmt.Printf("  %-26s%.1f%%\n", "Detectable rate:", (params.BaselineRate+result.AbsoluteMDE)*100)
	fmt.Printf("  %-26s%.4f\n", "Achieved power:", result.AchievedPower)

	if desired != nil {
		fmt.Println("---------------------------------------------------------")
		fmt.Printf("  %-26s%.2f%% %s\n", "Desired MDE:", opts.DesiredMDE, opts.DesiredUnit)
		fmt.Printf("  %-26s%s\n", "Required per group:", report.Comma(int64(result.RequiredSampleSize)))
		fmt.Printf("  %-26s%s\n", "Required total traffic:", report.Comma(int64(result.RequiredSampleSize*variants)))
	}

	fmt.Println("=========================================================")

	renderer := report.NewRenderer()
	if summary, err := renderer.Summary(params, result, variants); err == nil {
		fmt.Printf("  %s\n", summary)
		fmt.Println("=========================================================")
	}
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, mde.ErrRange):
		return "range_error"
	case errors.Is(err, mde.ErrDomain):
		return "domain_error"
	case errors.Is(err, mde.ErrInput):
		return "input_error"
	default:
		return "error"
	}
}
