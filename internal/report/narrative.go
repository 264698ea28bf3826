// Package report turns solver results into presentation artifacts: the
// summary narrative shown next to the numbers and the power-curve sweep
// behind the chart.
package report

import (
	"fmt"
	"strings"
	"sync"

	"github.com/osteele/liquid"

	"github.com/ignite/mde-calculator/internal/mde"
)

// Renderer handles Liquid template rendering with caching.
type Renderer struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// summaryTemplate mirrors the calculator's result blurb. Rates render as
// percentages, sample sizes with thousands separators.
const summaryTemplate = `With {{ per_group | comma }} samples per variation, you can detect a relative change of at least {{ relative_mde | percent: 2 }} from your baseline rate of {{ baseline_rate | percent: 1 }}. Minimum detectable rate: {{ detectable_rate | percent: 1 }}. Total sample size needed: {{ total | comma }} (across all variations).`

// NewRenderer creates a renderer with the custom filters registered.
func NewRenderer() *Renderer {
	engine := liquid.NewEngine()

	r := &Renderer{
		engine: engine,
	}

	r.registerCustomFilters()

	return r
}

// registerCustomFilters adds the numeric formatting filters the
// templates use.
func (r *Renderer) registerCustomFilters() {
	// Percentage with fixed decimals: {{ rate | percent: 2 }} -> "12.20%"
	r.engine.RegisterFilter("percent", func(value interface{}, decimals int) string {
		var f float64
		switch v := value.(type) {
		case float64:
			f = v
		case float32:
			f = float64(v)
		case int:
			f = float64(v)
		default:
			return fmt.Sprintf("%v", value)
		}
		return fmt.Sprintf("%.*f%%", decimals, f*100)
	})

	// Thousands separators: {{ count | comma }} -> "10,000"
	r.engine.RegisterFilter("comma", func(value interface{}) string {
		var n int64
		switch v := value.(type) {
		case int:
			n = int64(v)
		case int64:
			n = v
		case float64:
			n = int64(v)
		default:
			return fmt.Sprintf("%v", value)
		}
		return Comma(n)
	})
}

// Comma formats an integer with thousands separators ("10,000").
func Comma(n int64) string {
	str := fmt.Sprintf("%d", n)
	if n < 0 {
		str = str[1:]
	}

	var result strings.Builder
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}

	if n < 0 {
		return "-" + result.String()
	}
	return result.String()
}

// Summary renders the narrative for a solved calculation. variants is the
// number of test groups sharing the traffic (minimum two).
func (r *Renderer) Summary(params mde.TestParameters, result mde.Result, variants int) (string, error) {
	if variants < 2 {
		variants = 2
	}

	ctx := map[string]interface{}{
		"per_group":       result.SampleSizePerGroup,
		"total":           result.SampleSizePerGroup * variants,
		"relative_mde":    result.RelativeMDE,
		"baseline_rate":   params.BaselineRate,
		"detectable_rate": params.BaselineRate + result.AbsoluteMDE,
	}

	return r.render("summary", summaryTemplate, ctx)
}

// render compiles and renders a template, caching the compiled form for
// repeated renders when a cache key is provided.
func (r *Renderer) render(cacheKey, templateStr string, ctx map[string]interface{}) (string, error) {
	if cacheKey != "" {
		if cached, ok := r.cache.Load(cacheKey); ok {
			return cached.(*liquid.Template).RenderString(ctx)
		}
	}

	tpl, err := r.engine.ParseString(templateStr)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}
	if cacheKey != "" {
		r.cache.Store(cacheKey, tpl)
	}

	return tpl.RenderString(ctx)
}
