// Package chart renders the power-curve PNG without a plotting
// dependency. Geometry is drawn at double resolution and downscaled for
// smooth lines; labels are drawn at output resolution so the bitmap
// font stays crisp.
package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ignite/mde-calculator/internal/report"
)

const (
	superSample = 2

	marginLeft   = 70
	marginRight  = 30
	marginTop    = 48
	marginBottom = 58

	xTickCount = 5

	// MinWidth and friends bound the output dimensions.
	MinWidth  = 320
	MinHeight = 240
	MaxWidth  = 4096
	MaxHeight = 4096
)

var (
	colorBackground = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorAxis       = color.RGBA{R: 68, G: 68, B: 68, A: 255}
	colorGrid       = color.RGBA{R: 226, G: 226, B: 226, A: 255}
	colorCurve      = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorTarget     = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	colorMDE        = color.RGBA{R: 44, G: 160, B: 44, A: 255}
)

// PNG renders the sweep as a width x height chart: the power polyline
// over relative effect (%), a dashed horizontal rule at the target power
// and a dashed vertical rule at the solved MDE.
func PNG(curve *report.Curve, width, height int) ([]byte, error) {
	if curve == nil || len(curve.Points) == 0 {
		return nil, fmt.Errorf("chart: empty curve")
	}
	if width < MinWidth || width > MaxWidth || height < MinHeight || height > MaxHeight {
		return nil, fmt.Errorf("chart: dimensions %dx%d outside %dx%d to %dx%d", width, height, MinWidth, MinHeight, MaxWidth, MaxHeight)
	}

	w := width * superSample
	h := height * superSample
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	plot := image.Rect(
		marginLeft*superSample,
		marginTop*superSample,
		(width-marginRight)*superSample,
		(height-marginBottom)*superSample,
	)

	// X domain is relative effect in percent; Y is power on [0,1].
	xMin := curve.Points[0].RelativeEffect * 100
	xMax := curve.Points[len(curve.Points)-1].RelativeEffect * 100
	if xMax-xMin < 1e-9 {
		xMax = xMin + 1
	}

	xAt := func(v float64) int {
		return plot.Min.X + int(float64(plot.Dx())*(v-xMin)/(xMax-xMin)+0.5)
	}
	yAt := func(p float64) int {
		return plot.Max.Y - int(float64(plot.Dy())*clamp01(p)+0.5)
	}

	// Gridlines
	for i := 0; i <= 10; i += 2 {
		y := yAt(float64(i) / 10)
		drawLine(img, plot.Min.X, y, plot.Max.X, y, superSample, colorGrid)
	}
	for i := 0; i < xTickCount; i++ {
		x := xAt(xMin + (xMax-xMin)*float64(i)/float64(xTickCount-1))
		drawLine(img, x, plot.Min.Y, x, plot.Max.Y, superSample, colorGrid)
	}

	// Reference rules
	ty := yAt(curve.PowerTarget)
	drawDashedHLine(img, plot.Min.X, plot.Max.X, ty, 2*superSample, colorTarget)

	mdePct := curve.RelativeMDE * 100
	if mdePct >= xMin && mdePct <= xMax {
		drawDashedVLine(img, xAt(mdePct), plot.Min.Y, plot.Max.Y, 2*superSample, colorMDE)
	}

	// Power polyline
	prevX, prevY := 0, 0
	for i, pt := range curve.Points {
		x := xAt(pt.RelativeEffect * 100)
		y := yAt(pt.Power)
		if i > 0 {
			drawLine(img, prevX, prevY, x, y, 3*superSample, colorCurve)
		}
		prevX, prevY = x, y
	}

	// Axes on top of the plot contents
	drawLine(img, plot.Min.X, plot.Min.Y, plot.Min.X, plot.Max.Y, superSample, colorAxis)
	drawLine(img, plot.Min.X, plot.Max.Y, plot.Max.X, plot.Max.Y, superSample, colorAxis)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	labelChart(dst, curve, width, height, xMin, xMax)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encoding chart: %w", err)
	}
	return buf.Bytes(), nil
}

// labelChart draws titles, tick labels and rule annotations at output
// resolution.
func labelChart(dst *image.RGBA, curve *report.Curve, width, height int, xMin, xMax float64) {
	plotW := width - marginLeft - marginRight
	plotH := height - marginTop - marginBottom

	title := "Statistical Power vs Effect Size"
	drawText(dst, (width-textWidth(title))/2, 24, title, colorAxis)
	drawText(dst, 8, marginTop-10, "Power", colorAxis)
	xCaption := "Effect Size (%)"
	drawText(dst, (width-textWidth(xCaption))/2, height-14, xCaption, colorAxis)

	for i := 0; i <= 10; i += 2 {
		label := fmt.Sprintf("%.1f", float64(i)/10)
		y := (height - marginBottom) - int(float64(plotH)*float64(i)/10+0.5)
		drawText(dst, marginLeft-8-textWidth(label), y+4, label, colorAxis)
	}
	for i := 0; i < xTickCount; i++ {
		v := xMin + (xMax-xMin)*float64(i)/float64(xTickCount-1)
		label := fmt.Sprintf("%.1f", v)
		x := marginLeft + int(float64(plotW)*float64(i)/float64(xTickCount-1)+0.5)
		drawText(dst, x-textWidth(label)/2, height-marginBottom+18, label, colorAxis)
	}

	targetLabel := fmt.Sprintf("Target Power (%.0f%%)", curve.PowerTarget*100)
	ty := (height - marginBottom) - int(float64(plotH)*clamp01(curve.PowerTarget)+0.5)
	drawText(dst, width-marginRight-textWidth(targetLabel), ty-6, targetLabel, colorTarget)

	mdePct := curve.RelativeMDE * 100
	if mdePct >= xMin && mdePct <= xMax {
		mdeLabel := fmt.Sprintf("MDE (%.1f%%)", mdePct)
		mx := marginLeft + int(float64(plotW)*(mdePct-xMin)/(xMax-xMin)+0.5)
		lx := mx + 6
		if lx+textWidth(mdeLabel) > width-marginRight {
			lx = mx - 6 - textWidth(mdeLabel)
		}
		drawText(dst, lx, marginTop+16, mdeLabel, colorMDE)
	}
}

func drawText(img *image.RGBA, x, y int, s string, c color.Color) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// textWidth returns the pixel width of s in the 7x13 face.
func textWidth(s string) int {
	return len(s) * 7
}

func drawLine(img *image.RGBA, x0, y0, x1, y1, thick int, c color.Color) {
	dx := x1 - x0
	dy := y1 - y0
	steps := abs(dx)
	if abs(dy) > steps {
		steps = abs(dy)
	}
	if steps == 0 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		dot(img, x0+dx*i/steps, y0+dy*i/steps, thick, c)
	}
}

func drawDashedHLine(img *image.RGBA, x0, x1, y, thick int, c color.Color) {
	dash := 8 * superSample
	gap := 6 * superSample
	for x := x0; x < x1; x += dash + gap {
		end := x + dash
		if end > x1 {
			end = x1
		}
		drawLine(img, x, y, end, y, thick, c)
	}
}

func drawDashedVLine(img *image.RGBA, x, y0, y1, thick int, c color.Color) {
	dash := 8 * superSample
	gap := 6 * superSample
	for y := y0; y < y1; y += dash + gap {
		end := y + dash
		if end > y1 {
			end = y1
		}
		drawLine(img, x, y, x, end, thick, c)
	}
}

// dot stamps a thick x thick square centered on (x, y). Out-of-bounds
// pixels are discarded by Set.
func dot(img *image.RGBA, x, y, thick int, c color.Color) {
	for oy := 0; oy < thick; oy++ {
		for ox := 0; ox < thick; ox++ {
			img.Set(x+ox-thick/2, y+oy-thick/2, c)
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
