package infra

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"

	"github.com/disintegration/imaging"
)

const (
	chartRowHeight = 48
	chartPadding   = 4
)

var (
	chartBackground = color.NRGBA{R: 17, G: 24, B: 39, A: 255}
	chartPanel      = color.NRGBA{R: 31, G: 41, B: 55, A: 255}
	chartUp         = color.NRGBA{R: 16, G: 185, B: 129, A: 255}
	chartDown       = color.NRGBA{R: 239, G: 68, B: 68, A: 255}
)

// RenderChart draws one sparkline row per stock (sorted by name) and saves
// the result to path. The format follows the file extension.
func RenderChart(path string, history map[string][]float64, width int) error {
	if len(history) == 0 {
		return fmt.Errorf("no price history to render")
	}
	if width < 2*chartPadding+2 {
		return fmt.Errorf("chart width %d too small", width)
	}

	names := make([]string, 0, len(history))
	for name := range history {
		names = append(names, name)
	}
	sort.Strings(names)

	canvas := imaging.New(width, len(names)*chartRowHeight, chartBackground)
	for i, name := range names {
		row := sparkline(history[name], width-2*chartPadding, chartRowHeight-2*chartPadding)
		canvas = imaging.Paste(canvas, row, image.Pt(chartPadding, i*chartRowHeight+chartPadding))
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create chart directory: %w", err)
		}
	}
	if err := imaging.Save(canvas, path); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	return nil
}

// sparkline plots prices left to right, scaled to the panel height.
// The line is green when the last price is at or above the first, red otherwise.
func sparkline(prices []float64, w, h int) *image.NRGBA {
	panel := imaging.New(w, h, chartPanel)
	if len(prices) == 0 {
		return panel
	}

	lo, hi := prices[0], prices[0]
	for _, p := range prices {
		lo = min(lo, p)
		hi = max(hi, p)
	}
	span := hi - lo

	ink := chartUp
	if prices[len(prices)-1] < prices[0] {
		ink = chartDown
	}

	yOf := func(p float64) int {
		if span == 0 {
			return h / 2
		}
		return h - 1 - int((p-lo)/span*float64(h-1))
	}

	prevY := yOf(prices[0])
	for x := 0; x < w; x++ {
		idx := 0
		if len(prices) > 1 && w > 1 {
			idx = x * (len(prices) - 1) / (w - 1)
		}
		y := yOf(prices[idx])
		// vertical fill keeps steep moves connected
		from, to := min(prevY, y), max(prevY, y)
		for yy := from; yy <= to; yy++ {
			panel.SetNRGBA(x, yy, ink)
		}
		prevY = y
	}
	return panel
}
