// Package render draws and exports assembled scan surfaces. Renderers never
// modify the surface they are given.
package render

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/EMinsight/NumBAT/sim"
	"github.com/EMinsight/NumBAT/sim/scan"
)

// surfaceGrid adapts a Surface to plotter.GridXYZ: columns are parameter
// values on X, rows are grid frequencies on Y.
type surfaceGrid struct {
	s      *scan.Surface
	grid   []float64
	values []float64
}

func newSurfaceGrid(s *scan.Surface) surfaceGrid {
	return surfaceGrid{s: s, grid: s.Grid(), values: sim.Values(s.Points())}
}

func (g surfaceGrid) Dims() (c, r int) {
	rows, cols := g.s.Dims()
	return cols, rows
}

func (g surfaceGrid) Z(c, r int) float64 { return g.s.At(r, c) }
func (g surfaceGrid) X(c int) float64    { return g.values[c] }
func (g surfaceGrid) Y(r int) float64    { return g.grid[r] }

// HeatMap draws the surface as a colour map. The output format follows the
// file extension (svg, pdf, png, eps, ...).
type HeatMap struct {
	Path    string
	Width   vg.Length
	Height  vg.Length
	Colours int // palette size
}

// NewHeatMap creates a HeatMap renderer with a 6x4 inch canvas.
func NewHeatMap(path string) *HeatMap {
	return &HeatMap{Path: path, Width: 6 * vg.Inch, Height: 4 * vg.Inch, Colours: 64}
}

// Plot builds the plot without saving it.
func (h *HeatMap) Plot(s *scan.Surface, meta scan.AxisMeta) *plot.Plot {
	p := plot.New()
	p.Title.Text = meta.Title
	p.X.Label.Text = meta.ParameterLabel
	p.Y.Label.Text = meta.FrequencyLabel

	hm := plotter.NewHeatMap(newSurfaceGrid(s), palette.Heat(h.Colours, 1))
	if hm.Max == hm.Min {
		// A flat surface would give the palette a zero-width range.
		hm.Max = hm.Min + 1
	}
	p.Add(hm)

	if meta.ReverseCols {
		p.X.Scale = plot.InvertedScale{Normalizer: p.X.Scale}
	}
	if meta.ReverseRows {
		p.Y.Scale = plot.InvertedScale{Normalizer: p.Y.Scale}
	}
	return p
}

// Render saves the plot to Path.
func (h *HeatMap) Render(s *scan.Surface, meta scan.AxisMeta) error {
	if h.Path == "" {
		return fmt.Errorf("heat map: no output path")
	}
	if err := os.MkdirAll(filepath.Dir(h.Path), 0o755); err != nil {
		return fmt.Errorf("heat map: %w", err)
	}
	if err := h.Plot(s, meta).Save(h.Width, h.Height, h.Path); err != nil {
		return fmt.Errorf("heat map: saving %s: %w", h.Path, err)
	}
	return nil
}
