package scan

// AxisMeta is the presentation metadata handed to renderers with a Surface.
type AxisMeta struct {
	Title          string
	FrequencyLabel string // e.g. "Frequency (GHz)"
	ParameterLabel string // e.g. "Width (nm)"
	ValueLabel     string // e.g. "Gain (1/Wm)"
	ReverseRows    bool   // draw the frequency axis from high to low
	ReverseCols    bool   // draw the parameter axis from high to low
}

// View presents a Surface with optional row and column reversal. It maps
// indices only; the underlying Surface is shared and unchanged.
type View struct {
	s           *Surface
	reverseRows bool
	reverseCols bool
}

// NewView wraps s with the reversal flags of meta.
func NewView(s *Surface, meta AxisMeta) View {
	return View{s: s, reverseRows: meta.ReverseRows, reverseCols: meta.ReverseCols}
}

// Surface returns the underlying surface.
func (v View) Surface() *Surface { return v.s }

// Dims returns the same shape as the surface.
func (v View) Dims() (rows, cols int) { return v.s.Dims() }

func (v View) row(i int) int {
	if v.reverseRows {
		r, _ := v.s.Dims()
		return r - 1 - i
	}
	return i
}

func (v View) col(j int) int {
	if v.reverseCols {
		_, c := v.s.Dims()
		return c - 1 - j
	}
	return j
}

// At returns the value at display row i and display column j.
func (v View) At(i, j int) float64 { return v.s.At(v.row(i), v.col(j)) }

// Frequency returns the grid frequency of display row i.
func (v View) Frequency(i int) float64 { return v.s.grid[v.row(i)] }

// Parameter returns the swept value of display column j.
func (v View) Parameter(j int) float64 { return v.s.points[v.col(j)].Value }

// FrequencyRange returns the lowest and highest grid frequency.
func (s *Surface) FrequencyRange() (lo, hi float64) {
	return s.grid[0], s.grid[len(s.grid)-1]
}

// ParameterRange returns the first and last swept values.
func (s *Surface) ParameterRange() (first, last float64) {
	return s.points[0].Value, s.points[len(s.points)-1].Value
}
