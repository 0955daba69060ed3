package render

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"

	"github.com/EMinsight/NumBAT/sim"
	"github.com/EMinsight/NumBAT/sim/scan"
)

func testSurface(t *testing.T) *scan.Surface {
	t.Helper()
	grid := []float64{10, 12.5, 15}
	s, err := scan.Assemble([]sim.Spectrum{
		{Grid: grid, Values: []float64{0, 1, 0}},
		{Grid: grid, Values: []float64{0.25, 0.5, 2}},
	}, []sim.ParameterPoint{{Index: 0, Value: 300}, {Index: 1, Value: 400}})
	require.NoError(t, err)
	return s
}

func TestHeatMap_SavesByExtension(t *testing.T) {
	s := testSurface(t)
	for _, ext := range []string{"svg", "png", "pdf"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "plots", "scan."+ext)
			err := NewHeatMap(path).Render(s, scan.AxisMeta{Title: "gain", ParameterLabel: "Width (nm)", FrequencyLabel: "Frequency (GHz)"})
			require.NoError(t, err)
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
		})
	}
}

func TestSurfaceGrid_MapsParameterToXAndFrequencyToY(t *testing.T) {
	g := newSurfaceGrid(testSurface(t))

	c, r := g.Dims()
	assert.Equal(t, 2, c)
	assert.Equal(t, 3, r)
	assert.Equal(t, 300.0, g.X(0))
	assert.Equal(t, 400.0, g.X(1))
	assert.Equal(t, 12.5, g.Y(1))
	assert.Equal(t, 2.0, g.Z(1, 2))
}

func TestHeatMap_UnknownExtensionFails(t *testing.T) {
	err := NewHeatMap(filepath.Join(t.TempDir(), "scan.xyz")).Render(testSurface(t), scan.AxisMeta{})
	assert.Error(t, err)
}

func TestHeatMap_ReversalInvertsAxesOnly(t *testing.T) {
	// GIVEN a surface rendered with a reversed frequency axis
	s := testSurface(t)
	before := s.Column(1)

	p := NewHeatMap("unused.svg").Plot(s, scan.AxisMeta{ReverseRows: true})

	// THEN the Y axis is inverted, X is not, and the surface is untouched
	assert.IsType(t, plot.InvertedScale{}, p.Y.Scale)
	assert.IsType(t, plot.LinearScale{}, p.X.Scale)
	assert.Equal(t, before, s.Column(1))
	assert.Equal(t, 1.0, s.At(1, 0))
}

func TestHeatMap_FlatSurfaceRenders(t *testing.T) {
	grid := []float64{1, 2}
	s, err := scan.Assemble([]sim.Spectrum{{Grid: grid, Values: []float64{0, 0}}},
		[]sim.ParameterPoint{{Value: 350}})
	require.NoError(t, err)

	err = NewHeatMap(filepath.Join(t.TempDir(), "flat.svg")).Render(s, scan.AxisMeta{})
	assert.NoError(t, err)
}

func TestCSV_WritesDisplayOrder(t *testing.T) {
	// GIVEN a CSV export with reversed rows
	path := filepath.Join(t.TempDir(), "scan.csv")
	s := testSurface(t)

	// WHEN rendered
	require.NoError(t, NewCSV(path).Render(s, scan.AxisMeta{ReverseRows: true, FrequencyLabel: "f_GHz"}))

	// THEN the header lists parameter values and rows run from high to low frequency
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"f_GHz", "300", "400"}, records[0])
	assert.Equal(t, []string{"15", "0", "2"}, records[1])
	assert.Equal(t, []string{"12.5", "1", "0.5"}, records[2])
	assert.Equal(t, []string{"10", "0", "0.25"}, records[3])
}
