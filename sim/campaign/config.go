package campaign

import (
	"bytes"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/cpu"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/EMinsight/NumBAT/sim"
	"github.com/EMinsight/NumBAT/sim/adapter"
	"github.com/EMinsight/NumBAT/sim/scan"
	"github.com/EMinsight/NumBAT/sim/spectrum"
	"github.com/EMinsight/NumBAT/sim/store"
	"github.com/EMinsight/NumBAT/sim/trace"
)

// FailurePolicy decides what a SynthesisError does to the campaign.
type FailurePolicy string

const (
	// PolicyAbort fails the campaign on the first degenerate mode.
	PolicyAbort FailurePolicy = "abort"
	// PolicyDropColumn excludes the offending configuration from the surface.
	PolicyDropColumn FailurePolicy = "drop-column"
)

// SynthesisConfig describes the shared frequency grid and how spectra are
// built on it.
type SynthesisConfig struct {
	FreqMin         float64 `yaml:"freq_min"`
	FreqMax         float64 `yaml:"freq_max"`
	GridPoints      int     `yaml:"grid_points"`
	spectrum.Config `yaml:",inline"`
	Modes           spectrum.ModeSelection `yaml:"modes"` // "all" or a list of mode indices
}

// OutputConfig controls where results go and how they are labelled.
type OutputConfig struct {
	Dir            string `yaml:"dir"`   // parent of the per-campaign directory
	Store          string `yaml:"store"` // files, sqlite or none
	Plot           string `yaml:"plot"`  // heat map file name; empty disables
	CSV            string `yaml:"csv"`   // surface table file name; empty disables
	Title          string `yaml:"title"`
	FrequencyLabel string `yaml:"frequency_label"`
	ParameterLabel string `yaml:"parameter_label"`
	ValueLabel     string `yaml:"value_label"`
	ReverseRows    bool   `yaml:"reverse_rows"`
	ReverseCols    bool   `yaml:"reverse_cols"`
}

// Config is a complete campaign description as read from YAML.
type Config struct {
	Name           string         `yaml:"name"`
	Parameter      sim.SweepRange `yaml:"parameter"`
	Workers        int            `yaml:"workers"` // 0 = one per physical core
	sim.BaseConfig `yaml:",inline"`
	Adapter        adapter.Config   `yaml:"adapter"`
	Synthesis      SynthesisConfig  `yaml:"synthesis"`
	FailurePolicy  FailurePolicy    `yaml:"failure_policy"`
	Trace          trace.TraceLevel `yaml:"trace"`
	Output         OutputConfig     `yaml:"output"`
}

// LoadConfig reads and parses a YAML campaign file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading campaign config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses a YAML campaign description.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing campaign config: %w", err)
	}
	return &cfg, nil
}

// DefaultWorkers returns the number of physical cores, falling back to the
// logical CPU count when the topology is unavailable.
func DefaultWorkers() int {
	n, err := cpu.Counts(false)
	if err != nil || n < 1 {
		logrus.Debugf("physical core count unavailable (%v), using %d logical CPUs", err, runtime.NumCPU())
		return runtime.NumCPU()
	}
	return n
}

// ApplyDefaults fills optional fields left at their zero value.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "scan"
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers()
	}
	c.BaseConfig.ApplyDefaults()
	c.Adapter.ApplyDefaults()

	s := &c.Synthesis
	if s.GridPoints == 0 {
		s.GridPoints = 2000
	}
	if s.DetuningRange == 0 {
		s.DetuningRange = 10
	}
	if s.DetuningSteps == 0 {
		s.DetuningSteps = 5000
	}
	if s.Workers == 0 {
		s.Workers = 1
	}

	if c.FailurePolicy == "" {
		c.FailurePolicy = PolicyAbort
	}
	if c.Trace == "" {
		c.Trace = trace.TraceLevelTasks
	}

	o := &c.Output
	if o.Dir == "" {
		o.Dir = "results"
	}
	if o.Store == "" {
		o.Store = store.KindFiles
	}
	if o.FrequencyLabel == "" {
		o.FrequencyLabel = "Frequency (GHz)"
	}
	if o.ParameterLabel == "" {
		o.ParameterLabel = c.parameterLabel()
	}
	if o.ValueLabel == "" {
		o.ValueLabel = "Gain"
	}
	if o.Title == "" {
		o.Title = c.Name
	}
}

func (c *Config) parameterLabel() string {
	name := c.Parameter.Name
	if name == "" {
		name = "parameter"
	}
	if c.Parameter.Unit == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, c.Parameter.Unit)
}

// Validate checks every section. It does not build per-point configurations;
// New does that before anything is dispatched.
func (c *Config) Validate() error {
	if err := c.Parameter.Validate(); err != nil {
		return err
	}
	if c.Workers < 1 {
		return &sim.ConfigurationError{Field: "workers", Reason: fmt.Sprintf("must be positive, got %d", c.Workers)}
	}
	if err := c.BaseConfig.Validate(); err != nil {
		return err
	}
	if err := c.Adapter.Validate(); err != nil {
		return err
	}
	if _, err := spectrum.FrequencyGrid(c.Synthesis.FreqMin, c.Synthesis.FreqMax, c.Synthesis.GridPoints); err != nil {
		return err
	}
	if err := c.Synthesis.Config.Validate(); err != nil {
		return err
	}
	if c.FailurePolicy != PolicyAbort && c.FailurePolicy != PolicyDropColumn {
		return &sim.ConfigurationError{Field: "failure_policy", Reason: fmt.Sprintf("unknown policy %q; valid: abort, drop-column", c.FailurePolicy)}
	}
	if !trace.IsValidTraceLevel(string(c.Trace)) {
		return &sim.ConfigurationError{Field: "trace", Reason: fmt.Sprintf("unknown level %q; valid: none, tasks", c.Trace)}
	}
	switch c.Output.Store {
	case store.KindFiles, store.KindSQLite, store.KindNone:
	default:
		return &sim.ConfigurationError{Field: "output.store", Reason: fmt.Sprintf("unknown store %q; valid: files, sqlite, none", c.Output.Store)}
	}
	for _, name := range []string{c.Output.Plot, c.Output.CSV} {
		if strings.ContainsRune(name, os.PathSeparator) {
			return &sim.ConfigurationError{Field: "output", Reason: fmt.Sprintf("%q must be a file name inside the campaign directory", name)}
		}
	}
	return nil
}

// AxisMeta returns the presentation metadata for renderers.
func (c *Config) AxisMeta() scan.AxisMeta {
	return scan.AxisMeta{
		Title:          c.Output.Title,
		FrequencyLabel: c.Output.FrequencyLabel,
		ParameterLabel: c.Output.ParameterLabel,
		ValueLabel:     c.Output.ValueLabel,
		ReverseRows:    c.Output.ReverseRows,
		ReverseCols:    c.Output.ReverseCols,
	}
}
