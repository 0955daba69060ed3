package adapter

import (
	"fmt"

	"github.com/EMinsight/NumBAT/sim"
)

// Adapter kinds.
const (
	KindAnalytic = "analytic"
	KindExec     = "exec"
)

// Config selects and parameterizes the adapter of a campaign.
type Config struct {
	Kind     string         `yaml:"kind"`
	Command  string         `yaml:"command"`
	Analytic AnalyticConfig `yaml:"analytic"`
}

// ApplyDefaults selects the analytic model when no kind is given.
func (c *Config) ApplyDefaults() {
	if c.Kind == "" {
		c.Kind = KindAnalytic
	}
	c.Analytic.ApplyDefaults()
}

// Validate checks the selected adapter's settings only.
func (c Config) Validate() error {
	switch c.Kind {
	case KindAnalytic:
		return c.Analytic.Validate()
	case KindExec:
		if c.Command == "" {
			return &sim.ConfigurationError{Field: "adapter.command", Reason: "required when kind is exec"}
		}
		return nil
	default:
		return &sim.ConfigurationError{Field: "adapter.kind", Reason: fmt.Sprintf("unknown adapter %q; valid: analytic, exec", c.Kind)}
	}
}

// New builds the adapter described by c.
func New(c Config) (sim.SimulationAdapter, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Kind == KindExec {
		e, err := NewExec(c.Command)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
	a, err := NewAnalytic(c.Analytic)
	if err != nil {
		return nil, err
	}
	return a, nil
}
