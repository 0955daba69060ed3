// Package campaign drives a complete parametric scan: it sweeps the solver
// over every parameter point, synthesizes one spectrum per point on a shared
// grid, stacks them into a surface and hands the surface to renderers.
//
// A Campaign is a one-shot state machine:
//
//	configured → dispatched → collecting → synthesizing → assembled → done
//
// with failed reachable from dispatched, collecting and synthesizing, and
// configured → synthesizing for replays of stored results.
package campaign

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/EMinsight/NumBAT/sim"
	"github.com/EMinsight/NumBAT/sim/scan"
	"github.com/EMinsight/NumBAT/sim/spectrum"
	"github.com/EMinsight/NumBAT/sim/store"
	"github.com/EMinsight/NumBAT/sim/sweep"
	"github.com/EMinsight/NumBAT/sim/trace"
)

// State is a campaign lifecycle state.
type State string

const (
	StateConfigured   State = "configured"
	StateDispatched   State = "dispatched"
	StateCollecting   State = "collecting"
	StateSynthesizing State = "synthesizing"
	StateAssembled    State = "assembled"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

var validTransitions = map[State][]State{
	StateConfigured:   {StateDispatched, StateSynthesizing},
	StateDispatched:   {StateCollecting, StateFailed},
	StateCollecting:   {StateSynthesizing, StateFailed},
	StateSynthesizing: {StateAssembled, StateFailed},
	StateAssembled:    {StateDone},
}

// ErrIllegalTransition is wrapped by every rejected state change.
var ErrIllegalTransition = errors.New("illegal campaign state transition")

// Error reports the state a campaign failed in and, when known, the index
// of the configuration responsible.
type Error struct {
	State State
	Index int // -1 when no single configuration is responsible
	Err   error
}

func (e *Error) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("campaign failed while %s: %v", e.State, e.Err)
	}
	return fmt.Sprintf("campaign failed while %s at configuration %d: %v", e.State, e.Index, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Renderer consumes an assembled surface. Errors are logged, never fatal.
type Renderer interface {
	Render(s *scan.Surface, meta scan.AxisMeta) error
}

// DroppedColumn is a configuration excluded under PolicyDropColumn.
type DroppedColumn struct {
	Index int
	Value float64
	Err   error
}

// Result is the outcome of a successful campaign.
type Result struct {
	ID               string
	Surface          *scan.Surface
	Results          []sim.RawResult // every raw result, in point order, dropped columns included
	Dropped          []DroppedColumn
	EffectiveIndices []float64 // n_eff of each raw result, in point order
}

// Option configures a Campaign.
type Option func(*Campaign)

// WithID overrides the generated campaign ID.
func WithID(id string) Option { return func(c *Campaign) { c.id = id } }

// WithStore saves the raw results after collection.
func WithStore(st store.Store) Option { return func(c *Campaign) { c.store = st } }

// WithRenderers adds renderers run after assembly.
func WithRenderers(r ...Renderer) Option {
	return func(c *Campaign) { c.renderers = append(c.renderers, r...) }
}

// Campaign runs one scan. It is not reusable: Run or Replay may be called once.
type Campaign struct {
	id        string
	cfg       Config
	points    []sim.ParameterPoint
	grid      []float64
	driver    *sweep.Driver
	synth     *spectrum.Synthesizer
	adapter   sim.SimulationAdapter
	store     store.Store
	renderers []Renderer
	trace     *trace.CampaignTrace

	wavelengthNM float64 // used for effective indices

	mu    sync.Mutex
	state State
}

// New validates cfg, builds every per-point configuration and prepares the
// synthesis grid. Any ConfigurationError is returned here, before dispatch.
func New(cfg *Config, adapter sim.SimulationAdapter, opts ...Option) (*Campaign, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	points, err := cfg.Parameter.Points()
	if err != nil {
		return nil, err
	}
	grid, err := spectrum.FrequencyGrid(cfg.Synthesis.FreqMin, cfg.Synthesis.FreqMax, cfg.Synthesis.GridPoints)
	if err != nil {
		return nil, err
	}
	synth, err := spectrum.NewSynthesizer(cfg.Synthesis.Config)
	if err != nil {
		return nil, err
	}

	c := &Campaign{
		id:      xid.New().String(),
		cfg:     *cfg,
		points:  points,
		grid:    grid,
		synth:   synth,
		adapter: adapter,
		trace:   trace.NewCampaignTrace(cfg.Trace),
		state:   StateConfigured,

		wavelengthNM: cfg.Geometry.WavelengthNM,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.driver, err = sweep.NewDriver(cfg.BaseConfig, cfg.Workers, sweep.WithObserver(&observer{c: c}))
	if err != nil {
		return nil, err
	}
	if _, err := c.driver.Configurations(points); err != nil {
		return nil, err
	}
	return c, nil
}

// ID returns the campaign ID.
func (c *Campaign) ID() string { return c.id }

// State returns the current state.
func (c *Campaign) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Trace returns the campaign's trace.
func (c *Campaign) Trace() *trace.CampaignTrace { return c.trace }

// Points returns the swept parameter points.
func (c *Campaign) Points() []sim.ParameterPoint {
	return append([]sim.ParameterPoint(nil), c.points...)
}

func (c *Campaign) transition(to State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, next := range validTransitions[c.state] {
		if next == to {
			logrus.Debugf("[campaign %s] %s -> %s", c.id, c.state, to)
			c.trace.RecordTransition(string(c.state), string(to))
			c.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, c.state, to)
}

// fail moves to StateFailed and wraps err with the state it happened in.
func (c *Campaign) fail(index int, err error) error {
	from := c.State()
	if terr := c.transition(StateFailed); terr != nil {
		return errors.Join(err, terr)
	}
	logrus.Debugf("[campaign %s] failed while %s: %v", c.id, from, err)
	return &Error{State: from, Index: index, Err: err}
}

// observer forwards sweep progress to the trace and moves the campaign to
// collecting once every configuration has been handed to a worker.
type observer struct {
	c *Campaign
}

func (o *observer) TaskStarted(cfg sim.Configuration) { o.c.trace.TaskStarted(cfg) }

func (o *observer) TaskFinished(cfg sim.Configuration, res sim.RawResult, elapsed time.Duration, err error) {
	o.c.trace.TaskFinished(cfg, res, elapsed, err)
}

func (o *observer) AllDispatched(n int) {
	o.c.trace.AllDispatched(n)
	if err := o.c.transition(StateCollecting); err != nil {
		logrus.Warnf("[campaign %s] %v", o.c.id, err)
	}
}

// Run sweeps every point through the adapter, saves the raw results when a
// store is attached, then synthesizes, assembles and renders.
func (c *Campaign) Run(ctx context.Context) (*Result, error) {
	if err := c.transition(StateDispatched); err != nil {
		return nil, err
	}
	logrus.Infof("[campaign %s] %s: sweeping %d points of %s", c.id, c.cfg.Name, len(c.points), c.cfg.Parameter.Name)

	results, err := c.driver.Run(ctx, c.points, c.adapter)
	if err != nil {
		index := -1
		var simErr *sim.SimulationError
		if errors.As(err, &simErr) {
			index = simErr.Index
		}
		return nil, c.fail(index, err)
	}

	if c.store != nil {
		if err := c.store.Save(c.Snapshot(results)); err != nil {
			logrus.Warnf("[campaign %s] saving raw results: %v", c.id, err)
		} else {
			logrus.Infof("[campaign %s] saved %d raw results", c.id, len(results))
		}
	}
	return c.finish(ctx, results)
}

// Replay synthesizes and assembles previously collected results without
// running the adapter. Points are taken from the results and effective
// indices use the wavelength the results were simulated at.
func (c *Campaign) Replay(ctx context.Context, snap store.Snapshot) (*Result, error) {
	if err := c.transition(StateSynthesizing); err != nil {
		return nil, err
	}
	results := snap.Results
	if len(results) == 0 {
		return nil, c.fail(-1, &sim.ConfigurationError{Field: "results", Reason: "nothing to replay"})
	}
	for i, r := range results {
		if r.Index != i {
			return nil, c.fail(i, &sim.ConfigurationError{Field: fmt.Sprintf("results[%d]", i), Reason: fmt.Sprintf("index %d out of order", r.Index)})
		}
	}
	if w := snap.Header.WavelengthNM; w > 0 {
		if w != c.wavelengthNM {
			logrus.Warnf("[campaign %s] stored results were simulated at %gnm, config says %gnm; using %gnm",
				c.id, w, c.wavelengthNM, w)
		}
		c.wavelengthNM = w
	}
	if hp := snap.Header.Parameter; hp != (sim.SweepRange{}) && hp != c.cfg.Parameter {
		logrus.Warnf("[campaign %s] stored sweep %+v differs from config %+v; replaying the stored points",
			c.id, hp, c.cfg.Parameter)
	}
	logrus.Infof("[campaign %s] replaying %d stored results", c.id, len(results))
	return c.assemble(ctx, results)
}

// Snapshot packages results with this campaign's header.
func (c *Campaign) Snapshot(results []sim.RawResult) store.Snapshot {
	return store.Snapshot{
		Header: store.Header{
			ID:           c.id,
			Name:         c.cfg.Name,
			CreatedAt:    time.Now().UTC().Format(time.RFC3339),
			Parameter:    c.cfg.Parameter,
			WavelengthNM: c.cfg.Geometry.WavelengthNM,
		},
		Results: results,
	}
}

func (c *Campaign) finish(ctx context.Context, results []sim.RawResult) (*Result, error) {
	if err := c.transition(StateSynthesizing); err != nil {
		return nil, err
	}
	return c.assemble(ctx, results)
}

// assemble runs in StateSynthesizing and ends in StateDone or StateFailed.
func (c *Campaign) assemble(ctx context.Context, results []sim.RawResult) (*Result, error) {
	spectra, errs := c.synthesizeAll(ctx, results)

	var (
		kept      []sim.Spectrum
		keptIndex []int
		keptPts   []sim.ParameterPoint
		dropped   []DroppedColumn
	)
	for j, err := range errs {
		if err == nil {
			kept = append(kept, spectra[j])
			keptIndex = append(keptIndex, j)
			keptPts = append(keptPts, results[j].Point)
			continue
		}
		var synErr *sim.SynthesisError
		if c.cfg.FailurePolicy != PolicyDropColumn || !errors.As(err, &synErr) {
			return nil, c.fail(j, err)
		}
		logrus.Warnf("[campaign %s] dropping configuration %d (%g): %v", c.id, j, results[j].Point.Value, err)
		c.trace.RecordDrop(trace.DropRecord{Index: j, Value: results[j].Point.Value, Reason: err.Error()})
		dropped = append(dropped, DroppedColumn{Index: j, Value: results[j].Point.Value, Err: err})
	}
	if len(kept) == 0 {
		return nil, c.fail(-1, &sim.AssemblyError{Column: -1, Reason: "every column was dropped"})
	}

	surface, err := scan.Assemble(kept, keptPts)
	if err != nil {
		index := -1
		var asmErr *sim.AssemblyError
		if errors.As(err, &asmErr) && asmErr.Column >= 0 {
			index = keptIndex[asmErr.Column]
		}
		return nil, c.fail(index, err)
	}
	if err := c.transition(StateAssembled); err != nil {
		return nil, err
	}
	rows, cols := surface.Dims()
	logrus.Infof("[campaign %s] assembled %dx%d surface (%d dropped)", c.id, rows, cols, len(dropped))

	meta := c.cfg.AxisMeta()
	for _, r := range c.renderers {
		if err := r.Render(surface, meta); err != nil {
			logrus.Warnf("[campaign %s] renderer %T: %v", c.id, r, err)
		}
	}
	if err := c.transition(StateDone); err != nil {
		return nil, err
	}

	nEff := make([]float64, len(results))
	for i, r := range results {
		nEff[i] = r.EffectiveIndex(c.wavelengthNM)
	}
	return &Result{ID: c.id, Surface: surface, Results: results, Dropped: dropped, EffectiveIndices: nEff}, nil
}

// synthesizeAll builds every column independently. errs[j] is the error of
// column j, so the lowest failing index is reported whatever the scheduling.
func (c *Campaign) synthesizeAll(ctx context.Context, results []sim.RawResult) ([]sim.Spectrum, []error) {
	spectra := make([]sim.Spectrum, len(results))
	errs := make([]error, len(results))
	var g errgroup.Group
	g.SetLimit(c.cfg.Workers)
	for j, raw := range results {
		j, raw := j, raw
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[j] = err
				return nil
			}
			spectra[j], errs[j] = c.synth.Synthesize(raw, c.grid, c.cfg.Synthesis.Modes)
			return nil
		})
	}
	_ = g.Wait()
	return spectra, errs
}
