package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/EMinsight/NumBAT/sim"
	"github.com/EMinsight/NumBAT/sim/adapter"
	"github.com/EMinsight/NumBAT/sim/campaign"
	"github.com/EMinsight/NumBAT/sim/render"
	"github.com/EMinsight/NumBAT/sim/store"
	"github.com/EMinsight/NumBAT/sim/trace"
)

var (
	configPath      string // Campaign YAML file
	logLevel        string // Log verbosity level
	envFile         string // Optional .env file with NUMBAT_* overrides
	workersOverride int    // Overrides the campaign's worker count when > 0
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "numbat-scan",
	Short: "Parametric Brillouin gain scans over a waveguide design variable",
}

// runCmd sweeps the solver over every parameter point and assembles the scan
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scan campaign",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		res, outDir, err := execute(ctx, options{configPath: configPath, envFile: envFile, workers: workersOverride})
		if err != nil {
			fatalf("Campaign failed: %v", describe(err))
		}
		report(res, outDir)
	},
}

// fatalf logs and exits through atexit so registered cleanups run.
func fatalf(format string, args ...any) {
	logrus.Errorf(format, args...)
	atexit.Exit(1)
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// options are the resolved command-line inputs of one invocation.
type options struct {
	configPath string
	envFile    string
	workers    int
	replayFrom string // previous campaign directory; empty for a fresh run
}

// prepareConfig loads the campaign file and layers environment and flag
// overrides on top, in that order.
func prepareConfig(opts options) (*campaign.Config, error) {
	cfg, err := campaign.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	env, err := readEnv(opts.envFile)
	if err != nil {
		return nil, err
	}
	if err := applyEnv(cfg, env); err != nil {
		return nil, err
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// execute runs or replays one campaign and returns its result and output directory.
func execute(ctx context.Context, opts options) (*campaign.Result, string, error) {
	cfg, err := prepareConfig(opts)
	if err != nil {
		return nil, "", err
	}

	var snapshot store.Snapshot
	if opts.replayFrom != "" {
		snapshot, err = loadSnapshot(opts.replayFrom)
		if err != nil {
			return nil, "", err
		}
		logrus.Infof("Loaded %d results of campaign %s from %s", len(snapshot.Results), snapshot.Header.ID, opts.replayFrom)
	}

	ad, err := adapter.New(cfg.Adapter)
	if err != nil {
		return nil, "", err
	}

	id := xid.New().String()
	outDir := filepath.Join(cfg.Output.Dir, fmt.Sprintf("%s-%s", cfg.Name, id))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("creating output directory: %w", err)
	}

	campaignOpts := []campaign.Option{campaign.WithID(id)}
	if opts.replayFrom == "" {
		st, err := store.Open(cfg.Output.Store, outDir)
		if err != nil {
			return nil, "", err
		}
		if st != nil {
			atexit.Register(func() { _ = st.Close() })
			defer func() { _ = st.Close() }()
			campaignOpts = append(campaignOpts, campaign.WithStore(st))
		}
	}
	if cfg.Output.Plot != "" {
		campaignOpts = append(campaignOpts, campaign.WithRenderers(render.NewHeatMap(filepath.Join(outDir, cfg.Output.Plot))))
	}
	if cfg.Output.CSV != "" {
		campaignOpts = append(campaignOpts, campaign.WithRenderers(render.NewCSV(filepath.Join(outDir, cfg.Output.CSV))))
	}

	c, err := campaign.New(cfg, ad, campaignOpts...)
	if err != nil {
		return nil, "", err
	}

	var res *campaign.Result
	if opts.replayFrom != "" {
		res, err = c.Replay(ctx, snapshot)
	} else {
		res, err = c.Run(ctx)
	}
	summary := trace.Summarize(c.Trace())
	logrus.Infof("Trace: %d tasks (%d failed), %d modes, mean %v, p50 %v, p95 %v, slowest configuration %d (%v), %d dropped, final state %s",
		summary.TotalTasks, summary.FailedTasks, summary.TotalModes, summary.MeanElapsed, summary.P50Elapsed, summary.P95Elapsed,
		summary.SlowestIndex, summary.MaxElapsed, summary.DroppedCount, summary.FinalState)
	if err != nil {
		return nil, outDir, err
	}
	return res, outDir, nil
}

// describe adds the failing configuration and cause class to a campaign error.
func describe(err error) string {
	msg := err.Error()
	if adapter.IsSolverFailure(err) {
		msg += " [solver failure]"
	}
	var cfgErr *sim.ConfigurationError
	if errors.As(err, &cfgErr) {
		msg += " [configuration]"
	}
	return msg
}

func report(res *campaign.Result, outDir string) {
	rows, cols := res.Surface.Dims()
	logrus.Infof("Campaign %s complete: %dx%d surface written to %s", res.ID, rows, cols, outDir)
	for _, d := range res.Dropped {
		logrus.Warnf("Configuration %d (%g) dropped: %v", d.Index, d.Value, d.Err)
	}
	fmt.Printf("n_eff: %v\n", res.EffectiveIndices)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Campaign YAML file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Optional .env file with NUMBAT_WORKERS / NUMBAT_SOLVER_CMD overrides")
	rootCmd.PersistentFlags().IntVar(&workersOverride, "workers", 0, "Worker pool size (0 = from config)")
	_ = rootCmd.MarkPersistentFlagRequired("config")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
