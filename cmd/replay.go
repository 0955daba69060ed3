package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/EMinsight/NumBAT/sim/store"
)

var replayFrom string

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Re-synthesize and re-render a scan from saved raw results",
	Long:  "Load the raw results saved by an earlier run (files or sqlite store) and rebuild the surface with the synthesis and output settings of --config, without running the solver.",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		res, outDir, err := execute(ctx, options{configPath: configPath, envFile: envFile, workers: workersOverride, replayFrom: replayFrom})
		if err != nil {
			fatalf("Replay failed: %v", describe(err))
		}
		report(res, outDir)
	},
}

// loadSnapshot opens whichever store a previous run left in dir.
func loadSnapshot(dir string) (store.Snapshot, error) {
	var st store.Store
	switch {
	case exists(filepath.Join(dir, store.HeaderFile)):
		f, err := store.NewFiles(dir)
		if err != nil {
			return store.Snapshot{}, err
		}
		st = f
	case exists(filepath.Join(dir, store.DatabaseFile)):
		db, err := store.NewSQLite(dir)
		if err != nil {
			return store.Snapshot{}, err
		}
		st = db
	default:
		return store.Snapshot{}, fmt.Errorf("no saved results in %s", dir)
	}
	defer func() { _ = st.Close() }()
	return st.Load()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}

func init() {
	replayCmd.Flags().StringVar(&replayFrom, "from", "", "Directory of a previous run")
	_ = replayCmd.MarkFlagRequired("from")

	rootCmd.AddCommand(replayCmd)
}
