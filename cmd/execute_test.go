package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EMinsight/NumBAT/sim/adapter"
	"github.com/EMinsight/NumBAT/sim/campaign"
	"github.com/EMinsight/NumBAT/sim/store"
)

const smallCampaign = `
name: cli-test
parameter: {name: width, unit: nm, min: 300, max: 400, count: 4}
workers: 2
geometry:
  wavelength_nm: 1550
  unit_cell_factor: 2.5
  reference_width_nm: 315
  aspect_ratio: 0.9
  background: Air
  core: Si
  core_index: 3.48
mesh: {background: 2, boundary: 1000, core: 10}
solver: {em_modes: 2, ac_modes: 6}
synthesis:
  freq_min: 10
  freq_max: 40
  grid_points: 200
  detuning_range: 5
  detuning_steps: 200
output:
  store: STORE
  plot: scan.svg
  csv: scan.csv
`

func writeCampaign(t *testing.T, storeKind string) (cfgPath, outRoot string) {
	t.Helper()
	dir := t.TempDir()
	outRoot = filepath.Join(dir, "results")
	body := smallCampaign + "  dir: " + outRoot + "\n"
	body = strings.ReplaceAll(body, "STORE", storeKind)
	cfgPath = filepath.Join(dir, "campaign.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))
	return cfgPath, outRoot
}

func TestExecute_RunWritesStoreAndRenders(t *testing.T) {
	// GIVEN a small analytic campaign with a files store
	cfgPath, outRoot := writeCampaign(t, store.KindFiles)

	// WHEN it runs
	res, outDir, err := execute(context.Background(), options{configPath: cfgPath})
	require.NoError(t, err)

	// THEN the run directory holds the snapshot, the plot and the table
	assert.Equal(t, outRoot, filepath.Dir(outDir))
	for _, name := range []string{store.HeaderFile, store.ModesFile, "scan.svg", "scan.csv"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
	rows, cols := res.Surface.Dims()
	assert.Equal(t, 200, rows)
	assert.Equal(t, 4, cols)
	assert.Len(t, res.EffectiveIndices, 4)
}

func TestExecute_ReplayReproducesSurface(t *testing.T) {
	for _, kind := range []string{store.KindFiles, store.KindSQLite} {
		t.Run(kind, func(t *testing.T) {
			// GIVEN a completed run saved to the store
			cfgPath, _ := writeCampaign(t, kind)
			original, outDir, err := execute(context.Background(), options{configPath: cfgPath})
			require.NoError(t, err)

			// WHEN it is replayed from the run directory
			replayed, replayDir, err := execute(context.Background(), options{configPath: cfgPath, replayFrom: outDir})
			require.NoError(t, err)

			// THEN the surface is bitwise identical and lands in a new directory
			assert.True(t, original.Surface.Equal(replayed.Surface))
			assert.NotEqual(t, outDir, replayDir)
			assert.NotEqual(t, original.ID, replayed.ID)
		})
	}
}

func TestExecute_ReplayWithoutSavedResults(t *testing.T) {
	cfgPath, _ := writeCampaign(t, store.KindNone)
	_, _, err := execute(context.Background(), options{configPath: cfgPath, replayFrom: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no saved results")
}

func TestExecute_WorkersFlagOverridesFileAndEnv(t *testing.T) {
	t.Setenv(EnvWorkers, "")
	cfgPath, _ := writeCampaign(t, store.KindNone)
	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("NUMBAT_WORKERS=3\n"), 0o644))

	cfg, err := prepareConfig(options{configPath: cfgPath, envFile: envPath})
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)

	cfg, err = prepareConfig(options{configPath: cfgPath, envFile: envPath, workers: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Workers)
}

func TestPrepareConfig_ShippedCampaigns(t *testing.T) {
	t.Setenv(EnvWorkers, "")
	t.Setenv(EnvSolverCmd, "")
	for _, tc := range []struct {
		file  string
		name  string
		count int
		store string
	}{
		{file: "width_scan.yaml", name: "si-width-scan", count: 6, store: store.KindFiles},
		{file: "beugnot_scan.yaml", name: "beugnot-width-scan", count: 300, store: store.KindSQLite},
	} {
		t.Run(tc.file, func(t *testing.T) {
			// GIVEN a shipped campaign file and no env overrides
			opts := options{
				configPath: filepath.Join("..", "campaigns", tc.file),
				envFile:    filepath.Join(t.TempDir(), ".env"),
			}

			// WHEN it is prepared the way the run command does
			cfg, err := prepareConfig(opts)
			require.NoError(t, err)

			// THEN it validates and builds a campaign ready to dispatch
			assert.Equal(t, tc.name, cfg.Name)
			assert.Equal(t, tc.count, cfg.Parameter.Count)
			assert.Equal(t, tc.store, cfg.Output.Store)
			ad, err := adapter.New(cfg.Adapter)
			require.NoError(t, err)
			c, err := campaign.New(cfg, ad)
			require.NoError(t, err)
			assert.Len(t, c.Points(), tc.count)
		})
	}
}

func TestExecute_InvalidConfigFailsBeforeRunning(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("name: x\nfailure_policy: retry\n"), 0o644))

	_, _, err := execute(context.Background(), options{configPath: cfgPath})
	require.Error(t, err)
	assert.Contains(t, describe(err), "[configuration]")
}
