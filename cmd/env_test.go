package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EMinsight/NumBAT/sim"
	"github.com/EMinsight/NumBAT/sim/adapter"
	"github.com/EMinsight/NumBAT/sim/campaign"
)

func TestReadEnv_MissingFileIsEmpty(t *testing.T) {
	t.Setenv(EnvWorkers, "")
	t.Setenv(EnvSolverCmd, "")
	values, err := readEnv(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestReadEnv_ProcessEnvironmentWins(t *testing.T) {
	// GIVEN a .env file and a conflicting process variable
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NUMBAT_WORKERS=2\nNUMBAT_SOLVER_CMD=python3 solve.py\n"), 0o644))
	t.Setenv(EnvWorkers, "7")
	t.Setenv(EnvSolverCmd, "")

	// WHEN read
	values, err := readEnv(path)
	require.NoError(t, err)

	// THEN the process value overrides the file, unset ones fall back to it
	assert.Equal(t, "7", values[EnvWorkers])
	assert.Equal(t, "python3 solve.py", values[EnvSolverCmd])
}

func TestApplyEnv_SolverCommandSelectsExecAdapter(t *testing.T) {
	cfg := &campaign.Config{Workers: 1}
	err := applyEnv(cfg, map[string]string{EnvSolverCmd: "./solver --fem", EnvWorkers: "4"})
	require.NoError(t, err)

	assert.Equal(t, adapter.KindExec, cfg.Adapter.Kind)
	assert.Equal(t, "./solver --fem", cfg.Adapter.Command)
	assert.Equal(t, 4, cfg.Workers)
}

func TestApplyEnv_RejectsBadWorkerCount(t *testing.T) {
	for _, v := range []string{"0", "-2", "many"} {
		err := applyEnv(&campaign.Config{}, map[string]string{EnvWorkers: v})
		var cfgErr *sim.ConfigurationError
		require.True(t, errors.As(err, &cfgErr), "value %q", v)
		assert.Equal(t, EnvWorkers, cfgErr.Field)
	}
}
