package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/EMinsight/NumBAT/sim"
	"github.com/EMinsight/NumBAT/sim/adapter"
	"github.com/EMinsight/NumBAT/sim/campaign"
)

// Environment variables that override a campaign file.
const (
	EnvWorkers   = "NUMBAT_WORKERS"
	EnvSolverCmd = "NUMBAT_SOLVER_CMD"
)

// readEnv returns the NUMBAT_* settings from path, with variables already set
// in the process environment taking precedence. A missing file is not an error.
func readEnv(path string) (map[string]string, error) {
	values := map[string]string{}
	if path != "" {
		fileValues, err := godotenv.Read(path)
		switch {
		case err == nil:
			values = fileValues
			logrus.Debugf("Loaded %d variables from %s", len(fileValues), path)
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	for _, key := range []string{EnvWorkers, EnvSolverCmd} {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			values[key] = v
		}
	}
	return values, nil
}

// applyEnv layers environment overrides onto cfg.
func applyEnv(cfg *campaign.Config, env map[string]string) error {
	if v := env[EnvWorkers]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return &sim.ConfigurationError{Field: EnvWorkers, Reason: fmt.Sprintf("must be a positive integer, got %q", v)}
		}
		cfg.Workers = n
	}
	if v := env[EnvSolverCmd]; v != "" {
		cfg.Adapter.Kind = adapter.KindExec
		cfg.Adapter.Command = v
	}
	return nil
}
