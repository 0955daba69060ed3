package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/EMinsight/NumBAT/sim"
)

// Error kinds an external solver may report.
const (
	KindMesh        = "mesh"
	KindConvergence = "convergence"
	KindEigen       = "eigen"
)

var kindCauses = map[string]error{
	KindMesh:        sim.ErrMeshFailure,
	KindConvergence: sim.ErrNonConvergence,
	KindEigen:       sim.ErrEigenDecomposition,
}

// solverError is the failure payload of an external solver.
type solverError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// solverReply is what an external solver writes to stdout.
type solverReply struct {
	Result *sim.RawResult `json:"result,omitempty"`
	Error  *solverError   `json:"error,omitempty"`
}

// Exec runs an external solver once per configuration. The Configuration is
// written to the process's stdin as JSON; the process replies on stdout with
// {"result": RawResult} or {"error": {"kind": ..., "message": ...}}.
type Exec struct {
	command []string
}

// NewExec creates an Exec adapter for a command line such as
// "python3 solve_mode.py --backend fem".
func NewExec(command string) (*Exec, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, &sim.ConfigurationError{Field: "adapter.command", Reason: "empty solver command"}
	}
	return &Exec{command: fields}, nil
}

// Command returns the command line the adapter runs.
func (e *Exec) Command() []string { return append([]string(nil), e.command...) }

func (e *Exec) Simulate(ctx context.Context, cfg sim.Configuration) (sim.RawResult, error) {
	input, err := json.Marshal(cfg)
	if err != nil {
		return sim.RawResult{}, fmt.Errorf("encoding configuration %d: %w", cfg.Index, err)
	}

	cmd := exec.CommandContext(ctx, e.command[0], e.command[1:]...)
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logrus.Debugf("[exec] configuration %d: %s", cfg.Index, strings.Join(e.command, " "))
	runErr := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return sim.RawResult{}, ctxErr
	}

	var reply solverReply
	decodeErr := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &reply)
	if decodeErr == nil && reply.Error != nil {
		return sim.RawResult{}, classify(cfg.Index, *reply.Error)
	}
	if runErr != nil {
		return sim.RawResult{}, fmt.Errorf("solver for configuration %d: %w: %s", cfg.Index, runErr, strings.TrimSpace(stderr.String()))
	}
	if decodeErr != nil {
		return sim.RawResult{}, fmt.Errorf("decoding solver output for configuration %d: %w", cfg.Index, decodeErr)
	}
	if reply.Result == nil {
		return sim.RawResult{}, fmt.Errorf("solver for configuration %d: reply has neither result nor error", cfg.Index)
	}

	res := *reply.Result
	res.Index = cfg.Index
	res.Point = cfg.Point
	return res, nil
}

func classify(index int, se solverError) error {
	cause, ok := kindCauses[se.Kind]
	if !ok {
		return fmt.Errorf("solver for configuration %d: %s: %s", index, se.Kind, se.Message)
	}
	return fmt.Errorf("solver for configuration %d: %w: %s", index, cause, se.Message)
}

// IsSolverFailure reports whether err carries one of the classified solver causes.
func IsSolverFailure(err error) bool {
	for _, cause := range kindCauses {
		if errors.Is(err, cause) {
			return true
		}
	}
	return false
}
