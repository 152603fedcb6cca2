// Package process executes commands as local OS processes, capturing their
// combined output to files. It plugs into the memory orchestrator as its
// Executor, which keeps lifecycle bookkeeping in one place.
package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/orchestra-dev/podium/internal/logging"
	"github.com/orchestra-dev/podium/pkg/domain"
)

// Executor runs command definitions as subprocesses.
type Executor struct {
	baseDir   string
	outputDir string
	env       []string
	logger    *slog.Logger
}

// Option configures the Executor.
type Option func(*Executor)

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) Option {
	return func(e *Executor) {
		e.baseDir = dir
	}
}

// WithOutputDir sets where run output files are written. Defaults to the
// system temp directory.
func WithOutputDir(dir string) Option {
	return func(e *Executor) {
		e.outputDir = dir
	}
}

// WithEnv appends extra environment variables (KEY=VALUE form).
func WithEnv(env []string) Option {
	return func(e *Executor) {
		e.env = append(e.env, env...)
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor creates a process executor.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		outputDir: os.TempDir(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the command to completion, streaming combined output to a
// per-run file. Context cancellation kills the process and surfaces as
// context.Canceled so the engine records the run as cancelled.
func (e *Executor) Execute(ctx context.Context, def domain.CommandDefinition) (string, error) {
	if def.Command == "" {
		return "", fmt.Errorf("command %q has no executable configured", def.Name)
	}

	outPath := filepath.Join(e.outputDir, fmt.Sprintf("%s-%d.log", sanitizeName(def.Name), time.Now().UnixNano()))
	outFile, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer outFile.Close()

	cmd := exec.CommandContext(ctx, def.Command, def.Args...)
	cmd.Dir = e.baseDir
	cmd.Stdout = outFile
	cmd.Stderr = outFile
	if len(e.env) > 0 {
		cmd.Env = append(os.Environ(), e.env...)
	}

	e.logger.Debug("executing", "command", def.Name, "exe", def.Command, "output", outPath)

	err = cmd.Run()
	if ctx.Err() != nil {
		return outPath, context.Canceled
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return outPath, fmt.Errorf("%s exited with code %d", def.Name, exitErr.ExitCode())
		}
		return outPath, fmt.Errorf("failed to run %s: %w", def.Name, err)
	}
	return outPath, nil
}

func sanitizeName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
