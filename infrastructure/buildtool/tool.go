// Package buildtool invokes the external build command for a prepared
// workspace and relays its exit code.
package buildtool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/buildforge/config"
	"github.com/rios0rios0/buildforge/domain"
)

// ExecTool runs the configured build command as a subprocess. The tool's
// output streams straight to the orchestrator's stdout and stderr so build
// logs stay visible while a run is in progress.
type ExecTool struct {
	command string
	timeout time.Duration
}

// NewExecTool returns a tool bound to the configured command.
func NewExecTool(cfg *config.Config) *ExecTool {
	return &ExecTool{command: cfg.BuildTool, timeout: cfg.CommandTimeout.Std()}
}

// Run executes the build command inside the source directory. The exit code
// of a tool that ran to completion is returned as a value, never as an
// error; errors are reserved for tools that could not run at all.
func (t *ExecTool) Run(ctx context.Context, inv domain.Invocation) (int, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	args := []string{
		"-i", inv.SourceDir,
		"-o", inv.BuildDir,
		"-r", inv.FullName,
		"-b", inv.RefName,
		"-c", inv.CommitSHA,
	}
	if inv.ReportPath != "" {
		args = append(args, "-O", inv.ReportPath)
	}
	args = append(args, inv.ConfigFile)

	cmd := exec.CommandContext(ctx, t.command, args...)
	cmd.Dir = inv.SourceDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	logger.Infof("[build] %s %s", t.command, strings.Join(args, " "))

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ctx.Err() != nil {
			return -1, fmt.Errorf("build tool timed out: %w", ctx.Err())
		}
		if code := exitErr.ExitCode(); code >= 0 {
			return code, nil
		}
		return -1, fmt.Errorf("build tool terminated abnormally: %w", err)
	}
	return -1, fmt.Errorf("failed to start the build tool: %w", err)
}
