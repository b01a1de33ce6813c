// Package gitexec runs git as a subprocess with a fixed working directory.
// It is purely mechanical: one call, one command, captured output. Retry
// policy lives in WithRetry so callers decide what is worth repeating.
package gitexec

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
)

// Runner executes git commands inside one directory. The directory is set
// on every command; the process working directory is never changed.
type Runner struct {
	gitPath string
	dir     string
	timeout time.Duration
}

// NewRunner resolves the git binary and returns a runner bound to dir.
// A zero timeout means commands run without a limit.
func NewRunner(dir string, timeout time.Duration) (*Runner, error) {
	p, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("no git executable found: %w", err)
	}
	return &Runner{gitPath: p, dir: dir, timeout: timeout}, nil
}

// RunResult holds the captured output of a completed git command.
type RunResult struct {
	Stdout string
	Stderr string
}

// Run executes a single git command and waits for it to finish.
func (r *Runner) Run(ctx context.Context, args ...string) (RunResult, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.gitPath, args...)
	cmd.Dir = r.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debugf("[git] %s (in %s)", strings.Join(args, " "), r.dir)

	if err := cmd.Run(); err != nil {
		return RunResult{}, &ExecError{
			Args:   args,
			Dir:    r.dir,
			Err:    err,
			Stdout: stdout.String(),
			Stderr: stderr.String(),
		}
	}

	return RunResult{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

// ExecError carries the full context of a failed git command.
type ExecError struct {
	Args   []string
	Dir    string
	Err    error
	Stdout string
	Stderr string
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if detail := strings.TrimSpace(e.Stderr); detail != "" {
		msg += ": " + detail
	}
	return msg
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// WithRetry runs fn and repeats it after backoff for up to retries extra
// attempts. A canceled context stops the waiting as well as the retries.
func WithRetry(ctx context.Context, retries int, backoff time.Duration, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || attempt >= retries {
			return err
		}
		logger.Warnf("[git] attempt %d failed: %v (retrying in %s)", attempt+1, err, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}
