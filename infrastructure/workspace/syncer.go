// Package workspace materializes ref working copies under the output root.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/buildforge/config"
	"github.com/rios0rios0/buildforge/domain"
	"github.com/rios0rios0/buildforge/infrastructure/gitexec"
)

const dirMode = 0o755

// Syncer brings each ref's source directory in line with the remote,
// preferring an in-place update and falling back to a fresh clone when the
// existing checkout cannot be salvaged.
type Syncer struct {
	root    string
	host    domain.Host
	timeout time.Duration
	retries int
	backoff time.Duration
}

// NewSyncer returns a syncer writing below the configured output root.
func NewSyncer(cfg *config.Config, host domain.Host) *Syncer {
	return &Syncer{
		root:    cfg.OutputDir,
		host:    host,
		timeout: cfg.CommandTimeout.Std(),
		retries: cfg.GitRetries,
		backoff: cfg.RetryBackoff.Std(),
	}
}

// Sync materializes the target's working copy and returns it as a
// workspace. A SyncError means the ref must be skipped; the run continues.
func (s *Syncer) Sync(ctx context.Context, target domain.TargetRef) (*domain.Workspace, error) {
	srcDir := filepath.Join(s.root, domain.SourcePath(target))

	if _, err := os.Stat(filepath.Join(srcDir, ".git")); err == nil {
		updateErr := s.update(ctx, target, srcDir)
		if updateErr == nil {
			logger.Infof("[sync] %s updated in place", target)
			return s.workspace(target, srcDir), nil
		}
		logger.Warnf("[sync] %s: in-place update failed, falling back to a fresh clone: %v", target, updateErr)
	}

	if err := s.clone(ctx, target, srcDir); err != nil {
		return nil, &domain.SyncError{Target: target, Err: err}
	}

	logger.Infof("[sync] %s cloned", target)
	return s.workspace(target, srcDir), nil
}

// update runs the salvage sequence on an existing checkout: drop local
// noise, refresh remote state, then pin the work tree to the ref. Every
// step is attempted even when an earlier one fails; the first failure
// decides the overall outcome.
func (s *Syncer) update(ctx context.Context, target domain.TargetRef, srcDir string) error {
	runner, err := gitexec.NewRunner(srcDir, s.timeout)
	if err != nil {
		return err
	}

	steps := [][]string{
		{"clean", "-fxd"},
		{"fetch", "--all"},
		{"fetch", "--tags"},
	}
	if target.Ref.Kind == domain.RefBranch {
		steps = append(steps, []string{"reset", "--hard", "origin/" + target.Ref.Name})
	} else {
		steps = append(steps, []string{"checkout", target.Ref.Name})
	}

	var firstErr error
	for _, args := range steps {
		if _, runErr := runner.Run(ctx, args...); runErr != nil {
			logger.Debugf("[sync] %s: git %s failed: %v", target, strings.Join(args, " "), runErr)
			if firstErr == nil {
				firstErr = runErr
			}
		}
	}
	return firstErr
}

// clone wipes the destination and clones the ref from scratch. Each retry
// starts from an empty directory again.
func (s *Syncer) clone(ctx context.Context, target domain.TargetRef, srcDir string) error {
	cloneURL := s.host.CloneURL(target.Repository)

	runner, err := gitexec.NewRunner(s.root, s.timeout)
	if err != nil {
		return err
	}

	attempt := func() error {
		if rmErr := os.RemoveAll(srcDir); rmErr != nil {
			return fmt.Errorf("failed to clear clone destination: %w", rmErr)
		}
		if mkErr := os.MkdirAll(filepath.Dir(srcDir), dirMode); mkErr != nil {
			return fmt.Errorf("failed to create ref directory: %w", mkErr)
		}
		_, runErr := runner.Run(ctx, "clone", "-b", target.Ref.Name, "-v", cloneURL, srcDir)
		return runErr
	}

	return gitexec.WithRetry(ctx, s.retries, s.backoff, attempt)
}

// workspace wraps the materialized checkout. HEAD inspection is best
// effort; a checkout that git produced but go-git cannot read is still
// usable for a build.
func (s *Syncer) workspace(target domain.TargetRef, srcDir string) *domain.Workspace {
	ws := &domain.Workspace{Target: target, SourceDir: srcDir}

	repo, err := git.PlainOpen(srcDir)
	if err != nil {
		logger.Warnf("[sync] %s: cannot inspect checkout: %v", target, err)
		return ws
	}
	head, err := repo.Head()
	if err != nil {
		logger.Warnf("[sync] %s: cannot resolve checkout HEAD: %v", target, err)
		return ws
	}

	ws.HeadSHA = head.Hash().String()
	if target.Ref.Kind == domain.RefBranch && ws.HeadSHA != target.Ref.CommitSHA {
		logger.Debugf(
			"[sync] %s: checkout sits at %s, discovery saw %s (branch moved since)",
			target, domain.ShortSHA(ws.HeadSHA), domain.ShortSHA(target.Ref.CommitSHA),
		)
	}
	return ws
}
