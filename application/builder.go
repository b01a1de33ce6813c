package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/buildforge/config"
	"github.com/rios0rios0/buildforge/domain"
)

const dirMode = 0o755

// BuildRunner executes the build for one synced workspace and keeps the
// published commit status in step with the outcome.
type BuildRunner struct {
	host     domain.Host
	reporter *StatusReporter
	tool     domain.BuildTool
	cfg      *config.Config
}

// NewBuildRunner creates a runner around the configured build tool.
func NewBuildRunner(
	host domain.Host,
	reporter *StatusReporter,
	tool domain.BuildTool,
	cfg *config.Config,
) *BuildRunner {
	return &BuildRunner{host: host, reporter: reporter, tool: tool, cfg: cfg}
}

// Run takes a workspace through the whole build sequence: skip checks,
// build directory resolution, recipe lookup, the pending status, the tool
// invocation, artifact retention, and the terminal status. The status is
// never left at pending on any return path.
func (b *BuildRunner) Run(ctx context.Context, ws *domain.Workspace) (res domain.Result) {
	started := time.Now()
	defer func() { res.Duration = time.Since(started) }()

	target := ws.Target
	sha := target.Ref.CommitSHA
	res.Target = target

	if b.cfg.SkipIfLastSuccess {
		status, err := b.reporter.GetStatus(ctx, target.Repository, sha)
		var queryErr *domain.RemoteQueryError
		switch {
		case errors.As(err, &queryErr):
			// A commit with no status under our context also comes back as
			// an error; only an API failure is worth a warning.
			logger.Warnf("Cannot read the last status of %s, building anyway: %v", target, err)
		case err == nil && status == domain.StatusSuccess:
			logger.Infof(
				"Skipping %s: commit %s already built successfully",
				target, domain.ShortSHA(sha),
			)
			res.Status = domain.StatusSuccess
			res.Skipped = true
			res.Reason = "last build succeeded"
			return res
		}
	}

	// The tool runs inside the checkout, so every path on its argument
	// list must be absolute.
	srcDir, err := filepath.Abs(ws.SourceDir)
	if err != nil {
		res.Status = domain.StatusError
		res.Err = fmt.Errorf("failed to resolve the checkout directory: %w", err)
		return res
	}

	buildDir, reuse, err := b.resolveBuildDir(ctx, target)
	if err != nil {
		res.Status = domain.StatusError
		res.Err = err
		return res
	}
	if reuse {
		logger.Infof("Skipping %s: artifacts already present in %s", target, buildDir)
		res.Skipped = true
		res.Reason = "artifacts already present"
		return res
	}

	configFile, found, err := findBuildConfig(srcDir, b.cfg.BuildConfig)
	if err != nil {
		res.Status = domain.StatusError
		res.Err = err
		return res
	}
	if !found {
		logger.Infof(
			"Skipping %s: no %s build recipe in the checkout",
			target, b.cfg.BuildConfig,
		)
		res.Skipped = true
		res.Reason = "no build recipe"
		return res
	}

	if dirErr := recreateDir(buildDir); dirErr != nil {
		res.Status = domain.StatusError
		res.Err = dirErr
		return res
	}

	if pubErr := b.reporter.SetStatus(ctx, target.Repository, sha, domain.StatusPending); pubErr != nil {
		res.Status = domain.StatusError
		res.Err = fmt.Errorf("failed to publish the pending status: %w", pubErr)
		return res
	}

	inv := domain.Invocation{
		SourceDir:  srcDir,
		BuildDir:   buildDir,
		FullName:   target.Repository.FullName,
		RefName:    target.Ref.Name,
		CommitSHA:  sha,
		ConfigFile: configFile,
	}
	if b.cfg.ReportFile != "" {
		inv.ReportPath = filepath.Join(buildDir, b.cfg.ReportFile)
	}

	code, runErr := b.tool.Run(ctx, inv)
	if runErr != nil {
		logger.Errorf("Build tool failed for %s: %v", target, runErr)
		res.Status = domain.StatusError
		res.Err = runErr
	} else {
		res.Status = domain.ClassifyExitCode(code, b.cfg.FailureExitCodes)
		logger.Infof("Build of %s finished with exit code %d (%s)", target, code, res.Status)
	}

	if !res.Status.KeepsArtifacts() {
		if rmErr := os.RemoveAll(buildDir); rmErr != nil {
			logger.Warnf("Failed to discard the build directory of %s: %v", target, rmErr)
		}
	}

	if pubErr := b.reporter.SetStatus(ctx, target.Repository, sha, res.Status); pubErr != nil {
		logger.Errorf("Failed to publish the %s status for %s: %v", res.Status, target, pubErr)
		if res.Err == nil {
			res.Err = fmt.Errorf("failed to publish the %s status: %w", res.Status, pubErr)
		}
	}
	return res
}

// resolveBuildDir returns the absolute build directory for the commit and
// whether artifacts from an earlier run make this build unnecessary. The
// commit timestamp is only queried in history mode; the single-directory
// mode needs no extra API call.
func (b *BuildRunner) resolveBuildDir(
	ctx context.Context,
	target domain.TargetRef,
) (string, bool, error) {
	relDir := domain.BuildPath(target)
	if b.cfg.KeepBuildHistory {
		commit, err := b.host.GetCommit(ctx, target.Repository, target.Ref.CommitSHA)
		if err != nil {
			return "", false, fmt.Errorf("failed to resolve the commit timestamp: %w", err)
		}
		relDir = domain.BuildHistoryPath(target, commit.AuthoredAt)
	}

	dir, err := filepath.Abs(filepath.Join(b.cfg.OutputDir, relDir))
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve the build directory: %w", err)
	}

	if b.cfg.KeepBuildHistory && !b.cfg.ForceRebuild {
		if _, statErr := os.Stat(dir); statErr == nil {
			return dir, true, nil
		}
	}
	return dir, false, nil
}

// findBuildConfig scans the checkout root for the configured recipe. A rule
// starting with "." matches any file with that extension; anything else must
// match a file name exactly. Directory entries come back sorted, so ties
// resolve the same way on every run.
func findBuildConfig(srcDir, rule string) (string, bool, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to scan the checkout: %w", err)
	}

	byExtension := strings.HasPrefix(rule, ".")
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if byExtension && strings.HasSuffix(name, rule) {
			return name, true, nil
		}
		if !byExtension && name == rule {
			return name, true, nil
		}
	}
	return "", false, nil
}

// recreateDir guarantees an empty directory, wiping any previous content.
func recreateDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear the build directory: %w", err)
	}
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("failed to create the build directory: %w", err)
	}
	return nil
}
