package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/buildforge/config"
	"github.com/rios0rios0/buildforge/domain"
	"github.com/rios0rios0/buildforge/infrastructure/orphan"
	"github.com/rios0rios0/buildforge/infrastructure/reflock"
	"github.com/rios0rios0/buildforge/infrastructure/workspace"
)

// Orchestrator drives one complete cycle: discover what the hosting
// service serves, prune local state it no longer vouches for, then sync
// and build every ref on a bounded worker pool.
type Orchestrator struct {
	cfg       *config.Config
	catalog   *RefCatalog
	collector *orphan.Collector
	locker    *reflock.Locker
	syncer    *workspace.Syncer
	builder   *BuildRunner
}

// NewOrchestrator wires the cycle out of its phases.
func NewOrchestrator(
	cfg *config.Config,
	catalog *RefCatalog,
	collector *orphan.Collector,
	locker *reflock.Locker,
	syncer *workspace.Syncer,
	builder *BuildRunner,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		catalog:   catalog,
		collector: collector,
		locker:    locker,
		syncer:    syncer,
		builder:   builder,
	}
}

// Run executes one cycle and returns the per-ref outcomes. Only setup
// failures abort the run; whatever goes wrong with a single ref lands in
// that ref's Result and the cycle moves on.
func (o *Orchestrator) Run(ctx context.Context) ([]domain.Result, error) {
	log := logger.WithField("run_id", uuid.NewString())
	log.Infof("Starting cycle against %s", o.cfg.Server)

	if err := o.bootstrap(); err != nil {
		return nil, err
	}

	catalog, err := o.catalog.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}

	// Collection must finish before the first sync starts; a collector
	// running next to the workers could delete a directory mid-build.
	if err := o.collector.Collect(catalog); err != nil {
		return nil, fmt.Errorf("orphan collection failed: %w", err)
	}

	targets := catalog.Targets()
	concurrency := max(o.cfg.Concurrency, 1)
	log.Infof("Processing %d refs with concurrency %d", len(targets), concurrency)

	results := make([]domain.Result, len(targets))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)
	for i, target := range targets {
		group.Go(func() error {
			results[i] = o.processRef(groupCtx, target)
			return nil
		})
	}
	if waitErr := group.Wait(); waitErr != nil {
		return results, waitErr
	}

	log.Infof("Cycle finished: %s", summarize(results))
	return results, nil
}

// processRef takes one target through lock, sync, and build. The lock is
// held for the whole sequence so a parallel invocation never touches the
// same directories.
func (o *Orchestrator) processRef(ctx context.Context, target domain.TargetRef) (res domain.Result) {
	started := time.Now()
	defer func() { res.Duration = time.Since(started) }()
	res.Target = target

	lock, err := o.locker.TryAcquire(target)
	if err != nil {
		res.Status = domain.StatusError
		res.Err = err
		return res
	}
	if lock == nil {
		logger.Infof("Skipping %s: locked by another process", target)
		res.Skipped = true
		res.Reason = "locked by another process"
		return res
	}
	defer lock.Release()

	ws, err := o.syncer.Sync(ctx, target)
	if err != nil {
		logger.Errorf("Skipping %s: %v", target, err)
		res.Skipped = true
		res.Reason = "sync failed"
		res.Err = err
		return res
	}

	return o.builder.Run(ctx, ws)
}

// bootstrap creates the output root and both kind directories so a first
// run on an empty machine needs no manual setup.
func (o *Orchestrator) bootstrap() error {
	for _, dir := range []string{
		o.cfg.OutputDir,
		filepath.Join(o.cfg.OutputDir, domain.EntityOrg.PathSegment()),
		filepath.Join(o.cfg.OutputDir, domain.EntityUser.PathSegment()),
	} {
		if err := os.MkdirAll(dir, dirMode); err != nil {
			return fmt.Errorf("failed to prepare %s: %w", dir, err)
		}
	}
	return nil
}

func summarize(results []domain.Result) string {
	var success, failure, errored, skipped int
	for _, r := range results {
		switch {
		case r.Skipped:
			skipped++
		case r.Status == domain.StatusSuccess:
			success++
		case r.Status == domain.StatusFailure:
			failure++
		default:
			errored++
		}
	}
	return fmt.Sprintf(
		"%d success, %d failure, %d error, %d skipped",
		success, failure, errored, skipped,
	)
}
