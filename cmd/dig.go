package cmd

import (
	"fmt"

	"go.uber.org/dig"

	"github.com/rios0rios0/buildforge/application"
	"github.com/rios0rios0/buildforge/config"
	"github.com/rios0rios0/buildforge/domain"
	"github.com/rios0rios0/buildforge/infrastructure/buildtool"
	"github.com/rios0rios0/buildforge/infrastructure/hosting/github"
	"github.com/rios0rios0/buildforge/infrastructure/orphan"
	"github.com/rios0rios0/buildforge/infrastructure/reflock"
	"github.com/rios0rios0/buildforge/infrastructure/workspace"
)

// buildContainer registers every component with the DIG container
// (bottom-up: config -> infrastructure -> application).
func buildContainer(cfg *config.Config) (*dig.Container, error) {
	container := dig.New()

	constructors := []any{
		func() *config.Config { return cfg },
		github.NewClient,
		func(client *github.Client) domain.Host { return client },
		buildtool.NewExecTool,
		func(tool *buildtool.ExecTool) domain.BuildTool { return tool },
		func(c *config.Config) *orphan.Collector { return orphan.NewCollector(c.OutputDir) },
		func(c *config.Config) *reflock.Locker { return reflock.NewLocker(c.OutputDir) },
		workspace.NewSyncer,
		application.NewRefCatalog,
		application.NewStatusReporter,
		application.NewBuildRunner,
		application.NewOrchestrator,
	}

	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return nil, fmt.Errorf("failed to build the container: %w", err)
		}
	}

	return container, nil
}

func injectOrchestrator(cfg *config.Config) (*application.Orchestrator, error) {
	container, err := buildContainer(cfg)
	if err != nil {
		return nil, err
	}

	var orchestrator *application.Orchestrator
	if err := container.Invoke(func(o *application.Orchestrator) {
		orchestrator = o
	}); err != nil {
		return nil, fmt.Errorf("failed to resolve the orchestrator: %w", err)
	}

	return orchestrator, nil
}

func injectRefCatalog(cfg *config.Config) (*application.RefCatalog, error) {
	container, err := buildContainer(cfg)
	if err != nil {
		return nil, err
	}

	var catalog *application.RefCatalog
	if err := container.Invoke(func(c *application.RefCatalog) {
		catalog = c
	}); err != nil {
		return nil, fmt.Errorf("failed to resolve the catalog: %w", err)
	}

	return catalog, nil
}

func injectGarbageCollection(
	cfg *config.Config,
) (*application.RefCatalog, *orphan.Collector, error) {
	container, err := buildContainer(cfg)
	if err != nil {
		return nil, nil, err
	}

	var (
		catalog   *application.RefCatalog
		collector *orphan.Collector
	)
	if err := container.Invoke(func(c *application.RefCatalog, gc *orphan.Collector) {
		catalog = c
		collector = gc
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to resolve the collector: %w", err)
	}

	return catalog, collector, nil
}
