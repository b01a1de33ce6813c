package application

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/buildforge/config"
	"github.com/rios0rios0/buildforge/domain"
)

// RefCatalog turns the hosting service's current state into the immutable
// snapshot one run operates on.
type RefCatalog struct {
	host domain.Host
	cfg  *config.Config
}

// NewRefCatalog creates a catalog reading through the given host.
func NewRefCatalog(host domain.Host, cfg *config.Config) *RefCatalog {
	return &RefCatalog{host: host, cfg: cfg}
}

// Discover lists entities, their repositories, and every branch and tag of
// the repositories that survive the configured filter. Any API failure
// aborts discovery; acting on a partial catalog would let the orphan
// collector delete live workspaces.
func (c *RefCatalog) Discover(ctx context.Context) (*domain.Catalog, error) {
	entities, err := c.host.ListEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	logger.Infof("Discovered %d entities", len(entities))

	filter := domain.NewRepoFilter(c.cfg.WhitelistRepos, c.cfg.BlacklistRepos)
	catalog := &domain.Catalog{
		Entities: entities,
		Refs:     make(map[string][]domain.Ref),
	}

	for _, entity := range entities {
		repos, listErr := c.host.ListRepositories(ctx, entity)
		if listErr != nil {
			return nil, fmt.Errorf(
				"failed to list repositories of %s: %w", entity.Login, listErr,
			)
		}

		for _, repo := range repos {
			if !filter.Keep(repo.FullName) {
				logger.Debugf("Skipping filtered repository %s", repo.FullName)
				continue
			}
			refs, refErr := c.listRefs(ctx, repo)
			if refErr != nil {
				return nil, refErr
			}
			catalog.Repositories = append(catalog.Repositories, repo)
			catalog.Refs[repo.FullName] = refs
		}
	}

	logger.Infof(
		"Catalog ready: %d repositories, %d refs",
		len(catalog.Repositories), catalog.RefCount(),
	)
	return catalog, nil
}

// listRefs returns the repository's branches and tags as one list. A branch
// and a tag may share a name; both entries are kept.
func (c *RefCatalog) listRefs(ctx context.Context, repo domain.Repository) ([]domain.Ref, error) {
	branches, err := c.host.ListBranches(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches of %s: %w", repo.FullName, err)
	}
	tags, err := c.host.ListTags(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags of %s: %w", repo.FullName, err)
	}

	refs := make([]domain.Ref, 0, len(branches)+len(tags))
	refs = append(refs, branches...)
	refs = append(refs, tags...)
	return refs, nil
}
