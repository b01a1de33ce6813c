// Package orphan prunes workspace directories the hosting service no
// longer vouches for.
package orphan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/buildforge/domain"
)

// Collector walks the output tree level by level and deletes every
// directory the discovery snapshot does not account for exactly once.
// A full collection pass finishes before any ref is synced, so deletions
// never race a build of the same run.
type Collector struct {
	root string
}

// NewCollector returns a collector pruning below root.
func NewCollector(root string) *Collector {
	return &Collector{root: root}
}

// Collect removes orphaned entity, repository, and ref directories. Each
// directory level is re-read from disk when the walk reaches it.
func (c *Collector) Collect(catalog *domain.Catalog) error {
	for _, kind := range []domain.EntityKind{domain.EntityOrg, domain.EntityUser} {
		if err := c.collectEntities(catalog, kind); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) collectEntities(catalog *domain.Catalog, kind domain.EntityKind) error {
	segment := kind.PathSegment()
	entries, err := os.ReadDir(filepath.Join(c.root, segment))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read the %s directory: %w", segment, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		login := entry.Name()
		if catalog.CountEntities(login, kind) != 1 {
			if rmErr := c.remove(filepath.Join(segment, login), "entity"); rmErr != nil {
				return rmErr
			}
			continue
		}
		if walkErr := c.collectRepositories(catalog, kind, login); walkErr != nil {
			return walkErr
		}
	}
	return nil
}

func (c *Collector) collectRepositories(
	catalog *domain.Catalog,
	kind domain.EntityKind,
	login string,
) error {
	entityDir := filepath.Join(kind.PathSegment(), login)
	entries, err := os.ReadDir(filepath.Join(c.root, entityDir))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", entityDir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		fullName := login + "/" + entry.Name()
		repoDir := filepath.Join(entityDir, entry.Name())
		if catalog.CountRepositories(fullName) != 1 {
			if rmErr := c.remove(repoDir, "repository"); rmErr != nil {
				return rmErr
			}
			continue
		}
		if walkErr := c.collectRefs(catalog, repoDir); walkErr != nil {
			return walkErr
		}
	}
	return nil
}

func (c *Collector) collectRefs(catalog *domain.Catalog, repoDir string) error {
	entries, err := os.ReadDir(filepath.Join(c.root, repoDir))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", repoDir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		refDir := filepath.Join(repoDir, entry.Name())
		if catalog.CountRefsForPath(refDir) != 1 {
			if rmErr := c.remove(refDir, "ref"); rmErr != nil {
				return rmErr
			}
		}
	}
	return nil
}

// remove deletes one orphaned subtree. The path is relative to the root,
// which keeps log lines short and stable across installations.
func (c *Collector) remove(relPath, level string) error {
	logger.Infof("[gc] removing orphaned %s directory %s", level, relPath)
	if err := os.RemoveAll(filepath.Join(c.root, relPath)); err != nil {
		return fmt.Errorf("failed to remove %s: %w", relPath, err)
	}
	return nil
}
