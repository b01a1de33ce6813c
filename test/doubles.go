// Package testdoubles provides test doubles (spies, stubs, dummies) for domain
// interfaces. These are hand-crafted implementations, no mock frameworks.
package testdoubles

import (
	"context"
	"fmt"
	"sync"

	"github.com/rios0rios0/buildforge/domain"
)

// ---------------------------------------------------------------------------
// SpyHost
// ---------------------------------------------------------------------------

// SpyHost implements domain.Host as a configurable spy.
// Configure the response fields for the methods your test exercises,
// then inspect the call-tracking fields to verify behavior.
type SpyHost struct {
	mu sync.Mutex // guards the call-tracking fields; builds report concurrently

	// --- ListEntities ---
	Entities    []domain.Entity
	EntitiesErr error

	// --- ListRepositories ---
	ReposByOwner map[string][]domain.Repository // login -> repositories
	ReposErr     error

	// --- ListBranches ---
	BranchesByRepo map[string][]domain.Ref // full name -> branch heads
	BranchesErr    error

	// --- ListTags ---
	TagsByRepo map[string][]domain.Ref // full name -> tags
	TagsErr    error

	// --- GetCommit ---
	Commits   map[string]domain.Commit // sha -> commit
	CommitErr error

	// --- ListStatuses ---
	StatusesBySHA map[string][]domain.CommitStatus // sha -> statuses, newest first
	StatusesErr   error

	// --- CreateStatus ---
	CreateStatusErr error
	// spy: statuses received
	CreatedStatuses []CreatedStatus

	// --- CloneURL ---
	CloneURLs map[string]string // full name -> URL; falls back to repo.CloneURL
}

// CreatedStatus records a single CreateStatus call.
type CreatedStatus struct {
	FullName string
	SHA      string
	Status   domain.CommitStatus
}

var _ domain.Host = (*SpyHost)(nil)

func (h *SpyHost) ListEntities(_ context.Context) ([]domain.Entity, error) {
	return h.Entities, h.EntitiesErr
}

func (h *SpyHost) ListRepositories(
	_ context.Context,
	entity domain.Entity,
) ([]domain.Repository, error) {
	if h.ReposErr != nil {
		return nil, h.ReposErr
	}
	return h.ReposByOwner[entity.Login], nil
}

func (h *SpyHost) ListBranches(
	_ context.Context,
	repo domain.Repository,
) ([]domain.Ref, error) {
	if h.BranchesErr != nil {
		return nil, h.BranchesErr
	}
	return h.BranchesByRepo[repo.FullName], nil
}

func (h *SpyHost) ListTags(
	_ context.Context,
	repo domain.Repository,
) ([]domain.Ref, error) {
	if h.TagsErr != nil {
		return nil, h.TagsErr
	}
	return h.TagsByRepo[repo.FullName], nil
}

func (h *SpyHost) GetCommit(
	_ context.Context,
	_ domain.Repository,
	sha string,
) (*domain.Commit, error) {
	if h.CommitErr != nil {
		return nil, h.CommitErr
	}
	if commit, ok := h.Commits[sha]; ok {
		return &commit, nil
	}
	return nil, fmt.Errorf("commit not found: %s", sha)
}

func (h *SpyHost) ListStatuses(
	_ context.Context,
	_ domain.Repository,
	sha string,
) ([]domain.CommitStatus, error) {
	if h.StatusesErr != nil {
		return nil, h.StatusesErr
	}
	return h.StatusesBySHA[sha], nil
}

func (h *SpyHost) CreateStatus(
	_ context.Context,
	repo domain.Repository,
	sha string,
	status domain.CommitStatus,
) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.CreatedStatuses = append(h.CreatedStatuses, CreatedStatus{
		FullName: repo.FullName,
		SHA:      sha,
		Status:   status,
	})
	return h.CreateStatusErr
}

func (h *SpyHost) CloneURL(repo domain.Repository) string {
	if h.CloneURLs != nil {
		if url, ok := h.CloneURLs[repo.FullName]; ok {
			return url
		}
	}
	return repo.CloneURL
}

// ---------------------------------------------------------------------------
// SpyBuildTool
// ---------------------------------------------------------------------------

// SpyBuildTool implements domain.BuildTool as a configurable spy.
type SpyBuildTool struct {
	mu sync.Mutex // guards the call-tracking fields

	// --- Run ---
	ExitCode int
	RunErr   error
	// spy: invocations received
	Invocations []domain.Invocation
}

var _ domain.BuildTool = (*SpyBuildTool)(nil)

func (t *SpyBuildTool) Run(_ context.Context, inv domain.Invocation) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Invocations = append(t.Invocations, inv)
	return t.ExitCode, t.RunErr
}
