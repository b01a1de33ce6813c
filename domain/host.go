package domain

import "context"

// Host abstracts the Git hosting service API (GitHub Enterprise v3 style).
// Implementations authenticate with a service token and wrap every failed
// call in a RemoteQueryError.
type Host interface {
	// ListEntities returns every account known to the server, users and
	// organizations alike.
	ListEntities(ctx context.Context) ([]Entity, error)

	// ListRepositories returns the repositories owned by the entity. For the
	// account the service token belongs to this includes private
	// repositories; for any other entity only public ones are visible.
	ListRepositories(ctx context.Context, entity Entity) ([]Repository, error)

	// ListBranches returns the branch heads of the repository.
	ListBranches(ctx context.Context, repo Repository) ([]Ref, error)

	// ListTags returns the tags of the repository.
	ListTags(ctx context.Context, repo Repository) ([]Ref, error)

	// GetCommit returns metadata for a single commit.
	GetCommit(ctx context.Context, repo Repository, sha string) (*Commit, error)

	// ListStatuses returns the status entries attached to a commit,
	// newest first.
	ListStatuses(ctx context.Context, repo Repository, sha string) ([]CommitStatus, error)

	// CreateStatus attaches a status entry to a commit.
	CreateStatus(ctx context.Context, repo Repository, sha string, status CommitStatus) error

	// CloneURL returns an HTTPS clone URL for the repository with the
	// service token embedded for authenticated access.
	CloneURL(repo Repository) string
}
