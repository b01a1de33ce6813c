package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/buildforge/domain"
)

// TargetRefBuilder helps create test target refs with a fluent interface.
type TargetRefBuilder struct {
	*testkit.BaseBuilder
	login     string
	kind      domain.EntityKind
	repoName  string
	refName   string
	refKind   domain.RefKind
	commitSHA string
}

// NewTargetRefBuilder creates a new target ref builder with sensible defaults.
func NewTargetRefBuilder() *TargetRefBuilder {
	return &TargetRefBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		login:       "acme",
		kind:        domain.EntityOrg,
		repoName:    "widget",
		refName:     "main",
		refKind:     domain.RefBranch,
		commitSHA:   "abc123",
	}
}

// WithLogin sets the owning entity's login.
func (b *TargetRefBuilder) WithLogin(login string) *TargetRefBuilder {
	b.login = login
	return b
}

// WithKind sets the owning entity's kind.
func (b *TargetRefBuilder) WithKind(kind domain.EntityKind) *TargetRefBuilder {
	b.kind = kind
	return b
}

// WithRepoName sets the repository's short name.
func (b *TargetRefBuilder) WithRepoName(name string) *TargetRefBuilder {
	b.repoName = name
	return b
}

// WithRefName sets the ref name.
func (b *TargetRefBuilder) WithRefName(name string) *TargetRefBuilder {
	b.refName = name
	return b
}

// WithRefKind sets whether the ref is a branch or a tag.
func (b *TargetRefBuilder) WithRefKind(kind domain.RefKind) *TargetRefBuilder {
	b.refKind = kind
	return b
}

// WithCommitSHA sets the ref's head commit.
func (b *TargetRefBuilder) WithCommitSHA(sha string) *TargetRefBuilder {
	b.commitSHA = sha
	return b
}

// Build creates the target ref (satisfies testkit.Builder interface).
func (b *TargetRefBuilder) Build() interface{} {
	return b.BuildTargetRef()
}

// BuildTargetRef creates the target ref with a concrete return type.
func (b *TargetRefBuilder) BuildTargetRef() domain.TargetRef {
	owner := domain.Entity{Login: b.login, Kind: b.kind}
	return domain.TargetRef{
		Entity: owner,
		Repository: domain.Repository{
			Name:     b.repoName,
			FullName: b.login + "/" + b.repoName,
			Owner:    owner,
			CloneURL: "https://git.example.com/" + b.login + "/" + b.repoName + ".git",
		},
		Ref: domain.Ref{Name: b.refName, Kind: b.refKind, CommitSHA: b.commitSHA},
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *TargetRefBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.login = "acme"
	b.kind = domain.EntityOrg
	b.repoName = "widget"
	b.refName = "main"
	b.refKind = domain.RefBranch
	b.commitSHA = "abc123"
	return b
}

// Clone creates a deep copy of the TargetRefBuilder.
func (b *TargetRefBuilder) Clone() testkit.Builder {
	return &TargetRefBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		login:       b.login,
		kind:        b.kind,
		repoName:    b.repoName,
		refName:     b.refName,
		refKind:     b.refKind,
		commitSHA:   b.commitSHA,
	}
}
