package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/buildforge/domain"
)

// RepositoryBuilder helps create test repositories with a fluent interface.
type RepositoryBuilder struct {
	*testkit.BaseBuilder
	login string
	kind  domain.EntityKind
	name  string
}

// NewRepositoryBuilder creates a new repository builder with sensible defaults.
func NewRepositoryBuilder() *RepositoryBuilder {
	return &RepositoryBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		login:       "acme",
		kind:        domain.EntityOrg,
		name:        "widget",
	}
}

// WithLogin sets the owning entity's login.
func (b *RepositoryBuilder) WithLogin(login string) *RepositoryBuilder {
	b.login = login
	return b
}

// WithKind sets the owning entity's kind.
func (b *RepositoryBuilder) WithKind(kind domain.EntityKind) *RepositoryBuilder {
	b.kind = kind
	return b
}

// WithName sets the repository's short name.
func (b *RepositoryBuilder) WithName(name string) *RepositoryBuilder {
	b.name = name
	return b
}

// Build creates the repository (satisfies testkit.Builder interface).
func (b *RepositoryBuilder) Build() interface{} {
	return b.BuildRepository()
}

// BuildRepository creates the repository with a concrete return type.
func (b *RepositoryBuilder) BuildRepository() domain.Repository {
	return domain.Repository{
		Name:     b.name,
		FullName: b.login + "/" + b.name,
		Owner:    domain.Entity{Login: b.login, Kind: b.kind},
		CloneURL: "https://git.example.com/" + b.login + "/" + b.name + ".git",
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *RepositoryBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.login = "acme"
	b.kind = domain.EntityOrg
	b.name = "widget"
	return b
}

// Clone creates a deep copy of the RepositoryBuilder.
func (b *RepositoryBuilder) Clone() testkit.Builder {
	return &RepositoryBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		login:       b.login,
		kind:        b.kind,
		name:        b.name,
	}
}
