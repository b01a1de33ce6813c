package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/buildforge/application"
	"github.com/rios0rios0/buildforge/config"
	"github.com/rios0rios0/buildforge/domain"
	testdoubles "github.com/rios0rios0/buildforge/test"
)

// --- helpers ---

var (
	acme = domain.Entity{Login: "acme", Kind: domain.EntityOrg}
	bob  = domain.Entity{Login: "bob", Kind: domain.EntityUser}
)

func repoOf(owner domain.Entity, name string) domain.Repository {
	return domain.Repository{
		Name:     name,
		FullName: owner.Login + "/" + name,
		Owner:    owner,
		CloneURL: "https://git.example.com/" + owner.Login + "/" + name + ".git",
	}
}

func populatedHost() *testdoubles.SpyHost {
	return &testdoubles.SpyHost{
		Entities: []domain.Entity{acme, bob},
		ReposByOwner: map[string][]domain.Repository{
			"acme": {repoOf(acme, "widget"), repoOf(acme, "secret")},
			"bob":  {repoOf(bob, "tool")},
		},
		BranchesByRepo: map[string][]domain.Ref{
			"acme/widget": {{Name: "main", Kind: domain.RefBranch, CommitSHA: "aaa"}},
			"acme/secret": {{Name: "main", Kind: domain.RefBranch, CommitSHA: "bbb"}},
			"bob/tool":    {{Name: "main", Kind: domain.RefBranch, CommitSHA: "ccc"}},
		},
		TagsByRepo: map[string][]domain.Ref{
			"acme/widget": {{Name: "v1", Kind: domain.RefTag, CommitSHA: "ddd"}},
		},
	}
}

// --- tests ---

func TestRefCatalog_Discover(t *testing.T) {
	t.Parallel()

	t.Run("should assemble entities, filtered repositories, and refs", func(t *testing.T) {
		t.Parallel()

		// given
		host := populatedHost()
		cfg := &config.Config{BlacklistRepos: []string{"acme/secret"}}

		// when
		catalog, err := application.NewRefCatalog(host, cfg).Discover(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, []domain.Entity{acme, bob}, catalog.Entities,
			"entities stay unfiltered; the collector needs all of them")
		require.Len(t, catalog.Repositories, 2)
		assert.Equal(t, "acme/widget", catalog.Repositories[0].FullName)
		assert.Equal(t, "bob/tool", catalog.Repositories[1].FullName)
		assert.NotContains(t, catalog.Refs, "acme/secret")
		require.Len(t, catalog.Refs["acme/widget"], 2)
		assert.Equal(t, domain.RefBranch, catalog.Refs["acme/widget"][0].Kind)
		assert.Equal(t, domain.RefTag, catalog.Refs["acme/widget"][1].Kind)
		assert.Equal(t, 3, catalog.RefCount())
	})

	t.Run("should keep a branch and a tag that share a name", func(t *testing.T) {
		t.Parallel()

		// given
		host := populatedHost()
		host.TagsByRepo["acme/widget"] = []domain.Ref{
			{Name: "main", Kind: domain.RefTag, CommitSHA: "eee"},
		}

		// when
		catalog, err := application.NewRefCatalog(host, &config.Config{}).
			Discover(context.Background())

		// then both survive; they share a directory, not an identity
		require.NoError(t, err)
		refs := catalog.Refs["acme/widget"]
		require.Len(t, refs, 2)
		assert.Equal(t, domain.Ref{Name: "main", Kind: domain.RefBranch, CommitSHA: "aaa"}, refs[0])
		assert.Equal(t, domain.Ref{Name: "main", Kind: domain.RefTag, CommitSHA: "eee"}, refs[1])
	})

	t.Run("should give the whitelist absolute precedence", func(t *testing.T) {
		t.Parallel()

		// given a repository that is both whitelisted and blacklisted
		host := populatedHost()
		cfg := &config.Config{
			WhitelistRepos: []string{"acme/widget"},
			BlacklistRepos: []string{"acme/widget"},
		}

		// when
		catalog, err := application.NewRefCatalog(host, cfg).Discover(context.Background())

		// then
		require.NoError(t, err)
		require.Len(t, catalog.Repositories, 1)
		assert.Equal(t, "acme/widget", catalog.Repositories[0].FullName)
	})

	t.Run("should abort when the entity listing fails", func(t *testing.T) {
		t.Parallel()

		// given
		host := populatedHost()
		host.EntitiesErr = &domain.RemoteQueryError{Op: "list entities", Err: errors.New("boom")}

		// when
		catalog, err := application.NewRefCatalog(host, &config.Config{}).
			Discover(context.Background())

		// then
		require.Error(t, err)
		assert.Nil(t, catalog)
		var queryErr *domain.RemoteQueryError
		assert.ErrorAs(t, err, &queryErr)
	})

	t.Run("should abort when a repository listing fails", func(t *testing.T) {
		t.Parallel()

		// given
		host := populatedHost()
		host.ReposErr = errors.New("boom")

		// when
		catalog, err := application.NewRefCatalog(host, &config.Config{}).
			Discover(context.Background())

		// then no partial catalog escapes; it would misguide the collector
		require.Error(t, err)
		assert.Nil(t, catalog)
	})

	t.Run("should abort when a ref listing fails", func(t *testing.T) {
		t.Parallel()

		// given
		host := populatedHost()
		host.TagsErr = errors.New("boom")

		// when
		catalog, err := application.NewRefCatalog(host, &config.Config{}).
			Discover(context.Background())

		// then
		require.Error(t, err)
		assert.Nil(t, catalog)
	})
}
