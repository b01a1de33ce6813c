// Package github implements domain.Host against a GitHub-compatible v3 API,
// which is the dialect self-hosted services such as Gitea and GitHub
// Enterprise expose.
package github

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"

	"github.com/rios0rios0/buildforge/config"
	"github.com/rios0rios0/buildforge/domain"
)

const (
	perPage        = 100
	requestTimeout = 30 * time.Second
)

// Client talks to the hosting service API on behalf of one token.
type Client struct {
	api   *gh.Client
	token string
	user  string
}

// NewClient builds the API client chain: a TLS transport honoring the ca
// setting, request retries, and token authentication.
func NewClient(cfg *config.Config) (*Client, error) {
	transport, err := buildTransport(cfg.CA)
	if err != nil {
		return nil, err
	}

	retry := retryablehttp.NewClient()
	retry.RetryMax = cfg.HTTPRetries
	retry.Logger = nil
	retry.HTTPClient = &http.Client{Transport: transport, Timeout: requestTimeout}

	// oauth2 wraps the retrying client so every request carries the token.
	base := context.WithValue(context.Background(), oauth2.HTTPClient, retry.StandardClient())
	authed := oauth2.NewClient(base, oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.Token},
	))

	api, err := gh.NewClient(authed).WithEnterpriseURLs(cfg.Server, cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", cfg.Server, err)
	}

	return &Client{api: api, token: cfg.Token, user: cfg.User}, nil
}

// buildTransport returns an HTTP transport configured for the server's TLS
// setup: a private CA bundle, verification disabled, or the system pool.
func buildTransport(ca config.CASetting) (*http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	switch {
	case ca.Insecure:
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // requested via the ca setting
	case ca.Path != "":
		pem, err := os.ReadFile(ca.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA bundle %q: %w", ca.Path, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in CA bundle %q", ca.Path)
		}
		transport.TLSClientConfig = &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
	}

	return transport, nil
}

// ListEntities returns every account on the server. The endpoint paginates
// by last-seen account ID rather than page numbers.
func (c *Client) ListEntities(ctx context.Context) ([]domain.Entity, error) {
	var entities []domain.Entity
	opts := &gh.UserListOptions{ListOptions: gh.ListOptions{PerPage: perPage}}

	for {
		users, _, err := c.api.Users.ListAll(ctx, opts)
		if err != nil {
			return nil, queryErr("list entities", err)
		}
		if len(users) == 0 {
			break
		}
		for _, u := range users {
			entities = append(entities, domain.Entity{
				Login: u.GetLogin(),
				Kind:  entityKind(u.GetType()),
			})
		}
		// A server that repeats a page instead of advancing the cursor
		// must not keep the listing alive.
		next := users[len(users)-1].GetID()
		if next <= opts.Since {
			break
		}
		opts.Since = next
	}

	return entities, nil
}

// ListRepositories returns the entity's repositories. The authenticated
// account is listed through the self endpoint so private repositories are
// included.
func (c *Client) ListRepositories(
	ctx context.Context,
	entity domain.Entity,
) ([]domain.Repository, error) {
	if entity.Login == c.user {
		return c.listOwnRepositories(ctx, entity)
	}

	var repos []domain.Repository
	page := 1
	for {
		var (
			batch []*gh.Repository
			resp  *gh.Response
			err   error
		)
		if entity.Kind == domain.EntityOrg {
			batch, resp, err = c.api.Repositories.ListByOrg(ctx, entity.Login, &gh.RepositoryListByOrgOptions{
				ListOptions: gh.ListOptions{PerPage: perPage, Page: page},
			})
		} else {
			batch, resp, err = c.api.Repositories.ListByUser(ctx, entity.Login, &gh.RepositoryListByUserOptions{
				ListOptions: gh.ListOptions{PerPage: perPage, Page: page},
			})
		}
		if err != nil {
			return nil, queryErr("list repositories of "+entity.Login, err)
		}

		for _, r := range batch {
			repos = append(repos, toRepository(r, entity))
		}

		if resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}

	return repos, nil
}

func (c *Client) listOwnRepositories(
	ctx context.Context,
	entity domain.Entity,
) ([]domain.Repository, error) {
	var repos []domain.Repository
	opts := &gh.RepositoryListByAuthenticatedUserOptions{
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	for {
		batch, resp, err := c.api.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, queryErr("list own repositories", err)
		}

		for _, r := range batch {
			repos = append(repos, toRepository(r, entity))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return repos, nil
}

// ListBranches returns the repository's branch heads.
func (c *Client) ListBranches(
	ctx context.Context,
	repo domain.Repository,
) ([]domain.Ref, error) {
	var refs []domain.Ref
	opts := &gh.BranchListOptions{ListOptions: gh.ListOptions{PerPage: perPage}}

	for {
		branches, resp, err := c.api.Repositories.ListBranches(
			ctx, repo.Owner.Login, repo.Name, opts,
		)
		if err != nil {
			return nil, queryErr("list branches of "+repo.FullName, err)
		}

		for _, b := range branches {
			refs = append(refs, domain.Ref{
				Name:      b.GetName(),
				Kind:      domain.RefBranch,
				CommitSHA: b.GetCommit().GetSHA(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return refs, nil
}

// ListTags returns the repository's tags.
func (c *Client) ListTags(
	ctx context.Context,
	repo domain.Repository,
) ([]domain.Ref, error) {
	var refs []domain.Ref
	opts := &gh.ListOptions{PerPage: perPage}

	for {
		tags, resp, err := c.api.Repositories.ListTags(
			ctx, repo.Owner.Login, repo.Name, opts,
		)
		if err != nil {
			return nil, queryErr("list tags of "+repo.FullName, err)
		}

		for _, tag := range tags {
			refs = append(refs, domain.Ref{
				Name:      tag.GetName(),
				Kind:      domain.RefTag,
				CommitSHA: tag.GetCommit().GetSHA(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return refs, nil
}

// GetCommit returns metadata for a single commit.
func (c *Client) GetCommit(
	ctx context.Context,
	repo domain.Repository,
	sha string,
) (*domain.Commit, error) {
	commit, _, err := c.api.Git.GetCommit(ctx, repo.Owner.Login, repo.Name, sha)
	if err != nil {
		return nil, queryErr("get commit "+domain.ShortSHA(sha), err)
	}

	return &domain.Commit{
		SHA:        commit.GetSHA(),
		AuthoredAt: commit.GetAuthor().GetDate().Time,
	}, nil
}

// ListStatuses returns the commit's status entries, newest first.
func (c *Client) ListStatuses(
	ctx context.Context,
	repo domain.Repository,
	sha string,
) ([]domain.CommitStatus, error) {
	var statuses []domain.CommitStatus
	opts := &gh.ListOptions{PerPage: perPage}

	for {
		batch, resp, err := c.api.Repositories.ListStatuses(
			ctx, repo.Owner.Login, repo.Name, sha, opts,
		)
		if err != nil {
			return nil, queryErr("list statuses of "+domain.ShortSHA(sha), err)
		}

		for _, s := range batch {
			statuses = append(statuses, domain.CommitStatus{
				State:   domain.BuildStatus(s.GetState()),
				Context: s.GetContext(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return statuses, nil
}

// CreateStatus attaches a status entry to the commit.
func (c *Client) CreateStatus(
	ctx context.Context,
	repo domain.Repository,
	sha string,
	status domain.CommitStatus,
) error {
	_, _, err := c.api.Repositories.CreateStatus(
		ctx, repo.Owner.Login, repo.Name, sha,
		&gh.RepoStatus{
			State:   gh.String(string(status.State)),
			Context: gh.String(status.Context),
		},
	)
	if err != nil {
		return queryErr("create status on "+domain.ShortSHA(sha), err)
	}
	return nil
}

// CloneURL embeds the service token into the repository's HTTPS clone URL.
func (c *Client) CloneURL(repo domain.Repository) string {
	return strings.Replace(repo.CloneURL, "://", "://"+c.token+"@", 1)
}

func toRepository(r *gh.Repository, owner domain.Entity) domain.Repository {
	return domain.Repository{
		Name:     r.GetName(),
		FullName: r.GetFullName(),
		Owner:    owner,
		CloneURL: r.GetCloneURL(),
	}
}

func entityKind(accountType string) domain.EntityKind {
	if accountType == "Organization" {
		return domain.EntityOrg
	}
	return domain.EntityUser
}

func queryErr(op string, err error) error {
	return &domain.RemoteQueryError{Op: op, Err: err}
}
