package application

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/buildforge/config"
	"github.com/rios0rios0/buildforge/domain"
)

// StatusReporter reads and writes commit statuses under one reporting
// context, keeping this orchestrator's verdicts separate from other CI
// systems posting to the same repositories.
type StatusReporter struct {
	host    domain.Host
	context string
	publish bool
}

// NewStatusReporter creates a reporter using the configured context.
func NewStatusReporter(host domain.Host, cfg *config.Config) *StatusReporter {
	return &StatusReporter{
		host:    host,
		context: cfg.ReportingContext,
		publish: cfg.PublishStatus,
	}
}

// GetStatus returns the most recent status published under the reporting
// context for the commit. A commit without a matching entry is an error;
// callers treat it as "never built" and rebuild.
func (r *StatusReporter) GetStatus(
	ctx context.Context,
	repo domain.Repository,
	sha string,
) (domain.BuildStatus, error) {
	statuses, err := r.host.ListStatuses(ctx, repo, sha)
	if err != nil {
		return "", err
	}
	for _, status := range statuses {
		if status.Context == r.context {
			return status.State, nil
		}
	}
	return "", fmt.Errorf("no %q status found for %s", r.context, domain.ShortSHA(sha))
}

// SetStatus publishes a status for the commit. With publishing disabled it
// does nothing and reports success.
func (r *StatusReporter) SetStatus(
	ctx context.Context,
	repo domain.Repository,
	sha string,
	state domain.BuildStatus,
) error {
	if !r.publish {
		logger.Debugf(
			"Status publishing disabled, not marking %s as %s",
			domain.ShortSHA(sha), state,
		)
		return nil
	}
	return r.host.CreateStatus(ctx, repo, sha, domain.CommitStatus{
		State:   state,
		Context: r.context,
	})
}
