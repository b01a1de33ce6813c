package domain

import "time"

// EntityKind distinguishes the two account types a hosting service exposes.
type EntityKind string

const (
	EntityUser EntityKind = "user"
	EntityOrg  EntityKind = "org"
)

// PathSegment returns the top-level directory name used for this kind
// under the output root ("users" or "orgs").
func (k EntityKind) PathSegment() string {
	return string(k) + "s"
}

// Entity is a repository owner on the hosting service, either a user
// or an organization.
type Entity struct {
	Login string
	Kind  EntityKind
}

// Repository represents one repository discovered on the hosting service.
type Repository struct {
	Name     string // short name, e.g. "widget"
	FullName string // owner-qualified name, e.g. "acme/widget"
	Owner    Entity
	CloneURL string // HTTPS clone URL as reported by the service, without credentials
}

// RefKind distinguishes branches from tags.
type RefKind string

const (
	RefBranch RefKind = "branch"
	RefTag    RefKind = "tag"
)

// Ref is a branch or tag head as reported by the hosting service.
type Ref struct {
	Name      string
	Kind      RefKind
	CommitSHA string
}

// TargetRef is one unit of work: a single ref of a single repository.
type TargetRef struct {
	Entity     Entity
	Repository Repository
	Ref        Ref
}

// String renders the target for log lines, e.g. "acme/widget@main".
func (t TargetRef) String() string {
	return t.Repository.FullName + "@" + t.Ref.Name
}

// Commit carries the commit metadata needed for build bookkeeping.
type Commit struct {
	SHA        string
	AuthoredAt time.Time
}

// CommitStatus is one status entry attached to a commit.
type CommitStatus struct {
	State   BuildStatus
	Context string
}

// Workspace is a materialized checkout ready to be built.
type Workspace struct {
	Target    TargetRef
	SourceDir string // checkout directory under the output root
	BuildDir  string // build output directory, set once resolved
	HeadSHA   string // commit the checkout actually sits at, empty when unreadable
}

// Result records the outcome of processing one target ref.
type Result struct {
	Target   TargetRef
	Status   BuildStatus
	Skipped  bool
	Reason   string // short explanation for skipped refs
	Err      error
	Duration time.Duration
}

// ShortSHA truncates a commit SHA for log and table output.
func ShortSHA(sha string) string {
	const short = 8
	if len(sha) <= short {
		return sha
	}
	return sha[:short]
}
