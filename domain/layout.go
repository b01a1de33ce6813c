package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Layout functions derive the on-disk locations for a target ref. All paths
// are relative to the output root; callers join them against the root at the
// point of I/O. Slashes in ref names become underscores so nested branch
// names stay a single directory deep, which means a branch and a tag with
// the same name share one directory.

// SanitizeRefName flattens a ref name into a single path segment.
func SanitizeRefName(name string) string {
	return strings.ReplaceAll(name, "/", "_")
}

// BasePath is the per-ref root: "<orgs|users>/<full name>/<sanitized ref>".
func BasePath(t TargetRef) string {
	return filepath.Join(
		t.Entity.Kind.PathSegment(),
		t.Repository.FullName,
		SanitizeRefName(t.Ref.Name),
	)
}

// SourcePath is where the working copy lives.
func SourcePath(t TargetRef) string {
	return filepath.Join(BasePath(t), "src")
}

// BuildPath is the single reused build directory for the ref.
func BuildPath(t TargetRef) string {
	return filepath.Join(BasePath(t), "build")
}

// BuildHistoryPath is the per-commit build directory used when build history
// is kept. Colons in the timestamp are replaced because some consumers of
// the build output cannot handle them in path names.
func BuildHistoryPath(t TargetRef, authoredAt time.Time) string {
	stamp := strings.ReplaceAll(authoredAt.Format(time.RFC3339), ":", "-")
	return filepath.Join(BasePath(t), "builds", stamp+"_"+t.Ref.CommitSHA)
}

// LockPath is the advisory lock file guarding the ref.
func LockPath(t TargetRef) string {
	return filepath.Join(BasePath(t), "mutex")
}
