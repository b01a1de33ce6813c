package domain

import "fmt"

// RemoteQueryError wraps a failed call against the hosting service API.
// Discovery treats it as fatal for the whole run; per-ref operations treat
// it as fatal for that ref only.
type RemoteQueryError struct {
	Op  string
	Err error
}

func (e *RemoteQueryError) Error() string {
	return fmt.Sprintf("remote query %s: %v", e.Op, e.Err)
}

func (e *RemoteQueryError) Unwrap() error {
	return e.Err
}

// SyncError marks a ref whose working copy could not be materialized even
// after falling back to a fresh clone. The ref is skipped; the run goes on.
type SyncError struct {
	Target TargetRef
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s: %v", e.Target, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
