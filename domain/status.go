package domain

// BuildStatus is a commit status state as understood by the hosting service.
type BuildStatus string

const (
	StatusPending BuildStatus = "pending"
	StatusSuccess BuildStatus = "success"
	StatusError   BuildStatus = "error"
	StatusFailure BuildStatus = "failure"
)

// ClassifyExitCode maps a build tool exit code to its terminal status.
// Zero is a success, codes in the configured failure set mark a build that
// ran and found problems, and everything else means the tool itself broke.
func ClassifyExitCode(code int, failureCodes []int) BuildStatus {
	if code == 0 {
		return StatusSuccess
	}
	for _, c := range failureCodes {
		if code == c {
			return StatusFailure
		}
	}
	return StatusError
}

// KeepsArtifacts reports whether a build ending in this status leaves its
// build directory in place. Failed builds keep their output so the findings
// can be inspected; broken tool runs are discarded.
func (s BuildStatus) KeepsArtifacts() bool {
	return s == StatusSuccess || s == StatusFailure
}
