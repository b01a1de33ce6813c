package domain

import "context"

// Invocation carries the full argument contract for one build tool run.
// All paths are absolute.
type Invocation struct {
	SourceDir  string
	BuildDir   string
	FullName   string
	RefName    string
	CommitSHA  string
	ReportPath string // destination for the machine-readable report, empty when none is requested
	ConfigFile string // build recipe found in the checkout
}

// BuildTool runs the external build command for one prepared workspace.
type BuildTool interface {
	// Run executes the tool and returns its exit code. A non-nil error means
	// the tool could not be started or did not terminate on its own; exit
	// codes of a tool that ran to completion are not errors.
	Run(ctx context.Context, inv Invocation) (int, error)
}
