package depmonitor

import (
	"fmt"
	"strings"
)

// Reason classifies why a frame was terminated before it could run.
type Reason string

const (
	// ReasonNeverRegistered means a dependency did not appear within the
	// registration retry budget.
	ReasonNeverRegistered Reason = "never_registered"
	// ReasonTimeout means the dependencies did not finish within the
	// completion timeout.
	ReasonTimeout Reason = "timeout"
	// ReasonDependencyFailed means at least one dependency ended failed or
	// cancelled.
	ReasonDependencyFailed Reason = "dependency_failed"
)

// TerminatedError reports that a frame must not proceed.
type TerminatedError struct {
	Context      string
	Reason       Reason
	Dependencies []string
}

func (e *TerminatedError) Error() string {
	deps := strings.Join(e.Dependencies, ", ")
	switch e.Reason {
	case ReasonNeverRegistered:
		return fmt.Sprintf("deployment terminated for %s: dependency %s never registered", e.Context, deps)
	case ReasonTimeout:
		return fmt.Sprintf("deployment terminated for %s: timed out waiting for dependency %s", e.Context, deps)
	default:
		return fmt.Sprintf("deployment terminated for %s: dependency %s did not succeed", e.Context, deps)
	}
}
