package cli

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/framedeploy/internal/status"
)

// Process exit codes.
const (
	ExitOK        = 0
	ExitFailed    = 1
	ExitUsage     = 2
	ExitCancelled = 3
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Message: err.Error()}
}

// verdictError maps a non-success verdict to its exit code.
func verdictError(command string, verdict status.State) error {
	if verdict.Code == status.Success {
		return nil
	}
	return &ExitError{
		Code:    verdict.Code.ExitCode(),
		Message: fmt.Sprintf("%s %s: %s", command, verdict.Code, verdict.Message),
	}
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailed
}
