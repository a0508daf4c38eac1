package batch

import (
	"errors"
	"fmt"
)

// Process exit statuses following sysexits.h.
const (
	ExitStatusSuccess = 0
	ExitStatusUsage   = 64
	ExitStatusRuntime = 70
)

const (
	traversalFaultTemplateConstant   = "repository discovery failed: %v"
	environmentFaultTemplateConstant = "environment fault: %v"
	usageErrorCauseTemplateConstant  = "%s: %v"
)

// ExitStatusProvider is implemented by errors that map to a specific process exit status.
type ExitStatusProvider interface {
	ExitStatus() int
}

// UsageError reports invalid input detected before any repository is processed.
type UsageError struct {
	Message string
	Cause   error
}

// Error returns the message, followed by the cause when present.
func (usageError UsageError) Error() string {
	if usageError.Cause == nil {
		return usageError.Message
	}
	return fmt.Sprintf(usageErrorCauseTemplateConstant, usageError.Message, usageError.Cause)
}

// Unwrap exposes the underlying error.
func (usageError UsageError) Unwrap() error {
	return usageError.Cause
}

// ExitStatus reports EX_USAGE.
func (UsageError) ExitStatus() int {
	return ExitStatusUsage
}

// TraversalFault reports a discovery failure that aborts the run.
type TraversalFault struct {
	Cause error
}

// Error describes the traversal failure.
func (traversalFault TraversalFault) Error() string {
	return fmt.Sprintf(traversalFaultTemplateConstant, traversalFault.Cause)
}

// Unwrap exposes the underlying error.
func (traversalFault TraversalFault) Unwrap() error {
	return traversalFault.Cause
}

// ExitStatus reports EX_SOFTWARE.
func (TraversalFault) ExitStatus() int {
	return ExitStatusRuntime
}

// EnvironmentFault reports process state that can no longer be trusted, such as a lost working directory.
type EnvironmentFault struct {
	Cause error
}

// Error describes the fault.
func (environmentFault EnvironmentFault) Error() string {
	return fmt.Sprintf(environmentFaultTemplateConstant, environmentFault.Cause)
}

// Unwrap exposes the underlying error.
func (environmentFault EnvironmentFault) Unwrap() error {
	return environmentFault.Cause
}

// ExitStatus reports EX_SOFTWARE.
func (EnvironmentFault) ExitStatus() int {
	return ExitStatusRuntime
}

// ExitStatusFor maps an error to a process exit status. Unclassified errors are runtime failures.
func ExitStatusFor(runError error) int {
	if runError == nil {
		return ExitStatusSuccess
	}
	var provider ExitStatusProvider
	if errors.As(runError, &provider) {
		return provider.ExitStatus()
	}
	return ExitStatusRuntime
}
