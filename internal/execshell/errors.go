package execshell

import (
	"errors"
	"fmt"
)

const (
	emptyCommandMessageConstant               = "command is empty"
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	notDirectoryMessageConstant               = "not a directory"
	directoryAccessErrorTemplateConstant      = "could not open directory %s: %v"
	launchErrorTemplateConstant               = "failed to run command %q in %s: %v"
	restoreErrorTemplateConstant              = "failed to change back to original directory %s: %v"
	shellOperatorErrorTemplateConstant        = "unquoted shell operator %q at offset %d is not supported; quote or escape it to pass it literally"
	unknownShellOperatorMessageConstant       = "unsupported shell syntax"
)

var (
	// ErrEmptyCommand indicates the command string contained no tokens.
	ErrEmptyCommand = errors.New(emptyCommandMessageConstant)
	// ErrLoggerNotConfigured indicates the logger dependency was missing.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the command runner dependency was missing.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

	errNotDirectory = errors.New(notDirectoryMessageConstant)
)

// DirectoryAccessError reports a target directory that cannot be entered.
type DirectoryAccessError struct {
	Directory string
	Cause     error
}

// Error describes the access failure.
func (accessError DirectoryAccessError) Error() string {
	return fmt.Sprintf(directoryAccessErrorTemplateConstant, accessError.Directory, accessError.Cause)
}

// Unwrap exposes the underlying error.
func (accessError DirectoryAccessError) Unwrap() error {
	return accessError.Cause
}

// LaunchError reports a child process that could not be started.
type LaunchError struct {
	Command   CommandSpec
	Directory string
	Cause     error
}

// Error describes the launch failure.
func (launchError LaunchError) Error() string {
	return fmt.Sprintf(launchErrorTemplateConstant, launchError.Command.String(), launchError.Directory, launchError.Cause)
}

// Unwrap exposes the underlying error.
func (launchError LaunchError) Unwrap() error {
	return launchError.Cause
}

// WorkingDirectoryRestoreError reports that the process working directory could not be restored.
// Every later run depends on the original directory, so callers must treat it as fatal.
type WorkingDirectoryRestoreError struct {
	Directory string
	Cause     error
}

// Error describes the restore failure.
func (restoreError WorkingDirectoryRestoreError) Error() string {
	return fmt.Sprintf(restoreErrorTemplateConstant, restoreError.Directory, restoreError.Cause)
}

// Unwrap exposes the underlying error.
func (restoreError WorkingDirectoryRestoreError) Unwrap() error {
	return restoreError.Cause
}

// ShellOperatorError reports an unquoted shell operator in a command string. Commands are not run through a shell.
type ShellOperatorError struct {
	Operator rune
	Offset   int
}

// Error names the operator and its position.
func (operatorError ShellOperatorError) Error() string {
	if operatorError.Operator == 0 {
		return unknownShellOperatorMessageConstant
	}
	return fmt.Sprintf(shellOperatorErrorTemplateConstant, operatorError.Operator, operatorError.Offset)
}
