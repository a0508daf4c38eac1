package execshell

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"sync"

	"github.com/temirov/gitexec/internal/repos/filesystem"
)

const chdirOperationConstant = "chdir"

// CommandRunner executes a command against a repository directory.
// originalDirectory is the process working directory the caller expects to be in place afterwards.
type CommandRunner interface {
	Run(executionContext context.Context, command CommandSpec, targetDirectory string, originalDirectory string) (ExecutionResult, error)
}

// ExplicitDirectoryRunner launches each child process with its working directory set on the process itself.
// The parent working directory is never touched, so concurrent use is safe.
type ExplicitDirectoryRunner struct {
	fileSystem filesystem.FileSystem
}

// NewExplicitDirectoryRunner constructs a runner backed by os/exec; a nil filesystem selects the operating system.
func NewExplicitDirectoryRunner(fileSystem filesystem.FileSystem) *ExplicitDirectoryRunner {
	if fileSystem == nil {
		fileSystem = filesystem.NewOSFileSystem()
	}
	return &ExplicitDirectoryRunner{fileSystem: fileSystem}
}

// Run executes command inside targetDirectory. originalDirectory is ignored.
func (runner *ExplicitDirectoryRunner) Run(executionContext context.Context, command CommandSpec, targetDirectory string, originalDirectory string) (ExecutionResult, error) {
	directoryInfo, statError := runner.fileSystem.Stat(targetDirectory)
	if statError != nil {
		return ExecutionResult{}, DirectoryAccessError{Directory: targetDirectory, Cause: statError}
	}
	if !directoryInfo.IsDir() {
		return ExecutionResult{}, DirectoryAccessError{Directory: targetDirectory, Cause: errNotDirectory}
	}

	if accessError := verifyDirectoryEnterable(targetDirectory); accessError != nil {
		return ExecutionResult{}, DirectoryAccessError{Directory: targetDirectory, Cause: accessError}
	}

	executionResult, launchError := launchProcess(executionContext, command, targetDirectory)
	if launchError != nil {
		return ExecutionResult{}, classifyLaunchError(command, targetDirectory, launchError)
	}
	executionResult.RepositoryPath = targetDirectory
	return executionResult, nil
}

// classifyLaunchError separates a working directory the child could not enter from a program that could not start.
func classifyLaunchError(command CommandSpec, targetDirectory string, launchError error) error {
	var pathError *fs.PathError
	if errors.As(launchError, &pathError) && pathError.Op == chdirOperationConstant {
		return DirectoryAccessError{Directory: targetDirectory, Cause: pathError.Err}
	}
	return LaunchError{Command: command, Directory: targetDirectory, Cause: launchError}
}

// ProcessDirectoryRunner switches the process working directory into the target, runs the command, and switches back.
// Runs are serialized because the working directory is process-wide state.
type ProcessDirectoryRunner struct {
	fileSystem filesystem.FileSystem
	mutex      sync.Mutex
}

// NewProcessDirectoryRunner constructs a chdir-based runner; a nil filesystem selects the operating system.
func NewProcessDirectoryRunner(fileSystem filesystem.FileSystem) *ProcessDirectoryRunner {
	if fileSystem == nil {
		fileSystem = filesystem.NewOSFileSystem()
	}
	return &ProcessDirectoryRunner{fileSystem: fileSystem}
}

// Run enters targetDirectory, executes command, and restores originalDirectory on every path.
// An empty originalDirectory is replaced by the working directory observed before entering the target.
func (runner *ProcessDirectoryRunner) Run(executionContext context.Context, command CommandSpec, targetDirectory string, originalDirectory string) (executionResult ExecutionResult, runError error) {
	runner.mutex.Lock()
	defer runner.mutex.Unlock()

	if len(originalDirectory) == 0 {
		currentDirectory, currentDirectoryError := runner.fileSystem.Getwd()
		if currentDirectoryError != nil {
			return ExecutionResult{}, WorkingDirectoryRestoreError{Directory: originalDirectory, Cause: currentDirectoryError}
		}
		originalDirectory = currentDirectory
	}

	if changeError := runner.fileSystem.Chdir(targetDirectory); changeError != nil {
		return ExecutionResult{}, DirectoryAccessError{Directory: targetDirectory, Cause: changeError}
	}

	defer func() {
		if restoreError := runner.fileSystem.Chdir(originalDirectory); restoreError != nil {
			executionResult = ExecutionResult{}
			runError = WorkingDirectoryRestoreError{Directory: originalDirectory, Cause: restoreError}
		}
	}()

	launchedResult, launchError := launchProcess(executionContext, command, "")
	if launchError != nil {
		return ExecutionResult{}, LaunchError{Command: command, Directory: targetDirectory, Cause: launchError}
	}
	launchedResult.RepositoryPath = targetDirectory
	return launchedResult, nil
}

// launchProcess runs command with buffered output. A non-zero exit status is reported in the result, not as an error.
func launchProcess(executionContext context.Context, command CommandSpec, workingDirectory string) (ExecutionResult, error) {
	if command.IsZero() {
		return ExecutionResult{}, ErrEmptyCommand
	}

	executable := exec.CommandContext(executionContext, command.Name(), command.Arguments()...)
	if len(workingDirectory) > 0 {
		executable.Dir = workingDirectory
	}

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer

	runError := executable.Run()
	if runError != nil {
		exitError := &exec.ExitError{}
		if errors.As(runError, &exitError) {
			return ExecutionResult{
				StandardOutput: decodeOutput(standardOutputBuffer.Bytes()),
				StandardError:  decodeOutput(standardErrorBuffer.Bytes()),
				ExitCode:       exitError.ExitCode(),
			}, nil
		}
		return ExecutionResult{}, runError
	}

	return ExecutionResult{
		StandardOutput: decodeOutput(standardOutputBuffer.Bytes()),
		StandardError:  decodeOutput(standardErrorBuffer.Bytes()),
		ExitCode:       0,
	}, nil
}
