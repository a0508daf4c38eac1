package batch_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitexec/internal/batch"
	"github.com/temirov/gitexec/internal/execshell"
	"github.com/temirov/gitexec/internal/report"
	"github.com/temirov/gitexec/internal/repos/discovery"
)

const (
	testOriginalDirectoryConstant = "/original"
	testMissingProgramConstant    = "gitexec-definitely-missing-program"
)

type stubDiscoverer struct {
	repositories   []string
	discoveryError error
	calls          int
}

func (discoverer *stubDiscoverer) Discover(root string, followSymlinks bool) ([]string, error) {
	discoverer.calls++
	return discoverer.repositories, discoverer.discoveryError
}

type scriptedRunner struct {
	outcomes           map[string]scriptedOutcome
	visitedDirectories []string
	originalDirectory  string
}

type scriptedOutcome struct {
	standardOutput string
	runError       error
}

func (runner *scriptedRunner) Run(executionContext context.Context, command execshell.CommandSpec, targetDirectory string, originalDirectory string) (execshell.ExecutionResult, error) {
	runner.visitedDirectories = append(runner.visitedDirectories, targetDirectory)
	runner.originalDirectory = originalDirectory
	outcome := runner.outcomes[targetDirectory]
	if outcome.runError != nil {
		return execshell.ExecutionResult{}, outcome.runError
	}
	return execshell.ExecutionResult{RepositoryPath: targetDirectory, StandardOutput: outcome.standardOutput}, nil
}

type failingRenderer struct {
	report.Renderer
	rejectedPath string
}

func (renderer failingRenderer) Log(result execshell.ExecutionResult) error {
	if result.RepositoryPath == renderer.rejectedPath {
		return errors.New("renderer rejected entry")
	}
	return renderer.Renderer.Log(result)
}

func canonicalTempDir(testInstance *testing.T) string {
	testInstance.Helper()
	canonicalPath, evaluationError := filepath.EvalSymlinks(testInstance.TempDir())
	require.NoError(testInstance, evaluationError)
	return canonicalPath
}

func newExecutor(testInstance *testing.T, dependencies batch.Dependencies) (*batch.Executor, *bytes.Buffer, *bytes.Buffer) {
	testInstance.Helper()
	outputBuffer := &bytes.Buffer{}
	errorBuffer := &bytes.Buffer{}
	dependencies.Output = outputBuffer
	dependencies.Errors = errorBuffer
	if len(dependencies.WorkingDirectory) == 0 {
		dependencies.WorkingDirectory = testOriginalDirectoryConstant
	}
	executor, creationError := batch.NewExecutor(dependencies)
	require.NoError(testInstance, creationError)
	return executor, outputBuffer, errorBuffer
}

func TestNewExecutorValidatesDependencies(testInstance *testing.T) {
	testCases := []struct {
		name          string
		dependencies  batch.Dependencies
		expectedError error
	}{
		{
			name:          "missing_walker",
			dependencies:  batch.Dependencies{Runner: &scriptedRunner{}, Renderer: report.NewLineRenderer(nil)},
			expectedError: batch.ErrWalkerNotConfigured,
		},
		{
			name:          "missing_runner",
			dependencies:  batch.Dependencies{Walker: &stubDiscoverer{}, Renderer: report.NewLineRenderer(nil)},
			expectedError: batch.ErrRunnerNotConfigured,
		},
		{
			name:          "missing_renderer",
			dependencies:  batch.Dependencies{Walker: &stubDiscoverer{}, Runner: &scriptedRunner{}},
			expectedError: batch.ErrRendererNotConfigured,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor, creationError := batch.NewExecutor(testCase.dependencies)
			require.ErrorIs(testInstance, creationError, testCase.expectedError)
			require.Nil(testInstance, executor)
		})
	}
}

func TestExecutorRendersSuccessfulRepositoriesAndReportsFailures(testInstance *testing.T) {
	rootDirectory := canonicalTempDir(testInstance)
	repositories := []string{"/work/alpha", "/work/beta", "/work/gamma", "/work/delta"}

	runner := &scriptedRunner{outcomes: map[string]scriptedOutcome{
		"/work/alpha": {standardOutput: "main\n"},
		"/work/beta":  {runError: execshell.LaunchError{Command: execshell.NewCommandSpec("git"), Directory: "/work/beta", Cause: errors.New("exec: not found")}},
		"/work/gamma": {runError: execshell.DirectoryAccessError{Directory: "/work/gamma", Cause: errors.New("permission denied")}},
		"/work/delta": {standardOutput: "develop\n"},
	}}

	observerCore, observedLogs := observer.New(zap.DebugLevel)
	executor, outputBuffer, errorBuffer := newExecutor(testInstance, batch.Dependencies{
		Walker:   &stubDiscoverer{repositories: repositories},
		Runner:   runner,
		Renderer: report.NewLineRenderer(nil),
		Logger:   zap.New(observerCore),
	})

	summary, executionError := executor.ExecuteWithSummary(context.Background(), batch.Options{Root: rootDirectory, Command: "git branch --show-current"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, batch.Summary{Discovered: 4, Succeeded: 2, Failed: 2}, summary)

	require.Equal(testInstance, repositories, runner.visitedDirectories)
	require.Equal(testInstance, testOriginalDirectoryConstant, runner.originalDirectory)
	require.Equal(testInstance, "(/work/alpha): main\n(/work/delta): develop\n", outputBuffer.String())

	diagnosticLines := strings.Split(strings.TrimSuffix(errorBuffer.String(), "\n"), "\n")
	require.Len(testInstance, diagnosticLines, 2)
	require.Contains(testInstance, diagnosticLines[0], "failed to run command \"git\" in /work/beta")
	require.Equal(testInstance, "could not open directory /work/gamma: permission denied", diagnosticLines[1])

	require.Len(testInstance, observedLogs.FilterMessage("repository skipped").All(), 2)
	discoveredEntries := observedLogs.FilterMessage("repositories discovered").All()
	require.Len(testInstance, discoveredEntries, 1)
	require.EqualValues(testInstance, 4, discoveredEntries[0].ContextMap()["count"])
	require.Len(testInstance, observedLogs.FilterMessage("run completed").All(), 1)
}

func TestExecutorReportsRendererLogFailures(testInstance *testing.T) {
	rootDirectory := canonicalTempDir(testInstance)
	runner := &scriptedRunner{outcomes: map[string]scriptedOutcome{
		"/work/alpha": {standardOutput: "a"},
		"/work/beta":  {standardOutput: "b"},
	}}

	executor, outputBuffer, errorBuffer := newExecutor(testInstance, batch.Dependencies{
		Walker:   &stubDiscoverer{repositories: []string{"/work/alpha", "/work/beta"}},
		Runner:   runner,
		Renderer: failingRenderer{Renderer: report.NewLineRenderer(nil), rejectedPath: "/work/alpha"},
	})

	summary, executionError := executor.ExecuteWithSummary(context.Background(), batch.Options{Root: rootDirectory, Command: "cat VERSION"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, batch.Summary{Discovered: 2, Succeeded: 1, Failed: 1}, summary)
	require.Equal(testInstance, "(/work/beta): b\n", outputBuffer.String())
	require.Equal(testInstance, "problem processing output for repository /work/alpha: renderer rejected entry\n", errorBuffer.String())
}

func TestExecutorAbortsOnWorkingDirectoryRestoreFailure(testInstance *testing.T) {
	rootDirectory := canonicalTempDir(testInstance)
	restoreFailure := execshell.WorkingDirectoryRestoreError{Directory: testOriginalDirectoryConstant, Cause: errors.New("no such file or directory")}
	runner := &scriptedRunner{outcomes: map[string]scriptedOutcome{
		"/work/alpha": {runError: restoreFailure},
		"/work/beta":  {standardOutput: "b"},
	}}

	executor, outputBuffer, errorBuffer := newExecutor(testInstance, batch.Dependencies{
		Walker:   &stubDiscoverer{repositories: []string{"/work/alpha", "/work/beta"}},
		Runner:   runner,
		Renderer: report.NewLineRenderer(nil),
	})

	executionError := executor.Execute(context.Background(), batch.Options{Root: rootDirectory, Command: "pwd"})

	var environmentFault batch.EnvironmentFault
	require.ErrorAs(testInstance, executionError, &environmentFault)
	require.ErrorIs(testInstance, executionError, restoreFailure)
	require.Equal(testInstance, batch.ExitStatusRuntime, batch.ExitStatusFor(executionError))
	require.Equal(testInstance, []string{"/work/alpha"}, runner.visitedDirectories)
	require.Empty(testInstance, outputBuffer.String())
	require.Empty(testInstance, errorBuffer.String())
}

func TestExecutorClassifiesFailuresBeforeExecution(testInstance *testing.T) {
	rootDirectory := canonicalTempDir(testInstance)
	filePath := filepath.Join(rootDirectory, "file.txt")
	require.NoError(testInstance, os.WriteFile(filePath, []byte("content"), 0o644))

	testCases := []struct {
		name               string
		options            batch.Options
		discoveryError     error
		expectedStatus     int
		expectedMessage    string
		expectDiscoveryRun bool
	}{
		{
			name:            "blank_root",
			options:         batch.Options{Root: " ", Command: "pwd"},
			expectedStatus:  batch.ExitStatusUsage,
			expectedMessage: "a location to scan is required",
		},
		{
			name:            "missing_root",
			options:         batch.Options{Root: filepath.Join(rootDirectory, "absent"), Command: "pwd"},
			expectedStatus:  batch.ExitStatusUsage,
			expectedMessage: filepath.Join(rootDirectory, "absent") + " is not a directory or does not exist.",
		},
		{
			name:            "root_is_file",
			options:         batch.Options{Root: filePath, Command: "pwd"},
			expectedStatus:  batch.ExitStatusUsage,
			expectedMessage: filePath + " is not a directory or does not exist.",
		},
		{
			name:            "empty_command",
			options:         batch.Options{Root: rootDirectory, Command: "   "},
			expectedStatus:  batch.ExitStatusUsage,
			expectedMessage: "failed to parse exec string: command is empty",
		},
		{
			name:               "discovery_failure",
			options:            batch.Options{Root: rootDirectory, Command: "pwd"},
			discoveryError:     discovery.TraversalError{Path: rootDirectory, Cause: errors.New("input/output error")},
			expectedStatus:     batch.ExitStatusRuntime,
			expectedMessage:    "repository discovery failed: unable to traverse",
			expectDiscoveryRun: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			discoverer := &stubDiscoverer{discoveryError: testCase.discoveryError}
			runner := &scriptedRunner{}
			executor, outputBuffer, _ := newExecutor(testInstance, batch.Dependencies{
				Walker:   discoverer,
				Runner:   runner,
				Renderer: report.NewLineRenderer(nil),
			})

			executionError := executor.Execute(context.Background(), testCase.options)
			require.ErrorContains(testInstance, executionError, testCase.expectedMessage)
			require.Equal(testInstance, testCase.expectedStatus, batch.ExitStatusFor(executionError))
			require.Equal(testInstance, testCase.expectDiscoveryRun, discoverer.calls > 0)
			require.Empty(testInstance, runner.visitedDirectories)
			require.Empty(testInstance, outputBuffer.String())
		})
	}
}

func TestExecutorEmitsEmptyReportWithoutRepositories(testInstance *testing.T) {
	rootDirectory := canonicalTempDir(testInstance)
	executor, outputBuffer, errorBuffer := newExecutor(testInstance, batch.Dependencies{
		Walker:   &stubDiscoverer{repositories: []string{}},
		Runner:   &scriptedRunner{},
		Renderer: report.NewKeyedRenderer(report.KeyEncodingJSON),
	})

	summary, executionError := executor.ExecuteWithSummary(context.Background(), batch.Options{Root: rootDirectory, Command: "pwd"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, batch.Summary{}, summary)
	require.Equal(testInstance, "{}\n", outputBuffer.String())
	require.Empty(testInstance, errorBuffer.String())
}

func TestExecutorStopsWhenContextIsCancelled(testInstance *testing.T) {
	rootDirectory := canonicalTempDir(testInstance)
	runner := &scriptedRunner{}
	executor, outputBuffer, _ := newExecutor(testInstance, batch.Dependencies{
		Walker:   &stubDiscoverer{repositories: []string{"/work/alpha"}},
		Runner:   runner,
		Renderer: report.NewLineRenderer(nil),
	})

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	executionError := executor.Execute(cancelledContext, batch.Options{Root: rootDirectory, Command: "pwd"})
	require.ErrorIs(testInstance, executionError, context.Canceled)
	require.Empty(testInstance, runner.visitedDirectories)
	require.Empty(testInstance, outputBuffer.String())
}

func TestExecutorRunsRealCommandsAcrossDiscoveredRepositories(testInstance *testing.T) {
	rootDirectory := canonicalTempDir(testInstance)
	for _, repositoryName := range []string{"repoA", "repoB"} {
		require.NoError(testInstance, os.MkdirAll(filepath.Join(rootDirectory, repositoryName, ".git"), 0o755))
	}
	require.NoError(testInstance, os.MkdirAll(filepath.Join(rootDirectory, "repoA", "src"), 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(rootDirectory, "repoA", "src", "file.txt"), []byte("content"), 0o644))
	require.NoError(testInstance, os.MkdirAll(filepath.Join(rootDirectory, "ignored"), 0o755))

	testCases := []struct {
		name             string
		command          string
		expectedOutput   []string
		expectedFailures int
	}{
		{
			name:    "echo",
			command: "echo hi",
			expectedOutput: []string{
				"(" + filepath.Join(rootDirectory, "repoA") + "): hi",
				"(" + filepath.Join(rootDirectory, "repoB") + "): hi",
			},
		},
		{
			name:             "nonexistent_program",
			command:          testMissingProgramConstant,
			expectedFailures: 2,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor, outputBuffer, errorBuffer := newExecutor(testInstance, batch.Dependencies{
				Walker:   discovery.NewRepositoryWalker(nil, nil),
				Runner:   execshell.NewExplicitDirectoryRunner(nil),
				Renderer: report.NewLineRenderer(nil),
			})

			summary, executionError := executor.ExecuteWithSummary(context.Background(), batch.Options{Root: rootDirectory, Command: testCase.command})
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, 2, summary.Discovered)
			require.Equal(testInstance, testCase.expectedFailures, summary.Failed)

			if len(testCase.expectedOutput) > 0 {
				renderedLines := strings.Split(strings.TrimSuffix(outputBuffer.String(), "\n"), "\n")
				sort.Strings(renderedLines)
				require.Equal(testInstance, testCase.expectedOutput, renderedLines)
			} else {
				require.Empty(testInstance, outputBuffer.String())
			}

			if testCase.expectedFailures > 0 {
				require.Len(testInstance, strings.Split(strings.TrimSuffix(errorBuffer.String(), "\n"), "\n"), testCase.expectedFailures)
			} else {
				require.Empty(testInstance, errorBuffer.String())
			}
		})
	}
}

func TestExitStatusFor(testInstance *testing.T) {
	require.Equal(testInstance, batch.ExitStatusSuccess, batch.ExitStatusFor(nil))
	require.Equal(testInstance, batch.ExitStatusUsage, batch.ExitStatusFor(batch.UsageError{Message: "bad"}))
	require.Equal(testInstance, batch.ExitStatusRuntime, batch.ExitStatusFor(batch.TraversalFault{Cause: errors.New("io")}))
	require.Equal(testInstance, batch.ExitStatusRuntime, batch.ExitStatusFor(batch.EnvironmentFault{Cause: errors.New("cwd")}))
	require.Equal(testInstance, batch.ExitStatusRuntime, batch.ExitStatusFor(errors.New("unclassified")))
	require.Equal(testInstance, batch.ExitStatusUsage, batch.ExitStatusFor(errors.Join(errors.New("context"), batch.UsageError{Message: "wrapped"})))
}
