package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitexec/internal/execshell"
	"github.com/temirov/gitexec/internal/report"
	"github.com/temirov/gitexec/internal/repos/filesystem"
)

const (
	missingLocationMessageConstant        = "a location to scan is required"
	invalidLocationTemplateConstant       = "%s is not a directory or does not exist."
	commandParseFailureMessageConstant    = "failed to parse exec string"
	workingDirectoryUnavailableTemplate   = "unable to determine current directory: %w"
	renderLogFailureTemplateConstant      = "problem processing output for repository %s: %v"
	renderReportFailureTemplateConstant   = "unable to render report: %w"
	writeReportFailureTemplateConstant    = "unable to write report: %w"
	diagnosticLineTemplateConstant        = "%s\n"
	missingWalkerMessageConstant          = "repository walker not configured"
	missingRunnerMessageConstant          = "command runner not configured"
	missingRendererMessageConstant        = "renderer not configured"
	repositoriesDiscoveredMessageConstant = "repositories discovered"
	repositorySkippedMessageConstant      = "repository skipped"
	runSummaryMessageConstant             = "run completed"
	locationFieldNameConstant             = "location"
	commandFieldNameConstant              = "command"
	followSymlinksFieldNameConstant       = "follow_symlinks"
	repositoryFieldNameConstant           = "repository"
	countFieldNameConstant                = "count"
	discoveredFieldNameConstant           = "discovered"
	succeededFieldNameConstant            = "succeeded"
	failedFieldNameConstant               = "failed"
)

var (
	// ErrWalkerNotConfigured indicates the Walker dependency was missing.
	ErrWalkerNotConfigured = errors.New(missingWalkerMessageConstant)
	// ErrRunnerNotConfigured indicates the Runner dependency was missing.
	ErrRunnerNotConfigured = errors.New(missingRunnerMessageConstant)
	// ErrRendererNotConfigured indicates the Renderer dependency was missing.
	ErrRendererNotConfigured = errors.New(missingRendererMessageConstant)
)

// RepositoryDiscoverer yields the repositories located beneath a root.
type RepositoryDiscoverer interface {
	Discover(root string, followSymlinks bool) ([]string, error)
}

// Dependencies wires collaborators required by the executor.
type Dependencies struct {
	Walker           RepositoryDiscoverer
	Runner           execshell.CommandRunner
	Renderer         report.Renderer
	FileSystem       filesystem.FileSystem
	Logger           *zap.Logger
	Output           io.Writer
	Errors           io.Writer
	WorkingDirectory string
}

// Options configures one run.
type Options struct {
	Root           string
	Command        string
	FollowSymlinks bool
}

// Summary counts the repositories seen by one run.
type Summary struct {
	Discovered int
	Succeeded  int
	Failed     int
}

// Executor orchestrates discovery, execution, and rendering.
type Executor struct {
	dependencies Dependencies
	reporter     DiagnosticReporter
}

// NewExecutor validates dependencies and fills in defaults for the optional ones.
func NewExecutor(dependencies Dependencies) (*Executor, error) {
	if dependencies.Walker == nil {
		return nil, ErrWalkerNotConfigured
	}
	if dependencies.Runner == nil {
		return nil, ErrRunnerNotConfigured
	}
	if dependencies.Renderer == nil {
		return nil, ErrRendererNotConfigured
	}
	if dependencies.FileSystem == nil {
		dependencies.FileSystem = filesystem.NewOSFileSystem()
	}
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.Output == nil {
		dependencies.Output = os.Stdout
	}
	if dependencies.Errors == nil {
		dependencies.Errors = os.Stderr
	}
	return &Executor{dependencies: dependencies, reporter: NewWriterReporter(dependencies.Errors)}, nil
}

// Execute runs the pipeline and discards the summary.
func (executor *Executor) Execute(executionContext context.Context, options Options) error {
	_, executionError := executor.ExecuteWithSummary(executionContext, options)
	return executionError
}

// ExecuteWithSummary runs the pipeline. Per-repository failures are reported on the error writer and do not fail the run.
func (executor *Executor) ExecuteWithSummary(executionContext context.Context, options Options) (Summary, error) {
	summary := Summary{}
	logger := executor.dependencies.Logger

	if validationError := executor.validateRoot(options.Root); validationError != nil {
		return summary, validationError
	}

	commandSpec, parseError := execshell.ParseCommandSpec(options.Command)
	if parseError != nil {
		return summary, UsageError{Message: commandParseFailureMessageConstant, Cause: parseError}
	}

	repositories, discoveryError := executor.dependencies.Walker.Discover(options.Root, options.FollowSymlinks)
	if discoveryError != nil {
		return summary, TraversalFault{Cause: discoveryError}
	}
	summary.Discovered = len(repositories)
	logger.Info(repositoriesDiscoveredMessageConstant,
		zap.String(locationFieldNameConstant, options.Root),
		zap.Bool(followSymlinksFieldNameConstant, options.FollowSymlinks),
		zap.Int(countFieldNameConstant, len(repositories)),
	)

	originalDirectory, workingDirectoryError := executor.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return summary, EnvironmentFault{Cause: workingDirectoryError}
	}

	for _, repositoryPath := range repositories {
		if contextError := executionContext.Err(); contextError != nil {
			return summary, contextError
		}

		executionResult, runError := executor.dependencies.Runner.Run(executionContext, commandSpec, repositoryPath, originalDirectory)
		if runError != nil {
			var restoreError execshell.WorkingDirectoryRestoreError
			if errors.As(runError, &restoreError) {
				return summary, EnvironmentFault{Cause: runError}
			}
			executor.reportSkippedRepository(repositoryPath, commandSpec, runError, runError.Error())
			summary.Failed++
			continue
		}

		if len(executionResult.RepositoryPath) == 0 {
			executionResult.RepositoryPath = repositoryPath
		}
		if logError := executor.dependencies.Renderer.Log(executionResult); logError != nil {
			executor.reportSkippedRepository(repositoryPath, commandSpec, logError, fmt.Sprintf(renderLogFailureTemplateConstant, repositoryPath, logError))
			summary.Failed++
			continue
		}
		summary.Succeeded++
	}

	renderedReport, renderError := executor.dependencies.Renderer.Render()
	if renderError != nil {
		return summary, fmt.Errorf(renderReportFailureTemplateConstant, renderError)
	}
	if _, writeError := io.WriteString(executor.dependencies.Output, renderedReport); writeError != nil {
		return summary, fmt.Errorf(writeReportFailureTemplateConstant, writeError)
	}

	logger.Info(runSummaryMessageConstant,
		zap.Int(discoveredFieldNameConstant, summary.Discovered),
		zap.Int(succeededFieldNameConstant, summary.Succeeded),
		zap.Int(failedFieldNameConstant, summary.Failed),
	)
	return summary, nil
}

func (executor *Executor) validateRoot(root string) error {
	if len(strings.TrimSpace(root)) == 0 {
		return UsageError{Message: missingLocationMessageConstant}
	}
	rootInfo, statError := executor.dependencies.FileSystem.Stat(root)
	if statError != nil || !rootInfo.IsDir() {
		return UsageError{Message: fmt.Sprintf(invalidLocationTemplateConstant, root)}
	}
	return nil
}

func (executor *Executor) resolveWorkingDirectory() (string, error) {
	if len(executor.dependencies.WorkingDirectory) > 0 {
		return executor.dependencies.WorkingDirectory, nil
	}
	currentDirectory, currentDirectoryError := executor.dependencies.FileSystem.Getwd()
	if currentDirectoryError != nil {
		return "", fmt.Errorf(workingDirectoryUnavailableTemplate, currentDirectoryError)
	}
	return currentDirectory, nil
}

func (executor *Executor) reportSkippedRepository(repositoryPath string, commandSpec execshell.CommandSpec, cause error, diagnostic string) {
	executor.reporter.Printf(diagnosticLineTemplateConstant, diagnostic)
	executor.dependencies.Logger.Warn(repositorySkippedMessageConstant,
		zap.String(repositoryFieldNameConstant, repositoryPath),
		zap.String(commandFieldNameConstant, commandSpec.String()),
		zap.Error(cause),
	)
}
