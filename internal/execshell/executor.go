package execshell

import (
	"context"

	"go.uber.org/zap"
)

const (
	commandStartMessageConstant       = "command execution starting"
	commandSuccessMessageConstant     = "command execution completed"
	commandFailureMessageConstant     = "command returned non-zero status"
	commandRunnerErrorMessageConstant = "command execution error"
	commandFieldNameConstant          = "command"
	workingDirectoryFieldNameConstant = "working_directory"
	exitCodeFieldNameConstant         = "exit_code"
	standardErrorFieldNameConstant    = "stderr"
)

// ShellExecutor decorates a CommandRunner with lifecycle logging.
type ShellExecutor struct {
	commandRunner        CommandRunner
	logger               *zap.Logger
	humanReadableLogging bool
	messageFormatter     CommandMessageFormatter
}

// NewShellExecutor builds an executor for the provided runner and logger.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner, humanReadableLogging bool) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{
		commandRunner:        commandRunner,
		logger:               logger,
		humanReadableLogging: humanReadableLogging,
		messageFormatter:     CommandMessageFormatter{},
	}, nil
}

// Run delegates to the wrapped runner and logs the start and outcome of the command.
func (executor *ShellExecutor) Run(executionContext context.Context, command CommandSpec, targetDirectory string, originalDirectory string) (ExecutionResult, error) {
	if command.IsZero() {
		return ExecutionResult{}, ErrEmptyCommand
	}

	if executor.humanReadableLogging {
		executor.logger.Debug(executor.messageFormatter.BuildStartedMessage(command, targetDirectory))
	} else {
		executor.logger.Debug(commandStartMessageConstant,
			zap.Strings(commandFieldNameConstant, command.Tokens()),
			zap.String(workingDirectoryFieldNameConstant, targetDirectory),
		)
	}

	executionResult, runnerError := executor.commandRunner.Run(executionContext, command, targetDirectory, originalDirectory)
	if runnerError != nil {
		if executor.humanReadableLogging {
			executor.logger.Debug(executor.messageFormatter.BuildExecutionFailureMessage(command, targetDirectory, runnerError))
		} else {
			executor.logger.Debug(commandRunnerErrorMessageConstant,
				zap.Strings(commandFieldNameConstant, command.Tokens()),
				zap.String(workingDirectoryFieldNameConstant, targetDirectory),
				zap.Error(runnerError),
			)
		}
		return ExecutionResult{}, runnerError
	}

	if executionResult.ExitCode != 0 {
		if executor.humanReadableLogging {
			executor.logger.Info(executor.messageFormatter.BuildFailureMessage(command, targetDirectory, executionResult))
		} else {
			executor.logger.Info(commandFailureMessageConstant,
				zap.Strings(commandFieldNameConstant, command.Tokens()),
				zap.String(workingDirectoryFieldNameConstant, targetDirectory),
				zap.Int(exitCodeFieldNameConstant, executionResult.ExitCode),
				zap.String(standardErrorFieldNameConstant, executionResult.StandardError),
			)
		}
		return executionResult, nil
	}

	if executor.humanReadableLogging {
		executor.logger.Debug(executor.messageFormatter.BuildSuccessMessage(command, targetDirectory))
	} else {
		executor.logger.Debug(commandSuccessMessageConstant,
			zap.Strings(commandFieldNameConstant, command.Tokens()),
			zap.String(workingDirectoryFieldNameConstant, targetDirectory),
		)
	}
	return executionResult, nil
}
