package execshell

import (
	"fmt"
	"strings"
)

const (
	startTemplateConstant                  = "Running %s"
	successTemplateConstant                = "Completed %s"
	failureTemplateConstant                = "%s exited with code %d%s"
	executionFailureTemplateConstant       = "%s failed: %s"
	commandLabelTemplateConstant           = "%s%s"
	workingDirectorySuffixTemplateConstant = " (in %s)"
	standardErrorSuffixTemplateConstant    = ": %s"
	unknownFailureMessageConstant          = "unknown error"
	standardErrorMaximumLinesConstant      = 3
	standardErrorLineSeparatorConstant     = " | "
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command CommandSpec, workingDirectory string) string {
	return fmt.Sprintf(startTemplateConstant, formatter.formatCommandLabel(command, workingDirectory))
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command CommandSpec, workingDirectory string) string {
	return fmt.Sprintf(successTemplateConstant, formatter.formatCommandLabel(command, workingDirectory))
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command CommandSpec, workingDirectory string, result ExecutionResult) string {
	return fmt.Sprintf(failureTemplateConstant, formatter.formatCommandLabel(command, workingDirectory), result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
}

// BuildExecutionFailureMessage formats the message describing a command that could not be run at all.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command CommandSpec, workingDirectory string, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(executionFailureTemplateConstant, formatter.formatCommandLabel(command, workingDirectory), failureMessage)
}

func (formatter CommandMessageFormatter) formatCommandLabel(command CommandSpec, workingDirectory string) string {
	workingDirectorySuffix := ""
	if trimmedWorkingDirectory := strings.TrimSpace(workingDirectory); len(trimmedWorkingDirectory) > 0 {
		workingDirectorySuffix = fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
	}
	return fmt.Sprintf(commandLabelTemplateConstant, command.String(), workingDirectorySuffix)
}

// formatStandardErrorSuffix keeps the first few non-blank stderr lines on a single line.
func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	detail := strings.TrimSpace(standardError)
	if len(detail) == 0 {
		return ""
	}

	lines := strings.Split(detail, "\n")
	if len(lines) > standardErrorMaximumLinesConstant {
		lines = lines[:standardErrorMaximumLinesConstant]
	}
	normalized := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); len(trimmed) > 0 {
			normalized = append(normalized, trimmed)
		}
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, strings.Join(normalized, standardErrorLineSeparatorConstant))
}
