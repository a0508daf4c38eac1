package execshell

import (
	"fmt"
	"strings"

	"github.com/mattn/go-shellwords"
)

const (
	commandParseErrorTemplateConstant = "unable to parse command %s: %w"
	commandTokenSeparatorConstant     = " "
	invalidOutputReplacementConstant  = "�"
	shellOperatorCharactersConstant   = ";&|<>"
)

// CommandSpec is an immutable program name plus arguments.
type CommandSpec struct {
	name      string
	arguments []string
}

// NewCommandSpec constructs a CommandSpec from a program name and its arguments.
func NewCommandSpec(name string, arguments ...string) CommandSpec {
	return CommandSpec{name: name, arguments: append([]string{}, arguments...)}
}

// ParseCommandSpec splits a shell-quoted command string into a CommandSpec.
// Commands run without a shell, so an unquoted operator such as ';' or '|' is rejected instead of truncating the command.
func ParseCommandSpec(rawCommand string) (CommandSpec, error) {
	parser := shellwords.NewParser()
	tokens, parseError := parser.Parse(rawCommand)
	if parseError != nil {
		return CommandSpec{}, fmt.Errorf(commandParseErrorTemplateConstant, rawCommand, parseError)
	}
	if parser.Position >= 0 {
		return CommandSpec{}, fmt.Errorf(commandParseErrorTemplateConstant, rawCommand, locateShellOperator(rawCommand, parser.Position))
	}
	if len(tokens) == 0 || len(strings.TrimSpace(tokens[0])) == 0 {
		return CommandSpec{}, ErrEmptyCommand
	}
	return NewCommandSpec(tokens[0], tokens[1:]...), nil
}

// locateShellOperator finds the operator at or after the rune offset where the parser stopped.
func locateShellOperator(rawCommand string, runeOffset int) ShellOperatorError {
	commandRunes := []rune(rawCommand)
	for index := max(runeOffset, 0); index < len(commandRunes); index++ {
		if strings.ContainsRune(shellOperatorCharactersConstant, commandRunes[index]) {
			return ShellOperatorError{Operator: commandRunes[index], Offset: index}
		}
	}
	return ShellOperatorError{Offset: runeOffset}
}

// Name returns the program name.
func (spec CommandSpec) Name() string {
	return spec.name
}

// Arguments returns a copy of the program arguments.
func (spec CommandSpec) Arguments() []string {
	return append([]string{}, spec.arguments...)
}

// Tokens returns the program name followed by its arguments.
func (spec CommandSpec) Tokens() []string {
	return append([]string{spec.name}, spec.arguments...)
}

// IsZero reports whether the command names no program.
func (spec CommandSpec) IsZero() bool {
	return len(spec.name) == 0
}

// String joins the tokens with single spaces.
func (spec CommandSpec) String() string {
	return strings.Join(spec.Tokens(), commandTokenSeparatorConstant)
}

// ExecutionResult captures the observable outcome of one command run in one repository.
type ExecutionResult struct {
	RepositoryPath string
	StandardOutput string
	StandardError  string
	ExitCode       int
}

func decodeOutput(rawOutput []byte) string {
	return strings.ToValidUTF8(string(rawOutput), invalidOutputReplacementConstant)
}
