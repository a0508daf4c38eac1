package execshell_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitexec/internal/execshell"
)

func TestParseCommandSpec(testInstance *testing.T) {
	testCases := []struct {
		name           string
		rawCommand     string
		expectedTokens []string
		expectedError  error
		expectAnyError bool
		expectedText   string
		operator       *execshell.ShellOperatorError
	}{
		{name: "single_word", rawCommand: "pwd", expectedTokens: []string{"pwd"}},
		{name: "arguments", rawCommand: "git status --short", expectedTokens: []string{"git", "status", "--short"}},
		{name: "collapsed_whitespace", rawCommand: "  git   log  ", expectedTokens: []string{"git", "log"}},
		{name: "double_quoted_argument", rawCommand: `git commit -m "two words"`, expectedTokens: []string{"git", "commit", "-m", "two words"}},
		{name: "single_quoted_argument", rawCommand: `echo 'a "b" c'`, expectedTokens: []string{"echo", `a "b" c`}},
		{name: "empty", rawCommand: "", expectedError: execshell.ErrEmptyCommand},
		{name: "whitespace_only", rawCommand: " \t ", expectedError: execshell.ErrEmptyCommand},
		{name: "quoted_operator_is_literal", rawCommand: `git log '--format=<%an>'`, expectedTokens: []string{"git", "log", "--format=<%an>"}},
		{name: "escaped_operator_is_literal", rawCommand: `echo a\;b`, expectedTokens: []string{"echo", "a;b"}},
		{name: "unterminated_quote", rawCommand: `echo "open`, expectAnyError: true, expectedText: "invalid command line string"},
		{name: "semicolon", rawCommand: "echo a;b", operator: &execshell.ShellOperatorError{Operator: ';', Offset: 6}},
		{name: "redirection_inside_argument", rawCommand: "git log --format=<%an>", operator: &execshell.ShellOperatorError{Operator: '<', Offset: 17}},
		{name: "pipeline", rawCommand: "echo a | wc -l", operator: &execshell.ShellOperatorError{Operator: '|', Offset: 7}},
		{name: "background", rawCommand: "echo x&y", operator: &execshell.ShellOperatorError{Operator: '&', Offset: 6}},
		{name: "descriptor_redirection", rawCommand: "echo hi 2>/dev/null", operator: &execshell.ShellOperatorError{Operator: '>', Offset: 9}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			commandSpec, parseError := execshell.ParseCommandSpec(testCase.rawCommand)
			switch {
			case testCase.expectedError != nil:
				require.ErrorIs(testInstance, parseError, testCase.expectedError)
				require.True(testInstance, commandSpec.IsZero())
			case testCase.operator != nil:
				var operatorError execshell.ShellOperatorError
				require.ErrorAs(testInstance, parseError, &operatorError)
				require.Equal(testInstance, *testCase.operator, operatorError)
				require.ErrorContains(testInstance, parseError, testCase.rawCommand)
				require.ErrorContains(testInstance, parseError, "'"+string(testCase.operator.Operator)+"'")
				require.True(testInstance, commandSpec.IsZero())
			case testCase.expectAnyError:
				require.Error(testInstance, parseError)
				require.ErrorContains(testInstance, parseError, testCase.rawCommand)
				require.ErrorContains(testInstance, parseError, testCase.expectedText)
			default:
				require.NoError(testInstance, parseError)
				require.Equal(testInstance, testCase.expectedTokens, commandSpec.Tokens())
				require.Equal(testInstance, testCase.expectedTokens[0], commandSpec.Name())
			}
		})
	}
}

func TestCommandSpecArgumentsAreCopied(testInstance *testing.T) {
	arguments := []string{"status"}
	commandSpec := execshell.NewCommandSpec("git", arguments...)
	arguments[0] = "mutated"

	returnedArguments := commandSpec.Arguments()
	returnedArguments[0] = "changed"

	require.Equal(testInstance, []string{"status"}, commandSpec.Arguments())
	require.Equal(testInstance, "git status", commandSpec.String())
}
