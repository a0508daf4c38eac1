package report

import (
	"fmt"
	"strings"
)

// OutputFormat selects the report encoding.
type OutputFormat string

// Supported output formats.
const (
	OutputFormatLine OutputFormat = "line"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

const (
	lineFormatStandardInputAliasConstant = "stdin"
	lineFormatTextAliasConstant          = "text"
	jsonFormatStructuredAliasConstant    = "structured"
	yamlFormatLongAliasConstant          = "yml"
	unsupportedOutputFormatTemplate      = "unsupported output format %q (expected one of %s)"
)

// UnsupportedOutputFormatError reports an unrecognized output format selector.
type UnsupportedOutputFormatError struct {
	Value string
}

// Error describes the unsupported value.
func (formatError UnsupportedOutputFormatError) Error() string {
	return fmt.Sprintf(unsupportedOutputFormatTemplate, formatError.Value, strings.Join(OutputFormatNames(), ", "))
}

// OutputFormatNames lists the canonical output format names.
func OutputFormatNames() []string {
	return []string{string(OutputFormatLine), string(OutputFormatJSON), string(OutputFormatYAML)}
}

// ParseOutputFormat normalizes a user supplied format selector.
func ParseOutputFormat(rawValue string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(rawValue)) {
	case string(OutputFormatLine), lineFormatStandardInputAliasConstant, lineFormatTextAliasConstant:
		return OutputFormatLine, nil
	case string(OutputFormatJSON), jsonFormatStructuredAliasConstant:
		return OutputFormatJSON, nil
	case string(OutputFormatYAML), yamlFormatLongAliasConstant:
		return OutputFormatYAML, nil
	default:
		return "", UnsupportedOutputFormatError{Value: rawValue}
	}
}
