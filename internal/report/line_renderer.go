package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/temirov/gitexec/internal/execshell"
)

const (
	lineEntryTemplateConstant  = "(%s): %s\n"
	pathHighlightColorConstant = "12"
)

// LineRenderer appends one `(<path>): <stdout>` line per logged result.
type LineRenderer struct {
	buffer     strings.Builder
	pathStyler PathStyler
}

// NewLineRenderer constructs a LineRenderer; a nil styler leaves paths untouched.
func NewLineRenderer(pathStyler PathStyler) *LineRenderer {
	return &LineRenderer{pathStyler: pathStyler}
}

// NewHighlightPathStyler returns a styler rendering repository paths in bold blue.
func NewHighlightPathStyler() PathStyler {
	pathStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(pathHighlightColorConstant))
	return func(repositoryPath string) string {
		return pathStyle.Render(repositoryPath)
	}
}

// Log appends the result. A single trailing line break of the output is dropped so each entry stays on one line.
func (renderer *LineRenderer) Log(result execshell.ExecutionResult) error {
	if len(result.RepositoryPath) == 0 {
		return ErrRepositoryPathMissing
	}

	displayedPath := result.RepositoryPath
	if renderer.pathStyler != nil {
		displayedPath = renderer.pathStyler(displayedPath)
	}

	renderer.buffer.WriteString(fmt.Sprintf(lineEntryTemplateConstant, displayedPath, trimSingleLineBreak(result.StandardOutput)))
	return nil
}

// Render returns everything logged so far.
func (renderer *LineRenderer) Render() (string, error) {
	return renderer.buffer.String(), nil
}

func trimSingleLineBreak(output string) string {
	if trimmed, found := strings.CutSuffix(output, "\n"); found {
		return strings.TrimSuffix(trimmed, "\r")
	}
	return output
}
