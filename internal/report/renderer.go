package report

import (
	"errors"

	"github.com/temirov/gitexec/internal/execshell"
)

const repositoryPathMissingMessageConstant = "execution result has no repository path"

// ErrRepositoryPathMissing indicates a result that cannot be attributed to a repository.
var ErrRepositoryPathMissing = errors.New(repositoryPathMissingMessageConstant)

// Renderer accumulates one entry per repository and produces the final report.
// Render must not mutate the accumulated state.
type Renderer interface {
	Log(result execshell.ExecutionResult) error
	Render() (string, error)
}

// PathStyler decorates a repository path before it is written into a line report.
type PathStyler func(repositoryPath string) string

// Options tunes renderer construction.
type Options struct {
	PathStyler PathStyler
}

// NewRenderer constructs the renderer for the requested format.
func NewRenderer(format OutputFormat, options Options) (Renderer, error) {
	switch format {
	case OutputFormatLine:
		return NewLineRenderer(options.PathStyler), nil
	case OutputFormatJSON:
		return NewKeyedRenderer(KeyEncodingJSON), nil
	case OutputFormatYAML:
		return NewKeyedRenderer(KeyEncodingYAML), nil
	default:
		return nil, UnsupportedOutputFormatError{Value: string(format)}
	}
}
