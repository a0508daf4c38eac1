package discovery

import "fmt"

const (
	traversalErrorTemplateConstant   = "unable to traverse %s: %v"
	symlinkLoopErrorTemplateConstant = "symbolic link loop detected at %s (resolves to ancestor %s)"
)

// TraversalError reports an I/O failure encountered while walking the directory tree.
type TraversalError struct {
	Path  string
	Cause error
}

// Error describes the traversal failure.
func (traversalError TraversalError) Error() string {
	return fmt.Sprintf(traversalErrorTemplateConstant, traversalError.Path, traversalError.Cause)
}

// Unwrap exposes the underlying error.
func (traversalError TraversalError) Unwrap() error {
	return traversalError.Cause
}

// SymlinkLoopError reports a followed symbolic link that resolves to one of its own ancestors.
type SymlinkLoopError struct {
	Path     string
	Ancestor string
}

// Error describes the loop.
func (loopError SymlinkLoopError) Error() string {
	return fmt.Sprintf(symlinkLoopErrorTemplateConstant, loopError.Path, loopError.Ancestor)
}
