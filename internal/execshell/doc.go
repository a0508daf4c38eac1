// Package execshell runs a user-supplied command inside a repository directory.
//
// CommandSpec holds the parsed command tokens, ExplicitDirectoryRunner and
// ProcessDirectoryRunner launch the child process with captured output, and
// ShellExecutor decorates any CommandRunner with zap lifecycle logging.
package execshell
