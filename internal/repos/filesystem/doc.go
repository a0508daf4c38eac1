// Package filesystem adapts operating system file and working directory
// primitives behind the FileSystem interface so discovery and command
// execution can be exercised against fakes in tests.
package filesystem
