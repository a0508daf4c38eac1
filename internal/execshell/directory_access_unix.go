//go:build unix

package execshell

import "golang.org/x/sys/unix"

// verifyDirectoryEnterable reports whether the process may search the directory, which a child needs to start inside it.
func verifyDirectoryEnterable(directory string) error {
	return unix.Access(directory, unix.X_OK)
}
