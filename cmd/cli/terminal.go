package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// isTerminalWriter reports whether writer is a file attached to a terminal.
func isTerminalWriter(writer io.Writer) bool {
	fileWriter, isFile := writer.(*os.File)
	if !isFile || fileWriter == nil {
		return false
	}
	fileDescriptor := fileWriter.Fd()
	return isatty.IsTerminal(fileDescriptor) || isatty.IsCygwinTerminal(fileDescriptor)
}
