package batch

import (
	"fmt"
	"io"
	"os"
)

// DiagnosticReporter emits per-repository diagnostics as they occur.
type DiagnosticReporter interface {
	Printf(format string, args ...any)
}

type writerReporter struct {
	writer io.Writer
}

// NewWriterReporter constructs a DiagnosticReporter that writes to the provided io.Writer.
// A nil writer selects standard error.
func NewWriterReporter(writer io.Writer) DiagnosticReporter {
	if writer == nil {
		writer = os.Stderr
	}
	return writerReporter{writer: writer}
}

func (reporter writerReporter) Printf(format string, args ...any) {
	fmt.Fprintf(reporter.writer, format, args...)
}
