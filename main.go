package main

import (
	"fmt"
	"os"

	"github.com/temirov/gitexec/cmd/cli"
	"github.com/temirov/gitexec/internal/batch"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the gitexec command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(batch.ExitStatusFor(executionError))
	}
}
