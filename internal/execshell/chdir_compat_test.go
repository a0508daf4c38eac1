package execshell_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// chdirForTest mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdirForTest(testInstance testing.TB, directory string) {
	testInstance.Helper()
	originalDirectory, openError := os.Open(".")
	if openError != nil {
		testInstance.Fatal(openError)
	}
	if chdirError := os.Chdir(directory); chdirError != nil {
		testInstance.Fatal(chdirError)
	}
	switch runtime.GOOS {
	case "windows", "plan9":
	default:
		if !filepath.IsAbs(directory) {
			workingDirectory, getwdError := os.Getwd()
			if getwdError != nil {
				testInstance.Fatal(getwdError)
			}
			directory = workingDirectory
		}
		testInstance.Setenv("PWD", directory)
	}
	testInstance.Cleanup(func() {
		restoreError := originalDirectory.Chdir()
		originalDirectory.Close()
		if restoreError != nil {
			panic("chdirForTest: " + restoreError.Error())
		}
	})
}
