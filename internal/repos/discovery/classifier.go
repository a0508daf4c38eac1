package discovery

import (
	"path/filepath"
	"strings"

	"github.com/temirov/gitexec/internal/repos/filesystem"
)

const (
	gitMetadataDirectoryNameConstant = ".git"
	hiddenEntryPrefixConstant        = "."
)

// IsHidden reports whether the final path component name marks a hidden entry.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, hiddenEntryPrefixConstant)
}

// PathClassifier recognizes repository roots on a filesystem.
type PathClassifier struct {
	fileSystem filesystem.FileSystem
}

// NewPathClassifier constructs a PathClassifier; a nil filesystem selects the operating system.
func NewPathClassifier(fileSystem filesystem.FileSystem) *PathClassifier {
	if fileSystem == nil {
		fileSystem = filesystem.NewOSFileSystem()
	}
	return &PathClassifier{fileSystem: fileSystem}
}

// IsRepositoryRoot reports whether path is a visible, readable directory with a .git directory child.
// Paths that cannot be read or do not exist classify as false.
func (classifier *PathClassifier) IsRepositoryRoot(path string) bool {
	absolutePath, absoluteError := classifier.fileSystem.Abs(path)
	if absoluteError != nil {
		return false
	}
	if IsHidden(filepath.Base(absolutePath)) {
		return false
	}

	childEntries, readError := classifier.fileSystem.ReadDir(absolutePath)
	if readError != nil || len(childEntries) == 0 {
		return false
	}

	for _, childEntry := range childEntries {
		if childEntry.Name() != gitMetadataDirectoryNameConstant {
			continue
		}
		childInfo, statError := classifier.fileSystem.Stat(filepath.Join(absolutePath, childEntry.Name()))
		return statError == nil && childInfo.IsDir()
	}

	return false
}
