package discovery

import (
	"errors"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/gitexec/internal/repos/filesystem"
	pathutils "github.com/temirov/gitexec/internal/utils/path"
)

const (
	repositoryDiscoveredMessageConstant = "repository discovered"
	directoryVisitedMessageConstant     = "directory visited"
	symlinkSkippedMessageConstant       = "dangling symbolic link skipped"
	pathFieldNameConstant               = "path"
	depthFieldNameConstant              = "depth"
	entryTypeFieldNameConstant          = "entry_type"
)

// EntryType classifies a DirectoryEntry.
type EntryType int

// Supported entry types.
const (
	EntryTypeDirectory EntryType = iota
	EntryTypeFile
	EntryTypeSymlink
)

// String returns the lowercase entry type name.
func (entryType EntryType) String() string {
	switch entryType {
	case EntryTypeDirectory:
		return "directory"
	case EntryTypeSymlink:
		return "symlink"
	default:
		return "file"
	}
}

// DirectoryEntry describes a path encountered during traversal.
type DirectoryEntry struct {
	Path  string
	Type  EntryType
	Depth int
}

// RepositoryWalker traverses directory trees and collects repository roots.
type RepositoryWalker struct {
	fileSystem filesystem.FileSystem
	classifier *PathClassifier
	logger     *zap.Logger
}

// NewRepositoryWalker constructs a walker; nil dependencies fall back to the operating system and a no-op logger.
func NewRepositoryWalker(fileSystem filesystem.FileSystem, logger *zap.Logger) *RepositoryWalker {
	if fileSystem == nil {
		fileSystem = filesystem.NewOSFileSystem()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RepositoryWalker{
		fileSystem: fileSystem,
		classifier: NewPathClassifier(fileSystem),
		logger:     logger,
	}
}

// Discover walks root depth-first and returns canonical repository paths in discovery order.
// Subtrees of a repository root are never entered. A missing root yields no repositories.
func (walker *RepositoryWalker) Discover(root string, followSymlinks bool) ([]string, error) {
	rootInfo, statError := walker.fileSystem.Stat(root)
	if statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, TraversalError{Path: root, Cause: statError}
	}
	if !rootInfo.IsDir() {
		return []string{}, nil
	}

	canonicalRoot, canonicalError := filesystem.Canonicalize(walker.fileSystem, root)
	if canonicalError != nil {
		return nil, TraversalError{Path: root, Cause: canonicalError}
	}

	traversal := &repositoryTraversal{
		walker:         walker,
		followSymlinks: followSymlinks,
		repositories:   []string{},
	}

	rootEntry := DirectoryEntry{Path: root, Type: EntryTypeDirectory, Depth: 0}
	if visitError := traversal.visit(rootEntry, []string{canonicalRoot}); visitError != nil {
		return nil, visitError
	}

	if followSymlinks {
		return pathutils.PruneNestedPaths(traversal.repositories), nil
	}
	return traversal.repositories, nil
}

type repositoryTraversal struct {
	walker         *RepositoryWalker
	followSymlinks bool
	repositories   []string
}

// visit processes one directory; ancestors holds canonical paths from the root down to entry itself.
func (traversal *repositoryTraversal) visit(entry DirectoryEntry, ancestors []string) error {
	walker := traversal.walker
	walker.logger.Debug(directoryVisitedMessageConstant,
		zap.String(pathFieldNameConstant, entry.Path),
		zap.Int(depthFieldNameConstant, entry.Depth),
		zap.Stringer(entryTypeFieldNameConstant, entry.Type),
	)

	if walker.classifier.IsRepositoryRoot(entry.Path) {
		canonicalPath, canonicalError := filesystem.Canonicalize(walker.fileSystem, entry.Path)
		if canonicalError != nil {
			return TraversalError{Path: entry.Path, Cause: canonicalError}
		}
		traversal.repositories = append(traversal.repositories, canonicalPath)
		walker.logger.Debug(repositoryDiscoveredMessageConstant, zap.String(pathFieldNameConstant, canonicalPath))
		return nil
	}

	childEntries, readError := walker.fileSystem.ReadDir(entry.Path)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return nil
		}
		return TraversalError{Path: entry.Path, Cause: readError}
	}

	currentCanonical := ancestors[len(ancestors)-1]
	for _, childEntry := range childEntries {
		childPath := filepath.Join(entry.Path, childEntry.Name())

		switch {
		case childEntry.IsDir():
			childAncestors := append(ancestors[:len(ancestors):len(ancestors)], filepath.Join(currentCanonical, childEntry.Name()))
			childDirectory := DirectoryEntry{Path: childPath, Type: EntryTypeDirectory, Depth: entry.Depth + 1}
			if visitError := traversal.visit(childDirectory, childAncestors); visitError != nil {
				return visitError
			}
		case childEntry.Type()&fs.ModeSymlink != 0 && traversal.followSymlinks:
			linkTarget, followable, resolveError := traversal.resolveDirectoryLink(childPath)
			if resolveError != nil {
				return resolveError
			}
			if !followable {
				continue
			}
			for _, ancestor := range ancestors {
				if ancestor == linkTarget {
					return SymlinkLoopError{Path: childPath, Ancestor: ancestor}
				}
			}
			childAncestors := append(ancestors[:len(ancestors):len(ancestors)], linkTarget)
			linkedDirectory := DirectoryEntry{Path: childPath, Type: EntryTypeSymlink, Depth: entry.Depth + 1}
			if visitError := traversal.visit(linkedDirectory, childAncestors); visitError != nil {
				return visitError
			}
		}
	}

	return nil
}

// resolveDirectoryLink returns the canonical target of a symbolic link and whether it points at a directory.
func (traversal *repositoryTraversal) resolveDirectoryLink(linkPath string) (string, bool, error) {
	walker := traversal.walker
	targetInfo, statError := walker.fileSystem.Stat(linkPath)
	if statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			walker.logger.Debug(symlinkSkippedMessageConstant, zap.String(pathFieldNameConstant, linkPath))
			return "", false, nil
		}
		return "", false, TraversalError{Path: linkPath, Cause: statError}
	}
	if !targetInfo.IsDir() {
		return "", false, nil
	}

	linkTarget, evaluationError := filesystem.Canonicalize(walker.fileSystem, linkPath)
	if evaluationError != nil {
		return "", false, TraversalError{Path: linkPath, Cause: evaluationError}
	}
	return linkTarget, true, nil
}
