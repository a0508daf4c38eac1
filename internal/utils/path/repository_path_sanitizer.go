package pathutils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// RepositoryPathSanitizer normalizes user-supplied scan locations.
type RepositoryPathSanitizer struct {
	homeExpander *HomeExpander
}

// NewRepositoryPathSanitizer constructs a RepositoryPathSanitizer backed by the operating system home directory.
func NewRepositoryPathSanitizer() *RepositoryPathSanitizer {
	return NewRepositoryPathSanitizerWithExpander(nil)
}

// NewRepositoryPathSanitizerWithExpander constructs a RepositoryPathSanitizer using the provided expander.
func NewRepositoryPathSanitizerWithExpander(homeExpander *HomeExpander) *RepositoryPathSanitizer {
	resolvedExpander := homeExpander
	if resolvedExpander == nil {
		resolvedExpander = NewHomeExpander()
	}
	return &RepositoryPathSanitizer{homeExpander: resolvedExpander}
}

// Sanitize trims whitespace and expands the user's home directory. Blank input yields an empty string.
func (sanitizer *RepositoryPathSanitizer) Sanitize(candidatePath string) string {
	trimmedCandidate := strings.TrimSpace(candidatePath)
	if len(trimmedCandidate) == 0 {
		return ""
	}

	expander := NewHomeExpander()
	if sanitizer != nil && sanitizer.homeExpander != nil {
		expander = sanitizer.homeExpander
	}

	return filepath.Clean(expander.Expand(trimmedCandidate))
}

// PruneNestedPaths drops duplicates and any path located inside an earlier or later path of the set.
// Surviving paths keep their original relative order.
func PruneNestedPaths(candidatePaths []string) []string {
	pruned := make([]string, 0, len(candidatePaths))
	for candidateIndex, candidate := range candidatePaths {
		skip := false
		for otherIndex, other := range candidatePaths {
			if otherIndex == candidateIndex {
				continue
			}
			if comparisonPath(other) == comparisonPath(candidate) {
				if otherIndex < candidateIndex {
					skip = true
					break
				}
				continue
			}
			if isNestedPath(other, candidate) {
				skip = true
				break
			}
		}
		if !skip {
			pruned = append(pruned, candidate)
		}
	}
	return pruned
}

func comparisonPath(path string) string {
	comparison := filepath.Clean(path)
	if runtime.GOOS == "windows" {
		comparison = strings.ToLower(comparison)
	}
	return comparison
}

func isNestedPath(parent string, candidate string) bool {
	parentClean := comparisonPath(parent)
	candidateClean := comparisonPath(candidate)

	if len(candidateClean) <= len(parentClean) {
		return false
	}

	if !strings.HasPrefix(candidateClean, parentClean) {
		return false
	}

	parentEndsWithSeparator := parentClean[len(parentClean)-1] == os.PathSeparator
	if parentEndsWithSeparator {
		return true
	}

	return candidateClean[len(parentClean)] == os.PathSeparator
}
