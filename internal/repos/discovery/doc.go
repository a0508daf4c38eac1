// Package discovery locates git repositories below a scan root.
//
// PathClassifier decides whether a single directory is a repository root and
// RepositoryWalker performs the depth-first traversal that prunes every
// subtree once its root has been classified as a repository.
package discovery
