// Package discovery locates git repositories beneath a scan root.
//
// It exposes FilesystemRepositoryWalker for pruned directory traversal and
// IgnorePatternMatcher for gitignore-syntax exclusion files supplied by the
// user.
package discovery
