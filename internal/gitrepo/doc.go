// Package gitrepo implements the repository inspection capability on top of
// go-git.
//
// It exposes Inspector, which opens file-system repositories and answers the
// reference and commit-graph queries consumed by the gitstatus classifier.
// All operations are read-only.
package gitrepo
