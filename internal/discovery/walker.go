package discovery

import (
	"io/fs"
	"path/filepath"
	"strings"
)

const (
	gitMetadataDirectoryNameConstant = ".git"
	hiddenEntryPrefixConstant        = "."
)

// RepositoryVisitor receives each discovered repository root exactly once.
type RepositoryVisitor func(repositoryPath string)

// PathExcluder decides whether a directory entry is pruned from traversal.
type PathExcluder interface {
	Excluded(relativePath string, isDirectory bool) bool
}

// FilesystemRepositoryWalker locates git repositories on disk.
//
// The walk is sequential and depth-first, never follows symbolic links, and
// yields the parent of every directory entry named .git. The walker does not
// descend into the metadata directory itself. Unreadable entries are skipped
// and never abort the traversal.
type FilesystemRepositoryWalker struct {
	excluder PathExcluder
}

// NewFilesystemRepositoryWalker constructs a walker with an optional excluder.
func NewFilesystemRepositoryWalker(excluder PathExcluder) *FilesystemRepositoryWalker {
	return &FilesystemRepositoryWalker{excluder: excluder}
}

// WalkRepositories traverses rootPath and invokes visitor for every
// repository root found. The root itself is never excluded.
func (walker *FilesystemRepositoryWalker) WalkRepositories(rootPath string, visitor RepositoryVisitor) error {
	seenRepositories := make(map[string]struct{})

	return filepath.WalkDir(rootPath, func(entryPath string, directoryEntry fs.DirEntry, entryError error) error {
		if entryError != nil {
			return nil
		}

		if entryPath == rootPath {
			return nil
		}

		if !directoryEntry.IsDir() {
			return nil
		}

		entryName := directoryEntry.Name()

		if walker.excluder != nil {
			relativePath, relativeError := filepath.Rel(rootPath, entryPath)
			if relativeError == nil && walker.excluder.Excluded(relativePath, true) {
				return fs.SkipDir
			}
		}

		if entryName == gitMetadataDirectoryNameConstant {
			repositoryPath := filepath.Dir(entryPath)
			if _, alreadySeen := seenRepositories[repositoryPath]; !alreadySeen {
				seenRepositories[repositoryPath] = struct{}{}
				visitor(repositoryPath)
			}
			return fs.SkipDir
		}

		if strings.HasPrefix(entryName, hiddenEntryPrefixConstant) {
			return fs.SkipDir
		}

		return nil
	})
}
