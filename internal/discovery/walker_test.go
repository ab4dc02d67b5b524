package discovery_test

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/unpushed/internal/discovery"
)

const (
	gitMetadataDirectoryName       = ".git"
	projectDirectoryName           = "project"
	vendorDirectoryName            = "vendor"
	nestedToolDirectoryName        = "tool"
	hiddenDirectoryName            = ".cache"
	repositoryDirectoryPermissions = 0o755
)

func createRepositoryFixture(testInstance *testing.T, rootDirectory string, directorySegments ...string) string {
	testInstance.Helper()

	segments := append([]string{rootDirectory}, directorySegments...)
	repositoryPath := filepath.Join(segments...)
	creationError := os.MkdirAll(filepath.Join(repositoryPath, gitMetadataDirectoryName), repositoryDirectoryPermissions)
	require.NoError(testInstance, creationError)
	return repositoryPath
}

func collectRepositories(testInstance *testing.T, rootDirectory string, excluder discovery.PathExcluder) []string {
	testInstance.Helper()

	var discoveredRepositories []string
	repositoryWalker := discovery.NewFilesystemRepositoryWalker(excluder)
	walkError := repositoryWalker.WalkRepositories(rootDirectory, func(repositoryPath string) {
		discoveredRepositories = append(discoveredRepositories, repositoryPath)
	})
	require.NoError(testInstance, walkError)

	sort.Strings(discoveredRepositories)
	return discoveredRepositories
}

func TestWalkerDiscoversNestedRepositories(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	projectRepository := createRepositoryFixture(testInstance, rootDirectory, projectDirectoryName)
	vendoredRepository := createRepositoryFixture(testInstance, rootDirectory, projectDirectoryName, vendorDirectoryName)
	toolRepository := createRepositoryFixture(testInstance, rootDirectory, nestedToolDirectoryName)

	expectedRepositories := []string{projectRepository, vendoredRepository, toolRepository}
	sort.Strings(expectedRepositories)

	require.Equal(testInstance, expectedRepositories, collectRepositories(testInstance, rootDirectory, nil))
}

func TestWalkerYieldsRepositoryRootExactlyOnce(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	repositoryPath := createRepositoryFixture(testInstance, rootDirectory, projectDirectoryName)

	require.Equal(testInstance, []string{repositoryPath}, collectRepositories(testInstance, rootDirectory, nil))
}

func TestWalkerDoesNotDescendIntoMetadataDirectory(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	repositoryPath := createRepositoryFixture(testInstance, rootDirectory, projectDirectoryName)

	nestedMetadataPath := filepath.Join(repositoryPath, gitMetadataDirectoryName, "modules", "submodule", gitMetadataDirectoryName)
	require.NoError(testInstance, os.MkdirAll(nestedMetadataPath, repositoryDirectoryPermissions))

	require.Equal(testInstance, []string{repositoryPath}, collectRepositories(testInstance, rootDirectory, nil))
}

func TestWalkerPrunesHiddenDirectories(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	visibleRepository := createRepositoryFixture(testInstance, rootDirectory, projectDirectoryName)
	createRepositoryFixture(testInstance, rootDirectory, hiddenDirectoryName, projectDirectoryName)

	require.Equal(testInstance, []string{visibleRepository}, collectRepositories(testInstance, rootDirectory, nil))
}

func TestWalkerScansHiddenNamedRoot(testInstance *testing.T) {
	parentDirectory := testInstance.TempDir()
	hiddenRootDirectory := filepath.Join(parentDirectory, hiddenDirectoryName)
	repositoryPath := createRepositoryFixture(testInstance, hiddenRootDirectory, projectDirectoryName)

	require.Equal(testInstance, []string{repositoryPath}, collectRepositories(testInstance, hiddenRootDirectory, nil))
}

func TestWalkerDoesNotFollowSymbolicLinks(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	outsideDirectory := testInstance.TempDir()
	createRepositoryFixture(testInstance, outsideDirectory, projectDirectoryName)

	symlinkPath := filepath.Join(rootDirectory, "linked")
	require.NoError(testInstance, os.Symlink(outsideDirectory, symlinkPath))

	require.Empty(testInstance, collectRepositories(testInstance, rootDirectory, nil))
}

func TestWalkerAppliesIgnorePatterns(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	projectRepository := createRepositoryFixture(testInstance, rootDirectory, projectDirectoryName)
	createRepositoryFixture(testInstance, rootDirectory, projectDirectoryName, vendorDirectoryName)

	excluder := discovery.NewIgnorePatternMatcher([]string{"vendor/"})

	require.Equal(testInstance, []string{projectRepository}, collectRepositories(testInstance, rootDirectory, excluder))
}

func TestWalkerIgnorePatternsPruneDescendants(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	visibleRepository := createRepositoryFixture(testInstance, rootDirectory, projectDirectoryName)
	createRepositoryFixture(testInstance, rootDirectory, "third_party", "library")

	excluder := discovery.NewIgnorePatternMatcher([]string{"third_party/"})

	require.Equal(testInstance, []string{visibleRepository}, collectRepositories(testInstance, rootDirectory, excluder))
}
