package gitrepo_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/temirov/unpushed/internal/gitrepo"
	"github.com/temirov/unpushed/internal/gitstatus"
)

const (
	originRemoteNameConstant    = "origin"
	fixtureAuthorNameConstant   = "unpushed-test"
	fixtureAuthorEmailConstant  = "unpushed@example.com"
	fixtureFilePermissions      = 0o600
	firstCommitFileNameConstant = "first.txt"
	firstCommitMessageConstant  = "first commit"
)

func initializeRepository(testInstance *testing.T) (string, *git.Repository) {
	testInstance.Helper()

	repositoryDirectory := testInstance.TempDir()
	repository, initializationError := git.PlainInit(repositoryDirectory, false)
	require.NoError(testInstance, initializationError)
	return repositoryDirectory, repository
}

func commitFile(testInstance *testing.T, repository *git.Repository, repositoryDirectory string, fileName string, content string, message string) plumbing.Hash {
	testInstance.Helper()

	writeError := os.WriteFile(filepath.Join(repositoryDirectory, fileName), []byte(content), fixtureFilePermissions)
	require.NoError(testInstance, writeError)

	worktree, worktreeError := repository.Worktree()
	require.NoError(testInstance, worktreeError)

	_, addError := worktree.Add(fileName)
	require.NoError(testInstance, addError)

	commitHash, commitError := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  fixtureAuthorNameConstant,
			Email: fixtureAuthorEmailConstant,
			When:  time.Unix(0, 0),
		},
	})
	require.NoError(testInstance, commitError)
	return commitHash
}

func currentBranchName(testInstance *testing.T, repository *git.Repository) string {
	testInstance.Helper()

	headReference, headError := repository.Head()
	require.NoError(testInstance, headError)
	return headReference.Name().Short()
}

func configureUpstream(testInstance *testing.T, repository *git.Repository, branchName string, upstreamHash plumbing.Hash) {
	testInstance.Helper()

	branchCreationError := repository.CreateBranch(&gitconfig.Branch{
		Name:   branchName,
		Remote: originRemoteNameConstant,
		Merge:  plumbing.NewBranchReferenceName(branchName),
	})
	require.NoError(testInstance, branchCreationError)

	trackingReferenceName := plumbing.NewRemoteReferenceName(originRemoteNameConstant, branchName)
	referenceError := repository.Storer.SetReference(plumbing.NewHashReference(trackingReferenceName, upstreamHash))
	require.NoError(testInstance, referenceError)
}

func resetLocalBranch(testInstance *testing.T, repository *git.Repository, branchName string, branchHash plumbing.Hash) {
	testInstance.Helper()

	branchReferenceName := plumbing.NewBranchReferenceName(branchName)
	referenceError := repository.Storer.SetReference(plumbing.NewHashReference(branchReferenceName, branchHash))
	require.NoError(testInstance, referenceError)
}

func classifyRepository(testInstance *testing.T, repositoryDirectory string) gitstatus.RepoStatus {
	testInstance.Helper()

	classifier := gitstatus.NewClassifier(gitrepo.NewInspector())
	status, classificationError := classifier.Classify(repositoryDirectory)
	require.NoError(testInstance, classificationError)
	return status
}

func TestClassifyCleanRepositoryMatchingUpstream(testInstance *testing.T) {
	repositoryDirectory, repository := initializeRepository(testInstance)
	commitHash := commitFile(testInstance, repository, repositoryDirectory, firstCommitFileNameConstant, "content", firstCommitMessageConstant)
	configureUpstream(testInstance, repository, currentBranchName(testInstance, repository), commitHash)

	require.Equal(testInstance, gitstatus.RepoStatusClean, classifyRepository(testInstance, repositoryDirectory))
}

func TestClassifyRepositoryWithUnpushedCommit(testInstance *testing.T) {
	repositoryDirectory, repository := initializeRepository(testInstance)
	publishedHash := commitFile(testInstance, repository, repositoryDirectory, firstCommitFileNameConstant, "content", firstCommitMessageConstant)
	configureUpstream(testInstance, repository, currentBranchName(testInstance, repository), publishedHash)
	commitFile(testInstance, repository, repositoryDirectory, "second.txt", "more content", "unpushed commit")

	require.Equal(testInstance, gitstatus.RepoStatusHasUnpushed, classifyRepository(testInstance, repositoryDirectory))
}

func TestClassifyBareRepositoryWithoutCommits(testInstance *testing.T) {
	repositoryDirectory := testInstance.TempDir()
	_, initializationError := git.PlainInit(repositoryDirectory, true)
	require.NoError(testInstance, initializationError)

	require.Equal(testInstance, gitstatus.RepoStatusMissingHead, classifyRepository(testInstance, repositoryDirectory))
}

func TestClassifyFreshRepositoryWithoutCommits(testInstance *testing.T) {
	repositoryDirectory, _ := initializeRepository(testInstance)

	require.Equal(testInstance, gitstatus.RepoStatusMissingHead, classifyRepository(testInstance, repositoryDirectory))
}

func TestClassifyRepositoryWithoutUpstream(testInstance *testing.T) {
	repositoryDirectory, repository := initializeRepository(testInstance)
	commitFile(testInstance, repository, repositoryDirectory, firstCommitFileNameConstant, "content", firstCommitMessageConstant)

	require.Equal(testInstance, gitstatus.RepoStatusHasUnpushed, classifyRepository(testInstance, repositoryDirectory))
}

func TestClassifyRepositoryBehindUpstream(testInstance *testing.T) {
	repositoryDirectory, repository := initializeRepository(testInstance)
	firstHash := commitFile(testInstance, repository, repositoryDirectory, firstCommitFileNameConstant, "content", firstCommitMessageConstant)
	branchName := currentBranchName(testInstance, repository)
	secondHash := commitFile(testInstance, repository, repositoryDirectory, "second.txt", "remote content", "remote commit")

	configureUpstream(testInstance, repository, branchName, secondHash)
	resetLocalBranch(testInstance, repository, branchName, firstHash)

	require.Equal(testInstance, gitstatus.RepoStatusClean, classifyRepository(testInstance, repositoryDirectory))
}

func TestClassifyDivergedRepository(testInstance *testing.T) {
	repositoryDirectory, repository := initializeRepository(testInstance)
	firstHash := commitFile(testInstance, repository, repositoryDirectory, firstCommitFileNameConstant, "content", firstCommitMessageConstant)
	branchName := currentBranchName(testInstance, repository)
	remoteHash := commitFile(testInstance, repository, repositoryDirectory, "remote.txt", "remote content", "remote commit")

	configureUpstream(testInstance, repository, branchName, remoteHash)
	resetLocalBranch(testInstance, repository, branchName, firstHash)
	commitFile(testInstance, repository, repositoryDirectory, "local.txt", "local content", "local commit")

	require.Equal(testInstance, gitstatus.RepoStatusHasUnpushed, classifyRepository(testInstance, repositoryDirectory))
}

func TestClassifyDetachedHeadRepository(testInstance *testing.T) {
	repositoryDirectory, repository := initializeRepository(testInstance)
	commitHash := commitFile(testInstance, repository, repositoryDirectory, firstCommitFileNameConstant, "content", firstCommitMessageConstant)

	detachError := repository.Storer.SetReference(plumbing.NewHashReference(plumbing.HEAD, commitHash))
	require.NoError(testInstance, detachError)

	require.Equal(testInstance, gitstatus.RepoStatusClean, classifyRepository(testInstance, repositoryDirectory))
}

func TestClassifyNonRepositoryDirectoryFails(testInstance *testing.T) {
	classifier := gitstatus.NewClassifier(gitrepo.NewInspector())

	_, classificationError := classifier.Classify(testInstance.TempDir())
	require.Error(testInstance, classificationError)
}

func TestClassifyRepositoryIsIdempotent(testInstance *testing.T) {
	repositoryDirectory, repository := initializeRepository(testInstance)
	publishedHash := commitFile(testInstance, repository, repositoryDirectory, firstCommitFileNameConstant, "content", firstCommitMessageConstant)
	configureUpstream(testInstance, repository, currentBranchName(testInstance, repository), publishedHash)
	commitFile(testInstance, repository, repositoryDirectory, "second.txt", "more content", "unpushed commit")

	firstStatus := classifyRepository(testInstance, repositoryDirectory)
	secondStatus := classifyRepository(testInstance, repositoryDirectory)
	require.Equal(testInstance, firstStatus, secondStatus)
	require.Equal(testInstance, gitstatus.RepoStatusHasUnpushed, firstStatus)
}
