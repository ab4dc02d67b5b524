package gitrepo

import (
	"errors"
	"fmt"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/temirov/unpushed/internal/gitstatus"
)

const (
	openRepositoryErrorTemplateConstant    = "open git repository: %w"
	resolveReferenceErrorTemplateConstant  = "resolve reference %s: %w"
	readBranchConfigErrorTemplateConstant  = "read branch configuration for %s: %w"
	resolveTrackingErrorTemplateConstant   = "resolve tracking reference %s: %w"
	invalidCommitIdentifierMessageConstant = "invalid commit identifier"
)

// Inspector opens repositories for classification through go-git.
type Inspector struct{}

// NewInspector constructs a go-git backed repository inspector.
func NewInspector() *Inspector {
	return &Inspector{}
}

// OpenRepository opens the repository rooted at repositoryPath.
func (inspector *Inspector) OpenRepository(repositoryPath string) (gitstatus.RepositoryHandle, error) {
	repository, openError := git.PlainOpen(repositoryPath)
	if openError != nil {
		return nil, fmt.Errorf(openRepositoryErrorTemplateConstant, openError)
	}
	return &repositoryHandle{repository: repository}, nil
}

type repositoryHandle struct {
	repository *git.Repository
}

// CurrentBranch resolves HEAD, reporting gitstatus.ErrHeadNotFound for unborn references.
func (handle *repositoryHandle) CurrentBranch() (gitstatus.BranchReference, error) {
	headReference, headError := handle.repository.Head()
	if headError != nil {
		if errors.Is(headError, plumbing.ErrReferenceNotFound) {
			return gitstatus.BranchReference{}, gitstatus.ErrHeadNotFound
		}
		return gitstatus.BranchReference{}, headError
	}

	if !headReference.Name().IsBranch() {
		return gitstatus.BranchReference{
			Target:   headReference.Hash().String(),
			Detached: true,
		}, nil
	}

	return gitstatus.BranchReference{
		Name:   headReference.Name().Short(),
		Target: headReference.Hash().String(),
	}, nil
}

// LocalBranchTarget resolves the named local branch to its commit identifier.
func (handle *repositoryHandle) LocalBranchTarget(branchName string) (string, error) {
	branchReferenceName := plumbing.NewBranchReferenceName(branchName)
	branchReference, referenceError := handle.repository.Reference(branchReferenceName, true)
	if referenceError != nil {
		return "", fmt.Errorf(resolveReferenceErrorTemplateConstant, branchReferenceName, referenceError)
	}
	return branchReference.Hash().String(), nil
}

// UpstreamTarget resolves the tracking reference configured for the named
// branch. A branch without tracking configuration, or whose remote-tracking
// reference is absent locally, yields gitstatus.ErrNoUpstream.
func (handle *repositoryHandle) UpstreamTarget(branchName string) (string, error) {
	branchConfiguration, configurationError := handle.repository.Branch(branchName)
	if configurationError != nil {
		if errors.Is(configurationError, git.ErrBranchNotFound) {
			return "", gitstatus.ErrNoUpstream
		}
		return "", fmt.Errorf(readBranchConfigErrorTemplateConstant, branchName, configurationError)
	}

	if len(branchConfiguration.Remote) == 0 || len(branchConfiguration.Merge) == 0 {
		return "", gitstatus.ErrNoUpstream
	}

	trackingReferenceName := plumbing.NewRemoteReferenceName(branchConfiguration.Remote, branchConfiguration.Merge.Short())
	trackingReference, trackingError := handle.repository.Reference(trackingReferenceName, true)
	if trackingError != nil {
		if errors.Is(trackingError, plumbing.ErrReferenceNotFound) {
			return "", gitstatus.ErrNoUpstream
		}
		return "", fmt.Errorf(resolveTrackingErrorTemplateConstant, trackingReferenceName, trackingError)
	}

	return trackingReference.Hash().String(), nil
}

// CountAheadBehind walks the commit graph from both targets and counts the
// commits reachable from exactly one of them.
func (handle *repositoryHandle) CountAheadBehind(localTarget string, upstreamTarget string) (int, int, error) {
	localHash := plumbing.NewHash(localTarget)
	upstreamHash := plumbing.NewHash(upstreamTarget)
	if localHash.IsZero() || upstreamHash.IsZero() {
		return 0, 0, errors.New(invalidCommitIdentifierMessageConstant)
	}

	const (
		localMark = 1 << iota
		upstreamMark
	)

	reachabilityMarks := make(map[plumbing.Hash]uint8)
	if markError := handle.markCommitGraph(localHash, localMark, reachabilityMarks); markError != nil {
		return 0, 0, markError
	}
	if markError := handle.markCommitGraph(upstreamHash, upstreamMark, reachabilityMarks); markError != nil {
		return 0, 0, markError
	}

	aheadCount := 0
	behindCount := 0
	for _, reachabilityMark := range reachabilityMarks {
		switch reachabilityMark {
		case localMark:
			aheadCount++
		case upstreamMark:
			behindCount++
		}
	}
	return aheadCount, behindCount, nil
}

func (handle *repositoryHandle) markCommitGraph(startHash plumbing.Hash, mark uint8, reachabilityMarks map[plumbing.Hash]uint8) error {
	pendingHashes := []plumbing.Hash{startHash}
	for len(pendingHashes) > 0 {
		lastIndex := len(pendingHashes) - 1
		currentHash := pendingHashes[lastIndex]
		pendingHashes = pendingHashes[:lastIndex]

		currentMark := reachabilityMarks[currentHash]
		if currentMark&mark != 0 {
			continue
		}

		commitObject, commitError := handle.repository.CommitObject(currentHash)
		if commitError != nil {
			return commitError
		}

		reachabilityMarks[currentHash] = currentMark | mark
		pendingHashes = append(pendingHashes, commitObject.ParentHashes...)
	}
	return nil
}
