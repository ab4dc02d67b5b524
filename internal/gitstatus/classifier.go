package gitstatus

import (
	"errors"
	"fmt"
)

const (
	openRepositoryErrorTemplateConstant  = "unable to open repository at %s: %w"
	resolveHeadErrorTemplateConstant     = "unable to resolve head reference for %s: %w"
	resolveBranchErrorTemplateConstant   = "unable to resolve local branch %s in %s: %w"
	resolveUpstreamErrorTemplateConstant = "unable to resolve upstream of branch %s in %s: %w"
	divergenceErrorTemplateConstant      = "unable to compute divergence for %s: %w"
	missingBranchNameMessageConstant     = "head reference carries no branch name"
)

// Classifier derives a RepoStatus for one repository path at a time.
type Classifier struct {
	inspector RepositoryInspector
}

// NewClassifier constructs a Classifier backed by the provided inspector.
func NewClassifier(inspector RepositoryInspector) *Classifier {
	return &Classifier{inspector: inspector}
}

// Classify inspects the repository at repositoryPath and returns its status.
//
// MissingHead and "no upstream configured" are normal outcomes. Errors signal
// classification failures (unreadable repository, inconsistent reference
// state) scoped to this repository only.
func (classifier *Classifier) Classify(repositoryPath string) (RepoStatus, error) {
	repositoryHandle, openError := classifier.inspector.OpenRepository(repositoryPath)
	if openError != nil {
		return "", fmt.Errorf(openRepositoryErrorTemplateConstant, repositoryPath, openError)
	}

	currentBranch, headError := repositoryHandle.CurrentBranch()
	if headError != nil {
		if errors.Is(headError, ErrHeadNotFound) {
			return RepoStatusMissingHead, nil
		}
		return "", fmt.Errorf(resolveHeadErrorTemplateConstant, repositoryPath, headError)
	}

	if currentBranch.Detached {
		return RepoStatusClean, nil
	}

	if len(currentBranch.Name) == 0 {
		return "", errors.New(missingBranchNameMessageConstant)
	}

	localTarget, localTargetError := repositoryHandle.LocalBranchTarget(currentBranch.Name)
	if localTargetError != nil {
		return "", fmt.Errorf(resolveBranchErrorTemplateConstant, currentBranch.Name, repositoryPath, localTargetError)
	}

	upstreamTarget, upstreamError := repositoryHandle.UpstreamTarget(currentBranch.Name)
	if upstreamError != nil {
		if errors.Is(upstreamError, ErrNoUpstream) {
			return RepoStatusHasUnpushed, nil
		}
		return "", fmt.Errorf(resolveUpstreamErrorTemplateConstant, currentBranch.Name, repositoryPath, upstreamError)
	}

	if localTarget == upstreamTarget {
		return RepoStatusClean, nil
	}

	aheadCount, _, divergenceError := repositoryHandle.CountAheadBehind(localTarget, upstreamTarget)
	if divergenceError != nil {
		return "", fmt.Errorf(divergenceErrorTemplateConstant, repositoryPath, divergenceError)
	}

	if aheadCount > 0 {
		return RepoStatusHasUnpushed, nil
	}

	return RepoStatusClean, nil
}
