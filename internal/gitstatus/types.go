package gitstatus

import "errors"

// RepoStatus enumerates the mutually exclusive publication states of a repository.
type RepoStatus string

// Supported repository statuses.
const (
	// RepoStatusClean marks repositories whose current branch needs no publishing action.
	RepoStatusClean RepoStatus = "clean"
	// RepoStatusHasUnpushed marks repositories with local commits absent from their upstream or with no upstream configured.
	RepoStatusHasUnpushed RepoStatus = "has_unpushed"
	// RepoStatusMissingHead marks repositories without a resolvable current reference.
	RepoStatusMissingHead RepoStatus = "missing_head"
)

// Sentinel errors distinguishing normal reference outcomes from classification failures.
var (
	// ErrHeadNotFound reports that the repository has no resolvable HEAD reference.
	ErrHeadNotFound = errors.New("head reference not found")
	// ErrNoUpstream reports that the current branch has no upstream tracking reference.
	ErrNoUpstream = errors.New("branch has no upstream configured")
)

// BranchReference couples a branch name with its resolved commit identifier.
type BranchReference struct {
	Name     string
	Target   string
	Detached bool
}

// RepositoryInspector opens repositories for read-only reference inspection.
type RepositoryInspector interface {
	OpenRepository(repositoryPath string) (RepositoryHandle, error)
}

// RepositoryHandle exposes the reference and commit-graph queries required to
// classify a single repository. Handles live for one classification call and
// never mutate repository state.
type RepositoryHandle interface {
	// CurrentBranch resolves HEAD, returning ErrHeadNotFound for unborn or missing references.
	CurrentBranch() (BranchReference, error)
	// LocalBranchTarget resolves the named local branch to its commit identifier.
	LocalBranchTarget(branchName string) (string, error)
	// UpstreamTarget resolves the tracking reference of the named branch, returning ErrNoUpstream when none is configured.
	UpstreamTarget(branchName string) (string, error)
	// CountAheadBehind computes the divergence between two commit identifiers via graph reachability.
	CountAheadBehind(localTarget string, upstreamTarget string) (aheadCount int, behindCount int, queryError error)
}
