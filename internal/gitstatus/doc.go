// Package gitstatus classifies the publication state of a git repository's
// current branch relative to its configured upstream.
//
// It exposes Classifier for deriving a RepoStatus from one repository path and
// the RepositoryInspector capability interface that supplies reference and
// commit-graph access without prescribing a particular git implementation.
package gitstatus
