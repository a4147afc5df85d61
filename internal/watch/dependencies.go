package watch

import (
	"context"

	"github.com/kalifudge401/worktree-rainbow/internal/gitrepo"
)

// BranchReader reads the branch a repository currently has checked out.
type BranchReader interface {
	CurrentBranch(executionContext context.Context, repositoryPath string) (gitrepo.BranchReference, error)
}

// Synchronizer reconciles one repository's window chrome with a branch reference.
type Synchronizer interface {
	Synchronize(executionContext context.Context, repositoryRoot string, branchReference gitrepo.BranchReference) error
}

// NotificationSource invokes notify whenever a repository's branch pointer may
// have moved. Subscribe returns a stop function that releases the subscription.
type NotificationSource interface {
	Subscribe(executionContext context.Context, repositoryRoot string, notify func()) (func(), error)
}
