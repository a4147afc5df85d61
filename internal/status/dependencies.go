package status

import (
	"context"

	"github.com/kalifudge401/worktree-rainbow/internal/gitrepo"
	"github.com/kalifudge401/worktree-rainbow/internal/palette"
)

// BranchInspector reads the branch a repository currently has checked out.
type BranchInspector interface {
	CurrentBranch(executionContext context.Context, repositoryPath string) (gitrepo.BranchReference, error)
}

// AssignmentReader looks up stored color assignments.
type AssignmentReader interface {
	Get(executionContext context.Context, repositoryRoot string, branchName string) (palette.Color, bool, error)
}
