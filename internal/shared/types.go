// Package shared declares the abstractions command builders exchange with
// their default implementations.
package shared

import (
	"context"

	"github.com/kalifudge401/worktree-rainbow/internal/execshell"
	"github.com/kalifudge401/worktree-rainbow/internal/gitrepo"
)

// GitExecutor exposes the subset of shell execution used by repository services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// GitRepositoryManager exposes the repository inspection operations commands rely on.
type GitRepositoryManager interface {
	CurrentBranch(executionContext context.Context, repositoryPath string) (gitrepo.BranchReference, error)
	ResolveTopLevel(executionContext context.Context, repositoryPath string) (string, error)
	IsInsideWorkTree(executionContext context.Context, repositoryPath string) bool
}

// RepositoryDiscoverer locates Git work trees beneath configured roots.
type RepositoryDiscoverer interface {
	DiscoverRepositories(repositoryRoots []string) ([]string, error)
}
