// Package dependencies resolves command collaborators, falling back to the
// default implementations when a builder supplies none.
package dependencies

import (
	"go.uber.org/zap"

	"github.com/kalifudge401/worktree-rainbow/internal/execshell"
	"github.com/kalifudge401/worktree-rainbow/internal/gitrepo"
	"github.com/kalifudge401/worktree-rainbow/internal/shared"
	"github.com/kalifudge401/worktree-rainbow/internal/ui"
	"github.com/kalifudge401/worktree-rainbow/internal/workspace"
)

// ResolveRepositoryDiscoverer returns the provided discoverer or a filesystem-backed default.
func ResolveRepositoryDiscoverer(existing shared.RepositoryDiscoverer) shared.RepositoryDiscoverer {
	if existing != nil {
		return existing
	}
	return workspace.NewDiscoverer()
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed
// default. Human-readable logging attaches the console command event observer
// so each git invocation surfaces as a plain sentence.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger, humanReadableLogging bool) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	commandRunner := execshell.NewOSCommandRunner()
	if humanReadableLogging {
		return execshell.NewShellExecutorWithObserver(logger, commandRunner, ui.NewConsoleCommandEventLogger(logger))
	}
	return execshell.NewShellExecutor(logger, commandRunner)
}

// ResolveGitRepositoryManager returns the provided repository manager or constructs one from the executor.
func ResolveGitRepositoryManager(existing shared.GitRepositoryManager, executor shared.GitExecutor) (shared.GitRepositoryManager, error) {
	if existing != nil {
		return existing, nil
	}
	return gitrepo.NewRepositoryManager(executor)
}
