package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kalifudge401/worktree-rainbow/internal/execshell"
)

const (
	gitRevParseSubcommandConstant        = "rev-parse"
	gitAbbrevRefFlagConstant             = "--abbrev-ref"
	gitShowToplevelFlagConstant          = "--show-toplevel"
	gitIsInsideWorkTreeFlagConstant      = "--is-inside-work-tree"
	gitHeadReferenceConstant             = "HEAD"
	gitTrueOutputConstant                = "true"
	executorNotConfiguredMessageConstant = "git executor not configured"
	currentBranchErrorTemplateConstant   = "failed to resolve current branch for %s: %w"
	topLevelErrorTemplateConstant        = "failed to resolve repository top level for %s: %w"
	emptyTopLevelMessageConstant         = "repository top level not reported"
)

// ErrGitExecutorNotConfigured indicates the repository manager was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// GitExecutor exposes the subset of shell execution used by the repository manager.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager inspects repositories through git plumbing commands.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager backed by the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// CurrentBranch resolves the checked-out branch of the repository at repositoryPath.
// A detached head is reported as a detached reference, not an error; git
// prints the literal HEAD token for detached checkouts.
func (manager *RepositoryManager) CurrentBranch(executionContext context.Context, repositoryPath string) (BranchReference, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return BranchReference{}, fmt.Errorf(currentBranchErrorTemplateConstant, repositoryPath, executionError)
	}

	branchName := strings.TrimSpace(executionResult.StandardOutput)
	if len(branchName) == 0 || branchName == gitHeadReferenceConstant {
		return DetachedHead(), nil
	}
	return NamedBranch(branchName), nil
}

// ResolveTopLevel resolves the work tree root containing the provided path.
func (manager *RepositoryManager) ResolveTopLevel(executionContext context.Context, path string) (string, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitShowToplevelFlagConstant},
		WorkingDirectory: path,
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return "", fmt.Errorf(topLevelErrorTemplateConstant, path, executionError)
	}

	topLevelPath := strings.TrimSpace(executionResult.StandardOutput)
	if len(topLevelPath) == 0 {
		return "", fmt.Errorf(topLevelErrorTemplateConstant, path, errors.New(emptyTopLevelMessageConstant))
	}
	return topLevelPath, nil
}

// IsInsideWorkTree reports whether the provided path resides inside a git work tree.
func (manager *RepositoryManager) IsInsideWorkTree(executionContext context.Context, path string) bool {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitIsInsideWorkTreeFlagConstant},
		WorkingDirectory: path,
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return false
	}
	return strings.TrimSpace(executionResult.StandardOutput) == gitTrueOutputConstant
}
