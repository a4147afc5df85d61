package status

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kalifudge401/worktree-rainbow/internal/colorize"
	"github.com/kalifudge401/worktree-rainbow/internal/gitrepo"
	"github.com/kalifudge401/worktree-rainbow/internal/palette"
)

const (
	branchReadFailedLogMessageConstant       = "failed to read current branch"
	assignmentLookupFailedLogMessageConstant = "failed to look up color assignment"
	repositoryRootLogFieldNameConstant       = "repository_root"
	branchNameLogFieldNameConstant           = "branch"
	branchInspectorRequiredMessageConstant   = "branch inspector not configured"
	assignmentReaderRequiredMessageConstant  = "assignment reader not configured"
)

var (
	// ErrBranchInspectorNotConfigured indicates the service was built without a branch inspector.
	ErrBranchInspectorNotConfigured = errors.New(branchInspectorRequiredMessageConstant)
	// ErrAssignmentReaderNotConfigured indicates the service was built without an assignment reader.
	ErrAssignmentReaderNotConfigured = errors.New(assignmentReaderRequiredMessageConstant)
)

// BranchColorState classifies how a repository's branch relates to the color store.
type BranchColorState string

const (
	// BranchStateColored marks a branch with a stored color assignment.
	BranchStateColored BranchColorState = "colored"
	// BranchStateUncolored marks a colorable branch without a stored assignment.
	BranchStateUncolored BranchColorState = "uncolored"
	// BranchStateDefault marks a default branch, which keeps neutral chrome.
	BranchStateDefault BranchColorState = "default"
	// BranchStateDetached marks a repository on a detached HEAD.
	BranchStateDetached BranchColorState = "detached"
)

// RepositoryStatus captures the inspected color state of one repository.
type RepositoryStatus struct {
	RepositoryRoot string
	Branch         gitrepo.BranchReference
	State          BranchColorState
	AssignedColor  palette.Color
	HasColor       bool
}

// Service inspects repositories and classifies their branch color state.
type Service struct {
	branchInspector  BranchInspector
	assignmentReader AssignmentReader
	defaultBranches  []string
	logger           *zap.Logger
}

// NewService constructs a Service. An empty default branch list falls back to
// the built-in defaults.
func NewService(branchInspector BranchInspector, assignmentReader AssignmentReader, defaultBranches []string, logger *zap.Logger) (*Service, error) {
	if branchInspector == nil {
		return nil, ErrBranchInspectorNotConfigured
	}
	if assignmentReader == nil {
		return nil, ErrAssignmentReaderNotConfigured
	}
	if len(defaultBranches) == 0 {
		defaultBranches = colorize.DefaultBranchNames()
	} else {
		configuredBranches := make([]string, len(defaultBranches))
		copy(configuredBranches, defaultBranches)
		defaultBranches = configuredBranches
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		branchInspector:  branchInspector,
		assignmentReader: assignmentReader,
		defaultBranches:  defaultBranches,
		logger:           logger,
	}, nil
}

// CollectStatuses inspects every repository and returns one status per
// readable repository. Repositories whose branch cannot be read are logged
// and skipped.
func (service *Service) CollectStatuses(executionContext context.Context, repositories []string) []RepositoryStatus {
	statuses := make([]RepositoryStatus, 0, len(repositories))
	for _, repositoryRoot := range repositories {
		repositoryStatus, inspected := service.inspectRepository(executionContext, repositoryRoot)
		if !inspected {
			continue
		}
		statuses = append(statuses, repositoryStatus)
	}
	return statuses
}

func (service *Service) inspectRepository(executionContext context.Context, repositoryRoot string) (RepositoryStatus, bool) {
	branchReference, branchReadError := service.branchInspector.CurrentBranch(executionContext, repositoryRoot)
	if branchReadError != nil {
		service.logger.Warn(branchReadFailedLogMessageConstant,
			zap.String(repositoryRootLogFieldNameConstant, repositoryRoot),
			zap.Error(branchReadError))
		return RepositoryStatus{}, false
	}

	repositoryStatus := RepositoryStatus{
		RepositoryRoot: repositoryRoot,
		Branch:         branchReference,
	}

	if branchReference.IsDetached() {
		repositoryStatus.State = BranchStateDetached
		return repositoryStatus, true
	}
	if colorize.IsDefaultBranch(branchReference.Name(), service.defaultBranches) {
		repositoryStatus.State = BranchStateDefault
		return repositoryStatus, true
	}

	assignedColor, assignmentFound, lookupError := service.assignmentReader.Get(executionContext, repositoryRoot, branchReference.Name())
	if lookupError != nil {
		service.logger.Warn(assignmentLookupFailedLogMessageConstant,
			zap.String(repositoryRootLogFieldNameConstant, repositoryRoot),
			zap.String(branchNameLogFieldNameConstant, branchReference.Name()),
			zap.Error(lookupError))
		repositoryStatus.State = BranchStateUncolored
		return repositoryStatus, true
	}
	if !assignmentFound {
		repositoryStatus.State = BranchStateUncolored
		return repositoryStatus, true
	}

	repositoryStatus.State = BranchStateColored
	repositoryStatus.AssignedColor = assignedColor
	repositoryStatus.HasColor = true
	return repositoryStatus, true
}
