package colorize

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kalifudge401/worktree-rainbow/internal/gitrepo"
	"github.com/kalifudge401/worktree-rainbow/internal/palette"
	"github.com/kalifudge401/worktree-rainbow/internal/settings"
)

const (
	defaultBranchMainNameConstant   = "main"
	defaultBranchMasterNameConstant = "master"

	storeNotConfiguredMessageConstant     = "assignment store not configured"
	mergerNotConfiguredMessageConstant    = "settings merger not configured"
	generatorNotConfiguredMessageConstant = "color generator not configured"
	branchNotColorableMessageConstant     = "branch cannot carry a color"

	assignmentLookupErrorTemplateConstant  = "failed to look up color assignment: %w"
	assignmentPersistErrorTemplateConstant = "failed to persist color assignment: %w"
	assignmentDeleteErrorTemplateConstant  = "failed to delete color assignment: %w"
	paletteApplyErrorTemplateConstant      = "failed to apply branch palette: %w"
	managedClearErrorTemplateConstant      = "failed to clear managed color keys: %w"
	rerollRejectionTemplateConstant        = "%w: %s"

	appliedReportTemplateConstant       = "Branch %s in %s now wears %s"
	rerolledReportTemplateConstant      = "Branch %s in %s rerolled to %s"
	clearedReportTemplateConstant       = "Cleared color for branch %s in %s"
	clearedManagedReportConstant        = "Cleared managed color keys"
	rerollDetachedReportConstant        = "Cannot reroll: HEAD is detached"
	rerollDefaultReportTemplateConstant = "Cannot reroll %s: default branches keep neutral chrome"

	assignedColorLogMessageConstant     = "Assigned branch color"
	appliedPaletteLogMessageConstant    = "Applied branch palette"
	clearedManagedLogMessageConstant    = "Cleared managed color keys"
	deletedAssignmentLogMessageConstant = "Deleted branch assignment"
	operationFailedLogMessageConstant   = "Color operation failed"

	repositoryRootLogFieldConstant = "repository_root"
	branchLogFieldConstant         = "branch"
	colorLogFieldConstant          = "color"
)

var (
	// ErrStoreNotConfigured indicates the service was built without an assignment store.
	ErrStoreNotConfigured = errors.New(storeNotConfiguredMessageConstant)
	// ErrMergerNotConfigured indicates the service was built without a settings merger.
	ErrMergerNotConfigured = errors.New(mergerNotConfiguredMessageConstant)
	// ErrGeneratorNotConfigured indicates the service was built without a color generator.
	ErrGeneratorNotConfigured = errors.New(generatorNotConfiguredMessageConstant)
	// ErrBranchNotColorable indicates the branch is exempt from color assignments.
	ErrBranchNotColorable = errors.New(branchNotColorableMessageConstant)
)

// DefaultBranchNames returns the branch names that keep neutral chrome unless configured otherwise.
func DefaultBranchNames() []string {
	return []string{defaultBranchMainNameConstant, defaultBranchMasterNameConstant}
}

// IsDefaultBranch reports whether the branch name matches one of the configured default branches.
// Comparison is exact and case sensitive.
func IsDefaultBranch(branchName string, defaultBranchNames []string) bool {
	for _, defaultBranchName := range defaultBranchNames {
		if branchName == defaultBranchName {
			return true
		}
	}
	return false
}

// DeriveWorkspacePalette expands a branch identity color into the managed window chrome palette.
// The inactive pair reuses the identity color dimmed by inactiveDim so unfocused windows stay recognizable.
func DeriveWorkspacePalette(identityColor palette.Color, inactiveDim float64) settings.WorkspacePalette {
	inactiveBackground := palette.Darken(identityColor, inactiveDim)
	return settings.WorkspacePalette{
		TitleBarActiveBackground:   identityColor,
		TitleBarActiveForeground:   palette.ContrastInk(identityColor),
		TitleBarInactiveBackground: inactiveBackground,
		TitleBarInactiveForeground: palette.ContrastInk(inactiveBackground),
		StatusBarBackground:        identityColor,
		StatusBarForeground:        palette.ContrastInk(identityColor),
	}
}

// Dependencies bundles the collaborators a Service requires.
type Dependencies struct {
	Store     AssignmentStore
	Merger    SettingsMerger
	Generator ColorGenerator
	Reporter  StatusReporter
	Logger    *zap.Logger
}

// Options tunes optional service behavior.
type Options struct {
	DefaultBranches []string
	InactiveDim     float64
}

// Service coordinates branch color assignments with the managed settings keys.
type Service struct {
	store           AssignmentStore
	merger          SettingsMerger
	generator       ColorGenerator
	reporter        StatusReporter
	logger          *zap.Logger
	defaultBranches []string
	inactiveDim     float64
}

// NewService validates the dependencies and returns a configured Service.
func NewService(dependencies Dependencies, options Options) (*Service, error) {
	if dependencies.Store == nil {
		return nil, ErrStoreNotConfigured
	}
	if dependencies.Merger == nil {
		return nil, ErrMergerNotConfigured
	}
	if dependencies.Generator == nil {
		return nil, ErrGeneratorNotConfigured
	}
	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = noopStatusReporter{}
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	defaultBranches := DefaultBranchNames()
	if len(options.DefaultBranches) > 0 {
		defaultBranches = append([]string(nil), options.DefaultBranches...)
	}
	inactiveDim := options.InactiveDim
	if inactiveDim <= 0 || inactiveDim > 1 {
		inactiveDim = palette.DefaultInactiveDim
	}
	return &Service{
		store:           dependencies.Store,
		merger:          dependencies.Merger,
		generator:       dependencies.Generator,
		reporter:        reporter,
		logger:          logger,
		defaultBranches: defaultBranches,
		inactiveDim:     inactiveDim,
	}, nil
}

// DefaultBranches returns a copy of the configured default branch names.
func (service *Service) DefaultBranches() []string {
	return append([]string(nil), service.defaultBranches...)
}

// InactiveDim returns the dim factor applied to the inactive title bar background.
func (service *Service) InactiveDim() float64 {
	return service.inactiveDim
}

// BuildWorkspacePalette derives the managed palette for an identity color using the configured dim factor.
func (service *Service) BuildWorkspacePalette(identityColor palette.Color) settings.WorkspacePalette {
	return DeriveWorkspacePalette(identityColor, service.inactiveDim)
}

// Synchronize reconciles the settings document with the current branch of the repository.
// Default branches and detached heads clear the managed keys and leave the ledger untouched.
// Other branches reuse their stored assignment or receive a freshly generated one.
func (service *Service) Synchronize(executionContext context.Context, repositoryRoot string, branchReference gitrepo.BranchReference) error {
	if branchReference.IsDetached() || service.isDefaultBranch(branchReference.Name()) {
		return service.clearManagedKeys(executionContext, repositoryRoot, branchReference)
	}
	branchName := branchReference.Name()
	identityColor, assignmentFound, lookupError := service.store.Get(executionContext, repositoryRoot, branchName)
	if lookupError != nil {
		return service.failOperation(repositoryRoot, branchName, fmt.Errorf(assignmentLookupErrorTemplateConstant, lookupError))
	}
	if !assignmentFound {
		identityColor = service.generator.Generate()
		if persistError := service.store.Put(executionContext, repositoryRoot, branchName, identityColor); persistError != nil {
			return service.failOperation(repositoryRoot, branchName, fmt.Errorf(assignmentPersistErrorTemplateConstant, persistError))
		}
		service.logger.Info(assignedColorLogMessageConstant,
			zap.String(repositoryRootLogFieldConstant, repositoryRoot),
			zap.String(branchLogFieldConstant, branchName),
			zap.String(colorLogFieldConstant, identityColor.Hex()))
	}
	if applyError := service.applyAssignedPalette(executionContext, repositoryRoot, branchName, identityColor); applyError != nil {
		return applyError
	}
	service.reporter.Info(fmt.Sprintf(appliedReportTemplateConstant, branchName, repositoryRoot, identityColor.Hex()))
	return nil
}

// Reroll discards any stored assignment for the branch and persists a fresh color.
// Detached heads and default branches are rejected with ErrBranchNotColorable.
func (service *Service) Reroll(executionContext context.Context, repositoryRoot string, branchReference gitrepo.BranchReference) error {
	if branchReference.IsDetached() {
		service.reporter.Warn(rerollDetachedReportConstant)
		return fmt.Errorf(rerollRejectionTemplateConstant, ErrBranchNotColorable, branchReference.String())
	}
	branchName := branchReference.Name()
	if service.isDefaultBranch(branchName) {
		service.reporter.Warn(fmt.Sprintf(rerollDefaultReportTemplateConstant, branchName))
		return fmt.Errorf(rerollRejectionTemplateConstant, ErrBranchNotColorable, branchName)
	}
	identityColor := service.generator.Generate()
	if persistError := service.store.Put(executionContext, repositoryRoot, branchName, identityColor); persistError != nil {
		return service.failOperation(repositoryRoot, branchName, fmt.Errorf(assignmentPersistErrorTemplateConstant, persistError))
	}
	service.logger.Info(assignedColorLogMessageConstant,
		zap.String(repositoryRootLogFieldConstant, repositoryRoot),
		zap.String(branchLogFieldConstant, branchName),
		zap.String(colorLogFieldConstant, identityColor.Hex()))
	if applyError := service.applyAssignedPalette(executionContext, repositoryRoot, branchName, identityColor); applyError != nil {
		return applyError
	}
	service.reporter.Info(fmt.Sprintf(rerolledReportTemplateConstant, branchName, repositoryRoot, identityColor.Hex()))
	return nil
}

// Clear removes the stored assignment for the branch and resets the managed keys.
// Both steps run even when one fails so a broken ledger cannot leave stale chrome behind.
func (service *Service) Clear(executionContext context.Context, repositoryRoot string, branchReference gitrepo.BranchReference) error {
	var deleteError error
	if !branchReference.IsDetached() {
		if removalError := service.store.Delete(executionContext, repositoryRoot, branchReference.Name()); removalError != nil {
			deleteError = fmt.Errorf(assignmentDeleteErrorTemplateConstant, removalError)
		} else {
			service.logger.Debug(deletedAssignmentLogMessageConstant,
				zap.String(repositoryRootLogFieldConstant, repositoryRoot),
				zap.String(branchLogFieldConstant, branchReference.Name()))
		}
	}
	var clearError error
	if managedError := service.merger.ClearManaged(executionContext); managedError != nil {
		clearError = fmt.Errorf(managedClearErrorTemplateConstant, managedError)
	} else {
		service.logger.Debug(clearedManagedLogMessageConstant,
			zap.String(repositoryRootLogFieldConstant, repositoryRoot),
			zap.String(branchLogFieldConstant, branchReference.String()))
	}
	if combinedError := errors.Join(deleteError, clearError); combinedError != nil {
		service.logger.Error(operationFailedLogMessageConstant,
			zap.String(repositoryRootLogFieldConstant, repositoryRoot),
			zap.String(branchLogFieldConstant, branchReference.String()),
			zap.Error(combinedError))
		service.reporter.Error(combinedError.Error())
		return combinedError
	}
	if branchReference.IsDetached() {
		service.reporter.Info(clearedManagedReportConstant)
		return nil
	}
	service.reporter.Info(fmt.Sprintf(clearedReportTemplateConstant, branchReference.Name(), repositoryRoot))
	return nil
}

func (service *Service) clearManagedKeys(executionContext context.Context, repositoryRoot string, branchReference gitrepo.BranchReference) error {
	if clearError := service.merger.ClearManaged(executionContext); clearError != nil {
		return service.failOperation(repositoryRoot, branchReference.String(), fmt.Errorf(managedClearErrorTemplateConstant, clearError))
	}
	service.logger.Debug(clearedManagedLogMessageConstant,
		zap.String(repositoryRootLogFieldConstant, repositoryRoot),
		zap.String(branchLogFieldConstant, branchReference.String()))
	service.reporter.Info(clearedManagedReportConstant)
	return nil
}

func (service *Service) applyAssignedPalette(executionContext context.Context, repositoryRoot string, branchName string, identityColor palette.Color) error {
	workspacePalette := service.BuildWorkspacePalette(identityColor)
	if applyError := service.merger.ApplyPalette(executionContext, workspacePalette); applyError != nil {
		return service.failOperation(repositoryRoot, branchName, fmt.Errorf(paletteApplyErrorTemplateConstant, applyError))
	}
	service.logger.Debug(appliedPaletteLogMessageConstant,
		zap.String(repositoryRootLogFieldConstant, repositoryRoot),
		zap.String(branchLogFieldConstant, branchName),
		zap.String(colorLogFieldConstant, identityColor.Hex()))
	return nil
}

func (service *Service) failOperation(repositoryRoot string, branchName string, operationError error) error {
	service.logger.Error(operationFailedLogMessageConstant,
		zap.String(repositoryRootLogFieldConstant, repositoryRoot),
		zap.String(branchLogFieldConstant, branchName),
		zap.Error(operationError))
	service.reporter.Error(operationError.Error())
	return operationError
}

func (service *Service) isDefaultBranch(branchName string) bool {
	return IsDefaultBranch(branchName, service.defaultBranches)
}
