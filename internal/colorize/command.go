package colorize

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kalifudge401/worktree-rainbow/internal/assignments"
	"github.com/kalifudge401/worktree-rainbow/internal/dependencies"
	"github.com/kalifudge401/worktree-rainbow/internal/execshell"
	"github.com/kalifudge401/worktree-rainbow/internal/gitrepo"
	"github.com/kalifudge401/worktree-rainbow/internal/palette"
	"github.com/kalifudge401/worktree-rainbow/internal/settings"
	"github.com/kalifudge401/worktree-rainbow/internal/shared"
	"github.com/kalifudge401/worktree-rainbow/internal/ui"
	flagutils "github.com/kalifudge401/worktree-rainbow/internal/utils/flags"
	"github.com/kalifudge401/worktree-rainbow/internal/workspace"
)

const (
	applyCommandUseConstant          = "apply [path]"
	applyCommandShortDescription     = "Apply the current branch's color to the workspace chrome"
	applyCommandLongDescription      = "apply resolves the repository owning the given path, assigns the current branch a stable color when it has none, and projects the palette into the workspace settings document."
	rerollCommandUseConstant         = "reroll [path]"
	rerollCommandShortDescription    = "Replace the current branch's color with a fresh one"
	rerollCommandLongDescription     = "reroll discards any stored color for the current branch, generates a new one, and projects the refreshed palette into the workspace settings document."
	clearCommandUseConstant          = "clear [path]"
	clearCommandShortDescription     = "Remove the current branch's color and reset the workspace chrome"
	clearCommandLongDescription      = "clear deletes the stored color assignment for the current branch and removes the managed keys from the workspace settings document."
	gitUnavailableLogMessageConstant = "git executable unavailable; color commands disabled"

	notInsideWorkTreeTemplateConstant    = "path %s is not inside a Git work tree"
	noRepositoriesWarningMessageConstant = "no repositories found under configured roots"

	applyPreviewHeaderTemplateConstant     = "Would apply palette for branch %s in %s (color %s)\n"
	rerollPreviewHeaderTemplateConstant    = "Would reroll branch %s in %s to %s\n"
	previewEntryTemplateConstant           = "  %s: %s\n"
	clearPreviewAssignmentTemplateConstant = "Would delete color assignment for branch %s in %s\n"
	clearPreviewManagedTemplateConstant    = "Would clear managed color keys from %s\n"
)

type colorOperation int

const (
	operationApply colorOperation = iota
	operationReroll
	operationClear
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// MergerFactory creates a settings merger bound to the resolved settings path.
type MergerFactory func(settingsPath string) (SettingsMerger, error)

// CommandBuilder assembles the apply, reroll, and clear cobra commands with
// configurable dependencies. Nil dependency fields resolve to the default
// implementations.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	GitExecutor                  shared.GitExecutor
	GitManager                   shared.GitRepositoryManager
	Discoverer                   shared.RepositoryDiscoverer
	Store                        AssignmentStore
	MergerFactory                MergerFactory
	Generator                    ColorGenerator
	Reporter                     StatusReporter
	WorkingDirectory             string
}

// BuildApplyCommand constructs the apply command.
func (builder *CommandBuilder) BuildApplyCommand() (*cobra.Command, error) {
	return builder.buildCommand(applyCommandUseConstant, applyCommandShortDescription, applyCommandLongDescription, operationApply), nil
}

// BuildRerollCommand constructs the reroll command.
func (builder *CommandBuilder) BuildRerollCommand() (*cobra.Command, error) {
	return builder.buildCommand(rerollCommandUseConstant, rerollCommandShortDescription, rerollCommandLongDescription, operationReroll), nil
}

// BuildClearCommand constructs the clear command.
func (builder *CommandBuilder) BuildClearCommand() (*cobra.Command, error) {
	return builder.buildCommand(clearCommandUseConstant, clearCommandShortDescription, clearCommandLongDescription, operationClear), nil
}

func (builder *CommandBuilder) buildCommand(useLine string, shortDescription string, longDescription string, operation colorOperation) *cobra.Command {
	command := &cobra.Command{
		Use:   useLine,
		Short: shortDescription,
		Long:  longDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.runColorCommand(command, arguments, operation)
		},
	}

	flagutils.BindRootFlags(command, flagutils.RootFlagValues{}, flagutils.RootFlagDefinition{Enabled: true})
	flagutils.BindDryRunFlag(command, false)

	return command
}

func (builder *CommandBuilder) runColorCommand(command *cobra.Command, arguments []string, operation colorOperation) error {
	configuration := builder.resolveConfiguration()
	logger := builder.resolveLogger()
	reporter := builder.resolveReporter(logger)

	if builder.GitExecutor == nil {
		if gitError := execshell.EnsureGitAvailable(); gitError != nil {
			logger.Debug(gitUnavailableLogMessageConstant, zap.Error(gitError))
			return nil
		}
	}

	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, builder.humanReadableLoggingEnabled())
	if executorError != nil {
		return executorError
	}
	gitManager, managerError := dependencies.ResolveGitRepositoryManager(builder.GitManager, gitExecutor)
	if managerError != nil {
		return managerError
	}

	documentPath, documentPathError := builder.resolveDocumentPath(arguments)
	if documentPathError != nil {
		return documentPathError
	}

	repositoryRoot, repositoryFound, rootError := builder.resolveRepositoryRoot(command, configuration, gitManager, reporter, documentPath)
	if rootError != nil {
		return rootError
	}
	if !repositoryFound {
		return nil
	}

	branchReference, branchError := gitManager.CurrentBranch(command.Context(), repositoryRoot)
	if branchError != nil {
		return branchError
	}

	assignmentStore, storeError := builder.resolveStore(configuration)
	if storeError != nil {
		return storeError
	}
	settingsPath := ResolveSettingsPath(configuration.SettingsFilePath, repositoryRoot)
	settingsMerger, mergerError := builder.resolveMerger(settingsPath)
	if mergerError != nil {
		return mergerError
	}
	colorGenerator := builder.resolveGenerator()

	service, serviceError := NewService(
		Dependencies{
			Store:     assignmentStore,
			Merger:    settingsMerger,
			Generator: colorGenerator,
			Reporter:  reporter,
			Logger:    logger,
		},
		Options{
			DefaultBranches: configuration.DefaultBranches,
			InactiveDim:     configuration.InactiveDim,
		},
	)
	if serviceError != nil {
		return serviceError
	}

	executionFlags, executionFlagsAvailable := flagutils.ResolveExecutionFlags(command)
	if executionFlagsAvailable && executionFlags.DryRun {
		return builder.runPreview(command.Context(), command.OutOrStdout(), operation, service, assignmentStore, colorGenerator, repositoryRoot, branchReference, settingsPath)
	}

	switch operation {
	case operationReroll:
		return service.Reroll(command.Context(), repositoryRoot, branchReference)
	case operationClear:
		return service.Clear(command.Context(), repositoryRoot, branchReference)
	default:
		return service.Synchronize(command.Context(), repositoryRoot, branchReference)
	}
}

// runPreview renders the effect of an operation without touching the store or
// the settings document. Previews always succeed for rejected branches so the
// dry run stays side-effect free end to end.
func (builder *CommandBuilder) runPreview(executionContext context.Context, outputWriter io.Writer, operation colorOperation, service *Service, assignmentStore AssignmentStore, colorGenerator ColorGenerator, repositoryRoot string, branchReference gitrepo.BranchReference, settingsPath string) error {
	if operation == operationClear {
		if !branchReference.IsDetached() {
			fmt.Fprintf(outputWriter, clearPreviewAssignmentTemplateConstant, branchReference.Name(), repositoryRoot)
		}
		fmt.Fprintf(outputWriter, clearPreviewManagedTemplateConstant, settingsPath)
		return nil
	}

	branchExempt := branchReference.IsDetached() || IsDefaultBranch(branchReference.Name(), service.DefaultBranches())
	if branchExempt {
		if operation == operationReroll {
			if branchReference.IsDetached() {
				fmt.Fprintln(outputWriter, rerollDetachedReportConstant)
			} else {
				fmt.Fprintf(outputWriter, rerollDefaultReportTemplateConstant+"\n", branchReference.Name())
			}
			return nil
		}
		fmt.Fprintf(outputWriter, clearPreviewManagedTemplateConstant, settingsPath)
		return nil
	}

	identityColor := colorGenerator.Generate()
	headerTemplate := rerollPreviewHeaderTemplateConstant
	if operation == operationApply {
		headerTemplate = applyPreviewHeaderTemplateConstant
		storedColor, assignmentFound, lookupError := assignmentStore.Get(executionContext, repositoryRoot, branchReference.Name())
		if lookupError != nil {
			return fmt.Errorf(assignmentLookupErrorTemplateConstant, lookupError)
		}
		if assignmentFound {
			identityColor = storedColor
		}
	}

	fmt.Fprintf(outputWriter, headerTemplate, branchReference.Name(), repositoryRoot, identityColor.Hex())
	for _, managedEntry := range service.BuildWorkspacePalette(identityColor).ManagedEntries() {
		fmt.Fprintf(outputWriter, previewEntryTemplateConstant, managedEntry.Key, managedEntry.Value)
	}
	return nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveReporter(logger *zap.Logger) StatusReporter {
	if builder.Reporter != nil {
		return builder.Reporter
	}
	return ui.NewConsoleStatusReporter(logger)
}

func (builder *CommandBuilder) resolveStore(configuration CommandConfiguration) (AssignmentStore, error) {
	if builder.Store != nil {
		return builder.Store, nil
	}
	return OpenConfiguredStore(configuration)
}

// OpenConfiguredStore opens the assignment store named by the configuration,
// falling back to the default store location when none is configured.
func OpenConfiguredStore(configuration CommandConfiguration) (AssignmentStore, error) {
	storePath := configuration.StorePath
	if len(storePath) == 0 {
		defaultPath, pathError := assignments.DefaultStorePath()
		if pathError != nil {
			return nil, pathError
		}
		storePath = defaultPath
	}
	return assignments.NewFileStore(storePath)
}

func (builder *CommandBuilder) resolveMerger(settingsPath string) (SettingsMerger, error) {
	if builder.MergerFactory != nil {
		return builder.MergerFactory(settingsPath)
	}
	return settings.NewMerger(settingsPath)
}

func (builder *CommandBuilder) resolveGenerator() ColorGenerator {
	if builder.Generator != nil {
		return builder.Generator
	}
	return palette.NewGenerator(nil)
}

func (builder *CommandBuilder) humanReadableLoggingEnabled() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}

// resolveDocumentPath picks the active document path from the positional
// argument, falling back to the working directory.
func (builder *CommandBuilder) resolveDocumentPath(arguments []string) (string, error) {
	if len(arguments) > 0 {
		trimmedArgument := strings.TrimSpace(arguments[0])
		if len(trimmedArgument) > 0 {
			return trimmedArgument, nil
		}
	}
	if len(builder.WorkingDirectory) > 0 {
		return builder.WorkingDirectory, nil
	}
	return os.Getwd()
}

// resolveRepositoryRoot maps the document path onto a repository. Configured
// roots go through discovery and longest-prefix resolution; without roots the
// repository containing the document's directory is used directly. A false
// result means the warning path already ran and no work remains.
func (builder *CommandBuilder) resolveRepositoryRoot(command *cobra.Command, configuration CommandConfiguration, gitManager shared.GitRepositoryManager, reporter StatusReporter, documentPath string) (string, bool, error) {
	repositoryRoots := builder.determineRepositoryRoots(command, configuration)
	if len(repositoryRoots) == 0 {
		startDirectory := documentDirectory(documentPath)
		if !gitManager.IsInsideWorkTree(command.Context(), startDirectory) {
			return "", false, fmt.Errorf(notInsideWorkTreeTemplateConstant, documentPath)
		}
		topLevel, topLevelError := gitManager.ResolveTopLevel(command.Context(), startDirectory)
		if topLevelError != nil {
			return "", false, topLevelError
		}
		return topLevel, true, nil
	}

	normalizedRoots := workspace.NewRootNormalizer().Normalize(repositoryRoots)
	repositoryDiscoverer := dependencies.ResolveRepositoryDiscoverer(builder.Discoverer)
	discoveredRepositories, discoveryError := repositoryDiscoverer.DiscoverRepositories(normalizedRoots)
	if discoveryError != nil {
		return "", false, discoveryError
	}

	repositoryResolver, resolverError := workspace.NewResolver(discoveredRepositories)
	if resolverError != nil {
		reporter.Warn(noRepositoriesWarningMessageConstant)
		return "", false, nil
	}

	repositoryRoot, resolveError := repositoryResolver.Resolve(documentPath)
	if resolveError != nil {
		return "", false, resolveError
	}
	return repositoryRoot, true, nil
}

func (builder *CommandBuilder) determineRepositoryRoots(command *cobra.Command, configuration CommandConfiguration) []string {
	flagRoots, flagParseError := command.Flags().GetStringSlice(flagutils.DefaultRootFlagName)
	if flagParseError == nil {
		trimmedFlagRoots := sanitizeNames(flagRoots)
		if len(trimmedFlagRoots) > 0 {
			return trimmedFlagRoots
		}
	}
	return sanitizeNames(configuration.RepositoryRoots)
}

// ResolveSettingsPath anchors a relative settings file inside the repository
// so each work tree carries its own chrome document. Absolute paths pass
// through untouched and pin a single shared document.
func ResolveSettingsPath(settingsFilePath string, repositoryRoot string) string {
	trimmedPath := strings.TrimSpace(settingsFilePath)
	if len(trimmedPath) == 0 {
		trimmedPath = DefaultSettingsFileRelativePath
	}
	if filepath.IsAbs(trimmedPath) {
		return trimmedPath
	}
	return filepath.Join(repositoryRoot, trimmedPath)
}

func documentDirectory(documentPath string) string {
	pathInfo, statError := os.Stat(documentPath)
	if statError == nil && pathInfo.IsDir() {
		return documentPath
	}
	return filepath.Dir(documentPath)
}
