package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kalifudge401/worktree-rainbow/internal/colorize"
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
	watchCommandUseConstant      = "watch"
	watchCommandShortDescription = "Watch repositories and keep branch colors applied"
	watchCommandLongDescription  = "watch discovers repositories under the configured roots, synchronizes each one's window chrome with its current branch, and keeps the palette aligned as branches change until interrupted."

	gitUnavailableLogMessageConstant     = "git executable unavailable; watch disabled"
	noRepositoriesWarningMessageConstant = "no repositories found under configured roots"
	notInsideWorkTreeTemplateConstant    = "path %s is not inside a Git work tree"
	unknownRepositoryTemplateConstant    = "no synchronizer registered for repository %s"
)

// CommandBuilder assembles the watch cobra command with configurable
// dependencies. Nil dependency fields resolve to the default implementations.
type CommandBuilder struct {
	LoggerProvider                colorize.LoggerProvider
	HumanReadableLoggingProvider  func() bool
	ConfigurationProvider         func() CommandConfiguration
	ColorizeConfigurationProvider func() colorize.CommandConfiguration
	GitExecutor                   shared.GitExecutor
	GitManager                    shared.GitRepositoryManager
	Discoverer                    shared.RepositoryDiscoverer
	Store                         colorize.AssignmentStore
	MergerFactory                 colorize.MergerFactory
	Generator                     colorize.ColorGenerator
	Reporter                      colorize.StatusReporter
	NotificationSource            NotificationSource
	QueueCapacity                 int
	WorkingDirectory              string
}

// Build constructs the watch command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   watchCommandUseConstant,
		Short: watchCommandShortDescription,
		Long:  watchCommandLongDescription,
		Args:  cobra.NoArgs,
		RunE:  builder.runWatchCommand,
	}

	flagutils.BindRootFlags(command, flagutils.RootFlagValues{}, flagutils.RootFlagDefinition{Enabled: true})

	return command, nil
}

func (builder *CommandBuilder) runWatchCommand(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()
	colorizeConfiguration := builder.resolveColorizeConfiguration()
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

	watchedRepositories, repositoriesFound, resolutionError := builder.resolveWatchedRepositories(command, configuration, gitManager, reporter)
	if resolutionError != nil {
		return resolutionError
	}
	if !repositoriesFound {
		return nil
	}

	assignmentStore, storeError := builder.resolveStore(colorizeConfiguration)
	if storeError != nil {
		return storeError
	}
	colorGenerator := builder.resolveGenerator()

	synchronizers, synchronizerError := builder.buildSynchronizers(watchedRepositories, colorizeConfiguration, assignmentStore, colorGenerator, reporter, logger)
	if synchronizerError != nil {
		return synchronizerError
	}

	watcher, watcherError := NewWatcher(Dependencies{
		Repositories:       watchedRepositories,
		BranchReader:       gitManager,
		Synchronizer:       synchronizers,
		NotificationSource: builder.resolveNotificationSource(logger),
		Logger:             logger,
		QueueCapacity:      builder.QueueCapacity,
	})
	if watcherError != nil {
		return watcherError
	}

	signalContext, stopSignalHandling := signal.NotifyContext(command.Context(), os.Interrupt, syscall.SIGTERM)
	defer stopSignalHandling()

	return watcher.Run(signalContext)
}

// resolveWatchedRepositories expands the configured roots into repositories.
// Without roots the repository containing the working directory is watched
// alone. A false result means the warning path already ran and no work remains.
func (builder *CommandBuilder) resolveWatchedRepositories(command *cobra.Command, configuration CommandConfiguration, gitManager shared.GitRepositoryManager, reporter colorize.StatusReporter) ([]string, bool, error) {
	repositoryRoots := builder.determineRepositoryRoots(command, configuration)
	if len(repositoryRoots) == 0 {
		workingDirectory, workingDirectoryError := builder.resolveWorkingDirectory()
		if workingDirectoryError != nil {
			return nil, false, workingDirectoryError
		}
		if !gitManager.IsInsideWorkTree(command.Context(), workingDirectory) {
			return nil, false, fmt.Errorf(notInsideWorkTreeTemplateConstant, workingDirectory)
		}
		topLevel, topLevelError := gitManager.ResolveTopLevel(command.Context(), workingDirectory)
		if topLevelError != nil {
			return nil, false, topLevelError
		}
		return []string{topLevel}, true, nil
	}

	normalizedRoots := workspace.NewRootNormalizer().Normalize(repositoryRoots)
	repositoryDiscoverer := dependencies.ResolveRepositoryDiscoverer(builder.Discoverer)
	discoveredRepositories, discoveryError := repositoryDiscoverer.DiscoverRepositories(normalizedRoots)
	if discoveryError != nil {
		return nil, false, discoveryError
	}
	if len(discoveredRepositories) == 0 {
		reporter.Warn(noRepositoriesWarningMessageConstant)
		return nil, false, nil
	}
	return discoveredRepositories, true, nil
}

// buildSynchronizers constructs one color service per repository so every
// repository writes its own settings document.
func (builder *CommandBuilder) buildSynchronizers(watchedRepositories []string, colorizeConfiguration colorize.CommandConfiguration, assignmentStore colorize.AssignmentStore, colorGenerator colorize.ColorGenerator, reporter colorize.StatusReporter, logger *zap.Logger) (*repositorySynchronizerSet, error) {
	synchronizersByRoot := make(map[string]*colorize.Service, len(watchedRepositories))
	for _, repositoryRoot := range watchedRepositories {
		settingsPath := colorize.ResolveSettingsPath(colorizeConfiguration.SettingsFilePath, repositoryRoot)
		settingsMerger, mergerError := builder.resolveMerger(settingsPath)
		if mergerError != nil {
			return nil, mergerError
		}
		colorService, serviceError := colorize.NewService(
			colorize.Dependencies{
				Store:     assignmentStore,
				Merger:    settingsMerger,
				Generator: colorGenerator,
				Reporter:  reporter,
				Logger:    logger,
			},
			colorize.Options{
				DefaultBranches: colorizeConfiguration.DefaultBranches,
				InactiveDim:     colorizeConfiguration.InactiveDim,
			},
		)
		if serviceError != nil {
			return nil, serviceError
		}
		synchronizersByRoot[repositoryRoot] = colorService
	}
	return &repositorySynchronizerSet{synchronizersByRoot: synchronizersByRoot}, nil
}

// repositorySynchronizerSet routes synchronization requests to the color
// service bound to the repository's settings document.
type repositorySynchronizerSet struct {
	synchronizersByRoot map[string]*colorize.Service
}

func (set *repositorySynchronizerSet) Synchronize(executionContext context.Context, repositoryRoot string, branchReference gitrepo.BranchReference) error {
	colorService, registered := set.synchronizersByRoot[repositoryRoot]
	if !registered {
		return fmt.Errorf(unknownRepositoryTemplateConstant, repositoryRoot)
	}
	return colorService.Synchronize(executionContext, repositoryRoot, branchReference)
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveColorizeConfiguration() colorize.CommandConfiguration {
	if builder.ColorizeConfigurationProvider == nil {
		return colorize.DefaultCommandConfiguration()
	}
	return builder.ColorizeConfigurationProvider().Sanitize()
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

func (builder *CommandBuilder) resolveReporter(logger *zap.Logger) colorize.StatusReporter {
	if builder.Reporter != nil {
		return builder.Reporter
	}
	return ui.NewConsoleStatusReporter(logger)
}

func (builder *CommandBuilder) resolveStore(colorizeConfiguration colorize.CommandConfiguration) (colorize.AssignmentStore, error) {
	if builder.Store != nil {
		return builder.Store, nil
	}
	return colorize.OpenConfiguredStore(colorizeConfiguration)
}

func (builder *CommandBuilder) resolveMerger(settingsPath string) (colorize.SettingsMerger, error) {
	if builder.MergerFactory != nil {
		return builder.MergerFactory(settingsPath)
	}
	return settings.NewMerger(settingsPath)
}

func (builder *CommandBuilder) resolveGenerator() colorize.ColorGenerator {
	if builder.Generator != nil {
		return builder.Generator
	}
	return palette.NewGenerator(nil)
}

func (builder *CommandBuilder) resolveNotificationSource(logger *zap.Logger) NotificationSource {
	if builder.NotificationSource != nil {
		return builder.NotificationSource
	}
	return NewFilesystemNotificationSource(logger)
}

func (builder *CommandBuilder) humanReadableLoggingEnabled() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}

func (builder *CommandBuilder) resolveWorkingDirectory() (string, error) {
	if len(builder.WorkingDirectory) > 0 {
		return builder.WorkingDirectory, nil
	}
	return os.Getwd()
}

func (builder *CommandBuilder) determineRepositoryRoots(command *cobra.Command, configuration CommandConfiguration) []string {
	flagRoots, flagParseError := command.Flags().GetStringSlice(flagutils.DefaultRootFlagName)
	if flagParseError == nil {
		trimmedFlagRoots := trimRoots(flagRoots)
		if len(trimmedFlagRoots) > 0 {
			return trimmedFlagRoots
		}
	}
	return trimRoots(configuration.RepositoryRoots)
}

func trimRoots(rawRoots []string) []string {
	trimmedRoots := make([]string, 0, len(rawRoots))
	for _, rawRoot := range rawRoots {
		trimmedRoot := strings.TrimSpace(rawRoot)
		if len(trimmedRoot) == 0 {
			continue
		}
		trimmedRoots = append(trimmedRoots, trimmedRoot)
	}
	return trimmedRoots
}
