package status

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kalifudge401/worktree-rainbow/internal/colorize"
	"github.com/kalifudge401/worktree-rainbow/internal/dependencies"
	"github.com/kalifudge401/worktree-rainbow/internal/execshell"
	"github.com/kalifudge401/worktree-rainbow/internal/shared"
	"github.com/kalifudge401/worktree-rainbow/internal/ui"
	flagutils "github.com/kalifudge401/worktree-rainbow/internal/utils/flags"
	"github.com/kalifudge401/worktree-rainbow/internal/workspace"
)

const (
	statusCommandUseConstant      = "status"
	statusCommandShortDescription = "Show branch colors across repositories"
	statusCommandLongDescription  = "status lists every discovered repository with its current branch, the stored color when one exists, and whether the branch keeps neutral chrome."

	gitUnavailableLogMessageConstant     = "git executable unavailable; status disabled"
	noRepositoriesWarningMessageConstant = "no repositories found under configured roots"
	notInsideWorkTreeTemplateConstant    = "path %s is not inside a Git work tree"
)

// CommandBuilder assembles the status cobra command with configurable
// dependencies. Nil dependency fields resolve to the default implementations.
type CommandBuilder struct {
	LoggerProvider               colorize.LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() colorize.CommandConfiguration
	GitExecutor                  shared.GitExecutor
	GitManager                   shared.GitRepositoryManager
	Discoverer                   shared.RepositoryDiscoverer
	Store                        colorize.AssignmentStore
	Reporter                     colorize.StatusReporter
	WorkingDirectory             string
}

// Build constructs the status command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   statusCommandUseConstant,
		Short: statusCommandShortDescription,
		Long:  statusCommandLongDescription,
		Args:  cobra.NoArgs,
		RunE:  builder.runStatusCommand,
	}

	flagutils.BindRootFlags(command, flagutils.RootFlagValues{}, flagutils.RootFlagDefinition{Enabled: true})

	return command, nil
}

func (builder *CommandBuilder) runStatusCommand(command *cobra.Command, _ []string) error {
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

	repositories, repositoriesFound, resolutionError := builder.resolveRepositories(command, configuration, gitManager, reporter)
	if resolutionError != nil {
		return resolutionError
	}
	if !repositoriesFound {
		return nil
	}

	assignmentStore, storeError := builder.resolveStore(configuration)
	if storeError != nil {
		return storeError
	}

	service, serviceError := NewService(gitManager, assignmentStore, configuration.DefaultBranches, logger)
	if serviceError != nil {
		return serviceError
	}

	statuses := service.CollectStatuses(command.Context(), repositories)
	if len(statuses) == 0 {
		reporter.Warn(noRepositoriesWarningMessageConstant)
		return nil
	}

	return NewTableRenderer(command.OutOrStdout()).Render(statuses)
}

// resolveRepositories expands the configured roots into repositories, falling
// back to the repository containing the working directory when no roots are
// configured. A false result means the warning path already ran.
func (builder *CommandBuilder) resolveRepositories(command *cobra.Command, configuration colorize.CommandConfiguration, gitManager shared.GitRepositoryManager, reporter colorize.StatusReporter) ([]string, bool, error) {
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

func (builder *CommandBuilder) resolveConfiguration() colorize.CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return colorize.DefaultCommandConfiguration()
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

func (builder *CommandBuilder) resolveReporter(logger *zap.Logger) colorize.StatusReporter {
	if builder.Reporter != nil {
		return builder.Reporter
	}
	return ui.NewConsoleStatusReporter(logger)
}

func (builder *CommandBuilder) resolveStore(configuration colorize.CommandConfiguration) (colorize.AssignmentStore, error) {
	if builder.Store != nil {
		return builder.Store, nil
	}
	return colorize.OpenConfiguredStore(configuration)
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

func (builder *CommandBuilder) determineRepositoryRoots(command *cobra.Command, configuration colorize.CommandConfiguration) []string {
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
