package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/kalifudge401/worktree-rainbow/internal/colorize"
	"github.com/kalifudge401/worktree-rainbow/internal/status"
	"github.com/kalifudge401/worktree-rainbow/internal/utils"
	flagutils "github.com/kalifudge401/worktree-rainbow/internal/utils/flags"
	"github.com/kalifudge401/worktree-rainbow/internal/watch"
)

const (
	applicationNameConstant                     = "worktree-rainbow"
	applicationShortDescriptionConstant         = "Command-line interface for branch-scoped editor colors"
	applicationLongDescriptionConstant          = "worktree-rainbow assigns every repository branch a stable color and keeps editor workspace settings in sync with the branch that is checked out."
	configFileFlagNameConstant                  = "config"
	configFileFlagUsageConstant                 = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                    = "log-level"
	logLevelFlagDescriptionConstant             = "Override the configured log level."
	logFormatFlagNameConstant                   = "log-format"
	logFormatFlagDescriptionConstant            = "Override the configured log format."
	versionFlagNameConstant                     = "version"
	versionFlagUsageConstant                    = "Print the application version and exit."
	initFlagNameConstant                        = "init"
	initFlagDescriptionConstant                 = "Write the embedded default configuration file to the selected scope."
	forceFlagNameConstant                       = "force"
	forceFlagUsageConstant                      = "Overwrite an existing configuration file during --init."
	commonConfigurationKeyConstant              = "common"
	commonLogLevelConfigKeyConstant             = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant            = commonConfigurationKeyConstant + ".log_format"
	environmentPrefixConstant                   = "WORKTREERAINBOW"
	configurationNameConstant                   = "config"
	configurationTypeConstant                   = "yaml"
	configurationFileNameConstant               = configurationNameConstant + "." + configurationTypeConstant
	configurationInitializedMessageConstant     = "configuration initialized"
	configurationLogLevelFieldConstant          = "log_level"
	configurationLogFormatFieldConstant         = "log_format"
	configurationFileFieldConstant              = "config_file"
	configurationLoadErrorTemplateConstant      = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant         = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant             = "unable to flush logger: %w"
	rootCommandInfoMessageConstant              = "worktree-rainbow CLI executed"
	rootCommandDebugMessageConstant             = "worktree-rainbow CLI diagnostics"
	logFieldCommandNameConstant                 = "command_name"
	logFieldArgumentCountConstant               = "argument_count"
	logFieldArgumentsConstant                   = "arguments"
	loggerNotInitializedMessageConstant         = "logger not initialized"
	defaultConfigurationSearchPathConstant      = "."
	toolsConfigurationKeyConstant               = "tools"
	colorizeConfigurationKeyConstant            = toolsConfigurationKeyConstant + ".colorize"
	watchConfigurationKeyConstant               = toolsConfigurationKeyConstant + ".watch"
	versionOutputTemplateConstant               = applicationNameConstant + " version: %s\n"
	developmentVersionFallbackConstant          = "development"
	unreleasedModuleVersionConstant             = "(devel)"
	configurationScopeLocalConstant             = "local"
	configurationScopeUserConstant              = "user"
	userConfigurationDirectoryNameConstant      = "." + applicationNameConstant
	configurationScopeErrorTemplateConstant     = "unsupported configuration scope: %s"
	configurationExistsErrorTemplateConstant    = "configuration file %s already exists; rerun with --force to overwrite"
	workingDirectoryErrorTemplateConstant       = "unable to determine working directory: %w"
	homeDirectoryErrorTemplateConstant          = "unable to determine home directory: %w"
	configurationDirectoryErrorTemplateConstant = "unable to create configuration directory: %w"
	configurationWriteErrorTemplateConstant     = "unable to write configuration file: %w"
	configurationWrittenMessageTemplateConstant = "configuration written to %s\n"
	configurationDirectoryPermissionsConstant   = 0o755
	configurationFilePermissionsConstant        = 0o644
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds configuration for CLI subcommands grouped by tool family.
type ApplicationToolsConfiguration struct {
	Colorize colorize.CommandConfiguration `mapstructure:"colorize"`
	Watch    watch.CommandConfiguration    `mapstructure:"watch"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	versionFlagValue       bool
	initScopeFlagValue     string
	forceFlagValue         bool
	commandContextAccessor utils.CommandContextAccessor
	versionResolver        func(context.Context) string
	exitFunction           func(int)
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	embeddedConfigurationData, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	configurationLoader.SetEmbeddedConfiguration(embeddedConfigurationData, embeddedConfigurationType)

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		versionResolver:        resolveBuildVersion,
		exitFunction:           os.Exit,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.handlePersistentSetup(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(
		&application.logLevelFlagValue,
		logLevelFlagNameConstant,
		"",
		flagutils.FormatChoiceUsage(string(utils.LogLevelInfo), supportedLogLevelNames(), logLevelFlagDescriptionConstant),
	)
	cobraCommand.PersistentFlags().StringVar(
		&application.logFormatFlagValue,
		logFormatFlagNameConstant,
		"",
		flagutils.FormatChoiceUsage(string(utils.LogFormatStructured), supportedLogFormatNames(), logFormatFlagDescriptionConstant),
	)
	cobraCommand.PersistentFlags().BoolVar(&application.versionFlagValue, versionFlagNameConstant, false, versionFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(
		&application.initScopeFlagValue,
		initFlagNameConstant,
		"",
		flagutils.FormatChoiceUsage(configurationScopeLocalConstant, supportedConfigurationScopeNames(), initFlagDescriptionConstant),
	)
	if initFlag := cobraCommand.PersistentFlags().Lookup(initFlagNameConstant); initFlag != nil {
		initFlag.NoOptDefVal = configurationScopeLocalConstant
	}
	cobraCommand.PersistentFlags().BoolVar(&application.forceFlagValue, forceFlagNameConstant, false, forceFlagUsageConstant)

	colorizeBuilder := colorize.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() colorize.CommandConfiguration {
			return application.configuration.Tools.Colorize
		},
	}
	applyCommand, applyBuildError := colorizeBuilder.BuildApplyCommand()
	if applyBuildError == nil {
		cobraCommand.AddCommand(applyCommand)
	}
	rerollCommand, rerollBuildError := colorizeBuilder.BuildRerollCommand()
	if rerollBuildError == nil {
		cobraCommand.AddCommand(rerollCommand)
	}
	clearCommand, clearBuildError := colorizeBuilder.BuildClearCommand()
	if clearBuildError == nil {
		cobraCommand.AddCommand(clearCommand)
	}

	watchBuilder := watch.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() watch.CommandConfiguration {
			return application.configuration.Tools.Watch
		},
		ColorizeConfigurationProvider: func() colorize.CommandConfiguration {
			return application.configuration.Tools.Colorize
		},
	}
	watchCommand, watchBuildError := watchBuilder.Build()
	if watchBuildError == nil {
		cobraCommand.AddCommand(watchCommand)
	}

	statusBuilder := status.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() colorize.CommandConfiguration {
			return application.configuration.Tools.Colorize
		},
	}
	statusCommand, statusBuildError := statusBuilder.Build()
	if statusBuildError == nil {
		cobraCommand.AddCommand(statusCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) handlePersistentSetup(command *cobra.Command) error {
	if application.versionFlagValue {
		resolvedVersion := application.versionResolver(command.Context())
		fmt.Fprintf(os.Stdout, versionOutputTemplateConstant, resolvedVersion)
		application.exitFunction(0)
		return nil
	}

	if application.persistentFlagChanged(command, initFlagNameConstant) {
		configurationPath, initializationError := application.initializeConfigurationFile(application.initScopeFlagValue, application.forceFlagValue)
		if initializationError != nil {
			return initializationError
		}
		fmt.Fprintf(os.Stdout, configurationWrittenMessageTemplateConstant, configurationPath)
		application.exitFunction(0)
		return nil
	}

	return application.initializeConfiguration(command)
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}
	for configurationKey, configurationValue := range colorize.DefaultConfigurationValues(colorizeConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range watch.DefaultConfigurationValues(watchConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) initializeConfigurationFile(scopeName string, forceOverwrite bool) (string, error) {
	normalizedScope := strings.ToLower(strings.TrimSpace(scopeName))

	var targetDirectory string
	switch normalizedScope {
	case "", configurationScopeLocalConstant:
		workingDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return "", fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
		}
		targetDirectory = workingDirectory
	case configurationScopeUserConstant:
		homeDirectory, homeDirectoryError := os.UserHomeDir()
		if homeDirectoryError != nil {
			return "", fmt.Errorf(homeDirectoryErrorTemplateConstant, homeDirectoryError)
		}
		targetDirectory = filepath.Join(homeDirectory, userConfigurationDirectoryNameConstant)
	default:
		return "", fmt.Errorf(configurationScopeErrorTemplateConstant, scopeName)
	}

	if directoryError := os.MkdirAll(targetDirectory, configurationDirectoryPermissionsConstant); directoryError != nil {
		return "", fmt.Errorf(configurationDirectoryErrorTemplateConstant, directoryError)
	}

	configurationPath := filepath.Join(targetDirectory, configurationFileNameConstant)
	if !forceOverwrite {
		if _, statError := os.Stat(configurationPath); statError == nil {
			return "", fmt.Errorf(configurationExistsErrorTemplateConstant, configurationPath)
		}
	}

	configurationData, _ := EmbeddedDefaultConfiguration()
	if writeError := os.WriteFile(configurationPath, configurationData, configurationFilePermissionsConstant); writeError != nil {
		return "", fmt.Errorf(configurationWriteErrorTemplateConstant, writeError)
	}

	return configurationPath, nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	if len(arguments) == 0 {
		return command.Help()
	}

	return nil
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

func resolveBuildVersion(context.Context) string {
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if !buildInfoAvailable {
		return developmentVersionFallbackConstant
	}

	moduleVersion := strings.TrimSpace(buildInfo.Main.Version)
	if len(moduleVersion) == 0 || moduleVersion == unreleasedModuleVersionConstant {
		return developmentVersionFallbackConstant
	}

	return moduleVersion
}

func supportedLogLevelNames() []string {
	return []string{
		string(utils.LogLevelDebug),
		string(utils.LogLevelInfo),
		string(utils.LogLevelWarn),
		string(utils.LogLevelError),
	}
}

func supportedLogFormatNames() []string {
	return []string{
		string(utils.LogFormatStructured),
		string(utils.LogFormatConsole),
	}
}

func supportedConfigurationScopeNames() []string {
	return []string{
		configurationScopeLocalConstant,
		configurationScopeUserConstant,
	}
}
