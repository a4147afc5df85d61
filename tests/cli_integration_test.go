package tests

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	integrationInfoMessageConstant            = "\"msg\":\"worktree-rainbow CLI executed\""
	integrationDebugMessageConstant           = "\"msg\":\"worktree-rainbow CLI diagnostics\""
	integrationLogLevelEnvKeyConstant         = "WORKTREERAINBOW_COMMON_LOG_LEVEL"
	integrationConfigFileNameConstant         = "config.yaml"
	integrationConfigTemplateConstant         = "common:\n  log_level: %s\n"
	integrationDefaultCaseNameConstant        = "default_info"
	integrationConfigCaseNameConstant         = "config_debug"
	integrationEnvironmentCaseNameConstant    = "environment_error"
	integrationDebugLevelConstant             = "debug"
	integrationErrorLevelConstant             = "error"
	integrationCommandTimeout                 = 5 * time.Second
	integrationConfigFlagTemplateConstant     = "--config=%s"
	integrationSubtestNameTemplateConstant    = "%d_%s"
	integrationHelpUsagePrefixConstant        = "Usage:"
	integrationHelpDescriptionSnippetConstant = "worktree-rainbow assigns every repository branch a stable color and keeps editor workspace settings in sync with the branch that is checked out."
	integrationHelpCaseNameConstant           = "help_output"
	integrationRunSubcommandConstant          = "run"
)

func TestCLIIntegrationLogLevels(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		configurationLevel   string
		environmentLevel     string
		expectedInfoVisible  bool
		expectedDebugVisible bool
	}{
		{
			name:                 integrationDefaultCaseNameConstant,
			configurationLevel:   "",
			environmentLevel:     "",
			expectedInfoVisible:  true,
			expectedDebugVisible: false,
		},
		{
			name:                 integrationConfigCaseNameConstant,
			configurationLevel:   integrationDebugLevelConstant,
			environmentLevel:     "",
			expectedInfoVisible:  true,
			expectedDebugVisible: true,
		},
		{
			name:                 integrationEnvironmentCaseNameConstant,
			configurationLevel:   "",
			environmentLevel:     integrationErrorLevelConstant,
			expectedInfoVisible:  false,
			expectedDebugVisible: false,
		},
	}

	currentWorkingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	repositoryRootDirectory := filepath.Dir(currentWorkingDirectory)

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(integrationSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			arguments := []string{integrationRunSubcommandConstant, integrationModulePathConstant}
			environmentOverrides := map[string]string{}
			tempDirectory := testInstance.TempDir()

			if len(testCase.configurationLevel) > 0 {
				configurationPath := filepath.Join(tempDirectory, integrationConfigFileNameConstant)
				configurationContent := fmt.Sprintf(integrationConfigTemplateConstant, testCase.configurationLevel)
				writeError := os.WriteFile(configurationPath, []byte(configurationContent), 0o600)
				require.NoError(testInstance, writeError)
				arguments = append(arguments, fmt.Sprintf(integrationConfigFlagTemplateConstant, configurationPath))
			}

			if len(testCase.environmentLevel) > 0 {
				environmentOverrides[integrationLogLevelEnvKeyConstant] = testCase.environmentLevel
			}

			commandOptions := integrationCommandOptions{EnvironmentOverrides: environmentOverrides}
			outputText := runIntegrationCommand(testInstance, repositoryRootDirectory, commandOptions, integrationCommandTimeout, arguments)

			if testCase.expectedInfoVisible {
				require.Contains(testInstance, outputText, integrationInfoMessageConstant)
			} else {
				require.NotContains(testInstance, outputText, integrationInfoMessageConstant)
			}

			if testCase.expectedDebugVisible {
				require.Contains(testInstance, outputText, integrationDebugMessageConstant)
			} else {
				require.NotContains(testInstance, outputText, integrationDebugMessageConstant)
			}
		})
	}
}

func TestCLIIntegrationDisplaysHelpWhenNoArgumentsProvided(testInstance *testing.T) {
	testCases := []struct {
		name             string
		expectedSnippets []string
	}{
		{
			name: integrationHelpCaseNameConstant,
			expectedSnippets: []string{
				integrationHelpUsagePrefixConstant,
				integrationHelpDescriptionSnippetConstant,
			},
		},
	}

	currentWorkingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	repositoryRootDirectory := filepath.Dir(currentWorkingDirectory)

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(integrationSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			commandArguments := []string{integrationRunSubcommandConstant, integrationModulePathConstant}
			commandOptions := integrationCommandOptions{}
			outputText := runIntegrationCommand(testInstance, repositoryRootDirectory, commandOptions, integrationCommandTimeout, commandArguments)

			for _, expectedSnippet := range testCase.expectedSnippets {
				require.Contains(testInstance, outputText, expectedSnippet)
			}
		})
	}
}
