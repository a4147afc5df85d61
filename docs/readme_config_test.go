package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kalifudge401/worktree-rainbow/cmd/cli"
	"github.com/kalifudge401/worktree-rainbow/internal/utils"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	readmeSnippetTestNameConstant    = "readme_configuration"
	readmeSnippetTemporaryPattern    = "readme-config-*.yaml"
	parentDirectoryReferenceConstant = ".."
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
	defaultTempDirectoryRootConstant = ""
	readmeConfigurationNameConstant  = "config"
	readmeConfigurationTypeConstant  = "yaml"
	readmeEnvironmentPrefixConstant  = "WORKTREERAINBOW"
	expectedSettingsFileConstant     = ".vscode/settings.json"
	expectedInactiveDimConstant      = 0.3
	expectedRootPathConstant         = "~/projects"
)

var expectedDefaultBranchNames = []string{"main", "master"}

type readmeApplicationConfiguration struct {
	Common struct {
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"common"`
	Tools struct {
		Colorize struct {
			SettingsFile    string   `yaml:"settings_file"`
			StorePath       string   `yaml:"store_path"`
			DefaultBranches []string `yaml:"default_branches"`
			InactiveDim     float64  `yaml:"inactive_dim"`
			Roots           []string `yaml:"roots"`
		} `yaml:"colorize"`
		Watch struct {
			Roots []string `yaml:"roots"`
		} `yaml:"watch"`
	} `yaml:"tools"`
}

func TestReadmeConfigurationParses(testInstance *testing.T) {
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	readmePath := filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant)
	contentBytes, readError := os.ReadFile(readmePath)
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	remainingText := contentText[headerIndex:]
	fenceEndRelativeIndex := strings.Index(remainingText, yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)
	fenceEndIndex := headerIndex + fenceEndRelativeIndex

	snippetContent := strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : fenceEndIndex])

	testCases := []struct {
		name          string
		configuration string
	}{
		{
			name:          readmeSnippetTestNameConstant,
			configuration: snippetContent,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			tempFile, tempFileError := os.CreateTemp(defaultTempDirectoryRootConstant, readmeSnippetTemporaryPattern)
			require.NoError(subtest, tempFileError)
			subtest.Cleanup(func() {
				require.NoError(subtest, os.Remove(tempFile.Name()))
			})

			_, writeError := tempFile.WriteString(testCase.configuration)
			require.NoError(subtest, writeError)
			require.NoError(subtest, tempFile.Close())

			configurationLoader := utils.NewConfigurationLoader(
				readmeConfigurationNameConstant,
				readmeConfigurationTypeConstant,
				readmeEnvironmentPrefixConstant,
				nil,
			)

			var applicationConfiguration cli.ApplicationConfiguration
			_, loadError := configurationLoader.LoadConfiguration(tempFile.Name(), nil, &applicationConfiguration)
			require.NoError(subtest, loadError)

			require.Equal(subtest, string(utils.LogLevelInfo), applicationConfiguration.Common.LogLevel)
			require.Equal(subtest, string(utils.LogFormatStructured), applicationConfiguration.Common.LogFormat)

			colorizeConfiguration := applicationConfiguration.Tools.Colorize.Sanitize()
			require.Equal(subtest, expectedSettingsFileConstant, colorizeConfiguration.SettingsFilePath)
			require.Empty(subtest, colorizeConfiguration.StorePath)
			require.Equal(subtest, expectedDefaultBranchNames, colorizeConfiguration.DefaultBranches)
			require.InDelta(subtest, expectedInactiveDimConstant, colorizeConfiguration.InactiveDim, 0.0001)
			require.Equal(subtest, []string{expectedRootPathConstant}, colorizeConfiguration.RepositoryRoots)
			require.Equal(subtest, []string{expectedRootPathConstant}, applicationConfiguration.Tools.Watch.RepositoryRoots)

			var parsedConfiguration readmeApplicationConfiguration
			unmarshalError := yaml.Unmarshal([]byte(testCase.configuration), &parsedConfiguration)
			require.NoError(subtest, unmarshalError)
			require.Equal(subtest, expectedSettingsFileConstant, parsedConfiguration.Tools.Colorize.SettingsFile)
			require.Equal(subtest, expectedDefaultBranchNames, parsedConfiguration.Tools.Colorize.DefaultBranches)
		})
	}
}
