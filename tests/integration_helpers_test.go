package tests

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const (
	integrationGoExecutableConstant     = "go"
	integrationBuildSubcommandConstant  = "build"
	integrationOutputFlagConstant       = "-o"
	integrationModulePathConstant       = "."
	integrationBinaryNameConstant       = "worktree-rainbow"
	integrationPathVariableNameConstant = "PATH"
)

type integrationCommandOptions struct {
	PathVariable         string
	EnvironmentOverrides map[string]string
}

// buildIntegrationBinary compiles the CLI once into a per-test temporary
// directory so repeated invocations skip the go run startup cost.
func buildIntegrationBinary(testInstance *testing.T, repositoryRoot string) string {
	testInstance.Helper()

	binaryPath := filepath.Join(testInstance.TempDir(), integrationBinaryNameConstant)
	buildCommand := exec.Command(integrationGoExecutableConstant, integrationBuildSubcommandConstant, integrationOutputFlagConstant, binaryPath, integrationModulePathConstant)
	buildCommand.Dir = repositoryRoot
	buildCommand.Env = os.Environ()

	outputBytes, buildError := buildCommand.CombinedOutput()
	requireNoError(testInstance, buildError, string(outputBytes))
	return binaryPath
}

func runBinaryIntegrationCommand(testInstance *testing.T, binaryPath string, workingDirectory string, environmentOverrides map[string]string, timeout time.Duration, arguments []string) (string, error) {
	testInstance.Helper()

	executionContext, cancelFunction := context.WithTimeout(context.Background(), timeout)
	defer cancelFunction()

	command := exec.CommandContext(executionContext, binaryPath, arguments...)
	command.Dir = workingDirectory
	command.Env = overrideEnvironment(os.Environ(), environmentOverrides)

	outputBytes, runError := command.CombinedOutput()
	return string(outputBytes), runError
}

func runIntegrationCommand(testInstance *testing.T, repositoryRoot string, commandOptions integrationCommandOptions, timeout time.Duration, arguments []string) string {
	testInstance.Helper()

	outputText, runError := runFailingIntegrationCommand(testInstance, repositoryRoot, commandOptions, timeout, arguments)
	requireNoError(testInstance, runError, outputText)
	return outputText
}

func runFailingIntegrationCommand(testInstance *testing.T, repositoryRoot string, commandOptions integrationCommandOptions, timeout time.Duration, arguments []string) (string, error) {
	testInstance.Helper()

	executionContext, cancelFunction := context.WithTimeout(context.Background(), timeout)
	defer cancelFunction()

	command := exec.CommandContext(executionContext, integrationGoExecutableConstant, arguments...)
	command.Dir = repositoryRoot
	environment := append([]string{}, os.Environ()...)
	if len(commandOptions.PathVariable) > 0 {
		environment = append(environment, integrationPathVariableNameConstant+"="+commandOptions.PathVariable)
	}
	command.Env = overrideEnvironment(environment, commandOptions.EnvironmentOverrides)

	outputBytes, runError := command.CombinedOutput()
	return string(outputBytes), runError
}

func overrideEnvironment(environment []string, environmentOverrides map[string]string) []string {
	mergedEnvironment := append([]string{}, environment...)
	for overrideName, overrideValue := range environmentOverrides {
		mergedEnvironment = append(mergedEnvironment, overrideName+"="+overrideValue)
	}
	return mergedEnvironment
}

func filterStructuredOutput(rawOutput string) string {
	lines := strings.Split(rawOutput, "\n")
	var filtered []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		if strings.HasPrefix(trimmed, "{") {
			continue
		}
		filtered = append(filtered, line)
	}
	if len(filtered) == 0 {
		return ""
	}
	return strings.Join(filtered, "\n") + "\n"
}

func requireNoError(testInstance *testing.T, err error, output string) {
	testInstance.Helper()
	if err != nil {
		testInstance.Fatalf("command failed: %v\n%s", err, output)
	}
}
