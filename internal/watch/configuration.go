package watch

import "strings"

const configurationRootsKeyConstant = "roots"

// CommandConfiguration captures configuration values for the watch command.
type CommandConfiguration struct {
	RepositoryRoots []string `mapstructure:"roots"`
}

// DefaultCommandConfiguration provides baseline configuration values for the watch command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{RepositoryRoots: nil}
}

// DefaultConfigurationValues exposes watch defaults keyed for configuration merging.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationRootsKeyConstant: defaults.RepositoryRoots,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	trimmedRoots := make([]string, 0, len(configuration.RepositoryRoots))
	for _, repositoryRoot := range configuration.RepositoryRoots {
		trimmedRoot := strings.TrimSpace(repositoryRoot)
		if len(trimmedRoot) == 0 {
			continue
		}
		trimmedRoots = append(trimmedRoots, trimmedRoot)
	}
	sanitized.RepositoryRoots = trimmedRoots
	return sanitized
}
