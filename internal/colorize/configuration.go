package colorize

import (
	"strings"

	"github.com/kalifudge401/worktree-rainbow/internal/palette"
)

const (
	configurationSettingsFileKeyConstant    = "settings_file"
	configurationStorePathKeyConstant       = "store_path"
	configurationDefaultBranchesKeyConstant = "default_branches"
	configurationInactiveDimKeyConstant     = "inactive_dim"
	configurationRootsKeyConstant           = "roots"

	// DefaultSettingsFileRelativePath is the workspace settings document used
	// when no settings_file is configured, resolved against the repository root.
	DefaultSettingsFileRelativePath = ".vscode/settings.json"
)

// CommandConfiguration captures configuration values for the color commands.
type CommandConfiguration struct {
	SettingsFilePath string   `mapstructure:"settings_file"`
	StorePath        string   `mapstructure:"store_path"`
	DefaultBranches  []string `mapstructure:"default_branches"`
	InactiveDim      float64  `mapstructure:"inactive_dim"`
	RepositoryRoots  []string `mapstructure:"roots"`
}

// DefaultCommandConfiguration provides baseline configuration values for the color commands.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		SettingsFilePath: DefaultSettingsFileRelativePath,
		StorePath:        "",
		DefaultBranches:  DefaultBranchNames(),
		InactiveDim:      palette.DefaultInactiveDim,
		RepositoryRoots:  nil,
	}
}

// DefaultConfigurationValues produces Viper defaults for the color commands.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationSettingsFileKeyConstant:    defaults.SettingsFilePath,
		rootKey + "." + configurationStorePathKeyConstant:       defaults.StorePath,
		rootKey + "." + configurationDefaultBranchesKeyConstant: defaults.DefaultBranches,
		rootKey + "." + configurationInactiveDimKeyConstant:     defaults.InactiveDim,
		rootKey + "." + configurationRootsKeyConstant:           defaults.RepositoryRoots,
	}
}

// Sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.SettingsFilePath = strings.TrimSpace(configuration.SettingsFilePath)
	sanitized.StorePath = strings.TrimSpace(configuration.StorePath)
	sanitized.DefaultBranches = sanitizeNames(configuration.DefaultBranches)
	sanitized.RepositoryRoots = sanitizeNames(configuration.RepositoryRoots)
	return sanitized
}

func sanitizeNames(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
