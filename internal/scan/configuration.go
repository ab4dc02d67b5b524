package scan

import "strings"

const (
	defaultRootPathConstant = "."

	rootConfigurationKeySuffixConstant        = ".root"
	threadsConfigurationKeySuffixConstant     = ".threads"
	missingHeadConfigurationKeySuffixConstant = ".missing_head"
	excludeFromConfigurationKeySuffixConstant = ".exclude_from"
)

// CommandConfiguration captures configuration values for the scan command.
type CommandConfiguration struct {
	Root            string `mapstructure:"root"`
	WorkerCount     int    `mapstructure:"threads"`
	MissingHeadMode bool   `mapstructure:"missing_head"`
	ExcludeFile     string `mapstructure:"exclude_from"`
}

// DefaultCommandConfiguration provides baseline configuration values for the scan command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Root:            defaultRootPathConstant,
		WorkerCount:     0,
		MissingHeadMode: false,
		ExcludeFile:     "",
	}
}

// DefaultConfigurationValues exposes scan defaults keyed for configuration merging.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + rootConfigurationKeySuffixConstant:        defaults.Root,
		configurationKeyPrefix + threadsConfigurationKeySuffixConstant:     defaults.WorkerCount,
		configurationKeyPrefix + missingHeadConfigurationKeySuffixConstant: defaults.MissingHeadMode,
		configurationKeyPrefix + excludeFromConfigurationKeySuffixConstant: defaults.ExcludeFile,
	}
}

// Sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Root = strings.TrimSpace(configuration.Root)
	sanitized.ExcludeFile = strings.TrimSpace(configuration.ExcludeFile)
	return sanitized
}
