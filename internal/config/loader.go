package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadMergeDrop loads merge-drop configuration.
// Search order: customPath -> ~/.mergedrop/configs/mergedrop.yaml -> ./configs/mergedrop.yaml -> embedded default
func LoadMergeDrop(customPath string) (MergeDropConfig, error) {
	var cfg MergeDropConfig

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("mergedrop.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/mergedrop.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultMergeDropYAML, &cfg); err != nil {
		return DefaultMergeDropConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// Load loads the configuration, applies the difficulty preset and
// validates the result.
func Load(customPath string, preset DifficultyPreset) (MergeDropConfig, error) {
	cfg, err := LoadMergeDrop(customPath)
	if err != nil {
		return cfg, err
	}
	ApplyPreset(&cfg, preset)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mergedrop", "configs", filename)
}
