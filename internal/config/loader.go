package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".crawler"

// File represents the structure of the .crawler configuration file.
// Zero values mean "not set" and leave the built-in defaults in place.
type File struct {
	// Depth overrides the recursion-depth limit.
	// A pointer, because 0 is a meaningful limit.
	Depth *int `yaml:"depth,omitempty"`

	// ResourceDir overrides where resources are written.
	ResourceDir string `yaml:"resourceDir,omitempty"`

	// UserAgents replaces the User-Agent pool.
	UserAgents []string `yaml:"userAgents,omitempty"`

	// Proxy is a SOCKS5 proxy address ("host:port").
	Proxy string `yaml:"proxy,omitempty"`

	// MaxBodySize overrides the response body limit in bytes.
	MaxBodySize int64 `yaml:"maxBodySize,omitempty"`

	// Defaults applies to every host unless overridden in Hosts.
	Defaults HostConfig `yaml:"defaults,omitempty"`

	// Hosts maps hosts to their request settings.
	Hosts map[string]HostConfig `yaml:"hosts,omitempty"`
}

// LoadConfigFile loads a configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	if cf.Hosts == nil {
		cf.Hosts = make(map[string]HostConfig)
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .crawler in the current directory
// 3. Look for config.yaml in the XDG config directory
// 4. Look for .crawler in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	if home, err := os.UserHomeDir(); err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
