// Package config handles YAML configuration loading and validation for es-driver.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file and validates it. A missing file
// is not an error: the driver runs fine on defaults. This function calls
// Validate() internally - callers do not need to validate separately.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.resolvePaths()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) resolvePaths() {
	c.Kubeconfig = expandTilde(c.Kubeconfig)
	c.CredentialsFile = expandTilde(c.CredentialsFile)

	if c.CredentialsFile == "" {
		c.CredentialsFile = DefaultCredentialsPath()
	}

	// Mirror kubectl's KUBECONFIG precedence: explicit config value first,
	// then the env var (which may list several files), then the default.
	switch {
	case c.Kubeconfig != "":
		c.ResolvedKubeconfigs = []string{c.Kubeconfig}
	case os.Getenv("KUBECONFIG") != "":
		c.ResolvedKubeconfigs = filepath.SplitList(os.Getenv("KUBECONFIG"))
	default:
		c.ResolvedKubeconfigs = nil // clientcmd falls back to ~/.kube/config
	}
}

// expandTilde expands ~ to the user's home directory
func expandTilde(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
