package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultTeardownGrace = 2 * time.Second
	DefaultLaunchTimeout = 30 * time.Second
)

func DefaultConfig() *Config {
	return &Config{
		TeardownGrace: DefaultTeardownGrace,
		LaunchTimeout: DefaultLaunchTimeout,
	}
}

// DefaultPath returns the default config file location: es-driver.yaml next
// to the executable, so a driver deployment stays self-contained.
func DefaultPath() string {
	return fileNextToExecutable("es-driver.yaml")
}

// DefaultCredentialsPath returns the default local credentials store location.
func DefaultCredentialsPath() string {
	return fileNextToExecutable("es-credentials.json")
}

func fileNextToExecutable(name string) string {
	exe, err := os.Executable()
	if err != nil {
		return name
	}
	return filepath.Join(filepath.Dir(exe), name)
}
