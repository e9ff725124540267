package config

import "fmt"

func (c *Config) Validate() error {
	if c.TeardownGrace <= 0 {
		return fmt.Errorf("teardown_grace must be positive")
	}
	if c.LaunchTimeout <= 0 {
		return fmt.Errorf("launch_timeout must be positive")
	}
	return nil
}
