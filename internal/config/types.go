package config

import "time"

// Config represents the driver configuration
type Config struct {
	Verbose bool `yaml:"verbose"`

	// Kubeconfig overrides the kubeconfig used for cluster API access.
	// Empty = try $KUBECONFIG env var, then ~/.kube/config
	Kubeconfig string `yaml:"kubeconfig"`

	// ResolvedKubeconfigs is computed at load time (not from YAML)
	ResolvedKubeconfigs []string `yaml:"-"`

	// CredentialsFile is the local credentials store. Empty = es-credentials.json
	// next to the executable.
	CredentialsFile string `yaml:"credentials_file"`

	// TeardownGrace is how long to wait for kubectl to exit after a graceful
	// terminate before killing it.
	TeardownGrace time.Duration `yaml:"teardown_grace"`

	// LaunchTimeout bounds the wait for kubectl port-forward to report its
	// bound local port.
	LaunchTimeout time.Duration `yaml:"launch_timeout"`
}
