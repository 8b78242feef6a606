package image

import (
	"github.com/dodola-project/releasectl/internal/image/registry"
	"github.com/dodola-project/releasectl/internal/lib"
)

type BuildConfig struct {
	Cmd        []string          `mapstructure:"cmd"`
	Dockerfile *DockerfileConfig `mapstructure:"dockerfile"`
	Env        map[string]string `mapstructure:"env"`
	Dir        string            `mapstructure:"dir"`
}

// DockerfileConfig drives the Dagger build strategy: a plain Dockerfile
// build of a host context directory.
type DockerfileConfig struct {
	Path     string            `mapstructure:"path"`
	Context  string            `mapstructure:"context"`
	Args     map[string]string `mapstructure:"args"`
	Platform lib.Platform      `mapstructure:"platform"`
}

type Config struct {
	Image      string         `mapstructure:"image"`
	Build      BuildConfig    `mapstructure:"build"`
	Registries RegistryConfig `mapstructure:"registries"`
}

// RegistryConfig holds one image reference per destination registry. Every
// configured destination receives the image on publish.
type RegistryConfig struct {
	Acr                 *registry.AzureContainerRegistryConfig  `mapstructure:"acr"`
	GcpArtifactRegistry *registry.GcpArtifactRegistryConfig     `mapstructure:"gcp_artifact_registry"`
	Ghcr                *registry.GithubContainerRegistryConfig `mapstructure:"ghcr"`
	AWSEcr              *registry.AwsECRConfig                  `mapstructure:"aws_ecr"`
}
