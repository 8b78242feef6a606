package factories

import (
	"fmt"

	"github.com/dodola-project/releasectl/internal/config"
	"github.com/dodola-project/releasectl/internal/image"
	"github.com/dodola-project/releasectl/internal/image/registry"
	"github.com/dodola-project/releasectl/internal/lib"
	"github.com/dodola-project/releasectl/internal/placeholders"
	"github.com/dodola-project/releasectl/internal/release"
)

const (
	containerConfigKey = "container"
	publishConfigKey   = "publish"
)

type TargetFactory struct {
	target                     string
	config                     *config.Config
	registryCredentialsStorage lib.CredentialsStorage
	placeholdersService        *placeholders.Service
}

func NewTargetFactory(target string, locator *SharedServicesLocator, placeholdersService *placeholders.Service) *TargetFactory {
	return &TargetFactory{
		target:                     target,
		config:                     locator.Config,
		registryCredentialsStorage: locator.RegistryCredentialsStorage,
		placeholdersService:        placeholdersService,
	}
}

func (f *TargetFactory) NewImageService() (*image.Service, error) {
	var imageConfig image.Config
	if err := f.config.LoadVariableTargetConfigPart(&imageConfig, f.target, containerConfigKey); err != nil {
		return nil, fmt.Errorf("error loading image build config: %w", err)
	}

	registries := make([]registry.Registry, 0, 4)

	if imageConfig.Registries.Acr != nil {
		resolvedAcr, err := f.placeholdersService.ResolvePlaceholders(string(*imageConfig.Registries.Acr))
		if err != nil {
			return nil, fmt.Errorf("resolving ACR registry ref (usually {{ env.%s }}): %w", lib.AcrLoginServerEnv, err)
		}

		registries = append(registries, registry.NewAzureContainerRegistry(
			f.registryCredentialsStorage,
			registry.AzureContainerRegistryConfig(resolvedAcr),
			[]string{lib.AcrUsernameEnv},
			[]string{lib.AcrPasswordEnv},
		))
	}

	if imageConfig.Registries.GcpArtifactRegistry != nil {
		resolvedGcp, err := f.placeholdersService.ResolvePlaceholders(string(*imageConfig.Registries.GcpArtifactRegistry))
		if err != nil {
			return nil, fmt.Errorf("resolving GCP Artifact Registry ref (usually {{ env.%s }}): %w", lib.GcpProjectIDEnv, err)
		}

		registries = append(registries, registry.NewGcpArtifactRegistry(
			registry.GcpArtifactRegistryConfig(resolvedGcp),
			lib.GcpServiceAccountKeyEnv,
		))
	}

	if imageConfig.Registries.Ghcr != nil {
		resolvedGhcr, err := f.placeholdersService.ResolvePlaceholders(string(*imageConfig.Registries.Ghcr))
		if err != nil {
			return nil, fmt.Errorf("resolving GHCR registry placeholder: %w", err)
		}

		registries = append(registries, registry.NewGithubContainerRegistry(
			f.registryCredentialsStorage,
			registry.GithubContainerRegistryConfig(resolvedGhcr),
			[]string{lib.GHCRAccessKeyEnv, lib.GithubTokenEnv},
		))
	}

	if imageConfig.Registries.AWSEcr != nil {
		resolvedEcr, err := f.placeholdersService.ResolvePlaceholders(string(*imageConfig.Registries.AWSEcr))
		if err != nil {
			return nil, fmt.Errorf("resolving AWS ECR registry placeholder: %w", err)
		}

		registries = append(registries, registry.NewAwsECR(registry.AwsECRConfig(resolvedEcr)))
	}

	if len(registries) == 0 {
		return nil, fmt.Errorf("%w - no registry configured for target %s", lib.BadUserInputError, f.target)
	}

	return image.NewService(imageConfig, registries, f.placeholdersService), nil
}

// LoadPublishConfig returns the target's optional publish part; a missing
// part yields the zero config.
func (f *TargetFactory) LoadPublishConfig() (release.PublishConfig, error) {
	var publishConfig release.PublishConfig

	if !f.config.HasTargetConfigPart(f.target, publishConfigKey) {
		return publishConfig, nil
	}

	if err := f.config.LoadVariableTargetConfigPart(&publishConfig, f.target, publishConfigKey); err != nil {
		return publishConfig, fmt.Errorf("error loading publish config: %w", err)
	}

	return publishConfig, nil
}
