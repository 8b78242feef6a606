package registry

import (
	"fmt"
	"os"
	"strings"

	"github.com/dodola-project/releasectl/internal/lib"
	"github.com/google/go-containerregistry/pkg/authn"
)

const (
	ACRDomainSuffix         = ".azurecr.io"
	acrUsernameStorageKey   = "acr_username"
	acrUsernameStorageLabel = "Azure Container Registry Username"
	acrPasswordStorageKey   = "acr_password"
	acrPasswordStorageLabel = "Azure Container Registry Password"
)

// AzureContainerRegistryConfig - Azure Container Registry destination config
type AzureContainerRegistryConfig string

type AzureContainerRegistry struct {
	storage      lib.CredentialsStorage
	config       AzureContainerRegistryConfig
	usernameEnvs []string
	passwordEnvs []string
}

func NewAzureContainerRegistry(storage lib.CredentialsStorage, config AzureContainerRegistryConfig, usernameEnvs, passwordEnvs []string) Registry {
	return &AzureContainerRegistry{
		storage:      storage,
		config:       config,
		usernameEnvs: usernameEnvs,
		passwordEnvs: passwordEnvs,
	}
}

func (r *AzureContainerRegistry) Name() string {
	return "acr"
}

func (r *AzureContainerRegistry) GetAuthType() AuthType {
	return AuthTypeAuthenticator
}

// GetAuthentication resolves the registry admin/token credentials the way
// the release workflows do: ACR_USERNAME/ACR_PASSWORD from the environment,
// then the OS keyring, then an interactive prompt.
func (r *AzureContainerRegistry) GetAuthentication() (authn.Authenticator, error) {
	username, err := lib.GetSecretFromEnvOrInput(r.storage, acrUsernameStorageKey, acrUsernameStorageLabel, r.usernameEnvs, os.Stdin, os.Stdout, "Please provide the ACR username")
	if err != nil {
		return nil, fmt.Errorf("requesting acr username: %w", err)
	}

	password, err := lib.GetSecretFromEnvOrInput(r.storage, acrPasswordStorageKey, acrPasswordStorageLabel, r.passwordEnvs, os.Stdin, os.Stdout, "Please provide the ACR password")
	if err != nil {
		return nil, fmt.Errorf("requesting acr password: %w", err)
	}

	return authn.FromConfig(authn.AuthConfig{
		Username: username,
		Password: password,
	}), nil
}

func (r *AzureContainerRegistry) ResetAuthentication() error {
	if err := r.storage.Remove(acrUsernameStorageKey); err != nil {
		return fmt.Errorf("resetting acr username: %w", err)
	}
	if err := r.storage.Remove(acrPasswordStorageKey); err != nil {
		return fmt.Errorf("resetting acr password: %w", err)
	}

	return nil
}

func (r *AzureContainerRegistry) GetKeychain() authn.Keychain {
	return nil
}

func (r *AzureContainerRegistry) GetImageRef() (string, error) {
	// Required format: <registry>.azurecr.io/<repository>:<tag>
	imageID := string(r.config)
	parts := strings.SplitN(imageID, "/", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("%w - invalid ACR image format: %s, expected format: <registry>%s/<repository>:<tag>", lib.BadUserInputError, imageID, ACRDomainSuffix)
	}

	registryHost := parts[0]
	if !strings.HasSuffix(strings.ToLower(registryHost), ACRDomainSuffix) {
		return "", fmt.Errorf("%w - invalid ACR host: %s, expected suffix: %s", lib.BadUserInputError, registryHost, ACRDomainSuffix)
	}
	if strings.TrimSuffix(strings.ToLower(registryHost), ACRDomainSuffix) == "" {
		return "", fmt.Errorf("%w - invalid ACR host: %s, missing registry name", lib.BadUserInputError, registryHost)
	}

	repositoryAndTag := strings.SplitN(parts[1], ":", 2)
	if len(repositoryAndTag) != 2 || repositoryAndTag[0] == "" || repositoryAndTag[1] == "" {
		return "", fmt.Errorf("%w - invalid ACR image format: %s, missing tag", lib.BadUserInputError, imageID)
	}

	return imageID, nil
}
