package image

import (
	"context"
	"fmt"
	"testing"

	"github.com/dodola-project/releasectl/internal/image/registry"
	"github.com/dodola-project/releasectl/internal/placeholders"
	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/stretchr/testify/require"
)

type passthroughResolver struct{}

func (passthroughResolver) ResolvePlaceholders(input string, extraResolvers ...map[string]placeholders.PlaceholderResolver) (string, error) {
	return input, nil
}

type failingResolver struct{}

func (failingResolver) ResolvePlaceholders(input string, extraResolvers ...map[string]placeholders.PlaceholderResolver) (string, error) {
	return "", fmt.Errorf("no resolver found for placeholder")
}

type stubRegistry struct {
	name          string
	authType      registry.AuthType
	keychain      authn.Keychain
	authenticator authn.Authenticator
	authErr       error
	imageRef      string
}

func (s stubRegistry) Name() string                { return s.name }
func (s stubRegistry) GetAuthType() registry.AuthType { return s.authType }
func (s stubRegistry) GetKeychain() authn.Keychain { return s.keychain }
func (s stubRegistry) GetAuthentication() (authn.Authenticator, error) {
	return s.authenticator, s.authErr
}
func (s stubRegistry) ResetAuthentication() error { return nil }
func (s stubRegistry) GetImageRef() (string, error) {
	return s.imageRef, nil
}

type staticKeychain struct {
	authenticator authn.Authenticator
}

func (k staticKeychain) Resolve(authn.Resource) (authn.Authenticator, error) {
	return k.authenticator, nil
}

func TestBuildImage(t *testing.T) {
	r := require.New(t)

	t.Run("should fail when no build strategy is configured", func(t *testing.T) {
		svc := NewService(Config{Image: "dodola:dev"}, []registry.Registry{stubRegistry{name: "acr"}}, passthroughResolver{})

		err := svc.BuildImage(context.Background())
		r.ErrorContains(err, "no image build strategy configured")
	})

	t.Run("should run the configured build command", func(t *testing.T) {
		svc := NewService(Config{
			Image: "dodola:dev",
			Build: BuildConfig{Cmd: []string{"exit 0"}},
		}, []registry.Registry{stubRegistry{name: "acr"}}, passthroughResolver{})

		r.NoError(svc.BuildImage(context.Background()))
	})

	t.Run("should surface a failing build command", func(t *testing.T) {
		svc := NewService(Config{
			Image: "dodola:dev",
			Build: BuildConfig{Cmd: []string{"exit 1"}},
		}, []registry.Registry{stubRegistry{name: "acr"}}, passthroughResolver{})

		err := svc.BuildImage(context.Background())
		r.ErrorContains(err, "running image build command")
	})

	t.Run("should fail when a build command placeholder cannot be resolved", func(t *testing.T) {
		svc := NewService(Config{
			Image: "dodola:dev",
			Build: BuildConfig{Cmd: []string{"docker build -t dodola:{{ release.tag }} ."}},
		}, []registry.Registry{stubRegistry{name: "acr"}}, failingResolver{})

		err := svc.BuildImage(context.Background())
		r.ErrorContains(err, "resolving placeholder in build command")
	})
}

func TestPushImage(t *testing.T) {
	r := require.New(t)

	t.Run("should fail without a destination registry", func(t *testing.T) {
		svc := NewService(Config{Image: "dodola:dev"}, nil, passthroughResolver{})

		_, err := svc.PushImage(context.Background())
		r.ErrorContains(err, "no destination registry configured")
	})
}

func TestResolveBasicAuth(t *testing.T) {
	r := require.New(t)

	destTag, err := name.NewTag("dodola.azurecr.io/dodola:1.2.3")
	r.NoError(err)

	t.Run("should return authenticator credentials", func(t *testing.T) {
		reg := stubRegistry{
			name:          "acr",
			authType:      registry.AuthTypeAuthenticator,
			authenticator: &authn.Basic{Username: "dodola-ci", Password: "s3cret"},
		}

		cfg, err := resolveBasicAuth(reg, destTag)
		r.NoError(err)
		r.Equal("dodola-ci", cfg.Username)
		r.Equal("s3cret", cfg.Password)
	})

	t.Run("should resolve credentials through the keychain", func(t *testing.T) {
		reg := stubRegistry{
			name:     "gcp_artifact_registry",
			authType: registry.AuthTypeKeychain,
			keychain: staticKeychain{authenticator: &authn.Basic{Username: "_json_key", Password: "{}"}},
		}

		cfg, err := resolveBasicAuth(reg, destTag)
		r.NoError(err)
		r.Equal("_json_key", cfg.Username)
	})

	t.Run("should reject anonymous keychain resolution", func(t *testing.T) {
		reg := stubRegistry{
			name:     "gcp_artifact_registry",
			authType: registry.AuthTypeKeychain,
			keychain: staticKeychain{authenticator: authn.Anonymous},
		}

		_, err := resolveBasicAuth(reg, destTag)
		r.ErrorContains(err, "no credentials available")
	})

	t.Run("should reject a keychain registry without a keychain", func(t *testing.T) {
		reg := stubRegistry{
			name:     "gcp_artifact_registry",
			authType: registry.AuthTypeKeychain,
		}

		_, err := resolveBasicAuth(reg, destTag)
		r.ErrorContains(err, "returned no keychain")
	})

	t.Run("should propagate authenticator errors", func(t *testing.T) {
		reg := stubRegistry{
			name:     "acr",
			authType: registry.AuthTypeAuthenticator,
			authErr:  fmt.Errorf("no credentials provided"),
		}

		_, err := resolveBasicAuth(reg, destTag)
		r.ErrorContains(err, "getting registry authentication")
	})
}
