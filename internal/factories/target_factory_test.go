package factories

import (
	"strings"
	"testing"

	"github.com/dodola-project/releasectl/internal/cienv"
	"github.com/dodola-project/releasectl/internal/config"
	"github.com/dodola-project/releasectl/internal/lib"
	"github.com/dodola-project/releasectl/internal/release"
	"github.com/stretchr/testify/require"
)

type mapCredentialsStorage map[string]string

func (m mapCredentialsStorage) Set(key, value string, extra lib.KeyExtras) error {
	m[key] = value
	return nil
}

func (m mapCredentialsStorage) Get(key string) (string, error) {
	return m[key], nil
}

func (m mapCredentialsStorage) Remove(key string) error {
	delete(m, key)
	return nil
}

const targetConfigYAML = `
targets:
  dodola:
    container:
      image: 'dodola:{{ release.tag }}'
      build:
        cmd: ['docker build -t dodola:{{ release.tag }} .']
      registries:
        acr: '{{ env.ACR_LOGIN_SERVER }}/dodola:{{ release.tag }}'
        gcp_artifact_registry: 'us-central1-docker.pkg.dev/{{ env.GCP_PROJECT_ID }}/dodola/dodola:{{ release.tag }}'
    publish:
      summary: 'release-summary.yaml'
      branches: ['main']
`

func newTestLocator(t *testing.T) *SharedServicesLocator {
	t.Helper()

	cfg, err := config.NewConfigFromReader(strings.NewReader(targetConfigYAML))
	require.NoError(t, err)

	ciEnv := cienv.Environment{}
	return NewSharedServicesLocator(cfg, mapCredentialsStorage{}, nil, ciEnv, release.NewTagService(ciEnv, nil))
}

func TestTargetFactory(t *testing.T) {
	r := require.New(t)

	t.Run("should wire every configured registry", func(t *testing.T) {
		t.Setenv("ACR_LOGIN_SERVER", "dodola.azurecr.io")
		t.Setenv("GCP_PROJECT_ID", "my-project")

		locator := newTestLocator(t)
		factory := NewTargetFactory("dodola", locator, locator.PlaceholdersServiceForTag("1.2.3"))

		imageSvc, err := factory.NewImageService()
		r.NoError(err)

		registries := imageSvc.GetRegistries()
		r.Len(registries, 2)

		names := []string{registries[0].Name(), registries[1].Name()}
		r.Contains(names, "acr")
		r.Contains(names, "gcp_artifact_registry")

		acrRef, err := registries[0].GetImageRef()
		r.NoError(err)
		r.Equal("dodola.azurecr.io/dodola:1.2.3", acrRef)

		gcpRef, err := registries[1].GetImageRef()
		r.NoError(err)
		r.Equal("us-central1-docker.pkg.dev/my-project/dodola/dodola:1.2.3", gcpRef)
	})

	t.Run("should fail when a registry env var is missing", func(t *testing.T) {
		t.Setenv("ACR_LOGIN_SERVER", "")
		t.Setenv("GCP_PROJECT_ID", "my-project")

		locator := newTestLocator(t)
		factory := NewTargetFactory("dodola", locator, locator.PlaceholdersServiceForTag("1.2.3"))

		_, err := factory.NewImageService()
		r.Error(err)
		r.ErrorContains(err, lib.AcrLoginServerEnv)
	})

	t.Run("should fail for a target without registries", func(t *testing.T) {
		cfg, err := config.NewConfigFromReader(strings.NewReader(`
targets:
  dodola:
    container:
      image: 'dodola:dev'
      build:
        cmd: ['docker build -t dodola:dev .']
`))
		r.NoError(err)

		ciEnv := cienv.Environment{}
		locator := NewSharedServicesLocator(cfg, mapCredentialsStorage{}, nil, ciEnv, release.NewTagService(ciEnv, nil))
		factory := NewTargetFactory("dodola", locator, locator.PlaceholdersServiceForTag("dev"))

		_, err = factory.NewImageService()
		r.ErrorIs(err, lib.BadUserInputError)
	})

	t.Run("should load the publish config part", func(t *testing.T) {
		locator := newTestLocator(t)
		factory := NewTargetFactory("dodola", locator, locator.PlaceholdersServiceForTag("1.2.3"))

		publishConfig, err := factory.LoadPublishConfig()
		r.NoError(err)
		r.Equal("release-summary.yaml", publishConfig.Summary)
		r.Equal([]string{"main"}, publishConfig.Branches)
	})

	t.Run("should default the publish config when absent", func(t *testing.T) {
		cfg, err := config.NewConfigFromReader(strings.NewReader(`
targets:
  dodola:
    container:
      image: 'dodola:dev'
`))
		r.NoError(err)

		ciEnv := cienv.Environment{}
		locator := NewSharedServicesLocator(cfg, mapCredentialsStorage{}, nil, ciEnv, release.NewTagService(ciEnv, nil))
		factory := NewTargetFactory("dodola", locator, locator.PlaceholdersServiceForTag("dev"))

		publishConfig, err := factory.LoadPublishConfig()
		r.NoError(err)
		r.Empty(publishConfig.Summary)
		r.Empty(publishConfig.Branches)
	})
}
