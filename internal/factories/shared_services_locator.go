package factories

import (
	"github.com/dodola-project/releasectl/internal/cienv"
	"github.com/dodola-project/releasectl/internal/config"
	"github.com/dodola-project/releasectl/internal/gitinfo"
	"github.com/dodola-project/releasectl/internal/lib"
	"github.com/dodola-project/releasectl/internal/placeholders"
	"github.com/dodola-project/releasectl/internal/release"
)

type SharedServicesLocator struct {
	Config                     *config.Config
	RegistryCredentialsStorage lib.CredentialsStorage
	GitInfo                    gitinfo.RepositoryInfoService
	CIEnv                      cienv.Environment
	TagService                 *release.TagService
}

func NewSharedServicesLocator(config *config.Config, registryCredentialsStorage lib.CredentialsStorage, gitInfo gitinfo.RepositoryInfoService, ciEnv cienv.Environment, tagService *release.TagService) *SharedServicesLocator {
	return &SharedServicesLocator{
		config,
		registryCredentialsStorage,
		gitInfo,
		ciEnv,
		tagService,
	}
}

func (l *SharedServicesLocator) WithConfig(config *config.Config) *SharedServicesLocator {
	return &SharedServicesLocator{
		config,
		l.RegistryCredentialsStorage,
		l.GitInfo,
		l.CIEnv,
		l.TagService,
	}
}

// PlaceholdersServiceForTag builds a placeholder resolver bound to the
// docker tag of the current run, so config strings can reference
// {{ release.tag }}.
func (l *SharedServicesLocator) PlaceholdersServiceForTag(dockerTag string) *placeholders.Service {
	return placeholders.NewService(l.GitInfo, map[string]placeholders.PlaceholderResolver{
		"release.tag": func() (string, error) {
			return dockerTag, nil
		},
	})
}
