package release

import (
	"fmt"
	"log/slog"

	"github.com/dodola-project/releasectl/internal/cienv"
	"github.com/dodola-project/releasectl/internal/gitinfo"
	"github.com/dodola-project/releasectl/internal/lib"
)

// DevTag is the docker tag used for builds out of the main branch.
const DevTag = "dev"

// DockerTag derives a docker tag from a release tag: a single leading "v" is
// stripped when it prefixes a digit, so "v1.2.3" becomes "1.2.3" while tags
// like "version-2" pass through unchanged.
func DockerTag(releaseTag string) (string, error) {
	if releaseTag == "" {
		return "", fmt.Errorf("%w - empty release tag", lib.BadUserInputError)
	}

	if len(releaseTag) > 1 && releaseTag[0] == 'v' && releaseTag[1] >= '0' && releaseTag[1] <= '9' {
		return releaseTag[1:], nil
	}
	if releaseTag == "v" {
		return "", fmt.Errorf("%w - release tag %q derives an empty docker tag", lib.BadUserInputError, releaseTag)
	}

	return releaseTag, nil
}

type TagService struct {
	env     cienv.Environment
	gitInfo gitinfo.RepositoryInfoService
}

// NewTagService builds a tag resolver. gitInfo may be nil when no git
// repository is available; resolution then relies on CI env alone.
func NewTagService(env cienv.Environment, gitInfo gitinfo.RepositoryInfoService) *TagService {
	return &TagService{
		env:     env,
		gitInfo: gitInfo,
	}
}

// ReleaseTag resolves the release tag the build runs for, in order of
// precedence: the explicit override, the CI tag ref, a git tag pointing at
// HEAD.
func (s *TagService) ReleaseTag(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if tag := s.env.TagName(); tag != "" {
		slog.Debug("release tag resolved from CI environment", "tag", tag)
		return tag, nil
	}

	if s.gitInfo == nil {
		return "", fmt.Errorf("%w - no release tag provided and no git repository available", lib.BadUserInputError)
	}

	ref, err := s.gitInfo.CurrentTag()
	if err != nil {
		return "", fmt.Errorf("resolving tag from git HEAD: %w", err)
	}
	if ref == nil {
		return "", fmt.Errorf("%w - no tag points at the current commit", lib.BadUserInputError)
	}

	slog.Debug("release tag resolved from git HEAD", "tag", ref.Name().Short())
	return ref.Name().Short(), nil
}

// ReleaseDockerTag resolves the release tag and derives the docker tag from
// it in one go.
func (s *TagService) ReleaseDockerTag(override string) (string, error) {
	releaseTag, err := s.ReleaseTag(override)
	if err != nil {
		return "", err
	}
	return DockerTag(releaseTag)
}

// CommitSHA resolves the commit the build runs for, preferring the CI env
// over the local repository.
func (s *TagService) CommitSHA() (string, error) {
	if s.env.SHA != "" {
		return s.env.SHA, nil
	}

	if s.gitInfo == nil {
		return "", fmt.Errorf("no commit SHA in CI environment and no git repository available")
	}

	commit, err := s.gitInfo.CurrentCommit()
	if err != nil {
		return "", fmt.Errorf("resolving commit from git HEAD: %w", err)
	}
	return commit.Hash.String(), nil
}
