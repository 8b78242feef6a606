package placeholders

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dodola-project/releasectl/internal/lib"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/stretchr/testify/require"
)

type mockTag struct {
	Name string
	Hash string
}

type mockGitRepoInfoService struct {
	Branch string
	Commit string
	Tag    *mockTag
}

func (m mockGitRepoInfoService) CurrentBranch() (string, error) {
	if m.Branch == "" {
		return "", errors.New("no branch")
	}
	return m.Branch, nil
}

func (m mockGitRepoInfoService) CurrentCommit() (*object.Commit, error) {
	if m.Commit == "" {
		return nil, errors.New("no commit")
	}
	hash, ok := plumbing.FromHex(m.Commit)
	if !ok {
		return nil, fmt.Errorf("parsing commit hash is not successful: %s", m.Commit)
	}
	return &object.Commit{
		Hash: hash,
	}, nil
}

func (m mockGitRepoInfoService) CurrentTag() (*plumbing.Reference, error) {
	if m.Tag == nil {
		return nil, nil
	}
	hash, ok := plumbing.FromHex(m.Tag.Hash)
	if !ok {
		return nil, fmt.Errorf("parsing tag hash is not successful: %s", m.Tag.Hash)
	}
	return plumbing.NewHashReference(plumbing.NewTagReferenceName(m.Tag.Name), hash), nil
}

func (m mockGitRepoInfoService) TagsPointingAt(hash plumbing.Hash) ([]*plumbing.Reference, error) {
	return nil, errors.New("not implemented")
}

func TestPlaceholdersParsing(t *testing.T) {
	r := require.New(t)

	t.Run("should resolve git placeholders", func(t *testing.T) {
		svc := NewService(mockGitRepoInfoService{
			Branch: "main",
			Commit: "aaf00aaf00aaf00aaf00aaf00aaf00aaf00aaf00",
			Tag:    &mockTag{Name: "v1.2.3", Hash: "aaf00aaf00aaf00aaf00aaf00aaf00aaf00aaf00"},
		}, nil)

		out, err := svc.ResolvePlaceholders("branch={{ git.branch }} tag={{ git.tag }}")
		r.NoError(err)
		r.Equal("branch=main tag=v1.2.3", out)
	})

	t.Run("should resolve static resolvers", func(t *testing.T) {
		svc := NewService(mockGitRepoInfoService{}, map[string]PlaceholderResolver{
			"release.tag": func() (string, error) { return "1.2.3", nil },
		})

		out, err := svc.ResolvePlaceholders("dodola:{{ release.tag }}")
		r.NoError(err)
		r.Equal("dodola:1.2.3", out)
	})

	t.Run("should resolve env placeholders", func(t *testing.T) {
		t.Setenv("ACR_LOGIN_SERVER", "dodola.azurecr.io")

		svc := NewService(mockGitRepoInfoService{}, nil)
		out, err := svc.ResolvePlaceholders("{{ env.ACR_LOGIN_SERVER }}/dodola:dev")
		r.NoError(err)
		r.Equal("dodola.azurecr.io/dodola:dev", out)
	})

	t.Run("should fail for unset env placeholders", func(t *testing.T) {
		svc := NewService(mockGitRepoInfoService{}, nil)
		_, err := svc.ResolvePlaceholders("{{ env.RELEASECTL_TEST_UNSET_VAR }}")
		r.Error(err)
	})

	t.Run("should fail for unknown placeholders", func(t *testing.T) {
		svc := NewService(mockGitRepoInfoService{}, nil)
		_, err := svc.ResolvePlaceholders("{{ unknown.thing }}")
		r.Error(err)
	})

	t.Run("should pass through strings without placeholders", func(t *testing.T) {
		svc := NewService(mockGitRepoInfoService{}, nil)
		out, err := svc.ResolvePlaceholders("dodola:dev")
		r.NoError(err)
		r.Equal("dodola:dev", out)
	})
}

func TestPlaceholderModifiers(t *testing.T) {
	r := require.New(t)

	newSvc := func(tag string) *Service {
		return NewService(mockGitRepoInfoService{}, map[string]PlaceholderResolver{
			"release.version": func() (string, error) { return tag, nil },
		})
	}

	t.Run("should strip a version prefix with trim_prefix", func(t *testing.T) {
		out, err := newSvc("v1.2.3").ResolvePlaceholders(`dodola:{{ release.version | trim_prefix("v") }}`)
		r.NoError(err)
		r.Equal("dodola:1.2.3", out)
	})

	t.Run("should keep strings without the prefix unchanged", func(t *testing.T) {
		out, err := newSvc("1.2.3").ResolvePlaceholders(`{{ release.version | trim_prefix("v") }}`)
		r.NoError(err)
		r.Equal("1.2.3", out)
	})

	t.Run("should chain modifiers", func(t *testing.T) {
		out, err := newSvc("v1.2.3-RC1").ResolvePlaceholders(`{{ release.version | trim_prefix("v") | lower }}`)
		r.NoError(err)
		r.Equal("1.2.3-rc1", out)
	})

	t.Run("should truncate values", func(t *testing.T) {
		svc := NewService(mockGitRepoInfoService{Commit: "aaf00aaf00aaf00aaf00aaf00aaf00aaf00aaf00"}, nil)
		out, err := svc.ResolvePlaceholders("{{ git.commit | truncate(7) }}")
		r.NoError(err)
		r.Equal("aaf00aa", out)
	})

	t.Run("should reject bad truncate arguments", func(t *testing.T) {
		svc := NewService(mockGitRepoInfoService{Commit: "aaf00aaf00aaf00aaf00aaf00aaf00aaf00aaf00"}, nil)
		_, err := svc.ResolvePlaceholders("{{ git.commit | truncate(x) }}")
		r.Error(err)
	})

	t.Run("should reject unknown modifiers", func(t *testing.T) {
		_, err := newSvc("v1.2.3").ResolvePlaceholders("{{ release.version | reverse }}")
		r.Error(err)
	})

	t.Run("should reject malformed modifiers", func(t *testing.T) {
		_, err := newSvc("v1.2.3").ResolvePlaceholders("dodola:{{ release.version | --- }}")
		r.ErrorIs(err, lib.BadUserInputError)
	})
}
