package cienv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvironmentRefParsing(t *testing.T) {
	r := require.New(t)

	t.Run("should prefer ref name for tag refs", func(t *testing.T) {
		env := Environment{Ref: "refs/tags/v1.2.3", RefName: "v1.2.3"}
		r.Equal("v1.2.3", env.TagName())
		r.Equal("", env.BranchName())
	})

	t.Run("should parse tag from ref when ref name missing", func(t *testing.T) {
		env := Environment{Ref: "refs/tags/v0.9.0"}
		r.Equal("v0.9.0", env.TagName())
	})

	t.Run("should parse branch refs", func(t *testing.T) {
		env := Environment{Ref: "refs/heads/main", RefName: "main"}
		r.Equal("main", env.BranchName())
		r.Equal("", env.TagName())
	})

	t.Run("should return empty outside of CI", func(t *testing.T) {
		env := Environment{}
		r.Equal("", env.TagName())
		r.Equal("", env.BranchName())
	})
}

func TestAppendEnv(t *testing.T) {
	r := require.New(t)

	t.Run("should append key=value lines", func(t *testing.T) {
		envFile := filepath.Join(t.TempDir(), "github_env")
		env := Environment{EnvFile: envFile}

		r.NoError(env.AppendEnv("docker_tag", "1.2.3"))
		r.NoError(env.AppendEnv("other", "value"))

		content, err := os.ReadFile(envFile)
		r.NoError(err)
		r.Equal("docker_tag=1.2.3\nother=value\n", string(content))
	})

	t.Run("should fail without GITHUB_ENV", func(t *testing.T) {
		env := Environment{}
		r.Error(env.AppendEnv("docker_tag", "1.2.3"))
	})

	t.Run("should reject keys with separators", func(t *testing.T) {
		env := Environment{EnvFile: filepath.Join(t.TempDir(), "github_env")}
		r.Error(env.AppendEnv("bad=key", "value"))
		r.Error(env.AppendEnv("key", "multi\nline"))
	})
}
