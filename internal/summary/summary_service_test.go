package summary

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWrite(t *testing.T) {
	r := require.New(t)

	t.Run("should write the publish summary", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "release-summary.yaml")

		err := Write(path, PublishSummary{
			Target:    "dodola",
			Trigger:   "release",
			DockerTag: "1.2.3",
			CommitSHA: "deadbeef",
			Images: []string{
				"dodola.azurecr.io/dodola:1.2.3",
				"us-central1-docker.pkg.dev/my-project/dodola/dodola:1.2.3",
			},
			Duration:   42 * time.Second,
			FinishedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		})
		r.NoError(err)

		content, err := os.ReadFile(path)
		r.NoError(err)

		var decoded map[string]any
		r.NoError(yaml.Unmarshal(content, &decoded))
		r.Equal("dodola", decoded["target"])
		r.Equal("release", decoded["trigger"])
		r.Equal("1.2.3", decoded["docker_tag"])
		r.Equal("deadbeef", decoded["commit_sha"])
		r.Equal("42s", decoded["duration"])
		r.Len(decoded["images"], 2)
	})

	t.Run("should fail without a path", func(t *testing.T) {
		r.Error(Write("", PublishSummary{}))
	})
}
