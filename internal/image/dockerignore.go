package image

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

const dockerignoreFileName = ".dockerignore"

// ReadDockerignoreExcludes reads the context's .dockerignore and returns its
// patterns as host directory excludes for the Dagger build. A missing file
// yields no excludes. Patterns doublestar can't parse are skipped with a
// warning instead of failing the build, matching docker's lenient handling.
func ReadDockerignoreExcludes(contextDir, dockerfilePath string) ([]string, error) {
	content, err := os.ReadFile(filepath.Join(contextDir, dockerignoreFileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dockerignoreFileName, err)
	}

	lines := strings.Split(string(content), "\n")
	excludes := make([]string, 0, len(lines))
	for _, line := range lines {
		pattern := strings.TrimSpace(line)
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}

		if !doublestar.ValidatePattern(strings.TrimPrefix(pattern, "!")) {
			slog.Warn("skipping unparsable pattern", "file", dockerignoreFileName, "pattern", pattern)
			continue
		}

		excludes = append(excludes, pattern)
	}

	// Docker always sends the Dockerfile regardless of ignore rules; the
	// Dagger host directory doesn't, so surface the misconfiguration early.
	matcher := ignore.CompileIgnoreLines(excludes...)
	if dockerfilePath != "" && matcher.MatchesPath(dockerfilePath) {
		slog.Warn("dockerfile is excluded by ignore rules and will be missing from the build context",
			"dockerfile", dockerfilePath,
			"file", dockerignoreFileName)
	}

	return excludes, nil
}
