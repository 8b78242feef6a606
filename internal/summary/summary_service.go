// Package summary records what a publish run produced, as a YAML artifact
// CI jobs can archive or feed into later steps.
package summary

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type PublishSummary struct {
	Target string
	// Trigger is the CI event that started the run ("release", "push"),
	// empty outside of CI.
	Trigger    string
	DockerTag  string
	CommitSHA  string
	Images     []string
	Duration   time.Duration
	FinishedAt time.Time
}

// publishSummaryDoc is the YAML shape; the duration is rendered as a
// human-readable string, not nanoseconds.
type publishSummaryDoc struct {
	Target     string    `yaml:"target"`
	Trigger    string    `yaml:"trigger,omitempty"`
	DockerTag  string    `yaml:"docker_tag"`
	CommitSHA  string    `yaml:"commit_sha,omitempty"`
	Images     []string  `yaml:"images"`
	Duration   string    `yaml:"duration"`
	FinishedAt time.Time `yaml:"finished_at"`
}

func Write(path string, s PublishSummary) error {
	if path == "" {
		return fmt.Errorf("no summary path provided")
	}

	content, err := yaml.Marshal(publishSummaryDoc{
		Target:     s.Target,
		Trigger:    s.Trigger,
		DockerTag:  s.DockerTag,
		CommitSHA:  s.CommitSHA,
		Images:     s.Images,
		Duration:   s.Duration.Round(time.Millisecond).String(),
		FinishedAt: s.FinishedAt,
	})
	if err != nil {
		return fmt.Errorf("encoding publish summary: %w", err)
	}

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("writing publish summary: %w", err)
	}

	return nil
}
