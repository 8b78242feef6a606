// Package cienv reads the GitHub Actions environment contract: the handful
// of variables the runner sets on every job, and the GITHUB_ENV file used to
// export values to later workflow steps.
package cienv

import (
	"fmt"
	"os"
	"strings"
)

const (
	ShaEnv       = "GITHUB_SHA"
	RefEnv       = "GITHUB_REF"
	RefNameEnv   = "GITHUB_REF_NAME"
	EventNameEnv = "GITHUB_EVENT_NAME"
	EnvFileEnv   = "GITHUB_ENV"

	tagRefPrefix    = "refs/tags/"
	branchRefPrefix = "refs/heads/"
)

type Environment struct {
	SHA       string
	Ref       string
	RefName   string
	EventName string
	EnvFile   string
}

func Load() Environment {
	return Environment{
		SHA:       os.Getenv(ShaEnv),
		Ref:       os.Getenv(RefEnv),
		RefName:   os.Getenv(RefNameEnv),
		EventName: os.Getenv(EventNameEnv),
		EnvFile:   os.Getenv(EnvFileEnv),
	}
}

// TagName returns the tag the job was triggered for, or "" when the job is
// not running against a tag ref. Older runners don't set GITHUB_REF_NAME, so
// GITHUB_REF is parsed as a fallback.
func (e Environment) TagName() string {
	if e.RefName != "" && strings.HasPrefix(e.Ref, tagRefPrefix) {
		return e.RefName
	}
	if name, ok := strings.CutPrefix(e.Ref, tagRefPrefix); ok {
		return name
	}
	return ""
}

// BranchName returns the branch the job was triggered for, or "".
func (e Environment) BranchName() string {
	if e.RefName != "" && strings.HasPrefix(e.Ref, branchRefPrefix) {
		return e.RefName
	}
	if name, ok := strings.CutPrefix(e.Ref, branchRefPrefix); ok {
		return name
	}
	return ""
}

// AppendEnv appends a key=value line to the GITHUB_ENV file so the value is
// visible to subsequent workflow steps. It fails when the job is not running
// under GitHub Actions (no GITHUB_ENV set).
func (e Environment) AppendEnv(key, value string) error {
	if e.EnvFile == "" {
		return fmt.Errorf("%s is not set, not running under GitHub Actions", EnvFileEnv)
	}
	if key == "" {
		return fmt.Errorf("empty env key")
	}
	if strings.ContainsAny(key, "=\n") || strings.Contains(value, "\n") {
		return fmt.Errorf("key %q or value contains characters not representable in a %s line", key, EnvFileEnv)
	}

	f, err := os.OpenFile(e.EnvFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s file: %w", EnvFileEnv, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s=%s\n", key, value); err != nil {
		return fmt.Errorf("appending to %s file: %w", EnvFileEnv, err)
	}

	return nil
}
