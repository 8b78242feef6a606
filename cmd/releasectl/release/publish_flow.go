package release

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dodola-project/releasectl/internal/factories"
	"github.com/dodola-project/releasectl/internal/lib"
	"github.com/dodola-project/releasectl/internal/summary"
)

// exportedTagKey is the GITHUB_ENV key the workflows downstream of this tool
// read the derived tag from.
const exportedTagKey = "docker_tag"

// runPublish is the shared build-then-push flow behind the publish and dev
// commands: one build, concurrent pushes to all configured registries, tag
// export to GITHUB_ENV, optional summary artifact.
func runPublish(ctx context.Context, locator *factories.SharedServicesLocator, targetID, env, dockerTag string, checkBranches bool) error {
	cfg := locator.Config
	if env != "" {
		envSpecificConfig, err := cfg.WithEnvironment(env)
		if err != nil {
			return fmt.Errorf("loading environment specific config: %w", err)
		}
		cfg = envSpecificConfig
	}

	loc := locator.WithConfig(cfg)
	placeholdersService := loc.PlaceholdersServiceForTag(dockerTag)
	targetFactory := factories.NewTargetFactory(targetID, loc, placeholdersService)

	publishConfig, err := targetFactory.LoadPublishConfig()
	if err != nil {
		return err
	}

	if checkBranches && len(publishConfig.Branches) > 0 {
		branch := loc.CIEnv.BranchName()
		if branch == "" && loc.GitInfo != nil {
			branch, err = loc.GitInfo.CurrentBranch()
			if err != nil {
				return fmt.Errorf("resolving current branch: %w", err)
			}
		}

		ok, err := lib.PathMatchesOneOfPatterns(branch, publishConfig.Branches)
		if err != nil {
			return fmt.Errorf("matching branch against allowed patterns: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w - branch %q is not allowed to publish (allowed: %v)", lib.BadUserInputError, branch, publishConfig.Branches)
		}
	}

	imageSvc, err := targetFactory.NewImageService()
	if err != nil {
		return fmt.Errorf("getting image for target %s: %w", targetID, err)
	}

	startTime := time.Now()

	if err := imageSvc.BuildImage(ctx); err != nil {
		return fmt.Errorf("building image for target %s: %w", targetID, err)
	}

	pushedRefs, err := imageSvc.PushImage(ctx)
	if err != nil {
		return fmt.Errorf("pushing image for target %s: %w", targetID, err)
	}

	if loc.CIEnv.EnvFile != "" {
		if err := loc.CIEnv.AppendEnv(exportedTagKey, dockerTag); err != nil {
			return fmt.Errorf("exporting %s to the CI environment: %w", exportedTagKey, err)
		}
	}

	if publishConfig.Summary != "" {
		commitSHA, err := loc.TagService.CommitSHA()
		if err != nil {
			slog.Warn("commit SHA unavailable for the publish summary", "error", err)
			commitSHA = ""
		}

		if err := summary.Write(publishConfig.Summary, summary.PublishSummary{
			Target:     targetID,
			Trigger:    loc.CIEnv.EventName,
			DockerTag:  dockerTag,
			CommitSHA:  commitSHA,
			Images:     pushedRefs,
			Duration:   time.Since(startTime),
			FinishedAt: time.Now().UTC(),
		}); err != nil {
			return fmt.Errorf("writing publish summary: %w", err)
		}
	}

	slog.InfoContext(ctx, "publish finished",
		"target", targetID,
		"tag", dockerTag,
		"images", pushedRefs,
		"duration", fmt.Sprintf("%f seconds", time.Since(startTime).Seconds()))

	return nil
}
