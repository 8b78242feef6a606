package release

import (
	"fmt"

	"github.com/dodola-project/releasectl/internal/factories"
	"github.com/spf13/cobra"
)

func newReleasePublishCmd(locator *factories.SharedServicesLocator) *cobra.Command {
	var targetID, env, tagOverride string

	publishCmd := &cobra.Command{
		Use:   "publish",
		Short: "Build and push the release image, tagged after the release tag with the leading v stripped",
		RunE: func(cmd *cobra.Command, args []string) error {
			if targetID == "" {
				return fmt.Errorf("must provide a target name")
			}

			dockerTag, err := locator.TagService.ReleaseDockerTag(tagOverride)
			if err != nil {
				return fmt.Errorf("deriving docker tag: %w", err)
			}

			return runPublish(cmd.Context(), locator, targetID, env, dockerTag, false)
		},
	}

	publishCmd.PersistentFlags().StringVar(&targetID, "name", "", "Target to publish")
	publishCmd.PersistentFlags().StringVar(&env, "env", "", "Target environment")
	publishCmd.PersistentFlags().StringVar(&tagOverride, "tag", "", "Release tag to publish (defaults to the CI tag ref or the tag at HEAD)")

	return publishCmd
}
