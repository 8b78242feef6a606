package release

import (
	"fmt"

	"github.com/dodola-project/releasectl/internal/factories"
	"github.com/spf13/cobra"
)

func newReleaseTagCmd(locator *factories.SharedServicesLocator) *cobra.Command {
	var tagOverride string
	var githubEnv bool

	tagCmd := &cobra.Command{
		Use:   "tag",
		Short: "Print the derived docker tag for the current release",
		RunE: func(cmd *cobra.Command, args []string) error {
			dockerTag, err := locator.TagService.ReleaseDockerTag(tagOverride)
			if err != nil {
				return fmt.Errorf("deriving docker tag: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), dockerTag)

			if githubEnv {
				if err := locator.CIEnv.AppendEnv(exportedTagKey, dockerTag); err != nil {
					return fmt.Errorf("exporting %s to the CI environment: %w", exportedTagKey, err)
				}
			}

			return nil
		},
	}

	tagCmd.PersistentFlags().StringVar(&tagOverride, "tag", "", "Release tag to derive from (defaults to the CI tag ref or the tag at HEAD)")
	tagCmd.PersistentFlags().BoolVar(&githubEnv, "github-env", false, "Also append docker_tag=<tag> to the file GITHUB_ENV points at")

	return tagCmd
}
