package release

import (
	"fmt"

	"github.com/dodola-project/releasectl/internal/factories"
	releasesvc "github.com/dodola-project/releasectl/internal/release"
	"github.com/spf13/cobra"
)

func newReleaseDevCmd(locator *factories.SharedServicesLocator) *cobra.Command {
	var targetID, env string

	devCmd := &cobra.Command{
		Use:   "dev",
		Short: "Build and push the dev image for pushes to the main branch",
		RunE: func(cmd *cobra.Command, args []string) error {
			if targetID == "" {
				return fmt.Errorf("must provide a target name")
			}

			return runPublish(cmd.Context(), locator, targetID, env, releasesvc.DevTag, true)
		},
	}

	devCmd.PersistentFlags().StringVar(&targetID, "name", "", "Target to publish")
	devCmd.PersistentFlags().StringVar(&env, "env", "", "Target environment")

	return devCmd
}
