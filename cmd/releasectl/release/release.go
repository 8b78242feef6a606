package release

import (
	"github.com/dodola-project/releasectl/internal/factories"
	"github.com/spf13/cobra"
)

func NewReleaseCmd(locator *factories.SharedServicesLocator) *cobra.Command {
	releaseCmd := &cobra.Command{
		Use:   "release",
		Short: "Build the container image and publish it to the configured registries",
	}

	releaseCmd.AddCommand(newReleasePublishCmd(locator))
	releaseCmd.AddCommand(newReleaseDevCmd(locator))
	releaseCmd.AddCommand(newReleaseTagCmd(locator))

	return releaseCmd
}
