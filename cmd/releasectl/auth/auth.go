package auth

import (
	"fmt"
	"log/slog"

	"github.com/dodola-project/releasectl/internal/factories"
	releasesvc "github.com/dodola-project/releasectl/internal/release"
	"github.com/spf13/cobra"
)

func NewAuthCmd(locator *factories.SharedServicesLocator) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored registry credentials",
	}

	authCmd.AddCommand(newAuthResetCmd(locator))

	return authCmd
}

func newAuthResetCmd(locator *factories.SharedServicesLocator) *cobra.Command {
	var targetID, env string

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove stored credentials for the target's registries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if targetID == "" {
				return fmt.Errorf("must provide a target name")
			}

			cfg := locator.Config
			if env != "" {
				envSpecificConfig, err := cfg.WithEnvironment(env)
				if err != nil {
					return fmt.Errorf("loading environment specific config: %w", err)
				}
				cfg = envSpecificConfig
			}

			loc := locator.WithConfig(cfg)
			placeholdersService := loc.PlaceholdersServiceForTag(releasesvc.DevTag)
			targetFactory := factories.NewTargetFactory(targetID, loc, placeholdersService)

			imageSvc, err := targetFactory.NewImageService()
			if err != nil {
				return fmt.Errorf("getting image for target %s: %w", targetID, err)
			}

			for _, reg := range imageSvc.GetRegistries() {
				if err := reg.ResetAuthentication(); err != nil {
					return fmt.Errorf("resetting credentials for %s: %w", reg.Name(), err)
				}
				slog.Info("credentials reset", "registry", reg.Name())
			}

			return nil
		},
	}

	resetCmd.PersistentFlags().StringVar(&targetID, "name", "", "Target to reset credentials for")
	resetCmd.PersistentFlags().StringVar(&env, "env", "", "Target environment")

	return resetCmd
}
