package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/dodola-project/releasectl/cmd/releasectl/auth"
	"github.com/dodola-project/releasectl/cmd/releasectl/release"
	"github.com/dodola-project/releasectl/internal/cienv"
	"github.com/dodola-project/releasectl/internal/config"
	"github.com/dodola-project/releasectl/internal/factories"
	"github.com/dodola-project/releasectl/internal/gitinfo"
	"github.com/dodola-project/releasectl/internal/keyring"
	"github.com/dodola-project/releasectl/internal/lib"
	releasesvc "github.com/dodola-project/releasectl/internal/release"
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "releasectl",
	Short: "Releasectl builds the dodola container image and publishes it to the configured registries.",
}

const defaultConfigPath = "./releasectl.yaml"

func main() {
	configureLogging()

	configPath := os.Getenv(lib.ConfigPathEnv)
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := config.NewConfigFromPath(configPath)
	if err != nil {
		log.Fatal(fmt.Errorf("error loading config: %w", err))
	}

	gitInfo, err := gitinfo.NewRepositoryInfoService(".")
	if err != nil {
		// Not running inside a git checkout; tag resolution then relies
		// on the CI environment or explicit flags.
		slog.Debug("no git repository available", "error", err)
		gitInfo = nil
	}

	ciEnv := cienv.Load()
	tagService := releasesvc.NewTagService(ciEnv, gitInfo)
	registryCredentialsStorage := keyring.MustNewService("releasectl")

	locator := factories.NewSharedServicesLocator(cfg, registryCredentialsStorage, gitInfo, ciEnv, tagService)

	RootCmd.AddCommand(
		release.NewReleaseCmd(locator),
		auth.NewAuthCmd(locator),
	)

	if err := RootCmd.Execute(); err != nil {
		log.Fatal(fmt.Errorf("error executing command: %w", err))
	}
}

func configureLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv(lib.LogLevelEnv)) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
