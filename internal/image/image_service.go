package image

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"runtime"
	"time"

	"dagger.io/dagger"
	"github.com/dodola-project/releasectl/internal/image/registry"
	"github.com/dodola-project/releasectl/internal/lib"
	"github.com/dodola-project/releasectl/internal/placeholders"
	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/daemon"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

type PlaceholdersResolver interface {
	ResolvePlaceholders(input string, extraResolvers ...map[string]placeholders.PlaceholderResolver) (string, error)
}

type Service struct {
	config               Config
	registries           []registry.Registry
	placeholdersResolver PlaceholdersResolver
}

func NewService(config Config, registries []registry.Registry, resolver PlaceholdersResolver) *Service {
	return &Service{
		config:               config,
		registries:           registries,
		placeholdersResolver: resolver,
	}
}

func (s *Service) GetRegistries() []registry.Registry {
	return s.registries
}

func (s *Service) BuildImage(ctx context.Context) error {
	if s.config.Build.Cmd != nil {
		return s.buildImageViaCmd(ctx, s.config.Build.Cmd, s.config.Build.Env, s.config.Build.Dir)
	}
	if s.config.Build.Dockerfile != nil {
		return s.buildImageViaDagger(ctx)
	}

	return fmt.Errorf("no image build strategy configured")
}

func (s *Service) buildImageViaCmd(ctx context.Context, cmd []string, env map[string]string, dir string) error {
	if len(cmd) <= 0 {
		return fmt.Errorf("no command provided for image build")
	}

	resolvedCmd := make([]string, 0, len(cmd))
	for _, c := range cmd {
		resolvedC, err := s.placeholdersResolver.ResolvePlaceholders(c)
		if err != nil {
			return fmt.Errorf("resolving placeholder in build command '%s': %w", c, err)
		}
		resolvedCmd = append(resolvedCmd, resolvedC)
	}

	args := resolvedCmd
	if len(args) == 1 {
		args = []string{"sh", "-c", resolvedCmd[0]}
	}

	environment := os.Environ()
	for k, v := range env {
		resolvedValue, err := s.placeholdersResolver.ResolvePlaceholders(v)
		if err != nil {
			return fmt.Errorf("resolving placeholder in build env var '%s'='%s': %w", k, v, err)
		}

		environment = append(environment, fmt.Sprintf("%s=%s", k, resolvedValue))
	}

	command := exec.CommandContext(ctx, args[0], args[1:]...)
	command.Env = environment
	command.Dir = dir
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr

	slog.InfoContext(ctx, "running image build command", "args", command.Args)

	if err := command.Run(); err != nil {
		return fmt.Errorf("running image build command: %w", err)
	}

	return nil
}

// buildImageViaDagger runs the Dockerfile build without publishing; Sync
// forces the lazy pipeline to execute so build failures surface here.
func (s *Service) buildImageViaDagger(ctx context.Context) error {
	client, err := dagger.Connect(ctx, dagger.WithLogOutput(os.Stdout))
	if err != nil {
		return fmt.Errorf("connecting to dagger: %w", err)
	}
	defer client.Close()

	container, err := s.daggerBuild(ctx, client)
	if err != nil {
		return err
	}

	if _, err := container.Sync(ctx); err != nil {
		return fmt.Errorf("building image from dockerfile: %w", err)
	}

	return nil
}

func (s *Service) daggerBuild(ctx context.Context, client *dagger.Client) (*dagger.Container, error) {
	cfg := s.config.Build.Dockerfile
	if cfg == nil {
		return nil, fmt.Errorf("no dockerfile build configured")
	}

	contextDir := cfg.Context
	if contextDir == "" {
		contextDir = "."
	}
	dockerfile := cfg.Path
	if dockerfile == "" {
		dockerfile = "Dockerfile"
	}
	platform := cfg.Platform
	if platform == "" {
		platform = lib.PlatformLinuxAmd64
	}

	excludes, err := ReadDockerignoreExcludes(contextDir, dockerfile)
	if err != nil {
		return nil, fmt.Errorf("reading build context ignore rules: %w", err)
	}

	buildArgs := make([]dagger.BuildArg, 0, len(cfg.Args))
	for k, v := range cfg.Args {
		resolvedValue, err := s.placeholdersResolver.ResolvePlaceholders(v)
		if err != nil {
			return nil, fmt.Errorf("resolving placeholder in build arg '%s'='%s': %w", k, v, err)
		}
		buildArgs = append(buildArgs, dagger.BuildArg{Name: k, Value: resolvedValue})
	}

	slog.InfoContext(ctx, "building image from dockerfile",
		"context", contextDir,
		"dockerfile", dockerfile,
		"platform", platform,
		"excludes", len(excludes))

	hostContext := client.Host().Directory(contextDir, dagger.HostDirectoryOpts{
		Exclude: excludes,
	})

	return hostContext.DockerBuild(dagger.DirectoryDockerBuildOpts{
		Dockerfile: dockerfile,
		Platform:   dagger.Platform(platform),
		BuildArgs:  buildArgs,
	}), nil
}

// PushImage delivers the built image to every configured registry and
// returns the pushed references. Pushes run concurrently; the registries
// share no state, and the first failure cancels the rest.
func (s *Service) PushImage(ctx context.Context) ([]string, error) {
	if len(s.registries) == 0 {
		return nil, fmt.Errorf("no destination registry configured")
	}

	if s.config.Build.Dockerfile != nil {
		return s.publishViaDagger(ctx)
	}

	return s.pushFromDaemon(ctx)
}

// pushFromDaemon reads the cmd-built image from the local docker daemon and
// pushes it with go-containerregistry.
func (s *Service) pushFromDaemon(ctx context.Context) ([]string, error) {
	resolvedImage, err := s.placeholdersResolver.ResolvePlaceholders(s.config.Image)
	if err != nil {
		return nil, fmt.Errorf("resolving source image placeholders: %w", err)
	}
	srcRef, err := name.NewTag(resolvedImage)
	if err != nil {
		return nil, fmt.Errorf("parsing source image tag: %w", err)
	}

	image, err := daemon.Image(srcRef, daemon.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("getting image from local daemon: %w", err)
	}

	imageConfig, err := image.ConfigFile()
	if err != nil {
		return nil, fmt.Errorf("getting image config file: %w", err)
	}

	pushedRefs := make([]string, len(s.registries))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, reg := range s.registries {
		group.Go(func() error {
			destRef, err := s.pushToRegistry(groupCtx, reg, srcRef, image, imageConfig)
			if err != nil {
				return fmt.Errorf("pushing to %s: %w", reg.Name(), err)
			}
			pushedRefs[i] = destRef
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return pushedRefs, nil
}

func (s *Service) pushToRegistry(ctx context.Context, reg registry.Registry, srcRef name.Tag, image v1.Image, imageConfig *v1.ConfigFile) (string, error) {
	destRef, err := reg.GetImageRef()
	if err != nil {
		return "", fmt.Errorf("getting image reference from registry: %w", err)
	}
	if destRef == "" {
		return "", fmt.Errorf("container registry returned empty image reference")
	}

	destTag, err := name.NewTag(destRef)
	if err != nil {
		return "", fmt.Errorf("parsing destination image tag: %w", err)
	}

	var stdout io.Writer = os.Stdout
	stderr := os.Stderr
	tty := false
	progressChan := make(chan v1.Update, 32)

	if f, ok := stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		tty = true
	}

	go func() {
		var lastUpdateTime time.Time
		for update := range progressChan {
			if !tty {
				continue
			}

			if update.Error != nil {
				fmt.Fprintf(stderr, "Error: %v\n", update.Error)
				continue
			}
			if update.Total <= 0 {
				continue
			}
			if time.Since(lastUpdateTime) <= 500*time.Millisecond {
				continue
			}
			lastUpdateTime = time.Now()

			percentage := float64(update.Complete) / float64(update.Total) * 100

			fmt.Fprintf(stdout, "Image push (%s): %.2f%% complete\n", reg.Name(), percentage)
		}
	}()

	slog.InfoContext(ctx, "pushing image to remote registry",
		"registry", reg.Name(),
		"source", srcRef,
		"dest", destTag,
		"os", imageConfig.OS,
		"architecture", imageConfig.Architecture)

	startTime := time.Now()
	maxUploadJobs := int(math.Min(16, float64(runtime.NumCPU())))
	options := []remote.Option{
		remote.WithContext(ctx),
		remote.WithProgress(progressChan),
		remote.WithJobs(maxUploadJobs),
		remote.WithPlatform(v1.Platform{
			Architecture: imageConfig.Architecture,
			OS:           imageConfig.OS,
			OSFeatures:   imageConfig.OSFeatures,
			OSVersion:    imageConfig.OSVersion,
			Variant:      imageConfig.Variant,
		}),
	}

	switch reg.GetAuthType() {
	case registry.AuthTypeAuthenticator:
		auth, err := reg.GetAuthentication()
		if err != nil {
			return "", fmt.Errorf("getting registry authentication: %w", err)
		}
		options = append(options, remote.WithAuth(auth))
	case registry.AuthTypeKeychain:
		keychain := reg.GetKeychain()
		if keychain == nil {
			return "", fmt.Errorf("registry %s declares keychain auth but returned no keychain", reg.Name())
		}
		options = append(options, remote.WithAuthFromKeychain(keychain))
	default:
		return "", fmt.Errorf("unsupported auth type %q for registry %s", reg.GetAuthType(), reg.Name())
	}

	if err := remote.Write(destTag, image, options...); err != nil {
		return "", fmt.Errorf("pushing image to remote registry: %w", err)
	}

	slog.InfoContext(ctx, "image pushed successfully",
		"registry", reg.Name(),
		"source", srcRef,
		"destination", destRef,
		"duration", fmt.Sprintf("%f seconds", time.Since(startTime).Seconds()))

	return destRef, nil
}

// publishViaDagger builds the Dockerfile once and publishes the result to
// every registry straight from the build engine, without a daemon roundtrip.
func (s *Service) publishViaDagger(ctx context.Context) ([]string, error) {
	client, err := dagger.Connect(ctx, dagger.WithLogOutput(os.Stdout))
	if err != nil {
		return nil, fmt.Errorf("connecting to dagger: %w", err)
	}
	defer client.Close()

	container, err := s.daggerBuild(ctx, client)
	if err != nil {
		return nil, err
	}

	pushedRefs := make([]string, len(s.registries))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, reg := range s.registries {
		group.Go(func() error {
			destRef, err := reg.GetImageRef()
			if err != nil {
				return fmt.Errorf("getting image reference from registry %s: %w", reg.Name(), err)
			}

			destTag, err := name.NewTag(destRef)
			if err != nil {
				return fmt.Errorf("parsing destination image tag for %s: %w", reg.Name(), err)
			}

			authConfig, err := resolveBasicAuth(reg, destTag)
			if err != nil {
				return fmt.Errorf("resolving credentials for %s: %w", reg.Name(), err)
			}

			secret := client.SetSecret(fmt.Sprintf("registry-password-%s", reg.Name()), authConfig.Password)
			publishCtr := container.WithRegistryAuth(destTag.Context().RegistryStr(), authConfig.Username, secret)

			slog.InfoContext(groupCtx, "publishing image", "registry", reg.Name(), "dest", destRef)

			startTime := time.Now()
			digestRef, err := publishCtr.Publish(groupCtx, destRef)
			if err != nil {
				return fmt.Errorf("publishing image to %s: %w", reg.Name(), err)
			}

			slog.InfoContext(groupCtx, "image published successfully",
				"registry", reg.Name(),
				"destination", digestRef,
				"duration", fmt.Sprintf("%f seconds", time.Since(startTime).Seconds()))

			pushedRefs[i] = destRef
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return pushedRefs, nil
}

// resolveBasicAuth flattens either auth mode into username/password
// credentials for engines that can't consume a keychain directly. Anonymous
// resolution is an error because publishing always needs credentials.
func resolveBasicAuth(reg registry.Registry, dest name.Tag) (*authn.AuthConfig, error) {
	var authenticator authn.Authenticator
	var err error

	switch reg.GetAuthType() {
	case registry.AuthTypeAuthenticator:
		authenticator, err = reg.GetAuthentication()
		if err != nil {
			return nil, fmt.Errorf("getting registry authentication: %w", err)
		}
	case registry.AuthTypeKeychain:
		keychain := reg.GetKeychain()
		if keychain == nil {
			return nil, fmt.Errorf("registry %s declares keychain auth but returned no keychain", reg.Name())
		}
		authenticator, err = keychain.Resolve(dest.Context())
		if err != nil {
			return nil, fmt.Errorf("resolving keychain credentials: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported auth type %q for registry %s", reg.GetAuthType(), reg.Name())
	}

	if authenticator == nil || authenticator == authn.Anonymous {
		return nil, fmt.Errorf("no credentials available for registry %s", reg.Name())
	}

	cfg, err := authenticator.Authorization()
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}
	if cfg.Username == "" && cfg.Password == "" {
		return nil, fmt.Errorf("empty credentials resolved for registry %s", reg.Name())
	}

	return cfg, nil
}
