package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/mod-mender/internal/config"
	"github.com/oshokin/mod-mender/internal/console"
	"github.com/oshokin/mod-mender/internal/logger"
	"github.com/oshokin/mod-mender/internal/service/generator"
	"github.com/oshokin/mod-mender/internal/service/reconciler"
	"github.com/oshokin/mod-mender/internal/version"
)

const manifestPathQuestion = "Please enter path of the file: "

var errUnknownLogLevel = errors.New("unknown log level")

var (
	// configPath to the configuration YAML file.
	configPath string
	// generatePath is where a fresh manifest is written instead of running a pass.
	generatePath string
	// minecraftVersion overrides the manifest's target version for this run.
	minecraftVersion string
	// assumeYes applies every update without asking.
	assumeYes bool
	// logLevel overrides the level from the settings file.
	logLevel string

	// rootCmd represents the base command that checks a mod list for updates.
	rootCmd = &cobra.Command{
		Use:   "mod-mender [modlist.json]",
		Short: "Keep the mods of a Minecraft mod list up to date with Modrinth",
		Long: "Reads a mod list manifest, looks up the newest release of every tracked mod\n" +
			"compatible with the target Minecraft version and loaders, replaces the jars\n" +
			"you confirm and writes the manifest back, keeping the previous one as old_<name>.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         run,
	}
)

// Execute runs the mod-mender CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	settings, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}

	if err = applyLogLevel(settings); err != nil {
		return err
	}

	console.PrintBanner(cmd.OutOrStdout(), version.Full())

	terminal := console.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())

	if generatePath != "" {
		_, err = generator.Run(ctx, &generator.Options{
			Path:             generatePath,
			MinecraftVersion: minecraftVersion,
			Interactor:       terminal,
		})

		return err
	}

	manifestPath, err := resolveManifestPath(args, terminal)
	if err != nil {
		return err
	}

	options := &reconciler.Options{
		ManifestPath:     manifestPath,
		Settings:         settings,
		MinecraftVersion: minecraftVersion,
		AssumeYes:        assumeYes,
	}

	if assumeYes {
		options.Interactor = console.NewAuto(cmd.OutOrStdout())
	} else {
		options.Interactor = terminal
	}

	_, err = reconciler.Run(ctx, options)

	return err
}

// applyLogLevel sets the global level: the flag wins over the settings file.
func applyLogLevel(settings *config.Config) error {
	name := settings.LogLevel
	if logLevel != "" {
		name = logLevel
	}

	level, ok := logger.ParseLogLevel(name)
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownLogLevel, name)
	}

	logger.SetLevel(level)

	return nil
}

// resolveManifestPath takes the positional argument or asks for a path.
func resolveManifestPath(args []string, interactor console.Interactor) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	answer, err := interactor.Ask(manifestPathQuestion)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(answer), nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "",
		"path to configuration file (default "+config.DefaultConfigFilename+" if present)")
	rootCmd.Flags().StringVarP(&generatePath, "generate", "g", "",
		"write a new empty mod list at this path and exit")
	rootCmd.Flags().StringVarP(&minecraftVersion, "minecraft-version", "m", "",
		"target Minecraft version for this run instead of the stored one")
	rootCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "apply every update without asking")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
}
