package reconciler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/oshokin/mod-mender/internal/api/modrinth"
	"github.com/oshokin/mod-mender/internal/config"
	"github.com/oshokin/mod-mender/internal/console"
	"github.com/oshokin/mod-mender/internal/logger"
	repository "github.com/oshokin/mod-mender/internal/repository/modlist"
	"github.com/oshokin/mod-mender/internal/service/common"
	"github.com/oshokin/mod-mender/internal/service/fetcher"
	"github.com/oshokin/mod-mender/internal/service/resolver"
)

var errManifestPathRequired = errors.New("manifest path must be provided")

// Options are inputs accepted by the reconciliation entry point.
type Options struct {
	// ManifestPath is the mod list file to reconcile.
	ManifestPath string
	// ConfigPath is the settings YAML file. Empty means the optional default file.
	ConfigPath string
	// Settings, when set, is used instead of loading ConfigPath.
	Settings *config.Config
	// MinecraftVersion overrides the target version stored in the manifest.
	MinecraftVersion string
	// AssumeYes applies every update without asking.
	AssumeYes bool
	// Interactor announces updates and asks for confirmation.
	// Nil means a terminal on stdin/stdout, or auto-confirm when AssumeYes is set.
	Interactor console.Interactor
	// Processes lists running processes for the game-running check. Nil means the OS list.
	Processes common.ProcessLister
}

// Run reconciles the manifest at opts.ManifestPath and writes it back, with
// a backup of the previous version, if anything changed. The returned report
// is nil only when the pass could not start.
func Run(ctx context.Context, opts *Options) (*Report, error) {
	ctx = logger.WithName(ctx, "mod-mender")

	manifestPath := strings.TrimSpace(opts.ManifestPath)
	if manifestPath == "" {
		return nil, errManifestPathRequired
	}

	settings, err := loadSettings(opts)
	if err != nil {
		return nil, err
	}

	repo := repository.NewFileRepository(manifestPath)

	manifest, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	override := strings.TrimSpace(opts.MinecraftVersion)
	if err = manifest.Validate(override); err != nil {
		return nil, fmt.Errorf("%s: %w", repo.Path(), err)
	}

	warnIfGameRunning(ctx, opts.Processes)

	catalog := modrinth.NewClient(
		modrinth.WithBaseURL(settings.ModrinthAPIURL),
		modrinth.WithUserAgent(settings.UserAgent),
		modrinth.WithTimeout(settings.Timeout),
	)

	artifacts := fetcher.New(
		fetcher.WithUserAgent(settings.UserAgent),
		fetcher.WithTimeout(settings.Timeout),
	)

	engine := NewEngine(resolver.NewDefaultRegistry(catalog), artifacts, interactorFor(opts))

	logger.InfoKV(ctx, "Checking mods for updates",
		"manifest", repo.Path(),
		"mods", len(manifest.Mods),
		"loaders", manifest.Loaders)

	report, passErr := engine.Reconcile(ctx, manifest, repo.Dir(), override)
	if report == nil {
		return nil, passErr
	}

	logSummary(ctx, report)

	if !report.Changed() {
		logger.Info(ctx, "Nothing changed, manifest left untouched")

		return report, passErr
	}

	if err = repo.Save(ctx, manifest); err != nil {
		logger.ErrorKV(ctx, "Unable to save manifest", "error", err)

		return report, errors.Join(passErr, err)
	}

	logger.InfoKV(ctx, "Manifest updated", "path", repo.Path(), "backup", repo.BackupPath())

	return report, passErr
}

func loadSettings(opts *Options) (*config.Config, error) {
	if opts.Settings != nil {
		if err := config.Validate(opts.Settings); err != nil {
			return nil, err
		}

		return opts.Settings, nil
	}

	return config.LoadOrDefault(opts.ConfigPath)
}

//nolint:ireturn // Callers only need the capability.
func interactorFor(opts *Options) console.Interactor {
	switch {
	case opts.Interactor != nil:
		return opts.Interactor
	case opts.AssumeYes:
		return console.NewAuto(os.Stdout)
	default:
		return console.NewTerminal(os.Stdin, os.Stdout)
	}
}

// warnIfGameRunning only warns: replacing jars under a running game is the user's call.
func warnIfGameRunning(ctx context.Context, list common.ProcessLister) {
	running, err := common.RunningGameProcesses(list)
	if err != nil {
		logger.DebugKV(ctx, "Unable to list processes", "error", err)

		return
	}

	if len(running) > 0 {
		logger.WarnKV(ctx, "The game or a launcher seems to be running, close it before updating mods",
			"processes", running)
	}
}

func logSummary(ctx context.Context, report *Report) {
	logger.InfoKV(ctx, "Reconciliation finished",
		"minecraft_version", report.TargetVersion,
		string(OutcomeApplied), report.Count(OutcomeApplied),
		string(OutcomeUnchanged), report.Count(OutcomeUnchanged),
		string(OutcomeSkipped), report.Count(OutcomeSkipped),
		string(OutcomeUnsupported), report.Count(OutcomeUnsupported),
		string(OutcomeLookupFailed), report.Count(OutcomeLookupFailed),
		string(OutcomeFailed), report.Count(OutcomeFailed))
}
