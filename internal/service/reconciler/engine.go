package reconciler

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"

	"github.com/oshokin/mod-mender/internal/console"
	domain "github.com/oshokin/mod-mender/internal/domain/modlist"
	"github.com/oshokin/mod-mender/internal/logger"
	"github.com/oshokin/mod-mender/internal/service/fetcher"
	"github.com/oshokin/mod-mender/internal/service/resolver"
)

var errEngineNotReady = errors.New("engine is missing a dependency")

// Resolvers finds the resolver responsible for a platform tag.
type Resolvers interface {
	Lookup(platform domain.Platform) resolver.PlatformResolver
}

// ArtifactFetcher replaces an installed jar with a downloaded one.
type ArtifactFetcher interface {
	Replace(ctx context.Context, req fetcher.Request) (*fetcher.Result, error)
}

// Engine drives the per-mod state machine of a reconciliation pass.
type Engine struct {
	resolvers  Resolvers
	fetcher    ArtifactFetcher
	interactor console.Interactor
}

// NewEngine wires an engine.
func NewEngine(resolvers Resolvers, artifacts ArtifactFetcher, interactor console.Interactor) *Engine {
	return &Engine{
		resolvers:  resolvers,
		fetcher:    artifacts,
		interactor: interactor,
	}
}

// Reconcile processes every tracked mod of manifest in order and mutates the
// records of applied updates in place. baseDir is the directory tracked file
// paths are relative to.
//
// A non-empty override that differs from the stored target version is used
// for resolution; after a complete pass every mod that was not updated has
// its version cleared and the manifest target becomes override.
//
// Per-mod problems never abort the pass. A cancelled ctx stops the pass
// between mods and before any jar is touched: the returned report covers the
// mods processed so far, the override is not committed, and the error is the
// context error.
func (e *Engine) Reconcile(
	ctx context.Context,
	manifest *domain.Manifest,
	baseDir string,
	override string,
) (*Report, error) {
	if e.resolvers == nil || e.fetcher == nil || e.interactor == nil {
		return nil, errEngineNotReady
	}

	if err := manifest.Validate(override); err != nil {
		return nil, err
	}

	target := manifest.MinecraftVersion
	overriding := override != "" && override != manifest.MinecraftVersion

	if overriding {
		target = override
		logger.InfoKV(ctx, "Overriding target Minecraft version", "from", manifest.MinecraftVersion, "to", override)
	}

	report := &Report{
		TargetVersion: target,
		Items:         make([]ItemResult, 0, len(manifest.Mods)),
	}

	applied := make([]bool, len(manifest.Mods))
	loaders := domain.NormalizeLoaders(manifest.Loaders)

	for i := range manifest.Mods {
		if err := ctx.Err(); err != nil {
			logger.WarnKV(ctx, "Reconciliation interrupted", "processed", len(report.Items), "error", err)
			return report, err
		}

		item := &manifest.Mods[i]
		if item.IsPlaceholder() {
			logger.Debugf(ctx, "Skipping entry #%d without an id", i+1)
			continue
		}

		result := e.reconcileItem(ctx, item, loaders, target, baseDir)
		applied[i] = result.Outcome == OutcomeApplied
		report.Items = append(report.Items, result)
	}

	if err := ctx.Err(); err != nil {
		logger.WarnKV(ctx, "Reconciliation interrupted", "processed", len(report.Items), "error", err)
		return report, err
	}

	if overriding {
		for i := range manifest.Mods {
			if !applied[i] {
				manifest.Mods[i].ClearVersion()
			}
		}

		manifest.MinecraftVersion = override
		report.VersionChanged = true
	}

	return report, nil
}

// reconcileItem walks one mod through resolve, announce, confirm and fetch.
func (e *Engine) reconcileItem(
	ctx context.Context,
	item *domain.TrackedItem,
	loaders []string,
	target string,
	baseDir string,
) ItemResult {
	platform := item.Platform.Normalize()
	ctx = logger.WithKV(ctx, "mod", item.ID, "platform", platform)

	result := ItemResult{
		ID:       item.ID,
		Platform: platform,
		From:     item.CurrentVersion,
		Outcome:  OutcomeUnchanged,
	}

	release, err := e.resolvers.Lookup(platform).Resolve(ctx, resolver.Query{
		Item:        item.Clone(),
		Loaders:     loaders,
		GameVersion: target,
	})

	switch {
	case errors.Is(err, resolver.ErrPlatformNotSupported):
		logger.WarnKV(ctx, "Platform is not supported, skipping", "error", err)

		result.Outcome, result.Err = OutcomeUnsupported, err

		return result
	case errors.Is(err, resolver.ErrNoCompatibleRelease):
		logger.WarnKV(ctx, "No compatible release found", "minecraft_version", target, "loaders", loaders)

		result.Err = err

		return result
	case err != nil:
		logger.WarnKV(ctx, "Unable to look up releases, keeping current version", "error", err)

		result.Outcome, result.Err = OutcomeLookupFailed, err

		return result
	}

	if !release.IsUpdate() || release.Version == item.CurrentVersion {
		logger.InfoKV(ctx, "No new updates", "version", item.CurrentVersion)
		return result
	}

	result.To = release.Version

	transition := console.Transition{
		ID:   item.ID,
		From: item.CurrentVersion,
		To:   release.Version,
	}

	e.interactor.Announce(transition)
	logger.InfoKV(ctx, "New update available", "from", item.CurrentVersion, "to", release.Version)

	confirmed, err := e.interactor.Confirm(transition)
	if err != nil {
		logger.WarnKV(ctx, "Unable to read confirmation, skipping update", "error", err)

		result.Outcome, result.Err = OutcomeSkipped, err

		return result
	}

	if !confirmed {
		logger.Info(ctx, "Update skipped")

		result.Outcome = OutcomeSkipped

		return result
	}

	// The prompt does not watch ctx, so an interrupt may arrive while it waits.
	if err = ctx.Err(); err != nil {
		logger.WarnKV(ctx, "Interrupted before installing update, keeping current jar", "error", err)

		result.Outcome, result.Err = OutcomeSkipped, err

		return result
	}

	fetched, err := e.fetcher.Replace(ctx, fetcher.Request{
		PreviousPath:   previousPath(baseDir, item.File),
		URL:            release.DownloadURL,
		DestinationDir: destinationDir(baseDir, item.File),
		SHA512:         release.SHA512,
	})
	if err != nil {
		logger.ErrorKV(ctx, "Unable to install update", "version", release.Version, "error", err)

		result.Outcome, result.Err = OutcomeFailed, fmt.Errorf("install %s %s: %w", item.ID, release.Version, err)

		return result
	}

	item.ApplyRelease(release.Version, fetched.Filename)
	logger.InfoKV(ctx, "Update installed", "version", release.Version, "file", item.File)

	result.Outcome = OutcomeApplied

	return result
}

// previousPath resolves the recorded jar against baseDir; empty if none is recorded.
func previousPath(baseDir, file string) string {
	if file == "" {
		return ""
	}

	return filepath.Join(baseDir, filepath.FromSlash(file))
}

// destinationDir is the directory the new jar lands in: next to the previous
// one, or baseDir when nothing is recorded.
func destinationDir(baseDir, file string) string {
	if file == "" {
		return baseDir
	}

	return filepath.Join(baseDir, filepath.FromSlash(path.Dir(filepath.ToSlash(file))))
}
