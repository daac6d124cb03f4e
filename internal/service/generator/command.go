package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/oshokin/mod-mender/internal/console"
	domain "github.com/oshokin/mod-mender/internal/domain/modlist"
	"github.com/oshokin/mod-mender/internal/logger"
	repository "github.com/oshokin/mod-mender/internal/repository/modlist"
)

const (
	versionQuestion = "Minecraft version (e.g. 1.20.1): "
	loadersQuestion = "Mod loaders, comma separated (e.g. fabric,quilt): "
)

var (
	errPathRequired    = errors.New("path of the new manifest must be provided")
	errVersionRequired = errors.New("minecraft version must be provided")
	errLoadersRequired = errors.New("at least one mod loader must be provided")
)

// Options are inputs accepted by the generator entry point.
type Options struct {
	// Path is where the new manifest is written. An existing file is never overwritten.
	Path string
	// MinecraftVersion skips the version question when set.
	MinecraftVersion string
	// Loaders skips the loaders question when set.
	Loaders []string
	// Interactor asks the questions. Nil means a terminal on stdin/stdout.
	Interactor console.Interactor
}

// Run asks for the target version and loaders, then writes a skeleton
// manifest with no tracked mods.
func Run(ctx context.Context, opts *Options) (*domain.Manifest, error) {
	ctx = logger.WithName(ctx, "mod-mender-generator")

	path := strings.TrimSpace(opts.Path)
	if path == "" {
		return nil, errPathRequired
	}

	interactor := opts.Interactor
	if interactor == nil {
		interactor = console.NewTerminal(os.Stdin, os.Stdout)
	}

	minecraftVersion := strings.TrimSpace(opts.MinecraftVersion)
	if minecraftVersion == "" {
		answer, err := interactor.Ask(versionQuestion)
		if err != nil {
			return nil, fmt.Errorf("ask minecraft version: %w", err)
		}

		minecraftVersion = strings.TrimSpace(answer)
	}

	if minecraftVersion == "" {
		return nil, errVersionRequired
	}

	loaders := domain.NormalizeLoaders(opts.Loaders)
	if len(loaders) == 0 {
		answer, err := interactor.Ask(loadersQuestion)
		if err != nil {
			return nil, fmt.Errorf("ask mod loaders: %w", err)
		}

		loaders = ParseLoaders(answer)
	}

	if len(loaders) == 0 {
		return nil, errLoadersRequired
	}

	manifest := domain.New(minecraftVersion, loaders)
	repo := repository.NewFileRepository(path)

	if err := repo.Create(ctx, manifest); err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Generated manifest",
		"path", repo.Path(),
		"minecraft_version", manifest.MinecraftVersion,
		"loaders", manifest.Loaders)

	return manifest, nil
}

// ParseLoaders splits a comma or space separated loader list.
func ParseLoaders(answer string) []string {
	return domain.NormalizeLoaders(strings.FieldsFunc(answer, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	}))
}
