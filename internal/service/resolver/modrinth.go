package resolver

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/oshokin/mod-mender/internal/api/modrinth"
	domain "github.com/oshokin/mod-mender/internal/domain/modlist"
)

var (
	// ErrNoCompatibleRelease is returned when no release matches the target version and loaders.
	ErrNoCompatibleRelease = errors.New("no compatible release found")

	errReleaseWithoutFiles = errors.New("release has no downloadable files")
)

// VersionLister lists the releases of a Modrinth project.
type VersionLister interface {
	ListProjectVersions(ctx context.Context, projectID string, loaders, gameVersions []string) ([]modrinth.Version, error)
}

// Modrinth resolves mods hosted on Modrinth.
type Modrinth struct {
	catalog VersionLister
}

// NewModrinth creates a Modrinth resolver backed by catalog.
func NewModrinth(catalog VersionLister) *Modrinth {
	return &Modrinth{catalog: catalog}
}

// Platform implements PlatformResolver.
func (m *Modrinth) Platform() domain.Platform {
	return domain.PlatformModrinth
}

// Resolve implements PlatformResolver. The catalog is asked to filter by
// loader and game version; the same filters are applied again locally.
func (m *Modrinth) Resolve(ctx context.Context, query Query) (Release, error) {
	current := Unchanged(query.Item)

	versions, err := m.catalog.ListProjectVersions(ctx, query.Item.ID, query.Loaders, []string{query.GameVersion})
	if err != nil {
		return current, fmt.Errorf("list versions of %s: %w", query.Item.ID, err)
	}

	return SelectRelease(versions, query)
}

// SelectRelease walks versions in the given order and stops at the first one
// that supports the target game version and at least one requested loader.
// An equal version label means no update; a different one is the candidate,
// with its first file as the artifact.
func SelectRelease(versions []modrinth.Version, query Query) (Release, error) {
	current := Unchanged(query.Item)

	for i := range versions {
		version := &versions[i]

		if !slices.Contains(version.GameVersions, query.GameVersion) {
			continue
		}

		if !intersects(version.Loaders, query.Loaders) {
			continue
		}

		if version.VersionNumber == query.Item.CurrentVersion {
			return current, nil
		}

		if len(version.Files) == 0 || version.Files[0].URL == "" {
			return current, fmt.Errorf("%s %s: %w", query.Item.ID, version.VersionNumber, errReleaseWithoutFiles)
		}

		file := version.Files[0]

		return Release{
			ID:          query.Item.ID,
			Version:     version.VersionNumber,
			DownloadURL: file.URL,
			SHA512:      file.Hashes.SHA512,
		}, nil
	}

	return current, fmt.Errorf("%s for minecraft %s and loaders %v: %w",
		query.Item.ID, query.GameVersion, query.Loaders, ErrNoCompatibleRelease)
}

// intersects reports whether the two loader lists share an entry.
func intersects(declared, wanted []string) bool {
	return slices.ContainsFunc(declared, func(loader string) bool {
		return slices.Contains(wanted, loader)
	})
}
