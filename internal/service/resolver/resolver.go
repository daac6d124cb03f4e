package resolver

import (
	"context"
	"errors"

	domain "github.com/oshokin/mod-mender/internal/domain/modlist"
)

// ErrPlatformNotSupported is returned by resolvers that cannot query their catalog.
var ErrPlatformNotSupported = errors.New("platform is not supported")

// Query is the input of a single resolution.
type Query struct {
	// Item is the tracked mod as currently recorded.
	Item domain.TrackedItem
	// Loaders is the accepted loader set.
	Loaders []string
	// GameVersion is the target Minecraft version.
	GameVersion string
}

// Release is the outcome of a resolution. An empty DownloadURL means "keep
// the current jar"; Version then equals the item's current version.
type Release struct {
	// ID is the catalog identifier of the mod.
	ID string
	// Version is the release version label.
	Version string
	// DownloadURL points at the first file of the release.
	DownloadURL string
	// SHA512 is the hex digest of the artifact if the catalog published one.
	SHA512 string
}

// IsUpdate reports whether the release replaces the current jar.
func (r Release) IsUpdate() bool {
	return r.DownloadURL != ""
}

// Unchanged is the release that keeps item as it is.
func Unchanged(item domain.TrackedItem) Release {
	return Release{
		ID:      item.ID,
		Version: item.CurrentVersion,
	}
}

// PlatformResolver finds the latest compatible release on one catalog.
// It always returns a usable Release; a non-nil error explains why the
// answer degraded to Unchanged and is never fatal for the run.
type PlatformResolver interface {
	Platform() domain.Platform
	Resolve(ctx context.Context, query Query) (Release, error)
}
