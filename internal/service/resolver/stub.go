package resolver

import (
	"context"
	"fmt"

	domain "github.com/oshokin/mod-mender/internal/domain/modlist"
)

// Curseforge is a placeholder for CurseForge-hosted mods. It never contacts
// the network and always keeps the current jar.
type Curseforge struct{}

// Platform implements PlatformResolver.
func (Curseforge) Platform() domain.Platform {
	return domain.PlatformCurseforge
}

// Resolve implements PlatformResolver.
func (Curseforge) Resolve(_ context.Context, query Query) (Release, error) {
	return Unchanged(query.Item), fmt.Errorf("%s: %w", domain.PlatformCurseforge, ErrPlatformNotSupported)
}

// Unsupported handles any platform tag nothing else claims.
type Unsupported struct {
	platform domain.Platform
}

// Platform implements PlatformResolver.
func (u Unsupported) Platform() domain.Platform {
	return u.platform
}

// Resolve implements PlatformResolver.
func (u Unsupported) Resolve(_ context.Context, query Query) (Release, error) {
	return Unchanged(query.Item), fmt.Errorf("%q: %w", u.platform, ErrPlatformNotSupported)
}
