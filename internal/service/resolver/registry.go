package resolver

import (
	domain "github.com/oshokin/mod-mender/internal/domain/modlist"
)

// Registry maps platform tags to resolvers.
type Registry struct {
	resolvers map[domain.Platform]PlatformResolver
}

// NewRegistry builds a registry from the given resolvers; a later resolver
// for the same platform replaces an earlier one.
func NewRegistry(resolvers ...PlatformResolver) *Registry {
	registry := &Registry{
		resolvers: make(map[domain.Platform]PlatformResolver, len(resolvers)),
	}

	for _, r := range resolvers {
		registry.resolvers[r.Platform().Normalize()] = r
	}

	return registry
}

// NewDefaultRegistry wires every known platform: Modrinth backed by catalog
// and the CurseForge stub.
func NewDefaultRegistry(catalog VersionLister) *Registry {
	return NewRegistry(NewModrinth(catalog), Curseforge{})
}

// Lookup returns the resolver for platform. Unknown tags get an Unsupported resolver.
//
//nolint:ireturn // Callers only need the capability.
func (r *Registry) Lookup(platform domain.Platform) PlatformResolver {
	if resolver, ok := r.resolvers[platform.Normalize()]; ok {
		return resolver
	}

	return Unsupported{platform: platform}
}
