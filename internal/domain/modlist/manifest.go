package modlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// Platform names the catalog a tracked mod is published on.
type Platform string

const (
	// PlatformModrinth is the Modrinth catalog.
	PlatformModrinth Platform = "modrinth"
	// PlatformCurseforge is the CurseForge catalog.
	PlatformCurseforge Platform = "curseforge"
)

// Normalize returns the canonical lower-case form of the platform tag.
func (p Platform) Normalize() Platform {
	return Platform(strings.ToLower(strings.TrimSpace(string(p))))
}

var (
	// ErrNoTrackedItems is returned when the mod list is empty or holds only placeholders.
	ErrNoTrackedItems = errors.New("manifest has no tracked mods")
	// ErrNoLoaders is returned when the manifest declares no mod loader.
	ErrNoLoaders = errors.New("manifest has no loaders")
	// ErrNoMinecraftVersion is returned when no target Minecraft version is known.
	ErrNoMinecraftVersion = errors.New("manifest has no minecraft version")
	// ErrAbsoluteFilePath is returned when a tracked file is not relative to the manifest.
	ErrAbsoluteFilePath = errors.New("file path must be relative to the manifest directory")
)

// TrackedItem is one mod entry of the manifest.
type TrackedItem struct {
	// ID is the catalog identifier (project id or slug).
	ID string
	// Platform is the catalog the mod is tracked on.
	Platform Platform
	// CurrentVersion is the version label of the installed jar.
	CurrentVersion string
	// File is the jar path, slash separated and relative to the manifest directory.
	File string
	// Extra keeps keys this program does not interpret so a rewrite preserves them.
	Extra map[string]json.RawMessage
}

// Clone returns a deep copy of the item.
func (t *TrackedItem) Clone() TrackedItem {
	cloned := *t
	cloned.Extra = maps.Clone(t.Extra)

	return cloned
}

// IsPlaceholder reports whether the entry carries no catalog identifier.
func (t *TrackedItem) IsPlaceholder() bool {
	return strings.TrimSpace(t.ID) == ""
}

// ApplyRelease records a newly installed jar. The new file lands in the same
// directory as the previous one, or next to the manifest if there was none.
func (t *TrackedItem) ApplyRelease(versionLabel, filename string) {
	t.CurrentVersion = versionLabel
	t.File = ArtifactPath(t.File, filename)
}

// ClearVersion drops the version and file, marking the mod as not verified
// against the current target Minecraft version.
func (t *TrackedItem) ClearVersion() {
	t.CurrentVersion = ""
	t.File = ""
}

// ArtifactPath places filename in the directory of previous.
func ArtifactPath(previous, filename string) string {
	dir := path.Dir(filepath.ToSlash(previous))
	if previous == "" || dir == "." {
		return filename
	}

	return path.Join(dir, filename)
}

// Manifest is the in-memory form of a mod list file.
type Manifest struct {
	// MinecraftVersion is the target game version label, e.g. "1.20.1".
	MinecraftVersion string
	// Loaders lists the accepted mod loaders as written in the file, e.g. ["fabric", "quilt"].
	// Use NormalizeLoaders before matching.
	Loaders []string
	// SingleLoader is set when Loaders came from the older single "loader" key.
	SingleLoader bool
	// Mods is the ordered list of tracked mods.
	Mods []TrackedItem
	// Extra keeps top-level keys this program does not interpret.
	Extra map[string]json.RawMessage
}

// New returns a skeleton manifest with no tracked mods.
func New(minecraftVersion string, loaders []string) *Manifest {
	return &Manifest{
		MinecraftVersion: strings.TrimSpace(minecraftVersion),
		Loaders:          NormalizeLoaders(loaders),
		Mods:             []TrackedItem{},
	}
}

// Clone returns a deep copy of the manifest.
func (m *Manifest) Clone() *Manifest {
	cloned := &Manifest{
		MinecraftVersion: m.MinecraftVersion,
		Loaders:          slices.Clone(m.Loaders),
		SingleLoader:     m.SingleLoader,
		Mods:             make([]TrackedItem, 0, len(m.Mods)),
		Extra:            maps.Clone(m.Extra),
	}

	for i := range m.Mods {
		cloned.Mods = append(cloned.Mods, m.Mods[i].Clone())
	}

	return cloned
}

// HasTrackedItems reports whether at least one entry names a catalog identifier.
func (m *Manifest) HasTrackedItems() bool {
	return slices.ContainsFunc(m.Mods, func(t TrackedItem) bool {
		return !t.IsPlaceholder()
	})
}

// Validate checks that the manifest can drive a reconciliation pass against
// targetVersion. An empty targetVersion means the stored one.
func (m *Manifest) Validate(targetVersion string) error {
	if targetVersion == "" {
		targetVersion = m.MinecraftVersion
	}

	if strings.TrimSpace(targetVersion) == "" {
		return ErrNoMinecraftVersion
	}

	if len(NormalizeLoaders(m.Loaders)) == 0 {
		return ErrNoLoaders
	}

	if !m.HasTrackedItems() {
		return ErrNoTrackedItems
	}

	for i := range m.Mods {
		if file := m.Mods[i].File; path.IsAbs(filepath.ToSlash(file)) || filepath.IsAbs(file) {
			return fmt.Errorf("mod %q file %q: %w", m.Mods[i].ID, file, ErrAbsoluteFilePath)
		}
	}

	return nil
}

// NormalizeLoaders trims, lower-cases and de-duplicates loader names, keeping order.
func NormalizeLoaders(loaders []string) []string {
	result := make([]string, 0, len(loaders))

	for _, loader := range loaders {
		loader = strings.ToLower(strings.TrimSpace(loader))
		if loader == "" || slices.Contains(result, loader) {
			continue
		}

		result = append(result, loader)
	}

	return result
}
