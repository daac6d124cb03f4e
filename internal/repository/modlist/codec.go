package modlist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	domain "github.com/oshokin/mod-mender/internal/domain/modlist"
)

// Keys of the persisted JSON document.
const (
	keyMinecraftVersion = "minecraft_version"
	keyLoaders          = "loaders"
	keyLegacyLoader     = "loader"
	keyMods             = "mods"

	keyID             = "id"
	keyPlatform       = "platform"
	keyCurrentVersion = "current_version"
	keyFile           = "file"
)

// manifestDocument mirrors the top level of the manifest file.
type manifestDocument struct {
	MinecraftVersion string        `json:"minecraft_version"`
	Loaders          []string      `json:"loaders"`
	LegacyLoader     string        `json:"loader"`
	Mods             []modDocument `json:"mods"`
}

// modDocument mirrors a single entry of the "mods" array.
type modDocument struct {
	ID             string `json:"id"`
	Platform       string `json:"platform"`
	CurrentVersion string `json:"current_version"`
	File           string `json:"file"`
}

// decode parses manifest bytes into the domain model, keeping unknown keys.
func decode(data []byte) (*domain.Manifest, error) {
	var doc manifestDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var rawTop map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawTop); err != nil {
		return nil, err
	}

	var rawMods []map[string]json.RawMessage
	if mods, ok := rawTop[keyMods]; ok && !isNull(mods) {
		if err := json.Unmarshal(mods, &rawMods); err != nil {
			return nil, err
		}
	}

	manifest := &domain.Manifest{
		MinecraftVersion: doc.MinecraftVersion,
		Loaders:          doc.Loaders,
		Mods:             make([]domain.TrackedItem, 0, len(doc.Mods)),
	}

	consumed := []string{keyMinecraftVersion, keyLoaders, keyMods}

	if len(doc.Loaders) == 0 && doc.LegacyLoader != "" {
		manifest.Loaders = []string{doc.LegacyLoader}
		manifest.SingleLoader = true
		consumed = append(consumed, keyLegacyLoader)
	}

	manifest.Extra = withoutKeys(rawTop, consumed...)

	for i, mod := range doc.Mods {
		manifest.Mods = append(manifest.Mods, domain.TrackedItem{
			ID:             mod.ID,
			Platform:       domain.Platform(mod.Platform),
			CurrentVersion: mod.CurrentVersion,
			File:           mod.File,
			Extra:          withoutKeys(rawMods[i], keyID, keyPlatform, keyCurrentVersion, keyFile),
		})
	}

	return manifest, nil
}

// encode renders the manifest as 2-space indented JSON. Known keys come first
// in a fixed order, preserved unknown keys follow in sorted order. Loaders are
// written exactly as loaded, under the key they were read from.
func encode(manifest *domain.Manifest) ([]byte, error) {
	loaders := manifest.Loaders
	if loaders == nil {
		loaders = []string{}
	}

	mods := make([]json.RawMessage, 0, len(manifest.Mods))

	for i := range manifest.Mods {
		mod := &manifest.Mods[i]

		encoded, err := encodeObject([]field{
			{keyID, mod.ID},
			{keyPlatform, string(mod.Platform)},
			{keyCurrentVersion, mod.CurrentVersion},
			{keyFile, mod.File},
		}, mod.Extra)
		if err != nil {
			return nil, fmt.Errorf("encode mod %q: %w", mod.ID, err)
		}

		mods = append(mods, encoded)
	}

	loadersField := field{keyLoaders, loaders}
	if manifest.SingleLoader && len(loaders) == 1 {
		loadersField = field{keyLegacyLoader, loaders[0]}
	}

	compact, err := encodeObject([]field{
		{keyMinecraftVersion, manifest.MinecraftVersion},
		loadersField,
		{keyMods, mods},
	}, manifest.Extra)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err = json.Indent(&out, compact, "", "  "); err != nil {
		return nil, err
	}

	out.WriteByte('\n')

	return out.Bytes(), nil
}

// field is one key of an ordered JSON object.
type field struct {
	key   string
	value any
}

// encodeObject writes known fields in order, then extra keys sorted.
// Extra keys that collide with a known field are ignored.
func encodeObject(known []field, extra map[string]json.RawMessage) (json.RawMessage, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	write := func(key string, value any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}

		encodedKey, err := json.Marshal(key)
		if err != nil {
			return err
		}

		encodedValue, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("key %s: %w", key, err)
		}

		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(encodedValue)

		return nil
	}

	seen := make(map[string]struct{}, len(known))

	for _, f := range known {
		seen[f.key] = struct{}{}

		if err := write(f.key, f.value); err != nil {
			return nil, err
		}
	}

	for _, key := range slices.Sorted(maps.Keys(extra)) {
		if _, dup := seen[key]; dup {
			continue
		}

		if err := write(key, extra[key]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// withoutKeys returns a copy of raw without the listed keys, or nil if nothing remains.
func withoutKeys(raw map[string]json.RawMessage, keys ...string) map[string]json.RawMessage {
	result := maps.Clone(raw)
	for _, key := range keys {
		delete(result, key)
	}

	if len(result) == 0 {
		return nil
	}

	return result
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
