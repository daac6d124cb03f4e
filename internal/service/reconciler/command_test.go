package reconciler

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/mod-mender/internal/config"
	"github.com/oshokin/mod-mender/internal/console"
	domain "github.com/oshokin/mod-mender/internal/domain/modlist"
	repository "github.com/oshokin/mod-mender/internal/repository/modlist"
)

var sodiumJar = []byte("PK\x03\x04 sodium-fabric 0.5.1")

const sodiumManifest = `{
  "minecraft_version": "1.20.1",
  "loaders": ["fabric"],
  "mods": [
    {"id": "sodium", "platform": "modrinth", "current_version": "0.5", "file": "sodium-fabric-0.5.jar"},
    {"id": "jei", "platform": "curseforge", "current_version": "15.2", "file": "jei.jar"}
  ]
}
`

// fakeModrinth serves one project and its jar. The version list points back
// at the same server, so the download URL is built from the request host.
type fakeModrinth struct {
	server        *httptest.Server
	versionCalls  atomic.Int32
	downloadCalls atomic.Int32
}

func newFakeModrinth(t *testing.T, latest string) *fakeModrinth {
	t.Helper()

	fake := new(fakeModrinth)
	sum := sha512.Sum512(sodiumJar)
	digest := hex.EncodeToString(sum[:])

	fake.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/project/sodium/version":
			fake.versionCalls.Add(1)

			_, _ = fmt.Fprintf(w, `[{
				"id": "v2",
				"version_number": %q,
				"game_versions": ["1.20.1"],
				"loaders": ["fabric", "quilt"],
				"files": [{"url": "http://%s/data/sodium-fabric-%s.jar", "hashes": {"sha512": %q}}]
			}]`, latest, r.Host, latest, digest)
		case "/data/sodium-fabric-0.5.1.jar":
			fake.downloadCalls.Add(1)

			_, _ = w.Write(sodiumJar)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(fake.server.Close)

	return fake
}

func (f *fakeModrinth) options(manifestPath string) *Options {
	return &Options{
		ManifestPath: manifestPath,
		Settings: &config.Config{
			ModrinthAPIURL: f.server.URL,
			Timeout:        5 * time.Second,
			UserAgent:      "mod-mender-test",
		},
		Interactor: console.NewAuto(nil),
		Processes:  func() ([]ps.Process, error) { return nil, nil },
	}
}

func writeModpack(t *testing.T, manifest string) string {
	t.Helper()

	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "modlist.json")

	require.NoError(t, os.WriteFile(manifestPath, []byte(manifest), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sodium-fabric-0.5.jar"), []byte("old"), 0o600))

	return manifestPath
}

func TestRun_AppliesUpdateAndBacksUpManifest(t *testing.T) {
	t.Parallel()

	fake := newFakeModrinth(t, "0.5.1")
	manifestPath := writeModpack(t, sodiumManifest)
	dir := filepath.Dir(manifestPath)

	report, err := Run(context.Background(), fake.options(manifestPath))
	require.NoError(t, err)
	require.Equal(t, 1, report.Count(OutcomeApplied))
	require.Equal(t, 1, report.Count(OutcomeUnsupported))

	require.NoFileExists(t, filepath.Join(dir, "sodium-fabric-0.5.jar"))

	jar, err := os.ReadFile(filepath.Join(dir, "sodium-fabric-0.5.1.jar"))
	require.NoError(t, err)
	require.Equal(t, sodiumJar, jar)

	backup, err := os.ReadFile(filepath.Join(dir, repository.BackupPrefix+"modlist.json"))
	require.NoError(t, err)
	require.Equal(t, sodiumManifest, string(backup))

	saved, err := repository.NewFileRepository(manifestPath).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0.5.1", saved.Mods[0].CurrentVersion)
	require.Equal(t, "sodium-fabric-0.5.1.jar", saved.Mods[0].File)
	require.Equal(t, "15.2", saved.Mods[1].CurrentVersion)
	require.Equal(t, domain.PlatformCurseforge, saved.Mods[1].Platform)
}

func TestRun_SecondPassIsNoop(t *testing.T) {
	t.Parallel()

	fake := newFakeModrinth(t, "0.5.1")
	manifestPath := writeModpack(t, sodiumManifest)
	backupPath := filepath.Join(filepath.Dir(manifestPath), repository.BackupPrefix+"modlist.json")

	_, err := Run(context.Background(), fake.options(manifestPath))
	require.NoError(t, err)

	manifestAfterFirst, err := os.ReadFile(manifestPath)
	require.NoError(t, err)

	backupAfterFirst, err := os.ReadFile(backupPath)
	require.NoError(t, err)

	report, err := Run(context.Background(), fake.options(manifestPath))
	require.NoError(t, err)
	require.False(t, report.Changed())
	require.Equal(t, int32(1), fake.downloadCalls.Load())

	manifestAfterSecond, err := os.ReadFile(manifestPath)
	require.NoError(t, err)
	require.Equal(t, manifestAfterFirst, manifestAfterSecond)

	backupAfterSecond, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	require.Equal(t, backupAfterFirst, backupAfterSecond)
}

func TestRun_NoChangeLeavesFilesUntouched(t *testing.T) {
	t.Parallel()

	fake := newFakeModrinth(t, "0.5")
	manifestPath := writeModpack(t, sodiumManifest)

	report, err := Run(context.Background(), fake.options(manifestPath))
	require.NoError(t, err)
	require.False(t, report.Changed())
	require.Equal(t, int32(1), fake.versionCalls.Load())
	require.Zero(t, fake.downloadCalls.Load())

	contents, err := os.ReadFile(manifestPath)
	require.NoError(t, err)
	require.Equal(t, sodiumManifest, string(contents))
	require.NoFileExists(t, filepath.Join(filepath.Dir(manifestPath), repository.BackupPrefix+"modlist.json"))
	require.FileExists(t, filepath.Join(filepath.Dir(manifestPath), "sodium-fabric-0.5.jar"))
}

func TestRun_FailedDownloadIsRetriedNextTime(t *testing.T) {
	t.Parallel()

	// 0.6 is advertised but its jar is missing on the server.
	fake := newFakeModrinth(t, "0.6")
	manifestPath := writeModpack(t, sodiumManifest)

	report, err := Run(context.Background(), fake.options(manifestPath))
	require.NoError(t, err)
	require.Equal(t, 1, report.Count(OutcomeFailed))
	require.False(t, report.Changed())

	contents, err := os.ReadFile(manifestPath)
	require.NoError(t, err)
	require.Equal(t, sodiumManifest, string(contents))
}

func TestRun_OverrideRewritesTargetVersion(t *testing.T) {
	t.Parallel()

	fake := newFakeModrinth(t, "0.5.1")
	manifestPath := writeModpack(t, sodiumManifest)

	opts := fake.options(manifestPath)
	opts.MinecraftVersion = "1.21"

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.True(t, report.VersionChanged)
	require.Equal(t, 1, report.Count(OutcomeUnchanged))

	saved, err := repository.NewFileRepository(manifestPath).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "1.21", saved.MinecraftVersion)

	for _, mod := range saved.Mods {
		require.Empty(t, mod.CurrentVersion, mod.ID)
		require.Empty(t, mod.File, mod.ID)
	}
}

func TestRun_FatalInputErrors(t *testing.T) {
	t.Parallel()

	fake := newFakeModrinth(t, "0.5.1")

	_, err := Run(context.Background(), fake.options(""))
	require.ErrorIs(t, err, errManifestPathRequired)

	_, err = Run(context.Background(), fake.options(filepath.Join(t.TempDir(), "missing.json")))
	require.ErrorIs(t, err, repository.ErrNotFound)

	empty := writeModpack(t, `{"minecraft_version": "1.20.1", "loaders": ["fabric"], "mods": []}`)
	_, err = Run(context.Background(), fake.options(empty))
	require.ErrorIs(t, err, domain.ErrNoTrackedItems)
	require.Zero(t, fake.versionCalls.Load())
}

func TestRun_ExplicitConfigMustExist(t *testing.T) {
	t.Parallel()

	manifestPath := writeModpack(t, sodiumManifest)

	_, err := Run(context.Background(), &Options{
		ManifestPath: manifestPath,
		ConfigPath:   filepath.Join(t.TempDir(), "missing.yaml"),
		Interactor:   console.NewAuto(nil),
		Processes:    func() ([]ps.Process, error) { return nil, nil },
	})
	require.ErrorIs(t, err, os.ErrNotExist)

	contents, err := os.ReadFile(manifestPath)
	require.NoError(t, err)
	require.Equal(t, sodiumManifest, string(contents))
}
