package generator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/mod-mender/internal/console"
	domain "github.com/oshokin/mod-mender/internal/domain/modlist"
	repository "github.com/oshokin/mod-mender/internal/repository/modlist"
	"github.com/oshokin/mod-mender/internal/service/fetcher"
	"github.com/oshokin/mod-mender/internal/service/reconciler"
	"github.com/oshokin/mod-mender/internal/service/resolver"
)

var errNoMoreAnswers = errors.New("no more answers")

// answers replays canned answers to Ask.
type answers struct {
	replies []string
	asked   []string
}

func (a *answers) Announce(console.Transition) {}

func (a *answers) Confirm(console.Transition) (bool, error) { return true, nil }

func (a *answers) Ask(question string) (string, error) {
	a.asked = append(a.asked, question)

	if len(a.replies) == 0 {
		return "", errNoMoreAnswers
	}

	reply := a.replies[0]
	a.replies = a.replies[1:]

	return reply, nil
}

func TestRun_GenerateThenLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pack", "modlist.json")
	ui := &answers{replies: []string{" 1.20.1 ", "Fabric, quilt"}}

	generated, err := Run(context.Background(), &Options{Path: path, Interactor: ui})
	require.NoError(t, err)
	require.Len(t, ui.asked, 2)

	loaded, err := repository.NewFileRepository(path).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "1.20.1", loaded.MinecraftVersion)
	require.Equal(t, []string{"fabric", "quilt"}, loaded.Loaders)
	require.Empty(t, loaded.Mods)
	require.Equal(t, generated.Loaders, loaded.Loaders)

	engine := reconciler.NewEngine(resolver.NewRegistry(), fetcher.New(), ui)
	_, err = engine.Reconcile(context.Background(), loaded, filepath.Dir(path), "")
	require.ErrorIs(t, err, domain.ErrNoTrackedItems)
}

func TestRun_SkipsQuestionsAnsweredByFlags(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "modlist.json")
	ui := &answers{}

	manifest, err := Run(context.Background(), &Options{
		Path:             path,
		MinecraftVersion: "1.21",
		Loaders:          []string{"neoforge"},
		Interactor:       ui,
	})
	require.NoError(t, err)
	require.Empty(t, ui.asked)
	require.Equal(t, "1.21", manifest.MinecraftVersion)
	require.FileExists(t, path)
}

func TestRun_RefusesToOverwrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "modlist.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"keep":"me"}`), 0o600))

	_, err := Run(context.Background(), &Options{
		Path:             path,
		MinecraftVersion: "1.20.1",
		Loaders:          []string{"fabric"},
		Interactor:       &answers{},
	})
	require.ErrorIs(t, err, repository.ErrAlreadyExists)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `{"keep":"me"}`, string(contents))
}

func TestRun_MissingAnswers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Run(context.Background(), &Options{
		Path:       filepath.Join(dir, "a.json"),
		Interactor: &answers{replies: []string{"  "}},
	})
	require.ErrorIs(t, err, errVersionRequired)

	_, err = Run(context.Background(), &Options{
		Path:       filepath.Join(dir, "b.json"),
		Interactor: &answers{replies: []string{"1.20.1", " , "}},
	})
	require.ErrorIs(t, err, errLoadersRequired)

	_, err = Run(context.Background(), &Options{
		Path:       filepath.Join(dir, "c.json"),
		Interactor: console.NewAuto(nil),
	})
	require.ErrorIs(t, err, console.ErrNonInteractive)

	_, err = Run(context.Background(), &Options{Interactor: &answers{}})
	require.ErrorIs(t, err, errPathRequired)

	require.NoFileExists(t, filepath.Join(dir, "a.json"))
}

func TestParseLoaders(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"fabric", "quilt"}, ParseLoaders("fabric,quilt"))
	require.Equal(t, []string{"forge", "neoforge"}, ParseLoaders(" Forge  neoforge, forge "))
	require.Empty(t, ParseLoaders(""))
}
