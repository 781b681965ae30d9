package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
	"github.com/matryer/is"
)

func TestStore_SaveLoad(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	store, err := Open(filepath.Join(t.TempDir(), "boards"))
	is.NoErr(err)

	_, err = store.LoadSnapshot(ctx, app.StorageKey)
	is.True(errors.Is(err, app.ErrNotFound))

	is.NoErr(store.SaveSnapshot(ctx, app.StorageKey, []byte(`{"v":1}`)))
	is.NoErr(store.SaveSnapshot(ctx, app.StorageKey, []byte(`{"v":2}`)))

	payload, err := store.LoadSnapshot(ctx, app.StorageKey)
	is.NoErr(err)
	is.Equal(string(payload), `{"v":2}`)
	is.Equal(filepath.Base(store.Path(app.StorageKey)), "board-storage.json")

	entries, err := os.ReadDir(filepath.Dir(store.Path(app.StorageKey)))
	is.NoErr(err)
	is.Equal(len(entries), 1) // temp files are cleaned up
}

func TestStore_KeysAreSanitized(t *testing.T) {
	is := is.New(t)
	store, err := Open(t.TempDir())
	is.NoErr(err)

	is.Equal(filepath.Base(store.Path("../escape/me")), ".._escape_me.json")
	is.NoErr(store.SaveSnapshot(context.Background(), "../escape/me", []byte("x")))
	payload, err := store.LoadSnapshot(context.Background(), "../escape/me")
	is.NoErr(err)
	is.Equal(string(payload), "x")
}

func TestStore_BoardRoundTrip(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	store, err := Open(t.TempDir())
	is.NoErr(err)

	s := app.NewStore(domain.Board{}, func() string { return "t1" }, nil, app.StoreConfig{})
	s.Subscribe(app.NewPersistHook(store, app.StorageKey, app.RetryPolicy{}))
	_, err = s.AddTask(ctx, "2", "from file")
	is.NoErr(err)

	board, err := app.LoadBoard(ctx, store, app.StorageKey, nil)
	is.NoErr(err)
	is.Equal(board.Tasks["t1"].Title, "from file")
	is.Equal(board.Columns[1].TaskIDs, []string{"t1"})
}

func TestOpenRequiresDir(t *testing.T) {
	is := is.New(t)
	_, err := Open("  ")
	is.True(err != nil)
}
