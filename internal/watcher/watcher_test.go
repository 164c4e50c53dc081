package watcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/quill/internal/collection"
	"github.com/starford/quill/internal/markdown"
	"github.com/starford/quill/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// watcherTestEnv sets up a content dir and a store for watcher tests.
func watcherTestEnv(t *testing.T) (string, *collection.Store) {
	t.Helper()
	dir, p := testutil.TestContent(t)
	store := collection.NewStore(collection.Options{
		Provider:  p,
		Extension: ".md",
		Renderer:  markdown.NewRenderer(markdown.Options{PostPath: "/blog"}),
		Logger:    quietLogger(),
	})
	if _, err := store.Current(context.Background()); err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func startWatch(t *testing.T, dir string, r Refresher, cb Callback) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go Watch(ctx, r, Options{Root: dir, Debounce: 50 * time.Millisecond, Logger: quietLogger()}, cb)
	time.Sleep(100 * time.Millisecond)
}

func hasPost(store *collection.Store, slug string) bool {
	snap, err := store.Current(context.Background())
	if err != nil {
		return false
	}
	_, ok := snap.Post(slug)
	return ok
}

func TestWatcher_NewFileRebuilds(t *testing.T) {
	dir, store := watcherTestEnv(t)

	var mu sync.Mutex
	var ids []string
	startWatch(t, dir, store, func(snap *collection.Snapshot) {
		mu.Lock()
		ids = append(ids, snap.ID)
		mu.Unlock()
	})

	testutil.WritePost(t, dir, "new.md", "New", "new", "2024-01-01", true, "# New")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return hasPost(store, "new")
	}, "new file not picked up by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ids) > 0
	}, "expected rebuild callback")
}

func TestWatcher_NewDirWatched(t *testing.T) {
	dir, store := watcherTestEnv(t)
	startWatch(t, dir, store, nil)

	subDir := filepath.Join(dir, "subdir")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(200 * time.Millisecond)

	testutil.WritePost(t, dir, "subdir/deep.md", "Deep", "deep", "2024-01-01", true, "# Deep")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return hasPost(store, "deep")
	}, "file in new subdir not picked up by watcher")
}

func TestWatcher_DeleteRemovesPost(t *testing.T) {
	dir, store := watcherTestEnv(t)
	testutil.WritePost(t, dir, "del.md", "Delete Me", "del", "2024-01-01", true, "")
	if _, err := store.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !hasPost(store, "del") {
		t.Fatal("precondition: post should exist")
	}

	startWatch(t, dir, store, nil)
	_ = os.Remove(filepath.Join(dir, "del.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !hasPost(store, "del")
	}, "deleted file still in collection")
}

type countingRefresher struct {
	calls atomic.Int32
}

func (c *countingRefresher) Refresh(context.Context) (*collection.Snapshot, error) {
	c.calls.Add(1)
	return &collection.Snapshot{ID: "x"}, nil
}

type failingRefresher struct{}

func (failingRefresher) Refresh(context.Context) (*collection.Snapshot, error) {
	return nil, errors.New("walk failed")
}

func TestWatcher_ReportsRebuildFailure(t *testing.T) {
	dir := t.TempDir()
	errs := make(chan error, 4)
	called := make(chan struct{}, 4)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go Watch(ctx, failingRefresher{}, Options{
		Root:     dir,
		Debounce: 50 * time.Millisecond,
		Logger:   quietLogger(),
		OnError:  func(err error) { errs <- err },
	}, func(*collection.Snapshot) { called <- struct{}{} })
	time.Sleep(100 * time.Millisecond)

	testutil.WriteFile(t, dir, "a.md", "x")

	select {
	case err := <-errs:
		if err.Error() != "walk failed" {
			t.Errorf("error = %v, want walk failed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("OnError not called")
	}
	select {
	case <-called:
		t.Error("callback called after failed rebuild")
	default:
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	r := &countingRefresher{}
	startWatch(t, dir, r, nil)

	for i := 0; i < 5; i++ {
		testutil.WriteFile(t, dir, "burst.md", "x")
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return r.calls.Load() > 0
	}, "no rebuild after burst")
	time.Sleep(200 * time.Millisecond)
	if n := r.calls.Load(); n != 1 {
		t.Errorf("rebuilds = %d, want 1", n)
	}
}

func TestRelevant(t *testing.T) {
	cases := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: "/c/a.md", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/c/a.md", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/c/a.png", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/c/dir", Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: "/c/dir", Op: fsnotify.Write}, false},
	}
	for _, c := range cases {
		if got := relevant(c.ev, ".md"); got != c.want {
			t.Errorf("relevant(%s %s) = %v, want %v", c.ev.Op, c.ev.Name, got, c.want)
		}
	}
}
