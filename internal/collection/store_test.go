package collection

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/starford/quill/internal/testutil"
)

func TestStore_CurrentBuildsLazily(t *testing.T) {
	dir, p := testutil.TestContent(t)
	testutil.WritePost(t, dir, "a.md", "A", "a", "2024-01-01", true, "")

	s := NewStore(testOptions(p))
	if s.Ready() {
		t.Fatal("store ready before first build")
	}
	snap, err := s.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if !s.Ready() {
		t.Error("store not ready after Current")
	}
	again, _ := s.Current(context.Background())
	if again != snap {
		t.Error("Current rebuilt an existing snapshot")
	}
}

func TestStore_RefreshSwapsSnapshot(t *testing.T) {
	dir, p := testutil.TestContent(t)
	testutil.WritePost(t, dir, "a.md", "A", "a", "2024-01-01", true, "")

	s := NewStore(testOptions(p))
	first, err := s.Current(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	testutil.WritePost(t, dir, "b.md", "B", "b", "2024-02-01", true, "")

	second, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if second.ID == first.ID {
		t.Error("refresh kept the snapshot ID")
	}
	if first.Len() != 1 {
		t.Errorf("old snapshot changed: len = %d", first.Len())
	}
	cur, _ := s.Current(context.Background())
	if cur.Len() != 2 {
		t.Errorf("current len = %d, want 2", cur.Len())
	}
}

func TestStore_FailedRefreshKeepsPrevious(t *testing.T) {
	dir, p := testutil.TestContent(t)
	testutil.WritePost(t, dir, "a.md", "A", "a", "2024-01-01", true, "")

	s := NewStore(testOptions(p))
	first, err := s.Current(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	cur, _ := s.Current(context.Background())
	if cur != first {
		t.Error("failed refresh replaced the snapshot")
	}
}

func TestStore_ConcurrentRefresh(t *testing.T) {
	dir, p := testutil.TestContent(t)
	for _, slug := range []string{"a", "b", "c"} {
		testutil.WritePost(t, dir, slug+".md", slug, slug, "2024-01-01", true, "body")
	}
	s := NewStore(testOptions(p))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := s.Refresh(context.Background())
			if err != nil {
				t.Errorf("Refresh: %v", err)
				return
			}
			if snap.Len() != 3 {
				t.Errorf("len = %d, want 3", snap.Len())
			}
		}()
	}
	wg.Wait()
}

func TestStore_CancelledCallerDoesNotCancelBuild(t *testing.T) {
	dir, p := testutil.TestContent(t)
	testutil.WritePost(t, dir, "a.md", "A", "a", "2024-01-01", true, "")

	s := NewStore(testOptions(p))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
		t.Fatalf("Refresh: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for !s.Ready() {
		if time.Now().After(deadline) {
			t.Fatal("build abandoned after caller cancelled")
		}
		time.Sleep(10 * time.Millisecond)
	}
	snap, err := s.Current(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.Len() != 1 {
		t.Errorf("len = %d, want 1", snap.Len())
	}
}
