package collection

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Store holds the current snapshot and rebuilds it on demand. Readers never
// block on a rebuild; they keep seeing the previous snapshot until the new
// one is swapped in.
type Store struct {
	opts  Options
	cur   atomic.Pointer[Snapshot]
	group singleflight.Group
}

// NewStore creates a Store. No build happens until Current or Refresh.
func NewStore(opts Options) *Store {
	return &Store{opts: opts}
}

// Current returns the current snapshot, building it on first use.
func (s *Store) Current(ctx context.Context) (*Snapshot, error) {
	if snap := s.cur.Load(); snap != nil {
		return snap, nil
	}
	return s.Refresh(ctx)
}

// Refresh rebuilds the collection and swaps it in. Concurrent calls share a
// single build. On failure the previous snapshot stays current.
//
// The shared build is detached from ctx: a caller that gives up gets
// ctx.Err() but does not cancel the build for the others.
func (s *Store) Refresh(ctx context.Context) (*Snapshot, error) {
	buildCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan("build", func() (any, error) {
		snap, err := Build(buildCtx, s.opts)
		if err != nil {
			return nil, err
		}
		s.cur.Store(snap)
		return snap, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

// Ready reports whether a snapshot has been built.
func (s *Store) Ready() bool {
	return s.cur.Load() != nil
}
