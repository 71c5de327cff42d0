package snapshot

import (
	"context"
	"sync"

	"github.com/RacoonMediaServer/rms-annotator/internal/model"
	"go-micro.dev/v4/logger"
)

type loadState int

const (
	stateNotLoaded loadState = iota
	stateLoading
	stateLoaded
)

// Store holds the materialized catalog snapshot behind a latch: once a load
// succeeded, the in-memory snapshot is served without network calls until a
// forced reload. There is no time-based expiry
type Store struct {
	catalog  Catalog
	fallback Fallback

	mu       sync.Mutex
	state    loadState
	entries  []*model.LibraryEntry
	inflight chan struct{}
}

func New(catalog Catalog, fallback Fallback) *Store {
	return &Store{catalog: catalog, fallback: fallback}
}

// Load returns the catalog snapshot. With force == false a latched snapshot
// is served as is, however stale; force == true always re-fetches. When a
// fetch fails and a snapshot already exists, the old snapshot is returned
// together with the error; a failed first fetch falls back to the
// pre-scanned list of the import pipeline, when one is supplied
func (s *Store) Load(ctx context.Context, force bool) ([]*model.LibraryEntry, error) {
	for {
		s.mu.Lock()

		if s.state == stateLoaded && !force {
			out := s.entries
			s.mu.Unlock()
			return out, nil
		}

		if s.state == stateLoading {
			ch := s.inflight
			s.mu.Unlock()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-ch:
			}
			continue
		}

		// this caller owns the load now
		s.state = stateLoading
		ch := make(chan struct{})
		s.inflight = ch
		prior := len(s.entries)
		s.mu.Unlock()

		entries, err := s.catalog.ListEntries(ctx)
		if err != nil && prior == 0 && s.fallback != nil {
			logger.Warnf("Load catalog failed, using pre-scanned list: %s", err)
			if scanned, scanErr := s.fallback.ScannedEntries(ctx); scanErr == nil && len(scanned) != 0 {
				entries, err = scanned, nil
			}
		}

		s.mu.Lock()
		if err != nil {
			if len(s.entries) != 0 {
				// keep the existing snapshot untouched
				s.state = stateLoaded
				out := s.entries
				close(ch)
				s.mu.Unlock()
				return out, err
			}
			s.state = stateNotLoaded
			close(ch)
			s.mu.Unlock()
			return nil, err
		}

		s.entries = entries
		s.state = stateLoaded
		close(ch)
		s.mu.Unlock()
		return entries, nil
	}
}

// Invalidate drops the latch so the next Load re-fetches the catalog. The
// current snapshot stays available as a fallback until then
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateLoaded {
		s.state = stateNotLoaded
	}
}
