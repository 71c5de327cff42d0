package selection

import (
	"sync"

	"github.com/RacoonMediaServer/rms-annotator/internal/model"
)

// Set is the working set of targets for the next job invocation. Iteration
// order is insertion order; it is cleared unconditionally at the end of
// every job run
type Set struct {
	mu    sync.Mutex
	order []model.TargetID
	index map[string]struct{}
}

func New() *Set {
	return &Set{index: map[string]struct{}{}}
}

// Add inserts a target. A target already present is ignored
func (s *Set) Add(t model.TargetID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := t.String()
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = struct{}{}
	s.order = append(s.order, t)
	return true
}

// Remove drops a target from the set
func (s *Set) Remove(t model.TargetID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := t.String()
	if _, ok := s.index[key]; !ok {
		return
	}
	delete(s.index, key)
	for i := range s.order {
		if s.order[i].String() == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// AddAllPending selects every entry whose annotation is not done yet and
// which has at least one subtitle to work on
func (s *Set) AddAllPending(entries []*model.LibraryEntry) int {
	added := 0
	for _, entry := range entries {
		if entry.AnnotateStatus == model.StatusDone {
			continue
		}
		if !entry.HasSubtitles() {
			continue
		}
		if s.Add(model.EntryTarget(entry.ID)) {
			added++
		}
	}
	return added
}

// Items returns the selected targets in insertion order
func (s *Set) Items() []model.TargetID {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.TargetID, len(s.order))
	copy(out, s.order)
	return out
}

// Clear resets the set
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = nil
	s.index = map[string]struct{}{}
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.order)
}
