package lock

import "sync"

// Kind is a processing job type. The service exposes exactly one active job
// slot per kind
type Kind string

const (
	KindAnnotate  Kind = "annotate"
	KindVectorize Kind = "vectorize"
)

// Guard serializes access to the single job slot of each kind. Unlike a
// plain mutex it never blocks: a taken slot is reported to the caller
type Guard struct {
	mu   sync.Mutex
	held map[Kind]bool
}

func NewGuard() *Guard {
	return &Guard{held: map[Kind]bool{}}
}

// Acquire takes the slot of the given kind. It returns a release function
// and true on success, or nil and false when the slot is already taken.
// The release function is idempotent
func (g *Guard) Acquire(kind Kind) (func(), bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.held[kind] {
		return nil, false
	}
	g.held[kind] = true

	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			g.held[kind] = false
		})
	}
	return release, true
}

// Held reports whether the slot of the given kind is taken
func (g *Guard) Held(kind Kind) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.held[kind]
}
