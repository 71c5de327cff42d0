package poll

import (
	"context"
	"sync"
	"time"

	"github.com/RacoonMediaServer/rms-annotator/internal/model"
	"go-micro.dev/v4/logger"
)

// DefaultInterval is the poll period used against the processing service
const DefaultInterval = 2 * time.Second

// Fetch retrieves the current status of a remote job
type Fetch func(ctx context.Context) (*model.JobStatus, error)

// Observe is invoked with every status a session sees
type Observe func(status *model.JobStatus)

type session struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Poller repeatedly fetches a remote job status until the job stops
// running. It owns at most one outstanding session per owner: starting a new
// session cancels the previous one of the same owner
type Poller struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func New() *Poller {
	return &Poller{sessions: map[string]*session{}}
}

// Run polls fetch at the given interval until the observed status reports
// running == false. The first fetch happens immediately. It blocks the
// caller; the observer is invoked with every successfully fetched status.
// A failed fetch is logged and the session proceeds on schedule: there is
// no backoff and no tick limit
func (p *Poller) Run(ctx context.Context, owner string, interval time.Duration, fetch Fetch, observe Observe) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ctx, s := p.replace(ctx, owner)
	defer p.finish(owner, s)

	for {
		status, err := fetch(ctx)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warnf("Poll '%s' status failed: %s", owner, err)

		default:
			if observe != nil {
				observe(status)
			}
			if !status.Running {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// Stop cancels the outstanding session of the owner, if any
func (p *Poller) Stop(owner string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.sessions[owner]; ok {
		s.cancel()
	}
}

// Close cancels all outstanding sessions
func (p *Poller) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, s := range p.sessions {
		s.cancel()
	}
}

func (p *Poller) replace(ctx context.Context, owner string) (context.Context, *session) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if prev, ok := p.sessions[owner]; ok {
		prev.cancel()
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &session{cancel: cancel, done: make(chan struct{})}
	p.sessions[owner] = s
	return ctx, s
}

func (p *Poller) finish(owner string, s *session) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sessions[owner] == s {
		delete(p.sessions, owner)
	}
	s.cancel()
	close(s.done)
}
