package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RacoonMediaServer/rms-annotator/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInterval = 5 * time.Millisecond

func TestRunTerminatesOnFirstFetch(t *testing.T) {
	p := New()

	var fetches int32
	fetch := func(ctx context.Context) (*model.JobStatus, error) {
		atomic.AddInt32(&fetches, 1)
		return &model.JobStatus{Running: false}, nil
	}

	var observed int32
	err := p.Run(context.Background(), "annotate", testInterval, fetch, func(status *model.JobStatus) {
		atomic.AddInt32(&observed, 1)
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&fetches))
	assert.EqualValues(t, 1, atomic.LoadInt32(&observed))

	// no further ticks after the session resolved
	time.Sleep(4 * testInterval)
	assert.EqualValues(t, 1, atomic.LoadInt32(&fetches))
}

func TestRunSwallowsFetchErrors(t *testing.T) {
	p := New()

	var fetches int32
	fetch := func(ctx context.Context) (*model.JobStatus, error) {
		n := atomic.AddInt32(&fetches, 1)
		if n < 3 {
			return nil, errors.New("transient")
		}
		return &model.JobStatus{Running: false}, nil
	}

	err := p.Run(context.Background(), "annotate", testInterval, fetch, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&fetches))
}

func TestRunUntilNotRunning(t *testing.T) {
	p := New()

	statuses := []model.JobStatus{
		{Running: true, Progress: 3, Total: 10},
		{Running: true, Progress: 10, Total: 10},
		{Running: false},
	}

	var fetches int32
	fetch := func(ctx context.Context) (*model.JobStatus, error) {
		n := atomic.AddInt32(&fetches, 1)
		return &statuses[n-1], nil
	}

	var last model.JobStatus
	err := p.Run(context.Background(), "annotate", testInterval, fetch, func(status *model.JobStatus) {
		last = *status
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&fetches))
	assert.False(t, last.Running)
}

func TestRunReplacesOwnerSession(t *testing.T) {
	p := New()

	first := make(chan error, 1)
	go func() {
		first <- p.Run(context.Background(), "annotate", testInterval, func(ctx context.Context) (*model.JobStatus, error) {
			return &model.JobStatus{Running: true}, nil
		}, nil)
	}()

	// wait until the first session registered
	require.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return len(p.sessions) == 1
	}, time.Second, time.Millisecond)

	err := p.Run(context.Background(), "annotate", testInterval, func(ctx context.Context) (*model.JobStatus, error) {
		return &model.JobStatus{Running: false}, nil
	}, nil)
	require.NoError(t, err)

	select {
	case err := <-first:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("replaced session did not terminate")
	}
}

func TestStopCancelsSession(t *testing.T) {
	p := New()

	done := make(chan error, 1)
	go func() {
		done <- p.Run(context.Background(), "vectorize", testInterval, func(ctx context.Context) (*model.JobStatus, error) {
			return &model.JobStatus{Running: true}, nil
		}, nil)
	}()

	require.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return len(p.sessions) == 1
	}, time.Second, time.Millisecond)

	p.Stop("vectorize")

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("session did not stop")
	}

	p.mu.Lock()
	assert.Empty(t, p.sessions)
	p.mu.Unlock()
}

func TestIndependentOwners(t *testing.T) {
	p := New()

	blocked := make(chan error, 1)
	go func() {
		blocked <- p.Run(context.Background(), "annotate", testInterval, func(ctx context.Context) (*model.JobStatus, error) {
			return &model.JobStatus{Running: true}, nil
		}, nil)
	}()

	require.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return len(p.sessions) == 1
	}, time.Second, time.Millisecond)

	// another owner's session does not disturb the first one
	err := p.Run(context.Background(), "vectorize", testInterval, func(ctx context.Context) (*model.JobStatus, error) {
		return &model.JobStatus{Running: false}, nil
	}, nil)
	require.NoError(t, err)

	select {
	case <-blocked:
		t.Fatal("foreign owner session was cancelled")
	case <-time.After(4 * testInterval):
	}

	p.Close()
	assert.ErrorIs(t, <-blocked, context.Canceled)
}
