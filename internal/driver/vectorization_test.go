package driver

import (
	"context"
	"testing"
	"time"

	"github.com/RacoonMediaServer/rms-annotator/internal/lock"
	"github.com/RacoonMediaServer/rms-annotator/internal/model"
	"github.com/RacoonMediaServer/rms-annotator/internal/poll"
	"github.com/RacoonMediaServer/rms-annotator/internal/processor"
	"github.com/RacoonMediaServer/rms-annotator/internal/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vectorizationFixture struct {
	driver    *VectorizationDriver
	processor *fakeProcessor
	snapshot  *fakeSnapshot
	selection *selection.Set
}

func newVectorizationFixture(proc *fakeProcessor, targets ...model.TargetID) vectorizationFixture {
	snap := &fakeSnapshot{entries: annotationLibrary()}
	sel := selection.New()
	for _, t := range targets {
		sel.Add(t)
	}

	d := NewVectorizationDriver(VectorizationSettings{
		Processor:    proc,
		Providers:    &fakeProviders{settings: model.ProviderSettings{EmbeddingProvider: "bge"}},
		Snapshot:     snap,
		Selection:    sel,
		Poller:       poll.New(),
		Guard:        lock.NewGuard(),
		PollInterval: testInterval,
	})
	return vectorizationFixture{driver: d, processor: proc, snapshot: snap, selection: sel}
}

func waitVectorizationDone(t *testing.T, d *VectorizationDriver) VectorizationStatus {
	t.Helper()
	require.Eventually(t, func() bool {
		s := d.Status()
		return s.State == StateIdle && s.LastOutcome != StateIdle
	}, 5*time.Second, time.Millisecond)
	return d.Status()
}

func TestVectorizationRunCompletes(t *testing.T) {
	proc := &fakeProcessor{script: []model.JobStatus{
		{Running: true, Queue: &model.QueueProgress{Current: 1, Total: 3}},
		{Running: false, Queue: &model.QueueProgress{Current: 3, Total: 3}},
	}}
	fx := newVectorizationFixture(proc,
		model.EntryTarget("m1"),
		model.EpisodeTarget("s1", 2),
		model.EntryTarget("s1"),
	)
	defer fx.driver.Close()

	require.NoError(t, fx.driver.Start(context.Background()))
	status := waitVectorizationDone(t, fx.driver)

	assert.Equal(t, StateCompleted, status.LastOutcome)
	assert.EqualValues(t, 3, status.Job.Progress)
	assert.EqualValues(t, 3, status.Job.Total)

	// the whole selection goes out as exactly one batch
	require.Len(t, proc.vecSubmits, 1)
	req := proc.vecSubmits[0]
	assert.Equal(t, []string{"m1", "s1"}, req.EntryIDs)
	assert.Equal(t, []model.EpisodeRef{{EntryID: "s1", Episode: 2}}, req.Episodes)
	assert.Equal(t, "bge", req.Provider)

	assert.Equal(t, 1, fx.snapshot.forcedLoads())
	assert.Zero(t, fx.selection.Len())
}

func TestVectorizationProgressFallback(t *testing.T) {
	// the service reports no batch position at all
	proc := &fakeProcessor{script: []model.JobStatus{
		{Running: true},
		{Running: false},
	}}
	fx := newVectorizationFixture(proc, model.EntryTarget("m1"), model.EntryTarget("m2"))
	defer fx.driver.Close()

	require.NoError(t, fx.driver.Start(context.Background()))
	status := waitVectorizationDone(t, fx.driver)

	assert.Equal(t, StateCompleted, status.LastOutcome)
	assert.EqualValues(t, 2, status.Job.Total)
}

func TestVectorizationCancel(t *testing.T) {
	proc := &fakeProcessor{script: []model.JobStatus{{Running: true}}}
	fx := newVectorizationFixture(proc, model.EntryTarget("m1"))
	defer fx.driver.Close()

	require.NoError(t, fx.driver.Start(context.Background()))
	require.NoError(t, fx.driver.Cancel(context.Background()))

	require.Eventually(t, func() bool {
		proc.mu.Lock()
		defer proc.mu.Unlock()
		return proc.vecCancels == 1
	}, time.Second, time.Millisecond)

	proc.setScript([]model.JobStatus{{Running: false}})
	status := waitVectorizationDone(t, fx.driver)

	assert.Equal(t, StateCancelled, status.LastOutcome)
	assert.Zero(t, fx.selection.Len())
}

func TestVectorizationSubmitRejected(t *testing.T) {
	proc := &fakeProcessor{vecSubmitErr: &processor.APIError{Operation: "SubmitVectorization", Code: 409}}
	fx := newVectorizationFixture(proc, model.EntryTarget("m1"))
	defer fx.driver.Close()

	err := fx.driver.Start(context.Background())
	require.Error(t, err)

	// the run never started: selection intact, slot free, no refresh
	assert.Equal(t, StateIdle, fx.driver.Status().State)
	assert.Equal(t, 1, fx.selection.Len())
	assert.Zero(t, fx.snapshot.forcedLoads())

	proc.mu.Lock()
	proc.vecSubmitErr = nil
	proc.mu.Unlock()

	require.NoError(t, fx.driver.Start(context.Background()))
	waitVectorizationDone(t, fx.driver)
}

func TestVectorizationValidation(t *testing.T) {
	t.Run("empty selection", func(t *testing.T) {
		fx := newVectorizationFixture(&fakeProcessor{})
		defer fx.driver.Close()

		assert.ErrorIs(t, fx.driver.Start(context.Background()), ErrEmptySelection)
	})

	t.Run("cancel when idle", func(t *testing.T) {
		fx := newVectorizationFixture(&fakeProcessor{}, model.EntryTarget("m1"))
		defer fx.driver.Close()

		assert.ErrorIs(t, fx.driver.Cancel(context.Background()), ErrNotRunning)
	})
}
