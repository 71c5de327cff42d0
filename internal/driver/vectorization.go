package driver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RacoonMediaServer/rms-annotator/internal/lock"
	"github.com/RacoonMediaServer/rms-annotator/internal/model"
	"github.com/RacoonMediaServer/rms-annotator/internal/poll"
	"github.com/RacoonMediaServer/rms-annotator/internal/processor"
	"github.com/RacoonMediaServer/rms-annotator/internal/resolver"
	"github.com/google/uuid"
	micro "go-micro.dev/v4"
	"go-micro.dev/v4/logger"
)

// VectorizationSettings holds all dependencies of the vectorization driver
type VectorizationSettings struct {
	Processor    Processor
	Providers    Providers
	Snapshot     Snapshot
	Selection    Selection
	Poller       Poller
	Guard        *lock.Guard
	PollInterval time.Duration
	Publisher    micro.Event
}

// VectorizationDriver submits the whole selection as one batch request and
// follows it with a single poll session. There is no local unit loop to
// break: cancellation is a remote request only, the session ends on the
// next observation of a stopped job
type VectorizationDriver struct {
	proc      Processor
	providers Providers
	snapshot  Snapshot
	selection Selection
	poller    Poller
	guard     *lock.Guard
	interval  time.Duration
	pub       micro.Event

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	state       State
	lastOutcome State
	status      model.JobStatus
	cancelled   bool
	runID       string
}

func NewVectorizationDriver(settings VectorizationSettings) *VectorizationDriver {
	d := &VectorizationDriver{
		proc:      settings.Processor,
		providers: settings.Providers,
		snapshot:  settings.Snapshot,
		selection: settings.Selection,
		poller:    settings.Poller,
		guard:     settings.Guard,
		interval:  settings.PollInterval,
		pub:       settings.Publisher,
	}
	if d.interval <= 0 {
		d.interval = poll.DefaultInterval
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	return d
}

// Start groups the selection into whole entries and explicit episode
// descriptors and submits them as exactly one batch. A rejected submission
// is surfaced directly: the run is considered never started and the
// selection stays intact
func (d *VectorizationDriver) Start(ctx context.Context) error {
	targets := d.selection.Items()
	if len(targets) == 0 {
		return ErrEmptySelection
	}

	providers, err := d.providers.GetProviderSettings(ctx)
	if err != nil {
		return fmt.Errorf("load provider settings failed: %w", err)
	}
	if providers.EmbeddingProvider == "" {
		return ErrNoProvider
	}

	entryIDs, episodes := resolver.Group(targets)
	if len(entryIDs) == 0 && len(episodes) == 0 {
		return ErrNothingToProcess
	}

	release, ok := d.guard.Acquire(lock.KindVectorize)
	if !ok {
		return ErrJobActive
	}

	req := processor.VectorizationRequest{
		EntryIDs: entryIDs,
		Episodes: episodes,
		Provider: providers.EmbeddingProvider,
	}
	if err = d.proc.SubmitVectorization(ctx, &req); err != nil {
		release()
		return fmt.Errorf("submit vectorization batch failed: %w", err)
	}

	d.mu.Lock()
	d.state = StateRunning
	d.lastOutcome = StateIdle
	d.runID = uuid.New().String()
	d.status = model.JobStatus{Running: true, Total: len(targets)}
	d.cancelled = false
	d.mu.Unlock()

	logger.Infof("Vectorization run %s started: %d entries, %d episodes, provider '%s'",
		d.runID, len(entryIDs), len(episodes), providers.EmbeddingProvider)
	publishJobEvent(ctx, d.pub, JobEvent{
		Kind:    string(lock.KindVectorize),
		RunID:   d.runID,
		Outcome: StateRunning.String(),
	})

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer release()
		d.follow(len(targets))
	}()

	return nil
}

// Cancel asks the service to abort the active batch. The poll session is
// not interrupted locally: it terminates on its own once the service
// reports the job stopped
func (d *VectorizationDriver) Cancel(ctx context.Context) error {
	d.mu.Lock()
	if d.state != StateRunning {
		d.mu.Unlock()
		return ErrNotRunning
	}
	d.cancelled = true
	d.mu.Unlock()

	logger.Info("Vectorization run cancellation requested")

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.proc.CancelVectorization(d.ctx); err != nil {
			logger.Warnf("Cancel vectorization job failed: %s", err)
		}
	}()

	return nil
}

// Status returns the current driver bookkeeping
func (d *VectorizationDriver) Status() VectorizationStatus {
	d.mu.Lock()
	defer d.mu.Unlock()

	return VectorizationStatus{
		State:       d.state,
		LastOutcome: d.lastOutcome,
		Job:         d.status,
		RunID:       d.runID,
	}
}

// Close stops the driver and waits for the run goroutines
func (d *VectorizationDriver) Close() {
	d.cancel()
	d.wg.Wait()
}

func (d *VectorizationDriver) follow(selectionSize int) {
	log := logger.Fields(map[string]interface{}{"op": "vectorize", "run": d.runID})

	err := d.poller.Run(d.ctx, string(lock.KindVectorize), d.interval, d.proc.VectorizationStatus, func(status *model.JobStatus) {
		mirrored := *status
		// prefer the service's own batch position; otherwise the
		// denominator is the original selection size
		if mirrored.Queue != nil {
			mirrored.Progress = mirrored.Queue.Current
			mirrored.Total = mirrored.Queue.Total
		} else if mirrored.Total == 0 {
			mirrored.Total = selectionSize
		}
		d.mu.Lock()
		d.status = mirrored
		d.mu.Unlock()
	})
	if err != nil {
		log.Logf(logger.WarnLevel, "Poll session interrupted: %s", err)
	}

	d.mu.Lock()
	outcome := StateCompleted
	if d.cancelled {
		outcome = StateCancelled
	}
	d.status.Running = false
	d.state = StateIdle
	d.lastOutcome = outcome
	runID := d.runID
	d.mu.Unlock()

	if _, err := d.snapshot.Load(d.ctx, true); err != nil {
		log.Logf(logger.WarnLevel, "Refresh library snapshot failed: %s", err)
	}
	d.selection.Clear()

	log.Logf(logger.InfoLevel, "Run finished: %s", outcome)
	publishJobEvent(d.ctx, d.pub, JobEvent{
		Kind:    string(lock.KindVectorize),
		RunID:   runID,
		Outcome: outcome.String(),
	})
}
