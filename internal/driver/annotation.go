package driver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RacoonMediaServer/rms-annotator/internal/config"
	"github.com/RacoonMediaServer/rms-annotator/internal/lock"
	"github.com/RacoonMediaServer/rms-annotator/internal/model"
	"github.com/RacoonMediaServer/rms-annotator/internal/poll"
	"github.com/RacoonMediaServer/rms-annotator/internal/processor"
	"github.com/RacoonMediaServer/rms-annotator/internal/resolver"
	"github.com/google/uuid"
	micro "go-micro.dev/v4"
	"go-micro.dev/v4/logger"
)

// AnnotationSettings holds all dependencies of the annotation driver
type AnnotationSettings struct {
	Processor    Processor
	Providers    Providers
	Snapshot     Snapshot
	Selection    Selection
	Poller       Poller
	Guard        *lock.Guard
	Tunables     config.Tunables
	PollInterval time.Duration
	Publisher    micro.Event
}

// AnnotationDriver sequentially submits resolved work units to the
// annotation endpoint, one at a time. Unit i+1 is never submitted until
// unit i's poll session has reached a terminal state: this serialization is
// what protects the service's single job slot
type AnnotationDriver struct {
	proc      Processor
	providers Providers
	snapshot  Snapshot
	selection Selection
	poller    Poller
	guard     *lock.Guard
	tunables  config.Tunables
	interval  time.Duration
	pub       micro.Event

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	state       State
	lastOutcome State
	processed   int
	queue       model.QueueStatus
	status      model.JobStatus
	token       *Token
	runID       string
}

func NewAnnotationDriver(settings AnnotationSettings) *AnnotationDriver {
	d := &AnnotationDriver{
		proc:      settings.Processor,
		providers: settings.Providers,
		snapshot:  settings.Snapshot,
		selection: settings.Selection,
		poller:    settings.Poller,
		guard:     settings.Guard,
		tunables:  settings.Tunables,
		interval:  settings.PollInterval,
		pub:       settings.Publisher,
	}
	if d.interval <= 0 {
		d.interval = poll.DefaultInterval
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	return d
}

// Initialize adopts an annotation job which stayed active on the processing
// service across a restart of this one. The adopted job is polled to
// completion and finalized as usual; queue bookkeeping of the interrupted
// run is not recoverable and stays at its last known value
func (d *AnnotationDriver) Initialize(ctx context.Context) error {
	status, err := d.proc.AnnotationStatus(ctx)
	if err != nil {
		return fmt.Errorf("query annotation status failed: %w", err)
	}
	if status == nil || !status.Running {
		return nil
	}

	release, ok := d.guard.Acquire(lock.KindAnnotate)
	if !ok {
		return nil
	}

	d.mu.Lock()
	d.state = StateRunning
	d.runID = uuid.New().String()
	d.token = &Token{}
	d.status = *status
	d.mu.Unlock()

	logger.Infof("Adopted a running annotation job: '%s'", status.CurrentLabel)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer release()

		log := logger.Fields(map[string]interface{}{"op": "annotate", "run": d.runID})
		err := d.poller.Run(d.ctx, string(lock.KindAnnotate), d.interval, d.proc.AnnotationStatus, func(status *model.JobStatus) {
			d.mu.Lock()
			d.status = *status
			d.mu.Unlock()
		})
		if err != nil {
			log.Logf(logger.WarnLevel, "Poll session interrupted: %s", err)
		}
		d.finalize(log, StateCompleted, 0)
	}()

	return nil
}

// Start validates the selection, resolves it to work units and launches the
// run. It returns once the run is accepted; progress is observed via Status
func (d *AnnotationDriver) Start(ctx context.Context) error {
	targets := d.selection.Items()
	if len(targets) == 0 {
		return ErrEmptySelection
	}

	providers, err := d.providers.GetProviderSettings(ctx)
	if err != nil {
		return fmt.Errorf("load provider settings failed: %w", err)
	}
	if providers.ModelProvider == "" {
		return ErrNoProvider
	}

	entries, err := d.snapshot.Load(ctx, false)
	if err != nil && len(entries) == 0 {
		return fmt.Errorf("load library snapshot failed: %w", err)
	}

	units := resolver.Resolve(targets, entries)
	if len(units) == 0 {
		return ErrNothingToProcess
	}

	release, ok := d.guard.Acquire(lock.KindAnnotate)
	if !ok {
		return ErrJobActive
	}

	token := &Token{}
	d.mu.Lock()
	d.state = StateRunning
	d.lastOutcome = StateIdle
	d.runID = uuid.New().String()
	d.token = token
	d.queue = model.QueueStatus{TotalUnits: len(units)}
	d.status = model.JobStatus{}
	d.processed = 0
	d.mu.Unlock()

	logger.Infof("Annotation run %s started: %d unit(s), provider '%s'", d.runID, len(units), providers.ModelProvider)
	publishJobEvent(ctx, d.pub, JobEvent{
		Kind:    string(lock.KindAnnotate),
		RunID:   d.runID,
		Outcome: StateRunning.String(),
	})

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer release()
		d.run(units, providers.ModelProvider, token)
	}()

	return nil
}

// Cancel requests a stop of the active run. The token prevents the next
// unit from starting; the in-flight unit is additionally asked to stop on
// the service side, best effort, and its poll session keeps going until the
// service reports it stopped
func (d *AnnotationDriver) Cancel(ctx context.Context) error {
	d.mu.Lock()
	if d.state != StateRunning {
		d.mu.Unlock()
		return ErrNotRunning
	}
	token := d.token
	d.mu.Unlock()

	token.Cancel()
	logger.Info("Annotation run cancellation requested")

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.proc.CancelAnnotation(d.ctx); err != nil {
			logger.Warnf("Cancel annotation job failed: %s", err)
		}
	}()

	return nil
}

// Status returns the current driver bookkeeping
func (d *AnnotationDriver) Status() AnnotationStatus {
	d.mu.Lock()
	defer d.mu.Unlock()

	return AnnotationStatus{
		State:       d.state,
		LastOutcome: d.lastOutcome,
		Processed:   d.processed,
		Queue:       d.queue,
		Job:         d.status,
		RunID:       d.runID,
	}
}

// Close stops the driver and waits for the run goroutines
func (d *AnnotationDriver) Close() {
	d.cancel()
	d.wg.Wait()
}

func (d *AnnotationDriver) run(units []model.WorkUnit, provider string, token *Token) {
	log := logger.Fields(map[string]interface{}{"op": "annotate", "run": d.runID})

	total := len(units)
	processed := 0
	cancelled := false

	for i, unit := range units {
		if token.Cancelled() {
			cancelled = true
			break
		}

		d.mu.Lock()
		d.queue.CurrentIndex = i
		d.queue.CurrentLabel = unit.Label
		d.mu.Unlock()

		d.processUnit(log, i, total, unit, provider)

		d.mu.Lock()
		d.queue.CurrentIndex = i + 1
		d.mu.Unlock()
		processed = i + 1
	}

	outcome := StateCompleted
	if cancelled {
		outcome = StateCancelled
	}
	d.finalize(log, outcome, processed)
}

func (d *AnnotationDriver) processUnit(log logger.Logger, i, total int, unit model.WorkUnit, provider string) {
	req := processor.AnnotationRequest{
		Unit:     unit,
		Provider: provider,
		Tunables: d.tunables,
	}
	if err := d.proc.SubmitAnnotation(d.ctx, &req); err != nil {
		// a failed unit does not abort the run; retries are driven by
		// the service itself via max_retries
		log.Logf(logger.ErrorLevel, "Submit '%s' failed: %s", unit.Label, err)
		return
	}

	prefix := fmt.Sprintf("[%d/%d] ", i+1, total)
	err := d.poller.Run(d.ctx, string(lock.KindAnnotate), d.interval, d.proc.AnnotationStatus, func(status *model.JobStatus) {
		mirrored := *status
		mirrored.CurrentLabel = prefix + mirrored.CurrentLabel
		d.mu.Lock()
		d.status = mirrored
		d.mu.Unlock()
	})
	if err != nil {
		log.Logf(logger.WarnLevel, "Poll session for '%s' interrupted: %s", unit.Label, err)
	}
}

func (d *AnnotationDriver) finalize(log logger.Logger, outcome State, processed int) {
	d.mu.Lock()
	d.status.Running = false
	d.state = StateIdle
	d.lastOutcome = outcome
	d.processed = processed
	runID := d.runID
	d.mu.Unlock()

	if _, err := d.snapshot.Load(d.ctx, true); err != nil {
		log.Logf(logger.WarnLevel, "Refresh library snapshot failed: %s", err)
	}
	d.selection.Clear()

	log.Logf(logger.InfoLevel, "Run finished: %s, %d unit(s) processed", outcome, processed)
	publishJobEvent(d.ctx, d.pub, JobEvent{
		Kind:      string(lock.KindAnnotate),
		RunID:     runID,
		Outcome:   outcome.String(),
		Processed: processed,
	})
}

func publishJobEvent(ctx context.Context, pub micro.Event, event JobEvent) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, &event); err != nil {
		logger.Warnf("Publish job event failed: %s", err)
	}
}
