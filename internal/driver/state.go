package driver

import (
	"errors"

	"github.com/RacoonMediaServer/rms-annotator/internal/model"
)

// State of a job driver
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

var (
	// ErrEmptySelection means a run was requested with nothing selected
	ErrEmptySelection = errors.New("selection is empty")

	// ErrNoProvider means the required provider is not configured
	ErrNoProvider = errors.New("provider is not configured")

	// ErrNothingToProcess means the selection resolved to zero eligible units
	ErrNothingToProcess = errors.New("nothing to process")

	// ErrJobActive means a job of this kind is already driven
	ErrJobActive = errors.New("a job of this kind is already active")

	// ErrNotRunning means there is no active run to cancel
	ErrNotRunning = errors.New("no active job")
)

// AnnotationStatus is a snapshot of annotation driver bookkeeping
type AnnotationStatus struct {
	State       State
	LastOutcome State
	Processed   int
	Queue       model.QueueStatus
	Job         model.JobStatus
	RunID       string
}

// VectorizationStatus is a snapshot of vectorization driver bookkeeping
type VectorizationStatus struct {
	State       State
	LastOutcome State
	Job         model.JobStatus
	RunID       string
}

// EventsTopic is where job lifecycle events are published
const EventsTopic = "rms-annotator.events"

// JobEvent notifies subscribers about a finished run
type JobEvent struct {
	Kind      string
	RunID     string
	Outcome   string
	Processed int
}
