package driver

import (
	"context"
	"time"

	"github.com/RacoonMediaServer/rms-annotator/internal/model"
	"github.com/RacoonMediaServer/rms-annotator/internal/poll"
	"github.com/RacoonMediaServer/rms-annotator/internal/processor"
)

// Processor is the external media processing service
type Processor interface {
	SubmitAnnotation(ctx context.Context, req *processor.AnnotationRequest) error
	AnnotationStatus(ctx context.Context) (*model.JobStatus, error)
	CancelAnnotation(ctx context.Context) error

	SubmitVectorization(ctx context.Context, req *processor.VectorizationRequest) error
	VectorizationStatus(ctx context.Context) (*model.JobStatus, error)
	CancelVectorization(ctx context.Context) error
}

// Providers is the read-only source of the active provider configuration
type Providers interface {
	GetProviderSettings(ctx context.Context) (*model.ProviderSettings, error)
}

// Snapshot serves the library catalog snapshot
type Snapshot interface {
	Load(ctx context.Context, force bool) ([]*model.LibraryEntry, error)
}

// Selection is the working set of targets for the next run
type Selection interface {
	Items() []model.TargetID
	Clear()
}

// Poller drives one status polling session per owner
type Poller interface {
	Run(ctx context.Context, owner string, interval time.Duration, fetch poll.Fetch, observe poll.Observe) error
}
