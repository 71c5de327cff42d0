package service

import (
	"context"

	"github.com/RacoonMediaServer/rms-annotator/internal/driver"
	"github.com/RacoonMediaServer/rms-annotator/internal/model"
)

// Database is a db interface
type Database interface {
	GetEntry(ctx context.Context, id string) (*model.LibraryEntry, error)
	UpdateEntry(ctx context.Context, entry *model.LibraryEntry) error
	DeleteEntry(ctx context.Context, id string) error
	GetProviderSettings(ctx context.Context) (*model.ProviderSettings, error)
	SetProviderSettings(ctx context.Context, settings model.ProviderSettings) error
}

// Snapshot serves the cached library listing
type Snapshot interface {
	Load(ctx context.Context, force bool) ([]*model.LibraryEntry, error)
	Invalidate()
}

// Selection is the shared staging area of both jobs
type Selection interface {
	Add(target model.TargetID) bool
	Remove(target model.TargetID)
	AddAllPending(entries []*model.LibraryEntry) int
	Items() []model.TargetID
	Clear()
	Len() int
}

// AnnotationDriver runs annotation jobs
type AnnotationDriver interface {
	Start(ctx context.Context) error
	Cancel(ctx context.Context) error
	Status() driver.AnnotationStatus
}

// VectorizationDriver runs vectorization jobs
type VectorizationDriver interface {
	Start(ctx context.Context) error
	Cancel(ctx context.Context) error
	Status() driver.VectorizationStatus
}
