package model

// QueueProgress is the position inside a remote batch queue
type QueueProgress struct {
	Current int
	Total   int
}

// JobStatus mirrors the processing service report about the currently
// active job
type JobStatus struct {
	// Running tells whether a job is active on the service
	Running bool

	// Progress/Total describe the current unit progress
	Progress int
	Total    int

	// CurrentLabel designates what the service is working on
	CurrentLabel string

	// Error is the last error reported by the service
	Error string

	// Queue is the service-side batch position, when reported
	Queue *QueueProgress
}

// QueueStatus tracks the position across the local sequence of work units.
// The service itself only ever reports progress of the unit in flight
type QueueStatus struct {
	CurrentIndex int
	TotalUnits   int
	CurrentLabel string
}

// ProviderSettings is the active provider configuration. It is owned by the
// settings screen and only ever read here
type ProviderSettings struct {
	// ModelProvider is the provider id used for semantic annotation
	ModelProvider string

	// EmbeddingProvider is the provider id used for vectorization
	EmbeddingProvider string
}

// MetaInfo holds service bookkeeping data
type MetaInfo struct {
	Version string
}
