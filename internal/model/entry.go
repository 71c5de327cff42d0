package model

// MediaKind tells whether an entry is a single movie or an episodic series
type MediaKind string

const (
	MediaKindMovie  MediaKind = "movie"
	MediaKindSeries MediaKind = "series"
)

// Status is a processing stage state of a library entry
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusError   Status = "error"
	StatusPartial Status = "partial"
)

// Episode is one episode of a series entry. It is owned by its parent and
// never referenced outside of it except via a compound target id
type Episode struct {
	// Number of episode, unique within the parent entry
	Number uint

	// SubtitlePath is a path to the episode subtitle file
	SubtitlePath string

	// AnnotationPath is a path to the produced semantic annotation
	AnnotationPath string

	// VectorPath is a path to the produced embedding vectors
	VectorPath string
}

// LibraryEntry represents one title of the media library
type LibraryEntry struct {
	// Global ID of the movie or series
	ID string `bson:"_id,omitempty"`

	// Title is the display title
	Title string

	// Kind of the entry
	Kind MediaKind

	// Episodes of a series entry
	Episodes []Episode

	// SubtitlePath is a path to the movie subtitle file
	SubtitlePath string

	// AnnotationPath is a path to the produced semantic annotation
	AnnotationPath string

	// VectorPath is a path to the produced embedding vectors
	VectorPath string

	// VectorCount is an amount of stored vectors
	VectorCount int

	// Stage statuses
	ImportStatus    Status
	AnnotateStatus  Status
	VectorizeStatus Status
}

// IsSeries reports whether the entry must be expanded to episodes
func (e *LibraryEntry) IsSeries() bool {
	return e.Kind == MediaKindSeries && len(e.Episodes) != 0
}

// FindEpisode returns the episode with the given number
func (e *LibraryEntry) FindEpisode(no uint) *Episode {
	for i := range e.Episodes {
		if e.Episodes[i].Number == no {
			return &e.Episodes[i]
		}
	}
	return nil
}

// HasSubtitles reports whether at least one subtitle file is known for the entry
func (e *LibraryEntry) HasSubtitles() bool {
	if e.SubtitlePath != "" {
		return true
	}
	for i := range e.Episodes {
		if e.Episodes[i].SubtitlePath != "" {
			return true
		}
	}
	return false
}
