package service

import (
	"github.com/RacoonMediaServer/rms-annotator/internal/driver"
	"github.com/RacoonMediaServer/rms-annotator/internal/model"
)

// EpisodeView is an episode row of a library entry
type EpisodeView struct {
	Number         uint   `json:"number"`
	HasSubtitles   bool   `json:"has_subtitles"`
	Annotated      bool   `json:"annotated"`
	Vectorized     bool   `json:"vectorized"`
	AnnotationPath string `json:"annotation_path,omitempty"`
}

// EntryView is a library entry row as served to clients
type EntryView struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Kind            string        `json:"kind"`
	ImportStatus    string        `json:"import_status"`
	AnnotateStatus  string        `json:"annotate_status"`
	VectorizeStatus string        `json:"vectorize_status"`
	VectorCount     int           `json:"vector_count,omitempty"`
	Episodes        []EpisodeView `json:"episodes,omitempty"`
	Selected        bool          `json:"selected"`
}

type GetEntriesRequest struct {
	ForceRefresh bool `json:"force_refresh"`
}

type GetEntriesResponse struct {
	Entries []EntryView `json:"entries"`
}

type SearchRequest struct {
	Query string `json:"query"`
}

type SearchResponse struct {
	Entries []EntryView `json:"entries"`
}

// TargetRequest addresses a whole entry or a single episode, the episode
// form is "{entryID}_ep{no}"
type TargetRequest struct {
	Target string `json:"target"`
}

type SelectionResponse struct {
	Targets []string `json:"targets"`
}

type SelectAllPendingResponse struct {
	Added int `json:"added"`
}

type UpdateEntryRequest struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	AnnotateStatus  string `json:"annotate_status,omitempty"`
	VectorizeStatus string `json:"vectorize_status,omitempty"`
}

type DeleteEntryRequest struct {
	ID string `json:"id"`
}

type ProviderSettingsView struct {
	ModelProvider     string `json:"model_provider"`
	EmbeddingProvider string `json:"embedding_provider"`
}

// JobStatusView is the client-facing projection of a remote job report
type JobStatusView struct {
	Running      bool   `json:"running"`
	Progress     int    `json:"progress"`
	Total        int    `json:"total"`
	CurrentLabel string `json:"current_label,omitempty"`
	Error        string `json:"error,omitempty"`
}

type QueueStatusView struct {
	CurrentIndex int    `json:"current_index"`
	TotalUnits   int    `json:"total_units"`
	CurrentLabel string `json:"current_label,omitempty"`
}

type AnnotationStatusResponse struct {
	State       string          `json:"state"`
	LastOutcome string          `json:"last_outcome,omitempty"`
	Processed   int             `json:"processed"`
	RunID       string          `json:"run_id,omitempty"`
	Queue       QueueStatusView `json:"queue"`
	Job         JobStatusView   `json:"job"`
}

type VectorizationStatusResponse struct {
	State       string        `json:"state"`
	LastOutcome string        `json:"last_outcome,omitempty"`
	RunID       string        `json:"run_id,omitempty"`
	Job         JobStatusView `json:"job"`
}

func makeJobStatusView(status model.JobStatus) JobStatusView {
	return JobStatusView{
		Running:      status.Running,
		Progress:     status.Progress,
		Total:        status.Total,
		CurrentLabel: status.CurrentLabel,
		Error:        status.Error,
	}
}

func makeEntryView(entry *model.LibraryEntry, selected func(model.TargetID) bool) EntryView {
	view := EntryView{
		ID:              entry.ID,
		Title:           entry.Title,
		Kind:            string(entry.Kind),
		ImportStatus:    string(entry.ImportStatus),
		AnnotateStatus:  string(entry.AnnotateStatus),
		VectorizeStatus: string(entry.VectorizeStatus),
		VectorCount:     entry.VectorCount,
		Selected:        selected(model.EntryTarget(entry.ID)),
	}
	for _, ep := range entry.Episodes {
		view.Episodes = append(view.Episodes, EpisodeView{
			Number:         ep.Number,
			HasSubtitles:   ep.SubtitlePath != "",
			Annotated:      ep.AnnotationPath != "",
			Vectorized:     ep.VectorPath != "",
			AnnotationPath: ep.AnnotationPath,
		})
	}
	return view
}

func outcomeString(outcome driver.State) string {
	if outcome == driver.StateIdle {
		return ""
	}
	return outcome.String()
}
