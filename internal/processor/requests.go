package processor

import (
	"github.com/RacoonMediaServer/rms-annotator/internal/config"
	"github.com/RacoonMediaServer/rms-annotator/internal/model"
)

// AnnotationRequest describes a submission of one work unit
type AnnotationRequest struct {
	Unit     model.WorkUnit
	Provider string
	Tunables config.Tunables
}

// VectorizationRequest describes a single batch submission of the whole
// selection: whole entries and explicit episode descriptors
type VectorizationRequest struct {
	EntryIDs []string
	Episodes []model.EpisodeRef
	Provider string
}

type workUnitPayload struct {
	TargetID     string `json:"target_id"`
	SubtitlePath string `json:"subtitle_path"`
	Label        string `json:"label"`
}

type annotationPayload struct {
	Unit               workUnitPayload `json:"unit"`
	Provider           string          `json:"provider"`
	BatchSize          int             `json:"batch_size"`
	ConcurrentRequests int             `json:"concurrent_requests"`
	MaxRetries         int             `json:"max_retries"`
	SaveInterval       int             `json:"save_interval"`
}

func newAnnotationPayload(req *AnnotationRequest) *annotationPayload {
	return &annotationPayload{
		Unit: workUnitPayload{
			TargetID:     req.Unit.TargetID,
			SubtitlePath: req.Unit.SubtitlePath,
			Label:        req.Unit.Label,
		},
		Provider:           req.Provider,
		BatchSize:          req.Tunables.BatchSize,
		ConcurrentRequests: req.Tunables.ConcurrentRequests,
		MaxRetries:         req.Tunables.MaxRetries,
		SaveInterval:       req.Tunables.SaveInterval,
	}
}

type episodePayload struct {
	EntryID string `json:"entry_id"`
	Episode uint   `json:"episode"`
}

type vectorizationPayload struct {
	EntryIDs []string         `json:"entry_ids"`
	Episodes []episodePayload `json:"episodes"`
	Provider string           `json:"provider"`
}

func newVectorizationPayload(req *VectorizationRequest) *vectorizationPayload {
	payload := &vectorizationPayload{
		EntryIDs: req.EntryIDs,
		Provider: req.Provider,
	}
	for _, ep := range req.Episodes {
		payload.Episodes = append(payload.Episodes, episodePayload{EntryID: ep.EntryID, Episode: ep.Episode})
	}
	return payload
}
