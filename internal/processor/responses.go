package processor

import (
	"fmt"

	"github.com/RacoonMediaServer/rms-annotator/internal/model"
	"github.com/go-openapi/runtime"
)

// APIError is a non-success response of the processing service
type APIError struct {
	Operation string
	Code      int
	Message   string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s rejected with code %d", e.Operation, e.Code)
	}
	return fmt.Sprintf("%s rejected with code %d: %s", e.Operation, e.Code, e.Message)
}

// StatusPayload is the wire form of the service job status
type StatusPayload struct {
	Running       bool                  `json:"running"`
	Progress      int                   `json:"progress"`
	Total         int                   `json:"total"`
	CurrentLabel  string                `json:"current_label"`
	Error         string                `json:"error,omitempty"`
	QueueProgress *queueProgressPayload `json:"queue_progress,omitempty"`
}

type queueProgressPayload struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// JobStatus converts the wire status to the model representation
func (p *StatusPayload) JobStatus() *model.JobStatus {
	status := &model.JobStatus{
		Running:      p.Running,
		Progress:     p.Progress,
		Total:        p.Total,
		CurrentLabel: p.CurrentLabel,
		Error:        p.Error,
	}
	if p.QueueProgress != nil {
		status.Queue = &model.QueueProgress{
			Current: p.QueueProgress.Current,
			Total:   p.QueueProgress.Total,
		}
	}
	return status
}

type errorPayload struct {
	Error string `json:"error"`
}

// acceptReader treats any 2xx response as an accepted submission
type acceptReader struct {
	operation string
}

func (r *acceptReader) ReadResponse(resp runtime.ClientResponse, consumer runtime.Consumer) (interface{}, error) {
	if resp.Code() < 200 || resp.Code() >= 300 {
		return nil, readError(r.operation, resp, consumer)
	}
	return nil, nil
}

// statusReader decodes the job status payload
type statusReader struct {
	operation string
}

func (r *statusReader) ReadResponse(resp runtime.ClientResponse, consumer runtime.Consumer) (interface{}, error) {
	if resp.Code() < 200 || resp.Code() >= 300 {
		return nil, readError(r.operation, resp, consumer)
	}

	payload := StatusPayload{}
	if err := consumer.Consume(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("decode %s response failed: %w", r.operation, err)
	}
	return &payload, nil
}

func readError(operation string, resp runtime.ClientResponse, consumer runtime.Consumer) error {
	apiErr := &APIError{Operation: operation, Code: resp.Code(), Message: resp.Message()}

	payload := errorPayload{}
	if err := consumer.Consume(resp.Body(), &payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	}
	return apiErr
}
