// Package processor implements a client to the media processing service.
// The service exposes a single active job slot per kind (annotate,
// vectorize) with a submit/status/cancel contract.
package processor

import (
	"context"
	"fmt"

	"github.com/RacoonMediaServer/rms-annotator/internal/config"
	"github.com/RacoonMediaServer/rms-annotator/internal/model"
	"github.com/go-openapi/runtime"
	httptransport "github.com/go-openapi/runtime/client"
	"github.com/go-openapi/strfmt"
)

type Client struct {
	tr      runtime.ClientTransport
	auth    runtime.ClientAuthInfoWriter
	schemes []string
}

// New creates a client to the processing service endpoint
func New(remote config.Remote, device string) *Client {
	host := remote.Host
	if remote.Port != 0 {
		host = fmt.Sprintf("%s:%d", remote.Host, remote.Port)
	}
	schemes := []string{remote.Scheme}
	return &Client{
		tr:      httptransport.New(host, remote.Path, schemes),
		auth:    httptransport.APIKeyAuth("X-Token", "header", device),
		schemes: schemes,
	}
}

// SubmitAnnotation asks the service to annotate one work unit
func (c *Client) SubmitAnnotation(ctx context.Context, req *AnnotationRequest) error {
	return c.submit(ctx, "SubmitAnnotation", "/jobs/annotate", newAnnotationPayload(req))
}

// SubmitVectorization asks the service to vectorize the whole batch at once
func (c *Client) SubmitVectorization(ctx context.Context, req *VectorizationRequest) error {
	return c.submit(ctx, "SubmitVectorization", "/jobs/vectorize", newVectorizationPayload(req))
}

// AnnotationStatus reports the currently active annotation job
func (c *Client) AnnotationStatus(ctx context.Context) (*model.JobStatus, error) {
	return c.status(ctx, "AnnotationStatus", "/jobs/annotate/status")
}

// VectorizationStatus reports the currently active vectorization job
func (c *Client) VectorizationStatus(ctx context.Context) (*model.JobStatus, error) {
	return c.status(ctx, "VectorizationStatus", "/jobs/vectorize/status")
}

// CancelAnnotation requests cooperative abort of the active annotation job.
// The server owns the actual stop timing
func (c *Client) CancelAnnotation(ctx context.Context) error {
	return c.submit(ctx, "CancelAnnotation", "/jobs/annotate/cancel", nil)
}

// CancelVectorization requests cooperative abort of the active vectorization job
func (c *Client) CancelVectorization(ctx context.Context) error {
	return c.submit(ctx, "CancelVectorization", "/jobs/vectorize/cancel", nil)
}

func (c *Client) submit(ctx context.Context, id, path string, payload interface{}) error {
	op := &runtime.ClientOperation{
		ID:                 id,
		Method:             "POST",
		PathPattern:        path,
		ProducesMediaTypes: []string{"application/json"},
		ConsumesMediaTypes: []string{"application/json"},
		Schemes:            c.schemes,
		Params:             bodyParams(payload),
		Reader:             &acceptReader{operation: id},
		AuthInfo:           c.auth,
		Context:            ctx,
	}
	_, err := c.tr.Submit(op)
	return err
}

func (c *Client) status(ctx context.Context, id, path string) (*model.JobStatus, error) {
	op := &runtime.ClientOperation{
		ID:                 id,
		Method:             "GET",
		PathPattern:        path,
		ProducesMediaTypes: []string{"application/json"},
		ConsumesMediaTypes: []string{"application/json"},
		Schemes:            c.schemes,
		Params:             noParams,
		Reader:             &statusReader{operation: id},
		AuthInfo:           c.auth,
		Context:            ctx,
	}
	result, err := c.tr.Submit(op)
	if err != nil {
		return nil, err
	}
	return result.(*StatusPayload).JobStatus(), nil
}

func bodyParams(payload interface{}) runtime.ClientRequestWriter {
	if payload == nil {
		return noParams
	}
	return runtime.ClientRequestWriterFunc(func(r runtime.ClientRequest, _ strfmt.Registry) error {
		return r.SetBodyParam(payload)
	})
}

var noParams = runtime.ClientRequestWriterFunc(func(r runtime.ClientRequest, _ strfmt.Registry) error {
	return nil
})
