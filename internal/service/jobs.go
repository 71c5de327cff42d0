package service

import (
	"context"

	"go-micro.dev/v4/logger"
	"google.golang.org/protobuf/types/known/emptypb"
)

// JobsService is a service API handler for driving the processing jobs
type JobsService struct {
	annotate  AnnotationDriver
	vectorize VectorizationDriver
}

// JobsSettings holds all dependencies of JobsService
type JobsSettings struct {
	Annotation    AnnotationDriver
	Vectorization VectorizationDriver
}

func NewJobs(settings JobsSettings) *JobsService {
	return &JobsService{
		annotate:  settings.Annotation,
		vectorize: settings.Vectorization,
	}
}

func (s *JobsService) StartAnnotation(ctx context.Context, _ *emptypb.Empty, _ *emptypb.Empty) error {
	logger.Info("StartAnnotation request")
	if err := s.annotate.Start(ctx); err != nil {
		logger.Errorf("Start annotation failed: %s", err)
		return err
	}
	return nil
}

func (s *JobsService) CancelAnnotation(ctx context.Context, _ *emptypb.Empty, _ *emptypb.Empty) error {
	logger.Info("CancelAnnotation request")
	if err := s.annotate.Cancel(ctx); err != nil {
		logger.Errorf("Cancel annotation failed: %s", err)
		return err
	}
	return nil
}

func (s *JobsService) GetAnnotationStatus(ctx context.Context, _ *emptypb.Empty, resp *AnnotationStatusResponse) error {
	status := s.annotate.Status()
	resp.State = status.State.String()
	resp.LastOutcome = outcomeString(status.LastOutcome)
	resp.Processed = status.Processed
	resp.RunID = status.RunID
	resp.Queue = QueueStatusView{
		CurrentIndex: status.Queue.CurrentIndex,
		TotalUnits:   status.Queue.TotalUnits,
		CurrentLabel: status.Queue.CurrentLabel,
	}
	resp.Job = makeJobStatusView(status.Job)
	return nil
}

func (s *JobsService) StartVectorization(ctx context.Context, _ *emptypb.Empty, _ *emptypb.Empty) error {
	logger.Info("StartVectorization request")
	if err := s.vectorize.Start(ctx); err != nil {
		logger.Errorf("Start vectorization failed: %s", err)
		return err
	}
	return nil
}

func (s *JobsService) CancelVectorization(ctx context.Context, _ *emptypb.Empty, _ *emptypb.Empty) error {
	logger.Info("CancelVectorization request")
	if err := s.vectorize.Cancel(ctx); err != nil {
		logger.Errorf("Cancel vectorization failed: %s", err)
		return err
	}
	return nil
}

func (s *JobsService) GetVectorizationStatus(ctx context.Context, _ *emptypb.Empty, resp *VectorizationStatusResponse) error {
	status := s.vectorize.Status()
	resp.State = status.State.String()
	resp.LastOutcome = outcomeString(status.LastOutcome)
	resp.RunID = status.RunID
	resp.Job = makeJobStatusView(status.Job)
	return nil
}
