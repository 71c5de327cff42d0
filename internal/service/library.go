package service

import (
	"context"
	"fmt"

	"github.com/RacoonMediaServer/rms-annotator/internal/model"
	"github.com/RacoonMediaServer/rms-annotator/internal/selector"
	"go-micro.dev/v4/logger"
	"google.golang.org/protobuf/types/known/emptypb"
)

// LibraryService is a service API handler for browsing the library and
// staging the selection
type LibraryService struct {
	db        Database
	snapshot  Snapshot
	selection Selection
	matcher   selector.TitleMatcher
}

// LibrarySettings holds all dependencies of LibraryService
type LibrarySettings struct {
	Database  Database
	Snapshot  Snapshot
	Selection Selection
}

func NewLibrary(settings LibrarySettings) *LibraryService {
	return &LibraryService{
		db:        settings.Database,
		snapshot:  settings.Snapshot,
		selection: settings.Selection,
	}
}

func (s *LibraryService) selectedIndex() map[string]struct{} {
	index := map[string]struct{}{}
	for _, t := range s.selection.Items() {
		index[t.String()] = struct{}{}
	}
	return index
}

func (s *LibraryService) GetEntries(ctx context.Context, req *GetEntriesRequest, resp *GetEntriesResponse) error {
	entries, err := s.snapshot.Load(ctx, req.ForceRefresh)
	if err != nil && len(entries) == 0 {
		logger.Errorf("Load library failed: %s", err)
		return err
	}

	selected := s.selectedIndex()
	isSelected := func(t model.TargetID) bool {
		_, ok := selected[t.String()]
		return ok
	}
	resp.Entries = make([]EntryView, 0, len(entries))
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, makeEntryView(entry, isSelected))
	}
	return nil
}

func (s *LibraryService) Search(ctx context.Context, req *SearchRequest, resp *SearchResponse) error {
	entries, err := s.snapshot.Load(ctx, false)
	if err != nil && len(entries) == 0 {
		logger.Errorf("Load library failed: %s", err)
		return err
	}

	selected := s.selectedIndex()
	isSelected := func(t model.TargetID) bool {
		_, ok := selected[t.String()]
		return ok
	}
	for _, match := range s.matcher.Select(req.Query, entries) {
		resp.Entries = append(resp.Entries, makeEntryView(match.Entry, isSelected))
	}
	return nil
}

func (s *LibraryService) Select(ctx context.Context, req *TargetRequest, _ *emptypb.Empty) error {
	target, err := model.ParseTarget(req.Target)
	if err != nil {
		return err
	}

	// reject targets pointing nowhere before they poison the selection
	entries, err := s.snapshot.Load(ctx, false)
	if err != nil && len(entries) == 0 {
		return err
	}
	if findEntry(entries, target.Entry) == nil {
		return fmt.Errorf("unknown entry '%s'", target.Entry)
	}

	s.selection.Add(target)
	logger.Debugf("Selected '%s'", req.Target)
	return nil
}

func (s *LibraryService) Deselect(ctx context.Context, req *TargetRequest, _ *emptypb.Empty) error {
	target, err := model.ParseTarget(req.Target)
	if err != nil {
		return err
	}
	s.selection.Remove(target)
	logger.Debugf("Deselected '%s'", req.Target)
	return nil
}

func (s *LibraryService) SelectAllPending(ctx context.Context, _ *emptypb.Empty, resp *SelectAllPendingResponse) error {
	entries, err := s.snapshot.Load(ctx, false)
	if err != nil && len(entries) == 0 {
		logger.Errorf("Load library failed: %s", err)
		return err
	}

	resp.Added = s.selection.AddAllPending(entries)
	logger.Infof("Selected %d pending entries", resp.Added)
	return nil
}

func (s *LibraryService) GetSelection(ctx context.Context, _ *emptypb.Empty, resp *SelectionResponse) error {
	for _, t := range s.selection.Items() {
		resp.Targets = append(resp.Targets, t.String())
	}
	return nil
}

func (s *LibraryService) ClearSelection(ctx context.Context, _ *emptypb.Empty, _ *emptypb.Empty) error {
	s.selection.Clear()
	return nil
}

func (s *LibraryService) UpdateEntry(ctx context.Context, req *UpdateEntryRequest, _ *emptypb.Empty) error {
	entry, err := s.db.GetEntry(ctx, req.ID)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("unknown entry '%s'", req.ID)
	}

	if req.Title != "" {
		entry.Title = req.Title
	}
	if req.AnnotateStatus != "" {
		entry.AnnotateStatus = model.Status(req.AnnotateStatus)
	}
	if req.VectorizeStatus != "" {
		entry.VectorizeStatus = model.Status(req.VectorizeStatus)
	}

	if err = s.db.UpdateEntry(ctx, entry); err != nil {
		logger.Errorf("Update entry '%s' failed: %s", req.ID, err)
		return err
	}
	s.snapshot.Invalidate()
	return nil
}

func (s *LibraryService) DeleteEntry(ctx context.Context, req *DeleteEntryRequest, _ *emptypb.Empty) error {
	if err := s.db.DeleteEntry(ctx, req.ID); err != nil {
		logger.Errorf("Delete entry '%s' failed: %s", req.ID, err)
		return err
	}
	s.selection.Remove(model.EntryTarget(req.ID))
	s.snapshot.Invalidate()
	logger.Infof("Entry '%s' deleted", req.ID)
	return nil
}

func (s *LibraryService) GetProviderSettings(ctx context.Context, _ *emptypb.Empty, resp *ProviderSettingsView) error {
	settings, err := s.db.GetProviderSettings(ctx)
	if err != nil {
		logger.Errorf("Load provider settings failed: %s", err)
		return err
	}
	resp.ModelProvider = settings.ModelProvider
	resp.EmbeddingProvider = settings.EmbeddingProvider
	return nil
}

func (s *LibraryService) SetProviderSettings(ctx context.Context, req *ProviderSettingsView, _ *emptypb.Empty) error {
	settings := model.ProviderSettings{
		ModelProvider:     req.ModelProvider,
		EmbeddingProvider: req.EmbeddingProvider,
	}
	if err := s.db.SetProviderSettings(ctx, settings); err != nil {
		logger.Errorf("Store provider settings failed: %s", err)
		return err
	}
	logger.Infof("Providers changed: model '%s', embedding '%s'", settings.ModelProvider, settings.EmbeddingProvider)
	return nil
}

func findEntry(entries []*model.LibraryEntry, id string) *model.LibraryEntry {
	for _, entry := range entries {
		if entry.ID == id {
			return entry
		}
	}
	return nil
}
