package service

import (
	"context"
	"testing"

	"github.com/RacoonMediaServer/rms-annotator/internal/model"
	"github.com/RacoonMediaServer/rms-annotator/internal/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/emptypb"
)

type fakeDatabase struct {
	entries   map[string]*model.LibraryEntry
	providers model.ProviderSettings
	updated   []string
	deleted   []string
}

func (f *fakeDatabase) GetEntry(ctx context.Context, id string) (*model.LibraryEntry, error) {
	return f.entries[id], nil
}

func (f *fakeDatabase) UpdateEntry(ctx context.Context, entry *model.LibraryEntry) error {
	f.entries[entry.ID] = entry
	f.updated = append(f.updated, entry.ID)
	return nil
}

func (f *fakeDatabase) DeleteEntry(ctx context.Context, id string) error {
	delete(f.entries, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeDatabase) GetProviderSettings(ctx context.Context) (*model.ProviderSettings, error) {
	settings := f.providers
	return &settings, nil
}

func (f *fakeDatabase) SetProviderSettings(ctx context.Context, settings model.ProviderSettings) error {
	f.providers = settings
	return nil
}

type fakeSnapshot struct {
	entries     []*model.LibraryEntry
	invalidated int
}

func (f *fakeSnapshot) Load(ctx context.Context, force bool) ([]*model.LibraryEntry, error) {
	return f.entries, nil
}

func (f *fakeSnapshot) Invalidate() {
	f.invalidated++
}

func testLibrary() []*model.LibraryEntry {
	return []*model.LibraryEntry{
		{ID: "m1", Title: "Solaris", Kind: model.MediaKindMovie, SubtitlePath: "m1.srt", AnnotateStatus: model.StatusPending},
		{ID: "s1", Title: "Lexx", Kind: model.MediaKindSeries, AnnotateStatus: model.StatusPartial, Episodes: []model.Episode{
			{Number: 1, SubtitlePath: "s1e1.srt"},
			{Number: 2, SubtitlePath: "s1e2.srt", AnnotationPath: "s1e2.ann"},
		}},
		{ID: "m2", Title: "Mirror", Kind: model.MediaKindMovie, AnnotateStatus: model.StatusDone, SubtitlePath: "m2.srt"},
	}
}

func newLibraryFixture() (*LibraryService, *fakeDatabase, *fakeSnapshot, *selection.Set) {
	entries := testLibrary()
	db := &fakeDatabase{entries: map[string]*model.LibraryEntry{}}
	for _, e := range entries {
		db.entries[e.ID] = e
	}
	snap := &fakeSnapshot{entries: entries}
	sel := selection.New()
	svc := NewLibrary(LibrarySettings{Database: db, Snapshot: snap, Selection: sel})
	return svc, db, snap, sel
}

func TestGetEntriesMarksSelection(t *testing.T) {
	svc, _, _, sel := newLibraryFixture()
	sel.Add(model.EntryTarget("s1"))

	var resp GetEntriesResponse
	require.NoError(t, svc.GetEntries(context.Background(), &GetEntriesRequest{}, &resp))

	require.Len(t, resp.Entries, 3)
	assert.False(t, resp.Entries[0].Selected)
	assert.True(t, resp.Entries[1].Selected)
	assert.Len(t, resp.Entries[1].Episodes, 2)
	assert.True(t, resp.Entries[1].Episodes[1].Annotated)
}

func TestSelectValidatesTarget(t *testing.T) {
	svc, _, _, sel := newLibraryFixture()

	require.NoError(t, svc.Select(context.Background(), &TargetRequest{Target: "s1_ep2"}, &emptypb.Empty{}))
	require.Error(t, svc.Select(context.Background(), &TargetRequest{Target: "nope"}, &emptypb.Empty{}))

	items := sel.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "s1_ep2", items[0].String())
}

func TestSelectAllPendingSkipsDone(t *testing.T) {
	svc, _, _, sel := newLibraryFixture()

	var resp SelectAllPendingResponse
	require.NoError(t, svc.SelectAllPending(context.Background(), &emptypb.Empty{}, &resp))

	// m2 is already done, m1 and s1 are eligible
	assert.Equal(t, 2, resp.Added)
	assert.Equal(t, 2, sel.Len())
}

func TestSearchFindsByTitle(t *testing.T) {
	svc, _, _, _ := newLibraryFixture()

	var resp SearchResponse
	require.NoError(t, svc.Search(context.Background(), &SearchRequest{Query: "lexx"}, &resp))

	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "s1", resp.Entries[0].ID)
}

func TestUpdateEntryInvalidatesSnapshot(t *testing.T) {
	svc, db, snap, _ := newLibraryFixture()

	req := UpdateEntryRequest{ID: "m1", AnnotateStatus: string(model.StatusDone)}
	require.NoError(t, svc.UpdateEntry(context.Background(), &req, &emptypb.Empty{}))

	assert.Equal(t, model.StatusDone, db.entries["m1"].AnnotateStatus)
	assert.Equal(t, 1, snap.invalidated)

	require.Error(t, svc.UpdateEntry(context.Background(), &UpdateEntryRequest{ID: "zz"}, &emptypb.Empty{}))
}

func TestDeleteEntryDropsSelection(t *testing.T) {
	svc, db, snap, sel := newLibraryFixture()
	sel.Add(model.EntryTarget("m1"))

	require.NoError(t, svc.DeleteEntry(context.Background(), &DeleteEntryRequest{ID: "m1"}, &emptypb.Empty{}))

	assert.Equal(t, []string{"m1"}, db.deleted)
	assert.Zero(t, sel.Len())
	assert.Equal(t, 1, snap.invalidated)
}
