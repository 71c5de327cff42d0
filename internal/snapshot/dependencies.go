package snapshot

import (
	"context"

	"github.com/RacoonMediaServer/rms-annotator/internal/model"
)

// Catalog is the external catalog collaborator the snapshot is fetched from
type Catalog interface {
	ListEntries(ctx context.Context) ([]*model.LibraryEntry, error)
}

// Fallback supplies a pre-scanned entry list from the import pipeline. It is
// consulted only when the very first catalog fetch fails
type Fallback interface {
	ScannedEntries(ctx context.Context) ([]*model.LibraryEntry, error)
}
