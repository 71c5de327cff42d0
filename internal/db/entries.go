package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/RacoonMediaServer/rms-annotator/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListEntries loads the whole catalog, sorted by title
func (d Database) ListEntries(ctx context.Context) ([]*model.LibraryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, databaseTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "title", Value: 1}})

	cur, err := d.entries.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	var results []*model.LibraryEntry
	if err = cur.All(ctx, &results); err != nil {
		return nil, err
	}

	return results, nil
}

// GetEntry returns one catalog entry or nil when it does not exist
func (d Database) GetEntry(ctx context.Context, id string) (*model.LibraryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, databaseTimeout)
	defer cancel()

	result := d.entries.FindOne(ctx, bson.D{{Key: "_id", Value: id}})
	if errors.Is(result.Err(), mongo.ErrNoDocuments) {
		return nil, nil
	}

	if result.Err() != nil {
		return nil, result.Err()
	}

	entry := model.LibraryEntry{}
	if err := result.Decode(&entry); err != nil {
		return nil, err
	}

	return &entry, nil
}

// UpdateEntry patches an existing catalog row. Rows are created by the
// import pipeline, never here
func (d Database) UpdateEntry(ctx context.Context, entry *model.LibraryEntry) error {
	ctx, cancel := context.WithTimeout(ctx, databaseTimeout)
	defer cancel()

	filter := bson.D{{Key: "_id", Value: entry.ID}}
	result, err := d.entries.ReplaceOne(ctx, filter, entry)
	if err != nil {
		return fmt.Errorf("update entry failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("entry %s not found", entry.ID)
	}

	return nil
}

// DeleteEntry removes a catalog row
func (d Database) DeleteEntry(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, databaseTimeout)
	defer cancel()

	_, err := d.entries.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	return err
}
