package db

import (
	"context"
	"errors"

	"github.com/RacoonMediaServer/rms-annotator/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const providerSettingsKey = "providers"

// GetProviderSettings loads the active provider configuration. The document
// is owned by the settings screen, here it is read-only
func (d Database) GetProviderSettings(ctx context.Context) (*model.ProviderSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, databaseTimeout)
	defer cancel()

	result := d.settings.FindOne(ctx, bson.D{{Key: "_id", Value: providerSettingsKey}})
	if errors.Is(result.Err(), mongo.ErrNoDocuments) {
		return &model.ProviderSettings{}, nil
	}

	if result.Err() != nil {
		return nil, result.Err()
	}

	settings := model.ProviderSettings{}
	if err := result.Decode(&settings); err != nil {
		return nil, err
	}

	return &settings, nil
}

// SetProviderSettings stores the provider configuration
func (d Database) SetProviderSettings(ctx context.Context, settings model.ProviderSettings) error {
	ctx, cancel := context.WithTimeout(ctx, databaseTimeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	filter := bson.D{{Key: "_id", Value: providerSettingsKey}}

	_, err := d.settings.ReplaceOne(ctx, filter, settings, opts)
	return err
}
