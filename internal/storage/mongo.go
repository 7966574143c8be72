package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/types"
)

// MongoArchive keeps a queryable copy of assembled records in a MongoDB
// collection, alongside the CSV artifacts. It is optional; the pipeline
// runs without it when no archive URI is configured.
type MongoArchive struct {
	client     *mongo.Client
	collection *mongo.Collection
	mu         sync.Mutex
	count      int
	logger     *slog.Logger
}

// NewMongoArchive connects to MongoDB and pings it.
func NewMongoArchive(uri, database, collection string, logger *slog.Logger) (*MongoArchive, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoArchive{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("component", "mongo_archive"),
	}, nil
}

// InsertRecords archives a batch of assembled records.
func (a *MongoArchive) InsertRecords(ctx context.Context, records []types.ProductRecord) error {
	if len(records) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	docs := make([]any, len(records))
	for i, rec := range records {
		docs[i] = map[string]any{
			"type":              string(rec.Type),
			"sku":               rec.SKU,
			"parent_sku":        rec.ParentSKU,
			"name":              rec.Name,
			"price":             rec.Price,
			"regular_price":     rec.RegularPrice,
			"tag_ids":           rec.TagIDs,
			"gallery":           rec.Gallery,
			"brand":             rec.Brand,
			"attribute_name":    rec.AttributeName,
			"attribute_options": rec.AttributeOptions,
			"default_attribute": rec.DefaultAttribute,
			"archived_at":       time.Now(),
		}
	}

	insertCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := a.collection.InsertMany(insertCtx, docs); err != nil {
		return fmt.Errorf("mongodb insert: %w", err)
	}

	a.count += len(records)
	a.logger.Debug("records archived", "count", len(records), "total", a.count)
	return nil
}

// Close disconnects from MongoDB.
func (a *MongoArchive) Close() error {
	a.logger.Info("mongo archive closing", "total_records", a.count)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.client.Disconnect(ctx)
}
