package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storefront-tools/prodcrawl/internal/types"
)

// ProductSink writes crawled product records to a MongoDB collection, in
// addition to the JSON artifact. Optional: only created when a Mongo URI
// is configured.
type ProductSink struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewProductSink connects to MongoDB and pings it.
func NewProductSink(uri, database, collection string, logger *slog.Logger) (*ProductSink, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &ProductSink{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("component", "mongo_sink"),
	}, nil
}

// Store inserts the given product records.
func (s *ProductSink) Store(products []types.ProductRecord) error {
	if len(products) == 0 {
		return nil
	}

	docs := make([]any, len(products))
	for i, p := range products {
		docs[i] = p
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.collection.InsertMany(ctx, docs); err != nil {
		return &types.StorageError{Backend: "mongodb", Err: fmt.Errorf("insert: %w", err)}
	}

	s.logger.Info("products stored in mongodb", "count", len(products))
	return nil
}

// Close disconnects from MongoDB.
func (s *ProductSink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
