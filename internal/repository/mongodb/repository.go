package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/motofleet/internal/repository"
)

// Collection names.
const (
	CollMotos        = "motos"
	CollStocks       = "stocks"
	CollTelemetry    = "telemetry"
	CollEvents       = "events"
	CollStatus       = "status_motos"
	CollDevices      = "devices"
	CollDailyReports = "daily_reports"
)

var (
	ErrNotFound  = repository.ErrNotFound
	ErrDuplicate = repository.ErrDuplicate
)

// MongoDBRepository stores the fleet inventory and the IoT data in MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

// EnsureIndexes creates the indexes the queries rely on.
func (r *MongoDBRepository) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		CollMotos: {
			{Keys: bson.D{{Key: "plate", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "stock_id", Value: 1}}},
		},
		CollStatus: {
			{Keys: bson.D{{Key: "moto_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "_received_at", Value: -1}}},
		},
		CollTelemetry: {
			{Keys: bson.D{{Key: "_received_at", Value: -1}}},
		},
		CollEvents: {
			{Keys: bson.D{{Key: "_created_at", Value: -1}}},
		},
		CollDevices: {
			{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for coll, models := range indexes {
		if _, err := r.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// Ping checks the connection.
func (r *MongoDBRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) coll(name string) *mongo.Collection {
	return r.db.Collection(name)
}

func findOptions(sortField string, limit int) *options.FindOptions {
	opts := options.Find()
	if sortField != "" {
		opts.SetSort(bson.D{{Key: sortField, Value: -1}})
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

func translateWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
