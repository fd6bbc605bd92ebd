package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/motofleet/internal/domain/models"
)

// InsertRawTelemetry stores a decoded MQTT message as received.
func (r *MongoDBRepository) InsertRawTelemetry(ctx context.Context, doc map[string]any) error {
	if _, err := r.coll(CollTelemetry).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert telemetry: %w", err)
	}
	return nil
}

// LatestTelemetry returns the most recently received telemetry documents.
func (r *MongoDBRepository) LatestTelemetry(ctx context.Context, limit int) ([]models.Telemetry, error) {
	var out []models.Telemetry
	if err := r.findAll(ctx, CollTelemetry, bson.M{}, findOptions("_received_at", limit), &out); err != nil {
		return nil, fmt.Errorf("failed to list telemetry: %w", err)
	}
	return out, nil
}

// InsertEvent records an event.
func (r *MongoDBRepository) InsertEvent(ctx context.Context, event models.Event) error {
	if _, err := r.coll(CollEvents).InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// LatestEvents returns the most recently created events.
func (r *MongoDBRepository) LatestEvents(ctx context.Context, limit int) ([]models.Event, error) {
	var out []models.Event
	if err := r.findAll(ctx, CollEvents, bson.M{}, findOptions("_created_at", limit), &out); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return out, nil
}

// CountEventsSince groups the events created after since by type.
func (r *MongoDBRepository) CountEventsSince(ctx context.Context, since time.Time) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_created_at": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{"_id": "$type", "count": bson.M{"$sum": 1}}}},
	}
	return r.countBy(ctx, CollEvents, pipeline)
}

// GetStatus returns the consolidated status of one moto.
func (r *MongoDBRepository) GetStatus(ctx context.Context, motoID string) (*models.MotoStatus, error) {
	var status models.MotoStatus
	if err := r.coll(CollStatus).FindOne(ctx, bson.M{"moto_id": motoID}).Decode(&status); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	return &status, nil
}

// UpsertStatus replaces the status document of a moto, creating it when missing.
func (r *MongoDBRepository) UpsertStatus(ctx context.Context, status models.MotoStatus) error {
	_, err := r.coll(CollStatus).ReplaceOne(ctx,
		bson.M{"moto_id": status.MotoID},
		status,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert status: %w", err)
	}
	return nil
}

// ListStatus returns every status document. With recentFirst they are ordered by
// reception time and limited.
func (r *MongoDBRepository) ListStatus(ctx context.Context, recentFirst bool, limit int) ([]models.MotoStatus, error) {
	opts := options.Find()
	if recentFirst {
		opts = findOptions("_received_at", limit)
	}

	var out []models.MotoStatus
	if err := r.findAll(ctx, CollStatus, bson.M{}, opts, &out); err != nil {
		return nil, fmt.Errorf("failed to list status: %w", err)
	}
	return out, nil
}

// CountStatus groups the motos by consolidated status.
func (r *MongoDBRepository) CountStatus(ctx context.Context) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	return r.countBy(ctx, CollStatus, pipeline)
}

// CountLowBattery counts motos whose last battery reading is under threshold.
func (r *MongoDBRepository) CountLowBattery(ctx context.Context, threshold float64) (int, error) {
	n, err := r.coll(CollStatus).CountDocuments(ctx, bson.M{"battery": bson.M{"$lt": threshold}})
	if err != nil {
		return 0, fmt.Errorf("failed to count low battery: %w", err)
	}
	return int(n), nil
}

// UpsertDevice registers a push token, refreshing its owner and registration time.
func (r *MongoDBRepository) UpsertDevice(ctx context.Context, device models.Device) error {
	_, err := r.coll(CollDevices).UpdateOne(ctx,
		bson.M{"token": device.Token},
		bson.M{"$set": bson.M{"email": device.Email, "registered_at": device.RegisteredAt}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert device: %w", err)
	}
	return nil
}

// DeviceTokens lists every registered push token.
func (r *MongoDBRepository) DeviceTokens(ctx context.Context) ([]string, error) {
	var devices []models.Device
	if err := r.findAll(ctx, CollDevices, bson.M{}, options.Find(), &devices); err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	tokens := make([]string, 0, len(devices))
	for _, d := range devices {
		tokens = append(tokens, d.Token)
	}
	return tokens, nil
}

// SaveDailyReport saves a daily report to the database.
func (r *MongoDBRepository) SaveDailyReport(ctx context.Context, report models.DailyReport) error {
	if _, err := r.coll(CollDailyReports).InsertOne(ctx, report); err != nil {
		return fmt.Errorf("failed to insert daily report: %w", err)
	}
	return nil
}

func (r *MongoDBRepository) findAll(ctx context.Context, coll string, filter any, opts *options.FindOptions, out any) error {
	cursor, err := r.coll(coll).Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}

func (r *MongoDBRepository) countBy(ctx context.Context, coll string, pipeline mongo.Pipeline) (map[string]int, error) {
	cursor, err := r.coll(coll).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s: %w", coll, err)
	}

	var rows []struct {
		Key   string `bson:"_id"`
		Count int    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s counts: %w", coll, err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}
