package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/motofleet/internal/domain/models"
)

type motoDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	SubTitle  string             `bson:"sub_title"`
	Plate     string             `bson:"plate"`
	StockID   *string            `bson:"stock_id"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d motoDoc) model() models.Moto {
	return models.Moto{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		SubTitle:  d.SubTitle,
		Plate:     d.Plate,
		StockID:   d.StockID,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type stockDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Quantity  int                `bson:"quantity"`
	Location  string             `bson:"location,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d stockDoc) model() models.Stock {
	return models.Stock{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Quantity:  d.Quantity,
		Location:  d.Location,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// objectID parses a hex id; malformed ids can never match a document.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

// ListMotos returns motos, newest first, optionally restricted to one stock.
func (r *MongoDBRepository) ListMotos(ctx context.Context, stockID string) ([]models.Moto, error) {
	filter := bson.M{}
	if stockID != "" {
		filter["stock_id"] = stockID
	}

	cursor, err := r.coll(CollMotos).Find(ctx, filter, findOptions("created_at", 0))
	if err != nil {
		return nil, fmt.Errorf("failed to list motos: %w", err)
	}

	var docs []motoDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode motos: %w", err)
	}

	motos := make([]models.Moto, 0, len(docs))
	for _, d := range docs {
		motos = append(motos, d.model())
	}
	return motos, nil
}

// GetMoto fetches one moto by id.
func (r *MongoDBRepository) GetMoto(ctx context.Context, id string) (*models.Moto, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc motoDoc
	if err := r.coll(CollMotos).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get moto: %w", err)
	}
	m := doc.model()
	return &m, nil
}

// CreateMoto inserts a moto and returns it with its id.
func (r *MongoDBRepository) CreateMoto(ctx context.Context, m models.Moto) (*models.Moto, error) {
	now := time.Now().UTC()
	doc := motoDoc{
		Title:     m.Title,
		SubTitle:  m.SubTitle,
		Plate:     m.Plate,
		StockID:   m.StockID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := r.coll(CollMotos).InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to insert moto: %w", translateWriteError(err))
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	created := doc.model()
	return &created, nil
}

// ReplaceMoto stores the mutable fields of m.
func (r *MongoDBRepository) ReplaceMoto(ctx context.Context, m models.Moto) (*models.Moto, error) {
	oid, err := objectID(m.ID)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{
		"title":      m.Title,
		"sub_title":  m.SubTitle,
		"plate":      m.Plate,
		"stock_id":   m.StockID,
		"updated_at": time.Now().UTC(),
	}}

	var doc motoDoc
	err = r.coll(CollMotos).
		FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, options.FindOneAndUpdate().SetReturnDocument(options.After)).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update moto: %w", translateWriteError(err))
	}
	updated := doc.model()
	return &updated, nil
}

// DeleteMoto removes a moto.
func (r *MongoDBRepository) DeleteMoto(ctx context.Context, id string) error {
	return r.deleteByID(ctx, CollMotos, id)
}

// CountMotos counts motos, optionally those of one stock.
func (r *MongoDBRepository) CountMotos(ctx context.Context, stockID string) (int, error) {
	filter := bson.M{}
	if stockID != "" {
		filter["stock_id"] = stockID
	}
	n, err := r.coll(CollMotos).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count motos: %w", err)
	}
	return int(n), nil
}

// ListStocks returns stocks, newest first.
func (r *MongoDBRepository) ListStocks(ctx context.Context) ([]models.Stock, error) {
	cursor, err := r.coll(CollStocks).Find(ctx, bson.M{}, findOptions("created_at", 0))
	if err != nil {
		return nil, fmt.Errorf("failed to list stocks: %w", err)
	}

	var docs []stockDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode stocks: %w", err)
	}

	stocks := make([]models.Stock, 0, len(docs))
	for _, d := range docs {
		stocks = append(stocks, d.model())
	}
	return stocks, nil
}

// GetStock fetches one stock by id.
func (r *MongoDBRepository) GetStock(ctx context.Context, id string) (*models.Stock, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc stockDoc
	if err := r.coll(CollStocks).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}
	s := doc.model()
	return &s, nil
}

// CreateStock inserts a stock and returns it with its id.
func (r *MongoDBRepository) CreateStock(ctx context.Context, s models.Stock) (*models.Stock, error) {
	now := time.Now().UTC()
	doc := stockDoc{
		Name:      s.Name,
		Quantity:  s.Quantity,
		Location:  s.Location,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := r.coll(CollStocks).InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to insert stock: %w", translateWriteError(err))
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	created := doc.model()
	return &created, nil
}

// ReplaceStock stores the mutable fields of s.
func (r *MongoDBRepository) ReplaceStock(ctx context.Context, s models.Stock) (*models.Stock, error) {
	oid, err := objectID(s.ID)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{
		"name":       s.Name,
		"quantity":   s.Quantity,
		"location":   s.Location,
		"updated_at": time.Now().UTC(),
	}}

	var doc stockDoc
	err = r.coll(CollStocks).
		FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, options.FindOneAndUpdate().SetReturnDocument(options.After)).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}
	updated := doc.model()
	return &updated, nil
}

// DeleteStock removes a stock.
func (r *MongoDBRepository) DeleteStock(ctx context.Context, id string) error {
	return r.deleteByID(ctx, CollStocks, id)
}

// CountStocks counts stocks.
func (r *MongoDBRepository) CountStocks(ctx context.Context) (int, error) {
	n, err := r.coll(CollStocks).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count stocks: %w", err)
	}
	return int(n), nil
}

func (r *MongoDBRepository) deleteByID(ctx context.Context, coll, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := r.coll(coll).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", coll, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
