package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"StockBoard/internal/domain/models"
	drepo "StockBoard/internal/domain/repository"
)

const metaCollection = "ticker_meta"

// MongoMetaStore persists per-ticker company metadata so the universe does
// not get refetched on every restart.
type MongoMetaStore struct {
	coll *mongo.Collection
}

func NewMongoMetaStore(db *mongo.Database) *MongoMetaStore {
	return &MongoMetaStore{coll: db.Collection(metaCollection)}
}

func (s *MongoMetaStore) Get(ctx context.Context, ticker string) (*models.TickerMeta, error) {
	var meta models.TickerMeta
	err := s.coll.FindOne(ctx, bson.M{"_id": ticker}).Decode(&meta)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, drepo.ErrNotFound
		}
		return nil, fmt.Errorf("meta get %s: %w", ticker, err)
	}
	return &meta, nil
}

func (s *MongoMetaStore) Put(ctx context.Context, meta *models.TickerMeta) error {
	update := bson.M{"$set": bson.M{
		"company_name": meta.CompanyName,
		"market":       meta.Market,
		"fetched_at":   meta.FetchedAt,
	}}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": meta.Ticker}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("meta put %s: %w", meta.Ticker, err)
	}
	return nil
}
