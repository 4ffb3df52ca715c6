package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"StockBoard/internal/domain/models"
	drepo "StockBoard/internal/domain/repository"
)

const cacheCollection = "cache"

// MongoCacheStore persists chart payloads in the `cache` collection, one
// document per chart::{TICKER}::{interval}::{period} key.
type MongoCacheStore struct {
	coll *mongo.Collection
}

func NewMongoCacheStore(db *mongo.Database) *MongoCacheStore {
	return &MongoCacheStore{coll: db.Collection(cacheCollection)}
}

// Get returns the entry for key, or drepo.ErrNotFound when absent.
func (s *MongoCacheStore) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	var entry models.CacheEntry
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, drepo.ErrNotFound
		}
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	return &entry, nil
}

// Upsert writes payload under key with the given fetch time, creating the
// document when absent. Concurrent refreshes of one key resolve
// last-writer-wins, which is fine: payloads for a key are fungible snapshots
// of the same truth.
func (s *MongoCacheStore) Upsert(ctx context.Context, key string, payload *models.PriceHistoryPayload, fetchedAt time.Time) (*models.CacheEntry, error) {
	update := bson.M{"$set": bson.M{
		"payload":    payload,
		"fetched_at": fetchedAt,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var entry models.CacheEntry
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": key}, update, opts).Decode(&entry); err != nil {
		return nil, fmt.Errorf("cache upsert %s: %w", key, err)
	}
	return &entry, nil
}

// IsStale reports whether key needs a refetch. Absent entries are stale
// (fail-safe toward refetching); present entries are stale once their age
// strictly exceeds the threshold.
func (s *MongoCacheStore) IsStale(ctx context.Context, key string, threshold time.Duration) (bool, error) {
	entry, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, drepo.ErrNotFound) {
			return true, nil
		}
		return true, err
	}
	return entry.IsStaleAt(time.Now().UTC(), threshold), nil
}

// DeleteStale hard-deletes every entry older than the threshold and returns
// how many went. Swept keys are full cache misses afterwards.
func (s *MongoCacheStore) DeleteStale(ctx context.Context, threshold time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-threshold)
	res, err := s.coll.DeleteMany(ctx, bson.M{"fetched_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("cache delete stale: %w", err)
	}
	return res.DeletedCount, nil
}

// ListByTicker returns every interval/period entry stored for one ticker,
// matched by key prefix.
func (s *MongoCacheStore) ListByTicker(ctx context.Context, ticker string) ([]*models.CacheEntry, error) {
	prefix := regexp.QuoteMeta(models.CacheKeyPrefix(ticker))
	filter := bson.M{"_id": primitive.Regex{Pattern: "^" + prefix}}

	cur, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("cache list %s: %w", ticker, err)
	}
	defer cur.Close(ctx)

	var entries []*models.CacheEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("cache decode %s: %w", ticker, err)
	}
	return entries, nil
}

// Health pings the underlying connection.
func (s *MongoCacheStore) Health(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}
