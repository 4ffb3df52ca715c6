package repository

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"StockBoard/internal/domain/models"
)

const marketListCollection = "marketlists"

// sortFields whitelists user-facing sort keys to actual document fields.
var sortFields = map[string]string{
	"ticker":  "ticker",
	"name":    "name",
	"country": "country",
	"sector":  "sector",
}

// MongoMarketListRepo reads the ticker universe from the `marketlists`
// collection.
type MongoMarketListRepo struct {
	coll *mongo.Collection
}

func NewMongoMarketListRepo(db *mongo.Database) *MongoMarketListRepo {
	return &MongoMarketListRepo{coll: db.Collection(marketListCollection)}
}

// List returns the filtered, sorted, paged universe and its total count.
func (r *MongoMarketListRepo) List(ctx context.Context, q *models.MarketListQuery) ([]*models.TickerListItem, int64, error) {
	filter := bson.M{}
	if q.Country != "" {
		filter["country"] = q.Country
	}
	if q.Sector != "" {
		filter["sector"] = q.Sector
	}
	if q.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"ticker": rx},
			bson.M{"name": rx},
		}
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("marketlist count: %w", err)
	}

	field, ok := sortFields[q.SortBy]
	if !ok {
		field = "ticker"
	}
	order := 1
	if q.Order == "desc" {
		order = -1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: field, Value: order}}).
		SetSkip(int64(q.Offset))
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("marketlist find: %w", err)
	}
	defer cur.Close(ctx)

	var items []*models.TickerListItem
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("marketlist decode: %w", err)
	}
	return items, total, nil
}

// Search matches tickers by symbol or company-name substring,
// case-insensitive.
func (r *MongoMarketListRepo) Search(ctx context.Context, query string, limit int) ([]*models.TickerListItem, error) {
	if limit <= 0 {
		limit = 20
	}
	rx := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"ticker": rx},
		bson.M{"name": rx},
	}}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("marketlist search: %w", err)
	}
	defer cur.Close(ctx)

	var items []*models.TickerListItem
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("marketlist search decode: %w", err)
	}
	return items, nil
}
