package mongo_client

import (
	"context"
	"errors"
	"time"

	"stockanalyzer/config"
	"stockanalyzer/types"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gopkg.in/mgo.v2/bson"
)

// ErrDuplicate reports an attempt to save a symbol that is already on the
// watchlist.
var ErrDuplicate = errors.New("already in watchlist")

// WatchlistStore persists saved tickers in a single MongoDB collection
// keyed by symbol.
type WatchlistStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewWatchlistStore(ctx context.Context, cfg config.Mongo) (*WatchlistStore, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(cfg.URI).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	// Send a ping to confirm a successful connection
	pingCmd := bson.M{"ping": 1}
	if err := client.Database("admin").RunCommand(ctx, pingCmd).Err(); err != nil {
		return nil, err
	}
	zap.L().Info("Connected to MongoDB")

	return &WatchlistStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *WatchlistStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// List returns the watchlist newest first.
func (s *WatchlistStore) List(ctx context.Context) ([]types.WatchlistItem, error) {
	opts := options.Find().SetSort(bson.M{"added_at": -1})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []types.WatchlistItem{}
	for cursor.Next(ctx) {
		var item types.WatchlistItem
		if err := cursor.Decode(&item); err != nil {
			zap.L().Error("Failed to decode watchlist item", zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items, cursor.Err()
}

// Add inserts a watchlist item. ErrDuplicate is returned when the symbol
// is already saved.
func (s *WatchlistStore) Add(ctx context.Context, item types.WatchlistItem) error {
	existing := s.collection.FindOne(ctx, bson.M{"symbol": item.Symbol})
	if existing.Err() == nil {
		return ErrDuplicate
	}
	if existing.Err() != mongo.ErrNoDocuments {
		return existing.Err()
	}

	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}
	_, err := s.collection.InsertOne(ctx, item)
	return err
}

// Remove deletes by symbol. Returns the number of removed documents so the
// handler can distinguish "not found".
func (s *WatchlistStore) Remove(ctx context.Context, symbol string) (int64, error) {
	result, err := s.collection.DeleteOne(ctx, bson.M{"symbol": symbol})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// UpdateScore refreshes the stored score for a symbol, used by the
// background refresher.
func (s *WatchlistStore) UpdateScore(ctx context.Context, symbol string, score int) error {
	_, err := s.collection.UpdateOne(ctx,
		bson.M{"symbol": symbol},
		bson.M{"$set": bson.M{"score": score}})
	return err
}
