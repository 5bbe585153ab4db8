// Package mongo implements the store.Store interface against a MongoDB
// collection.
//
// Orders are upserted by _id with replace-wholesale semantics. A client is
// connected for the duration of each call and always disconnected on every
// exit path; one order per session makes a pooled long-lived connection
// unnecessary.
package mongo

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/mokabrew/baristad/internal/config"
	"github.com/mokabrew/baristad/internal/order"
)

// Store persists finalized orders in a MongoDB collection.
type Store struct {
	uri        string
	database   string
	collection string
}

// New creates a new MongoDB store from config.
func New(cfg config.MongoConfig) *Store {
	return &Store{
		uri:        cfg.URI,
		database:   cfg.Database,
		collection: cfg.Collection,
	}
}

// Upsert writes the order to the collection, assigning an ID if absent.
func (s *Store) Upsert(ctx context.Context, o *order.FinalOrder) error {
	ensureID(o)

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(s.uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)))
	if err != nil {
		return fmt.Errorf("connecting to mongodb: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			slog.Warn("mongodb disconnect failed", "error", err)
		}
	}()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("pinging mongodb: %w", err)
	}

	coll := client.Database(s.database).Collection(s.collection)

	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": o.ID},
		bson.M{"$set": o},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upserting order %s: %w", o.ID, err)
	}

	if res.UpsertedID != nil {
		slog.Info("order inserted", "id", o.ID)
	} else {
		slog.Info("order replaced", "id", o.ID)
	}
	return nil
}

// ensureID assigns a random 128-bit hex identifier if the order has none.
// An already-assigned ID is never replaced.
func ensureID(o *order.FinalOrder) {
	if o.ID == "" {
		u := uuid.New()
		o.ID = hex.EncodeToString(u[:])
	}
}
