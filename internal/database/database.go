package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	UsersCollection      = "users"
	ProductsCollection   = "store"
	FlashSalesCollection = "flash-sale"
	OrdersCollection     = "orders"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func New(ctx context.Context, uri string, database string, maxPoolSize uint64, connectTimeout time.Duration) (*DB, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1).SetStrict(true).SetDeprecationErrors(true)).
		SetMaxPoolSize(maxPoolSize).
		SetConnectTimeout(connectTimeout).
		SetRetryReads(false).
		SetRetryWrites(false)

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	slog.Info("database connected", "database", database, "max_pool_size", maxPoolSize)
	return &DB{Client: client, Database: client.Database(database)}, nil
}

func (db *DB) Collection(name string) *mongo.Collection {
	return db.Database.Collection(name)
}

func (db *DB) Close(ctx context.Context) error {
	if db.Client == nil {
		return nil
	}

	return db.Client.Disconnect(ctx)
}

func (db *DB) Health(ctx context.Context) error {
	return db.Client.Ping(ctx, readpref.Primary())
}
