package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo opens a connection and returns the client. Caller should call client.Disconnect(ctx).
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	clientOpts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique indexes the application relies on:
// users.clerkId, users.email and claims.claimNumber. Index creation is
// idempotent so this is safe to run on every startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	users := db.Collection("users")
	userIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "clerkId", Value: 1}}, Options: options.Index().SetUnique(true)},
		// partial: users provisioned during a Backend API outage have no email
		// field yet and must not collide with each other
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).
			SetPartialFilterExpression(bson.D{{Key: "email", Value: bson.D{{Key: "$type", Value: "string"}}}})},
	}
	if _, err := users.Indexes().CreateMany(ctx, userIdx); err != nil {
		return fmt.Errorf("ensure user indexes: %w", err)
	}

	claims := db.Collection("claims")
	claimIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "claimNumber", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := claims.Indexes().CreateOne(ctx, claimIdx); err != nil {
		return fmt.Errorf("ensure claim indexes: %w", err)
	}
	return nil
}
