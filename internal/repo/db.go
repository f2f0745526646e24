// Package repo implements the data persistence layer for domain entities,
// backed by MongoDB. This file provides client bootstrapping: connecting,
// pinging, index creation, and shutdown.
package repo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names used across the application.
const (
	CollectionUsers = "users"
	CollectionPosts = "posts"
)

// ErrNotFound is returned when a requested document does not exist.
// It aliases mongo.ErrNoDocuments for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = mongo.ErrNoDocuments

// Manager owns the MongoDB client and the configured database handle. It is
// constructed once at startup and closed at shutdown; all repositories hang
// off its collections.
type Manager struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to MongoDB at uri, verifies connectivity with a ping, and
// returns a Manager bound to the named database.
func Open(ctx context.Context, uri, database string) (*Manager, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Manager{client: client, db: client.Database(database)}, nil
}

// Database returns the configured database handle.
func (m *Manager) Database() *mongo.Database { return m.db }

// Collection returns a collection handle for the given name.
func (m *Manager) Collection(name string) *mongo.Collection { return m.db.Collection(name) }

// Users returns the users collection handle.
func (m *Manager) Users() *mongo.Collection { return m.Collection(CollectionUsers) }

// Posts returns the posts collection handle.
func (m *Manager) Posts() *mongo.Collection { return m.Collection(CollectionPosts) }

// EnsureIndexes creates the foundational indexes: unique email and username
// on users, and owner plus likes.date on posts for list and analytics
// queries. Collections are created implicitly if they do not exist yet.
func (m *Manager) EnsureIndexes(ctx context.Context) error {
	if m == nil || m.db == nil {
		return errors.New("store manager is not initialized")
	}

	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("username_unique").SetUnique(true),
		},
	}
	if _, err := m.Users().Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("create users indexes: %w", err)
	}

	postIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner", Value: 1}},
			Options: options.Index().SetName("owner_idx"),
		},
		{
			Keys:    bson.D{{Key: "likes.date", Value: 1}},
			Options: options.Index().SetName("likes_date_idx"),
		},
	}
	if _, err := m.Posts().Indexes().CreateMany(ctx, postIndexes); err != nil {
		return fmt.Errorf("create posts indexes: %w", err)
	}

	return nil
}

// Close disconnects the Mongo client.
func (m *Manager) Close(ctx context.Context) error {
	if m == nil || m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}
