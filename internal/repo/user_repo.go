// Package repo implements the data persistence layer for domain entities,
// backed by MongoDB. This file provides the repository for the User model.
//
// All methods are context-aware and operate on the users collection held by
// the repository. They follow the "thin repository" approach: no business
// logic, only CRUD persistence and query composition.
//
// Error semantics:
//   - When a user is not found, methods return ErrNotFound
//     (an alias of mongo.ErrNoDocuments).
//   - Unique-index violations on insert surface as ErrDuplicate.
//   - Other driver errors are wrapped and propagated.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tbourn/go-blog-backend/internal/domain"
)

// ErrDuplicate is returned when an insert collides with the unique email or
// username index.
var ErrDuplicate = errors.New("duplicate document")

// UserRepo persists users in the users collection.
type UserRepo struct {
	coll     *mongo.Collection
	selector *Selector[domain.User]
}

// NewUserRepo constructs a UserRepo over the manager's users collection.
// Free-text list queries match against username and email.
func NewUserRepo(m *Manager) *UserRepo {
	coll := m.Users()
	return &UserRepo{
		coll:     coll,
		selector: NewSelector[domain.User](coll, "username", "email"),
	}
}

// Create inserts a new user and returns it with the generated ObjectID set.
// Collisions with the unique email/username indexes return ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	res, err := r.coll.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = id
	}
	return u, nil
}

// ExistsByEmailOrUsername reports whether any user already holds the given
// email or username.
func (r *UserRepo) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"$or": []bson.M{
		{"email": email},
		{"username": username},
	}})
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

// FindByID fetches a user by ObjectID, or ErrNotFound.
func (r *UserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByUsername fetches a user by username, or ErrNotFound.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// FindActiveByEmail fetches a non-deleted user by email, or ErrNotFound.
// Login uses this so soft-deleted accounts cannot authenticate.
func (r *UserRepo) FindActiveByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email, "deleted": false})
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var u domain.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// StampLogin sets last_login for the user.
func (r *UserRepo) StampLogin(ctx context.Context, id primitive.ObjectID, t time.Time) error {
	return r.stamp(ctx, id, "last_login", t)
}

// StampRequest sets last_request for the user.
func (r *UserRepo) StampRequest(ctx context.Context, id primitive.ObjectID, t time.Time) error {
	return r.stamp(ctx, id, "last_request", t)
}

func (r *UserRepo) stamp(ctx context.Context, id primitive.ObjectID, field string, t time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{field: t.UTC()}},
	)
	if err != nil {
		return fmt.Errorf("stamp %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete marks the user deleted without removing the document.
func (r *UserRepo) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"deleted": true}},
	)
	if err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a page of users plus the selector's total count.
func (r *UserRepo) List(ctx context.Context, params ListParams) ([]domain.User, int64, error) {
	return r.selector.List(ctx, bson.M{}, params)
}
