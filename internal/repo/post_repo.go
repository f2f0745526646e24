// Package repo implements the data persistence layer for domain entities,
// backed by MongoDB. This file provides the repository for the Post model.
//
// Likes are embedded in the post document, so the like/unlike operations are
// single-document conditional updates: the filter carries the uniqueness
// condition and Mongo's per-document atomicity guarantees the at-most-one-
// like-per-user invariant even under concurrent requests.
package repo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tbourn/go-blog-backend/internal/domain"
)

// PostRepo persists posts in the posts collection.
type PostRepo struct {
	coll     *mongo.Collection
	selector *Selector[domain.Post]
}

// NewPostRepo constructs a PostRepo over the manager's posts collection.
// Free-text list queries match against title and text.
func NewPostRepo(m *Manager) *PostRepo {
	coll := m.Posts()
	return &PostRepo{
		coll:     coll,
		selector: NewSelector[domain.Post](coll, "title", "text"),
	}
}

// Create inserts a new post and returns it with the generated ObjectID set.
func (r *PostRepo) Create(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = id
	}
	return p, nil
}

// Get fetches a post by ObjectID, or ErrNotFound.
func (r *PostRepo) Get(ctx context.Context, id primitive.ObjectID) (*domain.Post, error) {
	var p domain.Post
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &p, nil
}

// Update sets the non-nil fields of the post. A call with nothing to change
// is a no-op. Returns ErrNotFound when the post does not exist.
func (r *PostRepo) Update(ctx context.Context, id primitive.ObjectID, title, text *string) error {
	set := bson.M{}
	if title != nil {
		set["title"] = *title
	}
	if text != nil {
		set["text"] = *text
	}
	if len(set) == 0 {
		return nil
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the post document. Returns ErrNotFound when nothing was
// deleted.
func (r *PostRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddLike appends like to the post iff its user has not liked it yet. The
// uniqueness condition lives in the update filter, so two concurrent calls
// for the same user cannot both succeed. It reports whether the like was
// added; added == false means the post is missing or already liked (callers
// disambiguate with Get).
func (r *PostRepo) AddLike(ctx context.Context, postID primitive.ObjectID, like domain.Like) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": postID, "likes.user_id": bson.M{"$ne": like.UserID}},
		bson.M{"$push": bson.M{"likes": like}},
	)
	if err != nil {
		return false, fmt.Errorf("add like: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

// RemoveLike pulls the user's like from the post, reporting whether one was
// removed. removed == false means the post is missing or carried no like by
// this user.
func (r *PostRepo) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$pull": bson.M{"likes": bson.M{"user_id": userID}}},
	)
	if err != nil {
		return false, fmt.Errorf("remove like: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

// List returns a page of posts plus the selector's total count.
func (r *PostRepo) List(ctx context.Context, params ListParams) ([]domain.Post, int64, error) {
	return r.selector.List(ctx, bson.M{}, params)
}
