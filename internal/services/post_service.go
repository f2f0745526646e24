// Package services – PostService
//
// This file implements the PostService, which manages the post lifecycle and
// the embedded like list. Ownership rules (only the author may update or
// delete) are enforced here; the like/unlike uniqueness invariant is enforced
// by the repository's conditional updates, with this service translating the
// outcome into the proper error.
package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tbourn/go-blog-backend/internal/domain"
	"github.com/tbourn/go-blog-backend/internal/repo"
)

// PostRepo defines the repository contract required by PostService.
type PostRepo interface {
	// Create inserts a new post document.
	Create(ctx context.Context, p *domain.Post) (*domain.Post, error)

	// Get fetches a post by ObjectID.
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Post, error)

	// Update sets the non-nil fields of the post.
	Update(ctx context.Context, id primitive.ObjectID, title, text *string) error

	// Delete removes the post document.
	Delete(ctx context.Context, id primitive.ObjectID) error

	// AddLike appends a like iff the user has not liked the post yet.
	AddLike(ctx context.Context, postID primitive.ObjectID, like domain.Like) (bool, error)

	// RemoveLike pulls the user's like, reporting whether one existed.
	RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error)

	// List returns a page of posts and the selector's total count.
	List(ctx context.Context, params repo.ListParams) ([]domain.Post, int64, error)
}

// PostService provides post CRUD plus like/unlike operations.
type PostService struct {
	// Repo is the post repository used by this service.
	Repo PostRepo

	// now is a seam for tests.
	now func() time.Time
}

// NewPostService constructs a PostService over the given repository.
func NewPostService(r PostRepo) *PostService {
	return &PostService{Repo: r, now: time.Now}
}

// Create inserts a new post owned by owner.
func (s *PostService) Create(ctx context.Context, owner primitive.ObjectID, title, text string) (*domain.Post, error) {
	p := &domain.Post{
		Owner:     owner,
		Title:     title,
		Text:      text,
		CreatedAt: s.now().UTC(),
		Likes:     []domain.Like{},
	}
	return s.Repo.Create(ctx, p)
}

// List returns a page of posts plus the total count per the selector
// contract.
func (s *PostService) List(ctx context.Context, params repo.ListParams) ([]domain.Post, int64, error) {
	return s.Repo.List(ctx, params)
}

// Get fetches a post by id, or ErrPostNotFound.
func (s *PostService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Post, error) {
	p, err := s.Repo.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	return p, err
}

// Update applies a partial {title, text} change to a post owned by requester.
// Non-owners get ErrForbidden. The updated post is returned.
func (s *PostService) Update(ctx context.Context, id primitive.ObjectID, requester *domain.User, title, text *string) (*domain.Post, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if requester == nil || p.Owner != requester.ID {
		return nil, ErrForbidden
	}
	if err := s.Repo.Update(ctx, id, title, text); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a post owned by requester. Non-owners get ErrForbidden.
func (s *PostService) Delete(ctx context.Context, id primitive.ObjectID, requester *domain.User) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if requester == nil || p.Owner != requester.ID {
		return ErrForbidden
	}
	err = s.Repo.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrPostNotFound
	}
	return err
}

// Like appends userID's like to the post and returns the updated post.
// A second like by the same user yields ErrAlreadyLiked, including under
// concurrency: the repository's conditional update decides, not a
// read-then-write check here.
func (s *PostService) Like(ctx context.Context, id, userID primitive.ObjectID) (*domain.Post, error) {
	added, err := s.Repo.AddLike(ctx, id, domain.NewLike(userID, s.now()))
	if err != nil {
		return nil, err
	}
	if !added {
		// Missing post and duplicate like both leave the document untouched;
		// a follow-up read tells them apart.
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyLiked
	}
	return s.Get(ctx, id)
}

// Unlike removes userID's like from the post and returns the updated post.
// Unliking a post never liked yields ErrLikeNotFound.
func (s *PostService) Unlike(ctx context.Context, id, userID primitive.ObjectID) (*domain.Post, error) {
	removed, err := s.Repo.RemoveLike(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !removed {
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrLikeNotFound
	}
	return s.Get(ctx, id)
}
