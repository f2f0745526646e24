// Post HTTP handlers.
//
// This file exposes REST endpoints for post resources:
//   - GET    /api/posts/            (list, selector contract)
//   - POST   /api/posts/            (create)
//   - GET    /api/posts/:id         (read)
//   - PUT    /api/posts/:id         (partial update, owner only)
//   - DELETE /api/posts/:id         (delete, owner only)
//   - POST   /api/posts/:id/like    (like; duplicate → 400)
//   - POST   /api/posts/:id/unlike  (unlike; never liked → 400)
//
// All routes sit behind RequireUser, so every handler can rely on a resolved
// identity in the Gin context.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tbourn/go-blog-backend/internal/domain"
	"github.com/tbourn/go-blog-backend/internal/http/middleware"
	"github.com/tbourn/go-blog-backend/internal/repo"
	"github.com/tbourn/go-blog-backend/internal/services"
)

// PostService defines post lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type PostService interface {
	// Create inserts a new post owned by owner.
	Create(ctx context.Context, owner primitive.ObjectID, title, text string) (*domain.Post, error)
	// List returns a page of posts plus the selector's total count.
	List(ctx context.Context, params repo.ListParams) ([]domain.Post, int64, error)
	// Get fetches a post by id.
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Post, error)
	// Update applies a partial change to an owned post.
	Update(ctx context.Context, id primitive.ObjectID, requester *domain.User, title, text *string) (*domain.Post, error)
	// Delete removes an owned post.
	Delete(ctx context.Context, id primitive.ObjectID, requester *domain.User) error
	// Like appends the user's like, enforcing at most one per user.
	Like(ctx context.Context, id, userID primitive.ObjectID) (*domain.Post, error)
	// Unlike removes the user's like.
	Unlike(ctx context.Context, id, userID primitive.ObjectID) (*domain.Post, error)
}

//
// DTOs
//

// CreatePostRequest is the JSON payload for creating a post.
type CreatePostRequest struct {
	Title string `json:"title" binding:"required"`
	Text  string `json:"text"  binding:"required"`
}

// UpdatePostRequest is the JSON payload for a partial post update. Absent
// fields are left untouched.
type UpdatePostRequest struct {
	Title *string `json:"title"`
	Text  *string `json:"text"`
}

// ListPostsResponse wraps a page of posts and the selector count.
type ListPostsResponse struct {
	Count int64         `json:"count"`
	Posts []domain.Post `json:"posts"`
}

//
// Handlers
//

// PostHandlers groups the post endpoints.
type PostHandlers struct {
	svc PostService
}

// NewPostHandlers constructs PostHandlers bound to the given service.
func NewPostHandlers(svc PostService) *PostHandlers {
	return &PostHandlers{svc: svc}
}

// postID parses the :id path parameter, failing the request with 400 when it
// is not a valid ObjectID hex.
func postID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "post id must be a valid object id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// List returns a page of posts per the q/skip/limit/sort selector contract.
func (h *PostHandlers) List(c *gin.Context) {
	posts, count, err := h.svc.List(c.Request.Context(), listParams(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ListPostsResponse{Count: count, Posts: posts})
}

// Create inserts a new post owned by the authenticated user.
func (h *PostHandlers) Create(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "title and text are required")
		return
	}
	u := middleware.UserFrom(c)
	if u == nil {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "missing identity")
		return
	}
	p, err := h.svc.Create(c.Request.Context(), u.ID, req.Title, req.Text)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}

// Get returns a single post by id, or 404.
func (h *PostHandlers) Get(c *gin.Context) {
	id, okID := postID(c)
	if !okID {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.failPost(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// Update applies a partial {title, text} change to an owned post.
func (h *PostHandlers) Update(c *gin.Context) {
	id, okID := postID(c)
	if !okID {
		return
	}
	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	p, err := h.svc.Update(c.Request.Context(), id, middleware.UserFrom(c), req.Title, req.Text)
	if err != nil {
		h.failPost(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// Delete removes an owned post.
func (h *PostHandlers) Delete(c *gin.Context) {
	id, okID := postID(c)
	if !okID {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, middleware.UserFrom(c)); err != nil {
		h.failPost(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"status": "deleted"})
}

// Like appends the authenticated user's like and returns the updated post.
// Liking twice yields 400.
func (h *PostHandlers) Like(c *gin.Context) {
	id, okID := postID(c)
	if !okID {
		return
	}
	u := middleware.UserFrom(c)
	if u == nil {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "missing identity")
		return
	}
	p, err := h.svc.Like(c.Request.Context(), id, u.ID)
	if err != nil {
		h.failPost(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// Unlike removes the authenticated user's like and returns the updated post.
// Unliking a never-liked post yields 400.
func (h *PostHandlers) Unlike(c *gin.Context) {
	id, okID := postID(c)
	if !okID {
		return
	}
	u := middleware.UserFrom(c)
	if u == nil {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "missing identity")
		return
	}
	p, err := h.svc.Unlike(c.Request.Context(), id, u.ID)
	if err != nil {
		h.failPost(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// failPost maps post service errors onto the HTTP taxonomy.
func (h *PostHandlers) failPost(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPostNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "post not found")
	case errors.Is(err, services.ErrForbidden):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "not the post owner")
	case errors.Is(err, services.ErrAlreadyLiked):
		fail(c, http.StatusBadRequest, ErrCodeConflict, "already liked")
	case errors.Is(err, services.ErrLikeNotFound):
		fail(c, http.StatusBadRequest, ErrCodeConflict, "no like found")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
