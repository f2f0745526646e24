// User HTTP handlers.
//
// This file exposes REST endpoints for account resources:
//   - POST   /api/users/register   (create account)
//   - POST   /api/users/login      (mint token pair)
//   - GET    /api/users/refresh    (rotate token pair)
//   - GET    /api/users/           (list, selector contract)
//   - GET    /api/users/:username  (read)
//   - DELETE /api/users/:username  (soft delete, self only)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate service errors into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-blog-backend/internal/auth"
	"github.com/tbourn/go-blog-backend/internal/domain"
	"github.com/tbourn/go-blog-backend/internal/http/middleware"
	"github.com/tbourn/go-blog-backend/internal/repo"
	"github.com/tbourn/go-blog-backend/internal/services"
	"github.com/tbourn/go-blog-backend/internal/utils"
)

// UserService defines account operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type UserService interface {
	// Register creates an account after password and uniqueness checks.
	Register(ctx context.Context, email, username, password string) (*domain.User, error)
	// Login authenticates and returns the user plus a fresh token pair.
	Login(ctx context.Context, email, password string) (*domain.User, auth.TokenPair, error)
	// Refresh rotates a token pair given a valid refresh token.
	Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error)
	// List returns a page of users plus the selector's total count.
	List(ctx context.Context, params repo.ListParams) ([]domain.User, int64, error)
	// Get fetches a user by username.
	Get(ctx context.Context, username string) (*domain.User, error)
	// SoftDelete marks the named account deleted (self only).
	SoftDelete(ctx context.Context, username string, requester *domain.User) error
}

//
// DTOs
//

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the JSON payload for logging in.
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ListUsersResponse wraps a page of users and the selector count.
//
// Count is taken before free-text filtering per the selector contract, so it
// can exceed len(Users) when q is supplied.
type ListUsersResponse struct {
	Count int64         `json:"count"`
	Users []domain.User `json:"users"`
}

// listParams parses the q/skip/limit/sort query parameters shared by list
// endpoints. Out-of-range values are normalized inside the selector.
func listParams(c *gin.Context) repo.ListParams {
	return repo.ListParams{
		Query: c.Query("q"),
		Skip:  utils.Atoi64Default(c.Query("skip"), 0),
		Limit: utils.Atoi64Default(c.Query("limit"), 10),
		Sort:  c.Query("sort"),
	}
}

//
// Handlers
//

// UserHandlers groups the account endpoints.
type UserHandlers struct {
	svc UserService
}

// NewUserHandlers constructs UserHandlers bound to the given service.
func NewUserHandlers(svc UserService) *UserHandlers {
	return &UserHandlers{svc: svc}
}

// Register creates an account.
//
// 200 with the created user; 400 on duplicate email/username; 422 when the
// password fails the length policy.
func (h *UserHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	u, err := h.svc.Register(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPasswordTooShort):
			fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, "password too short")
		case errors.Is(err, services.ErrDuplicateUser):
			fail(c, http.StatusBadRequest, ErrCodeConflict, "user with this email or username already exists")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, u)
}

// Login authenticates by email/password and returns a token pair.
//
// 404 for unknown (or soft-deleted) emails; 400 for a wrong password.
func (h *UserHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	_, pair, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		case errors.Is(err, services.ErrWrongCredentials):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "wrong login data")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, pair)
}

// Refresh rotates the token pair presented as a bearer refresh token.
func (h *UserHandlers) Refresh(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "missing bearer token")
		return
	}
	pair, err := h.svc.Refresh(c.Request.Context(), token)
	if err != nil {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid or expired refresh token")
		return
	}
	ok(c, http.StatusOK, pair)
}

// List returns a page of users per the q/skip/limit/sort selector contract.
func (h *UserHandlers) List(c *gin.Context) {
	users, count, err := h.svc.List(c.Request.Context(), listParams(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ListUsersResponse{Count: count, Users: users})
}

// Get returns a single user by username, or 404.
func (h *UserHandlers) Get(c *gin.Context) {
	u, err := h.svc.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, u)
}

// Delete soft-deletes the named account. Only the account itself may do so.
func (h *UserHandlers) Delete(c *gin.Context) {
	err := h.svc.SoftDelete(c.Request.Context(), c.Param("username"), middleware.UserFrom(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		case errors.Is(err, services.ErrForbidden):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "cannot delete another user")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, gin.H{"status": "deleted"})
}
