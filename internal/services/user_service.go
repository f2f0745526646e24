// Package services – UserService
//
// This file implements the UserService, which owns the account lifecycle:
// registration (with password policy and duplicate checks), login and token
// refresh, identity resolution for authenticated requests, listing, and soft
// deletion. Password hashing delegates to the auth package; token minting is
// abstracted behind the TokenIssuer contract so transport and tests stay
// decoupled from the JWT library.
//
// Service-level errors (e.g., ErrDuplicateUser) are returned for predictable
// cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tbourn/go-blog-backend/internal/auth"
	"github.com/tbourn/go-blog-backend/internal/domain"
	"github.com/tbourn/go-blog-backend/internal/repo"
)

// UserRepo defines the repository contract required by UserService.
// Implementations are responsible for persistence of user documents.
type UserRepo interface {
	// Create inserts a new user document.
	Create(ctx context.Context, u *domain.User) (*domain.User, error)

	// ExistsByEmailOrUsername reports whether email or username is taken.
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)

	// FindByID fetches a user by ObjectID.
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)

	// FindByUsername fetches a user by username.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindActiveByEmail fetches a non-deleted user by email.
	FindActiveByEmail(ctx context.Context, email string) (*domain.User, error)

	// StampLogin sets the user's last_login timestamp.
	StampLogin(ctx context.Context, id primitive.ObjectID, t time.Time) error

	// StampRequest sets the user's last_request timestamp.
	StampRequest(ctx context.Context, id primitive.ObjectID, t time.Time) error

	// SoftDelete marks the user deleted.
	SoftDelete(ctx context.Context, id primitive.ObjectID) error

	// List returns a page of users and the selector's total count.
	List(ctx context.Context, params repo.ListParams) ([]domain.User, int64, error)
}

// TokenIssuer mints and verifies token pairs. *auth.TokenManager satisfies it.
type TokenIssuer interface {
	IssuePair(subject string, isAdmin bool) (auth.TokenPair, error)
	ParseAccess(token string) (*auth.Claims, error)
	ParseRefresh(token string) (*auth.Claims, error)
}

// UserService provides account operations: register, login, refresh, resolve,
// list, read, and soft delete.
type UserService struct {
	// Repo is the user repository used by this service.
	Repo UserRepo
	// Tokens mints and verifies JWT pairs.
	Tokens TokenIssuer
	// MinPasswordLen is the minimum accepted password length.
	MinPasswordLen int

	// now is a seam for tests.
	now func() time.Time
}

// NewUserService constructs a UserService with the given collaborators.
func NewUserService(r UserRepo, tokens TokenIssuer, minPasswordLen int) *UserService {
	if minPasswordLen < 1 {
		minPasswordLen = 1
	}
	return &UserService{
		Repo:           r,
		Tokens:         tokens,
		MinPasswordLen: minPasswordLen,
		now:            time.Now,
	}
}

// Register creates a new account. It rejects passwords below the configured
// minimum length (ErrPasswordTooShort) and taken emails/usernames
// (ErrDuplicateUser), then stores a bcrypt hash of the password.
func (s *UserService) Register(ctx context.Context, email, username, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if len(password) < s.MinPasswordLen {
		return nil, ErrPasswordTooShort
	}

	taken, err := s.Repo.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateUser
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Email:            email,
		Username:         username,
		Password:         hash,
		RegistrationDate: s.now().UTC(),
	}
	u, err = s.Repo.Create(ctx, u)
	if errors.Is(err, repo.ErrDuplicate) {
		// Lost the race against a concurrent registration; same outcome.
		return nil, ErrDuplicateUser
	}
	return u, err
}

// Login authenticates by email and password. Unknown or soft-deleted emails
// return ErrUserNotFound; a bad password returns ErrWrongCredentials. On
// success the user's last_login is stamped and a token pair is minted with
// the user id as subject and super_user as the is_admin claim.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, auth.TokenPair, error) {
	u, err := s.Repo.FindActiveByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, auth.TokenPair{}, ErrUserNotFound
	}
	if err != nil {
		return nil, auth.TokenPair{}, err
	}
	if !auth.VerifyPassword(password, u.Password) {
		return nil, auth.TokenPair{}, ErrWrongCredentials
	}

	now := s.now().UTC()
	if err := s.Repo.StampLogin(ctx, u.ID, now); err != nil {
		return nil, auth.TokenPair{}, err
	}
	u.LastLogin = &now

	pair, err := s.Tokens.IssuePair(u.ID.Hex(), u.SuperUser)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh verifies a refresh token and mints a new pair carrying the same
// subject and is_admin claim. No user lookup is performed.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	claims, err := s.Tokens.ParseRefresh(refreshToken)
	if err != nil {
		return auth.TokenPair{}, err
	}
	return s.Tokens.IssuePair(claims.Subject, claims.IsAdmin)
}

// ResolveAccess validates an access token, loads the subject user, and stamps
// last_request as a side effect. It returns auth.ErrInvalidToken for bad
// tokens and ErrUserNotFound when the subject no longer resolves.
func (s *UserService) ResolveAccess(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.Tokens.ParseAccess(accessToken)
	if err != nil {
		return nil, err
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, ErrUserNotFound
	}
	u, err := s.Repo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.Repo.StampRequest(ctx, u.ID, now); err != nil {
		return nil, err
	}
	u.LastRequest = &now
	return u, nil
}

// List returns a page of users plus the total count per the selector
// contract.
func (s *UserService) List(ctx context.Context, params repo.ListParams) ([]domain.User, int64, error) {
	return s.Repo.List(ctx, params)
}

// Get fetches a user by username, or ErrUserNotFound.
func (s *UserService) Get(ctx context.Context, username string) (*domain.User, error) {
	u, err := s.Repo.FindByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// SoftDelete marks the named account deleted. Only the account itself may
// delete it; anyone else gets ErrForbidden.
func (s *UserService) SoftDelete(ctx context.Context, username string, requester *domain.User) error {
	u, err := s.Get(ctx, username)
	if err != nil {
		return err
	}
	if requester == nil || requester.ID != u.ID {
		return ErrForbidden
	}
	return s.Repo.SoftDelete(ctx, u.ID)
}

// IsAdmin re-fetches the user and reports whether super_user is still set.
// Admin-gated routes use this instead of trusting the token claim, so role
// revocations take effect immediately.
func (s *UserService) IsAdmin(ctx context.Context, id primitive.ObjectID) (bool, error) {
	u, err := s.Repo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return false, ErrUserNotFound
	}
	if err != nil {
		return false, err
	}
	return u.SuperUser, nil
}
