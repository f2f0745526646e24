// Package services – AnalyticsService
//
// Thin read-side service over the like aggregation pipeline and per-user
// activity timestamps.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/tbourn/go-blog-backend/internal/repo"
)

// LikesAggregator defines the aggregation contract required by
// AnalyticsService.
type LikesAggregator interface {
	// LikesPerDay returns per-day like counts, optionally bounded by the
	// inclusive [from, to] day range.
	LikesPerDay(ctx context.Context, from, to *time.Time) ([]repo.DayLikes, error)
}

// UserActivity is the activity snapshot returned for a single user.
type UserActivity struct {
	LastLogin   *time.Time `json:"last_login"`
	LastRequest *time.Time `json:"last_request"`
}

// AnalyticsService answers the analytics endpoints: per-day like counts and
// per-user activity timestamps.
type AnalyticsService struct {
	// Likes runs the like aggregation.
	Likes LikesAggregator
	// Users looks up activity timestamps.
	Users UserRepo
}

// NewAnalyticsService constructs an AnalyticsService over the given
// repositories.
func NewAnalyticsService(likes LikesAggregator, users UserRepo) *AnalyticsService {
	return &AnalyticsService{Likes: likes, Users: users}
}

// LikesPerDay returns per-day like counts within the optional day range.
func (s *AnalyticsService) LikesPerDay(ctx context.Context, from, to *time.Time) ([]repo.DayLikes, error) {
	return s.Likes.LikesPerDay(ctx, from, to)
}

// Activity returns the last_login/last_request snapshot for username, or
// ErrUserNotFound.
func (s *AnalyticsService) Activity(ctx context.Context, username string) (*UserActivity, error) {
	u, err := s.Users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &UserActivity{LastLogin: u.LastLogin, LastRequest: u.LastRequest}, nil
}
