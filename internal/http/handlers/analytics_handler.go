// Analytics HTTP handlers.
//
// This file exposes the read-side analytics endpoints:
//   - GET /api/analytic/likes?date_from&date_to   (per-day like counts, admin)
//   - GET /api/analytic/user-activity/:username   (activity timestamps)
//
// Dates are accepted as YYYY-MM-DD and interpreted as midnight UTC, matching
// how like dates are stored.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-blog-backend/internal/repo"
	"github.com/tbourn/go-blog-backend/internal/services"
)

// dateLayout is the accepted wire format for analytics date filters.
const dateLayout = "2006-01-02"

// AnalyticsService defines the analytics operations consumed by HTTP
// handlers.
type AnalyticsService interface {
	// LikesPerDay returns per-day like counts within the optional day range.
	LikesPerDay(ctx context.Context, from, to *time.Time) ([]repo.DayLikes, error)
	// Activity returns the activity snapshot for a username.
	Activity(ctx context.Context, username string) (*services.UserActivity, error)
}

// AnalyticsHandlers groups the analytics endpoints.
type AnalyticsHandlers struct {
	svc AnalyticsService
}

// NewAnalyticsHandlers constructs AnalyticsHandlers bound to the given
// service.
func NewAnalyticsHandlers(svc AnalyticsService) *AnalyticsHandlers {
	return &AnalyticsHandlers{svc: svc}
}

// Likes returns aggregated per-day like counts, optionally bounded by the
// date_from/date_to query parameters (inclusive).
func (h *AnalyticsHandlers) Likes(c *gin.Context) {
	from, okFrom := queryDate(c, "date_from")
	if !okFrom {
		return
	}
	to, okTo := queryDate(c, "date_to")
	if !okTo {
		return
	}

	rows, err := h.svc.LikesPerDay(c.Request.Context(), from, to)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, rows)
}

// UserActivity returns the last_login/last_request snapshot for a username.
func (h *AnalyticsHandlers) UserActivity(c *gin.Context) {
	act, err := h.svc.Activity(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, act)
}

// queryDate parses an optional YYYY-MM-DD query parameter as midnight UTC.
// A malformed value fails the request with 400 and reports ok=false.
func queryDate(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, name+" must be formatted as YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}
