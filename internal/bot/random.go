package bot

import (
	"fmt"
	"time"
)

// UserSource produces user payloads for the registration stage.
type UserSource interface {
	NextUser() UserPayload
}

// PostSource produces post payloads; mixin is appended to the title so
// generated posts stay distinguishable.
type PostSource interface {
	NextPost(mixin string) PostPayload
}

// TimeUserSource derives unique credentials from the current timestamp plus a
// monotonically increasing counter. The password is fixed: these accounts are
// throwaway load-test identities.
type TimeUserSource struct {
	last int
	now  func() time.Time
}

// NewTimeUserSource constructs a TimeUserSource using the wall clock.
func NewTimeUserSource() *TimeUserSource {
	return &TimeUserSource{now: time.Now}
}

// NextUser returns a fresh unique user payload.
func (s *TimeUserSource) NextUser() UserPayload {
	mixin := fmt.Sprintf("%d%d", s.now().UnixNano(), s.last)
	s.last++
	return UserPayload{
		Email:    fmt.Sprintf("user%s@bot.com", mixin),
		Username: "user" + mixin,
		Password: "test",
	}
}

// SimplePostSource emits fixed-text posts whose titles carry the mixin.
type SimplePostSource struct{}

// NextPost returns a post payload titled "Post<mixin>".
func (SimplePostSource) NextPost(mixin string) PostPayload {
	return PostPayload{
		Title: "Post" + mixin,
		Text:  "Some text here.",
	}
}
