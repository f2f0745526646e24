// Package domain defines the persistence models for users, posts, and
// embedded likes. These types are mapped with BSON struct tags and form the
// core data layer of the blog application.
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account. Users are never physically removed:
// deletion flips the Deleted flag so historical posts and likes stay
// attributable.
//
// Fields:
//   - ID: Mongo ObjectID primary key.
//   - Email / Username: unique login identifiers (unique indexes on both).
//   - Password: bcrypt hash; excluded from JSON serialization.
//   - LastLogin: stamped on successful login.
//   - LastRequest: stamped every time an authenticated request resolves this user.
//   - RegistrationDate: stamped at registration.
//   - SuperUser: grants access to admin-gated routes.
//   - Deleted: soft deletion marker.
type User struct {
	ID               primitive.ObjectID `json:"id"                bson:"_id,omitempty"`
	Email            string             `json:"email"             bson:"email"`
	Username         string             `json:"username"          bson:"username"`
	Password         string             `json:"-"                 bson:"password"`
	LastLogin        *time.Time         `json:"last_login"        bson:"last_login,omitempty"`
	LastRequest      *time.Time         `json:"last_request"      bson:"last_request,omitempty"`
	RegistrationDate time.Time          `json:"registration_date" bson:"registration_date"`
	SuperUser        bool               `json:"-"                 bson:"super_user"`
	Deleted          bool               `json:"deleted"           bson:"deleted"`
}

// Like records that a user liked a post. Likes are embedded in the owning
// post document, so appending or removing one is a single-document update.
//
// Date is truncated to midnight UTC; the analytics pipeline groups likes by
// this field to produce per-day counts.
type Like struct {
	UserID primitive.ObjectID `json:"user_id" bson:"user_id"`
	Date   time.Time          `json:"date"    bson:"date"`
}

// NewLike builds a Like for userID dated at the midnight UTC of now.
func NewLike(userID primitive.ObjectID, now time.Time) Like {
	return Like{UserID: userID, Date: DayOf(now)}
}

// DayOf truncates t to midnight UTC.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Post represents a blog entry owned by a user, with its likes embedded as an
// ordered list.
//
// Fields:
//   - ID: Mongo ObjectID primary key.
//   - Owner: ObjectID of the authoring user.
//   - Title / Text: content.
//   - CreatedAt: stamped at creation (UTC).
//   - Likes: embedded likes; at most one per user, enforced by conditional
//     updates in the repository rather than a read-then-write check.
type Post struct {
	ID        primitive.ObjectID `json:"id"         bson:"_id,omitempty"`
	Owner     primitive.ObjectID `json:"owner"      bson:"owner"`
	Title     string             `json:"title"      bson:"title"`
	Text      string             `json:"text"       bson:"text"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	Likes     []Like             `json:"likes"      bson:"likes"`
}

// LikedBy reports whether userID already appears in the post's likes.
func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}
