// Package services defines the business logic for users, posts, and
// analytics. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

// User-related errors.
var (
	// ErrDuplicateUser indicates a registration collided with an existing
	// email or username.
	ErrDuplicateUser = errors.New("user with this email or username already exists")

	// ErrPasswordTooShort is returned when a registration password is below
	// the configured minimum length.
	ErrPasswordTooShort = errors.New("password too short")

	// ErrUserNotFound indicates that the requested user does not exist (or,
	// for login, is soft-deleted).
	ErrUserNotFound = errors.New("user not found")

	// ErrWrongCredentials is returned when a login password does not match.
	ErrWrongCredentials = errors.New("wrong login data")

	// ErrForbidden is returned when an authenticated user attempts an
	// operation reserved for the resource owner or an admin.
	ErrForbidden = errors.New("operation not permitted")
)

// Post-related errors.
var (
	// ErrPostNotFound indicates that the requested post does not exist.
	ErrPostNotFound = errors.New("post not found")

	// ErrAlreadyLiked is returned when a user likes a post they have already
	// liked.
	ErrAlreadyLiked = errors.New("already liked")

	// ErrLikeNotFound is returned when a user unlikes a post they never
	// liked.
	ErrLikeNotFound = errors.New("no like found")
)
