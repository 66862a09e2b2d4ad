package services

import "errors"

// Domain error taxonomy. Handlers translate these to HTTP statuses; nothing
// below this layer leaks to the caller.
var (
	// Validation (400)
	ErrEmptyContent = errors.New("content must not be blank")
	ErrEmptyKeyword = errors.New("search keyword must not be blank")
	ErrSelfFollow   = errors.New("cannot follow yourself")

	// Not found (404)
	ErrUserNotFound = errors.New("user not found")
	ErrPostNotFound = errors.New("post not found")

	// Authentication (401). Deliberately the same for unknown user and wrong
	// password so login responses cannot be used as a username oracle.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Authorization (403)
	ErrNotPostOwner = errors.New("caller is not the post owner")

	// Conflict (409)
	ErrUsernameTaken    = errors.New("username already exists")
	ErrEmailTaken       = errors.New("email already exists")
	ErrAlreadyFollowing = errors.New("already following this user")
)
