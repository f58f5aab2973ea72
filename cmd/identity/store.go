package identity

import "context"

// User is the canonical security principal. ID is an opaque, stable ULID;
// this is the value that rides inside tokens as the subject.
type User struct {
	ID       string
	Username string
	Email    string
	Bio      string
	Image    *string
}

// UserAuth is a User plus the stored credential, returned only on login paths.
// PasswordHash is opaque to this package; security/password owns its format.
type UserAuth struct {
	User
	PasswordHash string
}

// Profile is the public view of a user, as seen by an optional viewer.
type Profile struct {
	Username  string
	Bio       string
	Image     *string
	Following bool
}

// CreateUserInput describes a registration. PasswordHash must already be
// derived; this package never sees plaintext.
type CreateUserInput struct {
	Username     string
	Email        string
	PasswordHash string
}

// UpdateUserInput is a partial update; nil fields keep their stored value.
type UpdateUserInput struct {
	Email        *string
	Username     *string
	PasswordHash *string
	Bio          *string
	Image        *string
}

// Store is the account/social-graph persistence boundary.
//
// viewerID parameters may be empty, meaning an anonymous viewer; Following is
// then always false.
type Store interface {
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)
	GetUserByEmail(ctx context.Context, email string) (UserAuth, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	UpdateUser(ctx context.Context, id string, in UpdateUserInput) (User, error)

	GetProfile(ctx context.Context, username, viewerID string) (Profile, error)
	// Follow is idempotent; following an already-followed user succeeds.
	// Following yourself fails with ErrForbidden.
	Follow(ctx context.Context, username, followerID string) (Profile, error)
	// Unfollow is idempotent; unfollowing a user you don't follow succeeds.
	Unfollow(ctx context.Context, username, followerID string) (Profile, error)
}
