// Package api exposes the public HTTP surface: user registration and login,
// the current-user endpoints, profiles and follows, articles with favorites
// and comments, and the tag list.
//
// Authentication is stateless: handlers read the caller identity that the
// RequireAuth/MaybeAuth middleware decoded from the Authorization header.
// Handlers never check resource ownership themselves; owner-guarded writes
// are classified by the store in the same statement that mutates.
package api
