package articles

import (
	"context"
	"time"

	"conduit/cmd/identity"
	"conduit/cmd/internal/ownership"
)

// Article is the full article view as seen by an optional viewer.
type Article struct {
	Slug           string
	Title          string
	Description    string
	Body           string
	TagList        []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Favorited      bool
	FavoritesCount int64
	Author         identity.Profile
}

// Comment is a single article comment with its author profile.
type Comment struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Body      string
	Author    identity.Profile
}

// CreateInput describes a new article. Slug is derived by the caller and
// TagList is expected pre-sorted.
type CreateInput struct {
	AuthorID    string
	Slug        string
	Title       string
	Description string
	Body        string
	TagList     []string
}

// UpdateInput is a partial update; nil fields keep their stored value.
// Slug must be set exactly when Title is.
type UpdateInput struct {
	Slug        *string
	Title       *string
	Description *string
	Body        *string
}

// ListQuery filters the global article list. Cursor pages backwards through
// created_at; at most 20 rows are returned.
type ListQuery struct {
	Tag         *string
	Author      *string
	FavoritedBy *string
	Cursor      *time.Time
}

// FeedQuery pages the personal feed (articles by followed authors).
type FeedQuery struct {
	Cursor *time.Time
}

// Store is the article persistence boundary.
//
// viewerID parameters may be empty (anonymous viewer). Update, Delete and
// DeleteComment are owner-guarded: they mutate and classify in one statement
// and never touch rows the owner does not hold.
type Store interface {
	Create(ctx context.Context, in CreateInput) (Article, error)
	GetBySlug(ctx context.Context, slug, viewerID string) (Article, error)
	Update(ctx context.Context, slug, ownerID string, in UpdateInput) (Article, ownership.Outcome, error)
	Delete(ctx context.Context, slug, ownerID string) (ownership.Outcome, error)

	Favorite(ctx context.Context, slug, userID string) (Article, error)
	Unfavorite(ctx context.Context, slug, userID string) (Article, error)

	List(ctx context.Context, q ListQuery, viewerID string) ([]Article, error)
	Feed(ctx context.Context, q FeedQuery, userID string) ([]Article, error)
	Tags(ctx context.Context) ([]string, error)

	Comments(ctx context.Context, slug, viewerID string) ([]Comment, error)
	AddComment(ctx context.Context, slug, authorID, body string) (Comment, error)
	DeleteComment(ctx context.Context, slug string, commentID int64, ownerID string) (ownership.Outcome, error)
}
