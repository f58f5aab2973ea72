package api

import (
	"net/http"
	"time"

	"conduit/cmd/internal/articles"
)

func (h *Handler) handleListArticles(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := IdentityFrom(r.Context())

	q := articles.ListQuery{
		Tag:         queryParam(r, "tag"),
		Author:      queryParam(r, "author"),
		FavoritedBy: queryParam(r, "favorited"),
	}

	cursor, err := cursorParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "before must be an RFC 3339 timestamp")
		return
	}
	q.Cursor = cursor

	list, err := h.articles.List(r.Context(), q, viewerID)
	if err != nil {
		h.serverError(w, "api.list_articles.fail", err)
		return
	}
	writeJSON(w, http.StatusOK, toArticlesBody(list))
}

func (h *Handler) handleFeed(w http.ResponseWriter, r *http.Request) {
	userID, _ := IdentityFrom(r.Context())

	cursor, err := cursorParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "before must be an RFC 3339 timestamp")
		return
	}

	list, err := h.articles.Feed(r.Context(), articles.FeedQuery{Cursor: cursor}, userID)
	if err != nil {
		h.serverError(w, "api.feed.fail", err)
		return
	}
	writeJSON(w, http.StatusOK, toArticlesBody(list))
}

func queryParam(r *http.Request, name string) *string {
	if !r.URL.Query().Has(name) {
		return nil
	}
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	return &v
}

// cursorParam parses the "before" pagination cursor; pages walk backwards
// through created_at.
func cursorParam(r *http.Request) (*time.Time, error) {
	raw := queryParam(r, "before")
	if raw == nil {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
