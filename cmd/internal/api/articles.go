package api

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"conduit/cmd/internal/articles"
	"conduit/cmd/internal/ownership"
)

func (h *Handler) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	userID, _ := IdentityFrom(r.Context())

	var req createArticleRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	title := strings.TrimSpace(req.Article.Title)
	switch {
	case title == "":
		writeUnprocessable(w, "title", "can't be blank")
		return
	case req.Article.Description == "":
		writeUnprocessable(w, "description", "can't be blank")
		return
	case req.Article.Body == "":
		writeUnprocessable(w, "body", "can't be blank")
		return
	}

	tags := slices.Clone(req.Article.TagList)
	slices.Sort(tags)
	tags = slices.Compact(tags)

	article, err := h.articles.Create(r.Context(), articles.CreateInput{
		AuthorID:    userID,
		Slug:        slugify(title),
		Title:       title,
		Description: req.Article.Description,
		Body:        req.Article.Body,
		TagList:     tags,
	})
	if err != nil {
		if errors.Is(err, articles.ErrDuplicateSlug) {
			writeUnprocessable(w, "slug", "duplicate article slug")
			return
		}
		h.serverError(w, "api.create_article.fail", err)
		return
	}

	writeJSON(w, http.StatusOK, articleBody{Article: toArticleResponse(article)})
}

func (h *Handler) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := IdentityFrom(r.Context())

	article, err := h.articles.GetBySlug(r.Context(), chi.URLParam(r, "slug"), viewerID)
	if err != nil {
		if errors.Is(err, articles.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "article not found")
			return
		}
		h.serverError(w, "api.get_article.fail", err)
		return
	}
	writeJSON(w, http.StatusOK, articleBody{Article: toArticleResponse(article)})
}

func (h *Handler) handleUpdateArticle(w http.ResponseWriter, r *http.Request) {
	userID, _ := IdentityFrom(r.Context())

	var req updateArticleRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	in := articles.UpdateInput{
		Title:       req.Article.Title,
		Description: req.Article.Description,
		Body:        req.Article.Body,
	}
	if in.Title != nil {
		slug := slugify(*in.Title)
		in.Slug = &slug
	}

	article, outcome, err := h.articles.Update(r.Context(), chi.URLParam(r, "slug"), userID, in)
	if err != nil {
		if errors.Is(err, articles.ErrDuplicateSlug) {
			writeUnprocessable(w, "slug", "duplicate article slug")
			return
		}
		h.serverError(w, "api.update_article.fail", err)
		return
	}
	if !h.respondGuardOutcome(w, outcome, "article not found") {
		return
	}

	writeJSON(w, http.StatusOK, articleBody{Article: toArticleResponse(article)})
}

func (h *Handler) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	userID, _ := IdentityFrom(r.Context())

	outcome, err := h.articles.Delete(r.Context(), chi.URLParam(r, "slug"), userID)
	if err != nil {
		h.serverError(w, "api.delete_article.fail", err)
		return
	}
	if !h.respondGuardOutcome(w, outcome, "article not found") {
		return
	}

	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *Handler) handleFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _ := IdentityFrom(r.Context())

	article, err := h.articles.Favorite(r.Context(), chi.URLParam(r, "slug"), userID)
	if err != nil {
		if errors.Is(err, articles.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "article not found")
			return
		}
		h.serverError(w, "api.favorite.fail", err)
		return
	}
	writeJSON(w, http.StatusOK, articleBody{Article: toArticleResponse(article)})
}

func (h *Handler) handleUnfavorite(w http.ResponseWriter, r *http.Request) {
	userID, _ := IdentityFrom(r.Context())

	article, err := h.articles.Unfavorite(r.Context(), chi.URLParam(r, "slug"), userID)
	if err != nil {
		if errors.Is(err, articles.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "article not found")
			return
		}
		h.serverError(w, "api.unfavorite.fail", err)
		return
	}
	writeJSON(w, http.StatusOK, articleBody{Article: toArticleResponse(article)})
}

func (h *Handler) handleTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.articles.Tags(r.Context())
	if err != nil {
		h.serverError(w, "api.tags.fail", err)
		return
	}
	writeJSON(w, http.StatusOK, tagsBody{Tags: tags})
}

// respondGuardOutcome answers the non-success guard outcomes; it reports
// whether the caller may proceed with the success response.
func (h *Handler) respondGuardOutcome(w http.ResponseWriter, outcome ownership.Outcome, missingMsg string) bool {
	switch outcome {
	case ownership.NotFound:
		writeError(w, http.StatusNotFound, "not_found", missingMsg)
		return false
	case ownership.Forbidden:
		writeError(w, http.StatusForbidden, "forbidden", "not the resource owner")
		return false
	default:
		return true
	}
}

// slugify lowercases the title and collapses every non-alphanumeric run into
// a single hyphen.
func slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}

	return b.String()
}
