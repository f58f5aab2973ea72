package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"conduit/cmd/internal/articles"
)

func (h *Handler) handleGetComments(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := IdentityFrom(r.Context())

	comments, err := h.articles.Comments(r.Context(), chi.URLParam(r, "slug"), viewerID)
	if err != nil {
		if errors.Is(err, articles.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "article not found")
			return
		}
		h.serverError(w, "api.get_comments.fail", err)
		return
	}

	out := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentResponse(c))
	}
	writeJSON(w, http.StatusOK, commentsBody{Comments: out})
}

func (h *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	userID, _ := IdentityFrom(r.Context())

	var req addCommentRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if req.Comment.Body == "" {
		writeUnprocessable(w, "body", "can't be blank")
		return
	}

	comment, err := h.articles.AddComment(r.Context(), chi.URLParam(r, "slug"), userID, req.Comment.Body)
	if err != nil {
		if errors.Is(err, articles.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "article not found")
			return
		}
		h.serverError(w, "api.add_comment.fail", err)
		return
	}

	writeJSON(w, http.StatusOK, commentBody{Comment: toCommentResponse(comment)})
}

func (h *Handler) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, _ := IdentityFrom(r.Context())

	commentID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "comment id must be an integer")
		return
	}

	outcome, err := h.articles.DeleteComment(r.Context(), chi.URLParam(r, "slug"), commentID, userID)
	if err != nil {
		h.serverError(w, "api.delete_comment.fail", err)
		return
	}
	if !h.respondGuardOutcome(w, outcome, "comment not found") {
		return
	}

	writeJSON(w, http.StatusOK, struct{}{})
}
