package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"conduit/cmd/identity"
)

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := IdentityFrom(r.Context())

	profile, err := h.users.GetProfile(r.Context(), chi.URLParam(r, "username"), viewerID)
	if err != nil {
		h.respondProfileError(w, "api.get_profile.fail", err)
		return
	}
	writeJSON(w, http.StatusOK, profileBody{Profile: toProfileResponse(profile)})
}

func (h *Handler) handleFollow(w http.ResponseWriter, r *http.Request) {
	userID, _ := IdentityFrom(r.Context())

	profile, err := h.users.Follow(r.Context(), chi.URLParam(r, "username"), userID)
	if err != nil {
		h.respondProfileError(w, "api.follow.fail", err)
		return
	}
	writeJSON(w, http.StatusOK, profileBody{Profile: toProfileResponse(profile)})
}

func (h *Handler) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	userID, _ := IdentityFrom(r.Context())

	profile, err := h.users.Unfollow(r.Context(), chi.URLParam(r, "username"), userID)
	if err != nil {
		h.respondProfileError(w, "api.unfollow.fail", err)
		return
	}
	writeJSON(w, http.StatusOK, profileBody{Profile: toProfileResponse(profile)})
}

func (h *Handler) respondProfileError(w http.ResponseWriter, op string, err error) {
	switch {
	case identity.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", "profile not found")
	case identity.IsForbidden(err):
		writeError(w, http.StatusForbidden, "forbidden", "cannot follow yourself")
	default:
		h.serverError(w, op, err)
	}
}
