package api

import (
	"net/http"
	"strings"
	"time"

	"conduit/cmd/identity"
)

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	username := strings.TrimSpace(req.User.Username)
	email := strings.TrimSpace(req.User.Email)
	switch {
	case username == "":
		writeUnprocessable(w, "username", "can't be blank")
		return
	case email == "":
		writeUnprocessable(w, "email", "can't be blank")
		return
	case req.User.Password == "":
		writeUnprocessable(w, "password", "can't be blank")
		return
	}

	hash, err := h.hasher.Hash(req.User.Password)
	if err != nil {
		h.serverError(w, "api.register.hash.fail", err)
		return
	}

	user, err := h.users.CreateUser(r.Context(), identity.CreateUserInput{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if field, ok := identity.ConflictField(err); ok {
			writeUnprocessable(w, field, field+" taken")
			return
		}
		h.serverError(w, "api.register.fail", err)
		return
	}

	h.respondUser(w, user)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	userAuth, err := h.users.GetUserByEmail(r.Context(), strings.TrimSpace(req.User.Email))
	if err != nil {
		if identity.IsNotFound(err) {
			// Timing resistance: verify against a dummy credential so a
			// missing account costs the same as a wrong password.
			if h.dummyHash != "" {
				_, _ = h.hasher.Verify(h.dummyHash, req.User.Password)
			}
			writeUnprocessable(w, "email", "does not exist")
			return
		}
		h.serverError(w, "api.login.fail", err)
		return
	}

	ok, err := h.hasher.Verify(userAuth.PasswordHash, req.User.Password)
	if err != nil {
		h.serverError(w, "api.login.verify.fail", err)
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		return
	}

	h.respondUser(w, userAuth.User)
}

func (h *Handler) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := IdentityFrom(r.Context())

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		if identity.IsNotFound(err) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "user no longer exists")
			return
		}
		h.serverError(w, "api.current_user.fail", err)
		return
	}

	h.respondUser(w, user)
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := IdentityFrom(r.Context())

	var req updateUserRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	in := identity.UpdateUserInput{
		Email:    req.User.Email,
		Username: req.User.Username,
		Bio:      req.User.Bio,
		Image:    req.User.Image,
	}
	if req.User.Password != nil {
		hash, err := h.hasher.Hash(*req.User.Password)
		if err != nil {
			h.serverError(w, "api.update_user.hash.fail", err)
			return
		}
		in.PasswordHash = &hash
	}

	// An empty update is a no-op read.
	if in.Email == nil && in.Username == nil && in.PasswordHash == nil && in.Bio == nil && in.Image == nil {
		h.handleCurrentUser(w, r)
		return
	}

	user, err := h.users.UpdateUser(r.Context(), userID, in)
	if err != nil {
		if field, ok := identity.ConflictField(err); ok {
			writeUnprocessable(w, field, field+" taken")
			return
		}
		h.serverError(w, "api.update_user.fail", err)
		return
	}

	h.respondUser(w, user)
}

// respondUser writes the user envelope with a freshly issued token.
func (h *Handler) respondUser(w http.ResponseWriter, user identity.User) {
	tok, err := h.codec.Issue(user.ID, time.Now().UTC())
	if err != nil {
		h.serverError(w, "api.issue_token.fail", err)
		return
	}
	writeJSON(w, http.StatusOK, userBody{User: toUserResponse(user, tok)})
}
