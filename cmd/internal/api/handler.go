package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"conduit/cmd/identity"
	"conduit/cmd/internal/articles"
	"conduit/cmd/security/password"
	"conduit/cmd/security/token"
)

// Config tunes per-request limits for the API surface.
type Config struct {
	// MaxBodyBytes caps request bodies; decode fails past this.
	MaxBodyBytes int64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{MaxBodyBytes: 1 << 20}
}

// Handler wires the HTTP endpoints to the identity and article stores.
type Handler struct {
	log    *slog.Logger
	cfg    Config
	codec  *token.Codec
	hasher password.Hasher

	users    identity.Store
	articles articles.Store

	dummyHash string
}

// NewHandler constructs the API handler.
func NewHandler(log *slog.Logger, cfg Config, codec *token.Codec, hasher password.Hasher, users identity.Store, arts articles.Store) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if codec == nil {
		return nil, errors.New("api: nil token codec")
	}
	if users == nil || arts == nil {
		return nil, errors.New("api: nil store")
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}

	h := &Handler{
		log:      log,
		cfg:      cfg,
		codec:    codec,
		hasher:   hasher,
		users:    users,
		articles: arts,
	}

	// Dummy hash for timing-resistant login checks.
	if hash, err := hasher.Hash("dummy-password-for-timing-only"); err == nil {
		h.dummyHash = hash
	}

	return h, nil
}

// Register wires the API routes onto the provided router.
func (h *Handler) Register(r chi.Router) {
	if h == nil || r == nil {
		return
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", h.handleRegister)
		r.Post("/users/login", h.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)
			r.Get("/user", h.handleCurrentUser)
			r.Put("/user", h.handleUpdateUser)

			r.Post("/profiles/{username}/follow", h.handleFollow)
			r.Delete("/profiles/{username}/follow", h.handleUnfollow)

			r.Get("/articles/feed", h.handleFeed)
			r.Post("/articles", h.handleCreateArticle)
			r.Put("/articles/{slug}", h.handleUpdateArticle)
			r.Delete("/articles/{slug}", h.handleDeleteArticle)
			r.Post("/articles/{slug}/favorite", h.handleFavorite)
			r.Delete("/articles/{slug}/favorite", h.handleUnfavorite)
			r.Post("/articles/{slug}/comments", h.handleAddComment)
			r.Delete("/articles/{slug}/comments/{id}", h.handleDeleteComment)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.MaybeAuth)
			r.Get("/profiles/{username}", h.handleGetProfile)
			r.Get("/articles", h.handleListArticles)
			r.Get("/articles/{slug}", h.handleGetArticle)
			r.Get("/articles/{slug}/comments", h.handleGetComments)
		})

		r.Get("/tags", h.handleTags)
	})
}

// serverError logs err under op and answers 500.
func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.log.Error(op, "err", err)
	writeError(w, http.StatusInternalServerError, "server_error", "internal error")
}
