package api

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"conduit/cmd/identity"
	"conduit/cmd/internal/articles"
	"conduit/cmd/internal/ownership"
	"conduit/cmd/security/password"
	"conduit/cmd/security/token"
)

func testCodec(t *testing.T) *token.Codec {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	c, err := token.NewCodec(privPEM, pubPEM, token.DefaultSessionLength)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func testHasher() password.Hasher {
	return password.New(password.Params{
		MemoryKiB:   16 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
}

type testEnv struct {
	handler  *Handler
	router   chi.Router
	codec    *token.Codec
	users    *fakeUsers
	articles *fakeArticles
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	codec := testCodec(t)
	users := newFakeUsers()
	arts := newFakeArticles()

	h, err := NewHandler(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		DefaultConfig(), codec, testHasher(), users, arts,
	)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	r := chi.NewRouter()
	h.Register(r)

	return &testEnv{handler: h, router: r, codec: codec, users: users, articles: arts}
}

// tokenFor issues a valid Authorization header value for userID.
func (e *testEnv) tokenFor(t *testing.T, userID string) string {
	t.Helper()
	tok, err := e.codec.Issue(userID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok
}

func (e *testEnv) do(t *testing.T, method, target, authHeader, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// ---- fake identity store ----

type fakeUsers struct {
	mu    sync.Mutex
	seq   int
	users map[string]identity.UserAuth
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]identity.UserAuth{}}
}

func (f *fakeUsers) add(t *testing.T, username, email, passwordHash string) identity.User {
	t.Helper()
	u, err := f.CreateUser(context.Background(), identity.CreateUserInput{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		t.Fatalf("add user %q: %v", username, err)
	}
	return u
}

func (f *fakeUsers) CreateUser(_ context.Context, in identity.CreateUserInput) (identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Username == in.Username {
			return identity.User{}, identity.ConflictError{Op: "fake.CreateUser", Field: "username"}
		}
		if u.Email == in.Email {
			return identity.User{}, identity.ConflictError{Op: "fake.CreateUser", Field: "email"}
		}
	}

	f.seq++
	ua := identity.UserAuth{
		User: identity.User{
			ID:       fmt.Sprintf("user-%d", f.seq),
			Username: in.Username,
			Email:    in.Email,
		},
		PasswordHash: in.PasswordHash,
	}
	f.users[ua.ID] = ua
	return ua.User, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (identity.UserAuth, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return identity.UserAuth{}, identity.NotFoundError{Op: "fake.GetUserByEmail", Resource: "user"}
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return identity.User{}, identity.NotFoundError{Op: "fake.GetUserByID", Resource: "user"}
	}
	return u.User, nil
}

func (f *fakeUsers) UpdateUser(_ context.Context, id string, in identity.UpdateUserInput) (identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return identity.User{}, identity.NotFoundError{Op: "fake.UpdateUser", Resource: "user"}
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.PasswordHash != nil {
		u.PasswordHash = *in.PasswordHash
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.Image != nil {
		u.Image = in.Image
	}
	f.users[id] = u
	return u.User, nil
}

func (f *fakeUsers) GetProfile(_ context.Context, username, _ string) (identity.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Username == username {
			return identity.Profile{Username: u.Username, Bio: u.Bio, Image: u.Image}, nil
		}
	}
	return identity.Profile{}, identity.NotFoundError{Op: "fake.GetProfile", Resource: "profile"}
}

func (f *fakeUsers) Follow(ctx context.Context, username, followerID string) (identity.Profile, error) {
	f.mu.Lock()
	if u, ok := f.users[followerID]; ok && u.Username == username {
		f.mu.Unlock()
		return identity.Profile{}, identity.OpError{Op: "fake.Follow", Kind: identity.ErrForbidden, Msg: "cannot follow yourself"}
	}
	f.mu.Unlock()

	p, err := f.GetProfile(ctx, username, followerID)
	if err != nil {
		return identity.Profile{}, err
	}
	p.Following = true
	return p, nil
}

func (f *fakeUsers) Unfollow(ctx context.Context, username, followerID string) (identity.Profile, error) {
	return f.GetProfile(ctx, username, followerID)
}

// ---- fake articles store ----

type fakeArticle struct {
	ownerID string
	article articles.Article
}

type fakeArticles struct {
	mu            sync.Mutex
	bySlug        map[string]*fakeArticle
	nextCommentID int64
	comments      map[string][]articles.Comment
	commentOwners map[int64]string
}

func newFakeArticles() *fakeArticles {
	return &fakeArticles{
		bySlug:        map[string]*fakeArticle{},
		comments:      map[string][]articles.Comment{},
		commentOwners: map[int64]string{},
	}
}

func (f *fakeArticles) add(t *testing.T, ownerID, slug string) {
	t.Helper()
	_, err := f.Create(context.Background(), articles.CreateInput{
		AuthorID:    ownerID,
		Slug:        slug,
		Title:       slug,
		Description: "d",
		Body:        "b",
	})
	if err != nil {
		t.Fatalf("add article %q: %v", slug, err)
	}
}

func (f *fakeArticles) Create(_ context.Context, in articles.CreateInput) (articles.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.bySlug[in.Slug]; exists {
		return articles.Article{}, articles.ErrDuplicateSlug
	}

	now := time.Now().UTC()
	a := articles.Article{
		Slug:        in.Slug,
		Title:       in.Title,
		Description: in.Description,
		Body:        in.Body,
		TagList:     in.TagList,
		CreatedAt:   now,
		UpdatedAt:   now,
		Author:      identity.Profile{Username: in.AuthorID},
	}
	f.bySlug[in.Slug] = &fakeArticle{ownerID: in.AuthorID, article: a}
	return a, nil
}

func (f *fakeArticles) GetBySlug(_ context.Context, slug, _ string) (articles.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fa, ok := f.bySlug[slug]
	if !ok {
		return articles.Article{}, articles.ErrNotFound
	}
	return fa.article, nil
}

func (f *fakeArticles) Update(_ context.Context, slug, ownerID string, in articles.UpdateInput) (articles.Article, ownership.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fa, existed := f.bySlug[slug]
	mutated := existed && fa.ownerID == ownerID

	outcome, err := ownership.Classify(existed, mutated)
	if err != nil || outcome != ownership.Success {
		return articles.Article{}, outcome, err
	}

	if in.Title != nil {
		fa.article.Title = *in.Title
	}
	if in.Slug != nil && *in.Slug != slug {
		delete(f.bySlug, slug)
		fa.article.Slug = *in.Slug
		f.bySlug[*in.Slug] = fa
	}
	if in.Description != nil {
		fa.article.Description = *in.Description
	}
	if in.Body != nil {
		fa.article.Body = *in.Body
	}
	return fa.article, ownership.Success, nil
}

func (f *fakeArticles) Delete(_ context.Context, slug, ownerID string) (ownership.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fa, existed := f.bySlug[slug]
	deleted := existed && fa.ownerID == ownerID
	if deleted {
		delete(f.bySlug, slug)
	}
	return ownership.Classify(existed, deleted)
}

func (f *fakeArticles) Favorite(_ context.Context, slug, _ string) (articles.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fa, ok := f.bySlug[slug]
	if !ok {
		return articles.Article{}, articles.ErrNotFound
	}
	fa.article.Favorited = true
	fa.article.FavoritesCount++
	return fa.article, nil
}

func (f *fakeArticles) Unfavorite(_ context.Context, slug, _ string) (articles.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fa, ok := f.bySlug[slug]
	if !ok {
		return articles.Article{}, articles.ErrNotFound
	}
	if fa.article.FavoritesCount > 0 {
		fa.article.Favorited = false
		fa.article.FavoritesCount--
	}
	return fa.article, nil
}

func (f *fakeArticles) List(_ context.Context, _ articles.ListQuery, _ string) ([]articles.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []articles.Article{}
	for _, fa := range f.bySlug {
		out = append(out, fa.article)
	}
	return out, nil
}

func (f *fakeArticles) Feed(_ context.Context, _ articles.FeedQuery, _ string) ([]articles.Article, error) {
	return []articles.Article{}, nil
}

func (f *fakeArticles) Tags(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	seen := map[string]bool{}
	tags := []string{}
	for _, fa := range f.bySlug {
		for _, tag := range fa.article.TagList {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	return tags, nil
}

func (f *fakeArticles) Comments(_ context.Context, slug, _ string) ([]articles.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.bySlug[slug]; !ok {
		return nil, articles.ErrNotFound
	}
	return f.comments[slug], nil
}

func (f *fakeArticles) AddComment(_ context.Context, slug, authorID, body string) (articles.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.bySlug[slug]; !ok {
		return articles.Comment{}, articles.ErrNotFound
	}

	f.nextCommentID++
	now := time.Now().UTC()
	c := articles.Comment{
		ID:        f.nextCommentID,
		CreatedAt: now,
		UpdatedAt: now,
		Body:      body,
		Author:    identity.Profile{Username: authorID},
	}
	f.comments[slug] = append(f.comments[slug], c)
	f.commentOwners[c.ID] = authorID
	return c, nil
}

func (f *fakeArticles) DeleteComment(_ context.Context, slug string, commentID int64, ownerID string) (ownership.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	existed := false
	idx := -1
	for i, c := range f.comments[slug] {
		if c.ID == commentID {
			existed = true
			idx = i
			break
		}
	}
	deleted := existed && f.commentOwners[commentID] == ownerID
	if deleted {
		f.comments[slug] = append(f.comments[slug][:idx], f.comments[slug][idx+1:]...)
		delete(f.commentOwners, commentID)
	}
	return ownership.Classify(existed, deleted)
}

var _ identity.Store = (*fakeUsers)(nil)
var _ articles.Store = (*fakeArticles)(nil)
