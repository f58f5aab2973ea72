package api

import (
	"context"
	"net/http"
	"sync"
	"testing"
)

func TestDeleteArticleOwnership(t *testing.T) {
	env := newTestEnv(t)

	owner := env.users.add(t, "alice", "alice@example.com", "x")
	other := env.users.add(t, "bob", "bob@example.com", "x")
	env.articles.add(t, owner.ID, "my-article")

	ownerTok := env.tokenFor(t, owner.ID)
	otherTok := env.tokenFor(t, other.ID)

	// A non-owner is refused without revealing anything beyond existence.
	if rec := env.do(t, http.MethodDelete, "/api/articles/my-article", otherTok, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner delete: status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if _, err := env.articles.GetBySlug(context.Background(), "my-article", ""); err != nil {
		t.Fatalf("article vanished after forbidden delete: %v", err)
	}

	// A slug that never existed is indistinguishable from one already deleted.
	if rec := env.do(t, http.MethodDelete, "/api/articles/no-such-article", ownerTok, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing delete: status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	if rec := env.do(t, http.MethodDelete, "/api/articles/my-article", ownerTok, ""); rec.Code != http.StatusOK {
		t.Fatalf("owner delete: status = %d, want %d", rec.Code, http.StatusOK)
	}

	// Replay after the delete lands on the not-found branch.
	if rec := env.do(t, http.MethodDelete, "/api/articles/my-article", ownerTok, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("replayed delete: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDeleteArticleConcurrent(t *testing.T) {
	env := newTestEnv(t)

	owner := env.users.add(t, "alice", "alice@example.com", "x")
	env.articles.add(t, owner.ID, "contested")
	ownerTok := env.tokenFor(t, owner.ID)

	const attempts = 8
	statuses := make([]int, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			statuses[i] = env.do(t, http.MethodDelete, "/api/articles/contested", ownerTok, "").Code
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, code := range statuses {
		switch code {
		case http.StatusOK:
			succeeded++
		case http.StatusNotFound:
		default:
			t.Fatalf("unexpected status %d", code)
		}
	}
	if succeeded != 1 {
		t.Fatalf("succeeded = %d, want exactly 1 (statuses %v)", succeeded, statuses)
	}
}

func TestUpdateArticleOwnership(t *testing.T) {
	env := newTestEnv(t)

	owner := env.users.add(t, "alice", "alice@example.com", "x")
	other := env.users.add(t, "bob", "bob@example.com", "x")
	env.articles.add(t, owner.ID, "my-article")

	body := `{"article":{"body":"rewritten"}}`

	if rec := env.do(t, http.MethodPut, "/api/articles/my-article", env.tokenFor(t, other.ID), body); rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner update: status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if rec := env.do(t, http.MethodPut, "/api/articles/no-such-article", env.tokenFor(t, owner.ID), body); rec.Code != http.StatusNotFound {
		t.Fatalf("missing update: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if rec := env.do(t, http.MethodPut, "/api/articles/my-article", env.tokenFor(t, owner.ID), body); rec.Code != http.StatusOK {
		t.Fatalf("owner update: status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	a, err := env.articles.GetBySlug(context.Background(), "my-article", "")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if a.Body != "rewritten" {
		t.Fatalf("body = %q, want %q", a.Body, "rewritten")
	}
}

func TestDeleteCommentOwnership(t *testing.T) {
	env := newTestEnv(t)

	author := env.users.add(t, "alice", "alice@example.com", "x")
	commenter := env.users.add(t, "bob", "bob@example.com", "x")
	env.articles.add(t, author.ID, "my-article")

	c, err := env.articles.AddComment(context.Background(), "my-article", commenter.ID, "nice read")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	path := "/api/articles/my-article/comments/"

	// Owning the article does not grant delete on someone else's comment.
	if rec := env.do(t, http.MethodDelete, path+"1", env.tokenFor(t, author.ID), ""); rec.Code != http.StatusForbidden {
		t.Fatalf("article-author delete: status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if rec := env.do(t, http.MethodDelete, path+"999", env.tokenFor(t, commenter.ID), ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing comment delete: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if rec := env.do(t, http.MethodDelete, path+"not-a-number", env.tokenFor(t, commenter.ID), ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad comment id: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if rec := env.do(t, http.MethodDelete, path+"1", env.tokenFor(t, commenter.ID), ""); rec.Code != http.StatusOK {
		t.Fatalf("comment-owner delete: status = %d, want %d", rec.Code, http.StatusOK)
	}

	left, err := env.articles.Comments(context.Background(), "my-article", "")
	if err != nil {
		t.Fatalf("Comments: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("comments left = %d, want 0 (first %v)", len(left), c.ID)
	}
}
