package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRequireAuthRejectsInvalidTokens(t *testing.T) {
	env := newTestEnv(t)

	valid := env.tokenFor(t, "user-1")
	raw := strings.TrimPrefix(valid, "Bearer ")

	expired, err := env.codec.Issue("user-1", time.Now().UTC().Add(-3*7*24*time.Hour))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no scheme", raw},
		{"wrong scheme", "Token " + raw},
		{"lowercase scheme", "bearer " + raw},
		{"garbage", "Bearer not-a-jwt"},
		{"expired", expired},
	}

	probe := func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler ran for unauthenticated request")
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			env.handler.RequireAuth(http.HandlerFunc(probe)).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestRequireAuthAttachesIdentity(t *testing.T) {
	env := newTestEnv(t)

	var got string
	probe := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = IdentityFrom(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", env.tokenFor(t, "user-42"))
	rec := httptest.NewRecorder()

	env.handler.RequireAuth(probe).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got != "user-42" {
		t.Fatalf("identity = %q, want %q", got, "user-42")
	}
}

func TestMaybeAuthNeverRejects(t *testing.T) {
	env := newTestEnv(t)

	headers := []string{"", "garbage", "Token abc", env.tokenFor(t, "user-7")}

	for _, header := range headers {
		called := false
		var userID string
		var authed bool
		probe := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			userID, authed = IdentityFrom(r.Context())
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()

		env.handler.MaybeAuth(probe).ServeHTTP(rec, req)

		if !called {
			t.Fatalf("header %q: handler not reached", header)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("header %q: status = %d, want %d", header, rec.Code, http.StatusOK)
		}

		wantAuthed := strings.HasPrefix(header, "Bearer ")
		if authed != wantAuthed {
			t.Fatalf("header %q: authed = %v, want %v (user %q)", header, authed, wantAuthed, userID)
		}
	}
}
