package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStatusClass(t *testing.T) {
	cases := []struct {
		status int
		want   string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{204, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{422, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tc := range cases {
		if got := statusClass(tc.status); got != tc.want {
			t.Errorf("statusClass(%d) = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestRequestLogMeta(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)

	meta := requestLogMeta(req, http.StatusNotFound, 42, 150*time.Millisecond)

	got := map[string]any{}
	for i := 0; i+1 < len(meta); i += 2 {
		key, ok := meta[i].(string)
		if !ok {
			t.Fatalf("meta[%d] is not a string key: %v", i, meta[i])
		}
		got[key] = meta[i+1]
	}

	if got["method"] != http.MethodGet {
		t.Fatalf("method = %v", got["method"])
	}
	if got["path"] != "/api/articles" {
		t.Fatalf("path = %v", got["path"])
	}
	if got["status"] != http.StatusNotFound {
		t.Fatalf("status = %v", got["status"])
	}
	if got["status_class"] != "4xx" {
		t.Fatalf("status_class = %v", got["status_class"])
	}
	if got["duration_ms"] != int64(150) {
		t.Fatalf("duration_ms = %v", got["duration_ms"])
	}
}

func TestWithRequestLoggingCapturesStatus(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := WithRequestLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}), log)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
	if rec.Body.String() != "short and stout" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}
