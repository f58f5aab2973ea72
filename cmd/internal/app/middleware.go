package app

import (
	"io"
	"log/slog"
	"net/http"
	"time"
)

// WithRequestLogging wraps an http.Handler and logs one line per request.
func WithRequestLogging(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lrw := &loggingResponseWriter{
			ResponseWriter: w,
			status:         http.StatusOK,
		}

		next.ServeHTTP(lrw, r)

		meta := requestLogMeta(r, lrw.status, lrw.bytes, time.Since(start))
		log.Info("http.request", meta...)
	})
}

// requestLogMeta builds the attribute list for the per-request log line.
func requestLogMeta(r *http.Request, status int, bytes int64, elapsed time.Duration) []any {
	return []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"status_class", statusClass(status),
		"bytes", bytes,
		"duration_ms", elapsed.Milliseconds(),
		"remote", r.RemoteAddr,
		"user_agent", r.UserAgent(),
	}
}

// statusClass buckets an HTTP status for logs and metric labels.
func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *loggingResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *loggingResponseWriter) Write(p []byte) (int, error) {
	n, err := w.ResponseWriter.Write(p)
	w.bytes += int64(n)
	return n, err
}

func (w *loggingResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *loggingResponseWriter) ReadFrom(r io.Reader) (int64, error) {
	if rf, ok := w.ResponseWriter.(io.ReaderFrom); ok {
		n, err := rf.ReadFrom(r)
		w.bytes += n
		return n, err
	}
	n, err := io.Copy(w.ResponseWriter, r)
	w.bytes += n
	return n, err
}

func (w *loggingResponseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
