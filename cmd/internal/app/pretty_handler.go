package app

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset  = "\x1b[0m"
	ansiDim    = "\x1b[2m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiPurple = "\x1b[35m"
)

// prettyHandler is a line-oriented slog handler for local development. It is
// not meant for production output; the JSON handler is the default.
type prettyHandler struct {
	w     io.Writer
	opts  slog.HandlerOptions
	attrs []slog.Attr
	mu    *sync.Mutex
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	h := &prettyHandler{w: w, mu: &sync.Mutex{}}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	b.WriteString(ansiDim + ts.Format("15:04:05.000") + ansiReset)
	b.WriteByte(' ')
	b.WriteString(levelTag(r.Level))
	b.WriteByte(' ')
	b.WriteString(ansiBold + r.Message + ansiReset)

	for _, a := range h.attrs {
		appendAttr(&b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, a)
		return true
	})

	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &cp
}

func (h *prettyHandler) WithGroup(string) slog.Handler { return h }

func appendAttr(b *strings.Builder, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	b.WriteByte(' ')
	b.WriteString(ansiDim + a.Key + "=" + ansiReset)

	if a.Key == "status" {
		if n, ok := attrInt64(a.Value); ok {
			b.WriteString(colorizeStatus(int(n)))
			return
		}
	}

	s := a.Value.String()
	if s == "" || strings.ContainsAny(s, " \t\r\n\"=") {
		s = strconv.Quote(s)
	}
	b.WriteString(s)
}

func attrInt64(v slog.Value) (int64, bool) {
	switch v.Kind() {
	case slog.KindInt64:
		return v.Int64(), true
	case slog.KindUint64:
		u := v.Uint64()
		if u > 1<<62 {
			return 0, false
		}
		return int64(u), true // #nosec G115 -- bounded above; safe conversion.
	default:
		return 0, false
	}
}

func colorizeStatus(status int) string {
	s := strconv.Itoa(status)
	switch {
	case status >= 500:
		return ansiRed + s + ansiReset
	case status >= 400:
		return ansiYellow + s + ansiReset
	case status >= 300:
		return ansiBlue + s + ansiReset
	default:
		return ansiGreen + s + ansiReset
	}
}

func levelTag(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed + "[ERROR]" + ansiReset
	case level >= slog.LevelWarn:
		return ansiYellow + "[WARN]" + ansiReset
	case level < slog.LevelInfo:
		return ansiPurple + "[DEBUG]" + ansiReset
	default:
		return ansiBlue + "[INFO]" + ansiReset
	}
}
