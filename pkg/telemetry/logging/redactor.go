package logging

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// Redactor masks secrets in log values.
type Redactor struct {
	patterns []redactPattern
}

type redactPattern struct {
	regex       *regexp.Regexp
	replacement string
}

// NewRedactor creates a Redactor with the built-in patterns.
func NewRedactor() *Redactor {
	defs := []struct {
		regex       string
		replacement string
	}{
		// Provider API keys (sk-..., sk-ant-...)
		{`sk-[a-zA-Z0-9_-]{8,}`, "sk-***"},
		// GitHub tokens
		{`gh[pousr]_[A-Za-z0-9]{20,}`, "gh*_***"},
		// AWS access key ids
		{`AKIA[0-9A-Z]{16}`, "AKIA***"},
		// Bearer tokens
		{`Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***"},
		// key=value style secrets
		{`(?i)(password|passwd|pwd|secret|token|api[-_]?key)(\s*[:=]\s*)[^\s'"]+`, "$1$2***"},
	}

	r := &Redactor{}
	for _, d := range defs {
		r.patterns = append(r.patterns, redactPattern{
			regex:       regexp.MustCompile(d.regex),
			replacement: d.replacement,
		})
	}
	return r
}

// RedactString masks secrets in value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

func (r *Redactor) isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"password", "passwd", "secret", "token", "api_key", "apikey", "authorization"} {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}

func (r *Redactor) redactAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		if r.isSensitiveKey(a.Key) {
			return slog.String(a.Key, "***")
		}
		return slog.String(a.Key, r.RedactString(a.Value.String()))
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]any, len(attrs))
		for i, ga := range attrs {
			out[i] = r.redactAttr(ga)
		}
		return slog.Group(a.Key, out...)
	}
	return a
}

// redactingHandler masks secrets in string attributes and the message.
type redactingHandler struct {
	next     slog.Handler
	redactor *Redactor
}

func (h *redactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *redactingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, h.redactor.RedactString(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redactor.redactAttr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *redactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redactor.redactAttr(a)
	}
	return &redactingHandler{next: h.next.WithAttrs(redacted), redactor: h.redactor}
}

func (h *redactingHandler) WithGroup(name string) slog.Handler {
	return &redactingHandler{next: h.next.WithGroup(name), redactor: h.redactor}
}
