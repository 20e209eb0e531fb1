package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// sensitiveKeys are attribute keys whose values are always masked.
var sensitiveKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"password":            true,
	"passwd":              true,
	"secret":              true,
	"token":               true,
	"sonar.token":         true,
	"sonar.login":         true,
	"sonar.password":      true,
	"api_key":             true,
	"apikey":              true,
	"credentials":         true,
}

// sensitiveKeywords mask any key containing them. "key" alone is left out:
// project keys and issue keys are logged all the time.
var sensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "credential",
}

// safeKeys contain a keyword but never hold a secret.
var safeKeys = map[string]bool{
	"author":     true,
	"tokens":     true,
	"token_type": true,
}

// sensitivePatterns mask a string value whatever its key.
var sensitivePatterns = []*regexp.Regexp{
	// SonarQube user, project and global analysis tokens.
	regexp.MustCompile(`\bsq[upa]_[0-9a-f]{40}\b`),
	// Legacy SonarQube tokens are bare 40 character hex strings.
	regexp.MustCompile(`^[0-9a-f]{40}$`),
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
	// Credentials embedded in a server URL.
	regexp.MustCompile(`^[a-z][a-z0-9+.-]*://[^/@\s]+:[^/@\s]*@`),
}

// MaskValue replaces masked values.
const MaskValue = "***REDACTED***"

// SecureHandler wraps an slog.Handler and masks the attributes holding
// credentials before passing records on.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler wraps handler. A nil handler wraps slog.Default().Handler().
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled delegates to the wrapped handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record attributes and passes the record on.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(maskAttr(a))
		return true
	})
	return h.handler.Handle(ctx, masked)
}

// WithAttrs masks attrs before adding them.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = maskAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(masked)}
}

// WithGroup delegates to the wrapped handler.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

func maskAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		masked := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			masked[i] = maskAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(masked...)}
	}

	if isSensitiveKey(a.Key) {
		if a.Value.Kind() == slog.KindString && a.Value.String() == "" {
			return a
		}
		return slog.String(a.Key, MaskValue)
	}

	// Errors and stringers are resolved so a token inside a message is caught.
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		if isSensitiveValue(v.String()) {
			return slog.String(a.Key, MaskValue)
		}
	case slog.KindAny:
		if err, ok := v.Any().(error); ok && containsToken(err.Error()) {
			return slog.String(a.Key, maskTokens(err.Error()))
		}
	}
	return a
}

func isSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	if safeKeys[k] {
		return false
	}
	if sensitiveKeys[k] {
		return true
	}
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(k, keyword) {
			return true
		}
	}
	return false
}

func isSensitiveValue(value string) bool {
	for _, p := range sensitivePatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

func containsToken(s string) bool {
	return sensitivePatterns[0].MatchString(s)
}

func maskTokens(s string) string {
	return sensitivePatterns[0].ReplaceAllString(s, MaskValue)
}

func levelFor(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewSecureLogger returns a text logger writing to w. Verbose loggers
// log from slog.LevelDebug, others from slog.LevelWarn.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: levelFor(verbose)})
	return slog.New(NewSecureHandler(h))
}

// NewSecureJSONLogger is NewSecureLogger with JSON output.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: levelFor(verbose)})
	return slog.New(NewSecureHandler(h))
}
