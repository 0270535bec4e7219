package logging

import (
	"log/slog"
	"regexp"
	"strings"

	"wealthos/governance/pkg/config"
)

// Redactor masks client identifiers in log attributes.
type Redactor struct {
	patterns []*redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternIBAN          = "iban"
	PatternAccountNumber = "account_number"
	PatternEmail         = "email"
	PatternBearerToken   = "bearer_token"
)

// IBAN is matched before bare account numbers so the longer form wins.
var defaultPatterns = []struct {
	name        string
	regex       string
	replacement string
}{
	{PatternIBAN, `\b[A-Z]{2}\d{2}[A-Z0-9]{11,30}\b`, "[IBAN]"},
	{PatternAccountNumber, `\b\d{10,20}\b`, "[ACCOUNT]"},
	{PatternEmail, `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`, "[EMAIL]"},
	{PatternBearerToken, `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***"},
}

var sensitiveKeys = []string{
	"password", "secret", "token", "authorization",
	"account_number", "iban", "card_number",
}

// NewRedactor creates a Redactor with the built-in patterns followed by
// custom ones. Invalid custom patterns are skipped; config validation
// reports them.
func NewRedactor(custom []config.RedactPattern) *Redactor {
	r := &Redactor{}
	for _, p := range defaultPatterns {
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		})
	}
	for _, p := range custom {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.patterns = append(r.patterns, &redactPattern{name: p.Name, regex: regex, replacement: p.Replacement})
	}
	return r
}

// RedactString applies every pattern to value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// RedactAttr redacts a single attribute. Values under sensitive keys are
// masked whole; other string values are pattern-scrubbed. Groups are
// walked recursively.
func (r *Redactor) RedactAttr(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()

	switch v.Kind() {
	case slog.KindGroup:
		group := v.Group()
		out := make([]any, len(group))
		for i, ga := range group {
			out[i] = r.RedactAttr(ga)
		}
		return slog.Group(a.Key, out...)
	case slog.KindString:
		if isSensitiveKey(a.Key) {
			return slog.String(a.Key, MaskTail(v.String()))
		}
		return slog.String(a.Key, r.RedactString(v.String()))
	default:
		if isSensitiveKey(a.Key) {
			return slog.String(a.Key, "***")
		}
		if v.Kind() == slog.KindAny {
			if err, ok := v.Any().(error); ok {
				return slog.String(a.Key, r.RedactString(err.Error()))
			}
		}
		return slog.Attr{Key: a.Key, Value: v}
	}
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// MaskTail masks all but the last four characters.
func MaskTail(s string) string {
	if len(s) <= 4 {
		return "***"
	}
	return "***" + s[len(s)-4:]
}

// RedactEmail keeps the first character of the local part and the domain.
func RedactEmail(email string) string {
	user, domain, ok := strings.Cut(email, "@")
	if !ok {
		return email
	}
	if user == "" {
		return "***@" + domain
	}
	return user[:1] + "***@" + domain
}
