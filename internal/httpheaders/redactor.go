package httpheaders

import (
	"net/http"
	"strings"
)

// SensitiveKeywords flags header names that must be redacted before logging.
var SensitiveKeywords = []string{
	"authorization", "token", "key", "secret", "password", "credential", "api-key",
}

// Redactor masks sensitive header values for safe logging.
type Redactor struct {
	sensitiveKeywords []string
}

func NewRedactor() *Redactor {
	return &Redactor{sensitiveKeywords: SensitiveKeywords}
}

func (r *Redactor) IsSensitive(name string) bool {
	nameLower := strings.ToLower(name)
	for _, keyword := range r.sensitiveKeywords {
		if strings.Contains(nameLower, keyword) {
			return true
		}
	}
	return false
}

func (r *Redactor) RedactValue(name, value string) string {
	if !r.IsSensitive(name) {
		return value
	}
	if strings.HasPrefix(value, "Bearer ") {
		return "Bearer ***"
	}
	if len(value) > 8 {
		return value[:4] + "***" + value[len(value)-4:]
	}
	return "***"
}

// Redact returns a log-safe map view of headers.
func (r *Redactor) Redact(headers http.Header) map[string]string {
	result := make(map[string]string)
	for name, values := range headers {
		if len(values) == 0 {
			continue
		}
		value := values[0]
		if r.IsSensitive(name) {
			result[name] = r.RedactValue(name, value)
		} else {
			result[name] = value
		}
	}
	return result
}

func (r *Redactor) RedactToString(headers http.Header) string {
	redacted := r.Redact(headers)
	parts := make([]string, 0, len(redacted))
	for name, value := range redacted {
		parts = append(parts, name+": "+value)
	}
	return strings.Join(parts, ", ")
}
