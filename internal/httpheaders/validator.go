package httpheaders

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

// MaxHeaderValueLength bounds a single header value (8KB).
const MaxHeaderValueLength = 8192

// ForbiddenHeaders are managed by the HTTP client itself, never user-settable.
var ForbiddenHeaders = []string{"Host", "Content-Length", "Transfer-Encoding", "Connection"}

// Validator checks headers against RFC 7230 name/value shape rules.
type Validator struct {
	nameRegex        *regexp.Regexp
	valueRegex       *regexp.Regexp
	maxValueLength   int
	forbiddenHeaders map[string]bool
}

// NewValidator builds a Validator with the default forbidden-header set.
func NewValidator() *Validator {
	forbidden := make(map[string]bool)
	for _, h := range ForbiddenHeaders {
		forbidden[strings.ToLower(h)] = true
	}
	return &Validator{
		nameRegex:        regexp.MustCompile(`^[A-Za-z0-9-]+$`),
		valueRegex:       regexp.MustCompile(`^[\x20-\x7E\t]*$`),
		maxValueLength:   MaxHeaderValueLength,
		forbiddenHeaders: forbidden,
	}
}

func (v *Validator) ValidateName(name string) error {
	if name == "" {
		return &model.ValidationError{Field: "name", HeaderName: name, Reason: "header name must not be empty"}
	}
	if !v.nameRegex.MatchString(name) {
		return &model.ValidationError{
			Field: "name", HeaderName: name,
			Reason:     "header name contains illegal characters (letters, digits, hyphens only)",
			Suggestion: "use letters, digits, and hyphens (e.g. 'User-Agent', 'X-Custom-Header')",
		}
	}
	return nil
}

func (v *Validator) ValidateValue(name, value string) error {
	if len(value) > v.maxValueLength {
		return &model.ValidationError{
			Field: "value", HeaderName: name,
			Reason:     fmt.Sprintf("header value too long: %d bytes (max %d)", len(value), v.maxValueLength),
			Suggestion: fmt.Sprintf("shorten the value to under %d bytes", v.maxValueLength),
		}
	}
	if !v.valueRegex.MatchString(value) {
		return &model.ValidationError{
			Field: "value", HeaderName: name,
			Reason:     "header value contains illegal characters (printable ASCII only)",
			Suggestion: "remove control characters and non-ASCII bytes",
		}
	}
	return nil
}

func (v *Validator) ValidateHeader(name, value string) error {
	if v.IsForbidden(name) {
		return &model.ValidationError{
			Field: "name", HeaderName: name,
			Reason:     "this header is managed by the HTTP client and cannot be overridden",
			Suggestion: fmt.Sprintf("remove the '%s' header", name),
		}
	}
	if err := v.ValidateName(name); err != nil {
		return err
	}
	return v.ValidateValue(name, value)
}

func (v *Validator) IsForbidden(name string) bool {
	return v.forbiddenHeaders[strings.ToLower(name)]
}

// Validate checks every name/value pair in headers, returning the first failure.
func (v *Validator) Validate(headers http.Header) error {
	for name, values := range headers {
		for _, value := range values {
			if err := v.ValidateHeader(name, value); err != nil {
				return err
			}
		}
	}
	return nil
}
