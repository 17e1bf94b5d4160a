package model

import (
	"fmt"
	"net/http"
	"strings"
)

// HeaderConfig mirrors the structure of headers.yaml once loaded via viper.
type HeaderConfig struct {
	Headers map[string]string `mapstructure:"headers" yaml:"headers"`
}

// CliHeaders is the raw "Name: Value" strings passed via repeated --header flags.
type CliHeaders []string

// Parse turns the CLI strings into an http.Header, validating the "Name: Value" shape.
func (ch CliHeaders) Parse() (http.Header, error) {
	result := make(http.Header)
	for i, s := range ch {
		name, value, err := parseHeaderString(s)
		if err != nil {
			return nil, fmt.Errorf("--header entry %d is malformed: %w", i+1, err)
		}
		result.Set(name, value)
	}
	return result, nil
}

func parseHeaderString(s string) (name, value string, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("missing ':' separator, expected 'Name: Value'")
	}
	name = strings.TrimSpace(parts[0])
	value = strings.TrimSpace(parts[1])
	if name == "" {
		return "", "", fmt.Errorf("header name must not be empty")
	}
	return name, value, nil
}

// HeaderProvider is implemented by anything that can hand out the merged set
// of outbound HTTP headers for a scan's HTTP clients (default < config < CLI).
type HeaderProvider interface {
	GetHeaders() (http.Header, error)
}

// ValidationError reports a single header name/value that failed validation.
type ValidationError struct {
	Field      string
	HeaderName string
	Reason     string
	Suggestion string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("header validation failed [%s]: %s", e.HeaderName, e.Reason)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (suggestion: %s)", e.Suggestion)
	}
	return msg
}

// ConfigError wraps a header/config file parse failure with its source path.
type ConfigError struct {
	FilePath string
	Cause    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error [%s]: %v", e.FilePath, e.Cause)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}
