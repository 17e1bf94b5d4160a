package model

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// ValidateURL rejects a URL missing an http/https scheme or a host, the
// same boundary check the teacher applies before any crawl begins.
func ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" {
		return fmt.Errorf("URL is missing a scheme (http/https)")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https")
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL is missing a host")
	}
	return nil
}

// NewScanID mints a scan identifier in the "scan_<8-hex>" shape §6 requires.
func NewScanID() string {
	return "scan_" + uuid.New().String()[:8]
}
