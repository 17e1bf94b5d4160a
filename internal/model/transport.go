package model

import (
	"crypto/tls"
	"net/http"
)

// NewHTTPTransport builds the transport every outbound HTTP client in the
// discovery and inspection stages shares, honoring ScanConfig.ValidateSSL:
// when false, certificate verification is skipped. When true, the
// transport behaves exactly like http.DefaultTransport.
func NewHTTPTransport(validateSSL bool) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !validateSSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return transport
}
