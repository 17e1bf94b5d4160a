// Package urlutil holds the URL normalization and internality rules shared
// by the pipeline stages (discovery collector, enumerator and live crawler,
// inspection crawler). There is exactly one implementation of these rules in
// the module; no package keeps its own copy.
package urlutil

import (
	"net/url"
	"strings"
)

// Normalize implements the spec's normalization contract (Data Model §3):
// strip fragment, resolve relative against base, default scheme https,
// drop default ports, default path to "/", preserve query verbatim,
// case-fold scheme and host but not path/query. Idempotent.
func Normalize(raw string, base *url.URL) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	if base != nil && !u.IsAbs() {
		u = base.ResolveReference(u)
	}

	u.Fragment = ""

	if u.Scheme == "" {
		u.Scheme = "https"
	}
	u.Scheme = strings.ToLower(u.Scheme)

	host := u.Hostname()
	port := u.Port()
	if (u.Scheme == "https" && port == "443") || (u.Scheme == "http" && port == "80") {
		port = ""
	}
	host = strings.ToLower(host)
	if port != "" {
		u.Host = host + ":" + port
	} else {
		u.Host = host
	}

	if u.Path == "" {
		u.Path = "/"
	}

	return u.String(), nil
}

// MustNormalize is Normalize without a base URL, for absolute inputs only.
func MustNormalize(raw string) (string, error) {
	return Normalize(raw, nil)
}

// domainOf extracts a bare host (no port, no leading "www.") from a URL or
// a bare domain string, ported from original_source/core/utils.py's
// extract_domain.
func domainOf(raw string) string {
	s := raw
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return strings.TrimPrefix(strings.ToLower(raw), "www.")
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// IsInternal reports whether rawURL's host equals targetDomain or is a
// subdomain of it, both sides compared after stripping "www." (§3 Data
// Model, "Internality").
func IsInternal(rawURL, targetDomain string) bool {
	urlDomain := domainOf(rawURL)
	target := domainOf(targetDomain)
	if urlDomain == "" || target == "" {
		return false
	}
	if urlDomain == target {
		return true
	}
	return strings.HasSuffix(urlDomain, "."+target)
}

// BaseOrigin reduces a URL down to "scheme://host[:port]" with no path,
// query, or fragment - used by the discovery enumerator to derive the
// target's origin.
func BaseOrigin(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.Scheme + "://" + u.Host, nil
}
