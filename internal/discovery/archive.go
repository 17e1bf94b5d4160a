package discovery

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/RecoveryAshes/webqa-inspector/internal/logging"
)

const (
	cdxAPIURL          = "https://web.archive.org/cdx/search/cdx"
	defaultArchiveLimit = 10000
)

// ArchiveSearcher queries the Wayback Machine CDX API for historical URLs
// under a domain, grounded on the original tool's WaybackMachine client.
type ArchiveSearcher struct {
	client *http.Client
}

// NewArchiveSearcher builds an ArchiveSearcher with the given request
// timeout and shared transport.
func NewArchiveSearcher(timeout time.Duration, transport *http.Transport) *ArchiveSearcher {
	return &ArchiveSearcher{client: &http.Client{Timeout: timeout, Transport: transport}}
}

// Search returns every URL the CDX index has on file for domain, 2010
// through 2026, collapsing duplicate status codes.
func (a *ArchiveSearcher) Search(domain string) ([]string, error) {
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "www.")

	params := url.Values{}
	params.Set("url", domain+"/*")
	params.Set("matchType", "domain")
	params.Set("output", "json")
	params.Set("collapse", "statuscode")
	params.Set("limit", fmt.Sprintf("%d", defaultArchiveLimit))
	params.Set("from", "20100101")
	params.Set("to", "20261231")

	req, err := http.NewRequest(http.MethodGet, cdxAPIURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building CDX request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := a.client.Do(req)
	if err != nil {
		logging.Warnf("wayback CDX request failed for %s: %v", domain, err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CDX API returned status %d", resp.StatusCode)
	}

	var rows [][]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		logging.Debugf("wayback CDX response parse error for %s: %v", domain, err)
		return nil, err
	}

	seen := make(map[string]struct{})
	var urls []string
	// First row is the CDX column header row; the rest are results.
	for _, row := range rows[minInt(1, len(rows)):] {
		if len(row) < 3 {
			continue
		}
		u, ok := row[2].(string)
		if !ok || !strings.HasPrefix(u, "http") {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	logging.Infof("wayback: found %d historical URLs for %s", len(urls), domain)
	return urls, nil
}

// SearchMultiple searches several domains and merges their results.
func (a *ArchiveSearcher) SearchMultiple(domains []string) []string {
	seen := make(map[string]struct{})
	var all []string
	for _, d := range domains {
		urls, err := a.Search(d)
		if err != nil {
			logging.Debugf("wayback: error searching %s: %v", d, err)
			continue
		}
		for _, u := range urls {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			all = append(all, u)
		}
	}
	return all
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
