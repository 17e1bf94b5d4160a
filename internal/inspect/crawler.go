// Package inspect implements spec §4.8-§4.15: the inspection pipeline that
// takes over once discovery has produced a candidate set, re-crawling a
// single origin to collect pages for browser-driven QA analysis. Unlike
// internal/discovery's genuine parallel-threads regime, every stage in this
// package runs under a single bounded worker pool per spec §9 — the two
// scheduling regimes are deliberately kept apart and must not share a
// liveness/worker implementation.
package inspect

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"

	"github.com/RecoveryAshes/webqa-inspector/internal/logging"
	"github.com/RecoveryAshes/webqa-inspector/internal/model"
	"github.com/RecoveryAshes/webqa-inspector/internal/urlutil"
)

// Crawler is a single-origin BFS bounded by MaxPages, used only to gather
// pages for browser testing — distinct from the discovery enumerator, which
// is the canonical URL-discovery contract (spec §9).
type Crawler struct {
	client   *http.Client
	headers  model.HeaderProvider
	domain   string
	maxPages int
	workers  int
}

// NewCrawler builds a Crawler scoped to domain.
func NewCrawler(domain string, maxPages, workers int, timeout time.Duration, headers model.HeaderProvider, transport *http.Transport) *Crawler {
	if workers < 1 {
		workers = 1
	}
	if maxPages < 1 {
		maxPages = 1
	}
	return &Crawler{
		client:   &http.Client{Timeout: timeout, Transport: transport},
		headers:  headers,
		domain:   domain,
		maxPages: maxPages,
		workers:  workers,
	}
}

// Crawl performs a breadth-first walk from seedURL over a fixed worker pool
// of size Crawler.workers, stopping once MaxPages pages have been recorded.
// This is a cooperative model (queue + semaphore), not the discovery
// package's goroutine-per-technique thread pool.
func (c *Crawler) Crawl(ctx context.Context, seedURL string) map[string]*model.CrawledPage {
	results := make(map[string]*model.CrawledPage)
	visited := make(map[string]bool)
	var mu sync.Mutex

	queue := []string{seedURL}
	visited[seedURL] = true

	sem := make(chan struct{}, c.workers)

	for len(queue) > 0 {
		mu.Lock()
		full := len(results) >= c.maxPages
		mu.Unlock()
		if full {
			break
		}

		select {
		case <-ctx.Done():
			return results
		default:
		}

		batch := queue
		queue = nil

		var newLinks []string
		var linksMu sync.Mutex
		var wg sync.WaitGroup

		for _, link := range batch {
			mu.Lock()
			full := len(results) >= c.maxPages
			mu.Unlock()
			if full {
				break
			}

			wg.Add(1)
			sem <- struct{}{}
			go func(pageURL string) {
				defer wg.Done()
				defer func() { <-sem }()

				page := c.fetch(ctx, pageURL)

				mu.Lock()
				if len(results) < c.maxPages {
					results[pageURL] = page
				}
				mu.Unlock()

				if page.Status == http.StatusOK && strings.Contains(page.ContentType, "html") {
					found := extractLinks(pageURL, page.HTML, c.domain)
					linksMu.Lock()
					newLinks = append(newLinks, found...)
					linksMu.Unlock()
				}
			}(link)
		}
		wg.Wait()

		for _, link := range newLinks {
			mu.Lock()
			alreadyVisited := visited[link]
			isFull := len(results) >= c.maxPages
			mu.Unlock()
			if alreadyVisited || isFull {
				continue
			}
			visited[link] = true
			queue = append(queue, link)
		}
	}

	return results
}

func (c *Crawler) fetch(ctx context.Context, pageURL string) *model.CrawledPage {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return &model.CrawledPage{URL: pageURL, Status: 0}
	}
	if c.headers != nil {
		if hdrs, err := c.headers.GetHeaders(); err == nil {
			for name, values := range hdrs {
				for _, v := range values {
					req.Header.Add(name, v)
				}
			}
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logging.Debugf("inspection crawler: fetch failed for %s: %v", pageURL, err)
		return &model.CrawledPage{URL: pageURL, Status: 0}
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	page := &model.CrawledPage{URL: pageURL, Status: resp.StatusCode, ContentType: contentType}

	if resp.StatusCode == http.StatusOK && strings.Contains(contentType, "html") {
		var reader io.Reader = resp.Body
		if resp.Header.Get("Content-Encoding") == "br" {
			reader = brotli.NewReader(resp.Body)
		}
		body, err := io.ReadAll(io.LimitReader(reader, 10<<20))
		if err == nil {
			page.HTML = string(body)
		}
	}
	return page
}

// extractLinks pulls every internal href/src/action off a, link, script and
// form tags, stripping fragments (spec §4.8).
func extractLinks(baseURL, rawHTML, domain string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a[href], link[href], script[src], form[action]").Each(func(_ int, s *goquery.Selection) {
		ref, exists := s.Attr("href")
		if !exists {
			ref, exists = s.Attr("src")
		}
		if !exists {
			ref, exists = s.Attr("action")
		}
		if !exists || ref == "" {
			return
		}

		parsedRef, err := url.Parse(ref)
		if err != nil {
			return
		}
		absolute := base.ResolveReference(parsedRef)
		absolute.Fragment = ""

		if urlutil.IsInternal(absolute.String(), domain) {
			normalized, err := urlutil.MustNormalize(absolute.String())
			if err == nil {
				links = append(links, normalized)
			}
		}
	})
	return links
}
