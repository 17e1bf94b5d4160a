package discovery

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/RecoveryAshes/webqa-inspector/internal/logging"
	"github.com/RecoveryAshes/webqa-inspector/internal/model"
	"github.com/RecoveryAshes/webqa-inspector/internal/urlutil"
)

// Options configures an Enumerator run (spec §4.1).
type Options struct {
	Depth       int
	Threads     int
	Timeout     time.Duration
	OnlyAlive   bool
	Techniques  []model.Technique
	Headers     model.HeaderProvider
	ValidateSSL bool
}

// Result is the enumerator's output contract.
type Result struct {
	URLs       []string                        `json:"urls"`
	URLDetails map[string]CandidateDetail       `json:"url_details"`
	Summary    Summary                          `json:"summary"`
}

// CandidateDetail is the per-URL detail record in Result.URLDetails.
type CandidateDetail struct {
	Status        int      `json:"status"`
	StatusTag     string   `json:"status_tag"`
	ContentLength int64    `json:"content_length"`
	Alive         bool     `json:"alive"`
	Sources       []string `json:"sources"`
}

// Summary is the enumerator's aggregate counters.
type Summary struct {
	TotalURLs      int            `json:"total_urls"`
	AliveURLs      int            `json:"alive_urls"`
	SourcesUsed    []string       `json:"sources_used"`
	SourcesSummary map[string]int `json:"sources_summary"`
}

// Enumerator runs every enabled discovery technique against a target
// domain, merges their output into a single candidate table, and applies
// the liveness validator in one bounded-concurrency pass (§4.1).
type Enumerator struct {
	opts      Options
	target    string // normalized origin, e.g. https://example.com
	domain    string // bare host, e.g. example.com
	transport *http.Transport
}

// NewEnumerator builds an Enumerator for targetURL.
func NewEnumerator(targetURL string, opts Options) (*Enumerator, error) {
	origin, err := urlutil.BaseOrigin(targetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid target URL: %w", err)
	}
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if len(opts.Techniques) == 0 {
		opts.Techniques = model.AllTechniques
	}

	parsed, err := urlutil.MustNormalize(origin)
	if err != nil {
		return nil, err
	}

	return &Enumerator{
		opts:      opts,
		target:    origin,
		domain:    hostOf(parsed),
		transport: model.NewHTTPTransport(opts.ValidateSSL),
	}, nil
}

func hostOf(normalizedURL string) string {
	// normalizedURL is scheme://host[:port]/... ; strip scheme and path.
	rest := normalizedURL
	if idx := strings.Index(rest, "://"); idx >= 0 {
		rest = rest[idx+3:]
	}
	if idx := strings.Index(rest, "/"); idx >= 0 {
		rest = rest[:idx]
	}
	if idx := strings.Index(rest, ":"); idx >= 0 {
		rest = rest[:idx]
	}
	return rest
}

func (e *Enumerator) enabled(t model.Technique) bool {
	for _, technique := range e.opts.Techniques {
		if technique == t {
			return true
		}
	}
	return false
}

// Run executes every enabled technique, merges and validates the
// resulting candidates, and returns the enumerator's contract result.
// A technique failure is logged and skipped; Run itself never errors.
func (e *Enumerator) Run() *Result {
	collector := NewCollector(e.target)

	var wg sync.WaitGroup
	runTechnique := func(t model.Technique, fn func() []string) {
		if !e.enabled(t) {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logging.Warnf("discovery technique %s panicked: %v", t, r)
				}
			}()
			urls := fn()
			for _, u := range urls {
				if urlutil.IsInternal(u, e.domain) {
					collector.Add(u, t)
				}
			}
		}()
	}

	runTechnique(model.SourceLive, func() []string {
		var found []string
		var mu sync.Mutex
		lc := NewLiveCrawler(e.domain, e.opts.Depth, e.opts.Threads, e.opts.Timeout, e.opts.Headers, e.transport)
		if err := lc.Run(e.target, func(u string) {
			mu.Lock()
			found = append(found, u)
			mu.Unlock()
		}); err != nil {
			logging.Warnf("live crawler failed for %s: %v", e.target, err)
		}
		return found
	})

	runTechnique(model.SourceWayback, func() []string {
		searcher := NewArchiveSearcher(10*time.Second, e.transport)
		urls, err := searcher.Search(e.domain)
		if err != nil {
			logging.Debugf("wayback search failed for %s: %v", e.domain, err)
		}
		return urls
	})

	runTechnique(model.SourceRobots, func() []string {
		fetcher := NewRobotsSitemapFetcher(e.opts.Timeout, e.transport)
		paths, sitemaps, err := fetcher.FetchRobots(e.target)
		if err != nil {
			logging.Debugf("robots.txt fetch failed for %s: %v", e.target, err)
			return nil
		}
		urls := make([]string, 0, len(paths))
		for _, p := range paths {
			urls = append(urls, e.target+p)
		}
		for _, sm := range sitemaps {
			smURLs, err := fetcher.FetchSitemap(sm)
			if err != nil {
				continue
			}
			urls = append(urls, smURLs...)
		}
		return urls
	})

	runTechnique(model.SourceSitemap, func() []string {
		fetcher := NewRobotsSitemapFetcher(e.opts.Timeout, e.transport)
		urls, err := fetcher.FetchSitemap(e.target + "/sitemap.xml")
		if err != nil {
			logging.Debugf("sitemap.xml fetch failed for %s: %v", e.target, err)
			return nil
		}
		return urls
	})

	runTechnique(model.SourceBruteforce, func() []string {
		return NewBruteForcer(nil).GenerateURLs(e.target)
	})

	wg.Wait()

	// JS extraction runs last so it can mine every .js candidate the other
	// techniques turned up, not just the live crawler's.
	if e.enabled(model.SourceJS) {
		e.runJSExtraction(collector)
	}

	candidates := collector.All()
	e.validate(candidates)

	return e.buildResult(candidates)
}

// runJSExtraction re-fetches every JS-looking candidate URL to mine
// endpoints out of its body. The live crawler only records URLs, not
// bodies, so this is a light second pass scoped to script resources.
func (e *Enumerator) runJSExtraction(collector *Collector) {
	extractor := NewJSExtractor()
	client := &http.Client{Timeout: e.opts.Timeout, Transport: e.transport}

	var jsCandidates []string
	for _, cand := range collector.All() {
		if strings.HasSuffix(strings.ToLower(cand.URL), ".js") {
			jsCandidates = append(jsCandidates, cand.URL)
		}
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.opts.Threads)
	for _, jsURL := range jsCandidates {
		wg.Add(1)
		sem <- struct{}{}
		go func(jsURL string) {
			defer wg.Done()
			defer func() { <-sem }()

			resp, err := client.Get(jsURL)
			if err != nil {
				return
			}
			defer resp.Body.Close()

			buf := make([]byte, 1<<20)
			n, _ := resp.Body.Read(buf)
			endpoints := extractor.ExtractEndpoints(string(buf[:n]))
			for _, ep := range endpoints {
				collector.Add(e.target+ep, model.SourceJS)
			}
		}(jsURL)
	}
	wg.Wait()
}

func (e *Enumerator) validate(candidates []*model.CandidateURL) {
	validator := NewLivenessValidator(e.opts.Timeout, e.opts.Threads, e.opts.Headers, e.transport)
	validator.ValidateBatch(candidates)
}

func (e *Enumerator) buildResult(candidates []*model.CandidateURL) *Result {
	details := make(map[string]CandidateDetail, len(candidates))
	sourcesSummary := make(map[string]int)
	aliveCount := 0

	var urls []string
	for _, cand := range candidates {
		if e.opts.OnlyAlive && !cand.Alive {
			continue
		}
		urls = append(urls, cand.URL)
		sources := cand.SortedSources()
		details[cand.URL] = CandidateDetail{
			Status:        cand.Status,
			StatusTag:     model.StatusTag(cand.Status),
			ContentLength: cand.ContentLength,
			Alive:         cand.Alive,
			Sources:       sources,
		}
		if cand.Alive {
			aliveCount++
		}
		for _, s := range sources {
			sourcesSummary[s]++
		}
	}
	sort.Strings(urls)

	sourcesUsed := make([]string, 0, len(sourcesSummary))
	for s := range sourcesSummary {
		sourcesUsed = append(sourcesUsed, s)
	}
	sort.Strings(sourcesUsed)

	return &Result{
		URLs:       urls,
		URLDetails: details,
		Summary: Summary{
			TotalURLs:      len(urls),
			AliveURLs:      aliveCount,
			SourcesUsed:    sourcesUsed,
			SourcesSummary: sourcesSummary,
		},
	}
}
