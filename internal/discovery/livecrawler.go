package discovery

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/RecoveryAshes/webqa-inspector/internal/logging"
	"github.com/RecoveryAshes/webqa-inspector/internal/model"
	"github.com/RecoveryAshes/webqa-inspector/internal/urlutil"
)

// LiveCrawler performs a breadth-first HTML crawl of the target domain,
// collecting every internal link, form action, script src, and
// meta-refresh target it finds. It deliberately does not use colly's
// MaxDepth/AllowedDomains: AllowedDomains matches subdomains incorrectly
// (a target of "example.com" would reject "shop.example.com"), so depth
// and domain membership are both checked by hand in OnRequest/OnHTML,
// exactly as the teacher's static crawler does.
type LiveCrawler struct {
	collector *colly.Collector
	queue     *urlQueue
	domain    string
	maxDepth  int
	timeout   time.Duration
	headers   model.HeaderProvider

	onCandidate func(string)
}

// NewLiveCrawler builds a LiveCrawler bounded to maxDepth hops from the
// target domain, using threads parallel workers and a per-request timeout.
// transport is shared with the rest of the enumerator's HTTP clients so
// ValidateSSL applies uniformly across every discovery technique.
func NewLiveCrawler(domain string, maxDepth, threads int, timeout time.Duration, headers model.HeaderProvider, transport *http.Transport) *LiveCrawler {
	c := colly.NewCollector(colly.Async(true))
	c.SetRequestTimeout(timeout)
	c.WithTransport(transport)

	if err := c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: threads, Delay: 0}); err != nil {
		logging.Warnf("live crawler: failed to set parallelism limit: %v", err)
	}

	lc := &LiveCrawler{
		collector: c,
		queue:     newURLQueue(domain, maxDepth),
		domain:    domain,
		maxDepth:  maxDepth,
		timeout:   timeout,
		headers:   headers,
	}
	lc.setupCallbacks()
	return lc
}

func (lc *LiveCrawler) setupCallbacks() {
	lc.collector.OnRequest(func(r *colly.Request) {
		if lc.headers != nil {
			if hdrs, err := lc.headers.GetHeaders(); err == nil {
				for name, values := range hdrs {
					if len(values) > 0 {
						r.Headers.Set(name, values[0])
					}
				}
			}
		}
		if !urlutil.IsInternal(r.URL.String(), lc.domain) {
			r.Abort()
		}
	})

	lc.collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		lc.follow(e.Request, e.Request.AbsoluteURL(e.Attr("href")))
	})

	lc.collector.OnHTML("form[action]", func(e *colly.HTMLElement) {
		lc.follow(e.Request, e.Request.AbsoluteURL(e.Attr("action")))
	})

	lc.collector.OnHTML("script[src]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("src"))
		if link != "" {
			lc.record(link)
		}
	})

	lc.collector.OnHTML("link[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link != "" {
			lc.record(link)
		}
	})

	lc.collector.OnHTML(`meta[http-equiv="refresh"]`, func(e *colly.HTMLElement) {
		content := e.Attr("content")
		if idx := strings.Index(strings.ToLower(content), "url="); idx >= 0 {
			target := strings.TrimSpace(content[idx+4:])
			lc.follow(e.Request, e.Request.AbsoluteURL(target))
		}
	})

	lc.collector.OnError(func(r *colly.Response, err error) {
		logging.Debugf("live crawler request error [%s]: %v", r.Request.URL, err)
	})
}

// follow validates, marks, and visits a page link found on the page that
// from fetched. colly numbers the seed request depth 1, so a page at colly
// depth d is d-1 hops from the seed and its links are followed only while
// d <= maxDepth.
func (lc *LiveCrawler) follow(from *colly.Request, link string) {
	if link == "" || !strings.HasPrefix(link, "http") {
		return
	}
	if lc.queue.isVisited(link) {
		return
	}
	if from.Depth > lc.maxDepth {
		return
	}
	parsed, err := url.Parse(link)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return
	}
	if !urlutil.IsInternal(link, lc.domain) {
		return
	}

	lc.queue.markVisited(link)
	lc.record(link)
	if err := from.Visit(link); err != nil && !strings.Contains(err.Error(), "already visited") {
		logging.Debugf("live crawler: failed to visit %s: %v", link, err)
	}
}

// record stashes a candidate without requiring it be visited/crawled
// itself (scripts, stylesheets, form targets).
func (lc *LiveCrawler) record(link string) {
	if lc.onCandidate != nil {
		lc.onCandidate(link)
	}
}

// Run crawls starting from seedURL, invoking onCandidate for every link
// discovered (page links, forms, scripts, stylesheets, meta-refresh
// targets) and blocking until the crawl's async queue drains.
func (lc *LiveCrawler) Run(seedURL string, onCandidate func(string)) error {
	lc.onCandidate = onCandidate
	lc.queue.markVisited(seedURL)
	lc.record(seedURL)
	if err := lc.collector.Visit(seedURL); err != nil {
		return err
	}
	lc.collector.Wait()
	return nil
}
