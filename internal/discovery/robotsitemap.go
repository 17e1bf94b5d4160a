package discovery

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/temoto/robotstxt"

	"github.com/RecoveryAshes/webqa-inspector/internal/logging"
)

// RobotsSitemapFetcher pulls candidate paths from robots.txt Disallow/Allow
// directives and sitemap.xml (including nested sitemap indexes), using
// temoto/robotstxt and antchfx/xmlquery rather than hand-rolled parsing —
// both are already transitive dependencies of the crawling stack.
type RobotsSitemapFetcher struct {
	client *http.Client
}

// NewRobotsSitemapFetcher builds a fetcher with the given request timeout
// and shared transport.
func NewRobotsSitemapFetcher(timeout time.Duration, transport *http.Transport) *RobotsSitemapFetcher {
	return &RobotsSitemapFetcher{client: &http.Client{Timeout: timeout, Transport: transport}}
}

// FetchRobots downloads baseURL+"/robots.txt", returning every path named
// in an Allow/Disallow directive plus any Sitemap: URLs it declares,
// resolved against the robots.txt URL when relative.
func (f *RobotsSitemapFetcher) FetchRobots(baseURL string) (paths []string, sitemaps []string, err error) {
	robotsURL := strings.TrimSuffix(baseURL, "/") + "/robots.txt"

	resp, err := f.client.Get(robotsURL)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	robotsData, err := robotstxt.FromResponse(resp)
	if err != nil {
		logging.Debugf("robots.txt parse failed for %s: %v", robotsURL, err)
		return nil, nil, err
	}

	seen := make(map[string]struct{})
	for _, group := range robotsData.Groups {
		for _, rule := range group.Rules {
			p := rule.Path
			if p == "" || p == "/" {
				continue
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			paths = append(paths, p)
		}
	}

	base, baseErr := url.Parse(robotsURL)
	for _, sm := range robotsData.Sitemaps {
		if ref, perr := url.Parse(sm); perr == nil && baseErr == nil {
			sm = base.ResolveReference(ref).String()
		}
		sitemaps = append(sitemaps, sm)
	}

	return paths, sitemaps, nil
}

// FetchSitemap downloads and parses a sitemap.xml (or sitemap index) at
// sitemapURL via XPath, recursing one level into any nested
// <sitemap><loc> entries.
func (f *RobotsSitemapFetcher) FetchSitemap(sitemapURL string) ([]string, error) {
	resp, err := f.client.Get(sitemapURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := xmlquery.Parse(resp.Body)
	if err != nil {
		logging.Debugf("sitemap XML parse failed for %s: %v", sitemapURL, err)
		return nil, err
	}

	var urls []string
	locNodes := xmlquery.Find(doc, "//*[local-name()='loc']")
	for _, node := range locNodes {
		loc := strings.TrimSpace(node.InnerText())
		if loc == "" {
			continue
		}
		if strings.Contains(loc, "sitemap") && strings.HasSuffix(loc, ".xml") {
			nested, err := f.FetchSitemap(loc)
			if err != nil {
				logging.Debugf("nested sitemap fetch failed for %s: %v", loc, err)
				continue
			}
			urls = append(urls, nested...)
			continue
		}
		urls = append(urls, loc)
	}

	return urls, nil
}
