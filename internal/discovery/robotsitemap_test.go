package discovery

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchRobotsExtractsPathsAndSitemaps(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /admin\nDisallow: /private\nAllow: /public\nSitemap: /sitemap.xml\n"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewRobotsSitemapFetcher(2*time.Second, nil)
	paths, sitemaps, err := f.FetchRobots(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]bool{"/admin": true, "/private": true, "/public": true}
	for _, p := range paths {
		if !want[p] {
			t.Fatalf("unexpected path %q in %v", p, paths)
		}
		delete(want, p)
	}
	if len(want) != 0 {
		t.Fatalf("missing expected paths: %v", want)
	}
	if len(sitemaps) != 1 || sitemaps[0] != srv.URL+"/sitemap.xml" {
		t.Fatalf("expected one sitemap URL, got %v", sitemaps)
	}
}

func TestFetchSitemapParsesLocEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<url><loc>https://example.com/a</loc></url>
	<url><loc>https://example.com/b</loc></url>
</urlset>`))
	}))
	defer srv.Close()

	f := NewRobotsSitemapFetcher(2*time.Second, nil)
	urls, err := f.FetchSitemap(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("expected 2 URLs, got %v", urls)
	}
}

func TestFetchSitemapRecursesNestedIndex(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/nested-sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<url><loc>https://example.com/c</loc></url>
</urlset>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/index.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<sitemap><loc>` + srv.URL + `/nested-sitemap.xml</loc></sitemap>
</sitemapindex>`))
	})

	f := NewRobotsSitemapFetcher(2*time.Second, nil)
	urls, err := f.FetchSitemap(srv.URL + "/index.xml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://example.com/c" {
		t.Fatalf("expected the nested sitemap's single URL, got %v", urls)
	}
}
