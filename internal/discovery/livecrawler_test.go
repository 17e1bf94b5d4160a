package discovery

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestLiveCrawlerFollowsInternalLinksOnly(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<a href="/about">about</a>
			<a href="https://external.test/other">external</a>
			<script src="/app.js"></script>
		</body></html>`))
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>no more links</body></html>`))
	})
	mux.HandleFunc("/app.js", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`console.log("hi")`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	host, _ := url.Parse(srv.URL)
	lc := NewLiveCrawler(host.Hostname(), 3, 2, 2*time.Second, nil, nil)

	var found []string
	err := lc.Run(srv.URL+"/", func(link string) {
		found = append(found, link)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[string]bool{}
	for _, l := range found {
		seen[l] = true
		if l == "https://external.test/other" {
			t.Fatal("external link should never be followed/recorded")
		}
	}
	if !seen[srv.URL+"/about"] {
		t.Fatalf("expected /about to be recorded, got %v", found)
	}
	if !seen[srv.URL+"/app.js"] {
		t.Fatalf("expected script src to be recorded, got %v", found)
	}
}

func TestLiveCrawlerRespectsMaxDepth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><a href="/level1">l1</a></body></html>`))
	})
	mux.HandleFunc("/level1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><a href="/level2">l2</a></body></html>`))
	})
	mux.HandleFunc("/level2", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>leaf</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	host, _ := url.Parse(srv.URL)
	lc := NewLiveCrawler(host.Hostname(), 1, 2, 2*time.Second, nil, nil)

	var found []string
	err := lc.Run(srv.URL+"/", func(link string) {
		found = append(found, link)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, l := range found {
		if l == srv.URL+"/level2" {
			t.Fatal("expected maxDepth=1 to never reach /level2")
		}
	}
}
