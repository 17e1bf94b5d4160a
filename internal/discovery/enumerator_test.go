package discovery

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

func TestEnumeratorRunMergesTechniquesAndValidates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><a href="/about">about</a></body></html>`))
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>leaf</body></html>`))
	})
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /hidden\n"))
	})
	mux.HandleFunc("/hidden", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	enum, err := NewEnumerator(srv.URL, Options{
		Depth:      2,
		Threads:    2,
		Timeout:    2 * time.Second,
		Techniques: []model.Technique{model.SourceLive, model.SourceRobots, model.SourceSitemap},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := enum.Run()

	if result.Summary.TotalURLs == 0 {
		t.Fatalf("expected at least one discovered URL, got %+v", result.Summary)
	}

	wantAlive := map[string]bool{
		srv.URL + "/":       true,
		srv.URL + "/about":  true,
		srv.URL + "/hidden": true,
	}
	for u := range wantAlive {
		detail, ok := result.URLDetails[u]
		if !ok {
			t.Fatalf("expected %s to be discovered, got %+v", u, result.URLDetails)
		}
		if !detail.Alive {
			t.Fatalf("expected %s to be alive, got %+v", u, detail)
		}
	}
}

func TestEnumeratorOnlyAliveFiltersDeadCandidates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body></body></html>`))
	})
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /gone\n"))
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	enum, err := NewEnumerator(srv.URL, Options{
		Depth:      1,
		Threads:    2,
		Timeout:    2 * time.Second,
		OnlyAlive:  true,
		Techniques: []model.Technique{model.SourceLive, model.SourceRobots},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := enum.Run()
	if _, ok := result.URLDetails[srv.URL+"/gone"]; ok {
		t.Fatal("expected a dead candidate to be filtered out when OnlyAlive is set")
	}
}

func TestNewEnumeratorRejectsInvalidTarget(t *testing.T) {
	if _, err := NewEnumerator("://not a url", Options{}); err == nil {
		t.Fatal("expected an invalid target URL to be rejected")
	}
}

func TestNewEnumeratorDefaultsTechniquesToAll(t *testing.T) {
	enum, err := NewEnumerator("https://example.com", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(enum.opts.Techniques) != len(model.AllTechniques) {
		t.Fatalf("expected default techniques to be all, got %v", enum.opts.Techniques)
	}
}
