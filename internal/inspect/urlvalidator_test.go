package inspect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestValidateBatchMarksStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusOK)
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	v := NewURLValidator(2*time.Second, 4, nil, nil)
	results := v.ValidateBatch(context.Background(), []string{srv.URL + "/ok", srv.URL + "/missing"})

	if !results[srv.URL+"/ok"].Valid {
		t.Fatalf("expected /ok to be valid, got %+v", results[srv.URL+"/ok"])
	}
	if results[srv.URL+"/missing"].Valid {
		t.Fatalf("expected /missing to be invalid, got %+v", results[srv.URL+"/missing"])
	}
	if results[srv.URL+"/missing"].Status != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", results[srv.URL+"/missing"].Status)
	}
}

func TestValidateBatchRecordsRequestErrors(t *testing.T) {
	v := NewURLValidator(time.Second, 2, nil, nil)
	results := v.ValidateBatch(context.Background(), []string{"http://127.0.0.1:1"})

	r := results["http://127.0.0.1:1"]
	if r.Valid {
		t.Fatalf("expected an unreachable host to be invalid, got %+v", r)
	}
	if r.Error == "" {
		t.Fatal("expected an error message to be recorded")
	}
}

func TestNewURLValidatorFloorsConcurrency(t *testing.T) {
	v := NewURLValidator(time.Second, 0, nil, nil)
	if v.concurrency != 1 {
		t.Fatalf("expected concurrency to floor at 1, got %d", v.concurrency)
	}
}

func TestFilterValidURLs(t *testing.T) {
	results := map[string]ValidationResult{
		"https://a.test/ok":   {Valid: true},
		"https://a.test/bad":  {Valid: false},
		"https://a.test/good": {Valid: true},
	}

	valid := FilterValidURLs(results)
	if len(valid) != 2 {
		t.Fatalf("expected 2 valid URLs, got %d: %v", len(valid), valid)
	}
}
