package inspect

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/RecoveryAshes/webqa-inspector/internal/logging"
	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

// ValidationResult is one URL's status-validation outcome (spec §4.9).
type ValidationResult struct {
	Status      int
	Valid       bool // status == 200
	ContentType string
	Error       string
}

// URLValidator is the inspection stage's own URL-status check. It shares
// 4.7's HEAD-then-status contract in spirit but is a distinct
// implementation bounded by a single semaphore-limited worker set, per
// spec §9's requirement that the inspection stage never reuse the
// discovery stage's liveness validator.
type URLValidator struct {
	client      *http.Client
	concurrency int
	headers     model.HeaderProvider
}

// NewURLValidator builds a URLValidator. headers and transport are shared
// with the rest of the inspection stage's HTTP clients (crawler.go,
// browseranalyzer.go) so outbound headers and TLS verification stay
// consistent across every client in a scan.
func NewURLValidator(timeout time.Duration, concurrency int, headers model.HeaderProvider, transport *http.Transport) *URLValidator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &URLValidator{
		client:      &http.Client{Timeout: timeout, Transport: transport},
		concurrency: concurrency,
		headers:     headers,
	}
}

// ValidateBatch checks every URL concurrently, bounded by concurrency, and
// returns a result keyed by URL.
func (v *URLValidator) ValidateBatch(ctx context.Context, urls []string) map[string]ValidationResult {
	results := make(map[string]ValidationResult, len(urls))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, v.concurrency)

	for _, u := range urls {
		wg.Add(1)
		sem <- struct{}{}
		go func(u string) {
			defer wg.Done()
			defer func() { <-sem }()

			result := v.checkSingle(ctx, u)
			mu.Lock()
			results[u] = result
			mu.Unlock()
		}(u)
	}
	wg.Wait()
	return results
}

func (v *URLValidator) checkSingle(ctx context.Context, u string) ValidationResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u, nil)
	if err != nil {
		return ValidationResult{Status: 0, Valid: false, Error: err.Error()}
	}
	if v.headers != nil {
		if hdrs, err := v.headers.GetHeaders(); err == nil {
			for name, values := range hdrs {
				if len(values) > 0 {
					req.Header.Set(name, values[0])
				}
			}
		}
	}

	resp, err := v.client.Do(req)
	if err != nil {
		logging.Warnf("url validator: request failed for %s: %v", u, err)
		return ValidationResult{Status: 0, Valid: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	return ValidationResult{
		Status:      resp.StatusCode,
		Valid:       resp.StatusCode == http.StatusOK,
		ContentType: resp.Header.Get("Content-Type"),
	}
}

// FilterValidURLs extracts only the URLs whose result is Valid.
func FilterValidURLs(results map[string]ValidationResult) []string {
	var valid []string
	for u, r := range results {
		if r.Valid {
			valid = append(valid, u)
		}
	}
	return valid
}
