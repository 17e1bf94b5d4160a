package discovery

import (
	"sync"

	"github.com/RecoveryAshes/webqa-inspector/internal/model"
	"github.com/RecoveryAshes/webqa-inspector/internal/urlutil"
)

// Collector is the concurrency-safe sink every discovery technique writes
// into. Each technique runs in its own goroutine and calls Add for every
// URL it finds; Collector normalizes and deduplicates across all of them,
// merging Sources when two techniques find the same URL.
type Collector struct {
	mu         sync.Mutex
	candidates map[string]*model.CandidateURL
	base       string
}

// NewCollector builds a Collector for targetURL. Add normalizes each URL
// as given; it does not resolve relative URLs against targetURL.
func NewCollector(targetURL string) *Collector {
	return &Collector{
		candidates: make(map[string]*model.CandidateURL),
		base:       targetURL,
	}
}

// Add normalizes rawURL and records it as found by technique, merging into
// any existing candidate for the same normalized URL.
func (c *Collector) Add(rawURL string, technique model.Technique) {
	normalized, err := urlutil.MustNormalize(rawURL)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cand, exists := c.candidates[normalized]
	if !exists {
		c.candidates[normalized] = model.NewCandidateURL(normalized, technique)
		return
	}
	cand.AddSource(technique)
}

// All returns every collected candidate in no particular order.
func (c *Collector) All() []*model.CandidateURL {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*model.CandidateURL, 0, len(c.candidates))
	for _, cand := range c.candidates {
		out = append(out, cand)
	}
	return out
}

// Count returns the number of distinct normalized candidates collected
// so far.
func (c *Collector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.candidates)
}
