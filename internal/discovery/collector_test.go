package discovery

import (
	"sync"
	"testing"

	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

func TestCollectorDeduplicatesAndMergesSources(t *testing.T) {
	c := NewCollector("https://example.com")
	c.Add("https://example.com/page", model.SourceLive)
	c.Add("https://example.com/page", model.SourceJS)

	if c.Count() != 1 {
		t.Fatalf("expected 1 distinct candidate, got %d", c.Count())
	}

	all := c.All()
	if len(all[0].Sources) != 2 {
		t.Fatalf("expected 2 merged sources, got %+v", all[0].Sources)
	}
}

func TestCollectorNormalizesBeforeDeduplicating(t *testing.T) {
	c := NewCollector("https://example.com")
	c.Add("https://EXAMPLE.com/page#frag", model.SourceLive)
	c.Add("https://example.com/page", model.SourceLive)

	if c.Count() != 1 {
		t.Fatalf("expected normalization to merge case/fragment variants, got %d", c.Count())
	}
}

func TestCollectorIgnoresUnparsableURLs(t *testing.T) {
	c := NewCollector("https://example.com")
	c.Add("://not a url", model.SourceLive)

	if c.Count() != 0 {
		t.Fatalf("expected unparsable URLs to be dropped, got %d", c.Count())
	}
}

func TestCollectorConcurrentAdds(t *testing.T) {
	c := NewCollector("https://example.com")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add("https://example.com/shared", model.SourceLive)
		}()
	}
	wg.Wait()

	if c.Count() != 1 {
		t.Fatalf("expected concurrent adds of the same URL to collapse to 1, got %d", c.Count())
	}
}
