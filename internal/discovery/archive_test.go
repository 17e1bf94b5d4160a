package discovery

import "testing"

// ArchiveSearcher.Search/SearchMultiple talk to the fixed web.archive.org CDX
// endpoint and have no injectable base URL, so they aren't exercised here;
// see DESIGN.md. minInt is the one pure helper in this file.

func TestMinInt(t *testing.T) {
	if got := minInt(1, 0); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := minInt(1, 5); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}
