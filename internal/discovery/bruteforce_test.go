package discovery

import (
	"sort"
	"testing"
)

func TestBruteForcer_GeneratePaths(t *testing.T) {
	b := NewBruteForcer([]string{"admin"})
	paths := b.GeneratePaths()

	if !sort.StringsAreSorted(paths) {
		t.Error("expected paths to be sorted")
	}

	want := []string{"/admin", "/admin.php", "/admin.html", "/admin/", "/api/admin", "/v1/admin", "/v2/admin"}
	found := make(map[string]bool)
	for _, p := range paths {
		found[p] = true
	}
	for _, w := range want {
		if !found[w] {
			t.Errorf("expected path %q in generated set", w)
		}
	}
}

func TestBruteForcer_GenerateURLs(t *testing.T) {
	b := NewBruteForcer([]string{"login"})
	urls := b.GenerateURLs("example.com")

	for _, u := range urls {
		if u[:8] != "https://" {
			t.Errorf("expected scheme-qualified URL, got %q", u)
		}
	}
}

func TestBruteForcer_DefaultWordlist(t *testing.T) {
	b := NewBruteForcer(nil)
	if len(b.wordlist) == 0 {
		t.Error("expected non-empty default wordlist")
	}
}
