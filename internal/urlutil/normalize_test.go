package urlutil

import "testing"

func TestNormalize_Idempotent(t *testing.T) {
	cases := []string{
		"HTTPS://Example.com:443/a#frag",
		"http://Example.com:80/",
		"https://example.com/a?b=1",
		"example.com/path",
	}
	for _, raw := range cases {
		t.Run(raw, func(t *testing.T) {
			once, err := MustNormalize(raw)
			if err != nil {
				t.Fatalf("normalize failed: %v", err)
			}
			twice, err := MustNormalize(once)
			if err != nil {
				t.Fatalf("re-normalize failed: %v", err)
			}
			if once != twice {
				t.Errorf("not idempotent: %q != %q", once, twice)
			}
		})
	}
}

func TestNormalize_ExactCase(t *testing.T) {
	got, err := MustNormalize("HTTPS://Example.com:443/a#frag")
	if err != nil {
		t.Fatal(err)
	}
	want := "https://example.com/a"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalize_DefaultScheme(t *testing.T) {
	got, err := MustNormalize("example.com/x")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://example.com/x" {
		t.Errorf("got %q", got)
	}
}

func TestNormalize_PathDefault(t *testing.T) {
	got, err := MustNormalize("https://example.com")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://example.com/" {
		t.Errorf("got %q", got)
	}
}

func TestNormalize_PreservesQueryCase(t *testing.T) {
	got, err := MustNormalize("https://example.com/Path?Foo=Bar")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://example.com/Path?Foo=Bar" {
		t.Errorf("query/path case should be preserved, got %q", got)
	}
}

func TestIsInternal(t *testing.T) {
	tests := []struct {
		url, domain string
		want        bool
	}{
		{"https://a.example.com/x", "example.com", true},
		{"https://evil.com", "example.com", false},
		{"https://www.example.com/x", "example.com", true},
		{"https://example.com", "www.example.com", true},
		{"https://notexample.com", "example.com", false},
	}
	for _, tt := range tests {
		if got := IsInternal(tt.url, tt.domain); got != tt.want {
			t.Errorf("IsInternal(%q, %q) = %v, want %v", tt.url, tt.domain, got, tt.want)
		}
	}
}
