package discovery

import (
	"sort"
	"strings"
)

// defaultWordlist is the exact word set the original tool ships, kept
// verbatim since spec.md defers to it for brute-force discovery defaults.
var defaultWordlist = []string{
	"admin", "login", "dashboard", "api", "test", "backup", "dev", "old",
	"uploads", "download", "files", "images", "assets", "js", "css",
	"config", "settings", "user", "users", "account", "accounts",
	"profile", "search", "index", "home", "about", "contact", "help",
	"support", "blog", "news", "products", "services", "docs",
	"documentation", "api/v1", "api/v2", "auth", "register", "logout",
	"password", "reset", "forgot", "verify", "confirm", "activate",
	"sitemap", "robots", "favicon", ".git", ".env", ".htaccess",
	"web.config", "package.json", "wp-admin", "wp-login", "admin.php",
	"xmlrpc.php", "shell", "cmd", "execute", "upload", "download",
	"file", "folder", "directory", "list", "browse", "view",
}

var bruteforceExtensions = []string{".php", ".html", ".jsp", ".aspx", ".json", ".xml", ".api"}

// BruteForcer generates candidate paths from a wordlist for discovery by
// direct HTTP probe.
type BruteForcer struct {
	wordlist   []string
	extensions []string
}

// NewBruteForcer builds a BruteForcer. A nil wordlist uses the default.
func NewBruteForcer(wordlist []string) *BruteForcer {
	if wordlist == nil {
		wordlist = defaultWordlist
	}
	return &BruteForcer{wordlist: wordlist, extensions: bruteforceExtensions}
}

// GeneratePaths returns every candidate path (base, extensioned, nested
// under /, /api, /v1, /v2) sorted and deduplicated.
func (b *BruteForcer) GeneratePaths() []string {
	seen := make(map[string]struct{})
	add := func(p string) {
		seen[p] = struct{}{}
	}

	for _, word := range b.wordlist {
		add("/" + word)
		for _, ext := range b.extensions {
			add("/" + word + ext)
		}
		add("/" + word + "/")
		add("/api/" + word)
		add("/v1/" + word)
		add("/v2/" + word)
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// GenerateURLs returns full URLs against domain for every generated path.
func (b *BruteForcer) GenerateURLs(domain string) []string {
	if !strings.HasPrefix(domain, "http") {
		domain = "https://" + domain
	}
	domain = strings.TrimSuffix(domain, "/")

	paths := b.GeneratePaths()
	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		urls = append(urls, domain+p)
	}
	return urls
}
