package discovery

import (
	"regexp"
	"strings"
)

// endpointPatterns mirrors the original tool's JS endpoint regex family:
// quoted API-shaped paths, fetch/axios/XHR call targets, and bare
// leading-slash string literals.
var endpointPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)["']([/a-zA-Z0-9_\-./]+(?:\.(?:php|jsp|aspx|html|json|xml|api)))["']`),
	regexp.MustCompile(`(?i)fetch\(["']([^"']+)["']`),
	regexp.MustCompile(`(?i)axios\.(?:get|post|put|delete|patch)\(["']([^"']+)["']`),
	regexp.MustCompile(`(?i)XMLHttpRequest\(\).*?open\(["'](?:GET|POST)["'],\s*["']([^"']+)["']`),
	regexp.MustCompile(`(?i)["']([/a-zA-Z0-9_\-./]+/(?:api|v\d+|admin|users|data|config)[/a-zA-Z0-9_\-./]*)["']`),
	regexp.MustCompile(`(?i)["']([/a-zA-Z0-9_\-./]+\.(?:php|jsp|aspx|html))["']`),
	regexp.MustCompile(`(?i)["']([/a-zA-Z0-9_\-./]*/?api[/a-zA-Z0-9_\-./]*)["']`),
	regexp.MustCompile(`(?i)(?:^|["'])\s*(/[a-zA-Z0-9_\-./]+)\s*(?:["']|$)`),
}

var invalidEndpointPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*$`),
	regexp.MustCompile(`(?i)\.jpg|\.png|\.gif|\.css|\.woff`),
	regexp.MustCompile(`^//$`),
	regexp.MustCompile(`^\s+`),
}

// JSExtractor mines JavaScript source text for candidate API endpoints.
type JSExtractor struct{}

// NewJSExtractor builds a JSExtractor.
func NewJSExtractor() *JSExtractor { return &JSExtractor{} }

// ExtractEndpoints returns the set of endpoints found in jsContent that
// pass isValidEndpoint.
func (e *JSExtractor) ExtractEndpoints(jsContent string) []string {
	seen := make(map[string]struct{})
	var out []string

	for _, pattern := range endpointPatterns {
		matches := pattern.FindAllStringSubmatch(jsContent, -1)
		for _, m := range matches {
			if len(m) < 2 {
				continue
			}
			endpoint := strings.TrimSpace(m[1])
			if !isValidEndpoint(endpoint) {
				continue
			}
			if _, dup := seen[endpoint]; dup {
				continue
			}
			seen[endpoint] = struct{}{}
			out = append(out, endpoint)
		}
	}

	return out
}

func isValidEndpoint(endpoint string) bool {
	if !strings.HasPrefix(endpoint, "/") {
		return false
	}
	for _, p := range invalidEndpointPatterns {
		if p.MatchString(endpoint) {
			return false
		}
	}
	return len(endpoint) > 1 && len(endpoint) < 500
}
