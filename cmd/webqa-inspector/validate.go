package main

import (
	"fmt"
	"strings"

	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

// validateFlags checks the discovery CLI's arguments against spec §6's
// contract.
func validateFlags(domain string, depth, threads, timeout int, techniques []string) error {
	if domain == "" {
		return fmt.Errorf("domain is required")
	}
	if err := model.ValidateURL(normalizeDomainURL(domain)); err != nil {
		return fmt.Errorf("invalid domain: %w", err)
	}
	if depth < 1 || depth > 10 {
		return fmt.Errorf("depth must be between 1-10, got %d", depth)
	}
	if threads < 1 || threads > 200 {
		return fmt.Errorf("threads must be between 1-200, got %d", threads)
	}
	if timeout < 1 || timeout > 120 {
		return fmt.Errorf("timeout must be between 1-120 seconds, got %d", timeout)
	}

	valid := make(map[string]bool, len(model.AllTechniques))
	for _, t := range model.AllTechniques {
		valid[string(t)] = true
	}
	found := 0
	for _, t := range techniques {
		if valid[t] {
			found++
		}
	}
	if found == 0 {
		return fmt.Errorf("no valid techniques given (choose from live,js,wayback,bruteforce,robots,sitemap)")
	}
	return nil
}

// normalizeDomainURL scheme-qualifies a bare domain for validation purposes.
func normalizeDomainURL(domain string) string {
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return domain
	}
	return "https://" + domain
}

// parseTechniques splits a comma list into model.Technique values the
// enumerator understands.
func parseTechniques(raw []string) []model.Technique {
	techniques := make([]model.Technique, 0, len(raw))
	valid := make(map[string]bool, len(model.AllTechniques))
	for _, t := range model.AllTechniques {
		valid[string(t)] = true
	}
	for _, t := range raw {
		if valid[t] {
			techniques = append(techniques, model.Technique(t))
		}
	}
	return techniques
}
