package inspect

import (
	"fmt"
	"strings"

	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

var accessibleRoles = map[string]bool{
	"button":   true,
	"link":     true,
	"textbox":  true,
	"combobox": true,
}

// IssueDetector applies the rule-based hygiene checks in spec §4.13 against
// one page's fully assembled signal set.
type IssueDetector struct{}

// NewIssueDetector builds an IssueDetector.
func NewIssueDetector() *IssueDetector {
	return &IssueDetector{}
}

// PageSignals bundles everything a page's detection rules need.
type PageSignals struct {
	URL             string
	ConsoleLogs     []model.ConsoleLog
	NetworkFailures []model.NetworkFailure
	DOMMetrics      model.DOMMetrics
	Structure       model.Structure
	Performance     model.PerformanceRecord
	Accessibility   model.AccessibilityNode
	DOMSnapshot     string
}

// Detect returns every issue found for one page.
func (d *IssueDetector) Detect(s PageSignals) []model.Issue {
	var issues []model.Issue

	for _, log := range s.ConsoleLogs {
		if log.Type == "error" || log.Type == "assert" {
			issues = append(issues, model.NewIssue(s.URL, model.CategoryFunctional, "JavaScript error", model.SeverityHigh, map[string]interface{}{
				"type": log.Type, "text": log.Text, "location": log.Location,
			}))
		}
	}

	for _, failure := range s.NetworkFailures {
		issues = append(issues, model.NewIssue(s.URL, model.CategoryFunctional, "Network request failed", model.SeverityHigh, map[string]interface{}{
			"url": failure.URL, "method": failure.Method, "failure": failure.Failure, "resource_type": failure.ResourceType,
		}))
	}

	if !s.Structure.HasHeader {
		issues = append(issues, model.NewIssue(s.URL, model.CategoryUI, "Missing header", model.SeverityLow, nil))
	}
	if !s.Structure.HasFooter {
		issues = append(issues, model.NewIssue(s.URL, model.CategoryUI, "Missing footer", model.SeverityLow, nil))
	}
	if !s.Structure.HasNav {
		issues = append(issues, model.NewIssue(s.URL, model.CategoryUI, "Missing navigation", model.SeverityMedium, nil))
	}

	for _, bl := range s.Structure.BrokenLinks {
		sev := model.SeverityLow
		if bl.Type == "link" {
			sev = model.SeverityMedium
		}
		issues = append(issues, model.NewIssue(s.URL, model.CategoryUI, fmt.Sprintf("Broken %s", bl.Type), sev, map[string]interface{}{
			"type": bl.Type, "reason": bl.Reason, "target": bl.Target,
		}))
	}

	if s.Performance.Navigation.DurationMS > 4000 {
		issues = append(issues, model.NewIssue(s.URL, model.CategoryPerformance, "Slow navigation (>4s)", model.SeverityMedium, map[string]interface{}{
			"duration": s.Performance.Navigation.DurationMS,
		}))
	}

	if s.DOMMetrics.NodeCount > 4000 {
		issues = append(issues, model.NewIssue(s.URL, model.CategoryPerformance, "Heavy DOM (>4000 nodes)", model.SeverityMedium, nil))
	}

	if missing := countMissingAccessibleNames(s.Accessibility); missing > 0 {
		issues = append(issues, model.NewIssue(s.URL, model.CategoryAccessibility, fmt.Sprintf("Elements missing accessible names (%d)", missing), model.SeverityMedium, nil))
	}

	lowerSnapshot := strings.ToLower(s.DOMSnapshot)
	if strings.Contains(lowerSnapshot, "lorem ipsum") {
		issues = append(issues, model.NewIssue(s.URL, model.CategoryContent, "Placeholder text present", model.SeverityLow, nil))
	}

	if s.DOMMetrics.ImgCount > 0 && strings.Contains(lowerSnapshot, `alt=""`) {
		issues = append(issues, model.NewIssue(s.URL, model.CategoryAccessibility, "Images missing alt text", model.SeverityLow, nil))
	}

	return issues
}

// countMissingAccessibleNames walks the accessibility tree counting
// interactive nodes with an empty accessible name.
func countMissingAccessibleNames(root model.AccessibilityNode) int {
	count := 0
	stack := []model.AccessibilityNode{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if accessibleRoles[node.Role] && node.Name == "" {
			count++
		}
		stack = append(stack, node.Children...)
	}
	return count
}
