package inspect

import (
	"testing"

	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

func countCategory(issues []model.Issue, cat model.IssueCategory) int {
	n := 0
	for _, i := range issues {
		if i.Category == cat {
			n++
		}
	}
	return n
}

func TestDetectConsoleAndNetworkIssues(t *testing.T) {
	d := NewIssueDetector()
	issues := d.Detect(PageSignals{
		URL: "https://a.test/",
		ConsoleLogs: []model.ConsoleLog{
			{Type: "error", Text: "TypeError"},
			{Type: "log", Text: "ignored"},
		},
		NetworkFailures: []model.NetworkFailure{
			{URL: "https://a.test/api", Failure: "net::ERR_FAILED"},
		},
		Structure: model.Structure{HasHeader: true, HasFooter: true, HasNav: true},
	})

	if countCategory(issues, model.CategoryFunctional) != 2 {
		t.Fatalf("expected 2 functional issues (1 console error, 1 network failure), got %d: %+v", countCategory(issues, model.CategoryFunctional), issues)
	}
}

func TestDetectMissingLayoutIssues(t *testing.T) {
	d := NewIssueDetector()
	issues := d.Detect(PageSignals{
		URL:       "https://a.test/",
		Structure: model.Structure{},
	})

	if countCategory(issues, model.CategoryUI) != 3 {
		t.Fatalf("expected 3 UI issues for missing header/footer/nav, got %d: %+v", countCategory(issues, model.CategoryUI), issues)
	}
}

func TestDetectPerformanceIssues(t *testing.T) {
	d := NewIssueDetector()
	issues := d.Detect(PageSignals{
		URL:         "https://a.test/",
		Structure:   model.Structure{HasHeader: true, HasFooter: true, HasNav: true},
		Performance: model.PerformanceRecord{Navigation: model.NavigationTiming{DurationMS: 5000}},
		DOMMetrics:  model.DOMMetrics{NodeCount: 5000},
	})

	if countCategory(issues, model.CategoryPerformance) != 2 {
		t.Fatalf("expected 2 performance issues (slow nav, heavy DOM), got %d: %+v", countCategory(issues, model.CategoryPerformance), issues)
	}
}

func TestDetectAccessibilityMissingNames(t *testing.T) {
	d := NewIssueDetector()
	tree := model.AccessibilityNode{
		Role: "generic",
		Children: []model.AccessibilityNode{
			{Role: "button", Name: ""},
			{Role: "link", Name: "Home"},
		},
	}
	issues := d.Detect(PageSignals{
		URL:           "https://a.test/",
		Structure:     model.Structure{HasHeader: true, HasFooter: true, HasNav: true},
		Accessibility: tree,
	})

	if countCategory(issues, model.CategoryAccessibility) != 1 {
		t.Fatalf("expected 1 accessibility issue for the unnamed button, got %d: %+v", countCategory(issues, model.CategoryAccessibility), issues)
	}
}

func TestDetectPlaceholderContent(t *testing.T) {
	d := NewIssueDetector()
	issues := d.Detect(PageSignals{
		URL:         "https://a.test/",
		Structure:   model.Structure{HasHeader: true, HasFooter: true, HasNav: true},
		DOMSnapshot: "<p>Lorem Ipsum dolor sit amet</p>",
	})

	if countCategory(issues, model.CategoryContent) != 1 {
		t.Fatalf("expected 1 content issue for placeholder text, got %d: %+v", countCategory(issues, model.CategoryContent), issues)
	}
}

func TestDetectCleanPageHasNoIssues(t *testing.T) {
	d := NewIssueDetector()
	issues := d.Detect(PageSignals{
		URL:       "https://a.test/",
		Structure: model.Structure{HasHeader: true, HasFooter: true, HasNav: true},
	})

	if len(issues) != 0 {
		t.Fatalf("expected no issues for a clean page, got %+v", issues)
	}
}
