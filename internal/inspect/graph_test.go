package inspect

import (
	"testing"

	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

func TestGraphInsertionOrder(t *testing.T) {
	g := NewGraph()
	g.AddPage("https://a.test/3", model.PageList, 80)
	g.AddPage("https://a.test/1", model.PageDashboard, 90)
	g.AddPage("https://a.test/2", model.PageForm, 70)

	report := g.ToReport()
	if len(report.Pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(report.Pages))
	}
	want := []string{"https://a.test/3", "https://a.test/1", "https://a.test/2"}
	for i, u := range want {
		if report.Pages[i].URL != u {
			t.Fatalf("page %d: expected %s, got %s", i, u, report.Pages[i].URL)
		}
	}
}

func TestGraphAddPageIdempotent(t *testing.T) {
	g := NewGraph()
	g.AddPage("https://a.test/1", model.PageDashboard, 90)
	g.AddPage("https://a.test/1", model.PageForm, 10)

	report := g.ToReport()
	if len(report.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(report.Pages))
	}
	if report.Pages[0].Score != 90 {
		t.Fatalf("second AddPage call should be a no-op, got score %v", report.Pages[0].Score)
	}
}

func TestGraphAddIssuesRegistersMissingPage(t *testing.T) {
	g := NewGraph()
	issues := []model.Issue{model.NewIssue("https://a.test/1", model.CategoryUI, "x", model.SeverityLow, nil)}
	g.AddIssues("https://a.test/1", issues)

	report := g.ToReport()
	if len(report.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(report.Pages))
	}
	if report.Pages[0].Type != model.PageUnknown || report.Pages[0].Score != 0 {
		t.Fatalf("expected unknown/0 default, got %+v", report.Pages[0])
	}
	if len(report.Pages[0].Issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(report.Pages[0].Issues))
	}
}
