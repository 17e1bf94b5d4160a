package inspect

import (
	"testing"

	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

func TestScorePage(t *testing.T) {
	scorer := NewScorer()

	t.Run("no issues keeps the base score", func(t *testing.T) {
		if got := scorer.ScorePage(nil); got != 100 {
			t.Fatalf("expected 100, got %v", got)
		}
	})

	t.Run("deducts per-severity weight", func(t *testing.T) {
		issues := []model.Issue{
			model.NewIssue("u", model.CategoryFunctional, "broken link", model.SeverityCritical, nil),
			model.NewIssue("u", model.CategoryUI, "low contrast", model.SeverityLow, nil),
		}
		got := scorer.ScorePage(issues)
		want := 100.0 - 20 - 2
		if got != want {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})

	t.Run("floors at zero", func(t *testing.T) {
		var issues []model.Issue
		for i := 0; i < 10; i++ {
			issues = append(issues, model.NewIssue("u", model.CategoryRuntime, "error", model.SeverityCritical, nil))
		}
		if got := scorer.ScorePage(issues); got != 0 {
			t.Fatalf("expected 0, got %v", got)
		}
	})
}

func TestGlobalScore(t *testing.T) {
	scorer := NewScorer()

	if got := scorer.GlobalScore(nil); got != 0 {
		t.Fatalf("expected 0 for empty set, got %v", got)
	}

	got := scorer.GlobalScore([]float64{100, 50, 0})
	if got != 50 {
		t.Fatalf("expected mean 50, got %v", got)
	}
}
