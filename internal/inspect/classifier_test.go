package inspect

import (
	"testing"

	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

func TestClassifyLogin(t *testing.T) {
	html := `<html><body><form><input type="password"></form></body></html>`
	c := NewPageClassifier()
	got := c.Classify(html, model.DOMMetrics{})
	if got != model.PageLogin {
		t.Fatalf("expected login, got %s", got)
	}
}

func TestClassifyDashboard(t *testing.T) {
	html := `<html><body><canvas></canvas></body></html>`
	c := NewPageClassifier()
	got := c.Classify(html, model.DOMMetrics{})
	if got != model.PageDashboard {
		t.Fatalf("expected dashboard, got %s", got)
	}
}

func TestClassifyListPage(t *testing.T) {
	html := `<html><body><table></table><ul><li>a</li></ul></body></html>`
	c := NewPageClassifier()
	got := c.Classify(html, model.DOMMetrics{InputCount: 0})
	if got != model.PageList {
		t.Fatalf("expected list, got %s", got)
	}
}

func TestClassifyForm(t *testing.T) {
	html := `<html><body><form><input><input><button>Go</button></form></body></html>`
	c := NewPageClassifier()
	got := c.Classify(html, model.DOMMetrics{InputCount: 2, ButtonCount: 1})
	if got != model.PageForm {
		t.Fatalf("expected form, got %s", got)
	}
}

func TestClassifyWizard(t *testing.T) {
	html := `<html><body><div class="wizard-step">1</div></body></html>`
	c := NewPageClassifier()
	got := c.Classify(html, model.DOMMetrics{})
	if got != model.PageWizard {
		t.Fatalf("expected wizard, got %s", got)
	}
}

func TestClassifyUnknown(t *testing.T) {
	html := `<html><body><p>nothing special</p></body></html>`
	c := NewPageClassifier()
	got := c.Classify(html, model.DOMMetrics{})
	if got != model.PageUnknown {
		t.Fatalf("expected unknown, got %s", got)
	}
}
