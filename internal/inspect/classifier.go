package inspect

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

// PageClassifier applies the first-match-wins rule chain over a page's DOM
// and its already-captured DOMMetrics (spec §4.12).
type PageClassifier struct{}

// NewPageClassifier builds a PageClassifier.
func NewPageClassifier() *PageClassifier {
	return &PageClassifier{}
}

// Classify returns the page's PageType.
func (c *PageClassifier) Classify(rawHTML string, metrics model.DOMMetrics) model.PageType {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return model.PageUnknown
	}

	inputs := metrics.InputCount
	buttons := metrics.ButtonCount
	tables := doc.Find("table").Length()
	forms := doc.Find("form").Length()
	lists := doc.Find("ul").Length() + doc.Find("ol").Length()
	charts := doc.Find("canvas").Length() + doc.Find("svg").Length()
	steps := doc.Find("[role='tablist'] .step, .wizard-step").Length()
	wizards := doc.Find(".wizard").Length()
	passwordInputs := doc.Find("input[type='password']").Length()
	bodyText := strings.ToLower(doc.Find("body").Text())

	switch {
	case passwordInputs >= 1 || (forms >= 1 && inputs >= 3 && buttons >= 1):
		return model.PageLogin
	case charts >= 1 || strings.Contains(bodyText, "dashboard"):
		return model.PageDashboard
	case tables >= 1 && lists >= 1 && inputs < 5:
		return model.PageList
	case forms >= 1 && inputs >= 2 && buttons >= 1:
		return model.PageForm
	case steps >= 1 || wizards >= 1:
		return model.PageWizard
	case charts >= 1 && tables >= 1:
		return model.PageReport
	default:
		return model.PageUnknown
	}
}
