package inspect

import (
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

// StructureDetector parses a page's HTML for layout presence, class reuse,
// and broken-link heuristics (spec §4.11).
type StructureDetector struct{}

// NewStructureDetector builds a StructureDetector.
func NewStructureDetector() *StructureDetector {
	return &StructureDetector{}
}

// Analyze inspects rawHTML, relative to pageURL, and returns the page's
// structural signal set.
func (d *StructureDetector) Analyze(pageURL, rawHTML string) model.Structure {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return model.Structure{}
	}

	structure := model.Structure{
		HasHeader: doc.Find("header").Length() > 0,
		HasFooter: doc.Find("footer").Length() > 0,
		HasNav:    doc.Find("nav").Length() > 0,
	}

	classCounts := make(map[string]int)
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		class, exists := s.Attr("class")
		if !exists {
			return
		}
		for _, c := range strings.Fields(class) {
			classCounts[c]++
		}
	})

	for class, count := range classCounts {
		if count >= 5 {
			structure.RepeatedClasses = append(structure.RepeatedClasses, class)
		}
	}
	sort.Strings(structure.RepeatedClasses)

	structure.BrokenLinks = findBrokenLinks(pageURL, doc)
	return structure
}

func findBrokenLinks(pageURL string, doc *goquery.Document) []model.BrokenLink {
	base, err := url.Parse(pageURL)
	var broken []model.BrokenLink

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, exists := s.Attr("src")
		if !exists || src == "" {
			broken = append(broken, model.BrokenLink{Type: "image", Reason: "missing src"})
			return
		}
		if strings.HasPrefix(src, "data:") {
			return
		}
		full := src
		if err == nil {
			if resolved, rerr := url.Parse(src); rerr == nil {
				full = base.ResolveReference(resolved).String()
			}
		}
		if strings.Contains(strings.ToLower(src), "placeholder") {
			broken = append(broken, model.BrokenLink{Type: "image", Reason: "placeholder src", Target: full})
		}
	})

	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if exists && (href == "#" || href == "javascript:void(0)") {
			broken = append(broken, model.BrokenLink{Type: "link", Reason: "empty href", Target: href})
		}
	})

	return broken
}
