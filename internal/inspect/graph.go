package inspect

import (
	"sync"

	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

// GraphNode is one page's entry in the graph report (spec §4.15).
type GraphNode struct {
	URL    string        `json:"url"`
	Type   model.PageType `json:"type"`
	Score  float64       `json:"score"`
	Issues []model.Issue `json:"issues"`
}

// GraphReport is the orchestrator's final {pages: [...]} output.
type GraphReport struct {
	Pages []GraphNode `json:"pages"`
}

// Graph accumulates per-page issue data as the orchestrator walks pages.
// The orchestrator's per-page worker goroutines write to it concurrently,
// each for its own URL. mu guards the node map and insertion order; the
// append to a node's Issues happens outside mu, so concurrent AddIssues
// calls for the same URL are not safe.
type Graph struct {
	mu    sync.Mutex
	nodes map[string]*GraphNode
	order []string
}

// NewGraph builds an empty Graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]*GraphNode)}
}

// AddPage registers url exactly once; a second call for the same url is a
// no-op.
func (g *Graph) AddPage(url string, pageType model.PageType, score float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.nodes[url]; exists {
		return
	}
	g.nodes[url] = &GraphNode{URL: url, Type: pageType, Score: score}
	g.order = append(g.order, url)
}

// AddIssues appends issues to url's node, registering the page as unknown
// at score 0 first if it hasn't been added yet.
func (g *Graph) AddIssues(url string, issues []model.Issue) {
	g.mu.Lock()
	if _, exists := g.nodes[url]; !exists {
		g.nodes[url] = &GraphNode{URL: url, Type: model.PageUnknown, Score: 0}
		g.order = append(g.order, url)
	}
	node := g.nodes[url]
	g.mu.Unlock()

	node.Issues = append(node.Issues, issues...)
}

// ToReport renders the final graph report in page-insertion order.
func (g *Graph) ToReport() GraphReport {
	g.mu.Lock()
	defer g.mu.Unlock()

	pages := make([]GraphNode, 0, len(g.order))
	for _, url := range g.order {
		pages = append(pages, *g.nodes[url])
	}
	return GraphReport{Pages: pages}
}
