package inspect

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/RecoveryAshes/webqa-inspector/internal/logging"
	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

// BrowserAnalyzer owns one browser session for the life of an inspection
// scan and opens a fresh page per analyzed URL, releasing it on every
// exit path including navigation failure — generalizing the teacher's
// DynamicCrawler/PagePool launch-and-intercept discipline from "download
// JS bodies" to "collect runtime QA signals".
type BrowserAnalyzer struct {
	browser  *rod.Browser
	headless bool
	timeout  time.Duration
	headers  model.HeaderProvider
}

// NewBrowserAnalyzer builds an analyzer; call Start before Analyze and
// Close when the scan is done.
func NewBrowserAnalyzer(headless bool, timeout time.Duration, headers model.HeaderProvider) *BrowserAnalyzer {
	return &BrowserAnalyzer{headless: headless, timeout: timeout, headers: headers}
}

// Start launches the browser session.
func (a *BrowserAnalyzer) Start() error {
	l := launcher.New().Headless(a.headless).Set("ignore-certificate-errors")
	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	a.browser = rod.New().ControlURL(controlURL)
	if err := a.browser.Connect(); err != nil {
		return fmt.Errorf("connecting to browser: %w", err)
	}
	return nil
}

// Close tears down the browser session.
func (a *BrowserAnalyzer) Close() {
	if a.browser != nil {
		a.browser.MustClose()
	}
}

// Analyze opens a fresh page, navigates to pageURL, and captures the full
// runtime signal set (spec §4.10). The page is released on every exit
// path, and the returned record is fully populated even when navigation
// fails.
func (a *BrowserAnalyzer) Analyze(pageURL string) (*model.BrowserRuntime, error) {
	page, err := a.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	defer page.Close()

	runtime := &model.BrowserRuntime{NavigationStatus: "ok"}

	// Listeners are installed before navigation so no console message or
	// failed request can slip by (spec §4.10).
	var mu sync.Mutex
	go page.EachEvent(func(e *proto.RuntimeConsoleAPICalled) {
		mu.Lock()
		defer mu.Unlock()
		text := ""
		for _, arg := range e.Args {
			if arg.Value.Val() != nil {
				text += fmt.Sprintf("%v ", arg.Value.Val())
			}
		}
		runtime.ConsoleLogs = append(runtime.ConsoleLogs, model.ConsoleLog{
			Type: string(e.Type),
			Text: text,
		})
	})()

	go page.EachEvent(func(e *proto.NetworkLoadingFailed) {
		mu.Lock()
		defer mu.Unlock()
		runtime.NetworkFailures = append(runtime.NetworkFailures, model.NetworkFailure{
			Failure:      e.ErrorText,
			ResourceType: string(e.Type),
		})
	})()

	if a.headers != nil {
		router := page.HijackRequests()
		router.MustAdd("*", func(ctx *rod.Hijack) {
			if hdrs, err := a.headers.GetHeaders(); err == nil {
				for name, values := range hdrs {
					if len(values) > 0 {
						ctx.Request.Req().Header.Set(name, values[0])
					}
				}
			}
			ctx.ContinueRequest(&proto.FetchContinueRequest{})
		})
		go router.Run()
		defer router.Stop()
	}

	start := time.Now()

	pageWithTimeout := page.Timeout(a.timeout)
	if err := pageWithTimeout.Navigate(pageURL); err != nil {
		runtime.NavigationStatus = fmt.Sprintf("navigation_error: %v", err)
		logging.Warnf("browser analyzer: navigation failed for %s: %v", pageURL, err)
	} else if err := pageWithTimeout.WaitIdle(a.timeout); err != nil {
		runtime.NavigationStatus = fmt.Sprintf("navigation_error: %v", err)
		logging.Warnf("browser analyzer: wait-idle failed for %s: %v", pageURL, err)
	}

	if html, err := page.HTML(); err == nil {
		runtime.DOMSnapshot = html
	}

	if perf, err := capturePerformance(page); err == nil {
		runtime.Performance = perf
	}

	if metrics, err := captureDOMMetrics(page); err == nil {
		runtime.DOMMetrics = metrics
	}

	if tree, err := captureAccessibilityTree(page); err == nil && tree != nil {
		runtime.Accessibility = *tree
	}

	runtime.ElapsedSeconds = time.Since(start).Seconds()

	return runtime, nil
}

func capturePerformance(page *rod.Page) (model.PerformanceRecord, error) {
	result, err := page.Eval(`() => {
		const nav = performance.getEntriesByType('navigation')[0] || {};
		return { duration: nav.duration || 0 };
	}`)
	if err != nil {
		return model.PerformanceRecord{}, err
	}
	duration := result.Value.Get("duration").Num()
	return model.PerformanceRecord{Navigation: model.NavigationTiming{DurationMS: duration}}, nil
}

func captureDOMMetrics(page *rod.Page) (model.DOMMetrics, error) {
	result, err := page.Eval(`() => ({
		nodeCount: document.getElementsByTagName('*').length,
		inputCount: document.querySelectorAll('input,select,textarea').length,
		buttonCount: document.querySelectorAll('button,[role="button"],input[type="submit"]').length,
		imgCount: document.querySelectorAll('img').length,
		linkCount: document.querySelectorAll('a').length,
	})`)
	if err != nil {
		return model.DOMMetrics{}, err
	}
	return model.DOMMetrics{
		NodeCount:   int(result.Value.Get("nodeCount").Num()),
		InputCount:  int(result.Value.Get("inputCount").Num()),
		ButtonCount: int(result.Value.Get("buttonCount").Num()),
		ImgCount:    int(result.Value.Get("imgCount").Num()),
		LinkCount:   int(result.Value.Get("linkCount").Num()),
	}, nil
}

// captureAccessibilityTree reconstructs the accessibility tree from CDP's
// Accessibility.getFullAXTree response. CDP returns a flat Nodes slice with
// parent-child relationships expressed as ChildIDs references, not Playwright's
// already-nested accessibility.snapshot() shape, so the node-ID graph has to
// be resolved by hand before countMissingAccessibleNames (issues.go) can walk it.
func captureAccessibilityTree(page *rod.Page) (*model.AccessibilityNode, error) {
	tree, err := proto.AccessibilityGetFullAXTree{}.Call(page)
	if err != nil {
		return nil, err
	}
	if len(tree.Nodes) == 0 {
		return nil, nil
	}

	byID := make(map[proto.AccessibilityAXNodeID]*proto.AccessibilityAXNode, len(tree.Nodes))
	for _, n := range tree.Nodes {
		byID[n.NodeID] = n
	}

	return buildAXNode(tree.Nodes[0], byID, make(map[proto.AccessibilityAXNodeID]bool)), nil
}

// buildAXNode converts node and resolves its ChildIDs into nested children,
// guarding against a cyclic childIds graph with visited.
func buildAXNode(node *proto.AccessibilityAXNode, byID map[proto.AccessibilityAXNodeID]*proto.AccessibilityAXNode, visited map[proto.AccessibilityAXNodeID]bool) *model.AccessibilityNode {
	result := convertAXNode(node)
	if result == nil || visited[node.NodeID] {
		return result
	}
	visited[node.NodeID] = true

	for _, childID := range node.ChildIDs {
		child, ok := byID[childID]
		if !ok {
			continue
		}
		if converted := buildAXNode(child, byID, visited); converted != nil {
			result.Children = append(result.Children, *converted)
		}
	}
	return result
}

func convertAXNode(node *proto.AccessibilityAXNode) *model.AccessibilityNode {
	if node == nil {
		return nil
	}
	result := &model.AccessibilityNode{}
	if node.Role != nil {
		result.Role = node.Role.Value.Str()
	}
	if node.Name != nil {
		result.Name = node.Name.Value.Str()
	}
	return result
}
