package inspect

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RecoveryAshes/webqa-inspector/internal/events"
	"github.com/RecoveryAshes/webqa-inspector/internal/logging"
	"github.com/RecoveryAshes/webqa-inspector/internal/model"
	"github.com/RecoveryAshes/webqa-inspector/internal/resource"
)

// Options configures one orchestrator run (spec §4.8-§4.15, tying the
// full inspection pipeline together).
type Options struct {
	MaxPages             int
	CrawlerConcurrency   int
	ValidatorConcurrency int
	BrowserConcurrency   int
	HTTPTimeout          time.Duration
	BrowserTimeout       time.Duration
	Headless             bool
	Headers              model.HeaderProvider
	ValidateSSL          bool
	Resource             resource.Config
}

// Result is the orchestrator's final pipeline output.
type Result struct {
	Pages   []model.PageAnalysis `json:"pages"`
	Summary Summary              `json:"summary"`
	Graph   GraphReport          `json:"graph"`
}

// Summary aggregates the run's top-level counters.
type Summary struct {
	TotalDiscovered int     `json:"total_discovered"`
	TotalValid      int     `json:"total_valid"`
	TotalAnalyzed   int     `json:"total_analyzed"`
	AvgScore        float64 `json:"avg_score"`
}

// Orchestrator ties the inspection crawler, validator, browser analyzer,
// structure detector, classifier, issue detector, scorer, and graph report
// together into the full per-scan pipeline (mirrors the teacher's
// coordinator-struct shape from internal/core/crawler.go, generalized from
// JS-crawl orchestration to QA inspection).
type Orchestrator struct {
	opts   Options
	domain string
	base   string
	scanID string
	bus    *events.Bus

	crawler    *Crawler
	validator  *URLValidator
	structure  *StructureDetector
	classifier *PageClassifier
	detector   *IssueDetector
	scorer     *Scorer
	graph      *Graph
	resMonitor *resource.Monitor
}

// New builds an Orchestrator for one scan. bus must not be a shared
// package-level singleton; the caller constructs it and injects it here
// (the inspect CLI builds one per run, the API server one per Server that
// all its scans share).
func New(baseURL, domain, scanID string, opts Options, bus *events.Bus) *Orchestrator {
	if opts.MaxPages < 1 {
		opts.MaxPages = 100
	}
	if opts.CrawlerConcurrency < 1 {
		opts.CrawlerConcurrency = 1
	}
	if opts.ValidatorConcurrency < 1 {
		opts.ValidatorConcurrency = 1
	}
	if opts.BrowserConcurrency < 1 {
		opts.BrowserConcurrency = 1
	}

	transport := model.NewHTTPTransport(opts.ValidateSSL)

	return &Orchestrator{
		opts:   opts,
		domain: domain,
		base:   baseURL,
		scanID: scanID,
		bus:    bus,

		crawler:    NewCrawler(domain, opts.MaxPages, opts.CrawlerConcurrency, opts.HTTPTimeout, opts.Headers, transport),
		validator:  NewURLValidator(opts.HTTPTimeout, opts.ValidatorConcurrency, opts.Headers, transport),
		structure:  NewStructureDetector(),
		classifier: NewPageClassifier(),
		detector:   NewIssueDetector(),
		scorer:     NewScorer(),
		graph:      NewGraph(),
		resMonitor: resource.NewMonitor(opts.Resource),
	}
}

func (o *Orchestrator) emit(eventType model.EventType, data map[string]interface{}) {
	if o.bus == nil {
		return
	}
	o.bus.Emit(model.Event{
		Type:      eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		ScanID:    o.scanID,
		Data:      data,
	})
}

// Run executes the complete pipeline: crawl, validate, then analyze every
// HTTP-200 page under a browser-concurrency-bounded pool.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	o.emit(model.EventScanStarted, map[string]interface{}{"base_url": o.base})

	logging.Infof("[%s] starting crawl", o.scanID)
	crawled := o.crawler.Crawl(ctx, o.base)
	logging.Infof("[%s] crawl complete: %d URLs discovered", o.scanID, len(crawled))

	urls := make([]string, 0, len(crawled))
	for u := range crawled {
		urls = append(urls, u)
		o.emit(model.EventURLDiscovered, map[string]interface{}{"url": u})
	}

	logging.Infof("[%s] validating URLs", o.scanID)
	validation := o.validator.ValidateBatch(ctx, urls)
	validURLs := FilterValidURLs(validation)
	logging.Infof("[%s] validation complete: %d HTTP 200", o.scanID, len(validURLs))

	for u, result := range validation {
		o.emit(model.EventURLValidated, map[string]interface{}{
			"url": u, "status": result.Status, "valid": result.Valid,
		})
	}

	logging.Infof("[%s] starting browser testing", o.scanID)
	pages := o.analyzePages(ctx, validURLs, crawled)

	var totalScore float64
	for _, p := range pages {
		totalScore += p.Score
	}
	avg := 0.0
	if len(pages) > 0 {
		avg = totalScore / float64(len(pages))
	}

	summary := Summary{
		TotalDiscovered: len(crawled),
		TotalValid:      len(validURLs),
		TotalAnalyzed:   len(pages),
		AvgScore:        avg,
	}

	o.emit(model.EventScanCompleted, map[string]interface{}{
		"total_discovered": summary.TotalDiscovered,
		"total_valid":      summary.TotalValid,
		"total_analyzed":   summary.TotalAnalyzed,
		"avg_score":        summary.AvgScore,
	})
	logging.Infof("[%s] QA scan complete", o.scanID)

	return &Result{
		Pages:   pages,
		Summary: summary,
		Graph:   o.graph.ToReport(),
	}, nil
}

// analyzePages runs the browser analyzer over every valid URL, bounded by
// BrowserConcurrency, and folds each result into the orchestrator's graph.
func (o *Orchestrator) analyzePages(ctx context.Context, urls []string, crawled map[string]*model.CrawledPage) []model.PageAnalysis {
	var mu sync.Mutex
	var wg sync.WaitGroup

	o.resMonitor.Start(time.Second)
	defer o.resMonitor.Stop()

	limit := o.opts.BrowserConcurrency
	if byResource := o.resMonitor.MaxTabs(); byResource < limit {
		limit = byResource
	}
	if limit < 1 {
		limit = 1
	}
	sem := make(chan struct{}, limit)

	var pages []model.PageAnalysis

	analyzer := NewBrowserAnalyzer(o.opts.Headless, o.opts.BrowserTimeout, o.opts.Headers)
	if err := analyzer.Start(); err != nil {
		logging.Errorf("[%s] failed to start browser: %v", o.scanID, err)
		return nil
	}
	defer analyzer.Close()

	for _, u := range urls {
		select {
		case <-ctx.Done():
			wg.Wait()
			return pages
		default:
		}

		if canCreate, reason := o.resMonitor.CheckAvailability(); !canCreate {
			logging.Warnf("[%s] pausing tab creation: %s", o.scanID, reason)
			time.Sleep(time.Second)
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(pageURL string) {
			defer wg.Done()
			defer func() { <-sem }()
			// A failed or panicking analysis is recorded as a page with one
			// critical runtime issue instead of being dropped.
			recordFailure := func(cause interface{}) {
				issues := []model.Issue{model.NewIssue(pageURL, model.CategoryRuntime, "Page analysis failed", model.SeverityCritical, map[string]interface{}{"error": fmt.Sprint(cause)})}
				score := o.scorer.ScorePage(issues)
				mu.Lock()
				pages = append(pages, model.PageAnalysis{URL: pageURL, PageType: model.PageUnknown, Score: score, Issues: issues, CriticalIssueCnt: 1, TotalIssueCnt: 1})
				mu.Unlock()
				o.graph.AddPage(pageURL, model.PageUnknown, score)
				o.graph.AddIssues(pageURL, issues)
			}
			defer func() {
				if r := recover(); r != nil {
					logging.Errorf("[%s] panic analyzing %s: %v", o.scanID, pageURL, r)
					recordFailure(r)
				}
			}()

			analysis, err := o.analyzeSingle(analyzer, pageURL, crawled)
			if err != nil {
				logging.Errorf("[%s] failed to analyze %s: %v", o.scanID, pageURL, err)
				recordFailure(err)
				return
			}

			mu.Lock()
			pages = append(pages, *analysis)
			mu.Unlock()

			o.graph.AddPage(analysis.URL, analysis.PageType, analysis.Score)
			o.graph.AddIssues(analysis.URL, analysis.Issues)
		}(u)
	}
	wg.Wait()

	return pages
}

func (o *Orchestrator) analyzeSingle(analyzer *BrowserAnalyzer, pageURL string, crawled map[string]*model.CrawledPage) (*model.PageAnalysis, error) {
	o.emit(model.EventPageTestingStarted, map[string]interface{}{"url": pageURL})

	html := ""
	if page, ok := crawled[pageURL]; ok {
		html = page.HTML
	}

	runtime, err := analyzer.Analyze(pageURL)
	if err != nil {
		return nil, fmt.Errorf("browser analysis: %w", err)
	}

	structure := o.structure.Analyze(pageURL, html)
	pageType := o.classifier.Classify(html, runtime.DOMMetrics)

	issues := o.detector.Detect(PageSignals{
		URL:             pageURL,
		ConsoleLogs:     runtime.ConsoleLogs,
		NetworkFailures: runtime.NetworkFailures,
		DOMMetrics:      runtime.DOMMetrics,
		Structure:       structure,
		Performance:     runtime.Performance,
		Accessibility:   runtime.Accessibility,
		DOMSnapshot:     runtime.DOMSnapshot,
	})

	score := o.scorer.ScorePage(issues)

	critical := 0
	for _, issue := range issues {
		if issue.Severity == model.SeverityCritical || issue.Severity == model.SeverityHigh {
			critical++
		}
	}

	o.emit(model.EventPageAnalyzed, map[string]interface{}{
		"url": pageURL, "page_type": pageType, "score": score,
	})

	return &model.PageAnalysis{
		URL:              pageURL,
		PageType:         pageType,
		Score:            score,
		Issues:           issues,
		Structure:        structure,
		DOMMetrics:       runtime.DOMMetrics,
		ConsoleLogs:      runtime.ConsoleLogs,
		NetworkFailures:  runtime.NetworkFailures,
		Performance:      runtime.Performance,
		CriticalIssueCnt: critical,
		TotalIssueCnt:    len(issues),
	}, nil
}
