package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/webqa-inspector/internal/core"
	"github.com/RecoveryAshes/webqa-inspector/internal/discovery"
	"github.com/RecoveryAshes/webqa-inspector/internal/events"
	"github.com/RecoveryAshes/webqa-inspector/internal/httpheaders"
	"github.com/RecoveryAshes/webqa-inspector/internal/inspect"
	"github.com/RecoveryAshes/webqa-inspector/internal/model"
	"github.com/RecoveryAshes/webqa-inspector/internal/resource"
)

var (
	inspectOutputFile string
	inspectMaxPages   int
)

// inspectReport is the persisted {base_url, total_pages, global_hygiene_score,
// pages, graph} document spec §4.15/§7 describes for a standalone (non-API)
// inspection run.
type inspectReport struct {
	BaseURL            string               `json:"base_url"`
	TotalPages         int                  `json:"total_pages"`
	GlobalHygieneScore float64              `json:"global_hygiene_score"`
	Pages              []model.PageAnalysis `json:"pages"`
	Graph              inspect.GraphReport  `json:"graph"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Run discovery then the full browser-driven hygiene inspection pipeline",
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-sigChan
		logWarnInterrupt()
		cancel()
	}()

	techniqueList := strings.Split(techniques, ",")
	for i := range techniqueList {
		techniqueList[i] = strings.TrimSpace(techniqueList[i])
	}
	if err := validateFlags(domain, depth, threads, timeout, techniqueList); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return errSilentExit{}
	}

	cfg, err := core.LoadConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return errSilentExit{}
	}

	headerManager, err := httpheaders.NewManager(configFile, headerArgs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid headers: %v\n", err)
		return errSilentExit{}
	}

	targetURL := normalizeDomainURL(domain)

	enumerator, err := discovery.NewEnumerator(targetURL, discovery.Options{
		Depth:       depth,
		Threads:     threads,
		Timeout:     time.Duration(timeout) * time.Second,
		OnlyAlive:   onlyAlive,
		Techniques:  parseTechniques(techniqueList),
		Headers:     headerManager,
		ValidateSSL: cfg.Discovery.ValidateSSL,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return errSilentExit{}
	}

	if !silent {
		fmt.Printf("Discovering URLs for %s...\n", targetURL)
	}
	enumResult := enumerator.Run()
	if !silent {
		fmt.Printf("Discovered %d URLs (%d alive)\n", enumResult.Summary.TotalURLs, enumResult.Summary.AliveURLs)
	}

	maxPages := inspectMaxPages
	if maxPages <= 0 {
		maxPages = cfg.Inspection.MaxPages
	}

	scanID := model.NewScanID()
	bus := events.New()
	orchestrator := inspect.New(targetURL, domainHost(targetURL), scanID, inspect.Options{
		MaxPages:             maxPages,
		CrawlerConcurrency:   cfg.Inspection.CrawlerConcurrency,
		ValidatorConcurrency: cfg.Inspection.ValidatorConcurrency,
		BrowserConcurrency:   cfg.Inspection.BrowserConcurrency,
		HTTPTimeout:          time.Duration(cfg.Inspection.HTTPTimeoutSeconds) * time.Second,
		BrowserTimeout:       time.Duration(cfg.Inspection.BrowserTimeoutSeconds) * time.Second,
		Headless:             cfg.Inspection.Headless,
		Headers:              headerManager,
		ValidateSSL:          cfg.Inspection.ValidateSSL,
		Resource:             resourceConfigFrom(cfg),
	}, bus)

	if !silent {
		fmt.Println("Running hygiene inspection (this opens a headless browser)...")
		bar := newProgressBar(enumResult.Summary.AliveURLs, "analyzing pages")
		bus.SubscribeAll(func(evt model.Event) {
			if evt.Type == model.EventPageAnalyzed {
				_ = bar.Add(1)
			}
		})
		defer bar.Finish()
	}
	result, err := orchestrator.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: inspection failed: %v\n", err)
		return errSilentExit{}
	}

	report := inspectReport{
		BaseURL:            targetURL,
		TotalPages:         result.Summary.TotalAnalyzed,
		GlobalHygieneScore: result.Summary.AvgScore,
		Pages:              result.Pages,
		Graph:              result.Graph,
	}

	if !silent {
		fmt.Printf("Inspected %d pages, global hygiene score %.1f\n", report.TotalPages, report.GlobalHygieneScore)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	outPath := inspectOutputFile
	if outPath == "" {
		outPath = "hygiene_report.json"
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing report: %v\n", err)
		return errSilentExit{}
	}
	if !silent {
		fmt.Printf("Report written to %s\n", outPath)
	}
	return nil
}

func logWarnInterrupt() {
	fmt.Fprintln(os.Stderr, "received interrupt signal, finishing current page then shutting down")
}

func domainHost(normalizedURL string) string {
	parsed, err := url.Parse(normalizedURL)
	if err != nil {
		return normalizedURL
	}
	return parsed.Hostname()
}

// newProgressBar mirrors the teacher's reporter.NewProgressBar theme, scoped
// to page-analysis progress instead of JS-crawl progress.
func newProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// resourceConfigFrom translates the viper-loaded resource section into the
// byte-denominated shape resource.Monitor expects.
func resourceConfigFrom(cfg *core.Config) resource.Config {
	const mb = 1024 * 1024
	return resource.Config{
		SafetyReserveMemory: int64(cfg.Resource.SafetyReserveMemory) * mb,
		SafetyThreshold:     int64(cfg.Resource.SafetyThreshold) * mb,
		CPULoadThreshold:    cfg.Resource.CPULoadThreshold,
		MaxTabsLimit:        cfg.Resource.MaxTabsLimit,
		TabMemoryUsage:      int64(cfg.Resource.TabMemoryUsage) * mb,
	}
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectOutputFile, "output", "o", "", "path to write the JSON hygiene report")
	inspectCmd.Flags().IntVar(&inspectMaxPages, "max-pages", 0, "max pages to inspect (0 = use config default)")
}
