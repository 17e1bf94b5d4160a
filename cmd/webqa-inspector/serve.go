package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/webqa-inspector/internal/api"
	"github.com/RecoveryAshes/webqa-inspector/internal/core"
	"github.com/RecoveryAshes/webqa-inspector/internal/discovery"
	"github.com/RecoveryAshes/webqa-inspector/internal/events"
	"github.com/RecoveryAshes/webqa-inspector/internal/httpheaders"
	"github.com/RecoveryAshes/webqa-inspector/internal/inspect"
	"github.com/RecoveryAshes/webqa-inspector/internal/logging"
	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

var (
	serveAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server (spec §6)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := core.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	server := api.NewServer(runScan(cfg))
	mux := http.NewServeMux()
	server.Routes(mux)

	httpServer := &http.Server{
		Addr:    serveAddr,
		Handler: mux,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logging.Warn("received shutdown signal, draining connections")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logging.Errorf("server shutdown: %v", err)
		}
	}()

	logging.Infof("listening on %s", serveAddr)
	fmt.Printf("webqa-inspector API listening on %s\n", serveAddr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// runScan builds the ScanRunner that drives one scan end to end: discovery,
// then (for mode full/qa) the inspection pipeline, reporting results back
// through the store and bus as they become available.
func runScan(cfg *core.Config) api.ScanRunner {
	return func(ctx context.Context, store *api.ScanStore, bus *events.Bus, scanID string, req api.ScanRequest) {
		headerManager, err := httpheaders.NewManager(configFile, nil)
		if err != nil {
			store.Complete(scanID, fmt.Errorf("building header manager: %w", err))
			return
		}

		enumerator, err := discovery.NewEnumerator(req.URL, discovery.Options{
			Depth:       req.Depth,
			Threads:     cfg.Discovery.Threads,
			Timeout:     time.Duration(cfg.Discovery.Timeout) * time.Second,
			OnlyAlive:   false,
			Techniques:  discoveryTechniquesFor(req),
			Headers:     headerManager,
			ValidateSSL: req.ResolvedValidateSSL(),
		})
		if err != nil {
			store.Complete(scanID, fmt.Errorf("building enumerator: %w", err))
			return
		}

		bus.Emit(model.Event{
			Type:      model.EventScanStarted,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			ScanID:    scanID,
			Data:      map[string]interface{}{"stage": "discovery"},
		})
		enumResult := enumerator.Run()
		store.SetEnumResult(scanID, enumResult)

		if req.Mode == model.ModeCrawl {
			store.Complete(scanID, nil)
			return
		}

		orchestrator := inspect.New(req.URL, domainHost(req.URL), scanID, inspect.Options{
			MaxPages:             cfg.Inspection.MaxPages,
			CrawlerConcurrency:   cfg.Inspection.CrawlerConcurrency,
			ValidatorConcurrency: cfg.Inspection.ValidatorConcurrency,
			BrowserConcurrency:   cfg.Inspection.BrowserConcurrency,
			HTTPTimeout:          time.Duration(cfg.Inspection.HTTPTimeoutSeconds) * time.Second,
			BrowserTimeout:       time.Duration(cfg.Inspection.BrowserTimeoutSeconds) * time.Second,
			Headless:             cfg.Inspection.Headless,
			Headers:              headerManager,
			ValidateSSL:          req.ResolvedValidateSSL(),
			Resource:             resourceConfigFrom(cfg),
		}, bus)

		inspectResult, err := orchestrator.Run(ctx)
		if err != nil {
			store.Complete(scanID, fmt.Errorf("inspection failed: %w", err))
			return
		}
		store.SetInspectResult(scanID, inspectResult)
		store.Complete(scanID, nil)
	}
}

func discoveryTechniquesFor(req api.ScanRequest) []model.Technique {
	all := []model.Technique{model.SourceLive, model.SourceJS, model.SourceRobots, model.SourceSitemap}
	if req.Wayback {
		all = append(all, model.SourceWayback)
	}
	if req.Bruteforce {
		all = append(all, model.SourceBruteforce)
	}
	return all
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "address to listen on")
}
