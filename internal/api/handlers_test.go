package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RecoveryAshes/webqa-inspector/internal/discovery"
	"github.com/RecoveryAshes/webqa-inspector/internal/events"
	"github.com/RecoveryAshes/webqa-inspector/internal/inspect"
	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

func noopRunner(ctx context.Context, store *ScanStore, bus *events.Bus, scanID string, req ScanRequest) {
	store.Complete(scanID, nil)
}

func newTestServer(run ScanRunner) (*Server, *http.ServeMux) {
	s := NewServer(run)
	mux := http.NewServeMux()
	s.Routes(mux)
	return s, mux
}

func TestHandleHealth(t *testing.T) {
	_, mux := newTestServer(noopRunner)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandleStartScanRejectsMissingURL(t *testing.T) {
	_, mux := newTestServer(noopRunner)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/scan", bytes.NewBufferString(`{}`))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing url, got %d", rec.Code)
	}
}

func TestHandleStartScanAcceptsValidRequest(t *testing.T) {
	_, mux := newTestServer(noopRunner)
	rec := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"url":"https://example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/scan", body)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ScanStartedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.ScanID == "" {
		t.Fatal("expected a non-empty scan_id")
	}
	if resp.Config.Depth != 2 {
		t.Fatalf("expected default depth 2, got %d", resp.Config.Depth)
	}
}

func TestHandleGetScanNotFound(t *testing.T) {
	_, mux := newTestServer(noopRunner)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scan/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandleGetScanCompletedIncludesSummary(t *testing.T) {
	s, mux := newTestServer(noopRunner)
	s.store.Put(model.Scan{ID: "scan_1", TargetURL: "https://a.test", Status: model.ScanRunning})
	s.store.SetInspectResult("scan_1", &inspect.Result{
		Summary: inspect.Summary{TotalAnalyzed: 2, AvgScore: 80},
		Pages: []model.PageAnalysis{
			{URL: "https://a.test/", Score: 70},
			{URL: "https://a.test/about", Score: 90},
		},
	})
	s.store.Complete("scan_1", nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scan/scan_1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp ScanStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Progress != 100 {
		t.Fatalf("expected progress 100, got %d", resp.Progress)
	}
	if resp.Summary == nil || resp.Summary.TotalAnalyzed != 2 {
		t.Fatalf("expected summary to be populated, got %+v", resp.Summary)
	}
	if len(resp.HygienePages) != 2 {
		t.Fatalf("expected 2 hygiene pages, got %d", len(resp.HygienePages))
	}
	if resp.HygienePages[0].Score != 70 {
		t.Fatalf("expected hygiene pages sorted ascending by score, got %+v", resp.HygienePages)
	}
}

func TestHandleDeleteScanAcksAndRemoves(t *testing.T) {
	s, mux := newTestServer(noopRunner)
	s.store.Put(model.Scan{ID: "scan_1", Status: model.ScanRunning})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/scan/scan_1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if _, ok := s.store.Get("scan_1"); ok {
		t.Fatal("expected scan_1 to be removed from the store")
	}
}

func TestHandleHygieneEmptyWhenNoCompletedScan(t *testing.T) {
	_, mux := newTestServer(noopRunner)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/hygiene", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var pages []HygienePage
	if err := json.Unmarshal(rec.Body.Bytes(), &pages); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(pages) != 0 {
		t.Fatalf("expected no hygiene pages, got %+v", pages)
	}
}

func TestHandleScanEventsReturnsHistory(t *testing.T) {
	s, mux := newTestServer(noopRunner)
	s.bus.Emit(model.Event{Type: model.EventScanStarted, ScanID: "scan_1"})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scan/scan_1/events", nil))

	var got []model.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
}

func TestBuildSummaryPayload(t *testing.T) {
	enumResult := &discovery.Result{Summary: discovery.Summary{TotalURLs: 50}}
	inspectResult := &inspect.Result{
		Summary: inspect.Summary{TotalValid: 40, TotalAnalyzed: 30, AvgScore: 75},
		Pages: []model.PageAnalysis{
			{TotalIssueCnt: 3, CriticalIssueCnt: 1},
			{TotalIssueCnt: 2, CriticalIssueCnt: 0},
		},
	}

	payload := BuildSummaryPayload(enumResult, inspectResult)

	if payload.TotalDiscovered != 50 || payload.TotalValid != 40 || payload.TotalAnalyzed != 30 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.TotalIssues != 5 || payload.CriticalIssues != 1 {
		t.Fatalf("unexpected issue totals: %+v", payload)
	}
}

func TestBuildSummaryPayloadNilInspectResult(t *testing.T) {
	payload := BuildSummaryPayload(&discovery.Result{Summary: discovery.Summary{TotalURLs: 10}}, nil)
	if payload.TotalDiscovered != 10 {
		t.Fatalf("expected discovery count to still populate, got %+v", payload)
	}
	if payload.TotalAnalyzed != 0 {
		t.Fatalf("expected zero-value inspection fields, got %+v", payload)
	}
}
