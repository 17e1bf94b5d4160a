// Package api implements spec §6's REST surface: starting scans, polling
// their status, retrieving hygiene analytics, and streaming per-scan
// events over both a polling endpoint and a newline-delimited JSON stream
// on a chunked HTTP response.
package api

import (
	"time"

	"github.com/RecoveryAshes/webqa-inspector/internal/discovery"
	"github.com/RecoveryAshes/webqa-inspector/internal/inspect"
	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

// ScanRequest is the body of POST /api/scan. ValidateSSL is a pointer so a
// missing field can default to true (verify certs) the way the original
// tool's `data.get('validate_ssl', True)` does, rather than Go's zero-value
// false silently turning off verification for every caller that omits it.
type ScanRequest struct {
	URL         string         `json:"url"`
	Depth       int            `json:"depth"`
	Mode        model.ScanMode `json:"mode"`
	Wayback     bool           `json:"wayback"`
	Bruteforce  bool           `json:"bruteforce"`
	ValidateSSL *bool          `json:"validate_ssl"`
}

// ResolvedValidateSSL resolves the request's ValidateSSL field, defaulting
// to true when the caller omitted it.
func (r ScanRequest) ResolvedValidateSSL() bool {
	if r.ValidateSSL == nil {
		return true
	}
	return *r.ValidateSSL
}

// ScanStartedResponse is the 202 body returned by POST /api/scan.
type ScanStartedResponse struct {
	Status  string           `json:"status"`
	ScanID  string           `json:"scan_id"`
	URL     string           `json:"url"`
	Config  model.ScanConfig `json:"config"`
	Message string           `json:"message"`
}

// ScanStatusResponse is the body returned by GET /api/scan/<id>.
type ScanStatusResponse struct {
	ScanID       string             `json:"scan_id"`
	Status       model.ScanStatus   `json:"status"`
	URL          string             `json:"url"`
	Config       model.ScanConfig   `json:"config"`
	Progress     int                `json:"progress,omitempty"`
	HygienePages []HygienePage      `json:"hygiene_pages,omitempty"`
	Summary      *inspect.Summary   `json:"summary,omitempty"`
	WorstPages   []HygienePage      `json:"worst_pages,omitempty"`
	EnumResults  *discovery.Result  `json:"enum_results,omitempty"`
	Error        string             `json:"error,omitempty"`
}

// HygienePage is the frontend-facing per-page hygiene payload (spec §6).
type HygienePage struct {
	URL              string        `json:"url"`
	Type             model.PageType `json:"type"`
	Score            float64       `json:"score"`
	Issues           []IssuePayload `json:"issues"`
	CriticalIssueCnt int           `json:"criticalIssueCount"`
	TotalIssueCnt    int           `json:"totalIssueCount"`
}

// IssuePayload is the frontend-facing issue shape.
type IssuePayload struct {
	Category model.IssueCategory    `json:"category"`
	Title    string                 `json:"title"`
	Severity model.Severity         `json:"severity"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// SummaryPayload is the frontend-facing scan summary (spec §6).
type SummaryPayload struct {
	TotalDiscovered int     `json:"totalDiscovered"`
	TotalValid      int     `json:"totalValid"`
	TotalAnalyzed   int     `json:"totalAnalyzed"`
	AverageScore    float64 `json:"averageScore"`
	TotalIssues     int     `json:"totalIssues"`
	CriticalIssues  int     `json:"criticalIssues"`
}

// scanRecord is the store's internal representation of one scan, carrying
// both the API-facing Scan metadata and whatever result payload the run
// produced.
type scanRecord struct {
	scan        model.Scan
	enumResult  *discovery.Result
	inspectRes  *inspect.Result
	completedAt time.Time
}
