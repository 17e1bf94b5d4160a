package model

// EventType enumerates the event bus's lifecycle events (§4.16, §6).
type EventType string

const (
	EventScanStarted        EventType = "scan_started"
	EventURLDiscovered      EventType = "url_discovered"
	EventURLValidated       EventType = "url_validated"
	EventPageTestingStarted EventType = "page_testing_started"
	EventPageAnalyzed       EventType = "page_analyzed"
	EventIssuesDetected     EventType = "issues_detected"
	EventScoreUpdated       EventType = "score_updated"
	EventScanCompleted      EventType = "scan_completed"
	EventScanFailed         EventType = "scan_failed"
)

// Event is the typed envelope every stage publishes (§3, §4.16).
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp string                 `json:"timestamp"` // ISO-8601 UTC
	ScanID    string                 `json:"scan_id"`
	Data      map[string]interface{} `json:"data"`
}
