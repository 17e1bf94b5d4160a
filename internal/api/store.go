package api

import (
	"sync"
	"time"

	"github.com/RecoveryAshes/webqa-inspector/internal/discovery"
	"github.com/RecoveryAshes/webqa-inspector/internal/inspect"
	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

// ScanStore is the in-memory {scan_id → Scan} mapping spec §9 calls out:
// suitable for a single-process deployment, replaceable behind this narrow
// interface.
type ScanStore struct {
	mu      sync.RWMutex
	records map[string]*scanRecord
	order   []string
}

// NewScanStore builds an empty ScanStore.
func NewScanStore() *ScanStore {
	return &ScanStore{records: make(map[string]*scanRecord)}
}

// Put inserts or replaces the record for scan.ID.
func (s *ScanStore) Put(scan model.Scan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[scan.ID]; !exists {
		s.order = append(s.order, scan.ID)
	}
	s.records[scan.ID] = &scanRecord{scan: scan}
}

// Get returns the scan record for id, or ok=false if unknown.
func (s *ScanStore) Get(id string) (model.Scan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return model.Scan{}, false
	}
	return rec.scan, true
}

// SetEnumResult attaches a discovery result to a running/completed scan.
func (s *ScanStore) SetEnumResult(id string, result *discovery.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[id]; ok {
		rec.enumResult = result
	}
}

// SetInspectResult attaches an inspection result to a running/completed scan.
func (s *ScanStore) SetInspectResult(id string, result *inspect.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[id]; ok {
		rec.inspectRes = result
	}
}

// Complete marks id as completed (or failed, with err set) and stamps its
// completion time. Results are attached separately by SetEnumResult and
// SetInspectResult.
func (s *ScanStore) Complete(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return
	}
	rec.completedAt = time.Now()
	if err != nil {
		rec.scan.Status = model.ScanFailed
		rec.scan.Error = err.Error()
	} else {
		rec.scan.Status = model.ScanCompleted
	}
	rec.scan.EndedAt = rec.completedAt
}

// results returns the attached discovery/inspect results for id.
func (s *ScanStore) results(id string) (*discovery.Result, *inspect.Result) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return rec.enumResult, rec.inspectRes
}

// Delete removes id from the store. Used by DELETE /api/scan/<id>'s
// best-effort acknowledgement path.
func (s *ScanStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// LatestCompleted returns the most recently completed scan's record, if
// any, walking insertion order backward.
func (s *ScanStore) LatestCompleted() (string, *inspect.Result, *discovery.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.order) - 1; i >= 0; i-- {
		id := s.order[i]
		rec, ok := s.records[id]
		if !ok || rec.scan.Status != model.ScanCompleted {
			continue
		}
		return id, rec.inspectRes, rec.enumResult, true
	}
	return "", nil, nil, false
}
