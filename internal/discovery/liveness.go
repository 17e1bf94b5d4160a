package discovery

import (
	"net/http"
	"sync"
	"time"

	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

// aliveStatusCodes mirrors the original validator's liveness table.
var aliveStatusCodes = map[int]bool{
	200: true, 201: true, 202: true, 204: true, 206: true,
	301: true, 302: true, 303: true, 307: true, 308: true,
}

// LivenessValidator HEAD-probes candidate URLs with a bounded pool of
// worker goroutines — the discovery stage's parallel-threads concurrency
// regime (spec §9), distinct from the inspection stage's single-loop
// semaphore regime in internal/inspect.
type LivenessValidator struct {
	client  *http.Client
	workers int
	headers model.HeaderProvider
}

// NewLivenessValidator builds a validator with the given per-request
// timeout and worker pool size, sharing transport across every probe.
func NewLivenessValidator(timeout time.Duration, workers int, headers model.HeaderProvider, transport *http.Transport) *LivenessValidator {
	if workers < 1 {
		workers = 1
	}
	return &LivenessValidator{
		client:  &http.Client{Timeout: timeout, Transport: transport},
		workers: workers,
		headers: headers,
	}
}

// ValidateBatch HEAD-probes every candidate in place, setting Status,
// ContentLength, and Alive. It fans out across v.workers goroutines and
// blocks until every candidate has been probed.
func (v *LivenessValidator) ValidateBatch(candidates []*model.CandidateURL) {
	jobs := make(chan *model.CandidateURL)
	var wg sync.WaitGroup

	for i := 0; i < v.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cand := range jobs {
				v.validateOne(cand)
			}
		}()
	}

	for _, cand := range candidates {
		jobs <- cand
	}
	close(jobs)
	wg.Wait()
}

func (v *LivenessValidator) validateOne(cand *model.CandidateURL) {
	req, err := http.NewRequest(http.MethodHead, cand.URL, nil)
	if err != nil {
		cand.Status = 0
		cand.Alive = false
		return
	}
	if v.headers != nil {
		if hdrs, err := v.headers.GetHeaders(); err == nil {
			for name, values := range hdrs {
				if len(values) > 0 {
					req.Header.Set(name, values[0])
				}
			}
		}
	}

	resp, err := v.client.Do(req)
	if err != nil {
		cand.Status = 0
		cand.ContentLength = 0
		cand.Alive = false
		return
	}
	defer resp.Body.Close()

	cand.Status = resp.StatusCode
	cand.ContentLength = resp.ContentLength
	cand.Alive = aliveStatusCodes[resp.StatusCode]
}
