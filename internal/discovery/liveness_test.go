package discovery

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

func TestLivenessValidatorMarksAliveAndDead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/redirect":
			w.WriteHeader(http.StatusMovedPermanently)
		case "/gone":
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	candidates := []*model.CandidateURL{
		model.NewCandidateURL(srv.URL+"/ok", model.SourceLive),
		model.NewCandidateURL(srv.URL+"/redirect", model.SourceLive),
		model.NewCandidateURL(srv.URL+"/gone", model.SourceLive),
	}

	v := NewLivenessValidator(2*time.Second, 3, nil, nil)
	v.ValidateBatch(candidates)

	if !candidates[0].Alive || candidates[0].Status != http.StatusOK {
		t.Fatalf("expected /ok to be alive, got %+v", candidates[0])
	}
	if !candidates[1].Alive {
		t.Fatalf("expected a 301 redirect to count as alive, got %+v", candidates[1])
	}
	if candidates[2].Alive {
		t.Fatalf("expected 404 to be dead, got %+v", candidates[2])
	}
}

func TestLivenessValidatorHandlesUnreachableHost(t *testing.T) {
	candidates := []*model.CandidateURL{
		model.NewCandidateURL("http://127.0.0.1:1", model.SourceLive),
	}

	v := NewLivenessValidator(time.Second, 1, nil, nil)
	v.ValidateBatch(candidates)

	if candidates[0].Alive {
		t.Fatalf("expected an unreachable host to be dead, got %+v", candidates[0])
	}
}

func TestNewLivenessValidatorFloorsWorkers(t *testing.T) {
	v := NewLivenessValidator(time.Second, 0, nil, nil)
	if v.workers != 1 {
		t.Fatalf("expected workers to floor at 1, got %d", v.workers)
	}
}
