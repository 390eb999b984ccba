// Package health serves Kubernetes-style /livez and /readyz probes for the
// marketplace API. All registered checks are evaluated by one monitor
// goroutine on a shared interval. A check must fail three times in a row
// before its endpoint reports failure and recovers on the first success,
// so a single database blip does not bounce the pod.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// failAfter is the number of consecutive errors before a check is
// considered failing.
const failAfter = 3

// CheckFunc probes one dependency. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

// check pairs a CheckFunc with its evaluated state. State fields are
// guarded by the owning Service's mutex.
type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	failing bool
	streak  int
	lastErr error
}

// Service owns the registered checks and their monitor goroutine.
//
// Readiness combines two signals: every readiness check passing, and an
// explicit ready flag the server sets after startup and clears when it
// begins draining.
type Service struct {
	mu        sync.Mutex
	liveness  []*check
	readiness []*check
	ready     bool
	cancel    context.CancelFunc
}

// New returns a Service with no checks and the ready flag unset.
func New() *Service {
	return &Service{}
}

// AddLivenessCheck registers a check for /livez. Liveness failures signal
// the process itself is broken and should be restarted.
func (s *Service) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveness = append(s.liveness, &check{name: name, timeout: timeout, fn: fn})
}

// AddReadinessCheck registers a check for /readyz. Readiness failures take
// the pod out of rotation without restarting it.
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readiness = append(s.readiness, &check{name: name, timeout: timeout, fn: fn})
}

// Start launches the monitor goroutine. All checks run once immediately,
// then again every interval until Stop is called or ctx is cancelled.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.evaluate(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.evaluate(ctx)
			}
		}
	}()
}

// Stop halts the monitor goroutine. Safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SetReady sets the explicit readiness flag. The server calls this with
// true once migrations and wiring are done, and with false at the start of
// graceful shutdown so the load balancer drains the pod.
func (s *Service) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// evaluate runs every check once. Checks execute without the lock held so
// a slow database ping cannot block the HTTP endpoints; only the state
// update takes the lock.
func (s *Service) evaluate(ctx context.Context) {
	s.mu.Lock()
	checks := make([]*check, 0, len(s.liveness)+len(s.readiness))
	checks = append(checks, s.liveness...)
	checks = append(checks, s.readiness...)
	s.mu.Unlock()

	for _, c := range checks {
		err := runCheck(ctx, c)

		s.mu.Lock()
		c.lastErr = err
		if err != nil {
			c.streak++
			if c.streak >= failAfter {
				c.failing = true
			}
		} else {
			c.streak = 0
			c.failing = false
		}
		s.mu.Unlock()
	}
}

func runCheck(ctx context.Context, c *check) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.fn(ctx)
}

// statusResponse is the probe endpoint body.
type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 while every liveness check passes, 503
// with the failing checks listed otherwise.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	failures := failuresLocked(s.liveness)
	s.mu.Unlock()

	writeStatus(w, failures)
}

// ReadyEndpoint serves /readyz: 200 once SetReady(true) was called and
// every readiness check passes, 503 with details otherwise.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	failures := failuresLocked(s.readiness)
	if !s.ready {
		failures["_readiness"] = "service is not ready"
	}
	s.mu.Unlock()

	writeStatus(w, failures)
}

// failuresLocked reports the currently failing checks by name. Caller
// holds s.mu.
func failuresLocked(checks []*check) map[string]string {
	failures := make(map[string]string)
	for _, c := range checks {
		if !c.failing {
			continue
		}
		msg := "check is failing"
		if c.lastErr != nil {
			msg = c.lastErr.Error()
		}
		failures[c.name] = msg
	}
	return failures
}

func writeStatus(w http.ResponseWriter, failures map[string]string) {
	resp := statusResponse{Status: "ok"}
	code := http.StatusOK
	if len(failures) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = failures
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
