package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/unalkalkan/Prompter/internal/storage"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Probe reports the state of one dependency
type Probe func(ctx context.Context) (Status, error)

// Report is the body of every health endpoint
type Report struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Probes    map[string]ProbeResult `json:"probes,omitempty"`
	Version   string                 `json:"version,omitempty"`
}

// ProbeResult is the outcome of a single probe
type ProbeResult struct {
	Status  Status `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency"`
}

// Checker runs registered probes and serves the health endpoints
type Checker struct {
	mu      sync.RWMutex
	probes  map[string]Probe
	version string
	now     func() time.Time
}

// NewChecker creates a checker reporting the given build version
func NewChecker(version string) *Checker {
	return &Checker{
		probes:  make(map[string]Probe),
		version: version,
		now:     time.Now,
	}
}

// Register adds or replaces a probe
func (c *Checker) Register(name string, probe Probe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes[name] = probe
}

// Names returns the registered probe names in sorted order
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.probes))
	for name := range c.probes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes every probe. The worst probe status becomes the overall status.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	probes := make(map[string]Probe, len(c.probes))
	for name, probe := range c.probes {
		probes[name] = probe
	}
	c.mu.RUnlock()

	results := make(map[string]ProbeResult, len(probes))
	overall := StatusHealthy

	for name, probe := range probes {
		start := c.now()
		status, err := probe(ctx)
		result := ProbeResult{
			Status:  status,
			Latency: c.now().Sub(start).String(),
		}
		if err != nil {
			result.Error = err.Error()
		}
		results[name] = result

		switch {
		case status == StatusUnhealthy:
			overall = StatusUnhealthy
		case status == StatusDegraded && overall == StatusHealthy:
			overall = StatusDegraded
		}
	}

	return Report{
		Status:    overall,
		Timestamp: c.now(),
		Probes:    results,
		Version:   c.version,
	}
}

// Live answers whether the process is up; it never runs probes
func (c *Checker) Live() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeReport(w, http.StatusOK, Report{
			Status:    StatusHealthy,
			Timestamp: c.now(),
			Version:   c.version,
		})
	}
}

// Ready runs the probes and answers 503 when any is unhealthy
func (c *Checker) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		report := c.Run(ctx)
		code := http.StatusOK
		if report.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		writeReport(w, code, report)
	}
}

// Full runs the probes and always answers 200 with the full report
func (c *Checker) Full() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		writeReport(w, http.StatusOK, c.Run(ctx))
	}
}

func writeReport(w http.ResponseWriter, code int, report Report) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(report)
}

// StorageProbe checks that the artifact store answers a lookup
func StorageProbe(adapter storage.Adapter) Probe {
	return func(ctx context.Context) (Status, error) {
		if _, err := adapter.Exists(ctx, ".healthcheck"); err != nil {
			return StatusUnhealthy, err
		}
		return StatusHealthy, nil
	}
}
