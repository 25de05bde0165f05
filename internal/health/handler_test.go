package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/unalkalkan/Prompter/internal/storage"
)

func decodeReport(t *testing.T, rec *httptest.ResponseRecorder) Report {
	t.Helper()
	var report Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("Failed to decode report: %v", err)
	}
	return report
}

func TestRun(t *testing.T) {
	tests := []struct {
		name   string
		probes map[string]Probe
		want   Status
	}{
		{
			name: "no probes",
			want: StatusHealthy,
		},
		{
			name: "degraded",
			probes: map[string]Probe{
				"a": func(context.Context) (Status, error) { return StatusHealthy, nil },
				"b": func(context.Context) (Status, error) { return StatusDegraded, errors.New("slow") },
			},
			want: StatusDegraded,
		},
		{
			name: "unhealthy wins",
			probes: map[string]Probe{
				"a": func(context.Context) (Status, error) { return StatusDegraded, nil },
				"b": func(context.Context) (Status, error) { return StatusUnhealthy, errors.New("down") },
			},
			want: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker("test")
			for name, probe := range tt.probes {
				checker.Register(name, probe)
			}

			report := checker.Run(context.Background())
			if report.Status != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, report.Status)
			}
			if len(report.Probes) != len(tt.probes) {
				t.Errorf("Expected %d probe results, got %d", len(tt.probes), len(report.Probes))
			}
		})
	}
}

func TestHandlers(t *testing.T) {
	checker := NewChecker("1.2.3")
	checker.Register("storage", func(context.Context) (Status, error) {
		return StatusUnhealthy, errors.New("bucket unreachable")
	})

	t.Run("Live", func(t *testing.T) {
		rec := httptest.NewRecorder()
		checker.Live()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rec.Code)
		}
		report := decodeReport(t, rec)
		if report.Version != "1.2.3" || len(report.Probes) != 0 {
			t.Errorf("Unexpected liveness report: %+v", report)
		}
	})

	t.Run("Ready", func(t *testing.T) {
		rec := httptest.NewRecorder()
		checker.Ready()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d", rec.Code)
		}
		report := decodeReport(t, rec)
		if report.Probes["storage"].Error != "bucket unreachable" {
			t.Errorf("Expected probe error in report, got %+v", report.Probes)
		}
	})

	t.Run("Full", func(t *testing.T) {
		rec := httptest.NewRecorder()
		checker.Full()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rec.Code)
		}
		if decodeReport(t, rec).Status != StatusUnhealthy {
			t.Error("Expected unhealthy status in full report")
		}
	})
}

func TestStorageProbe(t *testing.T) {
	adapter, err := storage.NewLocalAdapter(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage adapter: %v", err)
	}

	status, err := StorageProbe(adapter)(context.Background())
	if err != nil || status != StatusHealthy {
		t.Errorf("Expected healthy storage, got %s, %v", status, err)
	}
}

func TestNames(t *testing.T) {
	checker := NewChecker("")
	checker.Register("storage", nil)
	checker.Register("encoders", nil)
	names := checker.Names()
	if len(names) != 2 || names[0] != "encoders" || names[1] != "storage" {
		t.Errorf("Unexpected names: %v", names)
	}
}
