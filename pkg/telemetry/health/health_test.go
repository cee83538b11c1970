package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func TestChecker_Readiness(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]CheckFunc
		want   string
	}{
		{"no checks", nil, StatusReady},
		{"all healthy", map[string]CheckFunc{
			"catalog": func(context.Context) error { return nil },
			"state":   func(context.Context) error { return nil },
		}, StatusReady},
		{"one failing", map[string]CheckFunc{
			"catalog": func(context.Context) error { return errors.New("no tier catalog loaded") },
			"state":   func(context.Context) error { return nil },
		}, StatusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(time.Second)
			for name, check := range tt.checks {
				c.RegisterCheck(name, check)
			}
			status := c.Readiness(context.Background())
			if status.Status != tt.want {
				t.Errorf("Readiness().Status = %q, want %q", status.Status, tt.want)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("len(Checks) = %d, want %d", len(status.Checks), len(tt.checks))
			}
		})
	}
}

func TestChecker_Timeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.RegisterCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return nil
	})

	status := c.Readiness(context.Background())
	result := status.Checks["slow"]
	if result.Status != StatusUnhealthy || result.Message != "health check timeout" {
		t.Errorf("slow check = %+v, want timeout", result)
	}
}

func TestChecker_Names(t *testing.T) {
	c := New(0)
	c.RegisterCheck("trail", func(context.Context) error { return nil })
	c.RegisterCheck("catalog", func(context.Context) error { return nil })
	c.RegisterCheck("catalog", func(context.Context) error { return nil })

	if got, want := c.Names(), []string{"catalog", "trail"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestHandlers(t *testing.T) {
	c := New(time.Second).WithVersion("1.2.3")
	c.RegisterCheck("catalog", func(context.Context) error { return errors.New("missing") })

	tests := []struct {
		name     string
		handler  http.HandlerFunc
		method   string
		wantCode int
	}{
		{"liveness", c.LivenessHandler(), http.MethodGet, http.StatusOK},
		{"liveness head", c.LivenessHandler(), http.MethodHead, http.StatusOK},
		{"readiness degraded", c.ReadinessHandler(), http.MethodGet, http.StatusServiceUnavailable},
		{"post rejected", c.ReadinessHandler(), http.MethodPost, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(tt.method, "/", nil))
			if rec.Code != tt.wantCode {
				t.Errorf("status code = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.method != http.MethodGet || rec.Code == http.StatusMethodNotAllowed {
				return
			}
			var status Status
			if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if status.Version != "1.2.3" {
				t.Errorf("Version = %q, want 1.2.3", status.Version)
			}
		})
	}
}
