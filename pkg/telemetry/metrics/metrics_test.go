package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/warden/pkg/config"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{Enabled: true, Namespace: "test"}
}

func TestCollector_RecordDecision(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())

	c.RecordDecision("allow", "", "read", "", false, time.Millisecond)
	c.RecordDecision("block", "missing-prerequisites", "mutate", "high", false, time.Millisecond)
	c.RecordDecision("block", "missing-prerequisites", "mutate", "high", true, time.Millisecond)

	if got := testutil.ToFloat64(c.decisions.decisionsTotal.WithLabelValues("block", "missing-prerequisites", "mutate", "high")); got != 2 {
		t.Errorf("block decisions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.decisions.advisoryBlocks.WithLabelValues("missing-prerequisites")); got != 1 {
		t.Errorf("advisory blocks = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(c.decisions.decisionDuration); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}

func TestCollector_Runtime(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())

	c.RecordViolation("tier-locked", "policy")
	c.RecordStorageFault("save")
	c.RecordCatalogReload(nil, 3)
	c.RecordCatalogReload(errors.New("bad"), 0)
	c.RecordTrailDropped(2)
	c.RecordTrailPruned(5)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"violations", testutil.ToFloat64(c.decisions.violationsTotal.WithLabelValues("tier-locked", "policy")), 1},
		{"storage faults", testutil.ToFloat64(c.runtime.storageFaults.WithLabelValues("save")), 1},
		{"reload success", testutil.ToFloat64(c.runtime.catalogReloads.WithLabelValues("success")), 1},
		{"reload error", testutil.ToFloat64(c.runtime.catalogReloads.WithLabelValues("error")), 1},
		{"catalog tiers", testutil.ToFloat64(c.runtime.catalogTiers), 3},
		{"trail dropped", testutil.ToFloat64(c.runtime.trailDropped), 2},
		{"trail pruned", testutil.ToFloat64(c.runtime.trailPruned), 5},
	}
	for _, check := range checks {
		if check.got != check.want {
			t.Errorf("%s = %v, want %v", check.name, check.got, check.want)
		}
	}
}

func TestCollector_DisabledAndNil(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	c := NewCollector(cfg, prometheus.NewRegistry())
	c.RecordDecision("allow", "", "read", "", false, time.Millisecond)
	if got := testutil.CollectAndCount(c.decisions.decisionsTotal); got != 0 {
		t.Errorf("disabled collector recorded %d series", got)
	}

	var nilCollector *Collector
	nilCollector.RecordDecision("allow", "", "read", "", false, time.Millisecond)
	nilCollector.RecordStorageFault("load")
	if err := nilCollector.WriteTextfile("ignored"); err != nil {
		t.Errorf("nil WriteTextfile() error = %v", err)
	}
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())
	c.RecordDecision("block", "missing-entry-gate", "mutate", "", false, time.Millisecond)

	path := filepath.Join(t.TempDir(), "warden.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "test_decisions_total{") || !strings.Contains(string(data), `reason="missing-entry-gate"`) {
		t.Errorf("textfile missing decision counter:\n%s", data)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())
	c.RecordCatalogReload(nil, 2)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test_catalog_tiers 2") {
		t.Errorf("body missing catalog gauge:\n%s", rec.Body.String())
	}
}
