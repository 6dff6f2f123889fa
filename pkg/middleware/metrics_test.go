package middleware

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/vstore/pkg/reactive"
	"github.com/vango-dev/vstore/pkg/store"
)

// gathered returns the metric of family name whose labels include all of
// labels, or nil.
func gathered(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if hasLabels(m, labels) {
				return m
			}
		}
	}
	return nil
}

func hasLabels(m *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, lp := range m.GetLabel() {
		if v, ok := labels[lp.GetName()]; ok && v == lp.GetValue() {
			matched++
		}
	}
	return matched == len(labels)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	m := gathered(t, reg, name, labels)
	if m == nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func TestPrometheus_RecordsSuccessAndError(t *testing.T) {
	reg := prometheus.NewRegistry()
	rt := store.NewRuntime(store.WithObserver(Prometheus(WithRegistry(reg))))

	ok := newCounter(rt, "Counter", nil)
	failing := newCounter(rt, "Broken", errBoom)

	store.Must(ok.Use())
	store.Must(ok.Use())
	if _, err := failing.Use(); err == nil {
		t.Fatal("expected setup error")
	}
	if _, err := newCounter(rt, "Typed", errNotFound).Use(); err == nil {
		t.Fatal("expected setup error")
	}

	if got := counterValue(t, reg, "vstore_store_inits_total", map[string]string{"store": "Counter", "status": "success"}); got != 2 {
		t.Errorf("inits_total(Counter, success) = %v, want 2", got)
	}
	if got := counterValue(t, reg, "vstore_store_inits_total", map[string]string{"store": "Broken", "status": "error"}); got != 1 {
		t.Errorf("inits_total(Broken, error) = %v, want 1", got)
	}
	if got := counterValue(t, reg, "vstore_store_init_errors_total", map[string]string{"store": "Broken", "error_type": "internal"}); got != 1 {
		t.Errorf("init_errors_total(Broken, internal) = %v, want 1", got)
	}
	if got := counterValue(t, reg, "vstore_store_init_errors_total", map[string]string{"store": "Typed", "error_type": "E210"}); got != 1 {
		t.Errorf("init_errors_total(Typed, E210) = %v, want 1", got)
	}

	h := gathered(t, reg, "vstore_store_init_duration_seconds", map[string]string{"store": "Counter"})
	if h == nil || h.GetHistogram().GetSampleCount() != 2 {
		t.Errorf("duration histogram = %v, want 2 samples", h)
	}
}

func TestPrometheus_ActiveStoresFollowScope(t *testing.T) {
	reg := prometheus.NewRegistry()
	rt := store.NewRuntime(store.WithObserver(Prometheus(WithRegistry(reg), WithNamespace("shop"))))
	counter := newCounter(rt, "Counter", nil)

	gauge := func() float64 {
		m := gathered(t, reg, "shop_active_stores", nil)
		if m == nil {
			t.Fatal("shop_active_stores not registered")
		}
		return m.GetGauge().GetValue()
	}

	owner := reactive.NewOwner(nil)
	store.Must(counter.Provide(owner))
	store.Must(counter.Use(store.WithOwner(owner), store.WithID("b")))
	store.Must(counter.Use())

	if got := gauge(); got != 2 {
		t.Errorf("active_stores = %v, want 2", got)
	}

	owner.Dispose()
	if got := gauge(); got != 0 {
		t.Errorf("active_stores after dispose = %v, want 0", got)
	}
}

func TestNewMetrics_SharedPerRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()

	a := NewMetrics(WithRegistry(reg))
	b := NewMetrics(WithRegistry(reg))
	if a != b {
		t.Error("expected the same metric set for the same registry")
	}

	c := NewMetrics(WithRegistry(reg), WithSubsystem("other"))
	if a == c {
		t.Error("expected a distinct metric set for another subsystem")
	}
}
