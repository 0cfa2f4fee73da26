package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestScanMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewScanMetrics(reg)

	metrics.ObserveDuration("allowed", 40*time.Millisecond)
	metrics.IncDecision("allowed", "")
	metrics.IncDecision("blocked", "membership_expired")
	metrics.IncVisit("allowed")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "scan_decisions_total", "outcome", "allowed"); err != nil {
		t.Fatalf("fetch allowed decisions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected allowed=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "scan_decisions_total", "reason", "membership_expired"); err != nil {
		t.Fatalf("fetch blocked decisions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected blocked=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "visits_recorded_total", "outcome", "allowed"); err != nil {
		t.Fatalf("fetch visits: %v", err)
	} else if got != 1 {
		t.Fatalf("expected visits=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "scan_duration_seconds", "outcome", "allowed"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestScanMetricsNilReceiverIsSafe(t *testing.T) {
	var metrics *ScanMetrics
	metrics.IncDecision("allowed", "")
	metrics.IncVisit("allowed")
	metrics.ObserveDuration("allowed", time.Millisecond)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
