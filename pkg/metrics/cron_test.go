package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsExportsRunsAndDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)
	job := "catalog-cache-warm"
	m.Observe(job, 250*time.Millisecond, nil)
	m.Observe(job, 10*time.Millisecond, errors.New("boom"))

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "homeshop_cron_job_runs_total", map[string]string{"job": job, "result": "success"}); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "homeshop_cron_job_runs_total", map[string]string{"job": job, "result": "failure"}); err != nil {
		t.Fatalf("fetch failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}

	mf := findMetricFamily(mfs, "homeshop_cron_job_duration_seconds")
	if mf == nil || mf.GetMetric()[0].GetHistogram().GetSampleCount() != 2 {
		t.Fatal("expected two duration samples")
	}
}

func TestCheckoutMetricsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)
	m.Observe(OutcomePlaced, time.Millisecond)
	m.Observe(OutcomePlaced, time.Millisecond)
	m.Observe(OutcomeRejected, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, _ := fetchCounterValue(mfs, "homeshop_checkout_total", map[string]string{"outcome": OutcomePlaced}); got != 2 {
		t.Fatalf("expected placed=2, got %f", got)
	}
	if got, _ := fetchCounterValue(mfs, "homeshop_checkout_total", map[string]string{"outcome": OutcomeRejected}); got != 1 {
		t.Fatalf("expected rejected=1, got %f", got)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	NewCheckoutMetrics(nil).Observe(OutcomeFailed, time.Second)
	NewCronJobMetrics(nil).Observe("job", time.Second, nil)
	var m *CheckoutMetrics
	m.Observe(OutcomeFailed, time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
