package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/homeshopping/homeshopping-backend/pkg/metrics"
)

type fakeLock struct {
	held       bool
	acquireErr error
	releases   int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.acquireErr != nil {
		return false, f.acquireErr
	}
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	f.releases++
	return nil
}

func newTestService(t *testing.T, lock Lock, reg prometheus.Registerer, jobs ...Job) *Service {
	t.Helper()
	registry := NewRegistry()
	for _, job := range jobs {
		if err := registry.Register(job); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	svc, err := NewService(ServiceParams{
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(reg),
		Interval: time.Minute,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRunOnceRunsEveryJobDespiteFailures(t *testing.T) {
	ok := &stubJob{name: "ok"}
	failing := &stubJob{name: "failing", err: errors.New("boom")}
	lock := &fakeLock{}
	reg := prometheus.NewRegistry()
	svc := newTestService(t, lock, reg, failing, ok)

	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if ok.runs != 1 || failing.runs != 1 {
		t.Fatalf("expected both jobs once, got ok=%d failing=%d", ok.runs, failing.runs)
	}
	if lock.held || lock.releases != 1 {
		t.Fatalf("expected lock released once, held=%v releases=%d", lock.held, lock.releases)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var failures float64
	for _, mf := range mfs {
		if mf.GetName() != "homeshop_cron_job_runs_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "result" && l.GetValue() == "failure" {
					failures += m.GetCounter().GetValue()
				}
			}
		}
	}
	if failures != 1 {
		t.Fatalf("expected one failed run recorded, got %f", failures)
	}
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &stubJob{name: "job"}
	lock := &fakeLock{held: true}
	svc := newTestService(t, lock, nil, job)

	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job ran without the lock")
	}
	if lock.releases != 0 {
		t.Fatalf("released a lock it never held")
	}
}

func TestRunOnceReportsLockErrors(t *testing.T) {
	svc := newTestService(t, &fakeLock{acquireErr: errors.New("redis down")}, nil, &stubJob{name: "job"})
	if err := svc.RunOnce(context.Background()); err == nil {
		t.Fatal("expected lock error")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &stubJob{name: "job"}
	svc := newTestService(t, &fakeLock{}, nil, job)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := svc.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if job.runs != 1 {
		t.Fatalf("expected the initial cycle to run, got %d", job.runs)
	}
}

func TestNewServiceValidates(t *testing.T) {
	if _, err := NewService(ServiceParams{Registry: NewRegistry()}); err == nil {
		t.Fatal("expected missing lock error")
	}
	if _, err := NewService(ServiceParams{Lock: &fakeLock{}}); err == nil {
		t.Fatal("expected missing registry error")
	}
}
