package offline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/connectivity"
)

type taskRecorder struct {
	mu   sync.Mutex
	runs []string
}

func (r *taskRecorder) task(name string) func(context.Context) error {
	return func(context.Context) error {
		r.mu.Lock()
		r.runs = append(r.runs, name)
		r.mu.Unlock()
		return nil
	}
}

func (r *taskRecorder) ran() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.runs))
	copy(out, r.runs)
	return out
}

func TestPreloader_priorityOrder(t *testing.T) {
	m := connectivity.NewMonitor()
	p := NewPreloader(m, testLogger{}, 10*time.Millisecond)
	rec := &taskRecorder{}

	// schedule before starting so priorities decide the order
	p.Schedule("low", PriorityLow, rec.task("low"))
	p.Schedule("normal", PriorityNormal, rec.task("normal"))
	p.Schedule("high", PriorityHigh, rec.task("high"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	waitFor(t, func() bool { return len(rec.ran()) == 3 })

	got := rec.ran()
	want := []string{"high", "normal", "low"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("run order = %v, want %v", got, want)
		}
	}
}

func TestPreloader_pendingCountsExecutingTask(t *testing.T) {
	m := connectivity.NewMonitor()
	p := NewPreloader(m, testLogger{}, 5*time.Millisecond)

	started := make(chan struct{})
	release := make(chan struct{})
	p.Schedule("slow", PriorityHigh, func(context.Context) error {
		close(started)
		<-release
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	// popped off the queue but still executing: must still count
	<-started
	if got := p.Pending(); got != 1 {
		t.Errorf("Pending() = %d while task executes, want 1", got)
	}

	close(release)
	waitFor(t, func() bool { return p.Pending() == 0 })
}

func TestPreloader_pausesOfflineAndPoor(t *testing.T) {
	m := connectivity.NewMonitor()
	p := NewPreloader(m, testLogger{}, 10*time.Millisecond)
	rec := &taskRecorder{}

	m.SetOnline(false)
	p.Schedule("t", PriorityHigh, rec.task("t"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	time.Sleep(50 * time.Millisecond)
	if len(rec.ran()) != 0 {
		t.Fatal("preloader ran while offline")
	}

	// poor quality also pauses
	m.SetState(connectivity.State{IsOnline: true, EffectiveType: connectivity.Type2G})
	time.Sleep(50 * time.Millisecond)
	if len(rec.ran()) != 0 {
		t.Fatal("preloader ran on a poor connection")
	}

	// resumes automatically on recovery
	m.SetState(connectivity.State{IsOnline: true, EffectiveType: connectivity.Type4G, DownlinkMbps: 10})
	waitFor(t, func() bool { return len(rec.ran()) == 1 })
}

func TestPreloader_pausesWhenHidden(t *testing.T) {
	m := connectivity.NewMonitor()
	p := NewPreloader(m, testLogger{}, 10*time.Millisecond)
	rec := &taskRecorder{}

	p.SetVisible(false)
	p.Schedule("t", PriorityNormal, rec.task("t"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	time.Sleep(50 * time.Millisecond)
	if len(rec.ran()) != 0 {
		t.Fatal("preloader ran while hidden")
	}

	p.SetVisible(true)
	waitFor(t, func() bool { return len(rec.ran()) == 1 })
}

func TestPreloader_taskFailureIsIsolated(t *testing.T) {
	m := connectivity.NewMonitor()
	p := NewPreloader(m, testLogger{}, 10*time.Millisecond)
	rec := &taskRecorder{}

	p.Schedule("boom", PriorityHigh, func(context.Context) error {
		return errors.New("boom")
	})
	p.Schedule("panic", PriorityHigh, func(context.Context) error {
		panic("kaboom")
	})
	p.Schedule("after", PriorityNormal, rec.task("after"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	// the failing and panicking tasks must not stall the queue
	waitFor(t, func() bool { return len(rec.ran()) == 1 })
	if p.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", p.Pending())
	}
}
