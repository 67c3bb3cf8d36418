package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingCollector struct {
	runs atomic.Int32
	last atomic.Int64
}

func (c *countingCollector) GC(ctx context.Context, maxLifetime time.Duration) int {
	c.runs.Add(1)
	c.last.Store(int64(maxLifetime))
	return 3
}

func TestGCScheduler_MaybeRun(t *testing.T) {
	ctx := context.Background()
	c := &countingCollector{}
	g := NewGCScheduler(c, GCConfig{MaxLifetime: time.Hour, Probability: 1, Divisor: 100})

	g.roll = func(int) int { return 50 }
	if ran, _ := g.MaybeRun(ctx); ran {
		t.Error("roll above probability should not sweep")
	}

	g.roll = func(int) int { return 0 }
	ran, deleted := g.MaybeRun(ctx)
	if !ran || deleted != 3 {
		t.Errorf("MaybeRun() = %v, %d; want true, 3", ran, deleted)
	}
	if time.Duration(c.last.Load()) != time.Hour {
		t.Errorf("maxLifetime = %v, want 1h", time.Duration(c.last.Load()))
	}
}

func TestGCScheduler_RateLimited(t *testing.T) {
	c := &countingCollector{}
	g := NewGCScheduler(c, GCConfig{MaxLifetime: time.Hour, Probability: 1, Divisor: 1, MinInterval: time.Hour})

	for i := 0; i < 5; i++ {
		g.MaybeRun(context.Background())
	}
	if got := c.runs.Load(); got != 1 {
		t.Errorf("runs = %d, want 1 within MinInterval", got)
	}
}

func TestGCScheduler_Disabled(t *testing.T) {
	c := &countingCollector{}
	g := NewGCScheduler(c, GCConfig{Probability: 0, Divisor: 100})
	if ran, _ := g.MaybeRun(context.Background()); ran || c.runs.Load() != 0 {
		t.Error("zero probability must never sweep")
	}
}

func TestGCScheduler_Run(t *testing.T) {
	c := &countingCollector{}
	g := NewGCScheduler(c, DefaultGCConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		g.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for c.runs.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("periodic sweep did not run")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestManager_StartTriggersGC(t *testing.T) {
	store := newMockStore()
	g := NewGCScheduler(store, GCConfig{MaxLifetime: time.Hour, Probability: 1, Divisor: 1})
	m := NewManager(store, WithGCScheduler(g))

	if _, err := m.Start(context.Background(), testID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if store.calls[0] != "gc" {
		t.Errorf("calls = %v, want gc before read", store.calls)
	}
}

func TestGCScheduler_SetMaxLifetime(t *testing.T) {
	c := &countingCollector{}
	g := NewGCScheduler(c, GCConfig{MaxLifetime: time.Hour, Probability: 1, Divisor: 1})
	g.roll = func(int) int { return 0 }

	g.SetMaxLifetime(48 * time.Hour)
	g.SetMaxLifetime(0)
	if got := g.MaxLifetime(); got != 48*time.Hour {
		t.Errorf("MaxLifetime() = %v, want 48h", got)
	}

	g.MaybeRun(context.Background())
	if time.Duration(c.last.Load()) != 48*time.Hour {
		t.Errorf("sweep used %v, want 48h", time.Duration(c.last.Load()))
	}
}
