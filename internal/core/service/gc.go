package service

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/foteam/sessionstore/internal/telemetry/logger"
)

// Collector runs one retention sweep. *filestore.Store implements it.
type Collector interface {
	GC(ctx context.Context, maxLifetime time.Duration) int
}

// GCConfig configures a GCScheduler.
type GCConfig struct {
	// MaxLifetime is the retention window passed to GC.
	MaxLifetime time.Duration

	// Probability/Divisor is the chance a session start triggers a sweep.
	// A zero probability disables opportunistic sweeps.
	Probability int
	Divisor     int

	// MinInterval is the minimum spacing between opportunistic sweeps.
	MinInterval time.Duration
}

// DefaultGCConfig returns the production defaults: 24h retention and a 1%
// chance per session start, at most once a minute.
func DefaultGCConfig() GCConfig {
	return GCConfig{
		MaxLifetime: 24 * time.Hour,
		Probability: 1,
		Divisor:     100,
		MinInterval: time.Minute,
	}
}

// GCScheduler triggers store sweeps.
type GCScheduler struct {
	collector   Collector
	cfg         GCConfig
	maxLifetime atomic.Int64
	limiter     *rate.Limiter
	roll        func(n int) int
	logger      logger.Logger
}

// NewGCScheduler creates a scheduler.
func NewGCScheduler(c Collector, cfg GCConfig) *GCScheduler {
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	g := &GCScheduler{
		collector: c,
		cfg:       cfg,
		limiter:   rate.NewLimiter(limit, 1),
		roll:      rand.IntN,
		logger:    logger.Default().With("component", "gc"),
	}
	g.SetMaxLifetime(cfg.MaxLifetime)
	return g
}

// MaxLifetime returns the current retention window.
func (g *GCScheduler) MaxLifetime() time.Duration {
	return time.Duration(g.maxLifetime.Load())
}

// SetMaxLifetime changes the retention window used by later sweeps.
// Non-positive values are ignored.
func (g *GCScheduler) SetMaxLifetime(d time.Duration) {
	if d > 0 {
		g.maxLifetime.Store(int64(d))
	}
}

// MaybeRun sweeps with probability Probability/Divisor, subject to the
// rate limit. It reports whether a sweep ran and how many records it
// deleted.
func (g *GCScheduler) MaybeRun(ctx context.Context) (bool, int) {
	if g.cfg.Probability <= 0 || g.cfg.Divisor <= 0 {
		return false, 0
	}
	if g.roll(g.cfg.Divisor) >= g.cfg.Probability {
		return false, 0
	}
	if !g.limiter.Allow() {
		return false, 0
	}
	return true, g.collector.GC(ctx, g.MaxLifetime())
}

// Run sweeps every interval until ctx is done.
func (g *GCScheduler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	g.logger.Info("periodic session gc started", "interval", interval.String(), "max_lifetime", g.MaxLifetime().String())
	for {
		select {
		case <-ctx.Done():
			g.logger.Info("periodic session gc stopped")
			return
		case <-ticker.C:
			g.collector.GC(ctx, g.MaxLifetime())
		}
	}
}
