package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/finpulse/fincache/types"
)

// Start loads the snapshot (if a store is wired) and launches the
// maintenance jobs: the TTL sweep on SweepInterval and, when a snapshot
// interval is configured, a periodic persist.
func (e *Engine[T]) Start() error {
	if !e.transitionState(StateStopped, StateStarting) {
		e.logger.Warn("Cache engine is already running")
		return types.ErrEngineAlreadyRunning
	}

	defer func() {
		if e.getState() == StateStarting {
			e.setState(StateRunning)
		}
	}()

	e.Load()

	if e.config.SweepInterval > 0 {
		if err := e.scheduler.Add("ttl_sweep", e.config.SweepInterval, func() {
			e.SweepExpired()
		}); err != nil {
			return types.WrapError(err, "failed to schedule TTL sweep")
		}
	}

	if e.adapter != nil && e.snapshotInterval > 0 {
		if err := e.scheduler.Add("snapshot_persist", e.snapshotInterval, func() {
			e.Persist()
		}); err != nil {
			return types.WrapError(err, "failed to schedule snapshot persist")
		}
	}

	if err := e.scheduler.Start(); err != nil {
		return types.WrapError(err, "failed to start maintenance scheduler")
	}

	e.logger.Info("Cache engine started",
		zap.String("engine_id", e.id),
		zap.Int("max_entries", e.config.MaxEntries),
		zap.Int64("max_size_bytes", e.config.MaxSizeBytes),
		zap.Duration("sweep_interval", e.config.SweepInterval))

	return nil
}

// Stop persists a final snapshot and shuts the background jobs down.
func (e *Engine[T]) Stop() error {
	if !e.transitionState(StateRunning, StateStopping) {
		e.logger.Warn("Cache engine is not running")
		return types.ErrEngineNotRunning
	}

	defer func() {
		e.setState(StateStopped)
	}()

	e.Persist()
	e.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), e.shutdownTimeout)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return e.scheduler.Stop()
	})

	if err := g.Wait(); err != nil {
		select {
		case <-gCtx.Done():
			e.logger.Warn("Cache engine stop timeout, some components may not have stopped gracefully")
		default:
			e.logger.Error("Error during cache engine shutdown", zap.Error(err))
		}
	} else {
		e.logger.Info("Cache engine stopped gracefully")
	}

	return nil
}

func (e *Engine[T]) IsRunning() bool {
	return e.getState() == StateRunning
}

// Checker reports store health for a host's health endpoint: unhealthy
// once utilization crosses 98 percent of the size ceiling.
func (e *Engine[T]) Checker() types.HealthChecker {
	return func(ctx context.Context) types.HealthCheck {
		start := time.Now()
		cacheStats := e.GetStats()

		status := types.StatusHealthy
		message := ""
		if cacheStats.MaxSizeBytes > 0 && cacheStats.UtilizationPercent > 98 {
			status = types.StatusUnhealthy
			message = fmt.Sprintf("cache at %.1f%% of size ceiling", cacheStats.UtilizationPercent)
		}

		return types.HealthCheck{
			Name:      "cache",
			Status:    status,
			Message:   message,
			LastCheck: time.Now(),
			Duration:  time.Since(start),
			Details: map[string]interface{}{
				"entries":     cacheStats.TotalEntries,
				"size_bytes":  cacheStats.CacheSizeBytes,
				"hit_rate":    cacheStats.HitRate,
				"utilization": cacheStats.UtilizationPercent,
			},
		}
	}
}

func (e *Engine[T]) getState() State {
	return e.state.Load().(State)
}

func (e *Engine[T]) setState(newState State) bool {
	currentState := e.getState()
	return e.state.CompareAndSwap(currentState, newState)
}

func (e *Engine[T]) transitionState(from, to State) bool {
	return e.state.CompareAndSwap(from, to)
}
