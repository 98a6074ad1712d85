package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// MonitorAnalyzerHealth polls checker every interval and stores the outcome in
// healthy until ctx is done. The first check runs immediately.
func MonitorAnalyzerHealth(ctx context.Context, checker HealthChecker, healthy *atomic.Bool, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	check := func() {
		checkCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()

		isHealthy := checker.HealthCheck(checkCtx)
		if healthy.Swap(isHealthy) != isHealthy {
			if isHealthy {
				slog.Info("[HealthCheck] Analyzer is healthy again")
			} else {
				slog.Warn("[HealthCheck] Analyzer is unhealthy")
			}
		}
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
