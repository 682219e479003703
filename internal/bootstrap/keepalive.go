package bootstrap

import (
	"context"
	"time"
)

// keepAliveLoop keeps the hosting platform's instance warm. Most ticks only
// log, which is enough to count as activity; every Nth tick also exercises
// the model so the first real chat after an idle stretch is not a cold call.
func (a *App) keepAliveLoop(ctx context.Context) {
	delay := a.cfg.KeepAlive.InitialDelay
	if delay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}

	interval := a.cfg.KeepAlive.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	everyN := a.cfg.KeepAlive.ModelEveryN
	if everyN <= 0 {
		everyN = 10
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick++
			if tick%everyN != 0 {
				a.logger.Debug("keepalive tick", "tick", tick)
				continue
			}
			pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if err := a.chatSvc.Ping(pingCtx); err != nil {
				a.logger.Warn("keepalive model ping failed", "error", err)
			} else {
				a.logger.Info("keepalive model ping ok", "tick", tick)
			}
			cancel()
		}
	}
}
