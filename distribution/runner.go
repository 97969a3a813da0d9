package distribution

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Run ticks the engine immediately and then every interval until ctx is
// done. Tick errors are logged and do not stop the loop.
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	e.log.Info("tick loop started", zap.Duration("interval", interval))
	e.safeTick(ctx)

	ticker := e.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			e.log.Info("tick loop stopped")
			return
		case <-ticker.Chan():
			e.safeTick(ctx)
		}
	}
}

func (e *Engine) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("tick panicked", zap.Any("panic", r))
		}
	}()

	// Tick logs its own failures under the run id.
	_, _ = e.Tick(ctx)
}
