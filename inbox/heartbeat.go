package inbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"
)

// PresenceWriter is the presence surface the heartbeat drives.
// *service.Service satisfies it.
type PresenceWriter interface {
	Heartbeat(ctx context.Context) error
	Offline(ctx context.Context) error
}

// HeartbeatRunner keeps the viewer marked online by beating on an
// interval, and marks them offline exactly once on Stop. Missed
// beats are logged and retried on the next tick rather than
// stopping the runner.
type HeartbeatRunner struct {
	pw       PresenceWriter
	interval time.Duration
	logger   log.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func StartHeartbeat(ctx context.Context, pw PresenceWriter, interval time.Duration, logger log.Logger) *HeartbeatRunner {
	r := &HeartbeatRunner{
		pw:       pw,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	go r.run(ctx)
	return r
}

func (r *HeartbeatRunner) run(ctx context.Context) {
	defer close(r.done)

	beat := func() {
		if err := r.pw.Heartbeat(ctx); err != nil {
			_ = r.logger.Log("err", fmt.Errorf("heartbeat: %w", err))
		}
	}

	beat()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			beat()
		case <-ctx.Done():
			return
		case <-r.stop:
			// Fresh context: the runner's ctx may already be gone,
			// and the offline write must still go out.
			offCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := r.pw.Offline(offCtx); err != nil {
				_ = r.logger.Log("err", fmt.Errorf("mark offline: %w", err))
			}
			return
		}
	}
}

// Stop halts the beats and marks the user offline. Subsequent calls
// are no-ops; Offline goes out at most once.
func (r *HeartbeatRunner) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
	<-r.done
}
