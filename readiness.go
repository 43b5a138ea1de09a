package cluster

import (
	"context"
	"time"
)

// waitReady polls the workload manager inside the head container until
// it reports ready, every ReadyInterval up to ReadyAttempts times. On
// the first success it holds for JoinGrace so workers can finish their
// join handshake. Budget exhaustion is fatal; there is no outer retry.
func (m *Manager) waitReady(ctx context.Context, head *Node) error {
	for attempt := 1; attempt <= m.cfg.ReadyAttempts; attempt++ {
		_, err := head.Run(ctx, "docker", workloadStatusArgs(m.cfg.ContainerName)...)
		if err == nil {
			m.logger.Info("workload manager ready", "attempt", attempt)
			return sleepCtx(ctx, m.cfg.JoinGrace)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		m.logger.Debug("workload manager not ready", "attempt", attempt, "error", err)
		if err := sleepCtx(ctx, m.cfg.ReadyInterval); err != nil {
			return err
		}
	}
	return ErrClusterNotReady
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
