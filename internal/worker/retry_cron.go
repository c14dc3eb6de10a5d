package worker

// retry_cron.go
// Periodically re-enqueues cost allocations whose next_retry_at has elapsed.
// The worker records the backoff schedule; this cron only moves due movements
// back onto the queue.

import (
	"context"
	"time"

	"gestcom/internal/repository"

	"github.com/rs/zerolog/log"
)

type RetryCronConfig struct {
	MovFinRepo repository.MovimientoFinancieroRepository
	Dispatcher *Dispatcher
	Interval   time.Duration
	BatchSize  int
}

// StartRetryCron launches the retry loop. It stops when ctx is cancelled.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}

	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("retry cron started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry cron stopped")
				return
			case <-ticker.C:
				procesarPendientes(ctx, cfg)
			}
		}
	}()
}

func procesarPendientes(ctx context.Context, cfg RetryCronConfig) {
	movimientos, err := cfg.MovFinRepo.ListProrrateosPendientes(ctx, time.Now(), cfg.BatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry cron: query failed")
		return
	}
	if len(movimientos) == 0 {
		return
	}

	log.Info().Int("count", len(movimientos)).Msg("retry cron: re-enqueueing pending allocations")
	for _, mov := range movimientos {
		payload := map[string]interface{}{"movimiento_id": mov.ID.String()}
		if err := cfg.Dispatcher.EnqueueProrrateo(ctx, payload); err != nil {
			log.Error().Err(err).Str("movimiento_id", mov.ID.String()).
				Msg("retry cron: enqueue failed")
		}
	}
}
