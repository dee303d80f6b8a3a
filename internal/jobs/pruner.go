// Package jobs holds background maintenance loops that run next to the HTTP
// server.
package jobs

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/ghostgear-presence/internal/repo"
)

var prunedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ghostgear",
	Subsystem: "jobs",
	Name:      "pruned_rows_total",
	Help:      "Rows removed by the retention pruner.",
}, []string{"table"})

func init() {
	prometheus.MustRegister(prunedTotal)
}

// Pruner deletes private messages older than Retention and expired
// idempotency records every Interval.
type Pruner struct {
	DB        *gorm.DB
	Retention time.Duration
	Interval  time.Duration
	Now       func() time.Time
}

// Run prunes once immediately and then on every tick until ctx is done.
// Failures are logged and retried on the next tick.
func (p *Pruner) Run(ctx context.Context) {
	lg := zerolog.Ctx(ctx)
	interval := p.Interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	lg.Info().Dur("interval", interval).Dur("retention", p.Retention).Msg("pruner started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.PruneOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			lg.Info().Msg("pruner stopped")
			return
		case <-ticker.C:
			p.PruneOnce(ctx)
		}
	}
}

// PruneOnce runs a single pass and returns the number of deleted private
// messages and idempotency records.
func (p *Pruner) PruneOnce(ctx context.Context) (messages, keys int64) {
	ctx, span := otel.Tracer("jobs/Pruner").Start(ctx, "PruneOnce")
	defer span.End()

	lg := zerolog.Ctx(ctx)
	now := time.Now().UTC()
	if p.Now != nil {
		now = p.Now().UTC()
	}
	retention := p.Retention
	if retention <= 0 {
		retention = 24 * time.Hour
	}

	messages, err := repo.DeletePrivateBefore(ctx, p.DB, now.Add(-retention))
	if err != nil {
		span.RecordError(err)
		lg.Error().Err(err).Msg("prune private messages")
	} else if messages > 0 {
		prunedTotal.WithLabelValues("messages").Add(float64(messages))
		lg.Info().Int64("rows", messages).Msg("pruned private messages")
	}

	keys, err = repo.DeleteExpiredIdempotency(ctx, p.DB, now)
	if err != nil {
		span.RecordError(err)
		lg.Error().Err(err).Msg("prune idempotency keys")
	} else if keys > 0 {
		prunedTotal.WithLabelValues("idempotency").Add(float64(keys))
	}

	span.SetAttributes(
		attribute.Int64("pruned.messages", messages),
		attribute.Int64("pruned.idempotency", keys),
	)
	return messages, keys
}
