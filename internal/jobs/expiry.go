// Package jobs holds background work scheduled with cron.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Spok95/subpass/internal/domain/subscriptions"
)

// DefaultExpirySpec runs the scan every five minutes.
const DefaultExpirySpec = "*/5 * * * *"

type Source interface {
	ListSubscriptions(ctx context.Context) ([]subscriptions.Subscription, error)
	Paused(ctx context.Context) (bool, error)
}

type Gauges interface {
	SetSubscriptionCounts(active, expired int)
	SetPaused(paused bool)
}

// ExpiryScan counts active subscriptions and those past their expiry that
// nobody has cleared. Nothing is changed: expiry is informational.
type ExpiryScan struct {
	src    Source
	gauges Gauges
	log    *slog.Logger
	now    func() time.Time
}

func NewExpiryScan(src Source, gauges Gauges, log *slog.Logger) *ExpiryScan {
	return &ExpiryScan{src: src, gauges: gauges, log: log, now: time.Now}
}

func (j *ExpiryScan) Run(ctx context.Context) error {
	subs, err := j.src.ListSubscriptions(ctx)
	if err != nil {
		return err
	}
	now := j.now()
	var active, expired int
	for _, s := range subs {
		if !s.Active() {
			continue
		}
		if s.Expired(now) {
			expired++
			continue
		}
		active++
	}
	paused, err := j.src.Paused(ctx)
	if err != nil {
		return err
	}
	j.gauges.SetSubscriptionCounts(active, expired)
	j.gauges.SetPaused(paused)
	j.log.Debug("expiry scan done", "active", active, "expired", expired)
	return nil
}

// Scheduler wraps a cron instance that runs the scan on spec.
type Scheduler struct {
	cron *cron.Cron
}

func Schedule(ctx context.Context, spec string, job *ExpiryScan) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultExpirySpec
	}
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := job.Run(ctx); err != nil {
			job.log.Error("expiry scan failed", "err", err)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return &Scheduler{cron: c}, nil
}

// Stop waits for a running scan to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
