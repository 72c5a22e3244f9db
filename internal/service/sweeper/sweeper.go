package sweeper

import (
	"context"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-ride/pkg/metrics"
)

type RequestExpirer interface {
	// ExpireBefore moves PENDING requests departing at or before t to EXPIRED.
	ExpireBefore(ctx context.Context, t time.Time) (int, error)
}

type NegotiationExpirer interface {
	RejectStale(ctx context.Context, ttl time.Duration, limit int) (int, error)
}

type Config struct {
	Interval       time.Duration
	NegotiationTTL time.Duration
	BatchSize      int
}

// Sweeper periodically expires stale requests and, when a TTL is set, idle negotiations.
type Sweeper struct {
	cfg          Config
	requests     RequestExpirer
	negotiations NegotiationExpirer
	l            logger.Logger
	now          func() time.Time
}

func New(cfg Config, requests RequestExpirer, negotiations NegotiationExpirer, l logger.Logger) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Sweeper{
		cfg:          cfg,
		requests:     requests,
		negotiations: negotiations,
		l:            l,
		now:          time.Now,
	}
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ctx = wrap.WithAction(ctx, types.ActionSweep)
	s.l.Info(ctx, "expiry sweeper started", "interval", s.cfg.Interval.String(), "negotiation_ttl", s.cfg.NegotiationTTL.String())

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.l.Info(ctx, "expiry sweeper stopped")
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.l.Error(ctx, "sweep failed", err)
			}
		}
	}
}

// Sweep runs one pass.
func (s *Sweeper) Sweep(ctx context.Context) error {
	ctx = wrap.WithAction(ctx, types.ActionSweep)

	expired, err := s.requests.ExpireBefore(ctx, s.now().UTC())
	if err != nil {
		return wrap.Error(ctx, err)
	}
	metrics.SweepsTotal.WithLabelValues(metrics.ServiceLabel(), "request").Add(float64(expired))

	rejected := 0
	if s.cfg.NegotiationTTL > 0 && s.negotiations != nil {
		rejected, err = s.negotiations.RejectStale(ctx, s.cfg.NegotiationTTL, s.cfg.BatchSize)
		if err != nil {
			return wrap.Error(ctx, err)
		}
		metrics.SweepsTotal.WithLabelValues(metrics.ServiceLabel(), "negotiation").Add(float64(rejected))
	}

	if expired > 0 || rejected > 0 {
		s.l.Info(ctx, "expiry sweep finished", "expired_requests", expired, "rejected_negotiations", rejected)
	}
	return nil
}
