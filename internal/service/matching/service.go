package matching

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-ride/pkg/trm"
	"github.com/google/uuid"
)

type Config struct {
	NotifyRadiusKm        float64
	NearbyDriversRadiusKm float64
	NearbyRidesRadiusKm   float64
	DefaultFareDistanceKm float64
	NotifyTimeout         time.Duration
	DefaultPageSize       int
	MaxPageSize           int
}

func DefaultConfig() Config {
	return Config{
		NotifyRadiusKm:        5,
		NearbyDriversRadiusKm: 5,
		NearbyRidesRadiusKm:   10,
		DefaultFareDistanceKm: 5,
		NotifyTimeout:         10 * time.Second,
		DefaultPageSize:       20,
		MaxPageSize:           100,
	}
}

/*
Service owns the ride request lifecycle and mediates negotiations between
riders and drivers. Notifications are sent in the background; Wait blocks
until all of them have finished.
*/
type Service struct {
	cfg Config

	requests    RequestStore
	rides       RideStore
	drivers     DriverLookup
	locator     Locator
	negotiation Negotiator
	calculator  FareCalculator
	notifier    Notifier
	geocoder    Geocoder
	trm         trm.TxManager
	l           logger.Logger

	wg  sync.WaitGroup
	now func() time.Time
}

type Deps struct {
	Requests    RequestStore
	Rides       RideStore
	Drivers     DriverLookup
	Locator     Locator
	Negotiation Negotiator
	Calculator  FareCalculator
	Notifier    Notifier
	Geocoder    Geocoder // optional
	TxManager   trm.TxManager
}

func New(cfg Config, deps Deps, l logger.Logger) *Service {
	return &Service{
		cfg:         cfg,
		requests:    deps.Requests,
		rides:       deps.Rides,
		drivers:     deps.Drivers,
		locator:     deps.Locator,
		negotiation: deps.Negotiation,
		calculator:  deps.Calculator,
		notifier:    deps.Notifier,
		geocoder:    deps.Geocoder,
		trm:         deps.TxManager,
		l:           l,
		now:         time.Now,
	}
}

// Wait blocks until every background notification has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// background runs fn detached from the caller's cancellation, bounded by NotifyTimeout.
func (s *Service) background(ctx context.Context, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, s.cfg.NotifyTimeout)
		defer cancel()

		defer func() {
			if p := recover(); p != nil {
				s.l.Error(wrap.WithAction(ctx, types.ActionNotificationFailed), "notification panicked", fmt.Errorf("%v", p))
			}
		}()

		fn(ctx)
	}()
}

// notify sends n in the background.
func (s *Service) notify(ctx context.Context, n models.Notification) {
	if s.notifier == nil {
		return
	}
	s.background(ctx, func(ctx context.Context) {
		s.deliver(ctx, n)
	})
}

func (s *Service) deliver(ctx context.Context, n models.Notification) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.l.Error(wrap.WithAction(ctx, types.ActionNotificationFailed), "failed to notify", err,
			"recipient_id", n.RecipientID, "type", n.Type)
	}
}

func (s *Service) page(p models.Page) models.Page {
	return p.Normalize(s.cfg.DefaultPageSize, s.cfg.MaxPageSize)
}

func formatFare(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}
