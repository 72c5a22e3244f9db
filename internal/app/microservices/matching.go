package microservices

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Temutjin2k/campus-ride/config"
	httpserver "github.com/Temutjin2k/campus-ride/internal/adapter/http/server"
	wshandler "github.com/Temutjin2k/campus-ride/internal/adapter/http/ws"
	"github.com/Temutjin2k/campus-ride/internal/adapter/locationIQ"
	"github.com/Temutjin2k/campus-ride/internal/adapter/rabbit"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/internal/service/auth"
	"github.com/Temutjin2k/campus-ride/internal/service/calculator"
	"github.com/Temutjin2k/campus-ride/internal/service/location"
	"github.com/Temutjin2k/campus-ride/internal/service/matching"
	"github.com/Temutjin2k/campus-ride/internal/service/negotiation"
	"github.com/Temutjin2k/campus-ride/internal/service/notify"
	"github.com/Temutjin2k/campus-ride/internal/service/sweeper"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	rabbitclient "github.com/Temutjin2k/campus-ride/pkg/rabbit"
	ws "github.com/Temutjin2k/campus-ride/pkg/wsHub"
)

type MatchingService struct {
	storage    *storage
	rabbit     *rabbitclient.RabbitMQ
	hub        *ws.ConnectionHub
	matching   *matching.Service
	sweeper    *sweeper.Sweeper
	httpServer *httpserver.API

	cfg config.Config
	log logger.Logger
}

func NewMatching(ctx context.Context, cfg config.Config, log logger.Logger) (*MatchingService, error) {
	store, err := newStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	s := &MatchingService{storage: store, cfg: cfg, log: log}

	// notifications: store always, websocket push always, broker when enabled
	s.hub = ws.NewConnHub(log)
	var publisher notify.Publisher
	if cfg.RabbitMQ.Enabled {
		s.rabbit, err = rabbitclient.New(ctx, cfg.RabbitMQ.GetDSN(), log)
		if err != nil {
			s.close(ctx)
			return nil, err
		}
		notificationPublisher, err := rabbit.NewNotificationPublisher(ctx, s.rabbit)
		if err != nil {
			s.close(ctx)
			return nil, err
		}
		publisher = notificationPublisher
		store.checks["rabbitmq"] = func(ctx context.Context) error { return s.rabbit.EnsureConnection(ctx) }
	}
	notifier := notify.New(store.notifications, publisher, wshandler.NewNotificationHub(s.hub), log)

	var geocoder matching.Geocoder
	if cfg.LocationIQ.APIKey != "" {
		geocoder = locationIQ.New(cfg.LocationIQ.APIKey, cfg.LocationIQ.BaseURL, cfg.LocationIQ.Timeout)
	} else {
		log.Warn(ctx, "locationiq api key is empty, address-only requests use the default fare distance")
	}

	registry := location.New(store.positions, store.samples, store.drivers, store.txManager, log).WithCache(store.positionCache)
	negotiations := negotiation.New(store.negotiations, store.txManager, log)

	s.matching = matching.New(matching.Config{
		NotifyRadiusKm:        cfg.Matching.NotifyRadiusKm,
		NearbyDriversRadiusKm: cfg.Matching.NearbyDriversRadiusKm,
		NearbyRidesRadiusKm:   cfg.Matching.NearbyRidesRadiusKm,
		DefaultFareDistanceKm: cfg.Matching.DefaultFareDistanceKm,
		NotifyTimeout:         cfg.Matching.NotifyTimeout,
		DefaultPageSize:       cfg.Matching.DefaultPageSize,
		MaxPageSize:           cfg.Matching.MaxPageSize,
	}, matching.Deps{
		Requests:    store.requests,
		Rides:       store.rides,
		Drivers:     store.drivers,
		Locator:     registry,
		Negotiation: negotiations,
		Calculator:  calculator.New(calculator.DefaultPlatformShare),
		Notifier:    notifier,
		Geocoder:    geocoder,
		TxManager:   store.txManager,
	}, log)

	if cfg.Sweeper.Enabled {
		s.sweeper = sweeper.New(sweeper.Config{
			Interval:       cfg.Sweeper.Interval,
			NegotiationTTL: cfg.Sweeper.NegotiationTTL,
			BatchSize:      cfg.Sweeper.BatchSize,
		}, store.requests, negotiations, log)
	}

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, log)

	s.httpServer, err = httpserver.New(cfg, httpserver.Services{
		Auth:          tokens,
		Requests:      s.matching,
		Negotiations:  s.matching,
		Discovery:     s.matching,
		Locations:     registry,
		Notifications: notifier,
		Sessions:      wshandler.NewSession(s.hub, tokens, log),
		Checks:        store.checks,
	}, log)
	if err != nil {
		s.close(ctx)
		return nil, err
	}

	return s, nil
}

func (s *MatchingService) Start(ctx context.Context) error {
	ctx = wrap.WithAction(ctx, string(types.MatchingService))
	defer func() {
		s.close(ctx)
		s.log.Info(ctx, "matching service closed")
	}()

	errCh := make(chan error, 1)
	s.httpServer.Run(ctx, errCh)

	sweepCtx, stopSweeper := context.WithCancel(context.WithoutCancel(ctx))
	sweeperDone := make(chan struct{})
	if s.sweeper != nil {
		go func() {
			defer close(sweeperDone)
			s.sweeper.Run(sweepCtx)
		}()
	} else {
		close(sweeperDone)
	}
	defer func() {
		stopSweeper()
		<-sweeperDone
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	s.log.Info(ctx, "matching service started")
	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		s.log.Info(ctx, "shuting down application", "signal", sig.String())
		return nil
	case <-ctx.Done():
		return nil
	}
}

func (s *MatchingService) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second*10)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Stop(ctx); err != nil {
			s.log.Warn(ctx, "failed to gracefully close http server", "error", err.Error())
		}
	}

	// background notifications still need the stores and the broker
	if s.matching != nil {
		s.matching.Wait()
	}

	if s.hub != nil {
		s.hub.Close()
	}

	if s.rabbit != nil {
		if err := s.rabbit.Close(ctx); err != nil {
			s.log.Warn(ctx, "failed to close rabbitmq", "error", err.Error())
		}
	}

	s.storage.close(ctx, s.log)
}
