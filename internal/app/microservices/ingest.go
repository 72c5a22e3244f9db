package microservices

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Temutjin2k/campus-ride/config"
	httpserver "github.com/Temutjin2k/campus-ride/internal/adapter/http/server"
	"github.com/Temutjin2k/campus-ride/internal/adapter/kafka"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/internal/service/location"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
)

// LocationIngestService feeds heartbeats from Kafka into the location registry.
type LocationIngestService struct {
	storage    *storage
	consumer   *kafka.HeartbeatConsumer
	reader     kafka.MessageReader
	httpServer *httpserver.API

	cfg config.Config
	log logger.Logger
}

func NewLocationIngest(ctx context.Context, cfg config.Config, log logger.Logger) (*LocationIngestService, error) {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "" {
		return nil, errors.New("kafka brokers and topic are required")
	}

	store, err := newStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	registry := location.New(store.positions, store.samples, store.drivers, store.txManager, log).WithCache(store.positionCache)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})

	s := &LocationIngestService{
		storage:  store,
		reader:   reader,
		consumer: kafka.NewHeartbeatConsumer(reader, cfg.Kafka.Topic, registry, log),
		cfg:      cfg,
		log:      log,
	}

	s.httpServer, err = httpserver.New(cfg, httpserver.Services{Checks: store.checks}, log)
	if err != nil {
		s.close(ctx)
		return nil, err
	}

	return s, nil
}

func (s *LocationIngestService) Start(ctx context.Context) error {
	ctx = wrap.WithAction(ctx, string(types.LocationIngestService))
	defer func() {
		s.close(ctx)
		s.log.Info(ctx, "location ingest service closed")
	}()

	errCh := make(chan error, 2)
	s.httpServer.Run(ctx, errCh)

	consumeCtx, stop := context.WithCancel(ctx)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := s.consumer.Run(consumeCtx); err != nil {
			errCh <- err
		}
	}()
	defer func() {
		stop()
		<-consumerDone
	}()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	s.log.Info(ctx, "location ingest service started", "topic", s.cfg.Kafka.Topic)
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

func (s *LocationIngestService) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second*10)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Stop(ctx); err != nil {
			s.log.Warn(ctx, "failed to gracefully close http server", "error", err.Error())
		}
	}

	if s.reader != nil {
		if err := s.reader.Close(); err != nil {
			s.log.Warn(ctx, "failed to close kafka reader", "error", err.Error())
		}
	}

	s.storage.close(ctx, s.log)
}
