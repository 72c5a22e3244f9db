package microservices

import (
	"context"
	"fmt"

	"github.com/Temutjin2k/campus-ride/config"
	"github.com/Temutjin2k/campus-ride/internal/adapter/georedis"
	"github.com/Temutjin2k/campus-ride/internal/adapter/http/handler"
	"github.com/Temutjin2k/campus-ride/internal/adapter/memory"
	repo "github.com/Temutjin2k/campus-ride/internal/adapter/postgres"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/internal/service/location"
	"github.com/Temutjin2k/campus-ride/internal/service/matching"
	"github.com/Temutjin2k/campus-ride/internal/service/negotiation"
	"github.com/Temutjin2k/campus-ride/internal/service/notify"
	"github.com/Temutjin2k/campus-ride/internal/service/sweeper"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	"github.com/Temutjin2k/campus-ride/pkg/postgres"
	"github.com/Temutjin2k/campus-ride/pkg/trm"
	"github.com/redis/go-redis/v9"
)

type driverStore interface {
	location.DriverDirectory
	matching.DriverLookup
}

type requestStore interface {
	matching.RequestStore
	sweeper.RequestExpirer
}

// storage groups the persistence adapters of one storage driver.
type storage struct {
	positions     location.PositionStore
	positionCache location.PositionCache
	samples       location.SampleLog
	drivers       driverStore
	requests      requestStore
	rides         matching.RideStore
	negotiations  negotiation.Store
	notifications notify.Store
	txManager     trm.TxManager

	postgresDB *postgres.PostgreDB
	redis      *redis.Client
	checks     map[string]handler.CheckFunc
}

func newStorage(ctx context.Context, cfg config.Config, log logger.Logger) (*storage, error) {
	s := &storage{checks: make(map[string]handler.CheckFunc)}

	switch cfg.Storage.Driver {
	case types.StorageMemory:
		log.Warn(ctx, "using in-memory storage, data is lost on restart")
		s.positions = memory.NewPositionStore()
		s.samples = memory.NewSampleLog()
		s.drivers = memory.NewDriverDirectory()
		s.requests = memory.NewRequestStore()
		s.rides = memory.NewRideStore()
		s.negotiations = memory.NewNegotiationStore()
		s.notifications = memory.NewNotificationStore()
		s.txManager = memory.NewTxManager()
	case types.StoragePostgres:
		db, err := postgres.New(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to setup database: %w", err)
		}
		s.postgresDB = db
		s.checks["postgres"] = func(ctx context.Context) error { return db.Pool.Ping(ctx) }

		s.positions = repo.NewPositionRepo(db.Pool)
		s.samples = repo.NewSampleRepo(db.Pool)
		s.drivers = repo.NewDriverRepo(db.Pool)
		s.requests = repo.NewRequestRepo(db.Pool)
		s.rides = repo.NewRideRepo(db.Pool)
		s.negotiations = repo.NewNegotiationRepo(db.Pool)
		s.notifications = repo.NewNotificationRepo(db.Pool)
		s.txManager = trm.New(db.Pool)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			s.close(ctx, log)
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.redis = client
		s.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		s.positionCache = georedis.NewPositionIndex(client, cfg.Redis.Prefix)
		log.Info(ctx, "latest positions cached in redis", "addr", cfg.Redis.Addr)
	}

	return s, nil
}

func (s *storage) close(ctx context.Context, log logger.Logger) {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Warn(ctx, "failed to close redis client", "error", err.Error())
		}
	}
	if s.postgresDB != nil {
		s.postgresDB.Close()
	}
}
