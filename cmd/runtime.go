package cmd

import (
	"fmt"

	"tlf-sync/core/config"
	"tlf-sync/core/database"
	"tlf-sync/core/logger"
	"tlf-sync/core/reconcile"
	"tlf-sync/core/redisdb"
	"tlf-sync/core/storage"
	"tlf-sync/feature/tlf/archive"
	"tlf-sync/feature/tlf/notify"
	tlfsource "tlf-sync/feature/tlf/source"
	"tlf-sync/feature/tlf/store"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime holds everything a sync needs, wired from configuration.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	ledger  *gorm.DB
	source  *gorm.DB
	redis   *redis.Client
	objects storage.Client
	store   *store.Store
	archive *archive.Archive
	engine  *reconcile.Engine
	runner  reconcile.Runner
}

// loadBase reads the configuration and builds the logger.
func loadBase() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logg.With(zap.String("instance", cfg.Server.Instance)), nil
}

// newRuntime connects both databases and the optional Redis and object
// storage, then builds the engine and its guard.
func newRuntime() (*runtime, error) {
	cfg, logg, err := loadBase()
	if err != nil {
		return nil, err
	}

	opts, err := cfg.Sync.Options()
	if err != nil {
		return nil, err
	}

	ledger, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("ledger database connection required: %w", err)
	}
	source, err := database.Connect(cfg.Source.Config)
	if err != nil {
		return nil, fmt.Errorf("source database connection required: %w", err)
	}

	rt := &runtime{
		cfg:    cfg,
		logger: logg,
		ledger: ledger,
		source: source,
		store:  store.New(ledger),
	}

	// Redis and object storage are optional; the sync degrades without them.
	if cfg.Redis.Enabled {
		if rdb, err := redisdb.Connect(cfg.Redis); err != nil {
			logg.Warn("Redis unavailable, notifications and cross-process lock disabled", zap.Error(err))
		} else {
			rt.redis = rdb
		}
	}
	if cfg.Storage.Enabled {
		if client, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Object storage unavailable, snapshot archive disabled", zap.Error(err))
		} else {
			rt.objects = client
			rt.archive = archive.New(client, cfg.Storage, logg)
		}
	}

	notifier := notify.Multi{notify.NewLog(logg)}
	if rt.redis != nil {
		notifier = append(notifier, notify.NewRedis(rt.redis, notify.ChannelsFor(cfg.Sync.ChannelPrefix), logg))
	}

	rt.engine = reconcile.NewEngine(tlfsource.New(source, cfg.Source.BatchLimit), rt.store, notifier, opts, logg)
	if rt.archive != nil {
		rt.engine.WithArchiver(rt.archive)
	}

	var locker reconcile.Locker
	if rt.redis != nil {
		locker = reconcile.NewRedisLocker(redislock.New(rt.redis))
	}
	guard := reconcile.NewGuard(locker, cfg.Sync.LockKey, cfg.Sync.LockTTL(), logg).WithOwner(cfg.Server.Instance)
	rt.runner = guard.Wrap(rt.engine)

	return rt, nil
}

func (r *runtime) Close() {
	if r.redis != nil {
		_ = r.redis.Close()
	}
	for _, db := range []*gorm.DB{r.ledger, r.source} {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = r.logger.Sync()
}
