package server

import (
	"context"
	"errors"
	"fmt"

	"mediahub/cache"
	"mediahub/config"
	"mediahub/core/catalog"
	"mediahub/core/media"
	"mediahub/db"
	"mediahub/logger"
	"mediahub/repository"
	"mediahub/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Backends holds every long lived dependency of the process. It is built once
// at startup and closed on shutdown.
type Backends struct {
	Catalog  *catalog.Manager
	Registry *prometheus.Registry

	closers []func(context.Context) error
}

// Bootstrap connects the configured metadata store, asset store and listing
// cache and wires them into a catalog manager.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Backends, error) {
	b := &Backends{Registry: prometheus.NewRegistry()}
	b.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, repos.Close)

	assets, err := openAssetStore(ctx, cfg)
	if err != nil {
		b.Close(ctx)
		return nil, err
	}
	observer, err := storage.NewPrometheusObserver("mediahub_assets", b.Registry)
	if err != nil {
		b.Close(ctx)
		return nil, err
	}

	listCache, err := b.openCache(cfg)
	if err != nil {
		b.Close(ctx)
		return nil, err
	}

	b.Catalog = catalog.NewManager(repos, storage.NewObservedStore(assets, observer), catalog.Options{
		Policy:       catalog.AssetPolicy{VideoOwnsAsset: cfg.VideoOwnsAsset},
		AssetTimeout: cfg.AssetTimeout,
		Cache:        listCache,
		Prober:       media.NewFFprobeProber(cfg.FFprobePath),
	})
	return b, nil
}

// Close releases the backends in reverse order of creation.
func (b *Backends) Close(ctx context.Context) error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

func openRepositories(ctx context.Context, cfg *config.Config) (repository.Set, error) {
	switch cfg.MetadataBackend {
	case config.BackendMySQL:
		gormDB, err := db.ConnectGormDB(cfg)
		if err != nil {
			return repository.Set{}, err
		}
		if err := db.AutoMigrateModels(gormDB, repository.Models()...); err != nil {
			return repository.Set{}, err
		}
		logger.Info("Using MySQL metadata store", logger.String("database", cfg.DBName))
		return repository.NewGormSet(gormDB), nil
	case config.BackendMongo:
		client, err := db.ConnectMongo(ctx, cfg)
		if err != nil {
			return repository.Set{}, err
		}
		if err := repository.EnsureMongoIndexes(ctx, client.Database(cfg.MongoDatabase)); err != nil {
			_ = client.Disconnect(ctx)
			return repository.Set{}, err
		}
		logger.Info("Using MongoDB metadata store", logger.String("database", cfg.MongoDatabase))
		return repository.NewMongoSet(client, cfg.MongoDatabase), nil
	case config.BackendMemory:
		logger.Warn("Using in-memory metadata store, records are lost on restart")
		return repository.NewMemorySet(), nil
	}
	return repository.Set{}, fmt.Errorf("unknown METADATA_BACKEND %q", cfg.MetadataBackend)
}

func openAssetStore(ctx context.Context, cfg *config.Config) (storage.AssetStore, error) {
	switch cfg.AssetBackend {
	case config.AssetBackendMinio:
		return storage.NewMinioStore(ctx, cfg)
	case config.AssetBackendS3:
		return storage.NewS3Store(ctx, cfg)
	case config.AssetBackendMemory:
		logger.Warn("Using in-memory asset store, uploads are lost on restart")
		return storage.NewMemoryStore(cfg.AssetFolder, cfg.AssetPublicURL), nil
	}
	return nil, fmt.Errorf("unknown ASSET_BACKEND %q", cfg.AssetBackend)
}

func (b *Backends) openCache(cfg *config.Config) (cache.ListCache, error) {
	if cfg.CacheTTL <= 0 {
		return cache.Nop{}, nil
	}
	if cfg.RedisEnabled() {
		client, err := db.ConnectRedis(cfg)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func(context.Context) error { return client.Close() })
		logger.Info("Using Redis list cache", logger.String("host", cfg.RedisHost))
		return cache.NewRedisListCache(client, cfg.CacheTTL), nil
	}
	logger.Info("Using in-process list cache", logger.Int("size", cfg.CacheSize))
	return cache.NewLRUListCache(cfg.CacheSize, cfg.CacheTTL), nil
}
