package catalog

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"time"

	"mediahub/cache"
	"mediahub/core/media"
	"mediahub/logger"
	"mediahub/repository"
	"mediahub/storage"
)

const defaultAssetTimeout = 30 * time.Second

// Blob is an uploaded file held in memory.
type Blob struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Empty reports whether no file content was supplied.
func (b *Blob) Empty() bool {
	return b == nil || len(b.Data) == 0
}

// Options configures a Manager. Zero values select the defaults.
type Options struct {
	Policy       AssetPolicy
	AssetTimeout time.Duration
	Cache        cache.ListCache
	Prober       media.DurationProber
	Clock        Clock
}

// Manager keeps album, photo and video records consistent with the remote
// assets they reference. The two stores share no transaction: an asset is
// always uploaded before the record that points at it is written, and an
// owned asset is destroyed before its record is removed.
type Manager struct {
	albums repository.AlbumRepository
	photos repository.PhotoRepository
	videos repository.VideoRepository
	assets storage.AssetStore

	policy       AssetPolicy
	assetTimeout time.Duration
	cache        cache.ListCache
	prober       media.DurationProber
	clock        Clock

	// listGen counts listing invalidations. A listing loaded across a bump
	// may predate the write and must not stay cached.
	listGen atomic.Uint64
}

// NewManager wires the repositories of one metadata backend to an asset store.
func NewManager(repos repository.Set, assets storage.AssetStore, opts Options) *Manager {
	m := &Manager{
		albums:       repos.Albums,
		photos:       repos.Photos,
		videos:       repos.Videos,
		assets:       assets,
		policy:       opts.Policy,
		assetTimeout: opts.AssetTimeout,
		cache:        opts.Cache,
		prober:       opts.Prober,
		clock:        opts.Clock,
	}
	if m.assetTimeout <= 0 {
		m.assetTimeout = defaultAssetTimeout
	}
	if m.cache == nil {
		m.cache = cache.Nop{}
	}
	if m.prober == nil {
		m.prober = media.NopProber{}
	}
	if m.clock == nil {
		m.clock = RealClock{}
	}
	return m
}

// Policy returns the asset ownership policy in effect.
func (m *Manager) Policy() AssetPolicy {
	return m.policy
}

// assetCall bounds a single remote asset store round trip.
func (m *Manager) assetCall(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.assetTimeout)
}

func (m *Manager) upload(ctx context.Context, blob *Blob, kind storage.ResourceKind, folder string) (*storage.UploadResult, error) {
	ctx, cancel := m.assetCall(ctx)
	defer cancel()

	res, err := m.assets.Upload(ctx, bytes.NewReader(blob.Data), int64(len(blob.Data)), storage.UploadOptions{
		Kind:        kind,
		Folder:      folder,
		Filename:    blob.Filename,
		ContentType: blob.ContentType,
	})
	if err != nil {
		logger.Error("Asset upload failed",
			logger.String("kind", string(kind)),
			logger.String("filename", blob.Filename),
			logger.ErrorField(err))
		return nil, upstream("failed to upload "+string(kind), err)
	}
	return res, nil
}

// destroyOwned removes a record's asset ahead of the record itself. An asset
// that is already gone is not an error; any other failure, a timeout
// included, leaves the caller free to retry with the record still in place.
func (m *Manager) destroyOwned(ctx context.Context, assetID string, kind storage.ResourceKind) error {
	if assetID == "" {
		return nil
	}
	ctx, cancel := m.assetCall(ctx)
	defer cancel()

	status, err := m.assets.Destroy(ctx, assetID, kind)
	if err != nil {
		logger.Error("Asset destroy failed, keeping record",
			logger.String("assetId", assetID),
			logger.String("kind", string(kind)),
			logger.ErrorField(err))
		return upstream("failed to delete remote asset", err)
	}
	if status == storage.StatusNotFound {
		logger.Warn("Remote asset already absent",
			logger.String("assetId", assetID),
			logger.String("kind", string(kind)))
	}
	return nil
}

// cached serves a listing from the cache, loading and storing it on a miss.
// Cache failures only cost the shortcut.
func cached[T any](ctx context.Context, m *Manager, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	var items []T
	err := m.cache.Get(ctx, key, &items)
	if err == nil {
		return items, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logger.Warn("List cache read failed", logger.String("key", key), logger.ErrorField(err))
	}

	gen := m.listGen.Load()
	items, err = load(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	if m.listGen.Load() != gen {
		return items, nil
	}
	if err := m.cache.Set(ctx, key, items); err != nil {
		logger.Warn("List cache write failed", logger.String("key", key), logger.ErrorField(err))
		return items, nil
	}
	// an invalidation between the check and the write may have run before
	// the write landed
	if m.listGen.Load() != gen {
		m.invalidate(ctx, key)
	}
	return items, nil
}

func (m *Manager) invalidate(ctx context.Context, keys ...string) {
	m.listGen.Add(1)
	if err := m.cache.Invalidate(ctx, keys...); err != nil {
		logger.Warn("List cache invalidation failed", logger.Strings("keys", keys), logger.ErrorField(err))
	}
}
