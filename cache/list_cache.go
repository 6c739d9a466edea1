package cache

import (
	"context"
	"errors"
	"fmt"
)

// ErrMiss is returned by Get when no fresh entry exists for the key.
var ErrMiss = errors.New("cache miss")

// ListCache caches JSON encoded listings. Entries are dropped by every
// mutation that could change them; the TTL only bounds staleness left
// behind by writers that bypass the manager.
type ListCache interface {
	// Get decodes the cached value into dest, returning ErrMiss when absent.
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
	Invalidate(ctx context.Context, keys ...string) error
}

const (
	AlbumsKey = "albums"
	VideosKey = "videos"
)

// AlbumPhotosKey 生成相册照片列表的缓存键
func AlbumPhotosKey(albumID string) string {
	return fmt.Sprintf("album:%s:photos", albumID)
}

// Nop is a ListCache that never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string, interface{}) error { return ErrMiss }

func (Nop) Set(context.Context, string, interface{}) error { return nil }

func (Nop) Invalidate(context.Context, ...string) error { return nil }
