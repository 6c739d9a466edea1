package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process AssetStore for tests and local development.
// It records every upload and destroy call for assertions.
type MemoryStore struct {
	mu      sync.Mutex
	keys    keyspace
	blobs   map[string]memoryBlob
	now     func() time.Time
	uploads []UploadOptions
	destroy []string

	// Fault injection; when set the matching call fails with this error.
	UploadErr  error
	DestroyErr error
	InspectErr error
}

type memoryBlob struct {
	data        []byte
	kind        ResourceKind
	contentType string
	modified    time.Time
}

// NewMemoryStore constructs a store that builds URLs under publicURL.
func NewMemoryStore(folder, publicURL string) *MemoryStore {
	return &MemoryStore{
		keys:  newKeyspace(folder, publicURL),
		blobs: make(map[string]memoryBlob),
		now:   time.Now,
	}
}

// SetClock overrides the modification timestamp source.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemoryStore) Upload(ctx context.Context, r io.Reader, size int64, opts UploadOptions) (*UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.uploads = append(m.uploads, opts)
	if m.UploadErr != nil {
		return nil, m.UploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("storage: read payload: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("storage: empty payload for %s", opts.Filename)
	}
	key := m.keys.newKey(opts)
	m.blobs[key] = memoryBlob{
		data:        data,
		kind:        opts.Kind,
		contentType: contentTypeFor(opts),
		modified:    m.now(),
	}
	return &UploadResult{URL: m.keys.url(key), AssetID: key, Size: int64(len(data))}, nil
}

func (m *MemoryStore) Destroy(ctx context.Context, assetID string, kind ResourceKind) (DestroyStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.destroy = append(m.destroy, assetID)
	if m.DestroyErr != nil {
		return "", m.DestroyErr
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	blob, ok := m.blobs[assetID]
	if !ok || blob.kind != kind {
		return StatusNotFound, nil
	}
	delete(m.blobs, assetID)
	return StatusOK, nil
}

func (m *MemoryStore) Inspect(ctx context.Context, assetID string, kind ResourceKind) (*AssetInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InspectErr != nil {
		return nil, m.InspectErr
	}
	blob, ok := m.blobs[assetID]
	if !ok || blob.kind != kind {
		return nil, ErrAssetNotFound
	}
	info := m.info(assetID, blob)
	return &info, nil
}

func (m *MemoryStore) List(ctx context.Context, kind ResourceKind) ([]AssetInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var assets []AssetInfo
	for key, blob := range m.blobs {
		if blob.kind == kind {
			assets = append(assets, m.info(key, blob))
		}
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].AssetID < assets[j].AssetID })
	return assets, nil
}

// URL returns the public address of assetID.
func (m *MemoryStore) URL(assetID string) string {
	return m.keys.url(assetID)
}

// AssetIDForURL resolves a public URL built by this store.
func (m *MemoryStore) AssetIDForURL(link string, kind ResourceKind) (string, bool) {
	return m.keys.keyFor(link, kind)
}

func (m *MemoryStore) info(key string, blob memoryBlob) AssetInfo {
	return AssetInfo{
		AssetID:      key,
		URL:          m.keys.url(key),
		Kind:         blob.kind,
		Size:         int64(len(blob.data)),
		ContentType:  blob.contentType,
		LastModified: blob.modified,
	}
}

// Uploads returns the options of every upload attempt, failed ones included.
func (m *MemoryStore) Uploads() []UploadOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]UploadOptions(nil), m.uploads...)
}

// Destroys returns the asset ids of every destroy attempt.
func (m *MemoryStore) Destroys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.destroy...)
}

// Has reports whether the asset is currently stored.
func (m *MemoryStore) Has(assetID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[assetID]
	return ok
}

// Bytes returns the stored payload for assertions.
func (m *MemoryStore) Bytes(assetID string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[assetID]
	return append([]byte(nil), blob.data...), ok
}
