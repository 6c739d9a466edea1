package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"mediahub/model"

	"github.com/google/uuid"
)

// NewMemorySet returns process-local repositories for tests and development.
// The album repository holds the photo lock while deleting, so DeleteIfEmpty
// cannot interleave with a photo insert.
func NewMemorySet() Set {
	photos := NewMemoryPhotoRepository()
	return Set{
		Albums: NewMemoryAlbumRepository(photos),
		Photos: photos,
		Videos: NewMemoryVideoRepository(),
		Close:  func(context.Context) error { return nil },
	}
}

// MemoryAlbumRepository stores albums in a map.
type MemoryAlbumRepository struct {
	mu     sync.RWMutex
	albums map[string]*model.Album
	photos *MemoryPhotoRepository
}

func NewMemoryAlbumRepository(photos *MemoryPhotoRepository) *MemoryAlbumRepository {
	return &MemoryAlbumRepository{
		albums: make(map[string]*model.Album),
		photos: photos,
	}
}

func (r *MemoryAlbumRepository) Create(ctx context.Context, album *model.Album) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if album.ID == "" {
		album.ID = uuid.New().String()
	}
	if album.Contributors == nil {
		album.Contributors = model.StringList{}
	}
	copy := *album
	r.albums[album.ID] = &copy
	return nil
}

func (r *MemoryAlbumRepository) GetByID(ctx context.Context, id string) (*model.Album, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	album, exists := r.albums[id]
	if !exists {
		return nil, nil
	}
	copy := *album
	return &copy, nil
}

func (r *MemoryAlbumRepository) List(ctx context.Context) ([]*model.Album, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Album, 0, len(r.albums))
	for _, album := range r.albums {
		copy := *album
		result = append(result, &copy)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})
	return result, nil
}

func (r *MemoryAlbumRepository) Update(ctx context.Context, id string, patch model.AlbumPatch, updatedAt time.Time) (*model.Album, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	album, exists := r.albums[id]
	if !exists {
		return nil, nil
	}
	patch.Apply(album)
	album.UpdatedAt = updatedAt
	copy := *album
	return &copy, nil
}

func (r *MemoryAlbumRepository) DeleteIfEmpty(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.albums[id]; !exists {
		return false, nil
	}
	if r.photos != nil {
		// album lock first, then photos; the photo repository never takes the album lock
		r.photos.mu.RLock()
		defer r.photos.mu.RUnlock()
		for _, photo := range r.photos.photos {
			if photo.AlbumID == id {
				return false, nil
			}
		}
	}
	delete(r.albums, id)
	return true, nil
}

// MemoryPhotoRepository stores photos in a map.
type MemoryPhotoRepository struct {
	mu     sync.RWMutex
	photos map[string]*model.Photo
}

func NewMemoryPhotoRepository() *MemoryPhotoRepository {
	return &MemoryPhotoRepository{photos: make(map[string]*model.Photo)}
}

func (r *MemoryPhotoRepository) Create(ctx context.Context, photo *model.Photo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if photo.ID == "" {
		photo.ID = uuid.New().String()
	}
	if photo.Contributors == nil {
		photo.Contributors = model.StringList{}
	}
	copy := *photo
	r.photos[photo.ID] = &copy
	return nil
}

func (r *MemoryPhotoRepository) GetByID(ctx context.Context, id string) (*model.Photo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	photo, exists := r.photos[id]
	if !exists {
		return nil, nil
	}
	copy := *photo
	return &copy, nil
}

func (r *MemoryPhotoRepository) ListByAlbum(ctx context.Context, albumID string) ([]*model.Photo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Photo
	for _, photo := range r.photos {
		if photo.AlbumID == albumID {
			copy := *photo
			result = append(result, &copy)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})
	return result, nil
}

func (r *MemoryPhotoRepository) CountByAlbum(ctx context.Context, albumID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, photo := range r.photos {
		if photo.AlbumID == albumID {
			count++
		}
	}
	return count, nil
}

func (r *MemoryPhotoRepository) ExistsByAssetID(ctx context.Context, assetID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, photo := range r.photos {
		if photo.AssetID == assetID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryPhotoRepository) Update(ctx context.Context, id string, patch model.PhotoPatch, updatedAt time.Time) (*model.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	photo, exists := r.photos[id]
	if !exists {
		return nil, nil
	}
	patch.Apply(photo)
	photo.UpdatedAt = updatedAt
	copy := *photo
	return &copy, nil
}

func (r *MemoryPhotoRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.photos[id]; !exists {
		return false, nil
	}
	delete(r.photos, id)
	return true, nil
}

// MemoryVideoRepository stores videos in a map.
type MemoryVideoRepository struct {
	mu     sync.RWMutex
	videos map[string]*model.Video
}

func NewMemoryVideoRepository() *MemoryVideoRepository {
	return &MemoryVideoRepository{videos: make(map[string]*model.Video)}
}

func (r *MemoryVideoRepository) Create(ctx context.Context, video *model.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if video.ID == "" {
		video.ID = uuid.New().String()
	}
	if video.Contributors == nil {
		video.Contributors = model.StringList{}
	}
	if video.Collaborators == nil {
		video.Collaborators = model.StringList{}
	}
	copy := *video
	r.videos[video.ID] = &copy
	return nil
}

func (r *MemoryVideoRepository) GetByID(ctx context.Context, id string) (*model.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	video, exists := r.videos[id]
	if !exists {
		return nil, nil
	}
	copy := *video
	return &copy, nil
}

func (r *MemoryVideoRepository) List(ctx context.Context) ([]*model.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Video, 0, len(r.videos))
	for _, video := range r.videos {
		copy := *video
		result = append(result, &copy)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})
	return result, nil
}

func (r *MemoryVideoRepository) ReferencesAsset(ctx context.Context, assetID, link string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, video := range r.videos {
		if video.AssetID != "" && video.AssetID == assetID {
			return true, nil
		}
		if link != "" && video.EmbedLink == link {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryVideoRepository) Update(ctx context.Context, id string, patch model.VideoPatch, updatedAt time.Time) (*model.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	video, exists := r.videos[id]
	if !exists {
		return nil, nil
	}
	patch.Apply(video)
	video.UpdatedAt = updatedAt
	copy := *video
	return &copy, nil
}

func (r *MemoryVideoRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.videos[id]; !exists {
		return false, nil
	}
	delete(r.videos, id)
	return true, nil
}
