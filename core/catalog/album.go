package catalog

import (
	"context"
	"strings"

	"mediahub/cache"
	"mediahub/logger"
	"mediahub/model"
)

const msgAlbumNotEmpty = "Cannot delete album with existing photos. Delete photos first."

// CreateAlbum validates and persists a new album.
func (m *Manager) CreateAlbum(ctx context.Context, in model.AlbumInput) (*model.Album, error) {
	album := &model.Album{
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Channel:      strings.TrimSpace(in.Channel),
		Category:     strings.TrimSpace(in.Category),
		Contributors: in.Contributors.Normalize(),
	}
	if err := validateAlbum(album); err != nil {
		return nil, err
	}

	now := m.clock.Now()
	album.Date = now
	if in.Date != nil && !in.Date.IsZero() {
		album.Date = *in.Date
	}
	album.UpdatedAt = now

	if err := m.albums.Create(ctx, album); err != nil {
		return nil, storeFailure("failed to create album", err)
	}
	m.invalidate(ctx, cache.AlbumsKey)

	logger.Info("Album created", logger.String("albumId", album.ID), logger.String("title", album.Title))
	return album, nil
}

func validateAlbum(a *model.Album) error {
	switch {
	case a.Title == "":
		return invalid("title is required")
	case a.Description == "":
		return invalid("description is required")
	case a.Channel == "":
		return invalid("channel is required")
	case a.Category == "":
		return invalid("category is required")
	}
	return nil
}

// GetAlbum returns the album or ErrNotFound.
func (m *Manager) GetAlbum(ctx context.Context, id string) (*model.Album, error) {
	album, err := m.albums.GetByID(ctx, id)
	if err != nil {
		return nil, storeFailure("failed to load album", err)
	}
	if album == nil {
		return nil, notFound("Album not found")
	}
	return album, nil
}

// ListAlbums returns every album, newest first.
func (m *Manager) ListAlbums(ctx context.Context) ([]*model.Album, error) {
	albums, err := cached(ctx, m, cache.AlbumsKey, m.albums.List)
	if err != nil {
		return nil, storeFailure("failed to list albums", err)
	}
	return albums, nil
}

// UpdateAlbum applies a partial update. Required fields may not be blanked.
func (m *Manager) UpdateAlbum(ctx context.Context, id string, patch model.AlbumPatch) (*model.Album, error) {
	required := []struct {
		name  string
		value **string
	}{
		{"title", &patch.Title},
		{"description", &patch.Description},
		{"channel", &patch.Channel},
		{"category", &patch.Category},
	}
	for _, f := range required {
		if *f.value == nil {
			continue
		}
		trimmed := strings.TrimSpace(**f.value)
		if trimmed == "" {
			return nil, invalid(f.name + " is required")
		}
		*f.value = &trimmed
	}
	if patch.Date != nil && patch.Date.IsZero() {
		return nil, invalid("date must not be empty")
	}

	if patch.IsEmpty() {
		return m.GetAlbum(ctx, id)
	}
	album, err := m.albums.Update(ctx, id, patch, m.clock.Now())
	if err != nil {
		return nil, storeFailure("failed to update album", err)
	}
	if album == nil {
		return nil, notFound("Album not found")
	}
	m.invalidate(ctx, cache.AlbumsKey)
	return album, nil
}

// DeleteAlbum removes an album that no photo references. The emptiness check
// is repeated by the store's conditional delete, so a photo created after the
// first check still blocks the delete.
func (m *Manager) DeleteAlbum(ctx context.Context, id string) error {
	if _, err := m.GetAlbum(ctx, id); err != nil {
		return err
	}

	count, err := m.photos.CountByAlbum(ctx, id)
	if err != nil {
		return storeFailure("failed to count album photos", err)
	}
	if count > 0 {
		return conflict(msgAlbumNotEmpty)
	}

	deleted, err := m.albums.DeleteIfEmpty(ctx, id)
	if err != nil {
		return storeFailure("failed to delete album", err)
	}
	if !deleted {
		// Lost a race: either the album is gone or a photo arrived.
		album, err := m.albums.GetByID(ctx, id)
		if err != nil {
			return storeFailure("failed to load album", err)
		}
		if album == nil {
			return notFound("Album not found")
		}
		return conflict(msgAlbumNotEmpty)
	}

	m.invalidate(ctx, cache.AlbumsKey, cache.AlbumPhotosKey(id))
	logger.Info("Album deleted", logger.String("albumId", id))
	return nil
}
