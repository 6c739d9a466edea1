package catalog

import (
	"context"
	"fmt"
	"strings"

	"mediahub/cache"
	"mediahub/logger"
	"mediahub/model"
	"mediahub/storage"
)

// CreatePhoto uploads the image and then records it in the album. All
// validation happens before the upload. When the record cannot be written
// the uploaded asset is left behind for the orphan sweep.
func (m *Manager) CreatePhoto(ctx context.Context, albumID string, in model.PhotoInput, blob *Blob) (*model.Photo, error) {
	title := strings.TrimSpace(in.Title)
	label := strings.TrimSpace(in.Label)
	if blob.Empty() {
		return nil, invalid("Image file is required")
	}
	if title == "" {
		return nil, invalid("title is required")
	}
	if !model.ValidLabel(label) {
		return nil, invalid(fmt.Sprintf("invalid label %q, expected one of %s", label, strings.Join(model.PhotoLabels, ", ")))
	}
	if _, err := m.GetAlbum(ctx, albumID); err != nil {
		return nil, err
	}

	res, err := m.upload(ctx, blob, storage.KindImage, albumID)
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()
	photo := &model.Photo{
		AlbumID:      albumID,
		Title:        title,
		Link:         res.URL,
		AssetID:      res.AssetID,
		Label:        label,
		Contributors: in.Contributors.Normalize(),
		Date:         now,
		UpdatedAt:    now,
	}
	if err := m.photos.Create(ctx, photo); err != nil {
		logger.Error("Photo record not saved, remote asset orphaned",
			logger.String("albumId", albumID),
			logger.String("assetId", res.AssetID),
			logger.ErrorField(err))
		return nil, storeFailure("failed to save photo", err)
	}
	m.invalidate(ctx, cache.AlbumPhotosKey(albumID))

	logger.Info("Photo created",
		logger.String("photoId", photo.ID),
		logger.String("albumId", albumID),
		logger.String("assetId", photo.AssetID))
	return photo, nil
}

// GetPhoto returns the photo or ErrNotFound.
func (m *Manager) GetPhoto(ctx context.Context, id string) (*model.Photo, error) {
	photo, err := m.photos.GetByID(ctx, id)
	if err != nil {
		return nil, storeFailure("failed to load photo", err)
	}
	if photo == nil {
		return nil, notFound("Photo not found")
	}
	return photo, nil
}

// ListPhotosInAlbum returns the album's photos, newest first. An unknown
// album yields an empty list.
func (m *Manager) ListPhotosInAlbum(ctx context.Context, albumID string) ([]*model.Photo, error) {
	photos, err := cached(ctx, m, cache.AlbumPhotosKey(albumID), func(ctx context.Context) ([]*model.Photo, error) {
		return m.photos.ListByAlbum(ctx, albumID)
	})
	if err != nil {
		return nil, storeFailure("failed to list photos", err)
	}
	return photos, nil
}

// UpdatePhoto patches title, label and contributors. The asset reference
// cannot be changed.
func (m *Manager) UpdatePhoto(ctx context.Context, id string, patch model.PhotoPatch) (*model.Photo, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, invalid("title is required")
		}
		patch.Title = &title
	}
	if patch.Label != nil {
		label := strings.TrimSpace(*patch.Label)
		if !model.ValidLabel(label) {
			return nil, invalid(fmt.Sprintf("invalid label %q, expected one of %s", label, strings.Join(model.PhotoLabels, ", ")))
		}
		patch.Label = &label
	}

	if patch.IsEmpty() {
		return m.GetPhoto(ctx, id)
	}
	photo, err := m.photos.Update(ctx, id, patch, m.clock.Now())
	if err != nil {
		return nil, storeFailure("failed to update photo", err)
	}
	if photo == nil {
		return nil, notFound("Photo not found")
	}
	m.invalidate(ctx, cache.AlbumPhotosKey(photo.AlbumID))
	return photo, nil
}

// DeletePhoto destroys the remote image and then the record. It returns the
// deleted record.
func (m *Manager) DeletePhoto(ctx context.Context, id string) (*model.Photo, error) {
	photo, err := m.GetPhoto(ctx, id)
	if err != nil {
		return nil, err
	}

	if m.policy.OwnsRemoteAsset(EntityPhoto) {
		if err := m.destroyOwned(ctx, photo.AssetID, storage.KindImage); err != nil {
			return nil, err
		}
	}

	deleted, err := m.photos.Delete(ctx, id)
	if err != nil {
		return nil, storeFailure("failed to delete photo", err)
	}
	if !deleted {
		return nil, notFound("Photo not found")
	}
	m.invalidate(ctx, cache.AlbumPhotosKey(photo.AlbumID))

	logger.Info("Photo deleted",
		logger.String("photoId", id),
		logger.String("assetId", photo.AssetID))
	return photo, nil
}
