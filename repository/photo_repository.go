package repository

import (
	"context"
	"errors"
	"time"

	"mediahub/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormPhotoRepository struct {
	db *gorm.DB
}

// NewGormPhotoRepository 创建 GORM 照片仓库
func NewGormPhotoRepository(db *gorm.DB) PhotoRepository {
	return &gormPhotoRepository{db: db}
}

func (r *gormPhotoRepository) Create(ctx context.Context, photo *model.Photo) error {
	if photo.ID == "" {
		photo.ID = uuid.New().String()
	}
	if photo.Contributors == nil {
		photo.Contributors = model.StringList{}
	}
	return r.db.WithContext(ctx).Create(photo).Error
}

func (r *gormPhotoRepository) GetByID(ctx context.Context, id string) (*model.Photo, error) {
	var photo model.Photo
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&photo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &photo, nil
}

func (r *gormPhotoRepository) ListByAlbum(ctx context.Context, albumID string) ([]*model.Photo, error) {
	var photos []*model.Photo
	err := r.db.WithContext(ctx).
		Where("album_id = ?", albumID).
		Order("date DESC").
		Find(&photos).Error
	return photos, err
}

func (r *gormPhotoRepository) CountByAlbum(ctx context.Context, albumID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Photo{}).
		Where("album_id = ?", albumID).
		Count(&count).Error
	return count, err
}

func (r *gormPhotoRepository) ExistsByAssetID(ctx context.Context, assetID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Photo{}).
		Where("asset_id = ?", assetID).
		Count(&count).Error
	return count > 0, err
}

func (r *gormPhotoRepository) Update(ctx context.Context, id string, patch model.PhotoPatch, updatedAt time.Time) (*model.Photo, error) {
	cols := patch.Columns()
	cols["updated_at"] = updatedAt
	if err := r.db.WithContext(ctx).Model(&model.Photo{}).Where("id = ?", id).Updates(cols).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *gormPhotoRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Photo{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
