package repository

import (
	"context"
	"errors"
	"time"

	"mediahub/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormAlbumRepository GORM 实现
type gormAlbumRepository struct {
	db *gorm.DB
}

// NewGormAlbumRepository 创建 GORM 相册仓库
func NewGormAlbumRepository(db *gorm.DB) AlbumRepository {
	return &gormAlbumRepository{db: db}
}

// Create 创建相册
func (r *gormAlbumRepository) Create(ctx context.Context, album *model.Album) error {
	if album.ID == "" {
		album.ID = uuid.New().String()
	}
	if album.Contributors == nil {
		album.Contributors = model.StringList{}
	}
	return r.db.WithContext(ctx).Create(album).Error
}

// GetByID 根据ID获取相册
func (r *gormAlbumRepository) GetByID(ctx context.Context, id string) (*model.Album, error) {
	var album model.Album
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&album).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &album, nil
}

// List 按日期倒序返回全部相册
func (r *gormAlbumRepository) List(ctx context.Context) ([]*model.Album, error) {
	var albums []*model.Album
	err := r.db.WithContext(ctx).Order("date DESC").Find(&albums).Error
	return albums, err
}

// Update 部分更新相册
func (r *gormAlbumRepository) Update(ctx context.Context, id string, patch model.AlbumPatch, updatedAt time.Time) (*model.Album, error) {
	cols := patch.Columns()
	cols["updated_at"] = updatedAt
	err := r.db.WithContext(ctx).Model(&model.Album{}).Where("id = ?", id).Updates(cols).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// DeleteIfEmpty 仅在没有照片引用时删除相册，检查与删除在同一条语句中完成
func (r *gormAlbumRepository) DeleteIfEmpty(ctx context.Context, id string) (bool, error) {
	photos := r.db.Session(&gorm.Session{NewDB: true}).
		Model(&model.Photo{}).
		Select("1").
		Where("album_id = ?", id)
	res := r.db.WithContext(ctx).
		Where("id = ? AND NOT EXISTS (?)", id, photos).
		Delete(&model.Album{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
