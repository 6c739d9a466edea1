package repository

import (
	"context"
	"errors"
	"time"

	"mediahub/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormVideoRepository struct {
	db *gorm.DB
}

// NewGormVideoRepository 创建 GORM 视频仓库
func NewGormVideoRepository(db *gorm.DB) VideoRepository {
	return &gormVideoRepository{db: db}
}

func (r *gormVideoRepository) Create(ctx context.Context, video *model.Video) error {
	if video.ID == "" {
		video.ID = uuid.New().String()
	}
	if video.Contributors == nil {
		video.Contributors = model.StringList{}
	}
	if video.Collaborators == nil {
		video.Collaborators = model.StringList{}
	}
	return r.db.WithContext(ctx).Create(video).Error
}

func (r *gormVideoRepository) GetByID(ctx context.Context, id string) (*model.Video, error) {
	var video model.Video
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&video).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &video, nil
}

func (r *gormVideoRepository) List(ctx context.Context) ([]*model.Video, error) {
	var videos []*model.Video
	err := r.db.WithContext(ctx).Order("date DESC").Find(&videos).Error
	return videos, err
}

// ReferencesAsset 按资源标识或嵌入链接查找引用
func (r *gormVideoRepository) ReferencesAsset(ctx context.Context, assetID, link string) (bool, error) {
	query := r.db.WithContext(ctx).Model(&model.Video{})
	if link != "" {
		query = query.Where("asset_id = ? OR embed_link = ?", assetID, link)
	} else {
		query = query.Where("asset_id = ?", assetID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *gormVideoRepository) Update(ctx context.Context, id string, patch model.VideoPatch, updatedAt time.Time) (*model.Video, error) {
	cols := patch.Columns()
	cols["updated_at"] = updatedAt
	if err := r.db.WithContext(ctx).Model(&model.Video{}).Where("id = ?", id).Updates(cols).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *gormVideoRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Video{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
