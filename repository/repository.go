package repository

import (
	"context"
	"time"

	"mediahub/model"

	"gorm.io/gorm"
)

// Lookups return (nil, nil) when the record does not exist; deletes report
// whether a record was removed. Listings are ordered by date, newest first.

// AlbumRepository 定义相册相关的数据访问接口
type AlbumRepository interface {
	// Create assigns an ID and persists the album.
	Create(ctx context.Context, album *model.Album) error
	GetByID(ctx context.Context, id string) (*model.Album, error)
	List(ctx context.Context) ([]*model.Album, error)
	// Update applies the patch, stamps updatedAt and returns the updated album.
	Update(ctx context.Context, id string, patch model.AlbumPatch, updatedAt time.Time) (*model.Album, error)
	// DeleteIfEmpty removes the album only while no photo references it.
	DeleteIfEmpty(ctx context.Context, id string) (bool, error)
}

// PhotoRepository 定义照片相关的数据访问接口
type PhotoRepository interface {
	Create(ctx context.Context, photo *model.Photo) error
	GetByID(ctx context.Context, id string) (*model.Photo, error)
	ListByAlbum(ctx context.Context, albumID string) ([]*model.Photo, error)
	CountByAlbum(ctx context.Context, albumID string) (int64, error)
	ExistsByAssetID(ctx context.Context, assetID string) (bool, error)
	Update(ctx context.Context, id string, patch model.PhotoPatch, updatedAt time.Time) (*model.Photo, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// VideoRepository 定义视频相关的数据访问接口
type VideoRepository interface {
	Create(ctx context.Context, video *model.Video) error
	GetByID(ctx context.Context, id string) (*model.Video, error)
	List(ctx context.Context) ([]*model.Video, error)
	// ReferencesAsset reports whether a video names the asset by id or
	// embeds it by URL. An empty link matches on the id only.
	ReferencesAsset(ctx context.Context, assetID, link string) (bool, error)
	Update(ctx context.Context, id string, patch model.VideoPatch, updatedAt time.Time) (*model.Video, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Set bundles the three repositories of one metadata backend.
type Set struct {
	Albums AlbumRepository
	Photos PhotoRepository
	Videos VideoRepository
	// Close releases the backend connection.
	Close func(ctx context.Context) error
}

// NewGormSet wires the GORM repositories onto one connection.
func NewGormSet(db *gorm.DB) Set {
	return Set{
		Albums: NewGormAlbumRepository(db),
		Photos: NewGormPhotoRepository(db),
		Videos: NewGormVideoRepository(db),
		Close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

// Models lists the GORM models to migrate.
func Models() []interface{} {
	return []interface{}{&model.Album{}, &model.Photo{}, &model.Video{}}
}
