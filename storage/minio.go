package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"mediahub/config"
	"mediahub/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore 基于 MinIO 的远程资源存储
type MinioStore struct {
	client     *minio.Client
	bucketName string
	keys       keyspace
}

// NewMinioStore 创建 MinIO 客户端并确保存储桶存在
func NewMinioStore(ctx context.Context, cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 MinIO 客户端失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("检查存储桶失败: %w", err)
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion})
		if err != nil {
			return nil, fmt.Errorf("创建存储桶失败: %w", err)
		}
		logger.Info("Created MinIO bucket", logger.String("bucket", cfg.MinioBucket))
	}

	publicURL := cfg.AssetPublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.MinioEndpoint, cfg.MinioBucket)
	}

	logger.Info("MinIO asset store ready",
		logger.String("endpoint", cfg.MinioEndpoint),
		logger.String("bucket", cfg.MinioBucket))

	return &MinioStore{
		client:     client,
		bucketName: cfg.MinioBucket,
		keys:       newKeyspace(cfg.AssetFolder, publicURL),
	}, nil
}

// Upload 上传对象，返回可访问 URL 和资源标识
func (m *MinioStore) Upload(ctx context.Context, r io.Reader, size int64, opts UploadOptions) (*UploadResult, error) {
	key := m.keys.newKey(opts)
	info, err := m.client.PutObject(ctx, m.bucketName, key, r, size, minio.PutObjectOptions{
		ContentType: contentTypeFor(opts),
	})
	if err != nil {
		return nil, fmt.Errorf("上传对象失败 %s: %w", key, err)
	}
	return &UploadResult{
		URL:     m.keys.url(key),
		AssetID: key,
		Size:    info.Size,
	}, nil
}

// Destroy 删除对象；对象不存在时返回 StatusNotFound
func (m *MinioStore) Destroy(ctx context.Context, assetID string, kind ResourceKind) (DestroyStatus, error) {
	if !m.keys.owns(assetID, kind) {
		return StatusNotFound, nil
	}
	// RemoveObject succeeds on missing keys, so stat first to report absence.
	if _, err := m.client.StatObject(ctx, m.bucketName, assetID, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return StatusNotFound, nil
		}
		return "", fmt.Errorf("查询对象失败 %s: %w", assetID, err)
	}
	if err := m.client.RemoveObject(ctx, m.bucketName, assetID, minio.RemoveObjectOptions{}); err != nil {
		return "", fmt.Errorf("删除对象失败 %s: %w", assetID, err)
	}
	return StatusOK, nil
}

// Inspect 获取对象元数据
func (m *MinioStore) Inspect(ctx context.Context, assetID string, kind ResourceKind) (*AssetInfo, error) {
	if !m.keys.owns(assetID, kind) {
		return nil, ErrAssetNotFound
	}
	stat, err := m.client.StatObject(ctx, m.bucketName, assetID, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrAssetNotFound
		}
		return nil, fmt.Errorf("查询对象失败 %s: %w", assetID, err)
	}
	return &AssetInfo{
		AssetID:      assetID,
		URL:          m.keys.url(assetID),
		Kind:         kind,
		Size:         stat.Size,
		ContentType:  stat.ContentType,
		ETag:         stat.ETag,
		LastModified: stat.LastModified,
	}, nil
}

// List 列出某类资源下的全部对象
func (m *MinioStore) List(ctx context.Context, kind ResourceKind) ([]AssetInfo, error) {
	var assets []AssetInfo
	objectCh := m.client.ListObjects(ctx, m.bucketName, minio.ListObjectsOptions{
		Prefix:    m.keys.prefix(kind),
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("列出对象时出错: %w", object.Err)
		}
		assets = append(assets, AssetInfo{
			AssetID:      object.Key,
			URL:          m.keys.url(object.Key),
			Kind:         kind,
			Size:         object.Size,
			ContentType:  object.ContentType,
			ETag:         object.ETag,
			LastModified: object.LastModified,
		})
	}
	return assets, nil
}

// URL 返回资源的公开访问地址
func (m *MinioStore) URL(assetID string) string {
	return m.keys.url(assetID)
}

// AssetIDForURL 从公开地址反查资源标识
func (m *MinioStore) AssetIDForURL(link string, kind ResourceKind) (string, bool) {
	return m.keys.keyFor(link, kind)
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound" || strings.Contains(err.Error(), "NoSuchKey")
}
