package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"mediahub/config"
	"mediahub/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Store keeps assets in an AWS S3 bucket.
type S3Store struct {
	client     *s3.Client
	bucketName string
	keys       keyspace
}

// NewS3Store loads AWS credentials from the environment and builds the client.
func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required for the s3 asset backend")
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	publicURL := cfg.AssetPublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, awsCfg.Region)
	}

	logger.Info("S3 asset store ready",
		logger.String("bucket", cfg.S3Bucket),
		logger.String("region", awsCfg.Region))

	return &S3Store{
		client:     s3.NewFromConfig(awsCfg),
		bucketName: cfg.S3Bucket,
		keys:       newKeyspace(cfg.AssetFolder, publicURL),
	}, nil
}

// Upload writes the blob under a fresh key.
func (s *S3Store) Upload(ctx context.Context, r io.Reader, size int64, opts UploadOptions) (*UploadResult, error) {
	key := s.keys.newKey(opts)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentTypeFor(opts)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}
	return &UploadResult{URL: s.keys.url(key), AssetID: key, Size: size}, nil
}

// Destroy deletes the object; DeleteObject succeeds on missing keys so the
// object is checked first.
func (s *S3Store) Destroy(ctx context.Context, assetID string, kind ResourceKind) (DestroyStatus, error) {
	if !s.keys.owns(assetID, kind) {
		return StatusNotFound, nil
	}
	if _, err := s.head(ctx, assetID); err != nil {
		if errors.Is(err, ErrAssetNotFound) {
			return StatusNotFound, nil
		}
		return "", err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(assetID),
	})
	if err != nil {
		return "", fmt.Errorf("failed to delete %s from S3: %w", assetID, err)
	}
	return StatusOK, nil
}

// Inspect returns the object's metadata.
func (s *S3Store) Inspect(ctx context.Context, assetID string, kind ResourceKind) (*AssetInfo, error) {
	if !s.keys.owns(assetID, kind) {
		return nil, ErrAssetNotFound
	}
	out, err := s.head(ctx, assetID)
	if err != nil {
		return nil, err
	}
	return &AssetInfo{
		AssetID:      assetID,
		URL:          s.keys.url(assetID),
		Kind:         kind,
		Size:         aws.ToInt64(out.ContentLength),
		ContentType:  aws.ToString(out.ContentType),
		ETag:         aws.ToString(out.ETag),
		LastModified: aws.ToTime(out.LastModified),
	}, nil
}

// List pages through every object under the kind prefix.
func (s *S3Store) List(ctx context.Context, kind ResourceKind) ([]AssetInfo, error) {
	var assets []AssetInfo
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucketName),
		Prefix: aws.String(s.keys.prefix(kind)),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list S3 objects: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			assets = append(assets, AssetInfo{
				AssetID:      key,
				URL:          s.keys.url(key),
				Kind:         kind,
				Size:         aws.ToInt64(obj.Size),
				ETag:         aws.ToString(obj.ETag),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return assets, nil
}

// URL returns the public address of assetID.
func (s *S3Store) URL(assetID string) string {
	return s.keys.url(assetID)
}

// AssetIDForURL resolves a public URL built by this store.
func (s *S3Store) AssetIDForURL(link string, kind ResourceKind) (string, bool) {
	return s.keys.keyFor(link, kind)
}

func (s *S3Store) head(ctx context.Context, key string) (*s3.HeadObjectOutput, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
			return nil, ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to head %s in S3: %w", key, err)
	}
	return out, nil
}
