package catalog

import (
	"context"
	"errors"

	"mediahub/logger"
	"mediahub/storage"
)

// UploadAsset stores a blob without creating a record.
func (m *Manager) UploadAsset(ctx context.Context, kind storage.ResourceKind, blob *Blob) (*storage.UploadResult, error) {
	if blob.Empty() {
		return nil, invalid("No file provided")
	}
	return m.uploadWithDuration(ctx, blob, kind)
}

// InspectAsset returns the store's metadata for an asset.
func (m *Manager) InspectAsset(ctx context.Context, kind storage.ResourceKind, assetID string) (*storage.AssetInfo, error) {
	ctx, cancel := m.assetCall(ctx)
	defer cancel()

	info, err := m.assets.Inspect(ctx, assetID, kind)
	if err != nil {
		if errors.Is(err, storage.ErrAssetNotFound) {
			return nil, notFound("Asset not found")
		}
		return nil, upstream("failed to inspect asset", err)
	}
	return info, nil
}

// DestroyAsset removes an asset that no record references. A missing asset
// is reported through the status, not as an error.
func (m *Manager) DestroyAsset(ctx context.Context, kind storage.ResourceKind, assetID string) (storage.DestroyStatus, error) {
	referenced, err := m.assetReferenced(ctx, kind, assetID)
	if err != nil {
		return "", err
	}
	if referenced {
		return "", conflict("Asset is still referenced by a record; delete the record instead")
	}

	ctx, cancel := m.assetCall(ctx)
	defer cancel()

	status, err := m.assets.Destroy(ctx, assetID, kind)
	if err != nil {
		return "", upstream("failed to delete asset", err)
	}
	logger.Info("Asset destroyed",
		logger.String("assetId", assetID),
		logger.String("kind", string(kind)),
		logger.String("status", string(status)))
	return status, nil
}

// ListAssets lists the store's assets of one kind.
func (m *Manager) ListAssets(ctx context.Context, kind storage.ResourceKind) ([]storage.AssetInfo, error) {
	ctx, cancel := m.assetCall(ctx)
	defer cancel()

	assets, err := m.assets.List(ctx, kind)
	if err != nil {
		return nil, upstream("failed to list assets", err)
	}
	return assets, nil
}

// assetReferenced reports whether a photo or video record points at assetID.
// Videos may carry only the embed link, so they are matched on the URL too.
func (m *Manager) assetReferenced(ctx context.Context, kind storage.ResourceKind, assetID string) (bool, error) {
	var (
		found bool
		err   error
	)
	switch kind {
	case storage.KindImage:
		found, err = m.photos.ExistsByAssetID(ctx, assetID)
	case storage.KindVideo:
		found, err = m.videos.ReferencesAsset(ctx, assetID, m.assets.URL(assetID))
	}
	if err != nil {
		return false, storeFailure("failed to check asset references", err)
	}
	return found, nil
}
