package catalog

import (
	"context"
	"errors"
	"strings"

	"mediahub/cache"
	"mediahub/logger"
	"mediahub/model"
	"mediahub/storage"
)

// CreateVideo persists video metadata. No upload is required; the embed link
// may point at any host. When the link or assetId names a video in the asset
// store, the asset must exist and belong to no other video.
func (m *Manager) CreateVideo(ctx context.Context, in model.VideoInput) (*model.Video, error) {
	now := m.clock.Now()
	video := &model.Video{
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		Date:          now,
		EmbedLink:     strings.TrimSpace(in.EmbedLink),
		AssetID:       strings.TrimSpace(in.AssetID),
		Channel:       in.Channel,
		Category:      in.Category,
		Contributors:  in.Contributors.Normalize(),
		Collaborators: in.Collaborators.Normalize(),
		UpdatedAt:     now,
	}
	if in.Date != nil && !in.Date.IsZero() {
		video.Date = *in.Date
	}
	if err := m.attachVideoAsset(ctx, video); err != nil {
		return nil, err
	}

	if err := m.videos.Create(ctx, video); err != nil {
		return nil, storeFailure("failed to create video", err)
	}
	m.invalidate(ctx, cache.VideosKey)
	return video, nil
}

// attachVideoAsset fills in whichever of AssetID and EmbedLink the other one
// implies and checks the asset is free to be claimed.
func (m *Manager) attachVideoAsset(ctx context.Context, video *model.Video) error {
	if video.AssetID == "" {
		assetID, ok := m.assets.AssetIDForURL(video.EmbedLink, storage.KindVideo)
		if !ok {
			return nil
		}
		video.AssetID = assetID
	}
	if video.EmbedLink == "" {
		video.EmbedLink = m.assets.URL(video.AssetID)
	}

	if _, err := m.InspectAsset(ctx, storage.KindVideo, video.AssetID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return invalid("assetId does not name an uploaded video")
		}
		return err
	}
	referenced, err := m.assetReferenced(ctx, storage.KindVideo, video.AssetID)
	if err != nil {
		return err
	}
	if referenced {
		return conflict("Video asset is already attached to another video")
	}
	return nil
}

// UploadVideoAsset hosts a raw video file on the asset store. The duration is
// informational; a failed probe yields zero.
func (m *Manager) UploadVideoAsset(ctx context.Context, blob *Blob) (*storage.UploadResult, error) {
	if blob.Empty() {
		return nil, invalid("Video file is required")
	}
	return m.uploadWithDuration(ctx, blob, storage.KindVideo)
}

func (m *Manager) uploadWithDuration(ctx context.Context, blob *Blob, kind storage.ResourceKind) (*storage.UploadResult, error) {
	var duration float64
	if kind == storage.KindVideo {
		probeCtx, cancel := m.assetCall(ctx)
		d, err := m.prober.ProbeDuration(probeCtx, blob.Data)
		cancel()
		if err != nil {
			logger.Warn("Could not probe video duration",
				logger.String("filename", blob.Filename),
				logger.ErrorField(err))
		} else {
			duration = d
		}
	}

	res, err := m.upload(ctx, blob, kind, "")
	if err != nil {
		return nil, err
	}
	res.Duration = duration
	return res, nil
}

// GetVideo returns the video or ErrNotFound.
func (m *Manager) GetVideo(ctx context.Context, id string) (*model.Video, error) {
	video, err := m.videos.GetByID(ctx, id)
	if err != nil {
		return nil, storeFailure("failed to load video", err)
	}
	if video == nil {
		return nil, notFound("Video not found")
	}
	return video, nil
}

// ListVideos returns every video, newest first.
func (m *Manager) ListVideos(ctx context.Context) ([]*model.Video, error) {
	videos, err := cached(ctx, m, cache.VideosKey, m.videos.List)
	if err != nil {
		return nil, storeFailure("failed to list videos", err)
	}
	return videos, nil
}

// UpdateVideo applies a partial metadata update.
func (m *Manager) UpdateVideo(ctx context.Context, id string, patch model.VideoPatch) (*model.Video, error) {
	if patch.Date != nil && patch.Date.IsZero() {
		return nil, invalid("date must not be empty")
	}
	if patch.IsEmpty() {
		return m.GetVideo(ctx, id)
	}
	video, err := m.videos.Update(ctx, id, patch, m.clock.Now())
	if err != nil {
		return nil, storeFailure("failed to update video", err)
	}
	if video == nil {
		return nil, notFound("Video not found")
	}
	m.invalidate(ctx, cache.VideosKey)
	return video, nil
}

// DeleteVideo removes the record. The uploaded file is destroyed first only
// when videos own their asset; otherwise the caller removes it separately.
func (m *Manager) DeleteVideo(ctx context.Context, id string) error {
	video, err := m.GetVideo(ctx, id)
	if err != nil {
		return err
	}

	if m.policy.OwnsRemoteAsset(EntityVideo) {
		if err := m.destroyOwned(ctx, video.AssetID, storage.KindVideo); err != nil {
			return err
		}
	}

	deleted, err := m.videos.Delete(ctx, id)
	if err != nil {
		return storeFailure("failed to delete video", err)
	}
	if !deleted {
		return notFound("Video not found")
	}
	m.invalidate(ctx, cache.VideosKey)

	logger.Info("Video deleted", logger.String("videoId", id), logger.String("assetId", video.AssetID))
	return nil
}
