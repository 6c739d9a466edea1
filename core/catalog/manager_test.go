package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"mediahub/cache"
	"mediahub/model"
	"mediahub/repository"
	"mediahub/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type harness struct {
	m     *Manager
	repos repository.Set
	store *storage.MemoryStore
	clock *FakeClock
}

func newHarness(t *testing.T, mutate ...func(*repository.Set, *Options)) *harness {
	t.Helper()
	clock := NewFakeClock(epoch)
	store := storage.NewMemoryStore("media", "http://assets.test")
	store.SetClock(clock.Now)

	repos := repository.NewMemorySet()
	opts := Options{Clock: clock, AssetTimeout: time.Second}
	for _, fn := range mutate {
		fn(&repos, &opts)
	}
	return &harness{
		m:     NewManager(repos, store, opts),
		repos: repos,
		store: store,
		clock: clock,
	}
}

func (h *harness) album(t *testing.T, title string) *model.Album {
	t.Helper()
	album, err := h.m.CreateAlbum(context.Background(), model.AlbumInput{
		Title:       title,
		Description: "description of " + title,
		Channel:     "Events",
		Category:    "Social",
	})
	require.NoError(t, err)
	return album
}

func image(size int) *Blob {
	return &Blob{Filename: "photo.jpg", ContentType: "image/jpeg", Data: bytes.Repeat([]byte{0xff}, size)}
}

func TestSpringGalaScenario(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	album, err := h.m.CreateAlbum(ctx, model.AlbumInput{
		Title:       "Spring Gala",
		Description: "...",
		Channel:     "Events",
		Category:    "Social",
	})
	require.NoError(t, err)

	photo, err := h.m.CreatePhoto(ctx, album.ID, model.PhotoInput{Title: "Opening"}, image(10*1024))
	require.NoError(t, err)
	assert.Equal(t, album.ID, photo.AlbumID)
	uploads := h.store.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, storage.KindImage, uploads[0].Kind)

	err = h.m.DeleteAlbum(ctx, album.ID)
	assert.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, "Cannot delete album with existing photos. Delete photos first.")
	_, err = h.m.GetAlbum(ctx, album.ID)
	require.NoError(t, err)

	_, err = h.m.DeletePhoto(ctx, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{photo.AssetID}, h.store.Destroys())
	assert.False(t, h.store.Has(photo.AssetID))

	require.NoError(t, h.m.DeleteAlbum(ctx, album.ID))
	_, err = h.m.GetAlbum(ctx, album.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreatePhotoListedInAlbum(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	album := h.album(t, "Retreat")

	photo, err := h.m.CreatePhoto(ctx, album.ID, model.PhotoInput{
		Title:        " Group shot ",
		Label:        model.LabelAG,
		Contributors: model.StringList{"ana", " ", "ben"},
	}, image(64))
	require.NoError(t, err)
	assert.Equal(t, "Group shot", photo.Title)
	assert.Equal(t, model.StringList{"ana", "ben"}, photo.Contributors)
	assert.Equal(t, "http://assets.test/"+photo.AssetID, photo.Link)
	assert.Equal(t, epoch, photo.Date)

	photos, err := h.m.ListPhotosInAlbum(ctx, album.ID)
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, photo.ID, photos[0].ID)
}

func TestCreatePhotoWithoutFile(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	album := h.album(t, "Empty")

	for _, blob := range []*Blob{nil, {Filename: "x.jpg"}} {
		_, err := h.m.CreatePhoto(ctx, album.ID, model.PhotoInput{Title: "t"}, blob)
		assert.ErrorIs(t, err, ErrValidation)
		assert.EqualError(t, err, "Image file is required")
	}

	assert.Empty(t, h.store.Uploads())
	count, err := h.repos.Photos.CountByAlbum(ctx, album.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreatePhotoValidatesBeforeUpload(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	album := h.album(t, "Labels")

	_, err := h.m.CreatePhoto(ctx, album.ID, model.PhotoInput{Title: "t", Label: "Gallery"}, image(8))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = h.m.CreatePhoto(ctx, album.ID, model.PhotoInput{Title: "  "}, image(8))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = h.m.CreatePhoto(ctx, "missing-album", model.PhotoInput{Title: "t"}, image(8))
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Empty(t, h.store.Uploads())
}

func TestCreatePhotoUploadFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	album := h.album(t, "Broken")
	h.store.UploadErr = errors.New("quota exceeded")

	_, err := h.m.CreatePhoto(ctx, album.ID, model.PhotoInput{Title: "t"}, image(8))
	assert.ErrorIs(t, err, ErrUpstreamAsset)
	assert.Contains(t, err.Error(), "quota exceeded")

	photos, err := h.m.ListPhotosInAlbum(ctx, album.ID)
	require.NoError(t, err)
	assert.Empty(t, photos)
}

type failingPhotos struct {
	repository.PhotoRepository
	createErr error
	staleZero bool
}

func (f *failingPhotos) Create(ctx context.Context, p *model.Photo) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.PhotoRepository.Create(ctx, p)
}

func (f *failingPhotos) CountByAlbum(ctx context.Context, albumID string) (int64, error) {
	if f.staleZero {
		return 0, nil
	}
	return f.PhotoRepository.CountByAlbum(ctx, albumID)
}

func TestCreatePhotoPersistFailureLeavesSweepableOrphan(t *testing.T) {
	ctx := context.Background()
	photos := &failingPhotos{createErr: errors.New("disk full")}
	h := newHarness(t, func(s *repository.Set, _ *Options) {
		photos.PhotoRepository = s.Photos
		s.Photos = photos
	})
	album := h.album(t, "Orphans")

	_, err := h.m.CreatePhoto(ctx, album.ID, model.PhotoInput{Title: "t"}, image(8))
	assert.ErrorIs(t, err, ErrStore)

	uploads, err := h.store.List(ctx, storage.KindImage)
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	orphanID := uploads[0].AssetID

	report, err := h.m.SweepOrphans(ctx, storage.KindImage, time.Hour, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TooRecent)
	assert.True(t, h.store.Has(orphanID))

	h.clock.Advance(2 * time.Hour)
	report, err = h.m.SweepOrphans(ctx, storage.KindImage, time.Hour, false)
	require.NoError(t, err)
	assert.Equal(t, []string{orphanID}, report.Destroyed)
	assert.False(t, h.store.Has(orphanID))
}

func TestDeletePhotoTwice(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	album := h.album(t, "Twice")
	photo, err := h.m.CreatePhoto(ctx, album.ID, model.PhotoInput{Title: "t"}, image(8))
	require.NoError(t, err)

	deleted, err := h.m.DeletePhoto(ctx, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, photo.ID, deleted.ID)

	_, err = h.m.GetPhoto(ctx, photo.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = h.m.DeletePhoto(ctx, photo.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, h.store.Destroys(), 1)
}

func TestDeletePhotoAssetAlreadyAbsent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	album := h.album(t, "Absent")
	photo, err := h.m.CreatePhoto(ctx, album.ID, model.PhotoInput{Title: "t"}, image(8))
	require.NoError(t, err)

	status, err := h.store.Destroy(ctx, photo.AssetID, storage.KindImage)
	require.NoError(t, err)
	require.Equal(t, storage.StatusOK, status)

	_, err = h.m.DeletePhoto(ctx, photo.ID)
	require.NoError(t, err)
	_, err = h.m.GetPhoto(ctx, photo.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePhotoUpstreamFailureKeepsRecord(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	album := h.album(t, "Flaky")
	photo, err := h.m.CreatePhoto(ctx, album.ID, model.PhotoInput{Title: "t"}, image(8))
	require.NoError(t, err)

	h.store.DestroyErr = errors.New("401 unauthorized")
	_, err = h.m.DeletePhoto(ctx, photo.ID)
	assert.ErrorIs(t, err, ErrUpstreamAsset)

	kept, err := h.m.GetPhoto(ctx, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, photo.AssetID, kept.AssetID)

	h.store.DestroyErr = nil
	_, err = h.m.DeletePhoto(ctx, photo.ID)
	require.NoError(t, err)
}

type stallingStore struct {
	*storage.MemoryStore
}

func (s stallingStore) Destroy(ctx context.Context, assetID string, kind storage.ResourceKind) (storage.DestroyStatus, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestDeletePhotoTimeoutKeepsRecord(t *testing.T) {
	ctx := context.Background()
	clock := NewFakeClock(epoch)
	mem := storage.NewMemoryStore("", "http://assets.test")
	repos := repository.NewMemorySet()
	m := NewManager(repos, stallingStore{mem}, Options{Clock: clock, AssetTimeout: 20 * time.Millisecond})

	album, err := m.CreateAlbum(ctx, model.AlbumInput{Title: "a", Description: "d", Channel: "c", Category: "k"})
	require.NoError(t, err)
	photo, err := m.CreatePhoto(ctx, album.ID, model.PhotoInput{Title: "t"}, image(8))
	require.NoError(t, err)

	_, err = m.DeletePhoto(ctx, photo.ID)
	assert.ErrorIs(t, err, ErrUpstreamAsset)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = m.GetPhoto(ctx, photo.ID)
	assert.NoError(t, err)
}

func TestListingsNewestFirst(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	a1 := h.album(t, "first")
	h.clock.Advance(time.Minute)
	a2 := h.album(t, "second")

	var ids []string
	for _, title := range []string{"t1", "t2", "t3"} {
		h.clock.Advance(time.Minute)
		p, err := h.m.CreatePhoto(ctx, a1.ID, model.PhotoInput{Title: title}, image(4))
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	photos, err := h.m.ListPhotosInAlbum(ctx, a1.ID)
	require.NoError(t, err)
	require.Len(t, photos, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{photos[0].ID, photos[1].ID, photos[2].ID})

	albums, err := h.m.ListAlbums(ctx)
	require.NoError(t, err)
	require.Len(t, albums, 2)
	assert.Equal(t, a2.ID, albums[0].ID)
	assert.Equal(t, a1.ID, albums[1].ID)
}

func TestDeleteAlbum(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	assert.ErrorIs(t, h.m.DeleteAlbum(ctx, "nope"), ErrNotFound)

	album := h.album(t, "Short lived")
	require.NoError(t, h.m.DeleteAlbum(ctx, album.ID))
	_, err := h.m.GetAlbum(ctx, album.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAlbumConditionalDeleteCatchesLatePhoto(t *testing.T) {
	ctx := context.Background()
	photos := &failingPhotos{}
	h := newHarness(t, func(s *repository.Set, _ *Options) {
		photos.PhotoRepository = s.Photos
		s.Photos = photos
	})
	album := h.album(t, "Racy")
	_, err := h.m.CreatePhoto(ctx, album.ID, model.PhotoInput{Title: "late"}, image(4))
	require.NoError(t, err)

	// the count sees an empty album, the conditional delete does not
	photos.staleZero = true
	err = h.m.DeleteAlbum(ctx, album.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = h.m.GetAlbum(ctx, album.ID)
	assert.NoError(t, err)
}

func TestCreateAlbumValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.m.CreateAlbum(ctx, model.AlbumInput{Description: "d", Channel: "c", Category: "k"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "title is required")

	_, err = h.m.CreateAlbum(ctx, model.AlbumInput{Title: "t", Channel: "c", Category: "k"})
	assert.ErrorIs(t, err, ErrValidation)

	date := epoch.Add(-48 * time.Hour)
	album, err := h.m.CreateAlbum(ctx, model.AlbumInput{Title: "t", Description: "d", Channel: "c", Category: "k", Date: &date})
	require.NoError(t, err)
	assert.Equal(t, date, album.Date)
	assert.NotNil(t, album.Contributors)
}

func TestUpdateAlbum(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	album := h.album(t, "Before")

	blank := "  "
	_, err := h.m.UpdateAlbum(ctx, album.ID, model.AlbumPatch{Title: &blank})
	assert.ErrorIs(t, err, ErrValidation)

	title := " After "
	contributors := model.StringList{"x"}
	updated, err := h.m.UpdateAlbum(ctx, album.ID, model.AlbumPatch{Title: &title, Contributors: &contributors})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Title)
	assert.Equal(t, album.Channel, updated.Channel)
	assert.Equal(t, model.StringList{"x"}, updated.Contributors)

	_, err = h.m.UpdateAlbum(ctx, "missing", model.AlbumPatch{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)

	same, err := h.m.UpdateAlbum(ctx, album.ID, model.AlbumPatch{})
	require.NoError(t, err)
	assert.Equal(t, "After", same.Title)
}

func TestUpdatePhoto(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	album := h.album(t, "Patch")
	photo, err := h.m.CreatePhoto(ctx, album.ID, model.PhotoInput{Title: "old"}, image(4))
	require.NoError(t, err)

	bad := "Gallery"
	_, err = h.m.UpdatePhoto(ctx, photo.ID, model.PhotoPatch{Label: &bad})
	assert.ErrorIs(t, err, ErrValidation)

	title, label := "new", model.LabelPhotoAlbum
	updated, err := h.m.UpdatePhoto(ctx, photo.ID, model.PhotoPatch{Title: &title, Label: &label})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, model.LabelPhotoAlbum, updated.Label)
	assert.Equal(t, photo.AssetID, updated.AssetID)
	assert.Equal(t, photo.Link, updated.Link)

	_, err = h.m.UpdatePhoto(ctx, "missing", model.PhotoPatch{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListCacheInvalidatedByMutations(t *testing.T) {
	ctx := context.Background()
	lc := cache.NewLRUListCache(16, time.Hour)
	h := newHarness(t, func(_ *repository.Set, o *Options) { o.Cache = lc })

	album := h.album(t, "Cached")
	photos, err := h.m.ListPhotosInAlbum(ctx, album.ID)
	require.NoError(t, err)
	assert.Empty(t, photos)

	photo, err := h.m.CreatePhoto(ctx, album.ID, model.PhotoInput{Title: "p"}, image(4))
	require.NoError(t, err)
	photos, err = h.m.ListPhotosInAlbum(ctx, album.ID)
	require.NoError(t, err)
	require.Len(t, photos, 1)

	_, err = h.m.DeletePhoto(ctx, photo.ID)
	require.NoError(t, err)
	photos, err = h.m.ListPhotosInAlbum(ctx, album.ID)
	require.NoError(t, err)
	assert.Empty(t, photos)

	albums, err := h.m.ListAlbums(ctx)
	require.NoError(t, err)
	require.Len(t, albums, 1)
	require.NoError(t, h.m.DeleteAlbum(ctx, album.ID))
	albums, err = h.m.ListAlbums(ctx)
	require.NoError(t, err)
	assert.Empty(t, albums)
}

type fixedProber struct {
	duration float64
	err      error
}

func (p fixedProber) ProbeDuration(context.Context, []byte) (float64, error) {
	return p.duration, p.err
}

func TestVideoLifecycleWithoutOwnership(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, func(_ *repository.Set, o *Options) { o.Prober = fixedProber{duration: 42.5} })

	res, err := h.m.UploadVideoAsset(ctx, &Blob{Filename: "clip.mp4", Data: []byte("mp4")})
	require.NoError(t, err)
	assert.Equal(t, 42.5, res.Duration)

	video, err := h.m.CreateVideo(ctx, model.VideoInput{Title: "Clip", EmbedLink: res.URL, AssetID: res.AssetID})
	require.NoError(t, err)
	h.clock.Advance(time.Minute)
	later, err := h.m.CreateVideo(ctx, model.VideoInput{Title: "External", EmbedLink: "https://youtube.com/embed/x"})
	require.NoError(t, err)

	videos, err := h.m.ListVideos(ctx)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, later.ID, videos[0].ID)

	desc := "edited"
	updated, err := h.m.UpdateVideo(ctx, video.ID, model.VideoPatch{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Description)

	require.NoError(t, h.m.DeleteVideo(ctx, video.ID))
	assert.True(t, h.store.Has(res.AssetID))
	assert.Empty(t, h.store.Destroys())

	_, err = h.m.GetVideo(ctx, video.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, h.m.DeleteVideo(ctx, video.ID), ErrNotFound)
}

func TestVideoOwningAssetCascades(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, func(_ *repository.Set, o *Options) { o.Policy = AssetPolicy{VideoOwnsAsset: true} })

	res, err := h.m.UploadVideoAsset(ctx, &Blob{Filename: "clip.mp4", Data: []byte("mp4")})
	require.NoError(t, err)
	video, err := h.m.CreateVideo(ctx, model.VideoInput{Title: "Clip", EmbedLink: res.URL, AssetID: res.AssetID})
	require.NoError(t, err)

	h.store.DestroyErr = errors.New("offline")
	assert.ErrorIs(t, h.m.DeleteVideo(ctx, video.ID), ErrUpstreamAsset)
	_, err = h.m.GetVideo(ctx, video.ID)
	require.NoError(t, err)

	h.store.DestroyErr = nil
	require.NoError(t, h.m.DeleteVideo(ctx, video.ID))
	assert.False(t, h.store.Has(res.AssetID))
}

func TestUploadVideoAssetProbeFailure(t *testing.T) {
	h := newHarness(t, func(_ *repository.Set, o *Options) { o.Prober = fixedProber{err: errors.New("no ffprobe")} })

	res, err := h.m.UploadVideoAsset(context.Background(), &Blob{Filename: "clip.mp4", Data: []byte("mp4")})
	require.NoError(t, err)
	assert.Zero(t, res.Duration)

	_, err = h.m.UploadVideoAsset(context.Background(), nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRawAssetOperations(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.m.UploadAsset(ctx, storage.KindImage, &Blob{})
	assert.ErrorIs(t, err, ErrValidation)

	res, err := h.m.UploadAsset(ctx, storage.KindImage, image(16))
	require.NoError(t, err)

	info, err := h.m.InspectAsset(ctx, storage.KindImage, res.AssetID)
	require.NoError(t, err)
	assert.Equal(t, int64(16), info.Size)

	_, err = h.m.InspectAsset(ctx, storage.KindImage, "media/image/missing.jpg")
	assert.ErrorIs(t, err, ErrNotFound)

	status, err := h.m.DestroyAsset(ctx, storage.KindImage, res.AssetID)
	require.NoError(t, err)
	assert.Equal(t, storage.StatusOK, status)

	status, err = h.m.DestroyAsset(ctx, storage.KindImage, res.AssetID)
	require.NoError(t, err)
	assert.Equal(t, storage.StatusNotFound, status)
}

func TestDestroyAssetRefusesReferencedAsset(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	album := h.album(t, "Guarded")
	photo, err := h.m.CreatePhoto(ctx, album.ID, model.PhotoInput{Title: "p"}, image(4))
	require.NoError(t, err)

	_, err = h.m.DestroyAsset(ctx, storage.KindImage, photo.AssetID)
	assert.ErrorIs(t, err, ErrConflict)
	assert.True(t, h.store.Has(photo.AssetID))
}

func TestSweepOrphansDryRun(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	album := h.album(t, "Sweep")

	photo, err := h.m.CreatePhoto(ctx, album.ID, model.PhotoInput{Title: "kept"}, image(4))
	require.NoError(t, err)
	stray, err := h.store.Upload(ctx, bytes.NewReader([]byte("stray")), 5, storage.UploadOptions{Kind: storage.KindImage})
	require.NoError(t, err)

	h.clock.Advance(48 * time.Hour)
	fresh, err := h.store.Upload(ctx, bytes.NewReader([]byte("fresh")), 5, storage.UploadOptions{Kind: storage.KindImage})
	require.NoError(t, err)

	report, err := h.m.SweepOrphans(ctx, storage.KindImage, 24*time.Hour, true)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 1, report.Referenced)
	assert.Equal(t, 1, report.TooRecent)
	require.Len(t, report.Orphans, 1)
	assert.Equal(t, stray.AssetID, report.Orphans[0].AssetID)
	assert.Empty(t, report.Destroyed)

	assert.True(t, h.store.Has(stray.AssetID))
	assert.True(t, h.store.Has(fresh.AssetID))
	assert.True(t, h.store.Has(photo.AssetID))
}

type brokenLookup struct {
	repository.PhotoRepository
}

func (brokenLookup) ExistsByAssetID(context.Context, string) (bool, error) {
	return false, io.ErrUnexpectedEOF
}

func TestSweepOrphansAbortsWhenReferencesUnknown(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, func(s *repository.Set, _ *Options) { s.Photos = brokenLookup{s.Photos} })
	stray, err := h.store.Upload(ctx, bytes.NewReader([]byte("stray")), 5, storage.UploadOptions{Kind: storage.KindImage})
	require.NoError(t, err)
	h.clock.Advance(48 * time.Hour)

	_, err = h.m.SweepOrphans(ctx, storage.KindImage, time.Hour, false)
	assert.ErrorIs(t, err, ErrStore)
	assert.True(t, h.store.Has(stray.AssetID))
}

func TestAssetPolicy(t *testing.T) {
	assert.True(t, AssetPolicy{}.OwnsRemoteAsset(EntityPhoto))
	assert.False(t, AssetPolicy{}.OwnsRemoteAsset(EntityVideo))
	assert.True(t, AssetPolicy{VideoOwnsAsset: true}.OwnsRemoteAsset(EntityVideo))
	assert.False(t, AssetPolicy{VideoOwnsAsset: true}.OwnsRemoteAsset(EntityAlbum))
}

func TestErrorMatching(t *testing.T) {
	cause := errors.New("connection reset")
	err := upstream("failed to delete remote asset", cause)
	assert.ErrorIs(t, err, ErrUpstreamAsset)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrStore)
	assert.Equal(t, "failed to delete remote asset: connection reset", err.Error())
}

func TestSweepKeepsAssetEmbeddedByVideo(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	res, err := h.m.UploadVideoAsset(ctx, &Blob{Filename: "clip.mp4", Data: []byte("mp4")})
	require.NoError(t, err)
	video, err := h.m.CreateVideo(ctx, model.VideoInput{Title: "Linked", EmbedLink: res.URL})
	require.NoError(t, err)
	assert.Equal(t, res.AssetID, video.AssetID)

	// records written before asset ids were derived carry only the link
	legacy, err := h.store.Upload(ctx, bytes.NewReader([]byte("old")), 3, storage.UploadOptions{Kind: storage.KindVideo})
	require.NoError(t, err)
	require.NoError(t, h.repos.Videos.Create(ctx, &model.Video{Title: "Legacy", EmbedLink: legacy.URL, Date: epoch}))

	h.clock.Advance(48 * time.Hour)
	report, err := h.m.SweepOrphans(ctx, storage.KindVideo, 24*time.Hour, false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Referenced)
	assert.Empty(t, report.Destroyed)
	assert.True(t, h.store.Has(res.AssetID))
	assert.True(t, h.store.Has(legacy.AssetID))

	_, err = h.m.DestroyAsset(ctx, storage.KindVideo, legacy.AssetID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateVideoClaimsAssetOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, func(_ *repository.Set, o *Options) { o.Policy = AssetPolicy{VideoOwnsAsset: true} })

	res, err := h.m.UploadVideoAsset(ctx, &Blob{Filename: "clip.mp4", Data: []byte("mp4")})
	require.NoError(t, err)

	_, err = h.m.CreateVideo(ctx, model.VideoInput{Title: "Ghost", AssetID: "media/video/missing.mp4"})
	assert.ErrorIs(t, err, ErrValidation)

	first, err := h.m.CreateVideo(ctx, model.VideoInput{Title: "First", AssetID: res.AssetID})
	require.NoError(t, err)
	assert.Equal(t, res.URL, first.EmbedLink)

	_, err = h.m.CreateVideo(ctx, model.VideoInput{Title: "Second", AssetID: res.AssetID})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = h.m.CreateVideo(ctx, model.VideoInput{Title: "Third", EmbedLink: res.URL})
	assert.ErrorIs(t, err, ErrConflict)

	videos, err := h.m.ListVideos(ctx)
	require.NoError(t, err)
	assert.Len(t, videos, 1)
	assert.True(t, h.store.Has(res.AssetID))
}

// interleavingCache runs onSet once, between the listing load and the write
// of its result.
type interleavingCache struct {
	cache.ListCache
	onSet func()
}

func (c *interleavingCache) Set(ctx context.Context, key string, value interface{}) error {
	if fn := c.onSet; fn != nil {
		c.onSet = nil
		fn()
	}
	return c.ListCache.Set(ctx, key, value)
}

func TestListingLoadedBeforeConcurrentWriteIsNotCached(t *testing.T) {
	ctx := context.Background()
	ic := &interleavingCache{ListCache: cache.NewLRUListCache(16, time.Hour)}
	h := newHarness(t, func(_ *repository.Set, o *Options) { o.Cache = ic })
	album := h.album(t, "Racy")

	var created *model.Photo
	ic.onSet = func() {
		var err error
		created, err = h.m.CreatePhoto(ctx, album.ID, model.PhotoInput{Title: "late"}, image(4))
		require.NoError(t, err)
	}

	photos, err := h.m.ListPhotosInAlbum(ctx, album.ID)
	require.NoError(t, err)
	assert.Empty(t, photos)
	require.NotNil(t, created)

	for i := 0; i < 2; i++ {
		photos, err = h.m.ListPhotosInAlbum(ctx, album.ID)
		require.NoError(t, err)
		require.Len(t, photos, 1)
		assert.Equal(t, created.ID, photos[0].ID)
	}
}

func TestUpdatesStampManagerClock(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	album := h.album(t, "Stamped")
	photo, err := h.m.CreatePhoto(ctx, album.ID, model.PhotoInput{Title: "p"}, image(4))
	require.NoError(t, err)
	video, err := h.m.CreateVideo(ctx, model.VideoInput{Title: "v", EmbedLink: "https://youtube.com/embed/v"})
	require.NoError(t, err)

	h.clock.Advance(3 * time.Hour)
	want := epoch.Add(3 * time.Hour)
	title := "renamed"

	a, err := h.m.UpdateAlbum(ctx, album.ID, model.AlbumPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, want, a.UpdatedAt)

	p, err := h.m.UpdatePhoto(ctx, photo.ID, model.PhotoPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, want, p.UpdatedAt)

	v, err := h.m.UpdateVideo(ctx, video.ID, model.VideoPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, want, v.UpdatedAt)
}
