package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mediahub/core/catalog"
	"mediahub/model"
	"mediahub/repository"
	"mediahub/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server
	store *storage.MemoryStore
}

func newTestServer(t *testing.T, maxUpload int64) *testServer {
	t.Helper()
	store := storage.NewMemoryStore("media", "http://assets.test")
	m := catalog.NewManager(repository.NewMemorySet(), store, catalog.Options{})
	srv := httptest.NewServer(NewRouter(NewAPIHandler(m, maxUpload), prometheus.NewRegistry()))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *testServer) doJSON(t *testing.T, method, path string, v interface{}) *http.Response {
	t.Helper()
	var body io.Reader
	if v != nil {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	return s.do(t, method, path, body, "application/json")
}

func (s *testServer) upload(t *testing.T, path, field string, data []byte, fields map[string]string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if data != nil {
		fw, err := mw.CreateFormFile(field, "upload.jpg")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return s.do(t, http.MethodPost, path, &buf, mw.FormDataContentType())
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestAlbumPhotoScenario(t *testing.T) {
	s := newTestServer(t, 1<<20)

	resp := s.doJSON(t, http.MethodPost, "/api/albums", map[string]interface{}{
		"title":       "Spring Gala",
		"description": "...",
		"channel":     "Events",
		"category":    "Social",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	album := decode[model.Album](t, resp)

	resp = s.upload(t, "/api/albums/"+album.ID+"/photos", "image", bytes.Repeat([]byte("x"), 10*1024), map[string]string{
		"title":        "Opening",
		"contributors": "ana, ben",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	photo := decode[model.Photo](t, resp)
	assert.Equal(t, album.ID, photo.AlbumID)
	assert.Equal(t, model.StringList{"ana", "ben"}, photo.Contributors)
	require.Len(t, s.store.Uploads(), 1)
	assert.Equal(t, storage.KindImage, s.store.Uploads()[0].Kind)

	resp = s.do(t, http.MethodGet, "/api/albums/"+album.ID+"/photos", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.Photo](t, resp), 1)

	resp = s.do(t, http.MethodDelete, "/api/albums/"+album.ID, nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Cannot delete album with existing photos. Delete photos first.", decode[map[string]string](t, resp)["error"])

	resp = s.do(t, http.MethodDelete, "/api/photos/"+photo.ID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{photo.AssetID}, s.store.Destroys())

	resp = s.do(t, http.MethodGet, "/api/photos/"+photo.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/api/albums/"+album.ID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Album deleted successfully", decode[map[string]string](t, resp)["message"])

	resp = s.do(t, http.MethodGet, "/api/albums/"+album.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Album not found", decode[map[string]string](t, resp)["error"])
}

func TestCreatePhotoRequiresImage(t *testing.T) {
	s := newTestServer(t, 1<<20)
	resp := s.doJSON(t, http.MethodPost, "/api/albums", map[string]interface{}{
		"title": "a", "description": "d", "channel": "c", "category": "k",
	})
	album := decode[model.Album](t, resp)

	resp = s.upload(t, "/api/albums/"+album.ID+"/photos", "image", nil, map[string]string{"title": "t"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Image file is required", decode[map[string]string](t, resp)["error"])
	assert.Empty(t, s.store.Uploads())
}

func TestPatchPhotoRejectsAssetFields(t *testing.T) {
	s := newTestServer(t, 1<<20)
	resp := s.doJSON(t, http.MethodPost, "/api/albums", map[string]interface{}{
		"title": "a", "description": "d", "channel": "c", "category": "k",
	})
	album := decode[model.Album](t, resp)
	resp = s.upload(t, "/api/albums/"+album.ID+"/photos", "image", []byte("img"), map[string]string{"title": "t"})
	photo := decode[model.Photo](t, resp)

	resp = s.doJSON(t, http.MethodPatch, "/api/photos/"+photo.ID, map[string]string{"assetId": "other"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.doJSON(t, http.MethodPatch, "/api/photos/"+photo.ID, map[string]string{"title": "renamed", "label": "A&G"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[model.Photo](t, resp)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, photo.AssetID, updated.AssetID)

	resp = s.doJSON(t, http.MethodPatch, "/api/photos/"+photo.ID, map[string]string{"label": "Other"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestVideoEndpoints(t *testing.T) {
	s := newTestServer(t, 1<<20)

	resp := s.upload(t, "/api/videos/upload", "video", []byte("mp4-bytes"), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	res := decode[storage.UploadResult](t, resp)
	assert.NotEmpty(t, res.AssetID)
	assert.True(t, strings.HasPrefix(res.AssetID, "media/video/"))

	resp = s.doJSON(t, http.MethodPost, "/api/videos", map[string]interface{}{
		"title":         "Recap",
		"embedLink":     res.URL,
		"assetId":       res.AssetID,
		"collaborators": []string{"channel-1"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	video := decode[model.Video](t, resp)

	resp = s.doJSON(t, http.MethodPatch, "/api/videos/"+video.ID, map[string]string{"category": "Recaps"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Recaps", decode[model.Video](t, resp).Category)

	resp = s.do(t, http.MethodGet, "/api/videos", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.Video](t, resp), 1)

	resp = s.do(t, http.MethodDelete, "/api/videos/"+video.ID, nil, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.True(t, s.store.Has(res.AssetID))

	resp = s.do(t, http.MethodGet, "/api/videos/"+video.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAssetEndpoints(t *testing.T) {
	s := newTestServer(t, 1<<20)

	resp := s.upload(t, "/api/assets/gif", "file", []byte("x"), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.upload(t, "/api/assets/image", "file", []byte("png-bytes"), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	res := decode[storage.UploadResult](t, resp)

	resp = s.do(t, http.MethodGet, "/api/assets/image/"+res.AssetID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	info := decode[storage.AssetInfo](t, resp)
	assert.Equal(t, int64(9), info.Size)

	resp = s.do(t, http.MethodDelete, "/api/assets/image/"+res.AssetID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/api/assets/image/"+res.AssetID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/assets/image/"+res.AssetID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUploadTooLarge(t *testing.T) {
	s := newTestServer(t, 1024)
	resp := s.upload(t, "/api/assets/image", "file", bytes.Repeat([]byte("x"), 4096), nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Empty(t, s.store.Uploads())
}

func TestHealthMetricsAndCORS(t *testing.T) {
	s := newTestServer(t, 1<<20)

	resp := s.do(t, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp = s.do(t, http.MethodOptions, "/api/albums", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "PATCH")

	resp = s.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `mediahub_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(&catalog.Error{Kind: catalog.ErrNotFound}))
	assert.Equal(t, http.StatusBadRequest, statusFor(&catalog.Error{Kind: catalog.ErrValidation}))
	assert.Equal(t, http.StatusBadRequest, statusFor(&catalog.Error{Kind: catalog.ErrConflict}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(&catalog.Error{Kind: catalog.ErrUpstreamAsset}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(&catalog.Error{Kind: catalog.ErrStore}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}
