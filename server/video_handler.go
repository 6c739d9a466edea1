package server

import (
	"net/http"

	"mediahub/model"

	"github.com/gorilla/mux"
)

// ListVideosHandler 获取全部视频，按日期倒序
func (h *APIHandler) ListVideosHandler(w http.ResponseWriter, r *http.Request) {
	videos, err := h.catalog.ListVideos(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, videos)
}

// CreateVideoHandler 创建视频记录
func (h *APIHandler) CreateVideoHandler(w http.ResponseWriter, r *http.Request) {
	var in model.VideoInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	video, err := h.catalog.CreateVideo(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, video)
}

// UploadVideoHandler 上传视频文件，返回 url、assetId 和时长
func (h *APIHandler) UploadVideoHandler(w http.ResponseWriter, r *http.Request) {
	blob, status, err := h.readUpload(w, r, "video")
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	res, err := h.catalog.UploadVideoAsset(r.Context(), blob)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// GetVideoHandler 获取单个视频
func (h *APIHandler) GetVideoHandler(w http.ResponseWriter, r *http.Request) {
	video, err := h.catalog.GetVideo(r.Context(), mux.Vars(r)["videoId"])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, video)
}

// UpdateVideoHandler 部分更新视频
func (h *APIHandler) UpdateVideoHandler(w http.ResponseWriter, r *http.Request) {
	var patch model.VideoPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	video, err := h.catalog.UpdateVideo(r.Context(), mux.Vars(r)["videoId"], patch)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, video)
}

// DeleteVideoHandler 删除视频记录
func (h *APIHandler) DeleteVideoHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteVideo(r.Context(), mux.Vars(r)["videoId"]); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
