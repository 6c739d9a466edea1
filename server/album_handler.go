package server

import (
	"net/http"

	"mediahub/model"

	"github.com/gorilla/mux"
)

// ListAlbumsHandler 获取全部相册，按日期倒序
func (h *APIHandler) ListAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	albums, err := h.catalog.ListAlbums(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, albums)
}

// CreateAlbumHandler 创建相册
func (h *APIHandler) CreateAlbumHandler(w http.ResponseWriter, r *http.Request) {
	var in model.AlbumInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	album, err := h.catalog.CreateAlbum(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, album)
}

// GetAlbumHandler 获取单个相册
func (h *APIHandler) GetAlbumHandler(w http.ResponseWriter, r *http.Request) {
	album, err := h.catalog.GetAlbum(r.Context(), mux.Vars(r)["albumId"])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}

// UpdateAlbumHandler 部分更新相册
func (h *APIHandler) UpdateAlbumHandler(w http.ResponseWriter, r *http.Request) {
	var patch model.AlbumPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	album, err := h.catalog.UpdateAlbum(r.Context(), mux.Vars(r)["albumId"], patch)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}

// DeleteAlbumHandler 删除相册，相册内仍有照片时拒绝
func (h *APIHandler) DeleteAlbumHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteAlbum(r.Context(), mux.Vars(r)["albumId"]); err != nil {
		fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Album deleted successfully")
}
