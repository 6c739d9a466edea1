package server

import (
	"net/http"

	"mediahub/model"

	"github.com/gorilla/mux"
)

// ListAlbumPhotosHandler 获取相册内的照片，按日期倒序
func (h *APIHandler) ListAlbumPhotosHandler(w http.ResponseWriter, r *http.Request) {
	photos, err := h.catalog.ListPhotosInAlbum(r.Context(), mux.Vars(r)["albumId"])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, photos)
}

// CreatePhotoHandler 上传图片并在相册中创建照片
// multipart 字段: image (文件), title, label, contributors (逗号分隔)
func (h *APIHandler) CreatePhotoHandler(w http.ResponseWriter, r *http.Request) {
	blob, status, err := h.readUpload(w, r, "image")
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	photo, err := h.catalog.CreatePhoto(r.Context(), mux.Vars(r)["albumId"], model.PhotoInput{
		Title:        formValue(r, "title"),
		Label:        formValue(r, "label"),
		Contributors: model.ParseStringList(r.FormValue("contributors")),
	}, blob)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, photo)
}

// GetPhotoHandler 获取单张照片
func (h *APIHandler) GetPhotoHandler(w http.ResponseWriter, r *http.Request) {
	photo, err := h.catalog.GetPhoto(r.Context(), mux.Vars(r)["photoId"])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, photo)
}

// UpdatePhotoHandler 更新照片的标题、标签和贡献者
func (h *APIHandler) UpdatePhotoHandler(w http.ResponseWriter, r *http.Request) {
	var patch model.PhotoPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	photo, err := h.catalog.UpdatePhoto(r.Context(), mux.Vars(r)["photoId"], patch)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, photo)
}

// DeletePhotoHandler 删除远程图片后删除照片记录
func (h *APIHandler) DeletePhotoHandler(w http.ResponseWriter, r *http.Request) {
	photo, err := h.catalog.DeletePhoto(r.Context(), mux.Vars(r)["photoId"])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Photo deleted",
		"deletedPhoto": photo,
	})
}
