package server

import (
	"net/http"

	"mediahub/storage"

	"github.com/gorilla/mux"
)

func assetKind(w http.ResponseWriter, r *http.Request) (storage.ResourceKind, bool) {
	kind, err := storage.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return kind, true
}

// UploadAssetHandler 仅上传文件到资源存储，不创建记录
func (h *APIHandler) UploadAssetHandler(w http.ResponseWriter, r *http.Request) {
	kind, ok := assetKind(w, r)
	if !ok {
		return
	}
	blob, status, err := h.readUpload(w, r, "file")
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	res, err := h.catalog.UploadAsset(r.Context(), kind, blob)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// InspectAssetHandler 查询资源元数据
func (h *APIHandler) InspectAssetHandler(w http.ResponseWriter, r *http.Request) {
	kind, ok := assetKind(w, r)
	if !ok {
		return
	}
	info, err := h.catalog.InspectAsset(r.Context(), kind, mux.Vars(r)["assetId"])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// DestroyAssetHandler 删除未被引用的资源
func (h *APIHandler) DestroyAssetHandler(w http.ResponseWriter, r *http.Request) {
	kind, ok := assetKind(w, r)
	if !ok {
		return
	}
	status, err := h.catalog.DestroyAsset(r.Context(), kind, mux.Vars(r)["assetId"])
	if err != nil {
		fail(w, r, err)
		return
	}
	if status == storage.StatusNotFound {
		writeError(w, http.StatusNotFound, "Asset not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Asset deleted",
		"result":  status,
	})
}
