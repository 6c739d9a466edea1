package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"mediahub/config"
	"mediahub/logger"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter registers every endpoint on a gorilla/mux router. CORS wraps the
// router so preflight requests are answered before route matching.
func NewRouter(h *APIHandler, reg *prometheus.Registry) http.Handler {
	router := mux.NewRouter()
	metrics := newHTTPMetrics(reg)

	router.Use(metrics.observe)

	router.HandleFunc("/healthz", h.HealthHandler).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	// 相册
	api.HandleFunc("/albums", h.ListAlbumsHandler).Methods(http.MethodGet)
	api.HandleFunc("/albums", h.CreateAlbumHandler).Methods(http.MethodPost)
	api.HandleFunc("/albums/{albumId}", h.GetAlbumHandler).Methods(http.MethodGet)
	api.HandleFunc("/albums/{albumId}", h.UpdateAlbumHandler).Methods(http.MethodPatch)
	api.HandleFunc("/albums/{albumId}", h.DeleteAlbumHandler).Methods(http.MethodDelete)

	// 照片
	api.HandleFunc("/albums/{albumId}/photos", h.ListAlbumPhotosHandler).Methods(http.MethodGet)
	api.HandleFunc("/albums/{albumId}/photos", h.CreatePhotoHandler).Methods(http.MethodPost)
	api.HandleFunc("/photos/{photoId}", h.GetPhotoHandler).Methods(http.MethodGet)
	api.HandleFunc("/photos/{photoId}", h.UpdatePhotoHandler).Methods(http.MethodPatch)
	api.HandleFunc("/photos/{photoId}", h.DeletePhotoHandler).Methods(http.MethodDelete)

	// 视频
	api.HandleFunc("/videos", h.ListVideosHandler).Methods(http.MethodGet)
	api.HandleFunc("/videos", h.CreateVideoHandler).Methods(http.MethodPost)
	api.HandleFunc("/videos/upload", h.UploadVideoHandler).Methods(http.MethodPost)
	api.HandleFunc("/videos/{videoId}", h.GetVideoHandler).Methods(http.MethodGet)
	api.HandleFunc("/videos/{videoId}", h.UpdateVideoHandler).Methods(http.MethodPatch)
	api.HandleFunc("/videos/{videoId}", h.DeleteVideoHandler).Methods(http.MethodDelete)

	// 资源存储
	api.HandleFunc("/assets/{kind}", h.UploadAssetHandler).Methods(http.MethodPost)
	api.HandleFunc("/assets/{kind}/{assetId:.+}", h.InspectAssetHandler).Methods(http.MethodGet)
	api.HandleFunc("/assets/{kind}/{assetId:.+}", h.DestroyAssetHandler).Methods(http.MethodDelete)

	return corsMiddleware(router)
}

// Start builds the backends, serves HTTP and shuts down gracefully on
// SIGINT/SIGTERM.
func Start(cfg *config.Config) error {
	ctx := context.Background()
	backends, err := Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := backends.Close(context.Background()); err != nil {
			logger.Warn("Failed to close backends", logger.ErrorField(err))
		}
	}()

	handler := NewAPIHandler(backends.Catalog, cfg.MaxUploadBytes)

	// 设置服务器超时
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      NewRouter(handler, backends.Registry),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// 创建一个通道来接收操作系统信号
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting",
			logger.String("addr", cfg.HTTPAddr),
			logger.String("metadata", cfg.MetadataBackend),
			logger.String("assets", cfg.AssetBackend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 等待中断信号或启动失败
	select {
	case err, ok := <-serveErr:
		if ok {
			return err
		}
		return nil
	case <-stop:
	}
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// 优雅关闭服务器
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("Server stopped")
	return nil
}
