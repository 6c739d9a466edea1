package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer captures telemetry for asset store calls.
type Observer interface {
	RecordUpload(kind ResourceKind, duration time.Duration, sizeBytes int64, err error)
	RecordOperation(op string, kind ResourceKind, duration time.Duration, err error)
}

// PrometheusObserver exports asset store metrics to Prometheus.
type PrometheusObserver struct {
	duration    *prometheus.HistogramVec
	errors      *prometheus.CounterVec
	uploadBytes *prometheus.CounterVec
}

// NewPrometheusObserver registers the asset store metrics on reg.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "mediahub_assets"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of remote asset store calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "kind"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Count of failed remote asset store calls.",
		}, []string{"operation", "kind"}),
		uploadBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Cumulative payload size uploaded to the asset store.",
		}, []string{"kind"}),
	}

	var err error
	if o.duration, err = register(reg, o.duration); err != nil {
		return nil, err
	}
	if o.errors, err = register(reg, o.errors); err != nil {
		return nil, err
	}
	if o.uploadBytes, err = register(reg, o.uploadBytes); err != nil {
		return nil, err
	}
	return o, nil
}

// register returns the already registered collector when one exists, so two
// stores built in the same process share their series.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register asset store metric: %w", err)
	}
	return c, nil
}

func (o *PrometheusObserver) RecordUpload(kind ResourceKind, duration time.Duration, sizeBytes int64, err error) {
	if o == nil {
		return
	}
	o.RecordOperation("upload", kind, duration, err)
	if err == nil {
		o.uploadBytes.WithLabelValues(string(kind)).Add(float64(sizeBytes))
	}
}

func (o *PrometheusObserver) RecordOperation(op string, kind ResourceKind, duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues(op, string(kind)).Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues(op, string(kind)).Inc()
	}
}

type nopObserver struct{}

func (nopObserver) RecordUpload(ResourceKind, time.Duration, int64, error) {}

func (nopObserver) RecordOperation(string, ResourceKind, time.Duration, error) {}

// ObservedStore decorates an AssetStore with an Observer.
type ObservedStore struct {
	next     AssetStore
	observer Observer
	now      func() time.Time
}

// NewObservedStore wraps next; a nil observer records nothing.
func NewObservedStore(next AssetStore, observer Observer) *ObservedStore {
	if observer == nil {
		observer = nopObserver{}
	}
	return &ObservedStore{next: next, observer: observer, now: time.Now}
}

func (s *ObservedStore) Upload(ctx context.Context, r io.Reader, size int64, opts UploadOptions) (*UploadResult, error) {
	start := s.now()
	res, err := s.next.Upload(ctx, r, size, opts)
	var uploaded int64
	if res != nil {
		uploaded = res.Size
	}
	s.observer.RecordUpload(opts.Kind, s.now().Sub(start), uploaded, err)
	return res, err
}

func (s *ObservedStore) Destroy(ctx context.Context, assetID string, kind ResourceKind) (DestroyStatus, error) {
	start := s.now()
	status, err := s.next.Destroy(ctx, assetID, kind)
	s.observer.RecordOperation("destroy", kind, s.now().Sub(start), err)
	return status, err
}

func (s *ObservedStore) Inspect(ctx context.Context, assetID string, kind ResourceKind) (*AssetInfo, error) {
	start := s.now()
	info, err := s.next.Inspect(ctx, assetID, kind)
	// a missing asset is an answer, not a failure
	recorded := err
	if errors.Is(err, ErrAssetNotFound) {
		recorded = nil
	}
	s.observer.RecordOperation("inspect", kind, s.now().Sub(start), recorded)
	return info, err
}

func (s *ObservedStore) List(ctx context.Context, kind ResourceKind) ([]AssetInfo, error) {
	start := s.now()
	assets, err := s.next.List(ctx, kind)
	s.observer.RecordOperation("list", kind, s.now().Sub(start), err)
	return assets, err
}

func (s *ObservedStore) URL(assetID string) string {
	return s.next.URL(assetID)
}

func (s *ObservedStore) AssetIDForURL(link string, kind ResourceKind) (string, bool) {
	return s.next.AssetIDForURL(link, kind)
}
