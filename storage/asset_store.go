package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ResourceKind selects how the remote store treats a blob.
type ResourceKind string

const (
	KindImage ResourceKind = "image"
	KindVideo ResourceKind = "video"
)

// ParseKind validates a resource kind taken from user input.
func ParseKind(s string) (ResourceKind, error) {
	switch ResourceKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindImage:
		return KindImage, nil
	case KindVideo:
		return KindVideo, nil
	}
	return "", fmt.Errorf("unsupported resource kind %q", s)
}

// DestroyStatus is the outcome of a destroy call that reached the store.
type DestroyStatus string

const (
	StatusOK       DestroyStatus = "ok"
	StatusNotFound DestroyStatus = "not found"
)

// ErrAssetNotFound is returned by Inspect when the asset does not exist.
var ErrAssetNotFound = errors.New("asset not found")

// UploadOptions describes a blob being uploaded.
type UploadOptions struct {
	Kind        ResourceKind
	Folder      string // optional sub folder below the kind prefix
	Filename    string // original file name, used for the extension only
	ContentType string
}

// UploadResult is what the store hands back after a successful upload.
type UploadResult struct {
	URL      string  `json:"url"`
	AssetID  string  `json:"assetId"`
	Size     int64   `json:"size"`
	Duration float64 `json:"duration,omitempty"` // seconds, videos only, informational
}

// AssetInfo is the metadata the store keeps for one asset.
type AssetInfo struct {
	AssetID      string       `json:"assetId"`
	URL          string       `json:"url"`
	Kind         ResourceKind `json:"kind"`
	Size         int64        `json:"size"`
	ContentType  string       `json:"contentType"`
	ETag         string       `json:"etag,omitempty"`
	LastModified time.Time    `json:"lastModified"`
}

// AssetStore is the remote media host contract.
type AssetStore interface {
	Upload(ctx context.Context, r io.Reader, size int64, opts UploadOptions) (*UploadResult, error)
	// Destroy reports StatusNotFound, not an error, when the asset is already gone.
	Destroy(ctx context.Context, assetID string, kind ResourceKind) (DestroyStatus, error)
	Inspect(ctx context.Context, assetID string, kind ResourceKind) (*AssetInfo, error)
	List(ctx context.Context, kind ResourceKind) ([]AssetInfo, error)
	// URL is the public address of assetID.
	URL(assetID string) string
	// AssetIDForURL maps a public URL back to the asset of kind it serves.
	AssetIDForURL(link string, kind ResourceKind) (string, bool)
}

// keyspace lays out object keys as <base>/<kind>/[<folder>/]<uuid><ext>.
type keyspace struct {
	base      string
	publicURL string
}

func newKeyspace(base, publicURL string) keyspace {
	return keyspace{
		base:      strings.Trim(base, "/"),
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (k keyspace) prefix(kind ResourceKind) string {
	if k.base == "" {
		return string(kind) + "/"
	}
	return k.base + "/" + string(kind) + "/"
}

func (k keyspace) newKey(opts UploadOptions) string {
	name := uuid.New().String() + safeExt(opts.Filename)
	folder := sanitizeFolder(opts.Folder)
	if folder == "" {
		return k.prefix(opts.Kind) + name
	}
	return k.prefix(opts.Kind) + folder + "/" + name
}

// owns reports whether assetID lives under the kind's prefix.
func (k keyspace) owns(assetID string, kind ResourceKind) bool {
	return strings.HasPrefix(assetID, k.prefix(kind)) && !strings.Contains(assetID, "..")
}

func (k keyspace) url(key string) string {
	return k.publicURL + "/" + key
}

// keyFor is the inverse of url, limited to keys of kind.
func (k keyspace) keyFor(link string, kind ResourceKind) (string, bool) {
	key, ok := strings.CutPrefix(strings.TrimSpace(link), k.publicURL+"/")
	if !ok || !k.owns(key, kind) {
		return "", false
	}
	return key, true
}

// safeExt keeps a short alphanumeric extension of the original file name.
func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 8 {
		return ""
	}
	for _, r := range ext[1:] {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return ""
		}
	}
	return ext
}

// sanitizeFolder maps every path segment onto [a-zA-Z0-9_-].
func sanitizeFolder(folder string) string {
	var parts []string
	for _, seg := range strings.Split(path.Clean("/"+folder), "/") {
		seg = strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
				return r
			}
			return '-'
		}, seg)
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return strings.Join(parts, "/")
}

// contentTypeFor falls back to the extension and then to octet-stream.
func contentTypeFor(opts UploadOptions) string {
	if opts.ContentType != "" {
		return opts.ContentType
	}
	if ct := mime.TypeByExtension(safeExt(opts.Filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
