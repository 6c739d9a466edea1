package storage

import (
	"fmt"
	"sort"
	"time"
)

// BucketStats 存储统计信息
type BucketStats struct {
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
	// 按文件夹（资源标识的目录部分）统计的大小
	FolderSizes map[string]int64
}

// Summarize 汇总一组资源的统计信息
func Summarize(assets []AssetInfo) *BucketStats {
	stats := &BucketStats{FolderSizes: map[string]int64{}}
	for _, a := range assets {
		stats.TotalObjects++
		stats.TotalSize += a.Size
		if a.LastModified.After(stats.LastModified) {
			stats.LastModified = a.LastModified
		}
		stats.FolderSizes[folderOf(a.AssetID)] += a.Size
	}
	return stats
}

// Folders returns folder names sorted by size, largest first.
func (s *BucketStats) Folders() []string {
	folders := make([]string, 0, len(s.FolderSizes))
	for f := range s.FolderSizes {
		folders = append(folders, f)
	}
	sort.Slice(folders, func(i, j int) bool {
		if s.FolderSizes[folders[i]] == s.FolderSizes[folders[j]] {
			return folders[i] < folders[j]
		}
		return s.FolderSizes[folders[i]] > s.FolderSizes[folders[j]]
	})
	return folders
}

func folderOf(assetID string) string {
	for i := len(assetID) - 1; i >= 0; i-- {
		if assetID[i] == '/' {
			return assetID[:i]
		}
	}
	return ""
}

// FormatSize 格式化文件大小
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
