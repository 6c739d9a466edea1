package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"mediahub/server"
	"mediahub/storage"

	"github.com/spf13/cobra"
)

var (
	assetKind      string
	assetStats     bool
	sweepOlderThan time.Duration
	sweepDryRun    bool
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "资源存储管理",
	Long:  `查看和管理远程资源存储中的文件：列出文件、查看统计信息、查看单个资源、删除未引用的资源以及清理孤立资源。`,
}

var assetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出某类资源",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := storage.ParseKind(assetKind)
		if err != nil {
			return err
		}
		return withBackends(cmd.Context(), func(b *server.Backends) error {
			assets, err := b.Catalog.ListAssets(cmd.Context(), kind)
			if err != nil {
				return err
			}
			if assetStats {
				printStats(storage.Summarize(assets))
				return nil
			}
			for _, a := range assets {
				fmt.Printf("%-70s %10s  %s\n", a.AssetID, storage.FormatSize(a.Size), a.LastModified.Format(time.RFC3339))
			}
			fmt.Printf("\n共 %d 个文件\n", len(assets))
			return nil
		})
	},
}

var assetsInspectCmd = &cobra.Command{
	Use:   "inspect <kind> <assetId>",
	Short: "查看资源元数据",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := storage.ParseKind(args[0])
		if err != nil {
			return err
		}
		return withBackends(cmd.Context(), func(b *server.Backends) error {
			info, err := b.Catalog.InspectAsset(cmd.Context(), kind, args[1])
			if err != nil {
				return err
			}
			return printJSON(info)
		})
	},
}

var assetsDeleteCmd = &cobra.Command{
	Use:   "delete <kind> <assetId>",
	Short: "删除未被任何记录引用的资源",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := storage.ParseKind(args[0])
		if err != nil {
			return err
		}
		return withBackends(cmd.Context(), func(b *server.Backends) error {
			status, err := b.Catalog.DestroyAsset(cmd.Context(), kind, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", args[1], status)
			return nil
		})
	},
}

var assetsSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "清理没有记录引用的孤立资源",
	Long:  `列出某类资源中没有任何照片或视频记录引用、且早于宽限期的资源并删除。使用 --dry-run 仅报告不删除。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := storage.ParseKind(assetKind)
		if err != nil {
			return err
		}
		return withBackends(cmd.Context(), func(b *server.Backends) error {
			report, err := b.Catalog.SweepOrphans(cmd.Context(), kind, sweepOlderThan, sweepDryRun)
			if err != nil {
				return err
			}
			return printJSON(report)
		})
	},
}

func withBackends(ctx context.Context, fn func(*server.Backends) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := server.Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close(ctx)
	return fn(b)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printStats 打印资源统计信息
func printStats(stats *storage.BucketStats) {
	fmt.Printf("总文件数: %d\n", stats.TotalObjects)
	fmt.Printf("总大小: %s\n", storage.FormatSize(stats.TotalSize))
	if !stats.LastModified.IsZero() {
		fmt.Printf("最后修改时间: %s\n", stats.LastModified.Format(time.RFC3339))
	}
	fmt.Println("\n按文件夹统计:")
	for _, folder := range stats.Folders() {
		fmt.Printf("  %-50s %s\n", folder+"/", storage.FormatSize(stats.FolderSizes[folder]))
	}
}

func init() {
	assetsListCmd.Flags().StringVarP(&assetKind, "kind", "k", "image", "资源类型 (image, video)")
	assetsListCmd.Flags().BoolVarP(&assetStats, "stats", "s", false, "显示统计信息")

	assetsSweepCmd.Flags().StringVarP(&assetKind, "kind", "k", "image", "资源类型 (image, video)")
	assetsSweepCmd.Flags().DurationVar(&sweepOlderThan, "older-than", 24*time.Hour, "宽限期，更新的资源不会被清理")
	assetsSweepCmd.Flags().BoolVar(&sweepDryRun, "dry-run", false, "只报告孤立资源，不删除")

	assetsCmd.AddCommand(assetsListCmd, assetsInspectCmd, assetsDeleteCmd, assetsSweepCmd)
	rootCmd.AddCommand(assetsCmd)
}
