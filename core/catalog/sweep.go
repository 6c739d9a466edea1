package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"mediahub/logger"
	"mediahub/storage"

	"golang.org/x/sync/errgroup"
)

const sweepConcurrency = 8

// SweepReport summarises one orphan sweep.
type SweepReport struct {
	Kind       storage.ResourceKind `json:"kind"`
	DryRun     bool                 `json:"dryRun"`
	Scanned    int                  `json:"scanned"`
	Referenced int                  `json:"referenced"`
	TooRecent  int                  `json:"tooRecent"`
	Orphans    []storage.AssetInfo  `json:"orphans"`
	Destroyed  []string             `json:"destroyed"`
	Failed     map[string]string    `json:"failed,omitempty"`
}

// SweepOrphans finds assets of kind that no record references and, unless
// dryRun is set, destroys them. Assets younger than olderThan are skipped so
// an upload whose record is still being written is never removed. A failed
// reference lookup aborts the sweep before anything is destroyed.
func (m *Manager) SweepOrphans(ctx context.Context, kind storage.ResourceKind, olderThan time.Duration, dryRun bool) (*SweepReport, error) {
	assets, err := m.ListAssets(ctx, kind)
	if err != nil {
		return nil, err
	}

	report := &SweepReport{
		Kind:      kind,
		DryRun:    dryRun,
		Scanned:   len(assets),
		Orphans:   []storage.AssetInfo{},
		Destroyed: []string{},
	}
	cutoff := m.clock.Now().Add(-olderThan)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)
	for _, asset := range assets {
		asset := asset
		if asset.LastModified.After(cutoff) {
			report.TooRecent++
			continue
		}
		g.Go(func() error {
			referenced, err := m.assetReferenced(gctx, kind, asset.AssetID)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if referenced {
				report.Referenced++
			} else {
				report.Orphans = append(report.Orphans, asset)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(report.Orphans, func(i, j int) bool {
		return report.Orphans[i].AssetID < report.Orphans[j].AssetID
	})

	if dryRun {
		return report, nil
	}

	for _, orphan := range report.Orphans {
		status, err := m.DestroyAsset(ctx, kind, orphan.AssetID)
		if err != nil {
			if report.Failed == nil {
				report.Failed = map[string]string{}
			}
			report.Failed[orphan.AssetID] = err.Error()
			logger.Warn("Orphan destroy failed", logger.String("assetId", orphan.AssetID), logger.ErrorField(err))
			continue
		}
		if status == storage.StatusOK {
			report.Destroyed = append(report.Destroyed, orphan.AssetID)
		}
	}

	logger.Info("Orphan sweep finished",
		logger.String("kind", string(kind)),
		logger.Int("scanned", report.Scanned),
		logger.Int("orphans", len(report.Orphans)),
		logger.Int("destroyed", len(report.Destroyed)))
	return report, nil
}
