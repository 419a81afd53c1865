package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"webrag/internal/changes"
	"webrag/internal/digest"
	"webrag/internal/domain"
	"webrag/internal/metrics"
)

// Report summarizes one update run.
type Report struct {
	Counts  map[changes.Status]int
	Chunks  int
	Tracked int
}

// Updater re-indexes only the pages that changed since the last run.
type Updater struct {
	snapshots domain.SnapshotStore
	store     domain.VectorStore
	indexer   *Indexer
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

func NewUpdater(snapshots domain.SnapshotStore, store domain.VectorStore, indexer *Indexer, logger *zap.Logger, m *metrics.Metrics) *Updater {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Updater{snapshots: snapshots, store: store, indexer: indexer, logger: logger, metrics: m}
}

// Run classifies every page against the stored snapshot, deletes the vectors
// of updated pages, indexes new and updated pages, then replaces the
// snapshot with one entry per page of this crawl. Unchanged pages carry
// their previous record forward. Pages missing from the
// crawl drop out of the snapshot; their vectors are kept. On error the
// stored snapshot is left as it was.
func (u *Updater) Run(ctx context.Context, pages []domain.Document) (Report, error) {
	previous, err := u.snapshots.Load(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("loading snapshot: %w", err)
	}
	report := Report{Counts: make(map[changes.Status]int)}
	next := make(domain.Snapshot, len(pages))
	var toIndex []domain.Document
	for _, page := range pages {
		url := page.Source()
		hash := digest.Content(page.Content)
		status := changes.DetectChange(url, page.Lastmod, hash, previous)
		report.Counts[status]++
		u.metrics.PageClassified(string(status))
		u.logger.Info("page classified", zap.String("url", url), zap.String("status", string(status)))

		if status == changes.StatusUpdated {
			if err := u.store.Delete(ctx, map[string]string{domain.MetaURL: url}); err != nil {
				return report, fmt.Errorf("deleting vectors of %s: %w", url, err)
			}
		}
		if status.Actionable() {
			toIndex = append(toIndex, page)
		}
		if status == changes.StatusUnchanged {
			// Content was not re-indexed; the record must keep describing
			// what the store holds.
			next[url] = previous[url]
			continue
		}
		next[url] = domain.ChangeRecord{Lastmod: page.Lastmod, Hash: hash}
	}

	if len(toIndex) > 0 {
		n, err := u.indexer.Index(ctx, toIndex)
		if err != nil {
			return report, fmt.Errorf("indexing changed pages: %w", err)
		}
		report.Chunks = n
	}
	if err := u.snapshots.Save(ctx, next); err != nil {
		return report, fmt.Errorf("saving snapshot: %w", err)
	}
	report.Tracked = len(next)
	u.logger.Info("update complete",
		zap.Int("new", report.Counts[changes.StatusNew]),
		zap.Int("updated", report.Counts[changes.StatusUpdated]),
		zap.Int("metadata_only", report.Counts[changes.StatusMetadataOnly]),
		zap.Int("unchanged", report.Counts[changes.StatusUnchanged]),
		zap.Int("chunks", report.Chunks))
	return report, nil
}
