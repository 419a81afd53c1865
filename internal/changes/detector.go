// Package changes classifies crawled pages against the last indexed
// snapshot and persists that snapshot between runs.
package changes

import "webrag/internal/domain"

// Status is the outcome of comparing a page against the previous snapshot.
type Status string

const (
	StatusNew          Status = "NEW"
	StatusUpdated      Status = "UPDATED"
	StatusMetadataOnly Status = "METADATA_ONLY"
	StatusUnchanged    Status = "UNCHANGED"
)

// Actionable reports whether the page must be (re)indexed.
func (s Status) Actionable() bool {
	return s == StatusNew || s == StatusUpdated
}

// DetectChange classifies url given its current lastmod and content hash.
// The lastmod comparison wins: an unchanged timestamp is UNCHANGED even if
// the content hash moved.
func DetectChange(url, lastmod, hash string, previous domain.Snapshot) Status {
	old, ok := previous[url]
	switch {
	case !ok:
		return StatusNew
	case old.Lastmod == lastmod:
		return StatusUnchanged
	case old.Hash == hash:
		return StatusMetadataOnly
	default:
		return StatusUpdated
	}
}
