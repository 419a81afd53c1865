package changes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"webrag/internal/domain"
)

func TestDetectChange(t *testing.T) {
	prev := domain.Snapshot{
		"https://u/a": {Lastmod: "2024-01-01", Hash: "h1"},
		"https://u/b": {Lastmod: "", Hash: "h2"},
	}
	tests := []struct {
		name    string
		url     string
		lastmod string
		hash    string
		want    Status
	}{
		{"unseen url", "https://u/new", "2024-01-01", "h1", StatusNew},
		{"unseen url empty values", "https://u/new", "", "", StatusNew},
		{"same lastmod and hash", "https://u/a", "2024-01-01", "h1", StatusUnchanged},
		{"same lastmod new hash", "https://u/a", "2024-01-01", "h9", StatusUnchanged},
		{"new lastmod same hash", "https://u/a", "2024-02-01", "h1", StatusMetadataOnly},
		{"new lastmod new hash", "https://u/a", "2024-02-01", "h9", StatusUpdated},
		{"empty lastmod kept", "https://u/b", "", "h2", StatusUnchanged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectChange(tt.url, tt.lastmod, tt.hash, prev))
		})
	}
}

func TestDetectChange_NilSnapshot(t *testing.T) {
	assert.Equal(t, StatusNew, DetectChange("https://u/a", "x", "y", nil))
}

func TestStatus_Actionable(t *testing.T) {
	assert.True(t, StatusNew.Actionable())
	assert.True(t, StatusUpdated.Actionable())
	assert.False(t, StatusMetadataOnly.Actionable())
	assert.False(t, StatusUnchanged.Actionable())
}
