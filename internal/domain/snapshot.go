package domain

import (
	"encoding/json"
	"fmt"
)

// ChangeRecord is the persisted state of one URL.
type ChangeRecord struct {
	Lastmod string `json:"lastmod"`
	Hash    string `json:"hash"`
}

// Snapshot maps URL to its last indexed ChangeRecord.
type Snapshot map[string]ChangeRecord

// DecodeSnapshot parses the JSON snapshot format. Entries without a lastmod
// key or without a hash are rejected rather than coerced.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var raw map[string]struct {
		Lastmod *string `json:"lastmod"`
		Hash    *string `json:"hash"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	snap := make(Snapshot, len(raw))
	for url, entry := range raw {
		if entry.Lastmod == nil || entry.Hash == nil || *entry.Hash == "" {
			return nil, fmt.Errorf("%w: %s", ErrMalformedSnapshot, url)
		}
		snap[url] = ChangeRecord{Lastmod: *entry.Lastmod, Hash: *entry.Hash}
	}
	return snap, nil
}

// EncodeSnapshot renders the snapshot as indented JSON.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	if s == nil {
		s = Snapshot{}
	}
	return json.MarshalIndent(s, "", "  ")
}
