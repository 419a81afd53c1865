// Package sqlite persists chunk vectors and the change snapshot in a single
// SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	_ "modernc.org/sqlite" // SQLite driver

	"webrag/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	id        TEXT PRIMARY KEY,
	document  TEXT NOT NULL,
	embedding BLOB,
	metadata  TEXT NOT NULL DEFAULT '{}'
);
CREATE TABLE IF NOT EXISTS snapshot (
	url     TEXT PRIMARY KEY,
	lastmod TEXT NOT NULL,
	hash    TEXT NOT NULL
);
`

var metaKeyRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store is a SQLite database holding the vector and snapshot tables.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// VectorStore returns a domain.VectorStore backed by the chunks table.
func (s *Store) VectorStore() domain.VectorStore {
	return &vectorStore{store: s}
}

// SnapshotStore returns a domain.SnapshotStore backed by the snapshot table.
func (s *Store) SnapshotStore() domain.SnapshotStore {
	return &snapshotStore{store: s}
}

type vectorStore struct {
	store *Store
}

func (v *vectorStore) Add(ctx context.Context, ids, documents []string, embeddings [][]float32, metadatas []domain.Metadata) error {
	if err := domain.CheckBatch(ids, documents, embeddings, metadatas); err != nil {
		return err
	}
	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document, embedding, metadata) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET document = excluded.document,
			embedding = excluded.embedding, metadata = excluded.metadata`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range ids {
		meta, err := json.Marshal(metadatas[i])
		if err != nil {
			return fmt.Errorf("encoding metadata for %s: %w", ids[i], err)
		}
		if _, err := stmt.ExecContext(ctx, ids[i], documents[i], float32SliceToBytes(embeddings[i]), string(meta)); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", ids[i], err)
		}
	}
	return tx.Commit()
}

func (v *vectorStore) Query(ctx context.Context, embedding []float32, topK int) (domain.RetrievalResult, error) {
	if topK <= 0 {
		topK = 5
	}
	res := domain.RetrievalResult{Documents: []string{}, Metadatas: []domain.Metadata{}}
	rows, err := v.store.db.QueryContext(ctx, `SELECT document, embedding, metadata FROM chunks ORDER BY rowid`)
	if err != nil {
		return res, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	type scored struct {
		document string
		metadata domain.Metadata
		score    float64
	}
	var all []scored
	for rows.Next() {
		var (
			doc      string
			blob     []byte
			metaJSON string
		)
		if err := rows.Scan(&doc, &blob, &metaJSON); err != nil {
			return res, fmt.Errorf("scanning chunk: %w", err)
		}
		meta := domain.Metadata{}
		if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
			return res, fmt.Errorf("decoding metadata: %w", err)
		}
		all = append(all, scored{document: doc, metadata: meta, score: dot(bytesToFloat32Slice(blob), embedding)})
	}
	if err := rows.Err(); err != nil {
		return res, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })
	for _, s := range all[:min(topK, len(all))] {
		res.Documents = append(res.Documents, s.document)
		res.Metadatas = append(res.Metadatas, s.metadata)
	}
	return res, nil
}

func (v *vectorStore) Delete(ctx context.Context, where map[string]string) error {
	if len(where) == 0 {
		return nil
	}
	query := "DELETE FROM chunks WHERE 1=1"
	args := make([]any, 0, len(where))
	for k, val := range where {
		if !metaKeyRe.MatchString(k) {
			return fmt.Errorf("invalid metadata key %q", k)
		}
		query += fmt.Sprintf(" AND json_extract(metadata, '$.%s') = ?", k)
		args = append(args, val)
	}
	if _, err := v.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

type snapshotStore struct {
	store *Store
}

func (s *snapshotStore) Load(ctx context.Context) (domain.Snapshot, error) {
	rows, err := s.store.db.QueryContext(ctx, `SELECT url, lastmod, hash FROM snapshot`)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}
	defer rows.Close()
	snap := domain.Snapshot{}
	for rows.Next() {
		var url string
		var rec domain.ChangeRecord
		if err := rows.Scan(&url, &rec.Lastmod, &rec.Hash); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		if rec.Hash == "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrMalformedSnapshot, url)
		}
		snap[url] = rec
	}
	return snap, rows.Err()
}

// Save replaces the whole snapshot in one transaction.
func (s *snapshotStore) Save(ctx context.Context, snapshot domain.Snapshot) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot`); err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}
	for url, rec := range snapshot {
		if _, err := tx.ExecContext(ctx, `INSERT INTO snapshot (url, lastmod, hash) VALUES (?, ?, ?)`, url, rec.Lastmod, rec.Hash); err != nil {
			return fmt.Errorf("inserting snapshot %s: %w", url, err)
		}
	}
	return tx.Commit()
}

func dot(a, b []float32) float64 {
	n := min(len(a), len(b))
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
