// Package loader reads crawled pages and local documents from disk.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"webrag/internal/domain"
)

// RegistryEntry is one crawled URL with its sitemap lastmod.
type RegistryEntry struct {
	URL     string `json:"url"`
	Lastmod string `json:"lastmod"`
}

// LoadRegistry reads the JSON URL registry.
func LoadRegistry(path string) ([]RegistryEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry: %w", err)
	}
	var entries []RegistryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding registry %s: %w", path, err)
	}
	return entries, nil
}

// FileNameFor returns the markdown file name a crawled URL is stored under.
func FileNameFor(url string) string {
	name := strings.TrimPrefix(url, "https://")
	name = strings.TrimPrefix(name, "http://")
	return strings.ReplaceAll(name, "/", "_") + ".md"
}

// LoadPages reads the stored markdown of every registry entry. Entries
// whose file is missing are skipped.
func LoadPages(dir string, entries []RegistryEntry) ([]domain.Document, error) {
	docs := make([]domain.Document, 0, len(entries))
	for _, e := range entries {
		name := FileNameFor(e.URL)
		data, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		docs = append(docs, domain.Document{URL: e.URL, SourceFile: name, Lastmod: e.Lastmod, Content: string(data)})
	}
	return docs, nil
}

// LoadDir reads every .md, .txt and .pdf file directly under dir, sorted by
// name. PDF text is passed through CleanMarkdown.
func LoadDir(dir string) ([]domain.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var docs []domain.Document
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		var content string
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".md", ".txt":
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", path, err)
			}
			content = string(data)
		case ".pdf":
			text, err := readPDF(path)
			if err != nil {
				return nil, err
			}
			content = CleanMarkdown(text)
		default:
			continue
		}
		docs = append(docs, domain.Document{SourceFile: e.Name(), Content: content})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].SourceFile < docs[j].SourceFile })
	return docs, nil
}

// ApplyRegistry sets URL and lastmod on documents whose file name matches a
// registry entry. Other documents are returned unchanged.
func ApplyRegistry(docs []domain.Document, entries []RegistryEntry) []domain.Document {
	byFile := make(map[string]RegistryEntry, len(entries))
	for _, e := range entries {
		byFile[FileNameFor(e.URL)] = e
	}
	for i := range docs {
		if e, ok := byFile[docs[i].SourceFile]; ok {
			docs[i].URL = e.URL
			docs[i].Lastmod = e.Lastmod
		}
	}
	return docs
}

func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", path, err)
	}
	data, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", path, err)
	}
	return string(data), nil
}
