package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webrag/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestFileNameFor(t *testing.T) {
	assert.Equal(t, "example.edu_admissions_ug.md", FileNameFor("https://example.edu/admissions/ug"))
	assert.Equal(t, "example.edu_.md", FileNameFor("http://example.edu/"))
}

func TestLoadRegistryAndPages(t *testing.T) {
	dir := t.TempDir()
	registry := filepath.Join(dir, "registry.json")
	writeFile(t, dir, "registry.json", `[
		{"url": "https://example.edu/fees", "lastmod": "2024-01-01"},
		{"url": "https://example.edu/missing"},
		{"url": "https://example.edu/hostel", "lastmod": "2024-02-01"}
	]`)
	writeFile(t, dir, "example.edu_fees.md", "# Fees")
	writeFile(t, dir, "example.edu_hostel.md", "# Hostel")

	entries, err := LoadRegistry(registry)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Empty(t, entries[1].Lastmod)

	docs, err := LoadPages(dir, entries)
	require.NoError(t, err)
	assert.Equal(t, []domain.Document{
		{URL: "https://example.edu/fees", SourceFile: "example.edu_fees.md", Lastmod: "2024-01-01", Content: "# Fees"},
		{URL: "https://example.edu/hostel", SourceFile: "example.edu_hostel.md", Lastmod: "2024-02-01", Content: "# Hostel"},
	}, docs)
}

func TestLoadRegistry_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "registry.json", `{"url": "x"}`)
	_, err := LoadRegistry(filepath.Join(dir, "registry.json"))
	assert.Error(t, err)
}

func TestLoadDirAndApplyRegistry(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b_notes.txt", "plain notes")
	writeFile(t, dir, "example.edu_fees.md", "# Fees")
	writeFile(t, dir, "image.png", "binary")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	docs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b_notes.txt", docs[0].SourceFile)
	assert.Equal(t, "example.edu_fees.md", docs[1].SourceFile)

	docs = ApplyRegistry(docs, []RegistryEntry{{URL: "https://example.edu/fees", Lastmod: "2024-01-01"}})
	assert.Empty(t, docs[0].URL)
	assert.Equal(t, "https://example.edu/fees", docs[1].URL)
	assert.Equal(t, "2024-01-01", docs[1].Lastmod)
	assert.Equal(t, "https://example.edu/fees", docs[1].Source())
}

func TestLoadDir_BrokenPDF(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.pdf", "not a pdf")
	_, err := LoadDir(dir)
	assert.Error(t, err)
}

func TestCleanMarkdown(t *testing.T) {
	in := "Fees  are   listed here.   \nwww.example.edu | Contact\n- 4 -\n\n\nDeadline is 2024-05-01.\nCopyright 2024 Example College\nEnd of page 7"
	assert.Equal(t, "Fees are listed here.\n\nDeadline is 2024-05-01.\n\nEnd of", CleanMarkdown(in))
}
