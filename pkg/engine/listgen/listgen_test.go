package listgen

import (
	"Archivist/pkg/engine/logger"
	"Archivist/pkg/engine/metadata"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInfo(t *testing.T, m *metadata.Manager, title string, chapters map[string]metadata.ChapterEntry) {
	t.Helper()
	info := m.NewDefault(title)
	info.Chapters = chapters
	require.NoError(t, m.Save(title, info))
}

func TestCubariURL(t *testing.T) {
	got := CubariURL("someone", "mangas", "main", "Solo Tales")

	// Encoded payload must decode back to the percent-encoded raw path.
	prefix := "https://cubari.moe/read/gist/"
	require.True(t, strings.HasPrefix(got, prefix))
	require.True(t, strings.HasSuffix(got, "/"))

	assert.Equal(t,
		"https://cubari.moe/read/gist/cmF3L3NvbWVvbmUvbWFuZ2FzL21haW4vbWFuZ2FzL1NvbG8lMjBUYWxlcy9pbmZvLmpzb24=/",
		got)
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	m := metadata.NewManager(dir, logger.NewService(""))

	writeInfo(t, m, "Alpha Story", map[string]metadata.ChapterEntry{
		"001": {Title: "One", Volume: "1", LastUpdated: "1700000000"},
		"002": {Title: "Two", Volume: "2", LastUpdated: "1710000000"},
	})
	writeInfo(t, m, "beta tales", map[string]metadata.ChapterEntry{
		"001": {Title: "One", Volume: "1", LastUpdated: "not-a-number"},
	})
	writeInfo(t, m, "9 Lives", map[string]metadata.ChapterEntry{})

	out := filepath.Join(t.TempDir(), "manga-list.rst")
	s := NewService(m, logger.NewService(""))
	count, err := s.Generate(out, "someone", "repo", "main")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	content := string(data)

	assert.True(t, strings.HasPrefix(content, "Manga List\n==========\n"))
	assert.Contains(t, content, ".. list-table::")
	assert.Contains(t, content, "   * - Alpha Story")
	assert.Contains(t, content, "`info.json <mangas/Alpha Story/info.json>`_")
	assert.Contains(t, content, "https://cubari.moe/read/gist/")

	// Unparseable last_updated falls back to Unknown; parseable ones
	// become a UTC date.
	assert.Contains(t, content, "2024-03-09")
	assert.Contains(t, content, "Unknown")

	// Sections: digits group under "#", letters are uppercased, and
	// "#" sorts before letters.
	hashIdx := strings.Index(content, "#\n-\n")
	aIdx := strings.Index(content, "A\n-\n")
	bIdx := strings.Index(content, "B\n-\n")
	require.GreaterOrEqual(t, hashIdx, 0)
	require.GreaterOrEqual(t, aIdx, 0)
	require.GreaterOrEqual(t, bIdx, 0)
	assert.Less(t, hashIdx, aIdx)
	assert.Less(t, aIdx, bIdx)
}

func TestGenerateEmptyDirectory(t *testing.T) {
	m := metadata.NewManager(t.TempDir(), logger.NewService(""))
	s := NewService(m, logger.NewService(""))

	_, err := s.Generate(filepath.Join(t.TempDir(), "out.rst"), "u", "r", "main")
	assert.Error(t, err)
}
