package parser

import (
	"Archivist/pkg/engine/logger"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService(t *testing.T) *Service {
	t.Helper()
	return NewService(logger.NewService(""))
}

func TestParseFolderName(t *testing.T) {
	s := testService(t)

	tests := []struct {
		name   string
		volume string
		label  string
		title  string
	}{
		{"V1 Ch5 The Beginning", "1", "5", "The Beginning"},
		{"Volume 2 Chapter 10 Rising", "2", "10", "Rising"},
		{"V3", "3", "", ""},
		{"Ch7 Turning Point", "", "7", "Turning Point"},
		{"Chapter 12", "", "12", ""},
		{"05 Aftermath", "", "05", "Aftermath"},
		{"08", "", "08", ""},
		{"Special 9 part 2", "2", "9", "Special 9 part 2"},
		{"Omake 4", "", "4", "Omake 4"},
		{"Extras", "", "", "Extras"},
	}

	for _, tt := range tests {
		volume, label, title := s.ParseFolderName(tt.name)
		assert.Equal(t, tt.volume, volume, "volume for %q", tt.name)
		assert.Equal(t, tt.label, label, "label for %q", tt.name)
		assert.Equal(t, tt.title, title, "title for %q", tt.name)
	}
}

func TestParseChapterUsesVolumeHint(t *testing.T) {
	s := testService(t)
	dir := filepath.Join(t.TempDir(), "Ch3 Duel")
	require.NoError(t, os.MkdirAll(dir, 0755))

	ch := s.ParseChapter(dir, "2")
	assert.Equal(t, "2", ch.Volume)
	assert.Equal(t, "3", ch.Label)
	assert.Equal(t, "Duel", ch.Title)
	assert.Equal(t, dir, ch.FolderPath)
}

func TestParseChapterUnknownDefaults(t *testing.T) {
	s := testService(t)
	dir := filepath.Join(t.TempDir(), "Extras")
	require.NoError(t, os.MkdirAll(dir, 0755))

	ch := s.ParseChapter(dir, "")
	assert.Equal(t, "Unknown", ch.Volume)
	assert.Equal(t, "Unknown", ch.Label)
	assert.Equal(t, "Extras", ch.Title)
}

func TestCollectImages(t *testing.T) {
	s := testService(t)
	dir := t.TempDir()

	// Mixed case and unsupported files; sorting must be
	// case-insensitive and skip non-images.
	files := map[string][]byte{
		"B02.PNG":    make([]byte, 10),
		"a01.jpg":    make([]byte, 20),
		"c03.webp":   make([]byte, 5),
		"notes.txt":  []byte("x"),
		"thumbs.db":  []byte("x"),
		"cover.tiff": make([]byte, 7),
	}
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "subdir"), 0755))

	images := s.CollectImages(dir)
	require.Len(t, images, 4)
	assert.Equal(t, "a01.jpg", images[0].Name)
	assert.Equal(t, "B02.PNG", images[1].Name)
	assert.Equal(t, "c03.webp", images[2].Name)
	assert.Equal(t, "cover.tiff", images[3].Name)

	assert.Equal(t, int64(20), images[0].Size)
	assert.Equal(t, "image/jpeg", images[0].MIMEType)
	assert.Equal(t, "image/png", images[1].MIMEType)
	assert.Equal(t, "image/tiff", images[3].MIMEType)
	assert.Equal(t, filepath.Join(dir, "a01.jpg"), images[0].Path)
}

func TestCollectImagesMissingFolder(t *testing.T) {
	s := testService(t)
	assert.Nil(t, s.CollectImages(filepath.Join(t.TempDir(), "nope")))
}

func TestLoadMangaDetailsFromJSON(t *testing.T) {
	s := testService(t)
	dir := t.TempDir()
	doc := `{
		"title": "Solo Tales",
		"description": "a story",
		"artist": "pen",
		"author": "ink",
		"cover": "https://example.com/c.png",
		"groups": ["GroupA", "GroupB"]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "info.json"), []byte(doc), 0644))

	details := s.LoadMangaDetails(dir)
	assert.Equal(t, "Solo Tales", details.Title)
	assert.Equal(t, "a story", details.Description)
	assert.Equal(t, []string{"GroupA", "GroupB"}, details.Groups)
}

func TestLoadMangaDetailsGroupsAsString(t *testing.T) {
	s := testService(t)
	dir := t.TempDir()
	doc := `{"title": "T", "groups": "GroupA, GroupB , "}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "info.json"), []byte(doc), 0644))

	details := s.LoadMangaDetails(dir)
	assert.Equal(t, []string{"GroupA", "GroupB"}, details.Groups)
}

func TestLoadMangaDetailsFromText(t *testing.T) {
	s := testService(t)
	dir := t.TempDir()
	doc := "# comment line\n" +
		"Title: Plain Story\n" +
		"Author: someone\n" +
		"Groups: A, B\n" +
		"not a key value line\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "info.txt"), []byte(doc), 0644))

	details := s.LoadMangaDetails(dir)
	assert.Equal(t, "Plain Story", details.Title)
	assert.Equal(t, "someone", details.Author)
	assert.Equal(t, []string{"A", "B"}, details.Groups)
}

func TestLoadMangaDetailsFallsBackToFolderName(t *testing.T) {
	s := testService(t)
	dir := filepath.Join(t.TempDir(), "My Manga")
	require.NoError(t, os.MkdirAll(dir, 0755))

	details := s.LoadMangaDetails(dir)
	assert.Equal(t, "My Manga", details.Title)
	assert.Empty(t, details.Groups)
}

func TestInvalidJSONFallsThroughToText(t *testing.T) {
	s := testService(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "info.json"), []byte("{ bad"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "info.txt"), []byte("Title: Rescued\n"), 0644))

	details := s.LoadMangaDetails(dir)
	assert.Equal(t, "Rescued", details.Title)
}
