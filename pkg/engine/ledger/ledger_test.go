package ledger

import (
	"Archivist/pkg/engine/core"
	"Archivist/pkg/engine/logger"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLedger(t *testing.T) *Ledger {
	t.Helper()
	return Load(filepath.Join(t.TempDir(), "upload_records.json"), logger.NewService(""))
}

func chapter(label string) core.Chapter {
	return core.Chapter{
		Volume: "1",
		Label:  label,
		Title:  "A Title",
	}
}

func okResult(albumID string, count int) core.UploadResult {
	return core.UploadResult{
		Success:     true,
		AlbumID:     albumID,
		AlbumURL:    core.AlbumURL(albumID),
		TotalImages: count,
	}
}

func TestRecordAndReload(t *testing.T) {
	l := testLedger(t)
	require.NoError(t, l.Record(chapter("005"), okResult("abc123", 18), "ScanGroup"))

	require.True(t, l.IsUploaded("005"))
	rec, ok := l.Get("005")
	require.True(t, ok)
	assert.Equal(t, "abc123", rec.AlbumID)
	assert.Equal(t, 18, rec.ImageCount)
	assert.Equal(t, "ScanGroup", rec.Group)
	assert.Equal(t, "A Title", rec.ChapterTitle)
	assert.Equal(t, "1", rec.Volume)
	assert.NotEmpty(t, rec.Timestamp)

	reloaded := Load(l.Path(), logger.NewService(""))
	assert.Equal(t, 1, reloaded.Len())
	got, ok := reloaded.Get("005")
	require.True(t, ok)
	assert.Equal(t, rec, got)
}

func TestRecordOverwritesOnReupload(t *testing.T) {
	l := testLedger(t)
	require.NoError(t, l.Record(chapter("005"), okResult("old111", 10), "A"))
	require.NoError(t, l.Record(chapter("005"), okResult("new222", 12), "B"))

	assert.Equal(t, 1, l.Len())
	rec, _ := l.Get("005")
	assert.Equal(t, "new222", rec.AlbumID)
}

func TestFailedResultNotRecorded(t *testing.T) {
	l := testLedger(t)
	require.NoError(t, l.Record(chapter("005"), core.UploadResult{Success: false}, "A"))
	assert.False(t, l.IsUploaded("005"))

	_, err := os.Stat(l.Path())
	assert.True(t, os.IsNotExist(err), "failed uploads must not create the ledger file")
}

func TestRemove(t *testing.T) {
	l := testLedger(t)
	require.NoError(t, l.Record(chapter("005"), okResult("abc123", 5), "A"))

	removed, err := l.Remove("005")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, l.IsUploaded("005"))

	removed, err = l.Remove("005")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestCorruptFileDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upload_records.json")
	require.NoError(t, os.WriteFile(path, []byte("{ truncated"), 0644))

	l := Load(path, logger.NewService(""))
	assert.Equal(t, 0, l.Len())

	// Still usable: a new record persists valid JSON.
	require.NoError(t, l.Record(chapter("001"), okResult("abc", 3), "A"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestNoStaleTempFileAfterSave(t *testing.T) {
	l := testLedger(t)
	require.NoError(t, l.Record(chapter("001"), okResult("abc", 3), "A"))

	_, err := os.Stat(l.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLabelsSortedAndSummary(t *testing.T) {
	l := testLedger(t)
	require.NoError(t, l.Record(chapter("010"), okResult("a", 4), "G1"))
	require.NoError(t, l.Record(chapter("002"), okResult("b", 6), "G2"))
	require.NoError(t, l.Record(chapter("005"), okResult("c", 5), "G1"))

	assert.Equal(t, []string{"002", "005", "010"}, l.Labels())

	s := l.Summarize()
	assert.Equal(t, 3, s.TotalChapters)
	assert.Equal(t, 15, s.TotalImages)
	assert.Equal(t, 2, s.UniqueGroups)
}
