package metadata

import (
	"Archivist/pkg/engine/core"
	"Archivist/pkg/engine/ledger"
	"Archivist/pkg/engine/logger"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(t.TempDir(), logger.NewService(""))
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	m := testManager(t)
	info := m.NewDefault("Solo Tales")
	info.Description = "a description"
	info.Author = "someone"
	m.UpdateChapter(info, "001", "Beginnings", "1", "https://imgchest.com/p/abc123", "ScanGroup")

	require.NoError(t, m.Save("Solo Tales", info))
	assert.True(t, m.Exists("Solo Tales"))

	loaded, err := m.Load("Solo Tales")
	require.NoError(t, err)
	assert.Equal(t, "Solo Tales", loaded.Title)
	assert.Equal(t, "someone", loaded.Author)

	entry, ok := loaded.Chapters["001"]
	require.True(t, ok)
	assert.Equal(t, "Beginnings", entry.Title)
	assert.Equal(t, "1", entry.Volume)
	assert.Equal(t, "/proxy/api/imgchest/chapter/abc123", entry.Groups["ScanGroup"])
}

func TestLoadMissingFile(t *testing.T) {
	m := testManager(t)
	_, err := m.Load("Nope")
	require.Error(t, err)

	info := m.GetOrCreate("Nope")
	assert.Equal(t, "Nope", info.Title)
	assert.Empty(t, info.Chapters)
}

func TestLoadCorruptFile(t *testing.T) {
	m := testManager(t)
	require.NoError(t, os.MkdirAll(m.MangaDir("Bad"), 0755))
	require.NoError(t, os.WriteFile(m.InfoPath("Bad"), []byte("{ nope"), 0644))

	_, err := m.Load("Bad")
	require.Error(t, err)
}

func TestLegacyGroupsUpgradedOnSave(t *testing.T) {
	m := testManager(t)
	require.NoError(t, os.MkdirAll(m.MangaDir("Old"), 0755))
	legacy := `{"title":"Old","description":"","artist":"","author":"","cover":"","groups":["A","B"],"chapters":{}}`
	require.NoError(t, os.WriteFile(m.InfoPath("Old"), []byte(legacy), 0644))

	info, err := m.Load("Old")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, info.LegacyGroups)

	require.NoError(t, m.Save("Old", info))
	reloaded, err := m.Load("Old")
	require.NoError(t, err)
	assert.Nil(t, reloaded.LegacyGroups)
}

func TestUpdateChapterPreservesOtherGroups(t *testing.T) {
	m := testManager(t)
	info := m.NewDefault("T")
	m.UpdateChapter(info, "003", "c3", "1", "https://imgchest.com/p/first", "GroupA")
	m.UpdateChapter(info, "003", "c3", "1", "https://imgchest.com/p/second", "GroupB")

	entry := info.Chapters["003"]
	assert.Equal(t, "/proxy/api/imgchest/chapter/first", entry.Groups["GroupA"])
	assert.Equal(t, "/proxy/api/imgchest/chapter/second", entry.Groups["GroupB"])
}

func TestProxyFromAlbumURL(t *testing.T) {
	assert.Equal(t, "/proxy/api/imgchest/chapter/vj4jew6w978",
		ProxyFromAlbumURL("https://imgchest.com/p/vj4jew6w978"))
	assert.Equal(t, "https://example.com/other",
		ProxyFromAlbumURL("https://example.com/other"))
}

func reconcileFixture(t *testing.T) (*Manager, *ledger.Ledger) {
	t.Helper()
	dir := t.TempDir()
	m := NewManager(dir, logger.NewService(""))
	led := ledger.Load(filepath.Join(dir, "Solo Tales", "upload_records.json"), logger.NewService(""))
	require.NoError(t, led.Record(
		core.Chapter{Volume: "1", Label: "005", Title: "Fifth"},
		core.UploadResult{Success: true, AlbumID: "abc123", AlbumURL: core.AlbumURL("abc123"), TotalImages: 9},
		"ScanGroup",
	))
	return m, led
}

func TestReconcileInsertsMissingChapter(t *testing.T) {
	m, led := reconcileFixture(t)

	changed, err := m.Reconcile("Solo Tales", led)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	info, err := m.Load("Solo Tales")
	require.NoError(t, err)
	entry := info.Chapters["005"]
	assert.Equal(t, "Fifth", entry.Title)
	assert.Equal(t, "1", entry.Volume)
	assert.Equal(t, "/proxy/api/imgchest/chapter/abc123", entry.Groups["ScanGroup"])
	assert.NotEmpty(t, entry.LastUpdated)
}

func TestReconcileFixedPoint(t *testing.T) {
	m, led := reconcileFixture(t)

	changed, err := m.Reconcile("Solo Tales", led)
	require.NoError(t, err)
	require.Equal(t, 1, changed)

	before, err := os.ReadFile(m.InfoPath("Solo Tales"))
	require.NoError(t, err)

	// Second run with no intervening ledger change: no writes at all.
	changed, err = m.Reconcile("Solo Tales", led)
	require.NoError(t, err)
	assert.Equal(t, 0, changed)

	after, err := os.ReadFile(m.InfoPath("Solo Tales"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestReconcileCorrectsStaleURLPreservingTimestamp(t *testing.T) {
	m, led := reconcileFixture(t)

	info := m.NewDefault("Solo Tales")
	info.Chapters["005"] = ChapterEntry{
		Title:       "Fifth",
		Volume:      "1",
		LastUpdated: "1700000000",
		Groups:      map[string]string{"ScanGroup": "/proxy/api/imgchest/chapter/stale999"},
	}
	require.NoError(t, m.Save("Solo Tales", info))

	m.now = func() time.Time { return time.Unix(1800000000, 0) }
	changed, err := m.Reconcile("Solo Tales", led)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	reloaded, err := m.Load("Solo Tales")
	require.NoError(t, err)
	entry := reloaded.Chapters["005"]
	assert.Equal(t, "/proxy/api/imgchest/chapter/abc123", entry.Groups["ScanGroup"])
	assert.Equal(t, "1700000000", entry.LastUpdated, "correction must not disturb last_updated")
}
