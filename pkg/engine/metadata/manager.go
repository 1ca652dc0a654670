// Archivist: A CLI tool for uploading manga chapters to ImgChest and
// maintaining Cubari-compatible reader metadata.
// Copyright (C) 2025 Archivist Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package metadata

import (
	"Archivist/pkg/engine/core"
	"Archivist/pkg/engine/logger"
	"Archivist/pkg/errors"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ChapterEntry is one chapter in the reader-facing metadata document.
// Groups maps group name → proxy URL; a chapter can carry several
// group translations under the same numeric label.
type ChapterEntry struct {
	Title       string            `json:"title"`
	Volume      string            `json:"volume"`
	LastUpdated string            `json:"last_updated"`
	Groups      map[string]string `json:"groups"`
}

// MangaInfo is the reader-facing metadata document (info.json).
type MangaInfo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Artist      string `json:"artist"`
	Author      string `json:"author"`
	Cover       string `json:"cover"`

	// LegacyGroups holds the retired top-level groups list found in
	// older documents. It is consumed as the available-groups
	// fallback and dropped on the next save.
	LegacyGroups []string `json:"groups,omitempty"`

	Chapters map[string]ChapterEntry `json:"chapters"`
}

// Manager owns the per-manga metadata documents under its base
// output directory (mangas/<manga>/info.json).
type Manager struct {
	BaseDir string
	Logger  logger.Logger

	now func() time.Time
}

// NewManager creates a metadata manager rooted at baseDir.
func NewManager(baseDir string, log logger.Logger) *Manager {
	return &Manager{
		BaseDir: baseDir,
		Logger:  log,
		now:     time.Now,
	}
}

// MangaDir returns the output directory for one manga.
func (m *Manager) MangaDir(mangaTitle string) string {
	return filepath.Join(m.BaseDir, mangaTitle)
}

// InfoPath returns the metadata document path for one manga.
func (m *Manager) InfoPath(mangaTitle string) string {
	return filepath.Join(m.MangaDir(mangaTitle), "info.json")
}

// LedgerPath returns the upload ledger path for one manga.
func (m *Manager) LedgerPath(mangaTitle string) string {
	return filepath.Join(m.MangaDir(mangaTitle), "upload_records.json")
}

// Exists reports whether a metadata document exists for the manga.
func (m *Manager) Exists(mangaTitle string) bool {
	_, err := os.Stat(m.InfoPath(mangaTitle))
	return err == nil
}

// Load reads and validates the metadata document for a manga.
func (m *Manager) Load(mangaTitle string) (*MangaInfo, error) {
	path := m.InfoPath(mangaTitle)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metadata file %s: %w", path, err)
	}

	info := &MangaInfo{}
	if err := json.Unmarshal(data, info); err != nil {
		return nil, fmt.Errorf("invalid JSON in metadata file %s: %w", path, err)
	}
	if info.Chapters == nil {
		info.Chapters = make(map[string]ChapterEntry)
	}
	return info, nil
}

// NewDefault builds an empty metadata document for a manga.
func (m *Manager) NewDefault(title string) *MangaInfo {
	return &MangaInfo{
		Title:    title,
		Chapters: make(map[string]ChapterEntry),
	}
}

// GetOrCreate loads the existing document or returns a fresh default.
func (m *Manager) GetOrCreate(mangaTitle string) *MangaInfo {
	info, err := m.Load(mangaTitle)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			m.Logger.Warn("could not load metadata for %q, starting fresh: %v", mangaTitle, err)
		}
		return m.NewDefault(mangaTitle)
	}
	return info
}

// Save writes the metadata document, pretty-printed, through a
// temp-then-rename. The legacy top-level groups list never survives a
// save.
func (m *Manager) Save(mangaTitle string, info *MangaInfo) error {
	info.LegacyGroups = nil

	dir := m.MangaDir(mangaTitle)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating manga directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing metadata: %w", err)
	}

	path := m.InfoPath(mangaTitle)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing metadata file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing metadata file %s: %w", path, err)
	}
	return nil
}

// UpdateChapter records an uploaded chapter in the document. Existing
// group translations of the chapter are preserved; the entry's
// last_updated is refreshed because this path only runs on a new or
// repeated upload.
func (m *Manager) UpdateChapter(info *MangaInfo, label, chapterTitle, volume, albumURL, group string) {
	if info.Chapters == nil {
		info.Chapters = make(map[string]ChapterEntry)
	}

	groups := make(map[string]string)
	if existing, ok := info.Chapters[label]; ok {
		for name, url := range existing.Groups {
			groups[name] = url
		}
	}
	groups[group] = ProxyFromAlbumURL(albumURL)

	info.Chapters[label] = ChapterEntry{
		Title:       chapterTitle,
		Volume:      volume,
		LastUpdated: strconv.FormatInt(m.now().Unix(), 10),
		Groups:      groups,
	}
}

// ProxyFromAlbumURL converts a public album URL to the proxy form
// written into reader metadata. Unexpected URL shapes pass through
// unchanged.
func ProxyFromAlbumURL(albumURL string) string {
	if idx := strings.LastIndex(albumURL, "/p/"); idx >= 0 {
		return core.ProxyURL(albumURL[idx+len("/p/"):])
	}
	return albumURL
}
