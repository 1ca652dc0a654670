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

package ledger

import (
	"Archivist/pkg/engine/core"
	"Archivist/pkg/engine/logger"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Record is one ledger entry, keyed externally by chapter label.
type Record struct {
	AlbumID      string `json:"album_id"`
	AlbumURL     string `json:"album_url"`
	Timestamp    string `json:"timestamp"`
	ImageCount   int    `json:"image_count"`
	Group        string `json:"group"`
	ChapterTitle string `json:"chapter_title"`
	Volume       string `json:"volume"`
}

// Ledger is the persisted chapter-label → upload-record mapping used
// for dedup and audit, one JSON document per manga. Every mutation
// rewrites the file through a temp-then-rename so a crash never
// leaves truncated JSON behind.
type Ledger struct {
	path    string
	records map[string]Record
	logger  logger.Logger
	now     func() time.Time
}

// Load reads the ledger at path. A missing, corrupt, or unreadable
// file degrades to an empty ledger with a warning: the system stays
// usable at the cost of potential duplicate albums.
func Load(path string, log logger.Logger) *Ledger {
	l := &Ledger{
		path:    path,
		records: make(map[string]Record),
		logger:  log,
		now:     time.Now,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("could not read upload records from %s: %v", path, err)
		}
		return l
	}

	if err := json.Unmarshal(data, &l.records); err != nil {
		log.Warn("could not parse upload records from %s, starting empty: %v", path, err)
		l.records = make(map[string]Record)
	}
	return l
}

// Path returns the file the ledger persists to.
func (l *Ledger) Path() string { return l.path }

// IsUploaded reports whether a chapter label has a ledger entry.
func (l *Ledger) IsUploaded(label string) bool {
	_, ok := l.records[label]
	return ok
}

// Get returns the record for a chapter label, if any.
func (l *Ledger) Get(label string) (Record, bool) {
	rec, ok := l.records[label]
	return rec, ok
}

// Labels returns all recorded chapter labels, sorted.
func (l *Ledger) Labels() []string {
	labels := make([]string, 0, len(l.records))
	for label := range l.records {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Len returns the number of records.
func (l *Ledger) Len() int { return len(l.records) }

// Record writes (or overwrites) the entry for a successfully uploaded
// chapter and persists synchronously. Unsuccessful results are
// ignored.
func (l *Ledger) Record(chapter core.Chapter, result core.UploadResult, group string) error {
	if !result.Success || result.AlbumID == "" {
		return nil
	}

	l.records[chapter.Label] = Record{
		AlbumID:      result.AlbumID,
		AlbumURL:     result.AlbumURL,
		Timestamp:    l.now().Format(time.RFC3339),
		ImageCount:   result.TotalImages,
		Group:        group,
		ChapterTitle: chapter.Title,
		Volume:       chapter.Volume,
	}
	return l.save()
}

// Remove deletes the entry for a chapter label and persists. Returns
// whether an entry existed.
func (l *Ledger) Remove(label string) (bool, error) {
	if _, ok := l.records[label]; !ok {
		return false, nil
	}
	delete(l.records, label)
	return true, l.save()
}

// Summary aggregates ledger statistics for the end-of-run report.
type Summary struct {
	TotalChapters int
	TotalImages   int
	UniqueGroups  int
}

// Summarize computes upload statistics across all records.
func (l *Ledger) Summarize() Summary {
	groups := make(map[string]struct{})
	s := Summary{TotalChapters: len(l.records)}
	for _, rec := range l.records {
		s.TotalImages += rec.ImageCount
		groups[rec.Group] = struct{}{}
	}
	s.UniqueGroups = len(groups)
	return s
}

func (l *Ledger) save() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("creating ledger directory: %w", err)
	}

	data, err := json.MarshalIndent(l.records, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing upload records: %w", err)
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing upload records to %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing upload records at %s: %w", l.path, err)
	}
	return nil
}
