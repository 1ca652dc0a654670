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
	"Archivist/pkg/engine/ledger"
	"strconv"
)

// Reconcile aligns the manga's metadata document with the upload
// ledger: every chapter label the ledger knows must have an entry
// whose URL for the recorded group matches the ledger's album id
// (after the proxy transform). Entries that already agree are left
// byte-identical — in particular, last_updated of a corrected chapter
// keeps its prior value, so reconciliation never disturbs freshness
// signals of unrelated edits. The document is written back only when
// at least one chapter was added or corrected.
//
// Returns the number of chapters added or corrected.
func (m *Manager) Reconcile(mangaTitle string, led *ledger.Ledger) (int, error) {
	info := m.GetOrCreate(mangaTitle)

	changed := 0
	for _, label := range led.Labels() {
		rec, _ := led.Get(label)
		expected := core.ProxyURL(rec.AlbumID)

		entry, ok := info.Chapters[label]
		if !ok {
			info.Chapters[label] = ChapterEntry{
				Title:       rec.ChapterTitle,
				Volume:      rec.Volume,
				LastUpdated: strconv.FormatInt(m.now().Unix(), 10),
				Groups:      map[string]string{rec.Group: expected},
			}
			m.Logger.Info("reconcile: added missing chapter %s for %q", label, mangaTitle)
			changed++
			continue
		}

		if entry.Groups[rec.Group] == expected {
			continue
		}
		if entry.Groups == nil {
			entry.Groups = make(map[string]string)
		}
		entry.Groups[rec.Group] = expected
		info.Chapters[label] = entry
		m.Logger.Info("reconcile: corrected stale URL for chapter %s group %q", label, rec.Group)
		changed++
	}

	if changed == 0 {
		return 0, nil
	}
	return changed, m.Save(mangaTitle, info)
}
