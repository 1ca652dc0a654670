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

// Package listgen renders the manga catalog as an RST document with
// one alphabetical section per leading letter, each holding a
// list-table of titles, reader links, and upload statistics.
package listgen

import (
	"Archivist/pkg/engine/logger"
	"Archivist/pkg/engine/metadata"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Service generates the manga-list.rst catalog document.
type Service struct {
	Metadata *metadata.Manager
	Logger   logger.Logger
}

// NewService creates a list generator over the metadata store.
func NewService(m *metadata.Manager, log logger.Logger) *Service {
	return &Service{Metadata: m, Logger: log}
}

// entry is one catalog row, derived from a manga's metadata document.
type entry struct {
	Title        string
	FolderName   string
	AddedOn      string
	LastUpdated  string
	VolumeCount  int
	ChapterCount int
}

// CubariURL builds the reader link for a manga folder: the raw GitHub
// path is percent-encoded, base64-encoded, and wrapped in the gist
// reader route.
func CubariURL(username, repo, branch, folderName string) string {
	rawPath := fmt.Sprintf("raw/%s/%s/%s/mangas/%s/info.json", username, repo, branch, folderName)

	segments := strings.Split(rawPath, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(strings.Join(segments, "/")))

	return fmt.Sprintf("https://cubari.moe/read/gist/%s/", encoded)
}

// Generate scans every manga under the metadata base directory and
// writes the catalog to outputFile. Returns the number of cataloged
// mangas.
func (s *Service) Generate(outputFile, username, repo, branch string) (int, error) {
	if branch == "" {
		branch = "main"
		s.Logger.Warn("no branch configured, defaulting to main")
	}

	entries, err := s.collect()
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, fmt.Errorf("no manga metadata found under %s", s.Metadata.BaseDir)
	}

	grouped := groupAlphabetically(entries)
	content := renderRST(grouped, username, repo, branch)

	if err := os.WriteFile(outputFile, []byte(content), 0644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", outputFile, err)
	}

	s.Logger.Info("generated %s with %d manga(s) in %d section(s)", outputFile, len(entries), len(grouped))
	return len(entries), nil
}

func (s *Service) collect() ([]entry, error) {
	dirEntries, err := os.ReadDir(s.Metadata.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading manga directory %s: %w", s.Metadata.BaseDir, err)
	}

	var entries []entry
	for _, de := range dirEntries {
		if !de.IsDir() {
			continue
		}
		folderName := de.Name()
		if !s.Metadata.Exists(folderName) {
			continue
		}

		info, err := s.Metadata.Load(folderName)
		if err != nil {
			s.Logger.Warn("skipping %s: %v", folderName, err)
			continue
		}

		volumes := make(map[string]struct{})
		var latest int64
		for _, ch := range info.Chapters {
			if ch.Volume != "" {
				volumes[ch.Volume] = struct{}{}
			}
			if ts, err := strconv.ParseInt(ch.LastUpdated, 10, 64); err == nil && ts > latest {
				latest = ts
			}
		}

		lastUpdated := "Unknown"
		if latest > 0 {
			lastUpdated = time.Unix(latest, 0).UTC().Format("2006-01-02 15:04 UTC")
		}

		addedOn := "Unknown"
		if fi, err := os.Stat(s.Metadata.MangaDir(folderName)); err == nil {
			addedOn = fi.ModTime().UTC().Format("2006-01-02 15:04 UTC")
		}

		title := info.Title
		if title == "" {
			title = folderName
		}

		entries = append(entries, entry{
			Title:        title,
			FolderName:   folderName,
			AddedOn:      addedOn,
			LastUpdated:  lastUpdated,
			VolumeCount:  len(volumes),
			ChapterCount: len(info.Chapters),
		})
	}
	return entries, nil
}

// groupAlphabetically buckets entries by the uppercased first letter
// of the title; digits and symbols land under "#".
func groupAlphabetically(entries []entry) map[string][]entry {
	grouped := make(map[string][]entry)
	for _, e := range entries {
		section := "?"
		if e.Title != "" {
			first := unicode.ToUpper([]rune(e.Title)[0])
			if unicode.IsLetter(first) {
				section = string(first)
			} else {
				section = "#"
			}
		}
		grouped[section] = append(grouped[section], e)
	}

	for _, group := range grouped {
		sort.Slice(group, func(i, j int) bool {
			return strings.ToLower(group[i].Title) < strings.ToLower(group[j].Title)
		})
	}
	return grouped
}

func renderRST(grouped map[string][]entry, username, repo, branch string) string {
	var b strings.Builder
	b.WriteString("Manga List\n")
	b.WriteString("==========\n\n")
	b.WriteString("Complete list of available manga organized alphabetically.\n\n")

	sections := make([]string, 0, len(grouped))
	for letter := range grouped {
		sections = append(sections, letter)
	}
	sort.Strings(sections)

	for _, letter := range sections {
		b.WriteString(letter + "\n")
		b.WriteString(strings.Repeat("-", len(letter)) + "\n\n")

		b.WriteString(".. list-table::\n")
		b.WriteString("   :header-rows: 1\n")
		b.WriteString("   :widths: 25 12 12 16 16 6 6\n\n")
		b.WriteString("   * - Title\n")
		b.WriteString("     - Gist\n")
		b.WriteString("     - Cubari\n")
		b.WriteString("     - Added On\n")
		b.WriteString("     - Last Updated\n")
		b.WriteString("     - Volumes\n")
		b.WriteString("     - Chapters\n")

		for _, e := range grouped[letter] {
			gistLink := fmt.Sprintf("`info.json <mangas/%s/info.json>`_", e.FolderName)
			cubariLink := fmt.Sprintf("`Read <%s>`_", CubariURL(username, repo, branch, e.FolderName))

			b.WriteString(fmt.Sprintf("   * - %s\n", e.Title))
			b.WriteString(fmt.Sprintf("     - %s\n", gistLink))
			b.WriteString(fmt.Sprintf("     - %s\n", cubariLink))
			b.WriteString(fmt.Sprintf("     - %s\n", e.AddedOn))
			b.WriteString(fmt.Sprintf("     - %s\n", e.LastUpdated))
			b.WriteString(fmt.Sprintf("     - %d\n", e.VolumeCount))
			b.WriteString(fmt.Sprintf("     - %d\n", e.ChapterCount))
		}
		b.WriteString("\n")
	}
	return b.String()
}
