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

package parser

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// MangaDetails is the descriptive metadata an input folder declares
// about itself, before any upload has happened.
type MangaDetails struct {
	Title       string
	Description string
	Artist      string
	Author      string
	Cover       string
	Groups      []string
}

// infoDocument mirrors the on-disk info.json shape. Groups accepts
// either a JSON array or a comma-separated string.
type infoDocument struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Artist      string          `json:"artist"`
	Author      string          `json:"author"`
	Cover       string          `json:"cover"`
	Groups      json.RawMessage `json:"groups"`
}

// LoadMangaDetails reads descriptive metadata from info.json or
// info.txt inside the manga's input folder. When neither exists or
// parses, the folder name stands in as the title.
func (s *Service) LoadMangaDetails(mangaDir string) MangaDetails {
	details := MangaDetails{Title: filepath.Base(mangaDir)}

	if s.loadInfoJSON(filepath.Join(mangaDir, "info.json"), &details) {
		return details
	}
	if s.loadInfoText(filepath.Join(mangaDir, "info.txt"), &details) {
		return details
	}

	s.Logger.Info("no info.json or info.txt in %s, using folder name as title", mangaDir)
	return details
}

func (s *Service) loadInfoJSON(path string, details *MangaDetails) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	var doc infoDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		s.Logger.Warn("invalid JSON in %s: %v", path, err)
		return false
	}

	if doc.Title != "" {
		details.Title = doc.Title
	}
	details.Description = doc.Description
	details.Artist = doc.Artist
	details.Author = doc.Author
	details.Cover = doc.Cover
	details.Groups = parseGroups(doc.Groups)

	s.Logger.Info("loaded manga info from %s", path)
	return true
}

func (s *Service) loadInfoText(path string, details *MangaDetails) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || !strings.Contains(line, ":") {
			continue
		}
		key, value, _ := strings.Cut(line, ":")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		switch key {
		case "title":
			details.Title = value
		case "description":
			details.Description = value
		case "artist":
			details.Artist = value
		case "author":
			details.Author = value
		case "cover":
			details.Cover = value
		case "groups":
			details.Groups = splitGroupList(value)
		}
	}
	if err := scanner.Err(); err != nil {
		s.Logger.Warn("could not read %s: %v", path, err)
		return false
	}

	s.Logger.Info("loaded manga info from %s", path)
	return true
}

// parseGroups accepts the two historical shapes of the groups field.
func parseGroups(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, g := range list {
			if g != "" {
				out = append(out, g)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return splitGroupList(single)
	}
	return nil
}

func splitGroupList(value string) []string {
	var groups []string
	for _, g := range strings.Split(value, ",") {
		if g = strings.TrimSpace(g); g != "" {
			groups = append(groups, g)
		}
	}
	return groups
}
