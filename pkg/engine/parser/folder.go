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
	"Archivist/pkg/engine/core"
	"Archivist/pkg/engine/logger"
	"path/filepath"
	"regexp"
)

// Service infers chapter identity from folder names and assembles
// chapters from the filesystem.
type Service struct {
	Logger logger.Logger
}

// NewService creates a folder parsing service.
func NewService(log logger.Logger) *Service {
	return &Service{Logger: log}
}

var (
	// "V1 Ch1 Title" / "Volume 1 Chapter 1 Title"
	volumeChapterPattern = regexp.MustCompile(`(?i)^(?:V|Volume)\s*(\d+)(?:\s+(?:Ch|Chapter)\s*(\d+))?(?:\s+(.+))?`)
	// "Ch1 Title" / "Chapter 1 Title"
	chapterPattern = regexp.MustCompile(`(?i)^(?:Ch|Chapter)\s*(\d+)(?:\s+(.+))?`)
	// "01 Title"
	leadingNumberPattern = regexp.MustCompile(`^(\d+)(?:\s+(.+))?`)

	anyNumberPattern = regexp.MustCompile(`\d+`)
)

// ParseFolderName extracts volume, chapter label, and title from a
// chapter folder name. Volume and label come back empty when the name
// carries no usable number for them.
func (s *Service) ParseFolderName(folderName string) (volume, label, title string) {
	if m := volumeChapterPattern.FindStringSubmatch(folderName); m != nil {
		return m[1], m[2], m[3]
	}
	if m := chapterPattern.FindStringSubmatch(folderName); m != nil {
		return "", m[1], m[2]
	}
	if m := leadingNumberPattern.FindStringSubmatch(folderName); m != nil {
		// A bare leading number is a chapter, not a volume.
		return "", m[1], m[2]
	}

	// Last resort: scavenge any numbers buried in the name. With two
	// or more, the first reads as chapter and the second as volume.
	if numbers := anyNumberPattern.FindAllString(folderName, -1); numbers != nil {
		s.Logger.Warn("fallback parsing for folder %q, extracted numbers %v", folderName, numbers)
		if len(numbers) >= 2 {
			return numbers[1], numbers[0], folderName
		}
		return "", numbers[0], folderName
	}

	s.Logger.Warn("no volume or chapter number in folder %q, using name as title", folderName)
	return "", "", folderName
}

// ParseChapter builds a chapter from a folder on disk. volumeHint
// fills in the volume when the folder name itself carries none, which
// is the common case for folders nested under a volume directory.
func (s *Service) ParseChapter(chapterDir string, volumeHint string) core.Chapter {
	volume, label, title := s.ParseFolderName(filepath.Base(chapterDir))
	if volume == "" {
		volume = volumeHint
	}
	if volume == "" {
		volume = "Unknown"
	}
	if label == "" {
		label = "Unknown"
	}

	return core.Chapter{
		Volume:     volume,
		Label:      label,
		Title:      title,
		FolderPath: chapterDir,
		Images:     s.CollectImages(chapterDir),
	}
}
