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
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// mimeByExtension covers every accepted page format. The mime package
// lacks entries for .bmp and .tiff on some platforms, so the table is
// explicit.
var mimeByExtension = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
}

// CollectImages enumerates the page images directly inside a chapter
// folder, sorted case-insensitively by file name so page order is
// stable across filesystems. Unsupported files are skipped silently;
// a missing or empty folder yields a nil slice with a warning.
func (s *Service) CollectImages(folderPath string) []core.PageImage {
	entries, err := os.ReadDir(folderPath)
	if err != nil {
		s.Logger.Warn("cannot read chapter folder %s: %v", folderPath, err)
		return nil
	}

	var images []core.PageImage
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		mimeType, ok := mimeByExtension[ext]
		if !ok {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			s.Logger.Warn("cannot stat image %s: %v", entry.Name(), err)
			continue
		}
		images = append(images, core.PageImage{
			Path:     filepath.Join(folderPath, entry.Name()),
			Name:     entry.Name(),
			Size:     fi.Size(),
			MIMEType: mimeType,
		})
	}

	sort.Slice(images, func(i, j int) bool {
		return strings.ToLower(images[i].Name) < strings.ToLower(images[j].Name)
	})

	if len(images) == 0 {
		s.Logger.Warn("no image files found in folder %s", folderPath)
	}
	return images
}
