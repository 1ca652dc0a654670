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

package core

import "fmt"

const (
	// MaxBatchBytes is the ImgChest per-request payload ceiling.
	MaxBatchBytes int64 = 5 << 20

	// MaxBatchImages is the largest number of images sent in one
	// request. The orchestrator shrinks from here on 413 responses.
	MaxBatchImages = 20

	// AlbumHost is the public host albums are served from.
	AlbumHost = "imgchest.com"

	// HostSlug is the host identifier used in proxy URLs written to
	// reader-facing metadata.
	HostSlug = "imgchest"
)

// PageImage is a filesystem reference to one page image. Immutable
// once enumerated.
type PageImage struct {
	Path     string
	Name     string
	Size     int64
	MIMEType string
}

// Chapter identifies one unit of upload work. Label is the dedup key
// across the upload ledger; two chapters with the same label are the
// same upload target regardless of volume or title.
type Chapter struct {
	Volume     string
	Label      string
	Title      string
	FolderPath string
	Images     []PageImage
}

// DisplayName renders the "volume-label (title)" form used in prompts
// and album titles.
func (c Chapter) DisplayName() string {
	if c.Title != "" {
		return fmt.Sprintf("%s-%s (%s)", c.Volume, c.Label, c.Title)
	}
	return fmt.Sprintf("%s-%s", c.Volume, c.Label)
}

// AlbumTitle renders the remote album title for this chapter.
func (c Chapter) AlbumTitle() string {
	return fmt.Sprintf("%s-%s - %s", c.Volume, c.Label, c.Title)
}

// Batch is a contiguous sub-sequence of a chapter's images plus its
// cumulative byte size. No batch exceeds the byte ceiling it was
// built with.
type Batch struct {
	Images []PageImage
	Size   int64
}

// Album is the remote artifact: host-assigned identifier and the
// public URL derived from it.
type Album struct {
	ID  string
	URL string
}

// AlbumURL derives the public album URL from a host-assigned id.
func AlbumURL(id string) string {
	return fmt.Sprintf("https://%s/p/%s", AlbumHost, id)
}

// ProxyURL derives the reader-facing proxy path from a host-assigned
// album id. This indirection is what gets written into info.json,
// decoupling stored metadata from the literal remote host.
func ProxyURL(albumID string) string {
	return fmt.Sprintf("/proxy/api/%s/chapter/%s", HostSlug, albumID)
}

// UploadResult is the outcome of one chapter upload attempt. On
// success AlbumURL and AlbumID are always both present. On failure
// they carry whatever album identity was established before the
// terminal error, so the caller can keep or delete the partial album.
type UploadResult struct {
	Success      bool
	AlbumURL     string
	AlbumID      string
	TotalImages  int
	ErrorMessage string
}
