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

package upload

import (
	"Archivist/pkg/engine/core"
	"Archivist/pkg/engine/logger"
	"Archivist/pkg/errors"
	"context"
	"fmt"
)

// AlbumClient is the remote surface the orchestrator drives. The
// network client satisfies it; tests substitute fakes.
type AlbumClient interface {
	CreateAlbum(ctx context.Context, title string, batch core.Batch) (core.Album, error)
	AddImages(ctx context.Context, albumID string, batch core.Batch) error
}

// ProgressFunc receives monotonic progress after each committed
// batch: images durably added to the album so far, out of the total.
type ProgressFunc func(committed, total int)

// Service uploads one chapter's full page set as a single album,
// shrinking its batch size when the host rejects a payload as too
// large and resuming from the last committed batch rather than
// restarting.
type Service struct {
	Client         AlbumClient
	Logger         logger.Logger
	ByteCeiling    int64
	MaxBatchImages int
}

// NewService creates an upload service with the host's default
// ceilings.
func NewService(client AlbumClient, log logger.Logger) *Service {
	return &Service{
		Client:         client,
		Logger:         log,
		ByteCeiling:    core.MaxBatchBytes,
		MaxBatchImages: core.MaxBatchImages,
	}
}

// roundOutcome is the typed result of one batching round.
type roundOutcome int

const (
	roundDone   roundOutcome = iota // all remaining images committed
	roundShrink                     // rebatch remaining images at the reduced size
	roundFatal                      // terminal; the result carries any partial album identity
)

// uploadState is the mutable state threaded through one UploadChapter
// call. remaining always holds exactly the images not yet committed
// to the album, which is what makes shrink-and-retry resumable.
type uploadState struct {
	title     string
	remaining []core.PageImage
	batchSize int
	committed int
	album     core.Album
}

// UploadChapter uploads all images for a chapter in batches. The
// returned result is never partially populated on success: album URL
// and id are both present, or Success is false. Failed results still
// carry whatever album identity was established, so callers can keep
// or delete the partial album.
func (s *Service) UploadChapter(ctx context.Context, images []core.PageImage, chapterName string, progress ProgressFunc) core.UploadResult {
	total := len(images)
	if total == 0 {
		return core.UploadResult{
			Success:      false,
			ErrorMessage: "no images provided for upload",
		}
	}

	// A single image over the byte ceiling can never be uploaded at
	// any batch size; reject before the first network call.
	for _, img := range images {
		if img.Size > s.ByteCeiling {
			return core.UploadResult{
				Success:      false,
				TotalImages:  total,
				ErrorMessage: fmt.Sprintf("image %s (%d bytes) too large for upload", img.Name, img.Size),
			}
		}
	}

	st := &uploadState{
		title:     chapterName,
		remaining: images,
		batchSize: s.MaxBatchImages,
	}

	for len(st.remaining) > 0 {
		outcome, err := s.runRound(ctx, st, total, progress)
		switch outcome {
		case roundShrink:
			s.Logger.Info("payload rejected as too large, retrying %d remaining images with batch size %d",
				len(st.remaining), st.batchSize)
		case roundFatal:
			return core.UploadResult{
				Success:      false,
				AlbumURL:     st.album.URL,
				AlbumID:      st.album.ID,
				TotalImages:  total,
				ErrorMessage: err.Error(),
			}
		}
	}

	s.Logger.Info("uploaded %d images for %q to album %s", total, chapterName, st.album.ID)
	return core.UploadResult{
		Success:     true,
		AlbumURL:    st.album.URL,
		AlbumID:     st.album.ID,
		TotalImages: total,
	}
}

// runRound batches the remaining images at the current batch size and
// commits them in order. The first committed batch of the chapter
// creates the album; every later batch appends to it.
func (s *Service) runRound(ctx context.Context, st *uploadState, total int, progress ProgressFunc) (roundOutcome, error) {
	batches, err := core.MakeBatches(st.remaining, s.ByteCeiling, st.batchSize)
	if err != nil {
		return roundFatal, err
	}

	for _, batch := range batches {
		if st.album.ID == "" {
			album, err := s.Client.CreateAlbum(ctx, st.title, batch)
			if err != nil {
				return s.onBatchError(st, err)
			}
			st.album = album
		} else {
			if err := s.Client.AddImages(ctx, st.album.ID, batch); err != nil {
				return s.onBatchError(st, err)
			}
		}

		st.remaining = st.remaining[len(batch.Images):]
		st.committed += len(batch.Images)
		if progress != nil {
			progress(st.committed, total)
		}
	}

	return roundDone, nil
}

// onBatchError maps a failed batch onto the next transition. Only the
// payload-too-large condition is structural; everything else is
// terminal for this chapter. Committed images stay in the album
// either way.
func (s *Service) onBatchError(st *uploadState, err error) (roundOutcome, error) {
	if !errors.IsPayloadTooLarge(err) {
		return roundFatal, err
	}

	if st.batchSize <= 1 {
		return roundFatal, errors.New("image too large for upload")
	}
	st.batchSize /= 2
	if st.batchSize < 1 {
		st.batchSize = 1
	}
	return roundShrink, nil
}
