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

// MakeBatches partitions an ordered image list into upload batches by
// greedy bin-packing: images accumulate into the current batch while
// the next image still fits under byteCeiling, then a new batch
// starts with the image that would have overflowed. A countCeiling of
// zero means no per-batch image count limit.
//
// Batching is deterministic: the same input and ceilings always yield
// the same batch boundaries. The orchestrator relies on this to
// resume from the remaining images after a mid-chapter failure.
//
// An image whose size alone exceeds byteCeiling can never form a
// batch and is rejected up front, before any batch is built.
func MakeBatches(images []PageImage, byteCeiling int64, countCeiling int) ([]Batch, error) {
	if byteCeiling <= 0 {
		return nil, fmt.Errorf("byte ceiling must be positive, got %d", byteCeiling)
	}

	for _, img := range images {
		if img.Size > byteCeiling {
			return nil, fmt.Errorf("image %s (%d bytes) exceeds the %d byte upload ceiling", img.Name, img.Size, byteCeiling)
		}
	}

	var batches []Batch
	var current Batch

	for _, img := range images {
		full := current.Size+img.Size > byteCeiling
		if countCeiling > 0 && len(current.Images) >= countCeiling {
			full = true
		}
		if full && len(current.Images) > 0 {
			batches = append(batches, current)
			current = Batch{}
		}
		current.Images = append(current.Images, img)
		current.Size += img.Size
	}
	if len(current.Images) > 0 {
		batches = append(batches, current)
	}

	return batches, nil
}
