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

package cmd

import (
	"Archivist/pkg/engine/core"
	"Archivist/pkg/engine/ledger"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan <manga-folder>",
	Short: "Preview what an upload would do, without uploading",
	Long: "Scan a manga folder and show every chapter that would be uploaded: inferred " +
		"volume and chapter numbers, page counts, planned batch counts, and whether the " +
		"chapter is already in the upload ledger.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mangaDir := args[0]
		details := appEngine.Parser.LoadMangaDetails(mangaDir)

		chapters := appEngine.Processor.ScanChapters(mangaDir)
		if len(chapters) == 0 {
			appEngine.Formatter.PrintWarning("No chapters found in %s", mangaDir)
			return nil
		}

		led := ledger.Load(appEngine.Metadata.LedgerPath(details.Title), appEngine.Logger)

		appEngine.Formatter.PrintHeader(fmt.Sprintf("Scan results for %s", details.Title))

		var rows [][]string
		for _, ch := range chapters {
			var totalBytes int64
			for _, img := range ch.Images {
				totalBytes += img.Size
			}

			var batchPlan string
			if batches, err := core.MakeBatches(ch.Images, core.MaxBatchBytes, core.MaxBatchImages); err != nil {
				batchPlan = "oversized image"
			} else {
				batchPlan = strconv.Itoa(len(batches))
			}

			status := "new"
			if led.IsUploaded(ch.Label) {
				status = "uploaded"
			}

			rows = append(rows, []string{
				ch.Label,
				ch.Volume,
				ch.Title,
				strconv.Itoa(len(ch.Images)),
				fmt.Sprintf("%.1f MB", float64(totalBytes)/(1<<20)),
				batchPlan,
				status,
			})
		}
		appEngine.Formatter.PrintTable(
			[]string{"Chapter", "Volume", "Title", "Pages", "Size", "Batches", "Status"},
			rows,
		)

		if len(details.Groups) > 0 {
			appEngine.Formatter.PrintInfo("Groups: %v", details.Groups)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
