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
	"Archivist/pkg/errors"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var uploadAll bool

var uploadCmd = &cobra.Command{
	Use:   "upload [manga-folder]",
	Short: "Upload manga chapters to ImgChest",
	Long: "Upload every chapter in a manga folder as ImgChest albums, recording each upload " +
		"in the ledger and updating the manga's reader metadata. With --all, every manga " +
		"folder under the given directory (default: current directory) is processed.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appEngine.Config.RequireAPIKey(); err != nil {
			return err
		}

		// Ctrl-C lands as context cancellation so in-flight state gets
		// checkpointed instead of torn down.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if !appEngine.Processor.TestConnections(ctx) {
			return errors.New("cannot reach the ImgChest API, check IMGCHEST_API_KEY")
		}

		if uploadAll {
			baseDir := "."
			if len(args) == 1 {
				baseDir = args[0]
			}
			return appEngine.Processor.ProcessAll(ctx, baseDir)
		}

		if len(args) == 0 {
			return errors.New("provide a manga folder, or use --all to process a directory of mangas")
		}

		err := appEngine.Processor.ProcessManga(ctx, args[0])
		if errors.Is(err, context.Canceled) {
			appEngine.Formatter.PrintWarning("Upload interrupted, progress saved.")
			return nil
		}
		return err
	},
}

func init() {
	uploadCmd.Flags().BoolVar(&uploadAll, "all", false, "Process every manga folder under the directory")
	rootCmd.AddCommand(uploadCmd)
}
