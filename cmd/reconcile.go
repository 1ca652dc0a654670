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
	"Archivist/pkg/engine/ledger"
	"Archivist/pkg/errors"
	"os"

	"github.com/spf13/cobra"
)

var reconcileAll bool

var reconcileCmd = &cobra.Command{
	Use:   "reconcile [manga-title]",
	Short: "Align reader metadata with the upload ledger",
	Long: "For every chapter in a manga's upload ledger, ensure info.json carries the " +
		"matching proxy URL, inserting missing chapters and correcting stale links. " +
		"Documents that already agree are left untouched.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var titles []string
		switch {
		case reconcileAll:
			entries, err := os.ReadDir(appEngine.Metadata.BaseDir)
			if err != nil {
				return err
			}
			for _, e := range entries {
				if e.IsDir() {
					titles = append(titles, e.Name())
				}
			}
		case len(args) == 1:
			titles = args
		default:
			return errors.New("provide a manga title, or use --all")
		}

		for _, title := range titles {
			led := ledger.Load(appEngine.Metadata.LedgerPath(title), appEngine.Logger)
			if led.Len() == 0 {
				appEngine.Formatter.PrintWarning("No upload records for %q, nothing to reconcile", title)
				continue
			}

			changed, err := appEngine.Metadata.Reconcile(title, led)
			if err != nil {
				return err
			}
			if changed == 0 {
				appEngine.Formatter.PrintInfo("%q already consistent", title)
			} else {
				appEngine.Formatter.PrintSuccess("Reconciled %q: %d chapter(s) updated", title, changed)
			}
		}
		return nil
	},
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileAll, "all", false, "Reconcile every manga in the output directory")
	rootCmd.AddCommand(reconcileCmd)
}
