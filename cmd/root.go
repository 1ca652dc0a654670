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
	"Archivist/pkg/config"
	"Archivist/pkg/engine"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verboseMode    bool
	outputDir      string
	nonInteractive bool

	appEngine *engine.Engine
	version   = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "archivist",
	Short: "Archivist uploads manga chapters to ImgChest and maintains reader metadata.",
	Long: "Archivist scans manga folders, uploads each chapter's pages as an ImgChest album, " +
		"and keeps Cubari-compatible info.json metadata and an upload ledger in sync.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		appEngine = engine.New(cfg, outputDir, !nonInteractive)
		appEngine.SetVerboseMode(verboseMode)
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		// When no command is specified, display help
		if err := cmd.Help(); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func Execute() {
	err := rootCmd.Execute()
	if appEngine != nil {
		_ = appEngine.Shutdown()
	}
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "Mirror debug logging to the terminal")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "mangas", "Directory holding per-manga metadata and ledgers")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Never prompt; skip re-uploads and pick defaults")
}
