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

	"github.com/spf13/cobra"
)

var listOutput string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Regenerate the manga catalog document",
	Long: "Rebuild manga-list.rst from every metadata document in the output directory, " +
		"with Gist and Cubari reader links derived from the configured GitHub repository.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appEngine.Config
		if cfg.GitHubUsername == "" || cfg.GitHubRepo == "" {
			return errors.New("GH_USERNAME and GH_REPO must be configured to generate reader links")
		}

		count, err := appEngine.ListGen.Generate(listOutput, cfg.GitHubUsername, cfg.GitHubRepo, cfg.GitHubBranch)
		if err != nil {
			return err
		}
		appEngine.Formatter.PrintSuccess("Generated %s with %d manga(s)", listOutput, count)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listOutput, "file", "manga-list.rst", "Output file for the catalog")
	rootCmd.AddCommand(listCmd)
}
