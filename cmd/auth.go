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

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Verify the ImgChest API credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appEngine.Config.RequireAPIKey(); err != nil {
			return err
		}
		if !appEngine.Processor.TestConnections(context.Background()) {
			return errors.New("authentication failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
}
