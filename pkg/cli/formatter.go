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

package cli

import (
	"Archivist/pkg/engine/ledger"
	"Archivist/pkg/errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Formatter handles all CLI output formatting
type Formatter struct {
	// Writer is where the formatted output will be written
	Writer io.Writer

	// DisableColor disables colorized output
	DisableColor bool

	// Styles for different elements
	HeaderStyle    *color.Color
	SuccessStyle   *color.Color
	ErrorStyle     *color.Color
	WarningStyle   *color.Color
	InfoStyle      *color.Color
	SecondaryStyle *color.Color
	PathStyle      *color.Color
}

// NewFormatter creates a new CLI formatter with default settings
func NewFormatter() *Formatter {
	f := &Formatter{
		Writer: os.Stdout,
	}
	f.initStyles()
	return f
}

func (f *Formatter) initStyles() {
	if f.DisableColor {
		color.NoColor = true
	}

	f.HeaderStyle = color.New(color.Bold, color.FgCyan)
	f.SuccessStyle = color.New(color.FgGreen)
	f.ErrorStyle = color.New(color.FgRed)
	f.WarningStyle = color.New(color.FgYellow)
	f.InfoStyle = color.New(color.FgBlue)
	f.SecondaryStyle = color.New(color.FgHiBlack)
	f.PathStyle = color.New(color.FgHiGreen)
}

// PrintHeader prints a header section
func (f *Formatter) PrintHeader(text string) {
	_, _ = f.HeaderStyle.Fprintln(f.Writer, text)
	f.PrintDivider()
}

// PrintDivider prints a horizontal divider
func (f *Formatter) PrintDivider() {
	_, _ = f.SecondaryStyle.Fprintln(f.Writer, strings.Repeat("-", 60))
}

// PrintSuccess prints a success message
func (f *Formatter) PrintSuccess(format string, args ...any) {
	_, _ = f.SuccessStyle.Fprintf(f.Writer, format+"\n", args...)
}

// PrintError prints an error message
func (f *Formatter) PrintError(format string, args ...any) {
	_, _ = f.ErrorStyle.Fprintf(f.Writer, format+"\n", args...)
}

// PrintWarning prints a warning message
func (f *Formatter) PrintWarning(format string, args ...any) {
	_, _ = f.WarningStyle.Fprintf(f.Writer, format+"\n", args...)
}

// PrintInfo prints an informational message
func (f *Formatter) PrintInfo(format string, args ...any) {
	_, _ = f.InfoStyle.Fprintf(f.Writer, format+"\n", args...)
}

// PrintPath prints a filesystem path with a label
func (f *Formatter) PrintPath(label, path string) {
	_, _ = fmt.Fprintf(f.Writer, "%s: %s\n", label, f.PathStyle.Sprint(path))
}

// PrintTable prints data in a table format
func (f *Formatter) PrintTable(headers []string, data [][]string) {
	table := tablewriter.NewTable(f.Writer)
	table.Configure(func(tableConfig *tablewriter.Config) {
		tableConfig.Header.Alignment.Global = tw.AlignLeft
		tableConfig.Row.Alignment.Global = tw.AlignLeft
		tableConfig.Header.Padding.Global = tw.Padding{
			Left:  " ",
			Right: " ",
		}
		tableConfig.Row.Padding.Global = tw.Padding{
			Left:  " ",
			Right: " ",
		}
	})

	table.Header(headers)
	if err := table.Bulk(data); err != nil {
		return
	}
	_ = table.Render()
}

// PrintUploadedChapters renders the ledger as a table, one row per
// uploaded chapter in label order.
func (f *Formatter) PrintUploadedChapters(led *ledger.Ledger) {
	if led.Len() == 0 {
		f.PrintWarning("No uploaded chapters recorded.")
		return
	}

	var rows [][]string
	for _, label := range led.Labels() {
		rec, _ := led.Get(label)
		rows = append(rows, []string{
			label,
			rec.ChapterTitle,
			rec.Group,
			strconv.Itoa(rec.ImageCount),
			rec.AlbumURL,
			rec.Timestamp,
		})
	}
	f.PrintTable([]string{"Chapter", "Title", "Group", "Images", "Album", "Uploaded"}, rows)
}

// PrintRunSummary prints the end-of-run statistics for one manga.
func (f *Formatter) PrintRunSummary(mangaTitle string, processed, failed int, led *ledger.Ledger) {
	f.PrintDivider()
	f.PrintHeader(fmt.Sprintf("Summary for %s", mangaTitle))

	s := led.Summarize()
	f.PrintTable(
		[]string{"Processed", "Failed", "Total Chapters", "Total Images", "Groups"},
		[][]string{{
			strconv.Itoa(processed),
			strconv.Itoa(failed),
			strconv.Itoa(s.TotalChapters),
			strconv.Itoa(s.TotalImages),
			strconv.Itoa(s.UniqueGroups),
		}},
	)

	if failed > 0 {
		f.PrintWarning("%d chapter(s) failed, see the log for details.", failed)
	}
}

// HandleError formats any error for the terminal. Returns true if an
// error was handled.
func (f *Formatter) HandleError(err error) bool {
	if err == nil {
		return false
	}

	var remote *errors.RemoteError
	if errors.As(err, &remote) {
		f.PrintError("[API %d] %s: %s", remote.StatusCode, remote.Endpoint, remote.Message)
		return true
	}

	f.PrintError("[ERROR] %s", err.Error())
	return true
}
