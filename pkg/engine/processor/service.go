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

// Package processor drives the full pipeline for one or more manga
// folders: scan, group selection, chapter upload, ledger bookkeeping,
// and metadata persistence, with per-chapter error containment so one
// bad chapter never sinks the run.
package processor

import (
	"Archivist/pkg/cli"
	"Archivist/pkg/config"
	"Archivist/pkg/engine/core"
	"Archivist/pkg/engine/ledger"
	"Archivist/pkg/engine/listgen"
	"Archivist/pkg/engine/logger"
	"Archivist/pkg/engine/metadata"
	"Archivist/pkg/engine/parser"
	"Archivist/pkg/engine/prompt"
	"Archivist/pkg/engine/upload"
	"Archivist/pkg/errors"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// checkpointInterval is how many successful chapters pass between
// intermediate metadata saves.
const checkpointInterval = 5

// Uploader uploads one chapter's pages and reports the outcome.
type Uploader interface {
	UploadChapter(ctx context.Context, images []core.PageImage, chapterName string, progress upload.ProgressFunc) core.UploadResult
}

// AlbumAdmin covers the API operations the processor needs beyond
// uploading: connectivity checks and album deletion for re-uploads.
type AlbumAdmin interface {
	TestAuth(ctx context.Context) bool
	DeleteAlbum(ctx context.Context, albumID string) error
}

// Service orchestrates manga processing end to end.
type Service struct {
	Parser    *parser.Service
	Uploader  Uploader
	Albums    AlbumAdmin
	Metadata  *metadata.Manager
	ListGen   *listgen.Service
	Prompter  prompt.Prompter
	Formatter *cli.Formatter
	Logger    logger.Logger
	Config    *config.Config

	// Run counters across all processed mangas.
	Processed int
	Failed    int
}

var (
	volumeFolderPattern  = regexp.MustCompile(`(?i)^(?:v|vol|volume)\s*\d+`)
	chapterFolderPattern = regexp.MustCompile(`(?i)^(?:c|ch|chapter)\s*\d+|^\d+$`)
)

// ScanChapters walks a manga folder and returns its chapters in
// order. Folders named like volumes are descended one level with the
// volume number as a hint; otherwise the folder is treated as a flat
// chapter list. Chapters without images are dropped with a warning.
func (s *Service) ScanChapters(mangaDir string) []core.Chapter {
	entries, err := os.ReadDir(mangaDir)
	if err != nil {
		s.Formatter.PrintError("Cannot read manga folder %s: %v", mangaDir, err)
		return nil
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)

	if len(dirs) == 0 {
		s.Formatter.PrintWarning("No subdirectories found in %s", mangaDir)
		return nil
	}

	var volumeDirs []string
	for _, name := range dirs {
		if volumeFolderPattern.MatchString(name) {
			volumeDirs = append(volumeDirs, name)
		}
	}

	var chapters []core.Chapter
	if len(volumeDirs) > 0 {
		s.Logger.Info("found %d volume folders in %s", len(volumeDirs), mangaDir)
		for _, name := range volumeDirs {
			volumeHint, _, _ := s.Parser.ParseFolderName(name)
			chapters = append(chapters, s.scanVolume(filepath.Join(mangaDir, name), volumeHint)...)
		}
		return chapters
	}

	var chapterDirs []string
	for _, name := range dirs {
		if chapterFolderPattern.MatchString(name) {
			chapterDirs = append(chapterDirs, name)
		}
	}
	if len(chapterDirs) == 0 {
		// Nothing names itself like a chapter; take every folder and
		// let the parser sort it out.
		s.Formatter.PrintWarning("No obvious chapter folders found, treating all folders as chapters")
		chapterDirs = dirs
	}

	for _, name := range chapterDirs {
		ch := s.Parser.ParseChapter(filepath.Join(mangaDir, name), "")
		if len(ch.Images) == 0 {
			s.Formatter.PrintWarning("No images found in chapter folder: %s", ch.FolderPath)
			continue
		}
		chapters = append(chapters, ch)
	}
	return chapters
}

func (s *Service) scanVolume(volumeDir, volumeHint string) []core.Chapter {
	entries, err := os.ReadDir(volumeDir)
	if err != nil {
		s.Formatter.PrintError("Cannot read volume folder %s: %v", volumeDir, err)
		return nil
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var chapters []core.Chapter
	for _, name := range names {
		ch := s.Parser.ParseChapter(filepath.Join(volumeDir, name), volumeHint)
		if len(ch.Images) == 0 {
			s.Formatter.PrintWarning("No images found in chapter folder: %s", ch.FolderPath)
			continue
		}
		chapters = append(chapters, ch)
	}
	if len(chapters) == 0 {
		s.Formatter.PrintWarning("No chapter folders found in volume: %s", volumeDir)
	}
	return chapters
}

// ProcessManga runs the full pipeline for one manga folder. The
// context doubles as the interrupt signal: cancellation between
// chapters checkpoints the metadata before returning.
func (s *Service) ProcessManga(ctx context.Context, mangaDir string) error {
	details := s.Parser.LoadMangaDetails(mangaDir)
	mangaTitle := details.Title
	s.Formatter.PrintInfo("Processing manga: %s", mangaTitle)

	chapters := s.ScanChapters(mangaDir)
	if len(chapters) == 0 {
		s.Formatter.PrintWarning("No chapters found in %s", mangaDir)
		return nil
	}
	s.Formatter.PrintInfo("Found %d chapters to process", len(chapters))

	info := s.Metadata.GetOrCreate(mangaTitle)
	info.Title = details.Title
	info.Description = details.Description
	info.Artist = details.Artist
	info.Author = details.Author
	info.Cover = details.Cover

	groups := details.Groups
	if len(groups) == 0 {
		groups = info.LegacyGroups
	}
	if len(groups) == 0 {
		s.Formatter.PrintWarning("No groups defined, using default group")
		groups = []string{"Default"}
	}

	led := ledger.Load(s.Metadata.LedgerPath(mangaTitle), s.Logger)

	toProcess, err := s.selectChapters(chapters, led)
	if err != nil {
		return fmt.Errorf("re-upload selection: %w", err)
	}
	if len(toProcess) == 0 {
		s.Formatter.PrintInfo("No chapters to process (all existing chapters skipped)")
		return nil
	}

	successful, failed := 0, 0
	for _, ch := range toProcess {
		if ctx.Err() != nil {
			s.Formatter.PrintWarning("Processing interrupted, saving progress...")
			s.checkpoint(mangaTitle, info)
			return ctx.Err()
		}

		if err := s.processChapter(ctx, ch, info, led, groups, mangaTitle); err != nil {
			if errors.Is(err, context.Canceled) {
				s.checkpoint(mangaTitle, info)
				return err
			}
			failed++
			s.Failed++
			s.Formatter.PrintError("Failed to process chapter %s: %v", ch.Label, err)
			s.Logger.Error("chapter %s in %s failed: %v", ch.Label, ch.FolderPath, err)
			continue
		}

		successful++
		s.Processed++
		if successful%checkpointInterval == 0 {
			s.checkpoint(mangaTitle, info)
		}
	}

	if err := s.Metadata.Save(mangaTitle, info); err != nil {
		s.Formatter.PrintError("Failed to save metadata for %q: %v", mangaTitle, err)
		s.writeBackup(mangaTitle, info)
	} else {
		s.Formatter.PrintSuccess("Updated metadata for %q (%d successful, %d failed)", mangaTitle, successful, failed)
	}

	if successful > 0 {
		s.generateMangaList()
		s.displayMangaURLs(mangaTitle)
	}
	s.Formatter.PrintRunSummary(mangaTitle, successful, failed, led)
	return nil
}

// selectChapters partitions scanned chapters into new ones and
// already-uploaded ones, asks which of the latter to re-upload, and
// returns the combined work list.
func (s *Service) selectChapters(chapters []core.Chapter, led *ledger.Ledger) ([]core.Chapter, error) {
	var toProcess []core.Chapter
	var existing []string
	for _, ch := range chapters {
		if led.IsUploaded(ch.Label) {
			existing = append(existing, ch.Label)
		} else {
			toProcess = append(toProcess, ch)
		}
	}

	if len(existing) == 0 {
		return toProcess, nil
	}

	picked, err := s.Prompter.SelectMany(
		fmt.Sprintf("%d chapter(s) already uploaded. Select chapters to re-upload:", len(existing)),
		existing,
	)
	if err != nil {
		return nil, err
	}

	reupload := make(map[string]struct{}, len(picked))
	for _, label := range picked {
		reupload[label] = struct{}{}
	}
	for _, ch := range chapters {
		if _, ok := reupload[ch.Label]; ok {
			toProcess = append(toProcess, ch)
		}
	}

	s.Formatter.PrintInfo("Processing %d chapters (%d re-uploads, %d new)",
		len(toProcess), len(picked), len(toProcess)-len(picked))
	return toProcess, nil
}

func (s *Service) processChapter(ctx context.Context, ch core.Chapter, info *metadata.MangaInfo, led *ledger.Ledger, groups []string, mangaTitle string) error {
	images := s.filterMissingImages(ch)
	if len(images) == 0 {
		s.Formatter.PrintWarning("Chapter %s has no valid images, skipping", ch.Label)
		return nil
	}

	// A selected re-upload replaces the old album outright. Deletion
	// failure is tolerated; the record must go either way so a crash
	// mid-upload cannot leave the ledger pointing at a dead album.
	if rec, ok := led.Get(ch.Label); ok {
		s.Formatter.PrintInfo("Deleting old album for chapter %s", ch.Label)
		if err := s.Albums.DeleteAlbum(ctx, rec.AlbumID); err != nil {
			s.Formatter.PrintWarning("Could not delete old album for chapter %s: %v", ch.Label, err)
		} else {
			s.Formatter.PrintSuccess("Deleted old album %s", rec.AlbumID)
		}
		if _, err := led.Remove(ch.Label); err != nil {
			return fmt.Errorf("removing stale upload record: %w", err)
		}
	}

	group, err := prompt.ChooseGroup(s.Prompter, groups, ch.DisplayName())
	if err != nil {
		return fmt.Errorf("group selection: %w", err)
	}

	// Checkpoint before the upload so a crash mid-transfer loses no
	// metadata accumulated so far.
	s.checkpoint(mangaTitle, info)

	var result core.UploadResult
	for attempt := 0; attempt < 2; attempt++ {
		result = s.Uploader.UploadChapter(ctx, images, ch.AlbumTitle(), nil)
		if result.Success {
			break
		}
		if ctx.Err() != nil {
			return context.Canceled
		}
		if attempt == 0 {
			s.Formatter.PrintWarning("Upload attempt failed for %s, retrying: %s", ch.Label, result.ErrorMessage)
		}
	}
	if !result.Success {
		return fmt.Errorf("upload failed: %s", result.ErrorMessage)
	}

	s.Metadata.UpdateChapter(info, ch.Label, ch.Title, ch.Volume, result.AlbumURL, group)

	if err := led.Record(ch, result, group); err != nil {
		// The album exists; losing the record only risks a duplicate
		// on the next run.
		s.Formatter.PrintWarning("Failed to record upload for %s: %v", ch.Label, err)
	}

	s.Formatter.PrintSuccess("Uploaded %s-%s: %s", ch.Volume, ch.Label, result.AlbumURL)
	return nil
}

// filterMissingImages drops pages whose files vanished between scan
// and upload, naming the first few.
func (s *Service) filterMissingImages(ch core.Chapter) []core.PageImage {
	var valid []core.PageImage
	var missing []string
	for _, img := range ch.Images {
		if _, err := os.Stat(img.Path); err != nil {
			missing = append(missing, img.Path)
			continue
		}
		valid = append(valid, img)
	}

	if len(missing) > 0 {
		s.Formatter.PrintWarning("Chapter %s has %d missing image files", ch.Label, len(missing))
		for i, path := range missing {
			if i == 3 {
				s.Formatter.PrintWarning("  ... and %d more", len(missing)-3)
				break
			}
			s.Formatter.PrintWarning("  Missing: %s", path)
		}
	}
	return valid
}

// ProcessAll runs the pipeline over every manga folder directly under
// baseDir, skipping hidden and underscore-prefixed directories and
// the metadata output tree.
func (s *Service) ProcessAll(ctx context.Context, baseDir string) error {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return fmt.Errorf("reading base directory %s: %w", baseDir, err)
	}

	outputBase := filepath.Clean(s.Metadata.BaseDir)

	var mangaDirs []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		full := filepath.Join(baseDir, name)
		if filepath.Clean(full) == outputBase {
			continue
		}
		mangaDirs = append(mangaDirs, full)
	}
	sort.Strings(mangaDirs)

	if len(mangaDirs) == 0 {
		s.Formatter.PrintWarning("No manga folders found in %s", baseDir)
		return nil
	}
	s.Formatter.PrintInfo("Found %d potential manga folders", len(mangaDirs))

	processed, failed := 0, 0
	for i, dir := range mangaDirs {
		s.Formatter.PrintInfo("Processing manga %d/%d: %s", i+1, len(mangaDirs), filepath.Base(dir))

		if err := s.ProcessManga(ctx, dir); err != nil {
			if errors.Is(err, context.Canceled) {
				s.Formatter.PrintWarning("Processing interrupted by user")
				break
			}
			failed++
			s.Formatter.PrintError("Failed to process manga folder %s: %v", dir, err)
			continue
		}
		processed++
	}

	s.Formatter.PrintInfo("Processing complete: %d manga processed, %d failed", processed, failed)
	if processed > 0 {
		s.generateMangaList()
	}
	return nil
}

// TestConnections verifies the API credentials work.
func (s *Service) TestConnections(ctx context.Context) bool {
	s.Formatter.PrintInfo("Testing ImgChest API connection...")
	if s.Albums.TestAuth(ctx) {
		s.Formatter.PrintSuccess("ImgChest API connection OK")
		return true
	}
	s.Formatter.PrintError("ImgChest API connection failed")
	return false
}

// checkpoint persists metadata mid-run. Failure is logged, not fatal.
func (s *Service) checkpoint(mangaTitle string, info *metadata.MangaInfo) {
	if err := s.Metadata.Save(mangaTitle, info); err != nil {
		s.Formatter.PrintWarning("Failed to save progress checkpoint for %q: %v", mangaTitle, err)
	}
}

// writeBackup dumps the metadata next to the working directory when
// the regular save path is broken.
func (s *Service) writeBackup(mangaTitle string, info *metadata.MangaInfo) {
	backupPath := fmt.Sprintf("backup_%s_metadata.json", mangaTitle)
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		s.Formatter.PrintError("Failed to serialize metadata backup: %v", err)
		return
	}
	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		s.Formatter.PrintError("Failed to save metadata backup: %v", err)
		return
	}
	s.Formatter.PrintInfo("Saved metadata backup to: %s", backupPath)
}

func (s *Service) generateMangaList() {
	if s.ListGen == nil || s.Config.GitHubUsername == "" || s.Config.GitHubRepo == "" {
		return
	}
	s.Formatter.PrintInfo("Updating manga list...")
	if _, err := s.ListGen.Generate("manga-list.rst", s.Config.GitHubUsername, s.Config.GitHubRepo, s.Config.GitHubBranch); err != nil {
		s.Formatter.PrintWarning("Failed to update manga list: %v", err)
	}
}

func (s *Service) displayMangaURLs(mangaTitle string) {
	if s.Config.GitHubUsername == "" || s.Config.GitHubRepo == "" {
		return
	}
	branch := s.Config.GitHubBranch
	if branch == "" {
		branch = "main"
	}

	gistURL := fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/mangas/%s/info.json",
		s.Config.GitHubUsername, s.Config.GitHubRepo, branch, mangaTitle)
	cubariURL := listgen.CubariURL(s.Config.GitHubUsername, s.Config.GitHubRepo, branch, mangaTitle)

	s.Formatter.PrintInfo("Manga URLs:")
	s.Formatter.PrintSuccess("Gist (info.json): %s", gistURL)
	s.Formatter.PrintSuccess("Cubari Reader: %s", cubariURL)
}
