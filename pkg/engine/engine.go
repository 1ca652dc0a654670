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

package engine

import (
	"Archivist/pkg/cli"
	"Archivist/pkg/config"
	"Archivist/pkg/engine/listgen"
	"Archivist/pkg/engine/logger"
	"Archivist/pkg/engine/metadata"
	"Archivist/pkg/engine/network"
	"Archivist/pkg/engine/parser"
	"Archivist/pkg/engine/processor"
	"Archivist/pkg/engine/prompt"
	"Archivist/pkg/engine/upload"
	"os"
	"path/filepath"
)

// Engine wires the services together for the command layer.
type Engine struct {
	Config    *config.Config
	Network   *network.Client
	Parser    *parser.Service
	Upload    *upload.Service
	Metadata  *metadata.Manager
	ListGen   *listgen.Service
	Processor *processor.Service
	Formatter *cli.Formatter
	Logger    logger.Logger

	verboseMode bool
}

// New creates an Engine with default configuration. outputDir is
// where per-manga metadata and ledgers live; interactive selects the
// terminal prompter versus the accept-nothing automatic one.
func New(cfg *config.Config, outputDir string, interactive bool) *Engine {
	logFile := ""
	if homeDir, err := os.UserHomeDir(); err == nil {
		logDir := filepath.Join(homeDir, ".archivist", "logs")
		if err := os.MkdirAll(logDir, 0755); err == nil {
			logFile = filepath.Join(logDir, "archivist.log")
		}
	}
	log := logger.NewService(logFile)

	networkClient := network.NewClient(cfg.BaseURL, cfg.APIKey, log)
	parserService := parser.NewService(log)
	uploadService := upload.NewService(networkClient, log)
	metadataManager := metadata.NewManager(outputDir, log)
	listGenerator := listgen.NewService(metadataManager, log)
	formatter := cli.NewFormatter()

	var prompter prompt.Prompter = prompt.Auto{}
	if interactive {
		prompter = prompt.Console{}
	}

	e := &Engine{
		Config:    cfg,
		Network:   networkClient,
		Parser:    parserService,
		Upload:    uploadService,
		Metadata:  metadataManager,
		ListGen:   listGenerator,
		Formatter: formatter,
		Logger:    log,
	}
	e.Processor = &processor.Service{
		Parser:    parserService,
		Uploader:  uploadService,
		Albums:    networkClient,
		Metadata:  metadataManager,
		ListGen:   listGenerator,
		Prompter:  prompter,
		Formatter: formatter,
		Logger:    log,
		Config:    cfg,
	}

	log.Info("engine initialized, output directory %s", outputDir)
	return e
}

// SetVerboseMode raises the log level and mirrors the log to stderr.
func (e *Engine) SetVerboseMode(enabled bool) {
	e.verboseMode = enabled
	if enabled {
		e.Logger.SetLevel(logger.LevelDebug)
		if s, ok := e.Logger.(*logger.Service); ok {
			s.SetConsoleOutput(true)
		}
		e.Logger.Debug("verbose mode enabled")
		return
	}
	e.Logger.SetLevel(logger.LevelInfo)
	if s, ok := e.Logger.(*logger.Service); ok {
		s.SetConsoleOutput(false)
	}
}

// Shutdown flushes and closes the engine's resources.
func (e *Engine) Shutdown() error {
	e.Logger.Info("shutting down")
	if closer, ok := e.Logger.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
