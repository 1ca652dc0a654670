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

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-sourced settings. A .env file in the
// working directory is merged into the process environment before
// parsing, so either works.
type Config struct {
	APIKey  string `env:"IMGCHEST_API_KEY"`
	BaseURL string `env:"IMGCHEST_BASE_URL" envDefault:"https://api.imgchest.com/v1"`

	// GitHub coordinates used for the generated reader links in
	// manga-list.rst. Optional; link generation is skipped without them.
	GitHubUsername string `env:"GH_USERNAME"`
	GitHubRepo     string `env:"GH_REPO"`
	GitHubBranch   string `env:"GH_BRANCH" envDefault:"main"`
}

// Load reads configuration from .env (if present) and the environment.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// RequireAPIKey returns an error when no ImgChest API key is set.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return fmt.Errorf("IMGCHEST_API_KEY not set; add it to your environment or .env file")
	}
	return nil
}
