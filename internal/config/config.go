// seehuhn.de/go/optics - image formation by mirrors and lenses
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package config reads the settings of the optics commands from the
// environment.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/kelseyhightower/envconfig"

	"seehuhn.de/go/optics/warp"
)

// Limits of the warp settings.
const (
	MinResolution = 10
	MaxResolution = 2000
	MinBlock      = 1
	MaxBlock      = 32
)

// Config holds the settings shared by the viewer and the render server.
type Config struct {
	Addr       string `envconfig:"OPTICS_ADDR" default:":8080"`
	Scene      string `envconfig:"OPTICS_SCENE" default:"concave"`
	Image      string `envconfig:"OPTICS_IMAGE"`
	Width      int    `envconfig:"OPTICS_WIDTH" default:"1024"`
	Height     int    `envconfig:"OPTICS_HEIGHT" default:"768"`
	Resolution int    `envconfig:"OPTICS_RESOLUTION" default:"300"`
	Block      int    `envconfig:"OPTICS_BLOCK" default:"4"`
	Warp       string `envconfig:"OPTICS_WARP" default:"auto"`
	LogLevel   string `envconfig:"OPTICS_LOG_LEVEL" default:"info"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.Width < 1 || cfg.Height < 1 {
		return nil, fmt.Errorf("invalid window size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Resolution < MinResolution || cfg.Resolution > MaxResolution {
		return nil, fmt.Errorf("warp resolution %d outside [%d, %d]",
			cfg.Resolution, MinResolution, MaxResolution)
	}
	if cfg.Block < MinBlock || cfg.Block > MaxBlock {
		return nil, fmt.Errorf("warp block size %d outside [%d, %d]",
			cfg.Block, MinBlock, MaxBlock)
	}
	if _, err := warp.ParseMode(cfg.Warp); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Level returns the configured log level.  Unknown names give
// [slog.LevelInfo].
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Renderer returns the warp renderer described by the configuration.
func (c *Config) Renderer() warp.Renderer {
	mode, _ := warp.ParseMode(c.Warp)
	return warp.Renderer{N: c.Resolution, Block: c.Block, Mode: mode}
}

// Source loads the configured object image.  If no image is configured,
// nil is returned and the scenes use their built-in test pattern.
func (c *Config) Source() (*warp.Source, error) {
	if c.Image == "" {
		return nil, nil
	}
	fd, err := os.Open(c.Image)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	return warp.Decode(fd)
}
