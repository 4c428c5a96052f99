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

package config

import (
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"seehuhn.de/go/optics/warp"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8080" || cfg.Scene != "concave" || cfg.Width != 1024 {
		t.Errorf("got %+v", cfg)
	}
	r := cfg.Renderer()
	if r.N != warp.DefaultResolution || r.Block != warp.DefaultBlock || r.Mode != warp.Auto {
		t.Errorf("renderer %+v", r)
	}
	if cfg.Level() != slog.LevelInfo {
		t.Errorf("level %v", cfg.Level())
	}
	src, err := cfg.Source()
	if src != nil || err != nil {
		t.Errorf("source %v, %v", src, err)
	}
}

func TestEnvironment(t *testing.T) {
	t.Setenv("OPTICS_SCENE", "lens")
	t.Setenv("OPTICS_WARP", "forward")
	t.Setenv("OPTICS_RESOLUTION", "120")
	t.Setenv("OPTICS_LOG_LEVEL", "debug")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scene != "lens" || cfg.Renderer().Mode != warp.Forward || cfg.Renderer().N != 120 {
		t.Errorf("got %+v", cfg)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("level %v", cfg.Level())
	}
}

func TestInvalid(t *testing.T) {
	cases := []struct {
		key, val string
	}{
		{"OPTICS_WARP", "sideways"},
		{"OPTICS_WIDTH", "0"},
		{"OPTICS_BLOCK", "four"},
		{"OPTICS_BLOCK", "0"},
		{"OPTICS_BLOCK", "33"},
		{"OPTICS_RESOLUTION", "100000"},
		{"OPTICS_RESOLUTION", "-5"},
		{"OPTICS_RESOLUTION", "9"},
	}
	for _, c := range cases {
		t.Run(c.key+"="+c.val, func(t *testing.T) {
			t.Setenv(c.key, c.val)
			if _, err := Load(); err == nil {
				t.Errorf("%s=%s accepted", c.key, c.val)
			}
		})
	}
}

func TestLimits(t *testing.T) {
	t.Setenv("OPTICS_RESOLUTION", "2000")
	t.Setenv("OPTICS_BLOCK", "1")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if r := cfg.Renderer(); r.N != 2000 || r.Block != 1 {
		t.Errorf("got %+v", r)
	}
}

func TestSource(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "object.png")
	fd, err := os.Create(fname)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(fd, image.NewGray(image.Rect(0, 0, 3, 2))); err != nil {
		t.Fatal(err)
	}
	if err := fd.Close(); err != nil {
		t.Fatal(err)
	}

	t.Setenv("OPTICS_IMAGE", fname)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	src, err := cfg.Source()
	if err != nil {
		t.Fatal(err)
	}
	if src.Width() != 3 || src.Height() != 2 {
		t.Errorf("got %dx%d", src.Width(), src.Height())
	}
}
