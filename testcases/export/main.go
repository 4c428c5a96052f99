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

// Command export renders every test case to a PNG file.
// Run from the module root directory.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"seehuhn.de/go/optics"
	"seehuhn.de/go/optics/surface"
	"seehuhn.de/go/optics/surface/ggsurface"
	"seehuhn.de/go/optics/testcases"
)

func main() {
	outDir := flag.String("out", "testdata/scenes", "output directory")
	backend := flag.String("backend", "raster", "rendering backend, raster or gg")
	ratio := flag.Float64("ratio", 1, "device pixel ratio")
	verbose := flag.Bool("v", false, "log warp statistics")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	optics.SetLogger(logger)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		slog.Error("create output directory", "error", err)
		os.Exit(1)
	}

	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			name := category + "_" + tc.Name
			fname := filepath.Join(*outDir, name+".png")
			if err := export(tc, fname, *backend, *ratio); err != nil {
				slog.Error("export", "case", name, "error", err)
				os.Exit(1)
			}
			slog.Info("wrote", "file", fname)
		}
	}
}

func export(tc testcases.TestCase, fname, backend string, ratio float64) error {
	var img image.Image
	switch backend {
	case "raster":
		s := surface.NewSoftware(tc.Width, tc.Height, surface.WithPixelRatio(ratio))
		if _, err := tc.Render(s); err != nil {
			return err
		}
		img = s.Image()
	case "gg":
		s, err := ggsurface.New(tc.Width, tc.Height, ratio)
		if err != nil {
			return err
		}
		defer s.Close()
		if _, err := tc.Render(s); err != nil {
			return err
		}
		img = s.Image()
	default:
		return fmt.Errorf("unknown backend %q", backend)
	}

	fd, err := os.Create(fname)
	if err != nil {
		return err
	}
	if err := png.Encode(fd, img); err != nil {
		fd.Close()
		return err
	}
	return fd.Close()
}
