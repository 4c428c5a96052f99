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

// Command opticsview shows an optics scene in a window.
//
// Drag the object to move it, drag the background to pan and use the
// mouse wheel to zoom.  Keys:
//
//	1-7   select the scene
//	R     reset the view
//	+ -   change the mirror radius, focal length or projector radius
//	M     cycle the warp mode
//	Esc   quit
//
// An image file dropped onto the window replaces the object.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"seehuhn.de/go/optics"
	"seehuhn.de/go/optics/internal/config"
	"seehuhn.de/go/optics/scene"
	"seehuhn.de/go/optics/surface"
	"seehuhn.de/go/optics/viewport"
	"seehuhn.de/go/optics/warp"
)

var sceneKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
	ebiten.KeyDigit5, ebiten.KeyDigit6, ebiten.KeyDigit7,
}

type game struct {
	cfg *config.Config
	src *warp.Source

	surf   *surface.Software
	engine *viewport.Engine
	scene  *scene.Scene
	mode   warp.Mode

	// screen size in device pixels, as returned by Layout
	pw, ph int
	ratio  float64

	frame  *ebiten.Image
	mx, my float64
	down   bool
}

func newGame(cfg *config.Config, src *warp.Source) (*game, error) {
	mode, err := warp.ParseMode(cfg.Warp)
	if err != nil {
		return nil, err
	}
	g := &game{
		cfg:   cfg,
		src:   src,
		surf:  surface.NewSoftware(cfg.Width, cfg.Height),
		mode:  mode,
		ratio: 1,
	}
	if err := g.selectScene(cfg.Scene); err != nil {
		return nil, err
	}
	return g, nil
}

// selectScene replaces the current scene, keeping the window size.
func (g *game) selectScene(name string) error {
	sc, err := scene.New(name, g.src)
	if err != nil {
		return err
	}
	sc.Renderer = g.cfg.Renderer()
	sc.Renderer.Mode = g.mode

	g.scene = sc
	g.engine = viewport.NewEngine(g.surf, sc.EngineOptions()...)
	sc.Attach(g.engine)
	g.down = false
	slog.Info("scene selected", "scene", name)
	return nil
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	for i, key := range sceneKeys {
		if i < len(optics.Names) && inpututil.IsKeyJustPressed(key) {
			if err := g.selectScene(optics.Names[i]); err != nil {
				return err
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.engine.Reset()
	}
	steps := 0
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd) {
		steps++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract) {
		steps--
	}
	if steps != 0 {
		if err := g.scene.Adjust(steps); err != nil && !errors.Is(err, scene.ErrNoParameter) {
			slog.Warn("adjust", "error", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.mode = nextMode(g.mode)
		g.scene.SetMode(g.mode)
	}
	g.dropped()
	g.pointer()

	g.engine.Update(1 / float64(ebiten.TPS()))
	return nil
}

func (g *game) pointer() {
	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx)/g.ratio, float64(cy)/g.ratio
	moved := x != g.mx || y != g.my
	g.mx, g.my = x, y

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.engine.PointerDown(x, y)
		g.down = true
	case g.down && !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		g.engine.PointerUp(x, y)
		g.down = false
	case moved:
		g.engine.PointerMove(x, y)
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		g.engine.Wheel(-wy*100, x, y)
	}
}

// dropped loads the first image file dropped onto the window.
func (g *game) dropped() {
	files := ebiten.DroppedFiles()
	if files == nil {
		return
	}
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		slog.Warn("dropped files", "error", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fd, err := files.Open(entry.Name())
		if err != nil {
			slog.Warn("dropped file", "name", entry.Name(), "error", err)
			continue
		}
		src, err := warp.Decode(fd)
		fd.Close()
		if err != nil {
			slog.Warn("dropped file", "name", entry.Name(), "error", err)
			continue
		}
		g.src = src
		g.scene.SetSource(src)
		slog.Info("object image replaced", "name", entry.Name())
		return
	}
}

func nextMode(m warp.Mode) warp.Mode {
	switch m {
	case warp.Auto:
		return warp.Forward
	case warp.Forward:
		return warp.Inverse
	default:
		return warp.Auto
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	img := g.surf.Image()
	if g.engine.Frame() || g.frame == nil {
		b := img.Bounds()
		if g.frame == nil || g.frame.Bounds().Dx() != b.Dx() || g.frame.Bounds().Dy() != b.Dy() {
			if g.frame != nil {
				g.frame.Deallocate()
			}
			g.frame = ebiten.NewImage(b.Dx(), b.Dy())
		}
		g.frame.WritePixels(img.Pix)
	}
	screen.DrawImage(g.frame, nil)

	res := g.scene.LastResult()
	msg := fmt.Sprintf("TPS: %.1f\nscene: %s\nwarp: %v (%s)\nsolved: %d\nskipped: %d",
		ebiten.ActualTPS(), g.scene.Element.Name(), res.Mode, g.mode, res.Solved, res.Skipped)
	if v, r, ok := g.scene.Param(); ok {
		msg += fmt.Sprintf("\nparam: %s [%s, %s]",
			viewport.FormatNumber(v), viewport.FormatNumber(r.Min), viewport.FormatNumber(r.Max))
	}
	ebitenutil.DebugPrint(screen, msg)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	ratio := 1.0
	if m := ebiten.Monitor(); m != nil {
		ratio = m.DeviceScaleFactor()
	}
	pw := max(int(float64(outsideWidth)*ratio), 1)
	ph := max(int(float64(outsideHeight)*ratio), 1)
	if pw != g.pw || ph != g.ph || ratio != g.ratio {
		g.pw, g.ph, g.ratio = pw, ph, ratio
		g.engine.Resize(outsideWidth, outsideHeight, ratio)
	}
	return pw, ph
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	optics.SetLogger(logger)

	src, err := cfg.Source()
	if err != nil {
		slog.Error("load object image", "error", err)
		os.Exit(1)
	}

	g, err := newGame(cfg, src)
	if err != nil {
		slog.Error("start", "error", err)
		os.Exit(1)
	}

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle("Optics")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		slog.Error("run", "error", err)
		os.Exit(1)
	}
}
