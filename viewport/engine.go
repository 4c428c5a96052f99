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

package viewport

import (
	"image/color"
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"seehuhn.de/go/optics"
	"seehuhn.de/go/optics/surface"
)

// Background is the colour the surface is cleared to before each redraw.
var Background = color.NRGBA{R: 0x11, G: 0x11, B: 0x11, A: 0xff}

// Overlay draws scene content after the grid.
type Overlay func(s surface.Surface, v View)

// PointerHook receives a pointer event in surface coordinates.  It
// returns true if it handled the event, in which case the engine does not
// pan.
type PointerHook func(sx, sy float64, v View) bool

// Hooks intercept raw pointer events.  Nil hooks are skipped.
type Hooks struct {
	Down PointerHook
	Move PointerHook
	Up   PointerHook
}

// Resizer is implemented by surfaces whose backing store can be resized.
type Resizer interface {
	Resize(w, h int, ratio float64)
}

// Engine owns a [View] and a drawing surface.  It turns pointer input into
// pan and zoom, and redraws the grid followed by the overlay.
//
// Input only marks the engine as dirty; the actual redraw happens in
// [Engine.Frame], at most once per call.  An Engine is not safe for
// concurrent use: input handlers and Frame must run on the same goroutine.
type Engine struct {
	s     surface.Surface
	view  View
	home  View
	ratio float64
	grid  GridOptions

	overlay    Overlay
	hooks      Hooks
	onChange   func(View)
	disablePan bool

	dirty    bool
	grabbed  bool
	panning  bool
	lastX    float64
	lastY    float64
	anim     *viewAnim
	animEase ease.TweenFunc
}

type viewAnim struct {
	cx, cy, logScale *gween.Tween
	target           View
}

// Option configures an [Engine].
type Option func(*Engine)

// WithView sets the initial view, which is also the target of
// [Engine.Reset].
func WithView(v View) Option {
	return func(e *Engine) {
		v.Scale = ClampScale(v.Scale)
		e.view = v
		e.home = v
	}
}

// WithGrid selects the grid parts to draw.
func WithGrid(opt GridOptions) Option {
	return func(e *Engine) {
		e.grid = opt
	}
}

// WithoutPan disables panning by pointer drags.
func WithoutPan() Option {
	return func(e *Engine) {
		e.disablePan = true
	}
}

// WithEasing sets the easing function for animated view changes.
func WithEasing(fn ease.TweenFunc) Option {
	return func(e *Engine) {
		e.animEase = fn
	}
}

// NewEngine returns an engine drawing onto s.  The engine starts dirty,
// so the first call to [Engine.Frame] draws.
func NewEngine(s surface.Surface, opts ...Option) *Engine {
	e := &Engine{
		s:        s,
		view:     Default,
		home:     Default,
		ratio:    1,
		dirty:    true,
		animEase: ease.OutCubic,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Surface returns the drawing surface.
func (e *Engine) Surface() surface.Surface {
	return e.s
}

// View returns the current view.
func (e *Engine) View() View {
	return e.view
}

// SetView replaces the view and cancels any animation.
func (e *Engine) SetView(v View) {
	v.Scale = ClampScale(v.Scale)
	e.anim = nil
	e.setView(v)
}

func (e *Engine) setView(v View) {
	if v == e.view {
		return
	}
	e.view = v
	e.dirty = true
	if e.onChange != nil {
		e.onChange(v)
	}
}

// OnViewChange registers a function called whenever the view changes.
func (e *Engine) OnViewChange(fn func(View)) {
	e.onChange = fn
}

// SetOverlay sets the function which draws scene content after the grid.
func (e *Engine) SetOverlay(fn Overlay) {
	e.overlay = fn
	e.dirty = true
}

// SetHooks installs pointer hooks.
func (e *Engine) SetHooks(h Hooks) {
	e.hooks = h
}

// DisablePan turns panning by pointer drags off or on.
func (e *Engine) DisablePan(disable bool) {
	e.disablePan = disable
}

// Invalidate marks the engine as needing a redraw.
func (e *Engine) Invalidate() {
	e.dirty = true
}

// Dirty reports whether a redraw is pending.
func (e *Engine) Dirty() bool {
	return e.dirty
}

// Resize sets the surface size in logical pixels and the device pixel
// ratio, then redraws immediately.  Sizes are clamped to at least one
// pixel.
func (e *Engine) Resize(w, h int, ratio float64) {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		ratio = 1
	}
	e.ratio = ratio
	if r, ok := e.s.(Resizer); ok {
		r.Resize(max(w, 1), max(h, 1), ratio)
	}
	optics.Logger().Debug("viewport resized", "w", w, "h", h, "ratio", ratio)
	e.Draw()
}

// PixelRatio returns the device pixel ratio set by [Engine.Resize].
func (e *Engine) PixelRatio() float64 {
	return e.ratio
}

// PointerDown starts a drag at surface point (sx, sy).
func (e *Engine) PointerDown(sx, sy float64) {
	e.lastX, e.lastY = sx, sy
	if e.hooks.Down != nil && e.hooks.Down(sx, sy, e.view) {
		e.grabbed = true
		e.dirty = true
		return
	}
	e.panning = true
	e.anim = nil
}

// PointerMove continues a drag, or reports a hover to the move hook.
func (e *Engine) PointerMove(sx, sy float64) {
	dx, dy := sx-e.lastX, sy-e.lastY
	e.lastX, e.lastY = sx, sy
	if e.hooks.Move != nil && e.hooks.Move(sx, sy, e.view) {
		e.dirty = true
		return
	}
	if e.grabbed || !e.panning || e.disablePan {
		return
	}
	e.setView(e.view.Pan(dx, dy))
}

// PointerUp ends a drag.
func (e *Engine) PointerUp(sx, sy float64) {
	if e.hooks.Up != nil && e.hooks.Up(sx, sy, e.view) {
		e.dirty = true
	}
	e.grabbed = false
	e.panning = false
}

// Wheel zooms by a wheel delta, anchored at (sx, sy).  Positive deltas
// zoom out.
func (e *Engine) Wheel(delta, sx, sy float64) {
	w, h := e.s.Size()
	e.anim = nil
	e.setView(e.view.Zoom(delta, sx, sy, max(w, 1), max(h, 1)))
}

// AnimateTo moves the view smoothly to v over the given duration.  The
// scale is interpolated logarithmically, so that zooming appears
// uniform.
func (e *Engine) AnimateTo(v View, seconds float64) {
	v.Scale = ClampScale(v.Scale)
	if seconds <= 0 {
		e.SetView(v)
		return
	}
	d := float32(seconds)
	e.anim = &viewAnim{
		cx:       gween.New(float32(e.view.CX), float32(v.CX), d, e.animEase),
		cy:       gween.New(float32(e.view.CY), float32(v.CY), d, e.animEase),
		logScale: gween.New(float32(math.Log(e.view.Scale)), float32(math.Log(v.Scale)), d, e.animEase),
		target:   v,
	}
}

// Reset animates back to the initial view.
func (e *Engine) Reset() {
	e.AnimateTo(e.home, 0.4)
}

// Animating reports whether a view animation is in progress.
func (e *Engine) Animating() bool {
	return e.anim != nil
}

// Update advances animations by dt seconds.
func (e *Engine) Update(dt float64) {
	if e.anim == nil {
		return
	}
	t := float32(dt)
	cx, doneX := e.anim.cx.Update(t)
	cy, doneY := e.anim.cy.Update(t)
	ls, doneS := e.anim.logScale.Update(t)
	if doneX && doneY && doneS {
		// float32 tweens only approximate the target
		e.setView(e.anim.target)
		e.anim = nil
		return
	}
	e.setView(View{
		CX:    float64(cx),
		CY:    float64(cy),
		Scale: ClampScale(math.Exp(float64(ls))),
	})
}

// Frame redraws the surface if anything changed since the last redraw,
// and reports whether it drew.
func (e *Engine) Frame() bool {
	if !e.dirty {
		return false
	}
	e.Draw()
	return true
}

// Draw unconditionally redraws the grid and the overlay.
func (e *Engine) Draw() {
	e.s.Clear(Background)
	DrawGrid(e.s, e.view, e.grid)
	if e.overlay != nil {
		e.overlay(e.s, e.view)
	}
	e.dirty = false
}
