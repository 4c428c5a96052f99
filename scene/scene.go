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

// Package scene combines an optical element, an object raster and a
// viewport into an interactive simulation.
//
// A [Scene] draws the element, the construction rays, the object and its
// warped image on top of the coordinate grid of a [viewport.Engine], and
// lets the user drag the object around.
package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/optics"
	"seehuhn.de/go/optics/viewport"
	"seehuhn.de/go/optics/warp"
)

// ErrNoParameter is returned when setting a parameter which the scene's
// element does not have.
var ErrNoParameter = errors.New("scene: element has no such parameter")

// Placement is the world position of the centre of the object raster.
type Placement struct {
	X, Y float64
}

// minGap is the smallest distance between the object and the element
// along the axis.
const minGap = 0.1

// Scene is one simulation.  A Scene is not safe for concurrent use.
type Scene struct {
	// ID identifies the scene in log records.
	ID uuid.UUID

	Element   optics.Element
	Placement Placement
	Source    *warp.Source

	// Height is the height of the object raster in world units.  The
	// width follows from the aspect ratio of the source.
	Height float64

	// Fixed scenes do not allow dragging the object.
	Fixed bool

	Renderer warp.Renderer

	// Home is the initial view.
	Home viewport.View

	// NoPan disables panning the view.
	NoPan bool

	engine   *viewport.Engine
	dragging bool
	grabDX   float64
	grabDY   float64
	last     warp.Result
}

func newScene(e optics.Element, src *warp.Source, p Placement) *Scene {
	if src == nil {
		src = warp.Checkerboard(256, 8)
	}
	s := &Scene{
		ID:        uuid.New(),
		Element:   e,
		Placement: p,
		Source:    src,
		Height:    1,
		Home:      viewport.Default,
	}
	s.logger().Debug("scene created", "element", optics.Describe(e), "x", p.X, "y", p.Y)
	return s
}

// NewPlane returns a plane mirror scene.  A nil src selects a
// checkerboard test image.
func NewPlane(src *warp.Source) *Scene {
	return newScene(optics.PlaneMirror{}, src, Placement{X: 1, Y: 1})
}

// NewConcave returns a concave spherical mirror scene.
func NewConcave(src *warp.Source) *Scene {
	return newScene(optics.ConcaveMirror{R: optics.RadiusRange.Default}, src, Placement{X: 1.5, Y: 0.5})
}

// NewConvex returns a convex spherical mirror scene.  The object starts
// in front of the mirror surface.
func NewConvex(src *warp.Source) *Scene {
	m := optics.ConvexMirror{R: optics.RadiusRange.Default}
	s := newScene(m, src, Placement{X: m.R + 2.5, Y: 0.5})
	s.Home = viewport.View{CX: m.R, CY: 0, Scale: 100}
	return s
}

// NewThinLens returns a thin lens scene with the default focal length for
// the given kind of lens.
func NewThinLens(src *warp.Source, kind optics.LensKind) *Scene {
	f := optics.ConvexFocalRange.Default
	if kind == optics.LensConcave {
		f = optics.ConcaveFocalRange.Default
	}
	return newScene(optics.ThinLens{F: f}, src, Placement{X: 1.5, Y: 0.5})
}

// NewAnamorphic returns an anamorphic projector scene.  The object fills
// the projector's square.
func NewAnamorphic(src *warp.Source) *Scene {
	p := optics.NewAnamorphicProjector(optics.OuterRadiusRange.Default, optics.SectorDegreesRange.Default)
	s := newScene(p, src, Placement{})
	s.Height = optics.AnamorphicSide
	s.Fixed = true
	s.Home = viewport.View{CY: -1.5, Scale: 100}
	return s
}

// NewCylinder returns a cylindrical mirror anamorphosis scene.
func NewCylinder(src *warp.Source) *Scene {
	s := newScene(optics.CylinderMirror{R: optics.CylinderRadiusRange.Default}, src, Placement{})
	s.Height = optics.AnamorphicSide
	s.Fixed = true
	s.NoPan = true
	s.Home = viewport.View{Scale: 200}
	return s
}

// New returns the scene for an element name, see [optics.Names].
func New(name string, src *warp.Source) (*Scene, error) {
	switch name {
	case "plane":
		return NewPlane(src), nil
	case "concave":
		return NewConcave(src), nil
	case "convex":
		return NewConvex(src), nil
	case "lens":
		return NewThinLens(src, optics.LensConvex), nil
	case "diverging":
		return NewThinLens(src, optics.LensConcave), nil
	case "anamorphic":
		return NewAnamorphic(src), nil
	case "cylinder":
		return NewCylinder(src), nil
	}
	return nil, fmt.Errorf("scene %q: %w", name, optics.ErrUnknownElement)
}

func (s *Scene) logger() *slog.Logger {
	return optics.Logger().With("scene", s.Element.Name(), "session", s.ID.String())
}

// EngineOptions returns the engine options for the scene's home view and
// pan setting.
func (s *Scene) EngineOptions() []viewport.Option {
	opts := []viewport.Option{viewport.WithView(s.Home)}
	if s.NoPan {
		opts = append(opts, viewport.WithoutPan())
	}
	return opts
}

// Attach installs the scene as overlay and pointer handler of e.
func (s *Scene) Attach(e *viewport.Engine) {
	s.engine = e
	e.SetOverlay(s.Draw)
	e.SetHooks(viewport.Hooks{
		Down: s.pointerDown,
		Move: s.pointerMove,
		Up:   s.pointerUp,
	})
	e.DisablePan(s.NoPan)
}

func (s *Scene) invalidate() {
	if s.engine != nil {
		s.engine.Invalidate()
	}
}

// Footprint returns the world rectangle covered by the object raster.
func (s *Scene) Footprint() rect.Rect {
	return s.Source.Footprint(s.Placement.X, s.Placement.Y, s.Height)
}

// Image returns the image of the centre of the object.
func (s *Scene) Image() (optics.ImagePoint, bool) {
	return s.Element.Solve(s.Placement.X, s.Placement.Y)
}

// LastResult returns the statistics of the most recent warp.
func (s *Scene) LastResult() warp.Result {
	return s.last
}

// Dragging reports whether the object is being dragged.
func (s *Scene) Dragging() bool {
	return s.dragging
}

// MinX returns the smallest allowed x coordinate of the placement, or
// -Inf if the object may be placed anywhere.
func (s *Scene) MinX() float64 {
	switch e := s.Element.(type) {
	case optics.ConvexMirror:
		return e.R + minGap
	case optics.AnamorphicProjector, optics.CylinderMirror:
		return math.Inf(-1)
	default:
		return minGap
	}
}

// MoveTo places the object at (x, y), clamping x to [Scene.MinX].
func (s *Scene) MoveTo(x, y float64) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	s.Placement = Placement{X: max(x, s.MinX()), Y: y}
	s.invalidate()
}

func (s *Scene) pointerDown(sx, sy float64, v viewport.View) bool {
	if s.Fixed || s.engine == nil {
		return false
	}
	w, h := s.engine.Surface().Size()
	x, y := v.ScreenToWorld(sx, sy, w, h)
	fp := s.Footprint()
	if x < fp.LLx || x > fp.URx || y < fp.LLy || y > fp.URy {
		return false
	}
	s.dragging = true
	s.grabDX = x - s.Placement.X
	s.grabDY = y - s.Placement.Y
	return true
}

func (s *Scene) pointerMove(sx, sy float64, v viewport.View) bool {
	if !s.dragging {
		return false
	}
	w, h := s.engine.Surface().Size()
	x, y := v.ScreenToWorld(sx, sy, w, h)
	s.MoveTo(x-s.grabDX, y-s.grabDY)
	return true
}

func (s *Scene) pointerUp(sx, sy float64, v viewport.View) bool {
	if !s.dragging {
		return false
	}
	s.dragging = false
	s.logger().Info("object moved", "x", s.Placement.X, "y", s.Placement.Y)
	return true
}

// Param returns the main parameter of the element and its range.  The
// plane mirror has no parameter.
func (s *Scene) Param() (float64, optics.Range, bool) {
	switch e := s.Element.(type) {
	case optics.ConcaveMirror:
		return e.R, optics.RadiusRange, true
	case optics.ConvexMirror:
		return e.R, optics.RadiusRange, true
	case optics.CylinderMirror:
		return e.R, optics.CylinderRadiusRange, true
	case optics.ThinLens:
		if e.Kind() == optics.LensConcave {
			return e.F, optics.ConcaveFocalRange, true
		}
		return e.F, optics.ConvexFocalRange, true
	case optics.AnamorphicProjector:
		return e.OuterRadius, optics.OuterRadiusRange, true
	}
	return 0, optics.Range{}, false
}

// SetParam sets the main parameter of the element, see [Scene.Param].
func (s *Scene) SetParam(v float64) error {
	switch s.Element.(type) {
	case optics.ConcaveMirror, optics.ConvexMirror, optics.CylinderMirror:
		return s.SetRadius(v)
	case optics.ThinLens:
		return s.SetFocal(v)
	case optics.AnamorphicProjector:
		return s.SetOuterRadius(v)
	}
	return fmt.Errorf("%s: %w", s.Element.Name(), ErrNoParameter)
}

// Adjust changes the main parameter by the given number of range steps.
func (s *Scene) Adjust(steps int) error {
	v, r, ok := s.Param()
	if !ok {
		return fmt.Errorf("%s: %w", s.Element.Name(), ErrNoParameter)
	}
	return s.SetParam(v + float64(steps)*r.Step)
}

// SetRadius sets the radius of a spherical or cylindrical mirror, clamped
// to its range.
func (s *Scene) SetRadius(r float64) error {
	switch e := s.Element.(type) {
	case optics.ConcaveMirror:
		e.R = optics.RadiusRange.Clamp(r)
		s.Element = e
	case optics.ConvexMirror:
		e.R = optics.RadiusRange.Clamp(r)
		s.Element = e
	case optics.CylinderMirror:
		e.R = optics.CylinderRadiusRange.Clamp(r)
		s.Element = e
	default:
		return fmt.Errorf("radius of %s: %w", s.Element.Name(), ErrNoParameter)
	}
	s.MoveTo(s.Placement.X, s.Placement.Y)
	return nil
}

// SetFocal sets the focal length of a lens, clamped to the range for its
// kind.
func (s *Scene) SetFocal(f float64) error {
	e, ok := s.Element.(optics.ThinLens)
	if !ok {
		return fmt.Errorf("focal length of %s: %w", s.Element.Name(), ErrNoParameter)
	}
	if e.Kind() == optics.LensConcave {
		e.F = optics.ConcaveFocalRange.Clamp(f)
	} else {
		e.F = optics.ConvexFocalRange.Clamp(f)
	}
	s.Element = e
	s.invalidate()
	return nil
}

// SetOuterRadius sets the outer radius of an anamorphic projector.
func (s *Scene) SetOuterRadius(r float64) error {
	e, ok := s.Element.(optics.AnamorphicProjector)
	if !ok {
		return fmt.Errorf("outer radius of %s: %w", s.Element.Name(), ErrNoParameter)
	}
	e.OuterRadius = optics.OuterRadiusRange.Clamp(r)
	s.Element = e
	s.invalidate()
	return nil
}

// SetSector sets the sector angle, in degrees, of an anamorphic
// projector.
func (s *Scene) SetSector(deg float64) error {
	e, ok := s.Element.(optics.AnamorphicProjector)
	if !ok {
		return fmt.Errorf("sector of %s: %w", s.Element.Name(), ErrNoParameter)
	}
	e.SectorDegrees = optics.SectorDegreesRange.Clamp(deg)
	s.Element = e
	s.invalidate()
	return nil
}

// SetSource replaces the object raster.
func (s *Scene) SetSource(src *warp.Source) {
	if src == nil {
		return
	}
	s.Source = src
	s.invalidate()
}

// SetMode selects the warp strategy.
func (s *Scene) SetMode(m warp.Mode) {
	s.Renderer.Mode = m
	s.invalidate()
}
