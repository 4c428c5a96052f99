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

package optics

import (
	"fmt"
	"math"
)

// AnamorphicSide is the side length of the square object region of an
// [AnamorphicProjector], which is the square inscribed in the unit circle.
const AnamorphicSide = math.Sqrt2

// AnamorphicProjector stretches a square object region centred at the
// origin onto an annular sector.  The bottom edge of the square lands on
// the outer arc and the top edge on the inner arc; the square's left and
// right edges become the straight sides of the sector.
type AnamorphicProjector struct {
	InnerRadius   float64
	OuterRadius   float64
	SectorDegrees float64
}

// NewAnamorphicProjector returns a projector with inner radius 1.
func NewAnamorphicProjector(outer, sectorDegrees float64) AnamorphicProjector {
	return AnamorphicProjector{
		InnerRadius:   1,
		OuterRadius:   outer,
		SectorDegrees: sectorDegrees,
	}
}

// Name implements [Element].
func (AnamorphicProjector) Name() string { return "anamorphic" }

// Validate implements [Element].
func (p AnamorphicProjector) Validate() error {
	if p.InnerRadius != 1 {
		return fmt.Errorf("inner radius %g, must be 1: %w", p.InnerRadius, ErrParameter)
	}
	if p.OuterRadius <= p.InnerRadius {
		return fmt.Errorf("outer radius %g not above inner radius: %w", p.OuterRadius, ErrParameter)
	}
	if err := OuterRadiusRange.check("outer radius", p.OuterRadius); err != nil {
		return err
	}
	return SectorDegreesRange.check("sector", p.SectorDegrees)
}

// Base returns the apex of the sector, the bottom centre of the object
// square.
func (p AnamorphicProjector) Base() (float64, float64) {
	return 0, -AnamorphicSide / 2
}

// StartAngle returns the direction, in degrees, of the sector edge which
// receives the right edge of the object square.
func (p AnamorphicProjector) StartAngle() float64 {
	return 90 - p.SectorDegrees/2
}

// Solve maps a point of the object square onto the sector.
// Points outside the square have no image.
func (p AnamorphicProjector) Solve(x, y float64) (ImagePoint, bool) {
	const w, h = AnamorphicSide, AnamorphicSide
	const eps = 1e-12
	if math.Abs(x) > w/2+eps || math.Abs(y) > h/2+eps {
		return ImagePoint{}, false
	}

	rowPos := (y + h/2) / h
	radius := p.OuterRadius - rowPos*(p.OuterRadius-p.InnerRadius)
	colPos := 1 - (x+w/2)/w
	theta := (p.StartAngle() + colPos*p.SectorDegrees) * math.Pi / 180

	bx, by := p.Base()
	return ImagePoint{
		X:    bx + radius*math.Cos(theta),
		Y:    by - radius*math.Sin(theta),
		Kind: Real,
	}, true
}

// Invert implements [Inverter] by reading off polar coordinates around
// the apex.
func (p AnamorphicProjector) Invert(X, Y float64) (float64, float64, bool) {
	const w, h = AnamorphicSide, AnamorphicSide
	span := p.OuterRadius - p.InnerRadius
	if span <= 0 || p.SectorDegrees <= 0 {
		return 0, 0, false
	}

	bx, by := p.Base()
	dx, dy := X-bx, Y-by
	radius := math.Hypot(dx, dy)
	const eps = 1e-9
	rowPos := (p.OuterRadius - radius) / span
	if rowPos < -eps || rowPos > 1+eps {
		return 0, 0, false
	}
	rowPos = min(max(rowPos, 0), 1)

	theta := math.Atan2(-dy, dx) * 180 / math.Pi
	start := p.StartAngle()
	offset := math.Mod(math.Mod(theta-start, 360)+360, 360)
	colPos := offset / p.SectorDegrees
	switch {
	case colPos <= 1+eps:
		colPos = min(colPos, 1)
	case offset > 360-eps:
		// just below the start edge, after wrapping
		colPos = 0
	default:
		return 0, 0, false
	}

	x := (1-colPos)*w - w/2
	y := rowPos*h - h/2
	return x, y, true
}
