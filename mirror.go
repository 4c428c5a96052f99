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
	"math"
)

// singularTolerance is the magnitude below which a denominator is treated
// as zero.
const singularTolerance = 1e-10

// PlaneMirror is an infinite mirror along the y axis.
type PlaneMirror struct{}

// Name implements [Element].
func (PlaneMirror) Name() string { return "plane" }

// Validate implements [Element].
func (PlaneMirror) Validate() error { return nil }

// Solve reflects the point in the y axis.
func (PlaneMirror) Solve(x, y float64) (ImagePoint, bool) {
	return ImagePoint{X: -x, Y: y, Kind: Real}, true
}

// Invert implements [Inverter].
func (PlaneMirror) Invert(X, Y float64) (float64, float64, bool) {
	return -X, Y, true
}

// ConcaveMirror is a spherical mirror with its centre of curvature at the
// origin.  The reflecting surface is the left half of the circle of
// radius R, facing objects at positive x.
type ConcaveMirror struct {
	R float64
}

// Name implements [Element].
func (ConcaveMirror) Name() string { return "concave" }

// Validate implements [Element].
func (m ConcaveMirror) Validate() error {
	return RadiusRange.check("R", m.R)
}

// Focus returns the focal point (−R/2, 0).
func (m ConcaveMirror) Focus() (float64, float64) { return -m.R / 2, 0 }

// Hit returns the point where the axis-parallel ray at height y meets the
// mirror.
func (m ConcaveMirror) Hit(y float64) (float64, float64, bool) {
	if math.Abs(y) > m.R {
		return 0, 0, false
	}
	return -math.Sqrt(m.R*m.R - y*y), y, true
}

// Solve intersects two rays from the object: the ray parallel to the axis,
// reflected at the mirror, and the ray through the centre of curvature,
// which is reflected back onto itself.
func (m ConcaveMirror) Solve(x, y float64) (ImagePoint, bool) {
	R := m.R
	if math.Abs(y) > R || x == 0 {
		return ImagePoint{}, false
	}
	s := math.Sqrt(R*R - y*y)

	// angle of incidence at the hit point (−s, y)
	theta := math.Atan2(y, s)
	slope := math.Tan(2 * theta)

	den := y/x + slope
	if math.Abs(den) < singularTolerance {
		return ImagePoint{}, false
	}
	X := -(slope*s - y) / den
	Y := -(y*slope*s - y*y) / (x * den)
	if !finite(X) || !finite(Y) {
		return ImagePoint{}, false
	}

	kind := Virtual
	if X < 0 {
		kind = Real
	}
	return ImagePoint{X: X, Y: Y, Kind: kind}, true
}

// ConvexMirror is a spherical mirror with its centre of curvature at the
// origin.  The reflecting surface is the right half of the circle of
// radius R, facing objects at x > R.
type ConvexMirror struct {
	R float64
}

// Name implements [Element].
func (ConvexMirror) Name() string { return "convex" }

// Validate implements [Element].
func (m ConvexMirror) Validate() error {
	return RadiusRange.check("R", m.R)
}

// Focus returns the virtual focal point (R/2, 0).
func (m ConvexMirror) Focus() (float64, float64) { return m.R / 2, 0 }

// Solve maps the object point to its virtual image.  Image and object lie
// on the same line through the centre of curvature.
func (m ConvexMirror) Solve(x, y float64) (ImagePoint, bool) {
	R := m.R
	if math.Abs(y) > R || y == 0 {
		return ImagePoint{}, false
	}
	alpha := 0.5 * math.Atan2(y, x)
	k := x / math.Cos(2*alpha)
	sa, ca := math.Sin(alpha), math.Cos(alpha)

	den := k/R - ca + (x/y)*sa
	if math.Abs(den) < singularTolerance {
		return ImagePoint{}, false
	}
	Y := k * sa / den
	X := x * Y / y
	if !finite(X) || !finite(Y) {
		return ImagePoint{}, false
	}
	return ImagePoint{X: X, Y: Y, Kind: Virtual}, true
}

// Invert implements [Inverter].
//
// Writing the object in polar coordinates (r, φ), the forward map gives
// the image height Y = r·sin(φ/2) / (r/R − 1/(2cos(φ/2))) on the same ray
// through the origin, which can be solved for r.  Both directions along
// the ray are tried.
func (m ConvexMirror) Invert(X, Y float64) (float64, float64, bool) {
	if Y == 0 {
		return 0, 0, false
	}
	base := math.Atan2(Y, X)
	for _, phi := range [2]float64{base, base + math.Pi} {
		if phi > math.Pi {
			phi -= 2 * math.Pi
		}
		a := math.Sin(phi / 2)
		c := math.Cos(phi / 2)
		if math.Abs(c) < singularTolerance {
			continue
		}
		den := Y/m.R - a
		if math.Abs(den) < singularTolerance {
			continue
		}
		r := Y / (2 * c) / den
		if r <= 0 || !finite(r) {
			continue
		}
		x, y := r*math.Cos(phi), r*math.Sin(phi)
		if img, ok := m.Solve(x, y); ok && near(img.X, X) && near(img.Y, Y) {
			return x, y, true
		}
	}
	return 0, 0, false
}

// CylinderMirror is a reflecting cylinder of radius R around the origin,
// as used for cylindrical anamorphosis.  Points on a plane drawing are
// mapped to the positions where their reflection appears.
type CylinderMirror struct {
	R float64
}

// Name implements [Element].
func (CylinderMirror) Name() string { return "cylinder" }

// Validate implements [Element].
func (m CylinderMirror) Validate() error {
	return CylinderRadiusRange.check("R", m.R)
}

// Solve maps a point to its anamorphic position.
func (m CylinderMirror) Solve(x, y float64) (ImagePoint, bool) {
	alpha := 0.5 * math.Atan2(y, x)
	sa, ca := math.Sin(alpha), math.Cos(alpha)
	num := m.R * (y*ca - x*sa)
	den := y - m.R*sa
	if math.Abs(den) < 1e-12 {
		return ImagePoint{}, false
	}
	k := num / den
	X, Y := k*math.Cos(2*alpha), k*math.Sin(2*alpha)
	if !finite(X) || !finite(Y) {
		return ImagePoint{}, false
	}
	return ImagePoint{X: X, Y: Y, Kind: Real}, true
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= roundTripTolerance*max(1, math.Abs(a), math.Abs(b))
}
