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
	"errors"
	"fmt"
	"math"
)

var (
	// ErrParameter is returned when an element parameter is outside its
	// allowed range.
	ErrParameter = errors.New("optics: parameter out of range")

	// ErrUnknownElement is returned for an unrecognised element name.
	ErrUnknownElement = errors.New("optics: unknown element")
)

// Range describes the allowed values of a user-adjustable parameter.
type Range struct {
	Min, Max float64
	Step     float64
	Default  float64
}

// Parameter ranges used by the simulations.
var (
	RadiusRange         = Range{Min: 1, Max: 10, Step: 0.5, Default: 5}
	ConvexFocalRange    = Range{Min: 0.5, Max: 5, Step: 0.1, Default: 0.5}
	ConcaveFocalRange   = Range{Min: -5, Max: -0.1, Step: 0.1, Default: -0.5}
	OuterRadiusRange    = Range{Min: 1.5, Max: 6, Step: 0.1, Default: 3}
	SectorDegreesRange  = Range{Min: 30, Max: 360, Step: 5, Default: 180}
	CylinderRadiusRange = Range{Min: 0.5, Max: 5, Step: 0.1, Default: 1}
)

// Clamp limits v to the range and rounds it to the nearest step.
func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Default
	}
	if r.Step > 0 {
		v = r.Min + math.Round((v-r.Min)/r.Step)*r.Step
	}
	return min(max(v, r.Min), r.Max)
}

// Contains reports whether v lies in the closed range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) check(name string, v float64) error {
	if !r.Contains(v) {
		return fmt.Errorf("%s = %g not in [%g, %g]: %w", name, v, r.Min, r.Max, ErrParameter)
	}
	return nil
}

// New returns the element with the given name and default parameters.
// Recognised names are "plane", "concave", "convex", "lens",
// "diverging", "anamorphic" and "cylinder".
func New(name string) (Element, error) {
	switch name {
	case "plane":
		return PlaneMirror{}, nil
	case "concave":
		return ConcaveMirror{R: RadiusRange.Default}, nil
	case "convex":
		return ConvexMirror{R: RadiusRange.Default}, nil
	case "lens":
		return ThinLens{F: ConvexFocalRange.Default}, nil
	case "diverging":
		return ThinLens{F: ConcaveFocalRange.Default}, nil
	case "anamorphic":
		return NewAnamorphicProjector(OuterRadiusRange.Default, SectorDegreesRange.Default), nil
	case "cylinder":
		return CylinderMirror{R: CylinderRadiusRange.Default}, nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownElement)
}

// Names lists the element names accepted by [New].
var Names = []string{"plane", "concave", "convex", "lens", "diverging", "anamorphic", "cylinder"}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func abs(v float64) float64 {
	return math.Abs(v)
}

// Describe returns a short human-readable description of e, for example
// "concave R=5".
func Describe(e Element) string {
	switch e := e.(type) {
	case ConcaveMirror:
		return fmt.Sprintf("concave R=%g", e.R)
	case ConvexMirror:
		return fmt.Sprintf("convex R=%g", e.R)
	case CylinderMirror:
		return fmt.Sprintf("cylinder R=%g", e.R)
	case ThinLens:
		return fmt.Sprintf("%s f=%g", e.Name(), e.F)
	case AnamorphicProjector:
		return fmt.Sprintf("anamorphic R=%g sector=%g°", e.OuterRadius, e.SectorDegrees)
	default:
		return e.Name()
	}
}
