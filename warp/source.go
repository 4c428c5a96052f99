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

package warp

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	// image formats accepted by Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
	"seehuhn.de/go/geom/rect"
)

// ErrEmptySource is returned for images without pixels.
var ErrEmptySource = errors.New("warp: empty source image")

// Source is a decoded raster image which can be sampled by pixel
// coordinates.
type Source struct {
	img *image.RGBA
}

// NewSource copies img into a new Source.
func NewSource(img image.Image) (*Source, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptySource
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return &Source{img: dst}, nil
}

// MaxPixels bounds the number of pixels of an image read by [Decode].
const MaxPixels = 4096 * 4096

// ErrTooLarge is returned by [Decode] for images with more than
// [MaxPixels] pixels.
var ErrTooLarge = errors.New("warp: source image too large")

// Decode reads a PNG, JPEG, GIF, BMP, TIFF or WebP image.  The image
// header is checked before the pixels are decoded, so that oversized
// images are rejected without allocating their pixel buffer.
func Decode(r io.Reader) (*Source, error) {
	head := &bytes.Buffer{}
	cfg, format, err := image.DecodeConfig(io.TeeReader(r, head))
	if err != nil {
		return nil, fmt.Errorf("decode source image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%s image: %w", format, ErrEmptySource)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%s image %dx%d: %w", format, cfg.Width, cfg.Height, ErrTooLarge)
	}

	img, format, err := image.Decode(io.MultiReader(head, r))
	if err != nil {
		return nil, fmt.Errorf("decode source image: %w", err)
	}
	src, err := NewSource(img)
	if err != nil {
		return nil, fmt.Errorf("%s image: %w", format, err)
	}
	return src, nil
}

// Width returns the width in pixels.
func (s *Source) Width() int { return s.img.Rect.Dx() }

// Height returns the height in pixels.
func (s *Source) Height() int { return s.img.Rect.Dy() }

// Image returns the pixels.  The caller must not modify the image.
func (s *Source) Image() *image.RGBA { return s.img }

// Sample returns the pixel containing the point (u, v), in pixel
// coordinates with (0, 0) at the top-left corner.  Coordinates outside
// the image are clamped to the nearest edge pixel.
func (s *Source) Sample(u, v float64) color.RGBA {
	i := clampIndex(u, s.Width())
	j := clampIndex(v, s.Height())
	return s.img.RGBAAt(i, j)
}

func clampIndex(t float64, n int) int {
	if !(t >= 0) {
		return 0
	}
	if t >= float64(n) {
		return n - 1
	}
	return int(t)
}

// Footprint returns the world rectangle of the given height, centred at
// (cx, cy), whose aspect ratio matches the source image.
func (s *Source) Footprint(cx, cy, height float64) rect.Rect {
	width := height * float64(s.Width()) / float64(s.Height())
	return rect.Rect{
		LLx: cx - width/2,
		LLy: cy - height/2,
		URx: cx + width/2,
		URy: cy + height/2,
	}
}

// Checkerboard returns a size×size test image with cells×cells squares in
// two alternating colours.  The top-left quadrant is tinted red so that
// orientation is visible after warping.
func Checkerboard(size, cells int) *Source {
	size = max(size, 1)
	cells = max(cells, 1)
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	light := color.RGBA{R: 0xe8, G: 0xe8, B: 0xe8, A: 0xff}
	dark := color.RGBA{R: 0x30, G: 0x60, B: 0xa0, A: 0xff}
	for y := range size {
		for x := range size {
			c := dark
			if (x*cells/size+y*cells/size)%2 == 0 {
				c = light
			}
			if x < size/2 && y < size/2 {
				c.R = 0xff
			}
			img.SetRGBA(x, y, c)
		}
	}
	return &Source{img: img}
}
