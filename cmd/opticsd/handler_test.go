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

package main

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"seehuhn.de/go/optics/internal/config"
	"seehuhn.de/go/optics/warp"
)

func testConfig() *config.Config {
	return &config.Config{
		Width:      320,
		Height:     240,
		Resolution: 60,
		Block:      4,
		Warp:       "auto",
	}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	h := newRouter(newServer(testConfig(), nil))
	rec := get(t, h, "/healthz")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("no request id")
	}
}

func TestRenderPNG(t *testing.T) {
	h := newRouter(newServer(testConfig(), nil))
	cases := []struct {
		target string
		w, h   int
	}{
		{"/render/concave.png", 320, 240},
		{"/render/lens.png?w=200&h=100&x=2&y=-0.3", 200, 100},
		{"/render/convex.png?mode=forward&param=3", 320, 240},
		{"/render/anamorphic.png?cx=0&cy=-2&scale=50", 320, 240},
		{"/render/plane.png?backend=gg&w=64&h=48", 64, 48},
	}
	for _, c := range cases {
		rec := get(t, h, c.target)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status %d: %s", c.target, rec.Code, rec.Body.String())
			continue
		}
		if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("%s: content type %q", c.target, ct)
		}
		img, err := png.Decode(rec.Body)
		if err != nil {
			t.Errorf("%s: %v", c.target, err)
			continue
		}
		if b := img.Bounds(); b.Dx() != c.w || b.Dy() != c.h {
			t.Errorf("%s: got %dx%d", c.target, b.Dx(), b.Dy())
		}
	}
}

func TestRenderPDF(t *testing.T) {
	h := newRouter(newServer(testConfig(), nil))
	rec := get(t, h, "/render/concave.pdf?w=300&h=200")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Errorf("not a PDF file")
	}
}

func TestRenderErrors(t *testing.T) {
	h := newRouter(newServer(testConfig(), nil))
	cases := []struct {
		target string
		status int
	}{
		{"/render/prism.png", http.StatusNotFound},
		{"/render/concave.gif", http.StatusNotFound},
		{"/render/concave.png?w=0", http.StatusBadRequest},
		{"/render/concave.png?w=100000", http.StatusBadRequest},
		{"/render/concave.png?x=left", http.StatusBadRequest},
		{"/render/concave.png?mode=sideways", http.StatusBadRequest},
		{"/render/concave.png?backend=opengl", http.StatusBadRequest},
		{"/render/plane.png?param=2", http.StatusBadRequest},
		{"/render/plane.png?cx=NaN", http.StatusBadRequest},
		{"/render/plane.png?cy=-Inf", http.StatusBadRequest},
		{"/render/plane.png?scale=Inf", http.StatusBadRequest},
	}
	for _, c := range cases {
		if rec := get(t, h, c.target); rec.Code != c.status {
			t.Errorf("%s: got status %d, want %d", c.target, rec.Code, c.status)
		}
	}
}

func TestRenderFarAway(t *testing.T) {
	h := newRouter(newServer(testConfig(), nil))
	for _, target := range []string{
		"/render/plane.png?cx=1e20&w=64&h=48",
		"/render/lens.png?cx=-1e300&cy=1e300&w=64&h=48",
	} {
		done := make(chan int, 1)
		go func() {
			done <- get(t, h, target).Code
		}()
		select {
		case code := <-done:
			if code != http.StatusOK {
				t.Errorf("%s: status %d", target, code)
			}
		case <-time.After(10 * time.Second):
			t.Fatalf("%s: no response", target)
		}
	}
}

func TestUpload(t *testing.T) {
	h := newRouter(newServer(testConfig(), nil))

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetRGBA(0, 0, color.RGBA{R: 0xff, A: 0xff})
	body := &bytes.Buffer{}
	if err := png.Encode(body, img); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/render/lens.png?w=100&h=100", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/render/lens.png", strings.NewReader("garbage")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("garbage upload: status %d", rec.Code)
	}
}

func TestUploadTooLarge(t *testing.T) {
	h := newRouter(newServer(testConfig(), nil))

	// a PNG header declaring 60000x60000 pixels, with no pixel data
	ihdr := []byte("IHDR")
	ihdr = binary.BigEndian.AppendUint32(ihdr, 60000)
	ihdr = binary.BigEndian.AppendUint32(ihdr, 60000)
	ihdr = append(ihdr, 8, 6, 0, 0, 0)
	body := []byte("\x89PNG\r\n\x1a\n")
	body = binary.BigEndian.AppendUint32(body, 13)
	body = append(body, ihdr...)
	body = binary.BigEndian.AppendUint32(body, crc32.ChecksumIEEE(ihdr))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/render/lens.png", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "too large") {
		t.Errorf("got %q", rec.Body.String())
	}
}

func TestParseRequest(t *testing.T) {
	q := url.Values{}
	q.Set("x", "2.5")
	q.Set("scale", "250")
	q.Set("mode", "inverse")
	req, err := parseRequest(map[string]string{"scene": "lens", "format": "png"}, q, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if req.at == nil || req.at.X != 2.5 || req.at.Y != 0 {
		t.Errorf("placement %v", req.at)
	}
	if req.mode != warp.Inverse || req.backend != "raster" {
		t.Errorf("got %+v", req)
	}
	if req.pan != [3]bool{false, false, true} || req.view.Scale != 250 {
		t.Errorf("view %+v, %v", req.view, req.pan)
	}
	if req.width != 320 || req.height != 240 {
		t.Errorf("size %dx%d", req.width, req.height)
	}
}
