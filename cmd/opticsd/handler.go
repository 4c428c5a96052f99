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
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/gorilla/mux"

	"seehuhn.de/go/optics"
	"seehuhn.de/go/optics/internal/config"
	"seehuhn.de/go/optics/scene"
	"seehuhn.de/go/optics/surface"
	"seehuhn.de/go/optics/surface/ggsurface"
	"seehuhn.de/go/optics/surface/pdfsurface"
	"seehuhn.de/go/optics/viewport"
	"seehuhn.de/go/optics/warp"
)

const (
	maxUploadSize = 10 << 20 // 10MB
	maxImageSide  = 4096
)

type server struct {
	cfg *config.Config
	src *warp.Source
}

func newServer(cfg *config.Config, src *warp.Source) *server {
	return &server{cfg: cfg, src: src}
}

func newRouter(srv *server) http.Handler {
	r := mux.NewRouter()
	r.Use(logRequests)
	r.Use(recoverPanics)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.HandleFunc("/render/{scene:[a-z]+}.{format:png|pdf}", srv.render).Methods("GET", "POST")
	return r
}

// renderRequest holds the parsed parameters of a render request.
type renderRequest struct {
	scene   string
	format  string
	backend string
	width   int
	height  int
	mode    warp.Mode

	at    *scene.Placement
	param *float64
	view  viewport.View
	pan   [3]bool // cx, cy and scale given
}

// parseRequest reads the query parameters of a render request:
//
//	x, y       object placement
//	param      the element's main parameter
//	cx, cy     view centre
//	scale      pixels per world unit
//	w, h       image size in pixels
//	mode       warp strategy: auto, forward or inverse
//	backend    raster or gg (PNG only)
func parseRequest(vars map[string]string, q url.Values, cfg *config.Config) (*renderRequest, error) {
	req := &renderRequest{
		scene:   vars["scene"],
		format:  vars["format"],
		backend: q.Get("backend"),
		width:   cfg.Width,
		height:  cfg.Height,
	}
	if req.backend == "" {
		req.backend = "raster"
	}
	if req.backend != "raster" && req.backend != "gg" {
		return nil, fmt.Errorf("unknown backend %q", req.backend)
	}

	var err error
	if req.width, err = intParam(q, "w", req.width); err != nil {
		return nil, err
	}
	if req.height, err = intParam(q, "h", req.height); err != nil {
		return nil, err
	}
	if req.width < 1 || req.height < 1 || req.width > maxImageSide || req.height > maxImageSide {
		return nil, fmt.Errorf("invalid image size %dx%d", req.width, req.height)
	}

	modeName := q.Get("mode")
	if modeName == "" {
		modeName = cfg.Warp
	}
	if req.mode, err = warp.ParseMode(modeName); err != nil {
		return nil, err
	}

	if q.Has("x") || q.Has("y") {
		x, err := floatParam(q, "x", 0)
		if err != nil {
			return nil, err
		}
		y, err := floatParam(q, "y", 0)
		if err != nil {
			return nil, err
		}
		req.at = &scene.Placement{X: x, Y: y}
	}
	if q.Has("param") {
		v, err := floatParam(q, "param", 0)
		if err != nil {
			return nil, err
		}
		req.param = &v
	}
	for i, key := range []string{"cx", "cy", "scale"} {
		if !q.Has(key) {
			continue
		}
		v, err := floatParam(q, key, 0)
		if err != nil {
			return nil, err
		}
		switch i {
		case 0:
			req.view.CX = v
		case 1:
			req.view.CY = v
		case 2:
			req.view.Scale = v
		}
		req.pan[i] = true
	}
	return req, nil
}

func intParam(q url.Values, key string, def int) (int, error) {
	s := q.Get(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %w", key, err)
	}
	return v, nil
}

func floatParam(q url.Values, key string, def float64) (float64, error) {
	s := q.Get(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %w", key, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("parameter %s: %q is not finite", key, s)
	}
	return v, nil
}

// build sets up the scene described by req.
func (srv *server) build(req *renderRequest, src *warp.Source) (*scene.Scene, error) {
	sc, err := scene.New(req.scene, src)
	if err != nil {
		return nil, err
	}
	sc.Renderer = srv.cfg.Renderer()
	sc.Renderer.Mode = req.mode
	if req.param != nil {
		if err := sc.SetParam(*req.param); err != nil {
			return nil, err
		}
	}
	if req.at != nil {
		sc.MoveTo(req.at.X, req.at.Y)
	}
	if req.pan[0] {
		sc.Home.CX = req.view.CX
	}
	if req.pan[1] {
		sc.Home.CY = req.view.CY
	}
	if req.pan[2] {
		sc.Home.Scale = req.view.Scale
	}
	return sc, nil
}

func draw(sc *scene.Scene, s surface.Surface) {
	e := viewport.NewEngine(s, sc.EngineOptions()...)
	sc.Attach(e)
	e.Draw()
}

func (srv *server) render(w http.ResponseWriter, r *http.Request) {
	log := slog.With("id", requestID(r.Context()))

	req, err := parseRequest(mux.Vars(r), r.URL.Query(), srv.cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	src := srv.src
	if r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		src, err = warp.Decode(r.Body)
		if err != nil {
			http.Error(w, "invalid image: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	sc, err := srv.build(req, src)
	switch {
	case errors.Is(err, optics.ErrUnknownElement):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch req.format {
	case "png":
		err = srv.writePNG(w, sc, req)
	case "pdf":
		err = srv.writePDF(w, sc, req)
	}
	if err != nil {
		log.Error("render", "scene", req.scene, "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	res := sc.LastResult()
	log.Debug("rendered", "scene", req.scene, "format", req.format,
		"mode", res.Mode, "solved", res.Solved, "skipped", res.Skipped)
}

func (srv *server) writePNG(w http.ResponseWriter, sc *scene.Scene, req *renderRequest) error {
	var img image.Image
	if req.backend == "gg" {
		s, err := ggsurface.New(req.width, req.height, 1)
		if err != nil {
			return err
		}
		defer s.Close()
		draw(sc, s)
		img = s.Image()
	} else {
		s := surface.NewSoftware(req.width, req.height)
		draw(sc, s)
		img = s.Image()
	}
	w.Header().Set("Content-Type", "image/png")
	return png.Encode(w, img)
}

func (srv *server) writePDF(w http.ResponseWriter, sc *scene.Scene, req *renderRequest) error {
	tmp, err := os.CreateTemp("", "opticsd-*.pdf")
	if err != nil {
		return err
	}
	fname := tmp.Name()
	tmp.Close()
	defer os.Remove(fname)

	s, err := pdfsurface.Create(fname, req.width, req.height)
	if err != nil {
		return err
	}
	draw(sc, s)
	if err := s.Close(); err != nil {
		return err
	}

	fd, err := os.Open(fname)
	if err != nil {
		return err
	}
	defer fd.Close()
	w.Header().Set("Content-Type", "application/pdf")
	_, err = io.Copy(w, fd)
	return err
}
