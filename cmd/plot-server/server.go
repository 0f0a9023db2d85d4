package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/njchilds90/gosymplot/interactive"
	"github.com/patrickmn/go-cache"
	"github.com/sgostarter/i/commerr"
	"github.com/sgostarter/i/l"
)

type server struct {
	sessions *cache.Cache
	nextID   atomic.Uint64
	logger   l.Wrapper
}

// newServer keeps interactive plots for ttl after their last use.
func newServer(ttl time.Duration, logger l.Wrapper) *server {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}
	return &server{
		sessions: cache.New(ttl, ttl/2),
		logger:   logger.WithFields(l.StringField(l.ClsKey, "plotServer")),
	}
}

func status(err error) int {
	if errors.Is(err, commerr.ErrInvalidArgument) {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	d, err := readDocument(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, err := d.Build(buildOptions(r, s.logger)...)
	if err != nil {
		writeError(w, status(err), err)
		return
	}
	writeFigure(w, p.Backend().Name(), p.Show)
}

func (s *server) handleControls(w http.ResponseWriter, r *http.Request) {
	d, err := readDocument(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	specs, err := d.ParamSpecs()
	if err != nil {
		writeError(w, status(err), err)
		return
	}
	opts := []interactive.Option{interactive.WithLogger(s.logger)}
	if d.Layout.Kind != "" {
		opts = append(opts, interactive.WithLayout(d.Layout.Kind))
	}
	if d.Layout.NCols > 0 {
		opts = append(opts, interactive.WithNCols(d.Layout.NCols))
	}
	opts = append(opts, interactive.WithUseLatex(d.Layout.UseLatex))
	b, err := interactive.NewBindings(specs, opts...)
	if err != nil {
		writeError(w, status(err), err)
		return
	}
	writeJSON(w, http.StatusOK, controlsResponse(b))
}

func controlsResponse(b *interactive.Bindings) map[string]interface{} {
	return map[string]interface{}{
		"layout":   b.LayoutKind(),
		"rows":     b.Layout(),
		"controls": b.Controls(),
		"values":   b.Read(),
	}
}

func (s *server) handleOpen(w http.ResponseWriter, r *http.Request) {
	d, err := readDocument(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !d.Interactive() {
		writeError(w, http.StatusBadRequest, fmt.Errorf("document declares no parameters"))
		return
	}
	ip, err := d.BuildInteractive(buildOptions(r, s.logger)...)
	if err != nil {
		writeError(w, status(err), err)
		return
	}
	id := fmt.Sprintf("s%d", s.nextID.Add(1))
	s.sessions.SetDefault(id, ip)
	s.logger.WithFields(l.StringField("session", id), l.IntField("series", ip.Plot().Len())).Debug("session opened")

	resp := controlsResponse(ip.Bindings())
	resp["id"] = id
	writeJSON(w, http.StatusCreated, resp)
}

// session looks up the plot and extends its lifetime.
func (s *server) session(w http.ResponseWriter, r *http.Request) (*interactive.InteractivePlot, bool) {
	id := r.PathValue("id")
	v, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown session %q", id))
		return nil, false
	}
	s.sessions.SetDefault(id, v)
	return v.(*interactive.InteractivePlot), true
}

func (s *server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ip, ok := s.session(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	var changes map[string]float64
	if err := dec.Decode(&changes); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if dec.More() {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON: trailing data"))
		return
	}
	indices, err := ip.Update(changes)
	if err != nil {
		writeError(w, status(err), err)
		return
	}
	if indices == nil {
		indices = []int{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"updated": indices,
		"values":  ip.Bindings().Read(),
	})
}

func (s *server) handleFig(w http.ResponseWriter, r *http.Request) {
	ip, ok := s.session(w, r)
	if !ok {
		return
	}
	writeFigure(w, ip.Plot().Backend().Name(), ip.Show)
}

func (s *server) handleClose(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.sessions.Get(id); !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown session %q", id))
		return
	}
	s.sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}
