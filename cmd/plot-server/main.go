// cmd/plot-server/main.go: HTTP server rendering gosymplot documents
//
// Usage:
//
//	go run ./cmd/plot-server -port 8080
//
// Render a document:        POST /render?backend=echarts
// Control descriptors:      POST /controls
// Open an interactive plot: POST /sessions
// Change its parameters:    POST /sessions/{id}/update
// Draw its current figure:  GET  /sessions/{id}
// Entry and backend names:  GET  /schema
// Liveness:                 GET  /health
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/njchilds90/gosymplot"
	"github.com/njchilds90/gosymplot/backend/ascii"
	"github.com/njchilds90/gosymplot/backend/echarts"
	"github.com/njchilds90/gosymplot/backend/plotly"
	"github.com/njchilds90/gosymplot/backend/xlsx"
	"github.com/njchilds90/gosymplot/config"
	"github.com/sgostarter/i/l"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	ttl := flag.Duration("session-ttl", 30*time.Minute, "Idle lifetime of an interactive session")
	flag.Parse()

	logger := l.NewConsoleLoggerWrapper()
	s := newServer(*ttl, logger)

	addr := fmt.Sprintf(":%d", *port)
	logger.WithFields(l.StringField("addr", addr)).Debug("gosymplot plot server listening")

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.WithFields(l.ErrorField(err)).Fatal("server stopped")
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /render", s.handleRender)
	mux.HandleFunc("POST /controls", s.handleControls)
	mux.HandleFunc("POST /sessions", s.handleOpen)
	mux.HandleFunc("POST /sessions/{id}/update", s.handleUpdate)
	mux.HandleFunc("GET /sessions/{id}", s.handleFig)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleClose)

	mux.HandleFunc("GET /schema", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"entries":  config.Entries(),
			"backends": gosymplot.Backends(),
			"default":  gosymplot.DefaultBackend,
		})
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"sessions": s.sessions.ItemCount(),
			"time":     time.Now().UTC().Format(time.RFC3339),
		})
	})

	return s.recoverPanics(mux)
}

func (s *server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.WithFields(l.StringField("path", r.URL.Path), l.StringField("stack", string(debug.Stack()))).
					Error(fmt.Sprintf("panic: %v", rec))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// readDocument parses a YAML or JSON plot document from the request
// body.
func readDocument(w http.ResponseWriter, r *http.Request) (*config.Document, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	return config.Parse(data)
}

// buildOptions forces the figure to be written and applies the backend
// named in the query.
func buildOptions(r *http.Request, logger l.Wrapper) []interface{} {
	opts := []interface{}{gosymplot.WithShow(true), gosymplot.WithLogger(logger)}
	if name := r.URL.Query().Get("backend"); name != "" {
		opts = append(opts, gosymplot.WithBackendName(name))
	}
	return opts
}

func contentType(backendName string, body []byte) string {
	switch backendName {
	case plotly.Name:
		return "application/json"
	case echarts.Name:
		return "text/html; charset=utf-8"
	case ascii.Name:
		return "text/plain; charset=utf-8"
	case xlsx.Name:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return http.DetectContentType(body)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeFigure renders into a buffer first so a failing backend still
// yields a clean error response.
func writeFigure(w http.ResponseWriter, backendName string, show func(io.Writer) error) {
	var buf bytes.Buffer
	if err := show(&buf); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	w.Header().Set("Content-Type", contentType(backendName, buf.Bytes()))
	_, _ = w.Write(buf.Bytes())
}
