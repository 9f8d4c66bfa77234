// Package display - surfaces that show the live preview and annotated captures.
package display

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/nvr-ai/go-snapshot/capture"
	"github.com/nvr-ai/go-snapshot/controller"
	"github.com/nvr-ai/go-snapshot/images"
	"github.com/nvr-ai/go-snapshot/profiler"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Capturer is the controller surface the HTTP routes drive.
type Capturer interface {
	Capture(ctx context.Context) (*controller.Capture, error)
	Reset() error
	Toggle(ctx context.Context) (controller.State, error)
	State() controller.State
	Last() *controller.Capture
	Stats() profiler.Stats
}

// ServerConfig configures the HTTP display.
type ServerConfig struct {
	// Format is the default encoding for /snapshot.
	Format images.ImageFormat `json:"format" yaml:"format"`
	// Quality is the JPEG/WebP quality for /snapshot.
	Quality int `json:"quality" yaml:"quality"`
	// MaxWidth and MaxHeight bound /snapshot images; zero keeps full size.
	MaxWidth  int `json:"max_width" yaml:"max_width"`
	MaxHeight int `json:"max_height" yaml:"max_height"`
}

// Server is an HTTP display. While a capture is shown /snapshot serves it; otherwise
// /snapshot serves a live frame from the preview source.
type Server struct {
	cfg     ServerConfig
	preview capture.FrameSource
	logger  *zap.SugaredLogger

	mu      sync.RWMutex
	shown   image.Image
	shownAt time.Time
}

// NewServer creates the display.
//
// Arguments:
//   - cfg: The snapshot encoding settings.
//   - preview: The live frame source; nil disables the live preview.
//   - logger: The logger; nil discards output.
//
// Returns:
//   - *Server: The display. Pass it to controller.New, then serve Router(ctrl).
func NewServer(cfg ServerConfig, preview capture.FrameSource, logger *zap.SugaredLogger) *Server {
	if cfg.Format == "" {
		cfg.Format = images.FormatJPEG
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Server{cfg: cfg, preview: preview, logger: logger}
}

// Show replaces the preview with img.
func (s *Server) Show(img image.Image) error {
	if img == nil {
		return errors.New("nothing to show")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = img
	s.shownAt = time.Now()
	return nil
}

// Preview resumes the live preview.
func (s *Server) Preview() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = nil
	return nil
}

// Shown returns the image on display, or nil while previewing.
func (s *Server) Shown() image.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shown
}

// Router builds the HTTP routes.
//
//	GET  /health    liveness
//	GET  /state     current state and last capture
//	GET  /stats     stage timings
//	GET  /snapshot  shown capture or live frame (?format=jpeg|png|webp)
//	POST /capture   capture, detect, annotate, show
//	POST /reset     resume the preview
//	POST /toggle    capture or reset, like the capture button
func (s *Server) Router(ctrl Capturer) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	r.HandleFunc("/state", s.handleState(ctrl)).Methods("GET")
	r.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, ctrl.Stats())
	}).Methods("GET")
	r.HandleFunc("/snapshot", s.handleSnapshot).Methods("GET")
	r.HandleFunc("/capture", s.handleCapture(ctrl)).Methods("POST")
	r.HandleFunc("/reset", func(w http.ResponseWriter, r *http.Request) {
		if err := ctrl.Reset(); err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.writeJSON(w, http.StatusOK, stateResponse{State: ctrl.State(), Last: ctrl.Last()})
	}).Methods("POST")
	r.HandleFunc("/toggle", func(w http.ResponseWriter, r *http.Request) {
		state, err := ctrl.Toggle(r.Context())
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.writeJSON(w, http.StatusOK, stateResponse{State: state, Last: ctrl.Last()})
	}).Methods("POST")
	return r
}

type stateResponse struct {
	State controller.State    `json:"state"`
	Last  *controller.Capture `json:"last,omitempty"`
}

func (s *Server) handleState(ctrl Capturer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, stateResponse{State: ctrl.State(), Last: ctrl.Last()})
	}
}

func (s *Server) handleCapture(ctrl Capturer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := ctrl.Capture(r.Context())
		switch {
		case errors.Is(err, controller.ErrAlreadyShowing):
			s.writeError(w, http.StatusConflict, err)
		case err != nil:
			s.writeError(w, http.StatusInternalServerError, err)
		default:
			s.writeJSON(w, http.StatusCreated, c)
		}
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	format := s.cfg.Format
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := images.ParseFormat(q)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		format = f
	}

	img := s.Shown()
	source := "capture"
	if img == nil {
		if s.preview == nil {
			s.writeError(w, http.StatusNotFound, errors.New("no capture shown and no live preview"))
			return
		}
		frame, err := s.preview.Frame(r.Context())
		if err != nil {
			s.writeError(w, http.StatusServiceUnavailable, errors.Wrap(err, "preview frame"))
			return
		}
		img = frame
		source = "preview"
	}

	encoded, err := images.Encode(images.Thumbnail(img, s.cfg.MaxWidth, s.cfg.MaxHeight), format, s.cfg.Quality)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Snapshot-Source", source)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(encoded.Data); err != nil {
		s.logger.Debugw("snapshot write failed", "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debugw("response write failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Errorw("request failed", "status", status, "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
