// Package server is the HTTP host for the dashboard cycle.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/fxanalyst/internal/dashboard"
)

//go:embed templates/*.html
var templateFS embed.FS

// Cycle is the part of dashboard.Service the server drives.
type Cycle interface {
	Refresh(ctx context.Context) (*dashboard.View, error)
	Forecast(ctx context.Context) (*dashboard.ForecastOutcome, error)
	Reset(ctx context.Context) error
}

// Server serves the HTML dashboard and its JSON API.
type Server struct {
	httpServer *http.Server
	cycle      Cycle
	page       *template.Template
	logger     zerolog.Logger
}

type pageData struct {
	View      *dashboard.View
	Headlines []string
	Notice    string
	Rationale string
	Error     string
}

func NewServer(addr string, cycle Cycle) *Server {
	s := &Server{
		cycle:  cycle,
		page:   template.Must(template.New("index.html").Funcs(funcs).ParseFS(templateFS, "templates/index.html")),
		logger: log.With().Str("component", "http_server").Logger(),
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routed handler, useful for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /forecast", s.handleForecastForm)
	mux.HandleFunc("POST /reset", s.handleResetForm)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/forecast", s.handleForecast)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Start begins serving HTTP requests.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("Dashboard listening")
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("HTTP server stopped")
		}
	}()
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// forecastStatus maps forecast errors onto HTTP statuses.
func forecastStatus(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrForecastUnavailable), errors.Is(err, dashboard.ErrNoRate):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GET /api/state
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	v, err := s.cycle.Refresh(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Refresh failed")
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

// POST /api/forecast
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	out, err := s.cycle.Forecast(r.Context())
	if err != nil {
		s.logger.Warn().Err(err).Msg("Forecast failed")
		s.writeError(w, forecastStatus(err), err)
		return
	}
	s.writeJSON(w, http.StatusCreated, out)
}

// POST /api/reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.cycle.Reset(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	v, err := s.cycle.Refresh(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Refresh failed")
		s.render(w, http.StatusInternalServerError, pageData{Error: err.Error()})
		return
	}

	data := pageData{View: v}
	if v.Graded.Changed() {
		data.Notice = "Predictions graded: " + strconv.Itoa(v.Graded.Settled)
	}
	s.render(w, http.StatusOK, data)
}

// POST /forecast, the page's "run forecast now" button
func (s *Server) handleForecastForm(w http.ResponseWriter, r *http.Request) {
	out, err := s.cycle.Forecast(r.Context())
	if err != nil {
		s.logger.Warn().Err(err).Msg("Forecast failed")
		data := pageData{Error: "Forecast unavailable, nothing was recorded: " + err.Error()}
		if v, rerr := s.cycle.Refresh(r.Context()); rerr == nil {
			data.View = v
		}
		s.render(w, forecastStatus(err), data)
		return
	}

	s.render(w, http.StatusOK, pageData{
		View:      out.View,
		Notice:    "Forecast recorded: " + string(out.Entry.Direction) + " at " + out.Entry.ReferenceRate.String(),
		Rationale: out.Forecast.Rationale,
	})
}

// POST /reset
func (s *Server) handleResetForm(w http.ResponseWriter, r *http.Request) {
	if err := s.cycle.Reset(r.Context()); err != nil {
		s.render(w, http.StatusInternalServerError, pageData{Error: err.Error()})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	if data.View != nil {
		data.Headlines = data.View.Headlines
		if len(data.Headlines) > dashboard.DisplayHeadlines {
			data.Headlines = data.Headlines[:dashboard.DisplayHeadlines]
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.page.Execute(w, data); err != nil {
		s.logger.Error().Err(err).Msg("Template failed")
	}
}
