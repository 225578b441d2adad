// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/scanmark/internal/app"
	"github.com/okian/scanmark/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the engine implementation.
type Dependencies interface {
	ListEvents(ctx context.Context) ([]model.Event, error)
	CreateEvent(ctx context.Context, name string) error
	DeleteEvent(ctx context.Context, name string) error
	ListPlayers(ctx context.Context, event string) ([]model.Player, error)
	SetPlayers(ctx context.Context, event string, players []model.Player) error
	ListScans(ctx context.Context, event string, unmarkedOnly bool) ([]model.Scan, error)
	GetScan(ctx context.Context, event, id string) (model.Scan, error)
	PostScan(ctx context.Context, event string, data []byte) (string, error)
	MarkScan(ctx context.Context, event, scanID, playerID string) error
	CheckEvent(ctx context.Context, event string) ([]string, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	maxPayloadBytes int64

	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	eventsHandler  *EventsHandler
	playersHandler *PlayersHandler
	scansHandler   *ScansHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		maxPayloadBytes: defaultMaxPayloadBytes,
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		eventsHandler:   NewEventsHandler(deps),
		playersHandler:  NewPlayersHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.scansHandler = NewScansHandler(deps, s.maxPayloadBytes)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandleEvents, "events"))
	mux.HandleFunc("/events/", s.handleEventScoped)
}

// handleEventScoped dispatches everything under /events/{name} by path
// shape: the event itself, its players collection, its scans collection,
// one scan, a scan's mark, or the consistency check.
func (s *Server) handleEventScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/events/")
	segs := strings.Split(rest, "/")
	if len(segs) == 0 || segs[0] == "" {
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	event := segs[0]

	switch {
	case len(segs) == 1:
		MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			s.eventsHandler.HandleEvent(w, r, event)
		}, "event")(w, r)
	case len(segs) == 2 && segs[1] == "players":
		MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			s.playersHandler.HandlePlayers(w, r, event)
		}, "players")(w, r)
	case len(segs) == 2 && segs[1] == "check":
		MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			s.eventsHandler.HandleCheck(w, r, event)
		}, "check")(w, r)
	case len(segs) == 2 && segs[1] == "scans":
		MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			s.scansHandler.HandleScans(w, r, event)
		}, "scans")(w, r)
	case len(segs) == 3 && segs[1] == "scans":
		MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			s.scansHandler.HandleScan(w, r, event, segs[2])
		}, "scan")(w, r)
	case len(segs) == 4 && segs[1] == "scans" && segs[3] == "mark":
		MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			s.scansHandler.HandleMark(w, r, event, segs[2])
		}, "mark")(w, r)
	default:
		writeError(w, http.StatusNotFound, "not_found", nil)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeEngineError maps engine error kinds onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, app.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already_exists", err)
	case errors.Is(err, app.ErrUnavailable):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
