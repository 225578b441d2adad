// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// EventsHandler handles event collection and item requests.
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// eventResponse mirrors the JSON shape of one event.
type eventResponse struct {
	Name string `json:"name"`
}

// createEventRequest mirrors the JSON body of POST /events.
type createEventRequest struct {
	Name string `json:"name"`
}

func (e createEventRequest) validate() error {
	switch {
	case strings.TrimSpace(e.Name) == "":
		return ErrMissingName
	case strings.ContainsAny(e.Name, "/\\"):
		return ErrInvalidName
	}
	return nil
}

// HandleEvents handles GET /events and POST /events.
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		events, err := h.deps.ListEvents(r.Context())
		if err != nil {
			writeEngineError(w, err)
			return
		}
		out := make([]eventResponse, len(events))
		for i, e := range events {
			out[i] = eventResponse{Name: e.Name}
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPost:
		var req createEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		if err := h.deps.CreateEvent(r.Context(), req.Name); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, eventResponse{Name: req.Name})
	default:
		http.NotFound(w, r)
	}
}

// HandleEvent handles DELETE /events/{name}.
func (h *EventsHandler) HandleEvent(w http.ResponseWriter, r *http.Request, event string) {
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.DeleteEvent(r.Context(), event); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// checkResponse mirrors the JSON shape of a consistency audit.
type checkResponse struct {
	Violations []string `json:"violations"`
}

// HandleCheck handles GET /events/{name}/check.
func (h *EventsHandler) HandleCheck(w http.ResponseWriter, r *http.Request, event string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	violations, err := h.deps.CheckEvent(r.Context(), event)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{Violations: violations})
}
