// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/scanmark/internal/domain/model"
)

// PlayersHandler handles player collection requests.
type PlayersHandler struct {
	deps Dependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps Dependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// playerPayload mirrors the JSON shape of one player. ScanID is read-only
// from the client's point of view; it is ignored on PUT.
type playerPayload struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	ScanID string `json:"scan_id,omitempty"`
}

// HandlePlayers handles GET and PUT /events/{name}/players.
func (h *PlayersHandler) HandlePlayers(w http.ResponseWriter, r *http.Request, event string) {
	switch r.Method {
	case http.MethodGet:
		players, err := h.deps.ListPlayers(r.Context(), event)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		out := make([]playerPayload, len(players))
		for i, p := range players {
			out[i] = playerPayload{ID: p.ID, Name: p.Name, ScanID: p.ScanID}
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPut:
		var req []playerPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		players := make([]model.Player, len(req))
		for i, p := range req {
			if strings.TrimSpace(p.ID) == "" {
				writeError(w, http.StatusBadRequest, "bad_request", ErrMissingPlayerID)
				return
			}
			players[i] = model.Player{ID: p.ID, Name: p.Name}
		}
		if err := h.deps.SetPlayers(r.Context(), event, players); err != nil {
			writeEngineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}
