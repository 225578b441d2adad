// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ScansHandler handles scan collection and item requests.
type ScansHandler struct {
	deps            Dependencies
	maxPayloadBytes int64
}

// NewScansHandler creates a new scans handler.
func NewScansHandler(deps Dependencies, maxPayloadBytes int64) *ScansHandler {
	return &ScansHandler{deps: deps, maxPayloadBytes: maxPayloadBytes}
}

// scanResponse mirrors the JSON shape of one scan. Data is base64 and only
// present on single-scan reads.
type scanResponse struct {
	ID       string `json:"id"`
	PlayerID string `json:"player_id,omitempty"`
	Data     []byte `json:"data,omitempty"`
}

// postScanRequest mirrors the JSON body of POST /events/{name}/scans.
type postScanRequest struct {
	Data []byte `json:"data"`
}

// postScanResponse carries the generated scan id.
type postScanResponse struct {
	ID string `json:"id"`
}

// markRequest mirrors the JSON body of PUT /events/{name}/scans/{id}/mark.
// An empty player_id clears the assignment.
type markRequest struct {
	PlayerID string `json:"player_id"`
}

// HandleScans handles GET and POST /events/{name}/scans.
func (h *ScansHandler) HandleScans(w http.ResponseWriter, r *http.Request, event string) {
	switch r.Method {
	case http.MethodGet:
		unmarkedOnly := r.URL.Query().Get("unmarked_only") == "true"
		scans, err := h.deps.ListScans(r.Context(), event, unmarkedOnly)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		out := make([]scanResponse, len(scans))
		for i, sc := range scans {
			out[i] = scanResponse{ID: sc.ID, PlayerID: sc.PlayerID}
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, h.maxPayloadBytes)
		var req postScanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", ErrPayloadTooLarge)
				return
			}
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		if len(req.Data) == 0 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrMissingPayload)
			return
		}
		id, err := h.deps.PostScan(r.Context(), event, req.Data)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, postScanResponse{ID: id})
	default:
		http.NotFound(w, r)
	}
}

// HandleScan handles GET /events/{name}/scans/{id}.
func (h *ScansHandler) HandleScan(w http.ResponseWriter, r *http.Request, event, id string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	sc, err := h.deps.GetScan(r.Context(), event, id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scanResponse{ID: sc.ID, PlayerID: sc.PlayerID, Data: sc.Data})
}

// HandleMark handles PUT /events/{name}/scans/{id}/mark.
func (h *ScansHandler) HandleMark(w http.ResponseWriter, r *http.Request, event, id string) {
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	var req markRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := h.deps.MarkScan(r.Context(), event, id, req.PlayerID); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
