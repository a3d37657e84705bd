package api

import (
	"encoding/json"
	"net/http"
)

// DetectionController is the live switchboard of the running pipeline.
type DetectionController interface {
	IsEnabled() bool
	SetEnabled(enabled bool)
	Live() bool
	SetLive(live bool)
}

// DetectionHandler reads and toggles detection and the key mode.
//
//	GET /api/detection
//	PUT /api/detection {"enabled": false, "live": true}
type DetectionHandler struct {
	ctrl DetectionController
}

// NewDetectionHandler creates a new DetectionHandler.
func NewDetectionHandler(ctrl DetectionController) *DetectionHandler {
	return &DetectionHandler{ctrl: ctrl}
}

type detectionState struct {
	Enabled bool   `json:"enabled"`
	Live    bool   `json:"live"`
	Mode    string `json:"mode"`
}

// detectionUpdate leaves a field unchanged when it is absent.
type detectionUpdate struct {
	Enabled *bool `json:"enabled"`
	Live    *bool `json:"live"`
}

func (h *DetectionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req detectionUpdate
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil && req.Live == nil {
			writeError(w, http.StatusBadRequest, "enabled or live is required")
			return
		}
		if req.Enabled != nil {
			h.ctrl.SetEnabled(*req.Enabled)
		}
		if req.Live != nil {
			h.ctrl.SetLive(*req.Live)
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, h.state())
}

func (h *DetectionHandler) state() detectionState {
	s := detectionState{Enabled: h.ctrl.IsEnabled(), Live: h.ctrl.Live(), Mode: "test"}
	if s.Live {
		s.Mode = "live"
	}
	return s
}
