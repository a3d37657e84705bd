package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/swipekeys/internal/gesture"
	"github.com/ayusman/swipekeys/internal/store"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 1000
)

// EventsHandler serves the swipe event log.
//
//	GET /api/events?limit=N
//	GET /api/events/stats
type EventsHandler struct {
	store *store.Store
}

// NewEventsHandler creates a new EventsHandler with the given store.
func NewEventsHandler(s *store.Store) *EventsHandler {
	return &EventsHandler{store: s}
}

type eventResponse struct {
	ID        int64   `json:"id"`
	Direction string  `json:"direction"`
	Key       string  `json:"key"`
	Mode      string  `json:"mode"`
	DX        float64 `json:"dx"`
	DY        float64 `json:"dy"`
	FiredAt   string  `json:"fired_at"`
}

type listEventsResponse struct {
	Events []eventResponse `json:"events"`
}

type statsResponse struct {
	Total  int                       `json:"total"`
	Counts map[gesture.Direction]int `json:"counts"`
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/events"), "/") {
	case "":
		h.list(w, r)
	case "/stats":
		h.stats(w)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *EventsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxEventLimit)
	}

	events, err := h.store.Events().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	resp := listEventsResponse{Events: make([]eventResponse, 0, len(events))}
	for _, e := range events {
		resp.Events = append(resp.Events, eventResponse{
			ID:        e.ID,
			Direction: string(e.Direction),
			Key:       e.Key,
			Mode:      e.Mode,
			DX:        e.DX,
			DY:        e.DY,
			FiredAt:   e.FiredAt.UTC().Format(timeFormat),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *EventsHandler) stats(w http.ResponseWriter) {
	counts, err := h.store.Events().Counts()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count events")
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	writeJSON(w, http.StatusOK, statsResponse{Total: total, Counts: counts})
}
