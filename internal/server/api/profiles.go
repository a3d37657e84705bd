package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/swipekeys/internal/gesture"
	"github.com/ayusman/swipekeys/internal/keys"
	"github.com/ayusman/swipekeys/internal/store"
)

// ProfileActivator applies a stored profile to the running recognizer.
type ProfileActivator interface {
	ActivateProfile(p *store.Profile) error
}

// ProfileHandler handles HTTP requests for tuning profiles.
//
//	GET    /api/profiles
//	POST   /api/profiles
//	GET    /api/profiles/{id}
//	PUT    /api/profiles/{id}
//	DELETE /api/profiles/{id}
//	POST   /api/profiles/{id}/activate
type ProfileHandler struct {
	store     *store.Store
	activator ProfileActivator
}

// NewProfileHandler creates a ProfileHandler. A nil activator disables the
// activate endpoint.
func NewProfileHandler(s *store.Store, activator ProfileActivator) *ProfileHandler {
	return &ProfileHandler{store: s, activator: activator}
}

// profileBody is the request and response shape. Durations are milliseconds.
type profileBody struct {
	ID            string  `json:"id,omitempty"`
	Name          string  `json:"name"`
	HistoryMS     int64   `json:"history_ms"`
	CooldownMS    int64   `json:"cooldown_ms"`
	DXThresh      float64 `json:"dx_thresh"`
	DYThresh      float64 `json:"dy_thresh"`
	NeutralRadius float64 `json:"neutral_radius"`
	NeutralHoldMS int64   `json:"neutral_hold_ms"`
	AutoRearmMS   int64   `json:"auto_rearm_ms"`
	KeySet        string  `json:"key_set"`
	CreatedAt     string  `json:"created_at,omitempty"`
	UpdatedAt     string  `json:"updated_at,omitempty"`
}

type listProfilesResponse struct {
	Profiles []profileBody `json:"profiles"`
}

func toBody(p *store.Profile) profileBody {
	c := p.Gesture
	b := profileBody{
		ID:            p.ID,
		Name:          p.Name,
		HistoryMS:     c.HistoryWindow.Milliseconds(),
		CooldownMS:    c.Cooldown.Milliseconds(),
		DXThresh:      c.DXThresh,
		DYThresh:      c.DYThresh,
		NeutralRadius: c.NeutralRadius,
		NeutralHoldMS: c.NeutralHold.Milliseconds(),
		AutoRearmMS:   c.AutoRearm.Milliseconds(),
		KeySet:        p.KeySet,
	}
	if !p.CreatedAt.IsZero() {
		b.CreatedAt = p.CreatedAt.UTC().Format(timeFormat)
		b.UpdatedAt = p.UpdatedAt.UTC().Format(timeFormat)
	}
	return b
}

func (b profileBody) gestureConfig() gesture.Config {
	return gesture.Config{
		HistoryWindow: time.Duration(b.HistoryMS) * time.Millisecond,
		Cooldown:      time.Duration(b.CooldownMS) * time.Millisecond,
		DXThresh:      b.DXThresh,
		DYThresh:      b.DYThresh,
		NeutralRadius: b.NeutralRadius,
		NeutralHold:   time.Duration(b.NeutralHoldMS) * time.Millisecond,
		AutoRearm:     time.Duration(b.AutoRearmMS) * time.Millisecond,
	}
}

// apply validates b and copies it onto p.
func (b profileBody) apply(p *store.Profile) error {
	name := strings.TrimSpace(b.Name)
	if name == "" {
		return errors.New("name is required")
	}
	cfg := b.gestureConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := keys.ParseKeySet(b.KeySet); err != nil {
		return err
	}

	p.Name = name
	p.Gesture = cfg
	p.KeySet = b.KeySet
	return nil
}

func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/profiles")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if id, ok := strings.CutSuffix(path, "/activate"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.activate(w, id)
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ProfileHandler) list(w http.ResponseWriter) {
	profiles, err := h.store.Profiles().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}

	resp := listProfilesResponse{Profiles: make([]profileBody, 0, len(profiles))}
	for _, p := range profiles {
		resp.Profiles = append(resp.Profiles, toBody(p))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ProfileHandler) get(w http.ResponseWriter, id string) {
	p, ok := h.load(w, id)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toBody(p))
}

// create fills fields missing from the request with the recognizer defaults.
func (h *ProfileHandler) create(w http.ResponseWriter, r *http.Request) {
	req := toBody(&store.Profile{Gesture: gesture.DefaultConfig(), KeySet: string(keys.Arrows)})
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p := &store.Profile{ID: uuid.New().String()}
	if err := req.apply(p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.store.Profiles().GetByName(p.Name); err == nil {
		writeError(w, http.StatusConflict, "Profile name already exists")
		return
	}

	if err := h.store.Profiles().Create(p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create profile")
		return
	}

	writeJSON(w, http.StatusCreated, toBody(p))
}

// update overlays the request on the stored profile.
func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	p, ok := h.load(w, id)
	if !ok {
		return
	}

	req := toBody(p)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := req.apply(p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if other, err := h.store.Profiles().GetByName(p.Name); err == nil && other.ID != p.ID {
		writeError(w, http.StatusConflict, "Profile name already exists")
		return
	}

	if err := h.store.Profiles().Update(p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, toBody(p))
}

func (h *ProfileHandler) delete(w http.ResponseWriter, id string) {
	err := h.store.Profiles().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete profile")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProfileHandler) activate(w http.ResponseWriter, id string) {
	if h.activator == nil {
		writeError(w, http.StatusServiceUnavailable, "Detection is not running")
		return
	}

	p, ok := h.load(w, id)
	if !ok {
		return
	}

	if err := h.activator.ActivateProfile(p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to activate profile")
		return
	}

	writeJSON(w, http.StatusOK, toBody(p))
}

func (h *ProfileHandler) load(w http.ResponseWriter, id string) (*store.Profile, bool) {
	p, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return nil, false
	}
	return p, true
}
