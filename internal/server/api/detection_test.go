package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeDetection struct {
	enabled bool
	live    bool
}

func (f *fakeDetection) IsEnabled() bool         { return f.enabled }
func (f *fakeDetection) SetEnabled(enabled bool) { f.enabled = enabled }
func (f *fakeDetection) Live() bool              { return f.live }
func (f *fakeDetection) SetLive(live bool)       { f.live = live }

func TestDetectionHandler(t *testing.T) {
	t.Run("get", func(t *testing.T) {
		h := NewDetectionHandler(&fakeDetection{enabled: true})

		rec := doJSON(t, h, http.MethodGet, "/api/detection", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"enabled":true,"live":false,"mode":"test"}`, rec.Body.String())
	})

	t.Run("put updates only given fields", func(t *testing.T) {
		ctrl := &fakeDetection{enabled: true}
		h := NewDetectionHandler(ctrl)

		rec := doJSON(t, h, http.MethodPut, "/api/detection", `{"live":true}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"enabled":true,"live":true,"mode":"live"}`, rec.Body.String())

		rec = doJSON(t, h, http.MethodPut, "/api/detection", `{"enabled":false}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, ctrl.enabled)
		assert.True(t, ctrl.live)
	})

	t.Run("rejects empty and malformed bodies", func(t *testing.T) {
		h := NewDetectionHandler(&fakeDetection{})
		assert.Equal(t, http.StatusBadRequest, doJSON(t, h, http.MethodPut, "/api/detection", `{}`).Code)
		assert.Equal(t, http.StatusBadRequest, doJSON(t, h, http.MethodPut, "/api/detection", `nope`).Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		h := NewDetectionHandler(&fakeDetection{})
		assert.Equal(t, http.StatusMethodNotAllowed, doJSON(t, h, http.MethodDelete, "/api/detection", "").Code)
	})
}
