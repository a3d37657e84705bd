package server

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"strconv"

	"github.com/disintegration/gift"

	"github.com/ayusman/swipekeys/internal/hud"
)

const (
	defaultSnapshotWidth = 320
	maxSnapshotWidth     = 1920
)

// SnapshotHandler serves the latest annotated frame as a PNG thumbnail.
//
//	GET /api/snapshot?width=N
type SnapshotHandler struct {
	publisher *hud.Publisher
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(p *hud.Publisher) *SnapshotHandler {
	return &SnapshotHandler{publisher: p}
}

func (h *SnapshotHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	width := defaultSnapshotWidth
	if v := r.URL.Query().Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxSnapshotWidth {
			http.Error(w, "width must be between 1 and 1920", http.StatusBadRequest)
			return
		}
		width = n
	}

	data, _, _ := h.publisher.Latest()
	if len(data) == 0 {
		http.Error(w, "No frame available", http.StatusServiceUnavailable)
		return
	}

	src, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		http.Error(w, "Failed to decode frame", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumbnail(src, width)); err != nil {
		http.Error(w, "Failed to encode snapshot", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(buf.Bytes())
}

// thumbnail scales src to the given width, keeping the aspect ratio.
func thumbnail(src image.Image, width int) image.Image {
	g := gift.New(gift.Resize(width, 0, gift.LinearResampling))
	dst := image.NewRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}
