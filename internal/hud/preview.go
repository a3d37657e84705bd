package hud

import (
	"context"
	"time"

	"gocv.io/x/gocv"
)

// Preview shows the annotated frames in a desktop window. It must run on the
// main OS thread.
type Preview struct {
	title     string
	publisher *Publisher
	interval  time.Duration
}

// NewPreview creates a window fed by publisher.
func NewPreview(title string, publisher *Publisher) *Preview {
	return &Preview{
		title:     title,
		publisher: publisher,
		interval:  15 * time.Millisecond,
	}
}

// Run shows frames until ctx is done or the user presses q or Esc, in which
// case quit is called.
func (p *Preview) Run(ctx context.Context, quit func()) {
	window := gocv.NewWindow(p.title)
	defer window.Close()

	var shown uint64
	for ctx.Err() == nil {
		data, _, seq := p.publisher.Latest()
		if seq != shown && len(data) > 0 {
			if mat, err := gocv.IMDecode(data, gocv.IMReadColor); err == nil {
				window.IMShow(mat)
				mat.Close()
			}
			shown = seq
		}

		if isQuitKey(window.WaitKey(int(p.interval / time.Millisecond))) {
			quit()
			return
		}
	}
}

func isQuitKey(key int) bool {
	if key < 0 {
		return false
	}
	switch key & 0xff {
	case 'q', 'Q', 27:
		return true
	}
	return false
}
