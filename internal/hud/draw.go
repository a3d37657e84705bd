package hud

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var (
	colorArmed    = color.RGBA{R: 0, G: 200, B: 0, A: 0}
	colorDwelling = color.RGBA{R: 255, G: 200, B: 0, A: 0}
	colorDisarmed = color.RGBA{R: 90, G: 90, B: 90, A: 0}
	colorTip      = color.RGBA{R: 0, G: 255, B: 255, A: 0}
	colorBanner   = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	colorLive     = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	colorTest     = color.RGBA{R: 180, G: 180, B: 180, A: 0}
	colorOff      = color.RGBA{R: 255, G: 140, B: 0, A: 0}
)

// Draw paints f onto mat in place.
func Draw(mat *gocv.Mat, f Frame) {
	if mat == nil || mat.Empty() {
		return
	}
	w, h := mat.Cols(), mat.Rows()

	center := image.Pt(w/2, h/2)
	radius := int(f.NeutralRadius * float64(min(w, h)))
	ring := colorDisarmed
	switch {
	case f.Armed:
		ring = colorArmed
	case f.Dwelling:
		ring = colorDwelling
	}
	gocv.Circle(mat, center, radius, ring, 2)

	if f.Tip != nil {
		p := image.Pt(int(f.Tip.X*float64(w)), int(f.Tip.Y*float64(h)))
		gocv.Circle(mat, p, 8, colorTip, -1)
	}

	if banner := f.Banner(); banner != "" {
		gocv.PutText(mat, banner, image.Pt(20, 50), gocv.FontHersheySimplex, 1.2, colorBanner, 3)
	}

	label, labelColor := f.ModeLabel(), colorTest
	if f.Live {
		labelColor = colorLive
	}
	if !f.Enabled {
		label, labelColor = "PAUSED", colorOff
	}
	size := gocv.GetTextSize(label, gocv.FontHersheySimplex, 0.8, 2)
	gocv.PutText(mat, label, image.Pt(w-size.X-16, 32), gocv.FontHersheySimplex, 0.8, labelColor, 2)
}
