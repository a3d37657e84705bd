// Package gesture turns a stream of fingertip positions into directional swipe events.
package gesture

import "strings"

// Direction is the outcome of a swipe.
type Direction string

const (
	// None means no swipe was recognized on this frame.
	None  Direction = ""
	Left  Direction = "left"
	Right Direction = "right"
	Up    Direction = "up"
	Down  Direction = "down"
)

// Directions lists every direction that can be emitted.
var Directions = []Direction{Left, Right, Up, Down}

// Valid reports whether d is one of the four emitted directions.
func (d Direction) Valid() bool {
	switch d {
	case Left, Right, Up, Down:
		return true
	}
	return false
}

// Label returns the upper-case form used in logs and on the HUD, e.g. "LEFT".
func (d Direction) Label() string {
	return strings.ToUpper(string(d))
}

// ParseDirection converts a case-insensitive name into a Direction.
func ParseDirection(s string) (Direction, bool) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	return d, d.Valid()
}

// Point is a fingertip position in normalized frame coordinates.
// (0,0) is the top-left corner, (1,1) the bottom-right.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}
