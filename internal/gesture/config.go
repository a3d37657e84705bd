package gesture

import (
	"errors"
	"fmt"
	"time"
)

// Default tuning values.
const (
	DefaultHistoryWindow = 450 * time.Millisecond
	DefaultCooldown      = 450 * time.Millisecond
	DefaultDXThresh      = 0.18
	DefaultDYThresh      = 0.15
	DefaultNeutralRadius = 0.22
	DefaultNeutralHold   = 80 * time.Millisecond
	DefaultAutoRearm     = 550 * time.Millisecond
)

// Config holds the tuning of a Recognizer. It is fixed at construction.
type Config struct {
	// HistoryWindow is how far back motion is considered.
	HistoryWindow time.Duration
	// Cooldown is the minimum spacing between two emitted swipes.
	Cooldown time.Duration
	// DXThresh and DYThresh are the minimum net displacements, in normalized
	// units, for a horizontal or vertical swipe.
	DXThresh float64
	DYThresh float64
	// NeutralRadius is the radius of the re-arm zone around the frame center.
	NeutralRadius float64
	// NeutralHold is how long the fingertip must stay in the neutral zone to re-arm.
	NeutralHold time.Duration
	// AutoRearm re-arms the gate this long after a swipe regardless of position.
	AutoRearm time.Duration
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		HistoryWindow: DefaultHistoryWindow,
		Cooldown:      DefaultCooldown,
		DXThresh:      DefaultDXThresh,
		DYThresh:      DefaultDYThresh,
		NeutralRadius: DefaultNeutralRadius,
		NeutralHold:   DefaultNeutralHold,
		AutoRearm:     DefaultAutoRearm,
	}
}

// Validate checks that every value is usable.
func (c Config) Validate() error {
	var errs []error
	if c.HistoryWindow <= 0 {
		errs = append(errs, fmt.Errorf("history window must be positive, got %s", c.HistoryWindow))
	}
	if c.Cooldown < 0 {
		errs = append(errs, fmt.Errorf("cooldown must not be negative, got %s", c.Cooldown))
	}
	if c.DXThresh <= 0 || c.DXThresh > 1 {
		errs = append(errs, fmt.Errorf("dx threshold must be in (0, 1], got %g", c.DXThresh))
	}
	if c.DYThresh <= 0 || c.DYThresh > 1 {
		errs = append(errs, fmt.Errorf("dy threshold must be in (0, 1], got %g", c.DYThresh))
	}
	if c.NeutralRadius <= 0 || c.NeutralRadius > 1 {
		errs = append(errs, fmt.Errorf("neutral radius must be in (0, 1], got %g", c.NeutralRadius))
	}
	if c.NeutralHold < 0 {
		errs = append(errs, fmt.Errorf("neutral hold must not be negative, got %s", c.NeutralHold))
	}
	if c.AutoRearm < 0 {
		errs = append(errs, fmt.Errorf("auto re-arm must not be negative, got %s", c.AutoRearm))
	}
	return errors.Join(errs...)
}
