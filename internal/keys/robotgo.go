package keys

import (
	"context"
	"fmt"

	"github.com/go-vgo/robotgo"
)

// RobotgoInjector taps keys in-process through robotgo.
type RobotgoInjector struct{}

func (RobotgoInjector) Press(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := robotgo.KeyTap(key); err != nil {
		return fmt.Errorf("robotgo tap %s: %w", key, err)
	}
	return nil
}
