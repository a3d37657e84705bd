package keys

import (
	"context"
	"log/slog"
	"sync"
)

// LogInjector records presses instead of delivering them.
type LogInjector struct {
	logger  *slog.Logger
	mu      sync.Mutex
	presses []string
}

// NewLogInjector creates a LogInjector. A nil logger uses slog.Default.
func NewLogInjector(logger *slog.Logger) *LogInjector {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogInjector{logger: logger}
}

func (l *LogInjector) Press(_ context.Context, key string) error {
	l.mu.Lock()
	l.presses = append(l.presses, key)
	l.mu.Unlock()

	l.logger.Debug("key press suppressed", "key", key)
	return nil
}

// Presses returns a copy of the recorded keys in order.
func (l *LogInjector) Presses() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.presses))
	copy(out, l.presses)
	return out
}
