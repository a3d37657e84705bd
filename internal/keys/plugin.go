package keys

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayusman/swipekeys/internal/plugin"
)

// PluginInjector taps keys by running an external press plugin.
type PluginInjector struct {
	Executor *plugin.Executor
	Plugin   *plugin.Plugin
}

func (p *PluginInjector) Press(ctx context.Context, key string) error {
	params, err := json.Marshal(plugin.PressParams{Key: key})
	if err != nil {
		return fmt.Errorf("marshal press params: %w", err)
	}

	resp, err := p.Executor.Execute(ctx, p.Plugin, &plugin.Request{
		Action: plugin.ActionPress,
		Params: params,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		if resp.Error == "" {
			return errors.New("plugin reported failure")
		}
		return fmt.Errorf("plugin %s: %s", p.Plugin.Manifest.Name, resp.Error)
	}
	return nil
}
