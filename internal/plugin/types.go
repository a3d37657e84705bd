// Package plugin discovers and runs external key injection helpers.
//
// A plugin is a directory holding a plugin.json manifest and an executable.
// The executable reads one JSON Request on stdin and writes one JSON Response
// on stdout.
package plugin

import "encoding/json"

// ActionPress asks a plugin to tap a single key.
const ActionPress = "press"

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Actions     []string `json:"actions"`
	// Platforms lists GOOS values the plugin runs on. Empty means any.
	Platforms []string `json:"platforms,omitempty"`
}

// Request is sent to a plugin on stdin.
type Request struct {
	Action    string          `json:"action"`
	Direction string          `json:"direction,omitempty"`
	Params    json.RawMessage `json:"params,omitempty"`
}

// Response is read from a plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// PressParams are the params of an ActionPress request.
type PressParams struct {
	Key string `json:"key"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Supports reports whether the manifest lists action.
func (p *Plugin) Supports(action string) bool {
	for _, a := range p.Manifest.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// RunsOn reports whether the plugin declares support for goos.
func (p *Plugin) RunsOn(goos string) bool {
	if len(p.Manifest.Platforms) == 0 {
		return true
	}
	for _, platform := range p.Manifest.Platforms {
		if platform == goos {
			return true
		}
	}
	return false
}
