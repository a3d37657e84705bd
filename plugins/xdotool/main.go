// Package main provides a key press plugin for Linux desktops running X11.
// It shells out to xdotool.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action    string          `json:"action"`
	Direction string          `json:"direction"`
	Params    json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// PressParams names the key to tap.
type PressParams struct {
	Key string `json:"key"`
}

// keysyms maps named keys to X keysym names.
var keysyms = map[string]string{
	"left":     "Left",
	"right":    "Right",
	"up":       "Up",
	"down":     "Down",
	"space":    "space",
	"enter":    "Return",
	"escape":   "Escape",
	"tab":      "Tab",
	"pageup":   "Prior",
	"pagedown": "Next",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	if req.Action != "press" {
		writeResponse(Response{Error: fmt.Sprintf("unknown action: %s", req.Action)})
		return
	}

	var p PressParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to parse params: %v", err)})
		return
	}

	sym, err := keysym(p.Key)
	if err != nil {
		writeResponse(Response{Error: err.Error()})
		return
	}

	out, err := exec.Command("xdotool", "key", "--clearmodifiers", sym).CombinedOutput()
	if err != nil {
		writeResponse(Response{Error: fmt.Sprintf("xdotool key %s: %v: %s", sym, err, out)})
		return
	}

	writeResponse(Response{Success: true})
}

func keysym(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", fmt.Errorf("key is required")
	}
	if sym, ok := keysyms[key]; ok {
		return sym, nil
	}
	if len(key) == 1 && (key[0] >= 'a' && key[0] <= 'z' || key[0] >= '0' && key[0] <= '9') {
		return key, nil
	}
	return "", fmt.Errorf("unsupported key: %s", key)
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}
