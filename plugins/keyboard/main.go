// Package main provides a keyboard plugin for macOS.
// It taps single keys via AppleScript.
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

// keyCodes maps named keys to macOS virtual key codes. System Events
// cannot type arrows with keystroke, only with key code.
var keyCodes = map[string]int{
	"left":     123,
	"right":    124,
	"down":     125,
	"up":       126,
	"space":    49,
	"enter":    36,
	"escape":   53,
	"tab":      48,
	"pageup":   116,
	"pagedown": 121,
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

	script, err := pressScript(p.Key)
	if err != nil {
		writeResponse(Response{Error: err.Error()})
		return
	}

	if err := runAppleScript(script); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("press %s failed: %v", p.Key, err)})
		return
	}

	writeResponse(Response{Success: true})
}

// pressScript builds the AppleScript that taps key.
func pressScript(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", fmt.Errorf("key is required")
	}
	if code, ok := keyCodes[key]; ok {
		return fmt.Sprintf(`tell application "System Events" to key code %d`, code), nil
	}
	if len(key) == 1 && (key[0] >= 'a' && key[0] <= 'z' || key[0] >= '0' && key[0] <= '9') {
		return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, key), nil
	}
	return "", fmt.Errorf("unsupported key: %s", key)
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}

func runAppleScript(script string) error {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
