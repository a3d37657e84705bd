// Package fixtures provides recorded fingertip trajectories for tests.
package fixtures

import (
	"embed"
	"fmt"
	"math"
	"path"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/swipekeys/internal/gesture"
)

//go:embed trajectories/*.yaml
var trajectoriesFS embed.FS

// Frame is one observation in a trajectory. Tip is nil when no hand was seen.
type Frame struct {
	T   float64        `yaml:"t"`
	Tip *gesture.Point `yaml:"tip"`
}

// Expectation is a swipe the recognizer should emit at time T.
type Expectation struct {
	T         float64           `yaml:"t"`
	Direction gesture.Direction `yaml:"direction"`
}

// Trajectory is a sequence of frames and the swipes it should produce
// with the default tuning.
type Trajectory struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Frames      []Frame       `yaml:"frames"`
	Expect      []Expectation `yaml:"expect"`
}

// Offset converts a fixture time in seconds into a duration, rounded to the
// nearest nanosecond so that 0.9 does not become 899.999999ms.
func Offset(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds * float64(time.Second)))
}

// Load loads a trajectory by name, without the .yaml extension.
func Load(name string) (*Trajectory, error) {
	data, err := trajectoriesFS.ReadFile(path.Join("trajectories", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("load trajectory %s: %w", name, err)
	}

	var tr Trajectory
	if err := yaml.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("decode trajectory %s: %w", name, err)
	}

	for i := 1; i < len(tr.Frames); i++ {
		if tr.Frames[i].T < tr.Frames[i-1].T {
			return nil, fmt.Errorf("trajectory %s: frame %d goes back in time", name, i)
		}
	}
	for _, e := range tr.Expect {
		if !e.Direction.Valid() {
			return nil, fmt.Errorf("trajectory %s: invalid direction %q", name, e.Direction)
		}
	}

	return &tr, nil
}

// Names lists every embedded trajectory in sorted order.
func Names() ([]string, error) {
	entries, err := trajectoriesFS.ReadDir("trajectories")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}

// Replay feeds every frame of the trajectory to observe, starting at base,
// and returns the swipes it reported keyed by their fixture time.
func (tr *Trajectory) Replay(base time.Time, observe func(now time.Time, tip *gesture.Point) gesture.Direction) []Expectation {
	var got []Expectation
	for _, f := range tr.Frames {
		var tip *gesture.Point
		if f.Tip != nil {
			p := *f.Tip
			tip = &p
		}
		if dir := observe(base.Add(Offset(f.T)), tip); dir != gesture.None {
			got = append(got, Expectation{T: f.T, Direction: dir})
		}
	}
	return got
}
