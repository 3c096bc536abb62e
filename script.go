package aspen

import (
	"encoding/json"
	"fmt"

	"github.com/tanema/gween/ease"
)

// scriptEase is the easing applied to all scripted camera moves.
var scriptEase = ease.InOutQuad

// scriptStep represents a single action in a camera script.
type scriptStep struct {
	Action   string  `json:"action"`
	Label    string  `json:"label,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Zoom     float64 `json:"zoom,omitempty"`
	Duration float32 `json:"duration,omitempty"`
	Frames   int     `json:"frames,omitempty"`
}

// cameraScript is the top-level JSON structure for a camera script.
type cameraScript struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner sequences camera moves and screenshots across frames for
// automated tours and visual testing. Attach to a View via SetScript.
//
// A script is a JSON object with a "steps" array. Supported actions:
// "scrollTo" (x, y, duration), "zoomTo" (zoom, duration), "zoomToFit",
// "screenshot" (label), and "wait" (frames). Durations are in seconds;
// animated moves overlap with following steps unless separated by a wait.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadCameraScript parses a JSON camera script and returns a ScriptRunner
// ready to be attached to a View via SetScript.
func LoadCameraScript(jsonData []byte) (*ScriptRunner, error) {
	var script cameraScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse camera script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse camera script: no steps")
	}
	return &ScriptRunner{steps: script.Steps}, nil
}

// SetScript attaches a ScriptRunner to the view. The runner's step method
// is called from View.Update each frame.
func (v *View) SetScript(runner *ScriptRunner) {
	v.script = runner
}

// Done reports whether all steps in the script have been executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// step advances the script by one frame. Called from View.Update.
func (r *ScriptRunner) step(v *View) {
	if r.done {
		return
	}
	// Hold until the document is loaded and drawable.
	if v.State() != StateReady {
		return
	}
	// Count down wait frames.
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "scrollTo":
		v.Camera().ScrollTo(st.X, st.Y, st.Duration, scriptEase)
	case "zoomTo":
		v.Camera().ZoomTo(st.Zoom, st.Duration, scriptEase)
	case "zoomToFit":
		v.Camera().ZoomToFit()
	case "screenshot":
		v.Screenshot(st.Label)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	// Check if we've reached the end after executing.
	if r.cursor >= len(r.steps) && r.waitCount == 0 {
		r.done = true
	}
}
