// Package nodes is the catalog of node-kind executor functions: pure
// functions from a node's bound inputs to its outputs, registered under
// their node-kind identifier.
package nodes

import "github.com/jamesa08/midianimator-go/pkg/scenemodel"

// AnimationGenerator is a named, reusable template that turns a single
// note into a pair of keyframe bursts (on-side and off-side). time_mapper
// and amplitude_mapper are accepted but not evaluated, per the open
// question on opaque mapper fields.
type AnimationGenerator struct {
	Name                string                     `json:"name"`
	NoteOnKeyframes     []scenemodel.KeyframePoint `json:"note_on_keyframes"`
	NoteOnAnchorPoint   float64                    `json:"note_on_anchor_point"`
	NoteOffKeyframes    []scenemodel.KeyframePoint `json:"note_off_keyframes"`
	NoteOffAnchorPoint  float64                    `json:"note_off_anchor_point"`
	TimeMapper          string                     `json:"time_mapper"`
	AmplitudeMapper     string                     `json:"amplitude_mapper"`
	VelocityIntensity   float64                    `json:"velocity_intensity"`
	AnimationOverlap    string                     `json:"animation_overlap"`
	AnimationProperty   string                     `json:"animation_property"`
}

// ObjectMapEntry lists every note an object has been assigned and every
// animation generator name it should play.
type ObjectMapEntry struct {
	NoteNumber []uint8  `json:"note_number"`
	Animations []string `json:"animations"`
}

// ObjectMap is the output of assign_notes_to_objects: every generator
// referenced, keyed by name, and every object's note/animation
// assignment, keyed by object name. Every name listed in an object's
// Animations exists as a key in Animations.
type ObjectMap struct {
	Animations map[string]AnimationGenerator `json:"animations"`
	Objects    map[string]ObjectMapEntry     `json:"objects"`
}
