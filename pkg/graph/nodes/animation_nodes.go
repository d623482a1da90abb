package nodes

import (
	"fmt"
	"sort"

	"github.com/jamesa08/midianimator-go/pkg/graph"
	"github.com/jamesa08/midianimator-go/pkg/midi"
	"github.com/jamesa08/midianimator-go/pkg/scenemodel"
)

// xyzSuffix names the array-index suffix used for the three transform
// data paths; any other data path is suffixed with its bare array index.
var xyzSuffix = [3]string{"x", "y", "z"}

func canonicalCurveName(dataPath string, arrayIndex uint32) string {
	switch dataPath {
	case "location", "rotation", "scale":
		if int(arrayIndex) < len(xyzSuffix) {
			return fmt.Sprintf("%s_%s", dataPath, xyzSuffix[arrayIndex])
		}
	}
	return fmt.Sprintf("%s_%d", dataPath, arrayIndex)
}

// KeyframesFromObject returns the keyframes_from_object node: given
// object_groups, an object_group_name, and an object_name, it locates the
// named object and surfaces each animation curve's keyframe points under
// the curve's canonical per-property name, and the object's whole list of
// curves under dyn_output. Any missing
// input or lookup miss yields {"dyn_output": {}}.
func KeyframesFromObject() graph.NodeFunc {
	return func(in graph.Inputs) graph.Outputs {
		groups, ok := in["object_groups"].([]scenemodel.ObjectGroup)
		groupName, okName := in["object_group_name"].(string)
		objectName, okObj := in["object_name"].(string)
		if !ok || !okName || !okObj {
			return graph.Outputs{"dyn_output": map[string]any{}}
		}

		var group *scenemodel.ObjectGroup
		for i := range groups {
			if groups[i].Name == groupName {
				group = &groups[i]
				break
			}
		}
		if group == nil {
			return graph.Outputs{"dyn_output": map[string]any{}}
		}

		object := group.FindObject(objectName)
		if object == nil {
			return graph.Outputs{"dyn_output": map[string]any{}}
		}

		out := graph.Outputs{}
		for _, curve := range object.AnimCurves {
			out[canonicalCurveName(curve.DataPath, curve.ArrayIndex)] = curve.KeyframePoints
		}
		out["dyn_output"] = object.AnimCurves
		return out
	}
}

// AnimationGeneratorNode returns the animation_generator node: a pure
// defaulting builder that repackages its bound inputs into a named
// AnimationGenerator. time_mapper and amplitude_mapper pass through
// unevaluated.
func AnimationGeneratorNode() graph.NodeFunc {
	return func(in graph.Inputs) graph.Outputs {
		gen := AnimationGenerator{
			Name:              stringInput(in, "name"),
			NoteOnKeyframes:   keyframeInput(in, "note_on_keyframes"),
			NoteOnAnchorPoint: floatInput(in, "note_on_anchor_point"),
			NoteOffKeyframes:  keyframeInput(in, "note_off_keyframes"),
			NoteOffAnchorPoint: floatInput(in, "note_off_anchor_point"),
			TimeMapper:        stringInput(in, "time_mapper"),
			AmplitudeMapper:   stringInput(in, "amplitude_mapper"),
			VelocityIntensity: floatInput(in, "velocity_intensity"),
			AnimationOverlap:  stringInput(in, "animation_overlap"),
			AnimationProperty: stringInput(in, "animation_property"),
		}
		return graph.Outputs{"generator": gen}
	}
}

func stringInput(in graph.Inputs, key string) string {
	s, _ := in[key].(string)
	return s
}

func floatInput(in graph.Inputs, key string) float64 {
	switch v := in[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func keyframeInput(in graph.Inputs, key string) []scenemodel.KeyframePoint {
	kf, _ := in[key].([]scenemodel.KeyframePoint)
	return kf
}

// padNums pads a sorted, deduplicated note list up to padAmount entries
// by first filling interior gaps between consecutive original values,
// gap by gap in ascending order (each gap takes as many of the still
// missing values as it has room for, spread evenly across it), then, if
// still short, alternately extending below the current minimum and above
// the current maximum.
func padNums(nums []uint8, padAmount int) []uint8 {
	if len(nums) == 0 {
		return nil
	}

	sorted := append([]uint8{}, nums...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	sorted = dedupUint8(sorted)

	result := append([]uint8{}, sorted...)
	if len(result) >= padAmount {
		return result[:padAmount]
	}

	contains := func(xs []uint8, v uint8) bool {
		for _, x := range xs {
			if x == v {
				return true
			}
		}
		return false
	}

	for i := 0; len(result) < padAmount && i < len(sorted)-1; i++ {
		gap := int(sorted[i+1]) - int(sorted[i]) - 1
		if gap <= 0 {
			continue
		}
		toAdd := padAmount - len(result)
		if toAdd > gap {
			toAdd = gap
		}
		step := float64(gap) / float64(toAdd)
		for j := 1; j <= toAdd; j++ {
			padded := uint8(roundHalfAway(float64(sorted[i]) + float64(j)*step))
			if !contains(result, padded) {
				result = append(result, padded)
			}
		}
	}

	for len(result) < padAmount {
		if len(result)%2 == 0 {
			min := minUint8(result)
			for min > 0 {
				min--
				if !contains(result, min) {
					break
				}
			}
			result = append(result, min)
		} else {
			max := maxUint8(result)
			for max < 255 {
				max++
				if !contains(result, max) {
					break
				}
			}
			result = append(result, max)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

func roundHalfAway(x float64) float64 {
	if x < 0 {
		return -roundHalfAway(-x)
	}
	frac := x - float64(int64(x))
	if frac >= 0.5 {
		return float64(int64(x)) + 1
	}
	return float64(int64(x))
}

func dedupUint8(sorted []uint8) []uint8 {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

func minUint8(xs []uint8) uint8 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxUint8(xs []uint8) uint8 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// allUsedNotes returns the sorted, deduplicated note numbers occurring in
// notes.
func allUsedNotes(notes []midi.Note) []uint8 {
	seen := make(map[uint8]bool)
	var out []uint8
	for _, n := range notes {
		if !seen[n.NoteNumber] {
			seen[n.NoteNumber] = true
			out = append(out, n.NoteNumber)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AssignNotesToObjects returns the assign_notes_to_objects node: given an
// object group, the MIDI notes in play, and an animation generator, it
// assigns each object in the group one used note number (padding the note
// list to the object count when they don't match) and records the
// generator against every object it touches.
func AssignNotesToObjects() graph.NodeFunc {
	return func(in graph.Inputs) graph.Outputs {
		groups, ok := in["object_groups"].([]scenemodel.ObjectGroup)
		groupName, okName := in["object_group_name"].(string)
		notes, okNotes := in["midi_notes"].([]midi.Note)
		gen, okGen := in["generator"].(AnimationGenerator)
		if !ok || !okName || !okNotes || !okGen {
			return graph.Outputs{"object_map": ObjectMap{
				Animations: map[string]AnimationGenerator{},
				Objects:    map[string]ObjectMapEntry{},
			}}
		}

		var group *scenemodel.ObjectGroup
		for i := range groups {
			if groups[i].Name == groupName {
				group = &groups[i]
				break
			}
		}

		objectMap := ObjectMap{
			Animations: map[string]AnimationGenerator{gen.Name: gen},
			Objects:    map[string]ObjectMapEntry{},
		}
		if group == nil {
			return graph.Outputs{"object_map": objectMap}
		}

		used := allUsedNotes(notes)
		assigned := used
		if len(group.Objects) != len(used) {
			assigned = padNums(used, len(group.Objects))
		}

		for i, object := range group.Objects {
			if i >= len(assigned) {
				break
			}
			entry := objectMap.Objects[object.Name]
			entry.NoteNumber = append(entry.NoteNumber, assigned[i])
			entry.Animations = append(entry.Animations, gen.Name)
			objectMap.Objects[object.Name] = entry
		}

		return graph.Outputs{"object_map": objectMap}
	}
}
