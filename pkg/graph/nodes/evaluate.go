package nodes

import (
	"encoding/json"
	"log"
	"sort"

	"github.com/jamesa08/midianimator-go/pkg/anim"
	"github.com/jamesa08/midianimator-go/pkg/graph"
	"github.com/jamesa08/midianimator-go/pkg/midi"
	"github.com/jamesa08/midianimator-go/pkg/transport"
)

// noteAssignment is one (object, generator) pairing a note number resolves
// to, built from an ObjectMap's per-object entries.
type noteAssignment struct {
	objectName string
	generator  AnimationGenerator
}

// noteToObjects groups every (object, generator) pair by the note number
// that triggers it: for every object that lists a given note number
// anywhere in its note_number list, every animation it references is
// paired with that note, not just the one added alongside it.
func noteToObjects(objectMap ObjectMap) map[uint8][]noteAssignment {
	out := make(map[uint8][]noteAssignment)
	for objectName, entry := range objectMap.Objects {
		for _, note := range entry.NoteNumber {
			for _, animName := range entry.Animations {
				gen, ok := objectMap.Animations[animName]
				if !ok {
					continue
				}
				out[note] = append(out[note], noteAssignment{objectName: objectName, generator: gen})
			}
		}
	}
	return out
}

func velocityFactor(note midi.Note, gen AnimationGenerator) float64 {
	if gen.VelocityIntensity != 0 {
		return float64(note.Velocity) / 127 * gen.VelocityIntensity
	}
	return 1
}

// EvaluateInstrument returns the evaluate_instrument node: given an
// object_map and the MIDI notes that drove it, it expands every note
// into BlendKeyframe bursts via its assigned generators, merges them per
// object under the additive overlap policy, and sends the result to the
// host over send. This node has no outputs of its own; its effect is the
// Transport write.
func EvaluateInstrument(send func(transport.Message) error) graph.NodeFunc {
	return func(in graph.Inputs) graph.Outputs {
		objectMap, ok := in["object_map"].(ObjectMap)
		notes, okNotes := in["midi_notes"].([]midi.Note)
		if !ok || !okNotes {
			return graph.Outputs{}
		}

		byNote := noteToObjects(objectMap)
		accum := make(map[string][]anim.BlendKeyframe)

		for _, note := range notes {
			for _, assignment := range byNote[note.NoteNumber] {
				gen := assignment.generator
				dataPath, arrayIndex := anim.ParseAnimationProperty(gen.AnimationProperty)
				factor := velocityFactor(note, gen)

				var burst []anim.BlendKeyframe
				for _, kp := range gen.NoteOnKeyframes {
					burst = append(burst, anim.BlendKeyframe{
						Frame:      kp.Frame() + note.TimeOn + gen.NoteOnAnchorPoint,
						Value:      kp.Value() * factor,
						DataPath:   dataPath,
						ArrayIndex: arrayIndex,
					})
				}
				for _, kp := range gen.NoteOffKeyframes {
					burst = append(burst, anim.BlendKeyframe{
						Frame:      kp.Frame() + note.TimeOff + gen.NoteOffAnchorPoint,
						Value:      kp.Value() * factor,
						DataPath:   dataPath,
						ArrayIndex: arrayIndex,
					})
				}
				if len(burst) == 0 {
					continue
				}
				sort.SliceStable(burst, func(i, j int) bool { return burst[i].Frame < burst[j].Frame })

				switch gen.AnimationOverlap {
				case "add", "":
					accum[assignment.objectName] = anim.AddKeyframes(accum[assignment.objectName], burst)
				default:
					log.Printf("anim: unsupported overlap %q, skipping burst for %s", gen.AnimationOverlap, assignment.objectName)
				}
			}
		}

		payload, err := json.Marshal(accum)
		if err != nil {
			log.Printf("anim: encode blend keyframes: %v", err)
			return graph.Outputs{}
		}
		if err := send(transport.Message{Message: string(payload)}); err != nil {
			log.Printf("anim: send blend keyframes: %v", err)
		}
		return graph.Outputs{}
	}
}
