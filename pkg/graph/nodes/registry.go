package nodes

import (
	"os"

	"github.com/jamesa08/midianimator-go/pkg/appstate"
	"github.com/jamesa08/midianimator-go/pkg/graph"
	"github.com/jamesa08/midianimator-go/pkg/transport"
)

// DefaultRegistry wires every catalog node under its kind identifier,
// backed by store for scene reads and t for the evaluate_instrument
// Transport write.
func DefaultRegistry(store *appstate.Store, t *transport.Server) graph.Registry {
	r := graph.NewRegistry()

	r.Register("get_midi_file", GetMIDIFile(os.ReadFile))
	r.Register("get_midi_track_data", GetMIDITrackData())
	r.Register("scene_link", SceneLink(store))
	r.Register("keyframes_from_object", KeyframesFromObject())
	r.Register("animation_generator", AnimationGeneratorNode())
	r.Register("assign_notes_to_objects", AssignNotesToObjects())
	r.Register("evaluate_instrument", EvaluateInstrument(t.SendWithoutResponse))
	r.Register("viewer", Viewer())

	return r
}
