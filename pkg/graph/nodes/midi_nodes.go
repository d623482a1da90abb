package nodes

import (
	"fmt"

	"github.com/jamesa08/midianimator-go/pkg/graph"
	"github.com/jamesa08/midianimator-go/pkg/midi"
)

// FileReader abstracts reading a MIDI file's bytes off disk, so the node
// catalog never depends on os directly.
type FileReader func(path string) ([]byte, error)

// GetMIDIFile returns the get_midi_file node: given a file_path input, it
// parses the file and outputs every track plus a human-readable duration
// summary. A missing file_path yields an empty tracks list and stats
// string rather than an error, matching the host's tolerant node
// contract — a node with unbound inputs produces an inert result instead
// of failing the whole graph.
func GetMIDIFile(read FileReader) graph.NodeFunc {
	parser := midi.NewParser()
	return func(in graph.Inputs) graph.Outputs {
		path, ok := in["file_path"].(string)
		if !ok || path == "" {
			return graph.Outputs{"tracks": []*midi.Track{}, "stats": ""}
		}

		data, err := read(path)
		if err != nil {
			return graph.Outputs{"tracks": []*midi.Track{}, "stats": ""}
		}

		file, err := parser.Parse(data)
		if err != nil {
			return graph.Outputs{"tracks": []*midi.Track{}, "stats": ""}
		}

		return graph.Outputs{
			"tracks": file.Tracks,
			"stats":  MIDIFileStatistics(file.Tracks),
		}
	}
}

// MIDIFileStatistics builds the "N tracks\nHH:MM:SS" (or "MM:SS minutes",
// or "SS seconds") summary. Duration is the latest time_off among each track's
// final note, not the true maximum over every note — a quirk preserved
// from the original statistics routine.
func MIDIFileStatistics(tracks []*midi.Track) string {
	var seconds float64
	for _, t := range tracks {
		if len(t.Notes) == 0 {
			continue
		}
		last := t.Notes[len(t.Notes)-1].TimeOff
		if last > seconds {
			seconds = last
		}
	}

	totalSeconds := int(seconds)
	minutes := (totalSeconds / 60) % 60
	hours := (totalSeconds / 60) / 60
	secs := totalSeconds % 60

	var duration string
	switch {
	case hours > 0:
		duration = fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	case minutes > 0:
		duration = fmt.Sprintf("%02d:%02d minutes", minutes, secs)
	default:
		duration = fmt.Sprintf("%02d seconds", secs)
	}

	return fmt.Sprintf("%d tracks\n%s", len(tracks), duration)
}

// GetMIDITrackData returns the get_midi_track_data node: given tracks and
// a track_name, it finds the matching track and surfaces its event
// streams. Either input missing, or no matching track, yields an empty
// result.
func GetMIDITrackData() graph.NodeFunc {
	return func(in graph.Inputs) graph.Outputs {
		tracks, ok := in["tracks"].([]*midi.Track)
		if !ok {
			return graph.Outputs{}
		}
		name, ok := in["track_name"].(string)
		if !ok {
			return graph.Outputs{}
		}

		for _, t := range tracks {
			if t.Name != name {
				continue
			}
			return graph.Outputs{
				"notes":          t.Notes,
				"control_change": t.ControlChange,
				"pitchwheel":     t.Pitchwheel,
				"aftertouch":     t.Aftertouch,
			}
		}
		return graph.Outputs{}
	}
}
