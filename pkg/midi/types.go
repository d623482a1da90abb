// Package midi holds the in-memory time-domain representation of a Standard
// MIDI File: notes paired from note-on/note-off pairs, and continuous
// controller/pitchwheel/aftertouch streams, all resolved to seconds.
package midi

import "fmt"

// Note represents a paired note-on/note-off event on a channel.
//
// TimeOff is -1 while the note is still open (no matching note-off seen
// yet). Finalization neither closes nor drops open notes: a note-on whose
// note-off never arrives stays in the track with TimeOff == -1.
type Note struct {
	Channel    uint8   `json:"channel"`
	NoteNumber uint8   `json:"note_number"`
	Velocity   uint8   `json:"velocity"`
	TimeOn     float64 `json:"time_on"`
	TimeOff    float64 `json:"time_off"`
}

func (n Note) String() string {
	return fmt.Sprintf("Note(channel=%d, note_number=%d, velocity=%d, time_on=%g, time_off=%g)",
		n.Channel, n.NoteNumber, n.Velocity, n.TimeOn, n.TimeOff)
}

// Event represents a single continuous-controller sample: control change,
// pitchwheel, or aftertouch. Value is normalized for pitchwheel to [-1, 1]
// and for aftertouch to [0, 1]; control-change values are left as raw
// 0-127.
type Event struct {
	Channel uint8   `json:"channel"`
	Value   float64 `json:"value"`
	Time    float64 `json:"time"`
}

// Track holds one MIDI track's notes and continuous event streams, plus a
// transient pairing table used only during parsing.
type Track struct {
	Name          string            `json:"name"`
	Notes         []Note            `json:"notes"`
	ControlChange map[uint8][]Event `json:"control_change"`
	Pitchwheel    []Event           `json:"pitchwheel"`
	Aftertouch    []Event           `json:"aftertouch"`

	// openNotes maps (channel, note) to a FIFO of still-open note-ons,
	// oldest first, stored as indices into Notes (stable across appends,
	// unlike pointers into a growing slice). Not serialized; exists only
	// during parse.
	openNotes map[noteKey][]int
}

type noteKey struct {
	channel uint8
	note    uint8
}

// NewTrack creates an empty, named track ready to accept events.
func NewTrack(name string) *Track {
	return &Track{
		Name:          name,
		ControlChange: make(map[uint8][]Event),
		openNotes:     make(map[noteKey][]int),
	}
}

// AddNoteOn opens a new note awaiting its matching note-off. Multiple
// simultaneous note-ons for the same (channel, note) queue FIFO.
func (t *Track) AddNoteOn(channel, noteNumber, velocity uint8, timeOn float64) {
	t.Notes = append(t.Notes, Note{
		Channel:    channel,
		NoteNumber: noteNumber,
		Velocity:   velocity,
		TimeOn:     timeOn,
		TimeOff:    -1,
	})
	key := noteKey{channel, noteNumber}
	t.openNotes[key] = append(t.openNotes[key], len(t.Notes)-1)
}

// ErrUnpairedNoteOff is returned when a note-off arrives with no matching
// open note-on for its (channel, note_number).
var ErrUnpairedNoteOff = fmt.Errorf("midi: note-off with no matching note-on")

// AddNoteOff closes the earliest still-open note-on for (channel,
// noteNumber), FIFO.
func (t *Track) AddNoteOff(channel, noteNumber uint8, timeOff float64) error {
	key := noteKey{channel, noteNumber}
	open := t.openNotes[key]
	if len(open) == 0 {
		return ErrUnpairedNoteOff
	}
	t.Notes[open[0]].TimeOff = timeOff
	t.openNotes[key] = open[1:]
	return nil
}

// AddControlChange appends a control-change sample for controller number
// ctrl.
func (t *Track) AddControlChange(ctrl, channel, value uint8, time float64) {
	t.ControlChange[ctrl] = append(t.ControlChange[ctrl], Event{Channel: channel, Value: float64(value), Time: time})
}

// AddPitchwheel appends a pitchwheel sample; value must already be
// normalized to [-1, 1].
func (t *Track) AddPitchwheel(channel uint8, value, time float64) {
	t.Pitchwheel = append(t.Pitchwheel, Event{Channel: channel, Value: value, Time: time})
}

// AddAftertouch appends an aftertouch sample; value must already be
// normalized to [0, 1].
func (t *Track) AddAftertouch(channel uint8, value, time float64) {
	t.Aftertouch = append(t.Aftertouch, Event{Channel: channel, Value: value, Time: time})
}

// IsEmpty reports whether the track carries no notes and no continuous
// events at all; empty tracks are dropped at finalization.
func (t *Track) IsEmpty() bool {
	return len(t.Notes) == 0 && len(t.ControlChange) == 0 && len(t.Pitchwheel) == 0 && len(t.Aftertouch) == 0
}

// AllUsedNotes returns the sorted, deduplicated set of note numbers that
// occur in the track.
func (t *Track) AllUsedNotes() []uint8 {
	seen := make(map[uint8]bool)
	var out []uint8
	for _, n := range t.Notes {
		if !seen[n.NoteNumber] {
			seen[n.NoteNumber] = true
			out = append(out, n.NoteNumber)
		}
	}
	sortUint8(out)
	return out
}

func sortUint8(xs []uint8) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

func (t *Track) sortNotesByTimeOn() {
	notes := t.Notes
	for i := 1; i < len(notes); i++ {
		for j := i; j > 0 && notes[j-1].TimeOn > notes[j].TimeOn; j-- {
			notes[j-1], notes[j] = notes[j], notes[j-1]
		}
	}
}

// File is an ordered, immutable sequence of non-empty tracks produced by
// the Parser.
type File struct {
	Tracks []*Track
}

// Iterate calls fn for every track, in order, stopping early if fn
// returns false.
func (f *File) Iterate(fn func(*Track) bool) {
	for _, t := range f.Tracks {
		if !fn(t) {
			return
		}
	}
}

// FindTrack returns the first track with the given name, or nil.
func (f *File) FindTrack(name string) *Track {
	for _, t := range f.Tracks {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// TrackNames returns the ordered list of track names.
func (f *File) TrackNames() []string {
	names := make([]string, len(f.Tracks))
	for i, t := range f.Tracks {
		names[i] = t.Name
	}
	return names
}
