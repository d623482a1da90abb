package midi

import "testing"

// Overlapping notes on the same channel (a chord, or any sustained note
// held while another starts) must all end up paired once closed, even
// after AddNoteOn has grown Notes past its current capacity.
func TestAddNoteOnOffPairsOverlappingNotes(t *testing.T) {
	tr := NewTrack("chord")

	// Open three overlapping notes on channel 0 before closing any of
	// them, forcing Notes to grow (and potentially reallocate) while
	// notes are still open.
	tr.AddNoteOn(0, 60, 100, 0.0)
	tr.AddNoteOn(0, 64, 100, 0.01)
	tr.AddNoteOn(0, 67, 100, 0.02)

	if err := tr.AddNoteOff(0, 60, 1.0); err != nil {
		t.Fatalf("AddNoteOff(60) returned error: %v", err)
	}
	if err := tr.AddNoteOff(0, 64, 1.1); err != nil {
		t.Fatalf("AddNoteOff(64) returned error: %v", err)
	}
	if err := tr.AddNoteOff(0, 67, 1.2); err != nil {
		t.Fatalf("AddNoteOff(67) returned error: %v", err)
	}

	for _, n := range tr.Notes {
		if n.TimeOff < 0 {
			t.Fatalf("note %v left unpaired (TimeOff == -1)", n)
		}
	}
}

// Duplicate (channel, note) note-ons must close FIFO: the earliest open
// note-on is paired with the first matching note-off.
func TestAddNoteOnOffPairsDuplicateNoteNumbersFIFO(t *testing.T) {
	tr := NewTrack("repeat")

	tr.AddNoteOn(0, 60, 100, 0.0)
	tr.AddNoteOn(0, 61, 100, 0.05)
	tr.AddNoteOn(0, 60, 90, 0.1)

	if err := tr.AddNoteOff(0, 60, 1.0); err != nil {
		t.Fatalf("first AddNoteOff(60) returned error: %v", err)
	}
	if err := tr.AddNoteOff(0, 60, 2.0); err != nil {
		t.Fatalf("second AddNoteOff(60) returned error: %v", err)
	}
	if err := tr.AddNoteOff(0, 61, 2.5); err != nil {
		t.Fatalf("AddNoteOff(61) returned error: %v", err)
	}

	var closed []float64
	for _, n := range tr.Notes {
		if n.NoteNumber == 60 {
			closed = append(closed, n.TimeOff)
		}
	}
	if len(closed) != 2 || closed[0] != 1.0 || closed[1] != 2.0 {
		t.Fatalf("note 60 TimeOffs = %v, want [1.0, 2.0] in FIFO order", closed)
	}

	for _, n := range tr.Notes {
		if n.TimeOff < 0 {
			t.Fatalf("note %v left unpaired (TimeOff == -1)", n)
		}
	}
}

// A growing Notes slice must not invalidate earlier AddNoteOn pairings:
// open many more notes than any small initial capacity to force at
// least one reallocation mid-chord.
func TestAddNoteOnSurvivesSliceReallocation(t *testing.T) {
	tr := NewTrack("many")

	const n = 64
	for i := 0; i < n; i++ {
		tr.AddNoteOn(0, uint8(i), 100, float64(i)*0.001)
	}
	for i := 0; i < n; i++ {
		if err := tr.AddNoteOff(0, uint8(i), float64(i)*0.001+1.0); err != nil {
			t.Fatalf("AddNoteOff(%d) returned error: %v", i, err)
		}
	}

	for _, note := range tr.Notes {
		if note.TimeOff < 0 {
			t.Fatalf("note %v left unpaired (TimeOff == -1) after reallocation", note)
		}
	}
}

func TestAddNoteOffUnpairedReturnsError(t *testing.T) {
	tr := NewTrack("empty")
	if err := tr.AddNoteOff(0, 60, 1.0); err != ErrUnpairedNoteOff {
		t.Fatalf("AddNoteOff with no open note = %v, want ErrUnpairedNoteOff", err)
	}
}
