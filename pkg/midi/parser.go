package midi

import (
	"bytes"
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2/smf"
)

// ErrInvalidFile is returned when the input bytes cannot be parsed as a
// Standard MIDI File container at all.
var ErrInvalidFile = errors.New("midi: invalid file")

// ErrUnsupportedFormat is returned for SMF Format 2 (independent tracks),
// which this parser does not model.
var ErrUnsupportedFormat = errors.New("midi: unsupported SMF format")

// defaultTempo is used until the first tempo meta event is seen, and for
// the whole file when the division is SMPTE-based (treated as a fixed
// 120 BPM per the time-domain model).
const defaultTempo = 120.0

// tempoEntry is one entry in a tempo map: at tick, the tempo in
// microseconds-per-quarter-note became usPerQuarter.
type tempoEntry struct {
	tick        int64
	usPerQuarter float64
}

// Parser converts raw Standard MIDI File bytes into a time-domain File.
type Parser struct{}

// NewParser returns a ready-to-use Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads a complete SMF byte stream and returns its time-domain
// representation. Format 0 files are split into sixteen per-channel
// tracks; Format 1 files keep their original track layout with a shared
// tempo map built from a first pass over all tracks. Format 2 is rejected
// with ErrUnsupportedFormat.
func (p *Parser) Parse(data []byte) (*File, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	ticksPerBeat, isSMPTE := resolveDivision(s.TimeFormat)

	switch s.Format() {
	case 0:
		return p.parseFormat0(s, ticksPerBeat, isSMPTE)
	case 1:
		return p.parseFormat1(s, ticksPerBeat, isSMPTE)
	default:
		return nil, fmt.Errorf("%w: format %d", ErrUnsupportedFormat, s.Format())
	}
}

// resolveDivision extracts ticks-per-quarter-note from the SMF time
// format. A metrical division is used directly; an SMPTE division is
// converted to an equivalent ticks-per-quarter-note as if the file ran at
// a fixed 120 BPM (120 BPM == 2 beats/sec == 0.5s/beat).
func resolveDivision(tf smf.TimeFormat) (ticksPerBeat int64, isSMPTE bool) {
	switch t := tf.(type) {
	case smf.MetricTicks:
		return int64(t.Resolution()), false
	case smf.SMPTE:
		ticksPerSecond := float64(t.FramesPerSecond) * float64(t.SubFrames)
		return int64(ticksPerSecond * 0.5), true
	default:
		return 480, false
	}
}

// parseFormat0 materializes sixteen MIDI channel tracks (0-15) from a
// single interleaved Format 0 track.
func (p *Parser) parseFormat0(s smf.SMF, ticksPerBeat int64, isSMPTE bool) (*File, error) {
	if len(s.Tracks) == 0 {
		return &File{}, nil
	}

	tracks := make([]*Track, 16)
	for i := range tracks {
		tracks[i] = NewTrack("")
	}

	tempoMap := []tempoEntry{{tick: 0, usPerQuarter: 60000000.0 / defaultTempo}}
	if isSMPTE {
		tempoMap = []tempoEntry{{tick: 0, usPerQuarter: 60000000.0 / defaultTempo}}
	}

	var currentTick int64
	var currentTime float64
	tempoIdx := 0

	track := s.Tracks[0]
	for _, ev := range track {
		delta := int64(ev.Delta)
		if delta > 0 {
			currentTime += ticksToSeconds(delta, tempoMap[tempoIdx].usPerQuarter, ticksPerBeat)
			currentTick += delta
		}

		msg := ev.Message
		if newTempo, ok := parseTempoMeta(msg); ok && !isSMPTE {
			tempoMap = append(tempoMap, tempoEntry{tick: currentTick, usPerQuarter: newTempo})
			tempoIdx = len(tempoMap) - 1
		}

		if len(msg) < 1 {
			continue
		}
		status := msg[0]
		if status < 0x80 || status > 0xEF {
			continue
		}
		channel := status & 0x0F
		if status >= 0xC0 && status <= 0xCF && len(msg) >= 2 {
			if tracks[channel].Name == "" {
				applyProgramName(tracks[channel], channel, msg[1])
			}
			continue
		}
		applyChannelMessage(tracks[channel], msg, currentTime)
	}

	return finalizeTracks(tracks), nil
}

// parseFormat1 builds a shared tempo map from a first pass over every
// track, then resolves each track's events to seconds in a second pass.
func (p *Parser) parseFormat1(s smf.SMF, ticksPerBeat int64, isSMPTE bool) (*File, error) {
	tempoMap := buildTempoMap(s.Tracks)
	if isSMPTE {
		tempoMap = []tempoEntry{{tick: 0, usPerQuarter: 60000000.0 / defaultTempo}}
	}

	tracks := make([]*Track, len(s.Tracks))
	for i, rawTrack := range s.Tracks {
		tracks[i] = p.parseTrack(rawTrack, tempoMap, ticksPerBeat)
	}

	return finalizeTracks(tracks), nil
}

// buildTempoMap scans every track for tempo meta events and merges them
// into one tick-ordered tempo map, as if all tracks shared tick 0.
func buildTempoMap(rawTracks []smf.Track) []tempoEntry {
	tempoMap := []tempoEntry{{tick: 0, usPerQuarter: 60000000.0 / defaultTempo}}
	for _, rawTrack := range rawTracks {
		var tick int64
		for _, ev := range rawTrack {
			tick += int64(ev.Delta)
			if newTempo, ok := parseTempoMeta(ev.Message); ok {
				tempoMap = append(tempoMap, tempoEntry{tick: tick, usPerQuarter: newTempo})
			}
		}
	}
	sortTempoMap(tempoMap)
	return dedupTempoMap(tempoMap)
}

func sortTempoMap(entries []tempoEntry) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j-1].tick > entries[j].tick; j-- {
			entries[j-1], entries[j] = entries[j], entries[j-1]
		}
	}
}

// dedupTempoMap keeps only the last tempo entry recorded for any given
// tick, preserving tick order.
func dedupTempoMap(entries []tempoEntry) []tempoEntry {
	out := make([]tempoEntry, 0, len(entries))
	for _, e := range entries {
		if len(out) > 0 && out[len(out)-1].tick == e.tick {
			out[len(out)-1] = e
			continue
		}
		out = append(out, e)
	}
	return out
}

// tempoAt returns the microseconds-per-quarter-note in effect at tick,
// i.e. the closest preceding tempo map entry.
func tempoAt(tempoMap []tempoEntry, tick int64) float64 {
	result := tempoMap[0].usPerQuarter
	for _, e := range tempoMap {
		if e.tick > tick {
			break
		}
		result = e.usPerQuarter
	}
	return result
}

func ticksToSeconds(deltaTicks int64, usPerQuarter float64, ticksPerBeat int64) float64 {
	if ticksPerBeat == 0 {
		ticksPerBeat = 480
	}
	return float64(deltaTicks) * usPerQuarter / (float64(ticksPerBeat) * 1e6)
}

// parseTrack resolves one raw SMF track against the given tempo map into
// a time-domain Track, tracking its own tick position independent of
// other tracks.
func (p *Parser) parseTrack(rawTrack smf.Track, tempoMap []tempoEntry, ticksPerBeat int64) *Track {
	t := NewTrack("")
	var currentTick int64
	var currentTime float64
	namedExplicitly := false

	for _, ev := range rawTrack {
		delta := int64(ev.Delta)
		if delta > 0 {
			currentTime += ticksToSeconds(delta, tempoAt(tempoMap, currentTick), ticksPerBeat)
			currentTick += delta
		}

		msg := ev.Message
		if name, ok := parseTrackNameMeta(msg); ok {
			t.Name = name
			namedExplicitly = true
			continue
		}
		if _, ok := parseTempoMeta(msg); ok {
			continue
		}

		if len(msg) < 1 {
			continue
		}
		status := msg[0]
		if status < 0x80 || status > 0xEF {
			continue
		}
		channel := status & 0x0F

		if status >= 0xC0 && status <= 0xCF && len(msg) >= 2 {
			if !namedExplicitly {
				applyProgramName(t, channel, msg[1])
			}
			continue
		}

		applyChannelMessage(t, msg, currentTime)
	}

	return t
}

// parseTempoMeta recognizes a Set Tempo meta event (FF 51 03 tt tt tt)
// and returns its microseconds-per-quarter-note value.
func parseTempoMeta(msg []byte) (float64, bool) {
	if len(msg) >= 6 && msg[0] == 0xFF && msg[1] == 0x51 && msg[2] == 0x03 {
		us := uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5])
		if us == 0 {
			return 0, false
		}
		return float64(us), true
	}
	return 0, false
}

// parseTrackNameMeta recognizes a Track Name meta event (FF 03 len ...).
func parseTrackNameMeta(msg []byte) (string, bool) {
	if len(msg) >= 3 && msg[0] == 0xFF && msg[1] == 0x03 {
		n := int(msg[2])
		if len(msg) >= 3+n {
			return string(msg[3 : 3+n]), true
		}
	}
	return "", false
}

// applyProgramName names a track from a program-change event when it has
// not already received an explicit Track Name meta event: channel 10
// (zero-based 9) becomes "Drumset", all others take the General MIDI
// instrument name for the program number.
func applyProgramName(t *Track, channel, program uint8) {
	if channel == 9 {
		t.Name = drumsetTrackName
		return
	}
	if name := gmProgramName(program); name != "" {
		t.Name = name
	}
}

// applyChannelMessage dispatches one raw channel-voice message (note
// on/off, control change, pitchwheel, aftertouch) to the track's event
// streams at the given resolved time in seconds.
func applyChannelMessage(t *Track, msg []byte, time float64) {
	if len(msg) < 1 {
		return
	}
	status := msg[0]
	hi := status & 0xF0
	channel := status & 0x0F

	switch hi {
	case 0x90: // note on, or note on with velocity 0 == note off
		if len(msg) < 3 {
			return
		}
		note, velocity := msg[1], msg[2]
		if velocity == 0 {
			_ = t.AddNoteOff(channel, note, time)
			return
		}
		t.AddNoteOn(channel, note, velocity, time)

	case 0x80: // note off
		if len(msg) < 3 {
			return
		}
		_ = t.AddNoteOff(channel, msg[1], time)

	case 0xB0: // control change
		if len(msg) < 3 {
			return
		}
		t.AddControlChange(msg[1], channel, msg[2], time)

	case 0xE0: // pitchwheel, 14-bit, normalized to [-1, 1]
		if len(msg) < 3 {
			return
		}
		raw := int(msg[1]) | int(msg[2])<<7
		normalized := (float64(raw) - 8192.0) / 8192.0
		t.AddPitchwheel(channel, normalized, time)

	case 0xA0: // polyphonic aftertouch, normalized to [0, 1]
		if len(msg) < 3 {
			return
		}
		t.AddAftertouch(channel, float64(msg[2])/127.0, time)

	case 0xD0: // channel pressure, normalized to [0, 1]
		if len(msg) < 2 {
			return
		}
		t.AddAftertouch(channel, float64(msg[1])/127.0, time)
	}
}

// finalizeTracks drops empty tracks and sorts each remaining track's
// notes by time_on.
func finalizeTracks(tracks []*Track) *File {
	f := &File{}
	for _, t := range tracks {
		if t.IsEmpty() {
			continue
		}
		t.sortNotesByTimeOn()
		f.Tracks = append(f.Tracks, t)
	}
	return f
}
