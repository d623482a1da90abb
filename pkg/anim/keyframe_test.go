package anim

import "testing"

func TestGetValueInterpolatesLinearly(t *testing.T) {
	k1 := BlendKeyframe{Frame: 0, Value: 0}
	k2 := BlendKeyframe{Frame: 2, Value: 4}
	got := GetValue(k1, k2, 1)
	if got != 2 {
		t.Fatalf("GetValue at midpoint = %v, want 2", got)
	}
}

func TestGetValueDegenerateSegmentHasZeroSlope(t *testing.T) {
	k1 := BlendKeyframe{Frame: 5, Value: 3}
	k2 := BlendKeyframe{Frame: 5, Value: 9}
	got := GetValue(k1, k2, 5)
	if got != 3 {
		t.Fatalf("GetValue on degenerate segment = %v, want 3 (k1's value, slope 0)", got)
	}
}

func TestIntervalClampsToEnds(t *testing.T) {
	keys := []BlendKeyframe{{Frame: 1, Value: 10}, {Frame: 5, Value: 50}}

	if k1, k2, ok := Interval(keys, -10); !ok || k1.Frame != 1 || k2.Frame != 1 {
		t.Fatalf("Interval before range = %v, %v, %v", k1, k2, ok)
	}
	if k1, k2, ok := Interval(keys, 100); !ok || k1.Frame != 5 || k2.Frame != 5 {
		t.Fatalf("Interval after range = %v, %v, %v", k1, k2, ok)
	}
	if k1, k2, ok := Interval(keys, 3); !ok || k1.Frame != 1 || k2.Frame != 5 {
		t.Fatalf("Interval within range = %v, %v, %v", k1, k2, ok)
	}
}

// Two bursts that only touch at a shared frame (the second starts where
// the first ends) do not overlap: they are concatenated unchanged, and
// both keyframes at the shared frame are kept.
func TestAddKeyframesNoOverlapConcatenates(t *testing.T) {
	inserted := []BlendKeyframe{{Frame: 0, Value: 0}, {Frame: 1, Value: 1}}
	next := []BlendKeyframe{{Frame: 1, Value: 0}, {Frame: 2, Value: 1}}

	got := AddKeyframes(inserted, next)
	want := []float64{0, 1, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("AddKeyframes produced %d keys, want %d: %v", len(got), len(want), got)
	}
	for i, f := range want {
		if got[i].Frame != f {
			t.Fatalf("frame[%d] = %v, want %v (%v)", i, got[i].Frame, f, got)
		}
	}
}

// Scenario 3 from the spec: overlap merge — two adjacent notes whose
// bursts overlap in time sum their interpolated values at the overlap.
func TestAddKeyframesOverlapMergeAddsInterpolatedValue(t *testing.T) {
	first := []BlendKeyframe{{Frame: 0, Value: 0}, {Frame: 1, Value: 1}}
	second := []BlendKeyframe{{Frame: 0.5, Value: 0}, {Frame: 1.5, Value: 1}}

	merged := AddKeyframes(first, second)

	var atOne float64
	found := false
	for _, k := range merged {
		if k.Frame == 1 {
			atOne = k.Value
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a keyframe at frame 1, got %v", merged)
	}
	if diff := atOne - 1.5; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("value at frame 1 = %v, want 1.5", atOne)
	}
}

func TestParseAnimationProperty(t *testing.T) {
	tests := []struct {
		prop      string
		dataPath  string
		arrayIdx  uint32
	}{
		{"location[0]", "location", 0},
		{"rotation[2]", "rotation", 2},
		{"location", "location", 0},
		{"scale[bad]", "scale", 0},
	}
	for _, tt := range tests {
		dp, idx := ParseAnimationProperty(tt.prop)
		if dp != tt.dataPath || idx != tt.arrayIdx {
			t.Errorf("ParseAnimationProperty(%q) = (%q, %d), want (%q, %d)", tt.prop, dp, idx, tt.dataPath, tt.arrayIdx)
		}
	}
}
