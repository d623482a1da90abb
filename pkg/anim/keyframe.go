// Package anim implements the BlendKeyframe type and the additive
// keyframe overlap-merge algorithm that the evaluate_instrument node (in
// package nodes) uses to build per-object BlendKeyframe sequences.
package anim

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// epsilon is used for frame-equality comparisons in place of machine
// epsilon on float64, matching f64::EPSILON's role in the original
// overlap-merge algorithm.
const epsilon = 2.220446049250313e-16

// BlendKeyframe is a single sample of an animated property at a given
// frame, destined for the host's keyframe insertion call.
type BlendKeyframe struct {
	Frame      float64 `json:"frame"`
	Value      float64 `json:"value"`
	DataPath   string  `json:"data_path"`
	ArrayIndex uint32  `json:"array_index"`
}

// GetValue linearly interpolates between k1 and k2 at frame. A
// near-vertical (or degenerate, k1==k2) segment has slope 0.
func GetValue(k1, k2 BlendKeyframe, frame float64) float64 {
	x1, y1 := k1.Frame, k1.Value
	x2, y2 := k2.Frame, k2.Value
	var m float64
	if math.Abs(x2-x1) >= epsilon {
		m = (y2 - y1) / (x2 - x1)
	}
	return m*frame + (y1 - m*x1)
}

// Interval returns the bracketing pair of keyframes around frame within
// keys: both ends of keys when frame is outside the range (clamped),
// or the adjacent pair straddling frame. The two returned keyframes are
// identical when frame clamps to one end. ok is false only for an empty
// key list.
func Interval(keys []BlendKeyframe, frame float64) (k1, k2 BlendKeyframe, ok bool) {
	if len(keys) == 0 {
		return BlendKeyframe{}, BlendKeyframe{}, false
	}
	if keys[0].Frame > frame {
		return keys[0], keys[0], true
	}
	last := keys[len(keys)-1]
	if last.Frame < frame {
		return last, last, true
	}
	for i := 0; i < len(keys)-1; i++ {
		if keys[i].Frame <= frame && frame <= keys[i+1].Frame {
			return keys[i], keys[i+1], true
		}
	}
	return BlendKeyframe{}, BlendKeyframe{}, false
}

// FindOverlap returns the tail of list1 whose frames exceed list2's
// first frame, including the boundary keyframe immediately at or before
// that point. list1 must start no later than list2 (notes processed in
// time order); returns nil if either list is empty.
func FindOverlap(list1, list2 []BlendKeyframe) []BlendKeyframe {
	if len(list1) == 0 || len(list2) == 0 {
		return nil
	}
	firstNext := list2[0].Frame

	var result []BlendKeyframe
	found := false
	for i := len(list1) - 1; i >= 0; i-- {
		key := list1[i]
		if key.Frame > firstNext {
			found = true
			result = append(result, key)
			continue
		}
		if found {
			result = append(result, key)
		}
		break
	}
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result
}

// AddKeyframes merges next into inserted under the additive overlap
// policy: where the two streams overlap in time, each stream's value in
// the overlap region gains the other stream's interpolated value, then
// the two streams are concatenated, sorted by frame, and deduplicated by
// frame (within epsilon). When they do not overlap, the streams are only
// concatenated and sorted; keyframes sharing a frame are all kept.
func AddKeyframes(inserted, next []BlendKeyframe) []BlendKeyframe {
	overlap := FindOverlap(inserted, next)
	if len(overlap) == 0 {
		merged := append(append([]BlendKeyframe{}, inserted...), next...)
		sortByFrame(merged)
		return merged
	}

	nextCopy := append([]BlendKeyframe{}, next...)
	for i := range nextCopy {
		if k1, k2, ok := Interval(overlap, nextCopy[i].Frame); ok {
			nextCopy[i].Value += GetValue(k1, k2, nextCopy[i].Frame)
		}
	}

	overlapFrames := make(map[float64]bool, len(overlap))
	for _, k := range overlap {
		overlapFrames[k.Frame] = true
	}

	insertedCopy := append([]BlendKeyframe{}, inserted...)
	for i := range insertedCopy {
		if !overlapFrames[insertedCopy[i].Frame] {
			continue
		}
		if k1, k2, ok := Interval(next, insertedCopy[i].Frame); ok {
			insertedCopy[i].Value += GetValue(k1, k2, insertedCopy[i].Frame)
		}
	}

	merged := append(insertedCopy, nextCopy...)
	sortByFrame(merged)
	return dedupByFrame(merged)
}

func sortByFrame(keys []BlendKeyframe) {
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].Frame < keys[j].Frame })
}

func dedupByFrame(keys []BlendKeyframe) []BlendKeyframe {
	if len(keys) == 0 {
		return keys
	}
	out := keys[:1]
	for _, k := range keys[1:] {
		if math.Abs(k.Frame-out[len(out)-1].Frame) < epsilon {
			continue
		}
		out = append(out, k)
	}
	return out
}

// ParseAnimationProperty splits "data_path[index]" into its data path
// and array index; an absent bracket yields array index 0.
func ParseAnimationProperty(prop string) (dataPath string, arrayIndex uint32) {
	bracket := strings.IndexByte(prop, '[')
	if bracket < 0 {
		return prop, 0
	}
	dataPath = prop[:bracket]
	indexStr := strings.TrimSuffix(prop[bracket+1:], "]")
	idx, err := strconv.ParseUint(indexStr, 10, 32)
	if err != nil {
		return dataPath, 0
	}
	return dataPath, uint32(idx)
}
