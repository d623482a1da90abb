package nodes

import "testing"

func TestPadNums(t *testing.T) {
	tests := []struct {
		name string
		nums []uint8
		pad  int
		want []uint8
	}{
		{"interior gap of one", []uint8{60, 63}, 4, []uint8{60, 61, 62, 63}},
		{"interior gap of two", []uint8{60, 65}, 4, []uint8{60, 62, 64, 65}},
		{"already long enough truncates", []uint8{10, 20, 30, 40}, 2, []uint8{10, 20}},
		{"exact length is untouched", []uint8{5, 6, 7}, 3, []uint8{5, 6, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := padNums(tt.nums, tt.pad)
			if len(got) != len(tt.want) {
				t.Fatalf("padNums(%v, %d) = %v, want %v", tt.nums, tt.pad, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("padNums(%v, %d) = %v, want %v", tt.nums, tt.pad, got, tt.want)
				}
			}
		})
	}
}

func TestPadNumsSingleValueExtendsAlternately(t *testing.T) {
	got := padNums([]uint8{10}, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 values, got %v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Fatalf("expected strictly increasing sorted output, got %v", got)
		}
	}
}

func TestCanonicalCurveName(t *testing.T) {
	tests := []struct {
		dataPath string
		index    uint32
		want     string
	}{
		{"location", 0, "location_x"},
		{"location", 1, "location_y"},
		{"rotation", 2, "rotation_z"},
		{"scale", 0, "scale_x"},
		{"some_custom_prop", 3, "some_custom_prop_3"},
	}

	for _, tt := range tests {
		got := canonicalCurveName(tt.dataPath, tt.index)
		if got != tt.want {
			t.Errorf("canonicalCurveName(%q, %d) = %q, want %q", tt.dataPath, tt.index, got, tt.want)
		}
	}
}
