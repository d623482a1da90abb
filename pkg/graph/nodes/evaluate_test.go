package nodes

import "testing"

// An object referencing two generators for the same note number must be
// paired with both, not just the one appended alongside that note number
// at the same list index.
func TestNoteToObjectsPairsEveryAnimationTheObjectReferences(t *testing.T) {
	objectMap := ObjectMap{
		Animations: map[string]AnimationGenerator{
			"bounce": {Name: "bounce"},
			"spin":   {Name: "spin"},
		},
		Objects: map[string]ObjectMapEntry{
			"Cube": {
				NoteNumber: []uint8{60},
				Animations: []string{"bounce", "spin"},
			},
		},
	}

	assignments := noteToObjects(objectMap)[60]
	if len(assignments) != 2 {
		t.Fatalf("note_to_objects[60] = %v, want 2 assignments (bounce and spin)", assignments)
	}

	seen := make(map[string]bool)
	for _, a := range assignments {
		if a.objectName != "Cube" {
			t.Fatalf("unexpected object %q in assignment", a.objectName)
		}
		seen[a.generator.Name] = true
	}
	if !seen["bounce"] || !seen["spin"] {
		t.Fatalf("expected both bounce and spin generators, got %v", assignments)
	}
}

func TestNoteToObjectsSkipsUnknownAnimationName(t *testing.T) {
	objectMap := ObjectMap{
		Animations: map[string]AnimationGenerator{"bounce": {Name: "bounce"}},
		Objects: map[string]ObjectMapEntry{
			"Cube": {NoteNumber: []uint8{60}, Animations: []string{"missing"}},
		},
	}

	if got := noteToObjects(objectMap)[60]; len(got) != 0 {
		t.Fatalf("expected no assignments for an unregistered animation name, got %v", got)
	}
}
