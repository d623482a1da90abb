package scenemodel

import "testing"

func TestCompareSceneDataIdenticalScenesHaveNoChanges(t *testing.T) {
	scenes := Scenes{
		"Scene": {
			Name: "Scene",
			ObjectGroups: []ObjectGroup{
				{Name: "G", Objects: []Object{{Name: "A"}, {Name: "B"}}},
			},
		},
	}

	diff := CompareSceneData(scenes, scenes)
	if diff.HasChanges() {
		t.Fatalf("expected no changes comparing a scene to itself, got %+v", diff)
	}
}

// Scenario 6 from the spec: saved scene missing group G2 present in fresh.
func TestCompareSceneDataNewCollection(t *testing.T) {
	saved := Scenes{"Scene": {Name: "Scene", ObjectGroups: []ObjectGroup{{Name: "G1"}}}}
	fresh := Scenes{"Scene": {Name: "Scene", ObjectGroups: []ObjectGroup{{Name: "G1"}, {Name: "G2"}}}}

	diff := CompareSceneData(saved, fresh)
	if len(diff.NewCollections) != 1 || diff.NewCollections[0] != "Scene/G2" {
		t.Fatalf("NewCollections = %v, want [\"Scene/G2\"]", diff.NewCollections)
	}
	if len(diff.MissingCollections) != 0 || len(diff.NewObjects) != 0 || len(diff.MissingObjects) != 0 {
		t.Fatalf("expected only NewCollections populated, got %+v", diff)
	}
}

func TestCompareSceneDataMissingObject(t *testing.T) {
	saved := Scenes{"Scene": {Name: "Scene", ObjectGroups: []ObjectGroup{
		{Name: "G", Objects: []Object{{Name: "A"}, {Name: "B"}}},
	}}}
	fresh := Scenes{"Scene": {Name: "Scene", ObjectGroups: []ObjectGroup{
		{Name: "G", Objects: []Object{{Name: "A"}}},
	}}}

	diff := CompareSceneData(saved, fresh)
	if len(diff.MissingObjects) != 1 || diff.MissingObjects[0] != "Scene/G/B" {
		t.Fatalf("MissingObjects = %v, want [\"Scene/G/B\"]", diff.MissingObjects)
	}
}
