package scenemodel

import "sort"

// Diff is the symmetric difference between two scene snapshots, computed
// by name within matched scenes and matched object groups. Scenes that
// exist in only one of the two snapshots are not reported: the diff only
// ever looks inside scenes present in both.
type Diff struct {
	MissingObjects     []string `json:"missing_objects"`
	NewObjects         []string `json:"new_objects"`
	MissingCollections []string `json:"missing_collections"`
	NewCollections     []string `json:"new_collections"`
}

// HasChanges reports whether the diff contains any entries at all.
func (d Diff) HasChanges() bool {
	return len(d.MissingObjects) > 0 || len(d.NewObjects) > 0 ||
		len(d.MissingCollections) > 0 || len(d.NewCollections) > 0
}

// EmptyDiff returns a Diff with no changes.
func EmptyDiff() Diff {
	return Diff{}
}

// CompareSceneData computes the symmetric-difference diff between a saved
// and a freshly-fetched scene snapshot: for every scene name present in
// both, diff its object groups by name, and for every group name present
// in both, diff its objects by name. Entries are formatted as
// "scene/group" for collections and "scene/group/object" for objects.
func CompareSceneData(saved, fresh Scenes) Diff {
	diff := EmptyDiff()

	for sceneName, savedScene := range saved {
		freshScene, ok := fresh[sceneName]
		if !ok {
			continue
		}

		savedGroups := groupNameSet(savedScene)
		freshGroups := groupNameSet(freshScene)

		for name := range savedGroups {
			if !freshGroups[name] {
				diff.MissingCollections = append(diff.MissingCollections, sceneName+"/"+name)
			}
		}
		for name := range freshGroups {
			if !savedGroups[name] {
				diff.NewCollections = append(diff.NewCollections, sceneName+"/"+name)
			}
		}

		for _, savedGroup := range savedScene.ObjectGroups {
			freshGroup := freshScene.FindGroup(savedGroup.Name)
			if freshGroup == nil {
				continue
			}

			savedObjects := objectNameSet(savedGroup)
			freshObjects := objectNameSet(*freshGroup)

			for name := range savedObjects {
				if !freshObjects[name] {
					diff.MissingObjects = append(diff.MissingObjects, sceneName+"/"+savedGroup.Name+"/"+name)
				}
			}
			for name := range freshObjects {
				if !savedObjects[name] {
					diff.NewObjects = append(diff.NewObjects, sceneName+"/"+freshGroup.Name+"/"+name)
				}
			}
		}
	}

	sort.Strings(diff.MissingObjects)
	sort.Strings(diff.NewObjects)
	sort.Strings(diff.MissingCollections)
	sort.Strings(diff.NewCollections)
	return diff
}

func groupNameSet(s Scene) map[string]bool {
	set := make(map[string]bool, len(s.ObjectGroups))
	for _, g := range s.ObjectGroups {
		set[g.Name] = true
	}
	return set
}

func objectNameSet(g ObjectGroup) map[string]bool {
	set := make(map[string]bool, len(g.Objects))
	for _, o := range g.Objects {
		set[o.Name] = true
	}
	return set
}
