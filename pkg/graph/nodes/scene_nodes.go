package nodes

import (
	"github.com/jamesa08/midianimator-go/pkg/appstate"
	"github.com/jamesa08/midianimator-go/pkg/graph"
	"github.com/jamesa08/midianimator-go/pkg/scenemodel"
)

// defaultSceneName is the fixed top-level scene key the host exposes as
// the editable scene, mirroring the single "Scene" key the original
// scene_link node reads.
const defaultSceneName = "Scene"

// SceneLink returns the scene_link node: it takes no inputs and outputs
// the default scene's name and object groups from the live AppState. A
// missing default scene yields an empty name and an empty group list.
func SceneLink(store *appstate.Store) graph.NodeFunc {
	return func(graph.Inputs) graph.Outputs {
		scene, ok := store.Snapshot().SceneData[defaultSceneName]
		if !ok {
			return graph.Outputs{"name": "", "object_groups": []scenemodel.ObjectGroup{}}
		}
		return graph.Outputs{"name": scene.Name, "object_groups": scene.ObjectGroups}
	}
}

// Viewer returns the viewer node: a terminal inspection sink. It accepts
// any "data" input and produces no outputs.
func Viewer() graph.NodeFunc {
	return func(graph.Inputs) graph.Outputs {
		return graph.Outputs{}
	}
}
