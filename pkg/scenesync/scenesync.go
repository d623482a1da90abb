// Package scenesync fetches scene snapshots from the host over Transport,
// diffs saved vs. live snapshots, and manages the paused-for-validation
// state that gates graph execution while a diff awaits a decision.
package scenesync

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jamesa08/midianimator-go/pkg/appstate"
	"github.com/jamesa08/midianimator-go/pkg/scenemodel"
	"github.com/jamesa08/midianimator-go/pkg/transport"
)

// sceneBuilderRequest is the host-side script/command whose reply is the
// scene snapshot JSON mapping described in §6.
const sceneBuilderRequest = "get_scene_data"

// sceneSenderTemplate is substituted with a serialized scenes map at the
// JSON_DATA placeholder before being sent to the host.
const sceneSenderTemplate = `JSON_DATA = r""""""`

// ErrValidationPending is returned by scene operations that require a
// pending validation (execution paused) when none is pending.
var ErrValidationPending = errors.New("scenesync: no validation pending")

// Syncer ties a Transport to an appstate.Store, implementing the scene
// fetch/diff/validate lifecycle.
type Syncer struct {
	transport *transport.Server
	store     *appstate.Store
}

// New returns a Syncer driving sceneData exchanges over t and storing
// results in store.
func New(t *transport.Server, store *appstate.Store) *Syncer {
	return &Syncer{transport: t, store: store}
}

// rawScenePayload mirrors the host's nested scene_name -> object_group ->
// group_name -> {objects: [...]} reply shape before it is flattened into
// scenemodel.Scenes.
type rawScenePayload map[string]struct {
	ObjectGroup map[string]struct {
		Objects []json.RawMessage `json:"objects"`
	} `json:"object_group"`
}

// rawObject is every field an object in the host reply may carry. The
// host sends transforms as plain 3-element arrays, not {x,y,z} objects;
// position, rotation, scale, blend_shapes, and anim_curves are required
// for the object to be kept.
type rawObject struct {
	Name        string                  `json:"name"`
	Position    *[3]float32             `json:"location"`
	Rotation    *[3]float32             `json:"rotation"`
	Scale       *[3]float32             `json:"scale"`
	BlendShapes *scenemodel.BlendShapes `json:"blend_shapes"`
	AnimCurves  *[]scenemodel.AnimCurve `json:"anim_curves"`
}

// toObject converts a rawObject into a scenemodel.Object, or returns ok
// == false if any required field is missing, mirroring the host parser's
// filter_map over malformed entries.
func (r rawObject) toObject() (scenemodel.Object, bool) {
	if r.Position == nil || r.Rotation == nil || r.Scale == nil || r.BlendShapes == nil || r.AnimCurves == nil {
		return scenemodel.Object{}, false
	}
	return scenemodel.Object{
		Name:        r.Name,
		Position:    vec3From(*r.Position),
		Rotation:    vec3From(*r.Rotation),
		Scale:       vec3From(*r.Scale),
		BlendShapes: *r.BlendShapes,
		AnimCurves:  *r.AnimCurves,
	}, true
}

func vec3From(a [3]float32) scenemodel.Vector3 {
	return scenemodel.Vector3{X: a[0], Y: a[1], Z: a[2]}
}

// GetSceneData sends the scene-builder request to the host and parses
// the reply into a Scenes mapping. A malformed reply is a fatal schema
// error, per the host-messages contract.
func (sy *Syncer) GetSceneData() (scenemodel.Scenes, error) {
	reply, err := sy.transport.Send(sceneBuilderRequest)
	if err != nil {
		return nil, fmt.Errorf("scenesync: fetch scene data: %w", err)
	}

	var raw rawScenePayload
	if err := json.Unmarshal([]byte(reply), &raw); err != nil {
		return nil, fmt.Errorf("scenesync: schema mismatch in scene reply: %w", err)
	}

	scenes := make(scenemodel.Scenes, len(raw))
	for sceneName, sceneData := range raw {
		groups := make([]scenemodel.ObjectGroup, 0, len(sceneData.ObjectGroup))
		for groupName, groupData := range sceneData.ObjectGroup {
			groups = append(groups, scenemodel.ObjectGroup{
				Name:    groupName,
				Objects: validObjects(groupData.Objects),
			})
		}
		scenes[sceneName] = scenemodel.Scene{Name: sceneName, ObjectGroups: groups}
	}
	return scenes, nil
}

// validObjects parses each raw object and drops any that are missing a
// required field, matching the host parser's filter-and-skip behavior
// rather than failing the whole scene over one malformed entry.
func validObjects(raw []json.RawMessage) []scenemodel.Object {
	out := make([]scenemodel.Object, 0, len(raw))
	for _, r := range raw {
		var ro rawObject
		if err := json.Unmarshal(r, &ro); err != nil {
			continue
		}
		if obj, ok := ro.toObject(); ok {
			out = append(out, obj)
		}
	}
	return out
}

// SendSceneData serializes scenes, injects them into the scene-sender
// template, and broadcasts it to the host. The host must reply "OK";
// any other reply is an error.
func (sy *Syncer) SendSceneData(scenes scenemodel.Scenes) error {
	encoded, err := json.Marshal(scenes)
	if err != nil {
		return fmt.Errorf("scenesync: encode scenes: %w", err)
	}
	script := fmt.Sprintf(`JSON_DATA = r"""%s"""`, encoded)
	_ = sceneSenderTemplate // documents the placeholder this replaces

	reply, err := sy.transport.Send(script)
	if err != nil {
		return fmt.Errorf("scenesync: send scene data: %w", err)
	}
	if reply != "OK" {
		return fmt.Errorf("scenesync: host rejected scene data: %s", reply)
	}
	return nil
}

// sceneUpdatePush mirrors an unsolicited host push carrying a fresh
// scene snapshot.
type sceneUpdatePush struct {
	Type       string            `json:"type"`
	ChangeType string            `json:"change_type"`
	SceneData  scenemodel.Scenes `json:"scene_data"`
}

// ProcessSceneUpdate accepts an unsolicited push of type "scene_update",
// replacing the store's scene data wholesale. Any other type, or
// malformed JSON, is ignored.
func (sy *Syncer) ProcessSceneUpdate(jsonData []byte) {
	var push sceneUpdatePush
	if err := json.Unmarshal(jsonData, &push); err != nil {
		return
	}
	if push.Type != "scene_update" {
		return
	}
	sy.store.Mutate(func(s *appstate.State) {
		s.SceneData = push.SceneData
	})
}

// ReconnectWithValidation snapshots the saved scene, fetches a fresh one,
// and diffs them. If there are no changes, it atomically installs the
// fresh scene and marks the store connected, returning an empty diff. If
// there are changes, it records the fresh scene as pending scene data,
// pauses execution, and returns the diff for a caller to drive through
// Accept/Reject.
func (sy *Syncer) ReconnectWithValidation() (scenemodel.Diff, error) {
	saved := sy.store.Snapshot().SceneData

	fresh, err := sy.GetSceneData()
	if err != nil {
		return scenemodel.Diff{}, err
	}

	diff := scenemodel.CompareSceneData(saved, fresh)
	if diff.HasChanges() {
		sy.store.Mutate(func(s *appstate.State) {
			pending := fresh
			s.PendingSceneData = &pending
			s.ExecutionPaused = true
		})
		return diff, nil
	}

	sy.store.Mutate(func(s *appstate.State) {
		s.SceneData = fresh
		s.Connected = true
	})
	return scenemodel.EmptyDiff(), nil
}

// CheckSceneChanges diffs the saved scene against any pending scene data.
// It requires a validation to be pending (execution_paused set). If
// paused but no pending data is recorded, the pause is cleared and the
// caller is expected to re-trigger graph execution in realtime mode; this
// is reported back as an error so the caller can do so.
func (sy *Syncer) CheckSceneChanges() (scenemodel.Diff, error) {
	snap := sy.store.Snapshot()
	if !snap.ExecutionPaused {
		return scenemodel.Diff{}, ErrValidationPending
	}
	if snap.PendingSceneData == nil {
		sy.store.Mutate(func(s *appstate.State) { s.ExecutionPaused = false })
		return scenemodel.Diff{}, errors.New("scenesync: no pending scene data")
	}
	return scenemodel.CompareSceneData(snap.SceneData, *snap.PendingSceneData), nil
}

// AcceptSceneChanges installs the pending scene data as the live scene
// and clears the pause. If there is no pending data, it clears the pause
// and reports an error so the caller can re-trigger execution.
func (sy *Syncer) AcceptSceneChanges() error {
	snap := sy.store.Snapshot()
	if snap.PendingSceneData == nil {
		sy.store.Mutate(func(s *appstate.State) { s.ExecutionPaused = false })
		return errors.New("scenesync: no pending scene data")
	}
	pending := *snap.PendingSceneData
	sy.store.Mutate(func(s *appstate.State) {
		s.SceneData = pending
		s.PendingSceneData = nil
		s.ExecutionPaused = false
	})
	return nil
}

// RejectSceneChanges discards pending scene data and stays paused.
func (sy *Syncer) RejectSceneChanges() {
	sy.store.Mutate(func(s *appstate.State) {
		s.PendingSceneData = nil
	})
}
