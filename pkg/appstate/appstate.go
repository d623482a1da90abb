// Package appstate holds the process-global application state: scene
// mirror, node-graph instance, last execution results, and connection
// status. It is created once at startup with defaults and lives for the
// life of the process; callers observe it through Snapshot and mutate it
// through the package's operations, never by reaching into the struct
// directly.
package appstate

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/jamesa08/midianimator-go/pkg/scenemodel"
)

// State is the full observable application state, mirroring the host's
// connection status, the mirrored scene, the current node-graph
// instance, and the results of its last execution.
type State struct {
	Ready                bool                       `json:"ready"`
	Connected            bool                       `json:"connected"`
	ExecutionPaused      bool                       `json:"execution_paused"`
	ConnectedApplication string                     `json:"connected_application"`
	ConnectedVersion     string                     `json:"connected_version"`
	ConnectedFileName    string                     `json:"connected_file_name"`
	SceneData            scenemodel.Scenes          `json:"scene_data"`
	PendingSceneData     *scenemodel.Scenes         `json:"pending_scene_data"`
	RFInstance           map[string]any             `json:"rf_instance"`
	ExecutedResults      map[string]any             `json:"executed_results"`
	ExecutedInputs       map[string]any             `json:"executed_inputs"`
}

// NewState returns a State populated with the same defaults as a
// freshly started process.
func NewState() *State {
	return &State{
		SceneData:       scenemodel.Scenes{},
		RFInstance:      map[string]any{},
		ExecutedResults: map[string]any{},
		ExecutedInputs:  map[string]any{},
	}
}

func (s *State) clone() *State {
	cp := *s
	if s.PendingSceneData != nil {
		pending := *s.PendingSceneData
		cp.PendingSceneData = &pending
	}
	return &cp
}

// Broadcaster is notified after every state mutation, once the guarding
// mutex has been released. It stands in for the GUI shell's
// "update_state" event emitter, which this module does not itself
// implement.
type Broadcaster interface {
	BroadcastState(*State)
}

// noopBroadcaster discards broadcasts; used when no Broadcaster is
// configured.
type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastState(*State) {}

// Store guards a State with a mutex and notifies a Broadcaster after
// every write, matching the snapshot-then-release pattern used
// throughout the core: clone under lock, release, then act.
type Store struct {
	mu          sync.RWMutex
	state       *State
	broadcaster Broadcaster
}

// NewStore returns a Store initialized with default state and no
// broadcaster.
func NewStore() *Store {
	return &Store{state: NewState(), broadcaster: noopBroadcaster{}}
}

// SetBroadcaster installs the Broadcaster notified on every write.
func (s *Store) SetBroadcaster(b Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b == nil {
		b = noopBroadcaster{}
	}
	s.broadcaster = b
}

// Snapshot returns a copy of the current State struct, taken under the
// read lock. The copy's scalar fields are independent of the Store, but
// its maps (scene data, pending scene data, rf_instance, executed
// results and inputs) are the Store's own maps, not copies.
func (s *Store) Snapshot() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *Store) broadcast() {
	s.mu.RLock()
	snap := s.state.clone()
	b := s.broadcaster
	s.mu.RUnlock()
	b.BroadcastState(snap)
}

// Ready marks the application ready to receive commands and returns the
// resulting snapshot.
func (s *Store) Ready() *State {
	log.Println("appstate: ready")
	s.mu.Lock()
	s.state.Ready = true
	snap := s.state.clone()
	s.mu.Unlock()
	s.broadcast()
	return snap
}

// UpdateFromJSON replaces the entire state from a serialized State,
// mirroring the host-driven wholesale replace. Fields absent from data
// reset to their zero values, matching the host's own
// deserialize-or-default behavior.
func (s *Store) UpdateFromJSON(data []byte) error {
	var next State
	if err := json.Unmarshal(data, &next); err != nil {
		next = *NewState()
	}
	s.mu.Lock()
	s.state = &next
	s.mu.Unlock()
	s.broadcast()
	return nil
}

// Mutate runs fn with exclusive access to the live state, then
// broadcasts the result. fn must not retain state beyond the call.
func (s *Store) Mutate(fn func(*State)) {
	s.mu.Lock()
	fn(s.state)
	s.mu.Unlock()
	s.broadcast()
}

// ProjectFile is the .mkproj envelope round-tripped by SaveProject and
// LoadProject: the scene mirror and the node-graph instance, without any
// execution results or connection status.
type ProjectFile struct {
	SceneData  scenemodel.Scenes `json:"scene_data"`
	RFInstance map[string]any    `json:"rf_instance"`
}

// SaveProject writes the current scene data and node-graph instance to w
// as pretty-printed JSON.
func (s *Store) SaveProject(w io.Writer) error {
	s.mu.RLock()
	proj := ProjectFile{SceneData: s.state.SceneData, RFInstance: s.state.RFInstance}
	s.mu.RUnlock()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(proj); err != nil {
		return fmt.Errorf("appstate: encode project: %w", err)
	}
	return nil
}

// LoadProject reads a .mkproj envelope from r and installs its scene
// data and node-graph instance into the store. If the store is already
// connected to a host, execution is paused pending scene validation, and
// any prior execution results are cleared, matching the host-driven
// load_project contract.
func (s *Store) LoadProject(r io.Reader) (*State, error) {
	var proj ProjectFile
	if err := json.NewDecoder(r).Decode(&proj); err != nil {
		return nil, fmt.Errorf("appstate: decode project: %w", err)
	}

	s.mu.Lock()
	s.state.SceneData = proj.SceneData
	s.state.RFInstance = proj.RFInstance
	if s.state.Connected {
		s.state.ExecutionPaused = true
	}
	s.state.ExecutedResults = map[string]any{}
	s.state.ExecutedInputs = map[string]any{}
	snap := s.state.clone()
	s.mu.Unlock()

	s.broadcast()
	return snap, nil
}
