package graph

import (
	"errors"
	"testing"
)

func testRegistry() Registry {
	r := NewRegistry()
	r.Register("const", func(in Inputs) Outputs {
		return Outputs{"value": in["value"]}
	})
	r.Register("add", func(in Inputs) Outputs {
		a, _ := in["a"].(float64)
		b, _ := in["b"].(float64)
		return Outputs{"sum": a + b}
	})
	return r
}

func TestExecuteGraphLinearPipeline(t *testing.T) {
	instance := Instance{
		Nodes: []Node{
			{ID: "const-1", Realtime: true, Data: struct {
				Inputs map[string]any `json:"inputs"`
			}{Inputs: map[string]any{"value": 1.0}}},
			{ID: "const-2", Realtime: true, Data: struct {
				Inputs map[string]any `json:"inputs"`
			}{Inputs: map[string]any{"value": 2.0}}},
			{ID: "add-3", Realtime: true},
		},
		Edges: []Edge{
			{Source: "add-3", Target: "const-1", SourceHandle: "a", TargetHandle: "value"},
			{Source: "add-3", Target: "const-2", SourceHandle: "b", TargetHandle: "value"},
		},
	}

	exec := NewExecutor(testRegistry())
	result, err := exec.ExecuteGraph(instance, false)
	if err != nil {
		t.Fatalf("ExecuteGraph returned error: %v", err)
	}

	sum, ok := result.Results["add-3"]["sum"].(float64)
	if !ok || sum != 3 {
		t.Fatalf("add-3 sum = %v, want 3", result.Results["add-3"]["sum"])
	}
}

func TestExecuteGraphIsIdempotent(t *testing.T) {
	instance := Instance{
		Nodes: []Node{{ID: "const-1", Realtime: true, Data: struct {
			Inputs map[string]any `json:"inputs"`
		}{Inputs: map[string]any{"value": 42.0}}}},
	}

	exec := NewExecutor(testRegistry())
	first, err := exec.ExecuteGraph(instance, false)
	if err != nil {
		t.Fatalf("first execution failed: %v", err)
	}
	second, err := exec.ExecuteGraph(instance, false)
	if err != nil {
		t.Fatalf("second execution failed: %v", err)
	}

	if first.Results["const-1"]["value"] != second.Results["const-1"]["value"] {
		t.Fatalf("repeated execution produced different results: %v vs %v",
			first.Results["const-1"], second.Results["const-1"])
	}
}

func TestExecuteGraphDetectsCycle(t *testing.T) {
	instance := Instance{
		Nodes: []Node{{ID: "add-1"}, {ID: "add-2"}},
		Edges: []Edge{
			{Source: "add-1", Target: "add-2"},
			{Source: "add-2", Target: "add-1"},
		},
	}

	exec := NewExecutor(testRegistry())
	_, err := exec.ExecuteGraph(instance, false)
	if !errors.Is(err, ErrGraphCycle) {
		t.Fatalf("expected ErrGraphCycle, got %v", err)
	}
}

func TestExecuteGraphRealtimeSkipsNonRealtimeNodes(t *testing.T) {
	instance := Instance{
		Nodes: []Node{
			{ID: "const-1", Realtime: false, Data: struct {
				Inputs map[string]any `json:"inputs"`
			}{Inputs: map[string]any{"value": 1.0}}},
		},
	}

	exec := NewExecutor(testRegistry())
	result, err := exec.ExecuteGraph(instance, true)
	if err != nil {
		t.Fatalf("ExecuteGraph returned error: %v", err)
	}
	if _, ok := result.Results["const-1"]; ok {
		t.Fatalf("expected non-realtime node to be skipped, got a result")
	}
}
