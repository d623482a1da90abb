package graph

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// ErrGraphCycle is returned when the authored graph contains a cycle:
// evaluating a node transitively requires its own, not-yet-computed
// result.
var ErrGraphCycle = errors.New("graph: cycle detected")

// ErrUnknownNode is logged (not returned) when a node's kind has no
// registered executor; the node produces an empty result and execution
// continues.
var ErrUnknownNode = errors.New("graph: unknown node kind")

// Result is the outcome of one ExecuteGraph call: per-node results and
// per-node bound inputs, exactly what gets written to AppState's
// executed_results / executed_inputs.
type Result struct {
	Results  map[string]Outputs
	Inputs   map[string]Inputs
	Duration time.Duration
}

// Executor walks an Instance against a Registry of node functions.
type Executor struct {
	registry Registry
}

// NewExecutor returns an Executor backed by registry.
func NewExecutor(registry Registry) *Executor {
	return &Executor{registry: registry}
}

// visitColor tracks each node's progress through the traversal: white
// (unvisited), gray (currently being evaluated, ancestor on the active
// path), black (fully evaluated and memoized).
type visitColor int

const (
	white visitColor = iota
	gray
	black
)

// ExecuteGraph walks instance from its root set (node ids that never
// appear as an edge Target — the graph's output sinks, per the
// source/target inversion) and recursively pulls each node's producer
// results before executing it, memoizing as it goes. Any node left
// unvisited after the roots (one that only lies on a cycle) is visited
// too, so such a cycle is reported as ErrGraphCycle. realtime gates
// execution of any node whose Realtime flag is false.
func (e *Executor) ExecuteGraph(instance Instance, realtime bool) (*Result, error) {
	start := time.Now()

	nodesByID := make(map[string]Node, len(instance.Nodes))
	for _, n := range instance.Nodes {
		nodesByID[n.ID] = n
	}

	colors := make(map[string]visitColor, len(instance.Nodes))
	results := make(map[string]Outputs)
	inputs := make(map[string]Inputs)

	var visit func(nodeID string) error
	visit = func(nodeID string) error {
		switch colors[nodeID] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("%w: at node %s", ErrGraphCycle, nodeID)
		}
		colors[nodeID] = gray

		node, ok := nodesByID[nodeID]
		if !ok {
			return fmt.Errorf("graph: node %s not found in instance", nodeID)
		}

		nodeInputs := Inputs{}
		for _, edge := range instance.Edges {
			if edge.Source != nodeID {
				continue
			}
			if _, ok := results[edge.Target]; !ok {
				if err := visit(edge.Target); err != nil {
					return err
				}
			}
			producerResult := results[edge.Target]
			nodeInputs[edge.SourceHandle] = producerResult[edge.TargetHandle]
		}

		for handle, value := range node.Data.Inputs {
			if _, bound := nodeInputs[handle]; !bound {
				nodeInputs[handle] = value
			}
		}

		inputs[nodeID] = nodeInputs
		colors[nodeID] = black

		if realtime && !node.Realtime {
			return nil
		}

		kind := node.Kind()
		fn, ok := e.registry.Lookup(kind)
		if !ok {
			log.Printf("graph: %v: %s (node %s)", ErrUnknownNode, kind, nodeID)
			results[nodeID] = Outputs{}
			return nil
		}

		out := fn(nodeInputs)
		if out == nil {
			out = Outputs{}
		}
		results[nodeID] = out
		log.Printf("graph: executed node %s (%s)", nodeID, kind)
		return nil
	}

	for _, nodeID := range rootSet(instance) {
		if err := visit(nodeID); err != nil {
			return nil, err
		}
	}
	for _, n := range instance.Nodes {
		if colors[n.ID] == white {
			if err := visit(n.ID); err != nil {
				return nil, err
			}
		}
	}

	elapsed := time.Since(start)
	log.Printf("graph: execution took %s", elapsed)

	return &Result{Results: results, Inputs: inputs, Duration: elapsed}, nil
}

// rootSet returns every node id that never appears as an edge's Target:
// given the source/target inversion (Target is the upstream producer),
// these are the nodes with no downstream consumer of their own — the
// graph's output sinks, which is where demand-driven evaluation starts.
func rootSet(instance Instance) []string {
	hasConsumer := make(map[string]bool, len(instance.Edges))
	for _, e := range instance.Edges {
		hasConsumer[e.Target] = true
	}

	var roots []string
	for _, n := range instance.Nodes {
		if !hasConsumer[n.ID] {
			roots = append(roots, n.ID)
		}
	}
	return roots
}

// KindFromID is a package-level convenience matching Node.Kind for
// default-node-catalog lookups that only have the bare id string.
func KindFromID(id string) string {
	return strings.SplitN(id, "-", 2)[0]
}
