package workflow

import "errors"

// NodeTypeTrigger marks a node as an entry point.
const NodeTypeTrigger = "trigger"

// ErrNoTrigger is returned when a definition has no trigger node.
var ErrNoTrigger = errors.New("no trigger nodes found")

// Node is a single step in a workflow graph.
type Node struct {
	ID    string `json:"id" validate:"required"`
	Type  string `json:"type" validate:"required"`
	Title string `json:"title"`
}

// Connection is a directed edge between two nodes.
type Connection struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

// Definition is a workflow graph submitted for a dry run.
type Definition struct {
	Nodes       []Node       `json:"nodes" validate:"dive"`
	Connections []Connection `json:"connections" validate:"dive"`
}

// Step records one executed node.
type Step struct {
	NodeID string `json:"node_id"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Via    string `json:"via,omitempty"`
}

// Result summarizes a dry run.
type Result struct {
	StepsExecuted int    `json:"steps_executed"`
	Path          []Step `json:"path"`
}

// Simulate walks every trigger node and the nodes directly connected to it,
// once each. It does not descend past the first hop.
func Simulate(def Definition) (Result, error) {
	byID := make(map[string]Node, len(def.Nodes))
	var triggers []Node
	for _, node := range def.Nodes {
		if _, exists := byID[node.ID]; !exists {
			byID[node.ID] = node
		}
		if node.Type == NodeTypeTrigger {
			triggers = append(triggers, node)
		}
	}
	if len(triggers) == 0 {
		return Result{}, ErrNoTrigger
	}

	result := Result{Path: []Step{}}
	for _, trigger := range triggers {
		result.record(trigger, "")
		for _, conn := range def.Connections {
			if conn.From != trigger.ID {
				continue
			}
			target, ok := byID[conn.To]
			if !ok {
				continue
			}
			result.record(target, trigger.ID)
		}
	}
	return result, nil
}

func (r *Result) record(node Node, via string) {
	r.StepsExecuted++
	r.Path = append(r.Path, Step{NodeID: node.ID, Type: node.Type, Title: node.Title, Via: via})
}
