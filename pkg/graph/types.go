package graph

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/lanegraph/pkg/roadnet"
)

// =============================================================================
// Description - Raw Network Description
// =============================================================================

// Description is the raw, serialized form of a lane network.
//
//	{
//	  "nodes": [
//	    {"id": 1, "type": "crossing", "name": "A", "neighbours": [[2, 1.0], [null, "inf"], ...]},
//	    {"id": 2, "type": "segment",  "name": "",  "neighbours": [[1, 1.0], [null, "inf"], ...]}
//	  ]
//	}
type Description struct {
	Nodes []NodeDesc `json:"nodes" yaml:"nodes"`
}

// NodeDesc describes one node. Type may hold any string read from input;
// [Validator] reports unrecognized values.
type NodeDesc struct {
	ID         int              `json:"id" yaml:"id"`
	Type       roadnet.NodeType `json:"type" yaml:"type"`
	Name       string           `json:"name" yaml:"name"`
	Neighbours []Neighbour      `json:"neighbours" yaml:"neighbours"`
}

// Find returns the first node description with the given id. O(n).
func (d *Description) Find(id int) (*NodeDesc, bool) {
	if d == nil {
		return nil, false
	}
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i], true
		}
	}
	return nil, false
}

// index maps each id to the position of its first occurrence.
func (d *Description) index() map[int]int {
	idx := make(map[int]int, len(d.Nodes))
	for i, n := range d.Nodes {
		if _, seen := idx[n.ID]; !seen {
			idx[n.ID] = i
		}
	}
	return idx
}

// =============================================================================
// Neighbour - Slot Sum Type
// =============================================================================

// Neighbour is one neighbour slot of a description: either empty (ID nil)
// or present (ID set, Weight the edge weight).
//
// On the wire it is a two-element array, [id, weight] or [null, weight].
type Neighbour struct {
	ID     *int
	Weight float64
}

// Empty returns an empty slot with +Inf weight.
func Empty() Neighbour { return Neighbour{Weight: math.Inf(1)} }

// To returns a present slot pointing at id.
func To(id int, weight float64) Neighbour { return Neighbour{ID: &id, Weight: weight} }

// Present reports whether the slot names a neighbour.
func (n Neighbour) Present() bool { return n.ID != nil }

// ParseWeight parses a weight written as text. Besides plain numbers it
// accepts the spellings serializers use for non-finite values:
// inf, +inf, -inf, infinity, .inf, nan (case-insensitive).
func ParseWeight(s string) (float64, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case ".inf", "+.inf":
		return math.Inf(1), nil
	case "-.inf":
		return math.Inf(-1), nil
	case ".nan":
		return math.NaN(), nil
	}
	w, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid weight %q", s)
	}
	return w, nil
}

func formatWeight(w float64) any {
	switch {
	case math.IsInf(w, 1):
		return "inf"
	case math.IsInf(w, -1):
		return "-inf"
	case math.IsNaN(w):
		return "nan"
	}
	return w
}

// MarshalJSON encodes the slot as [id|null, weight]. Non-finite weights are
// written as strings since JSON has no literal for them.
func (n Neighbour) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{n.ID, formatWeight(n.Weight)})
}

// UnmarshalJSON decodes [id|null, weight]. A null weight means +Inf.
func (n *Neighbour) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("neighbour: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("neighbour: want [id, weight], got %d elements", len(pair))
	}

	var id *int
	if err := json.Unmarshal(pair[0], &id); err != nil {
		return fmt.Errorf("neighbour id: %w", err)
	}

	var raw any
	if err := json.Unmarshal(pair[1], &raw); err != nil {
		return fmt.Errorf("neighbour weight: %w", err)
	}
	var w float64
	switch v := raw.(type) {
	case nil:
		w = math.Inf(1)
	case float64:
		w = v
	case string:
		parsed, err := ParseWeight(v)
		if err != nil {
			return fmt.Errorf("neighbour weight: %w", err)
		}
		w = parsed
	default:
		return fmt.Errorf("neighbour weight: unexpected value %s", pair[1])
	}

	n.ID, n.Weight = id, w
	return nil
}

// MarshalYAML encodes the slot as a flow sequence, e.g. [2, 1.5] or [null, .inf].
func (n Neighbour) MarshalYAML() (any, error) {
	var node yaml.Node
	if err := node.Encode([]any{n.ID, n.Weight}); err != nil {
		return nil, err
	}
	node.Style = yaml.FlowStyle
	return &node, nil
}

// UnmarshalYAML decodes [id|null, weight]. Weights may be YAML floats
// (.inf), null (+Inf), or strings accepted by [ParseWeight].
func (n *Neighbour) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode || len(value.Content) != 2 {
		return fmt.Errorf("line %d: neighbour must be [id, weight]", value.Line)
	}
	idNode, wNode := value.Content[0], value.Content[1]

	var id *int
	if idNode.ShortTag() != "!!null" {
		var v int
		if err := idNode.Decode(&v); err != nil {
			return fmt.Errorf("line %d: neighbour id: %w", idNode.Line, err)
		}
		id = &v
	}

	var w float64
	switch wNode.ShortTag() {
	case "!!null":
		w = math.Inf(1)
	case "!!str":
		parsed, err := ParseWeight(wNode.Value)
		if err != nil {
			return fmt.Errorf("line %d: neighbour weight: %w", wNode.Line, err)
		}
		w = parsed
	default:
		if err := wNode.Decode(&w); err != nil {
			return fmt.Errorf("line %d: neighbour weight: %w", wNode.Line, err)
		}
	}

	n.ID, n.Weight = id, w
	return nil
}
