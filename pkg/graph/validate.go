package graph

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/lanegraph/pkg/roadnet"
)

// =============================================================================
// Rules
// =============================================================================

// Rule identifies one validation check. Rules run in declaration order.
type Rule int

const (
	// RuleUniqueID reports every node whose id was already used by an earlier node.
	RuleUniqueID Rule = iota + 1
	// RulePositiveWeight reports slots whose weight is <= 0.
	RulePositiveWeight
	// RuleNameLength reports names longer than one character.
	RuleNameLength
	// RuleValidType reports types outside crossing, segment, lane_switch, dead_end.
	RuleValidType
	// RuleSymmetry reports dangling neighbour ids and neighbours that do not link back.
	RuleSymmetry
	// RuleWeightSymmetry reports back-links whose weight differs. Off by default.
	RuleWeightSymmetry
	// RuleSegmentAdjacency reports non-segment neighbours of crossings,
	// dead ends and lane switches.
	RuleSegmentAdjacency
	// RuleSlotCount reports nodes that do not declare exactly six slots.
	RuleSlotCount
	// RuleTypeDegree reports dead ends without exactly one populated
	// neighbour, and segments or lane switches without exactly two. Off by default.
	RuleTypeDegree
)

// Rules lists every rule in evaluation order.
var Rules = []Rule{
	RuleUniqueID,
	RulePositiveWeight,
	RuleNameLength,
	RuleValidType,
	RuleSymmetry,
	RuleWeightSymmetry,
	RuleSegmentAdjacency,
	RuleSlotCount,
	RuleTypeDegree,
}

var ruleNames = map[Rule]string{
	RuleUniqueID:         "unique_id",
	RulePositiveWeight:   "positive_weight",
	RuleNameLength:       "name_length",
	RuleValidType:        "valid_type",
	RuleSymmetry:         "symmetry",
	RuleWeightSymmetry:   "weight_symmetry",
	RuleSegmentAdjacency: "segment_adjacency",
	RuleSlotCount:        "slot_count",
	RuleTypeDegree:       "type_degree",
}

func (r Rule) String() string {
	if s, ok := ruleNames[r]; ok {
		return s
	}
	return fmt.Sprintf("rule(%d)", int(r))
}

// ParseRule maps a rule name such as "weight_symmetry" to its Rule.
// Dashes are accepted in place of underscores.
func ParseRule(name string) (Rule, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for r, s := range ruleNames {
		if s == key {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown rule %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (r Rule) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rule) UnmarshalText(text []byte) error {
	parsed, err := ParseRule(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// DefaultRules returns the default enablement of every rule: all on except
// [RuleWeightSymmetry] and [RuleTypeDegree].
func DefaultRules() map[Rule]bool {
	m := make(map[Rule]bool, len(Rules))
	for _, r := range Rules {
		m[r] = true
	}
	m[RuleWeightSymmetry] = false
	m[RuleTypeDegree] = false
	return m
}

// =============================================================================
// Diagnostics
// =============================================================================

// Diagnostic is one problem found in a description.
type Diagnostic struct {
	Rule    Rule   `json:"rule"`
	NodeID  int    `json:"node_id"`
	Slot    int    `json:"slot"` // -1 when the problem is not tied to a slot
	Message string `json:"message"`
}

func (d Diagnostic) String() string { return d.Message }

// Messages renders diagnostics as their human-readable messages.
func Messages(diags []Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Message
	}
	return out
}

// =============================================================================
// Validator
// =============================================================================

// Validator checks raw descriptions. It never builds anything and never fails:
// every violated rule contributes a diagnostic.
//
// Disabled rules are still evaluated; only their diagnostics are dropped.
type Validator struct {
	enabled map[Rule]bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithRule enables or disables a single rule.
func WithRule(r Rule, enabled bool) Option {
	return func(v *Validator) { v.enabled[r] = enabled }
}

// WithRules applies every entry of m on top of the defaults.
func WithRules(m map[Rule]bool) Option {
	return func(v *Validator) {
		for r, on := range m {
			v.enabled[r] = on
		}
	}
}

// NewValidator returns a validator with [DefaultRules] plus opts.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{enabled: DefaultRules()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Check validates desc with the default rules.
func Check(desc *Description) []Diagnostic {
	return NewValidator().Check(desc)
}

// Enabled reports whether rule r produces diagnostics.
func (v *Validator) Enabled(r Rule) bool { return v.enabled[r] }

// EnabledRules returns the enabled rules in evaluation order.
func (v *Validator) EnabledRules() []Rule {
	var out []Rule
	for _, r := range Rules {
		if v.enabled[r] {
			out = append(out, r)
		}
	}
	return out
}

// Check returns every problem found in desc, in rule order: duplicate ids
// over the whole description first, then the remaining rules node by node.
// A nil or empty description yields no diagnostics.
func (v *Validator) Check(desc *Description) []Diagnostic {
	if desc == nil {
		return nil
	}
	c := checker{v: v, desc: desc, index: desc.index()}
	c.uniqueIDs()
	for i := range desc.Nodes {
		c.node(&desc.Nodes[i])
	}
	return c.diags
}

type checker struct {
	v     *Validator
	desc  *Description
	index map[int]int
	diags []Diagnostic
}

func (c *checker) emit(r Rule, nodeID, slot int, format string, args ...any) {
	if !c.v.enabled[r] {
		return
	}
	c.diags = append(c.diags, Diagnostic{
		Rule:    r,
		NodeID:  nodeID,
		Slot:    slot,
		Message: fmt.Sprintf(format, args...),
	})
}

func (c *checker) lookup(id int) (*NodeDesc, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return &c.desc.Nodes[i], true
}

func (c *checker) uniqueIDs() {
	first := make(map[int]int, len(c.desc.Nodes))
	for i, n := range c.desc.Nodes {
		if at, seen := first[n.ID]; seen {
			c.emit(RuleUniqueID, n.ID, -1,
				"Duplicate IDs: ID of the %dth node is already in use by %d", i, at)
			continue
		}
		first[n.ID] = i
	}
}

func (c *checker) node(n *NodeDesc) {
	for slot, nb := range n.Neighbours {
		if nb.Weight <= 0 {
			c.emit(RulePositiveWeight, n.ID, slot,
				"Error in node %d: weight to neighbour %d is non positive: %s", n.ID, slot, reprFloat(nb.Weight))
		}
	}

	if utf8.RuneCountInString(n.Name) > 1 {
		c.emit(RuleNameLength, n.ID, -1, "Error in node %d: name can only be 1 character long", n.ID)
	}

	if !n.Type.Valid() {
		c.emit(RuleValidType, n.ID, -1, "Error in node %d: invalid type %s", n.ID, n.Type)
	}

	c.symmetry(n)
	c.segmentAdjacency(n)

	switch {
	case len(n.Neighbours) < roadnet.MaxSlots:
		c.emit(RuleSlotCount, n.ID, -1, "Error in node %d: not enough neighbours", n.ID)
	case len(n.Neighbours) > roadnet.MaxSlots:
		c.emit(RuleSlotCount, n.ID, -1, "Error in node %d: too many neighbours", n.ID)
	}

	c.typeDegree(n)
}

// reprFloat formats w the way diagnostics have always shown weights:
// integral values keep a ".0", non-finite values are inf, -inf and nan.
func reprFloat(w float64) string {
	switch {
	case math.IsInf(w, 1):
		return "inf"
	case math.IsInf(w, -1):
		return "-inf"
	case math.IsNaN(w):
		return "nan"
	case w == math.Trunc(w) && math.Abs(w) < 1e16:
		return strconv.FormatFloat(w, 'f', 1, 64)
	}
	return strconv.FormatFloat(w, 'g', -1, 64)
}

func (c *checker) symmetry(n *NodeDesc) {
	for slot, nb := range n.Neighbours {
		if !nb.Present() {
			continue
		}
		other, ok := c.lookup(*nb.ID)
		if !ok {
			c.emit(RuleSymmetry, n.ID, slot,
				"No node found by id %d, declared as a neighbour of node %d", *nb.ID, n.ID)
			continue
		}

		linked, sameWeight := false, false
		for _, back := range other.Neighbours {
			if back.Present() && *back.ID == n.ID {
				linked = true
				if back.Weight == nb.Weight {
					sameWeight = true
				}
			}
		}
		if !linked {
			c.emit(RuleSymmetry, n.ID, slot,
				"Node %d is not found in the neighbours of node %d", n.ID, other.ID)
			continue
		}
		if !sameWeight {
			c.emit(RuleWeightSymmetry, n.ID, slot,
				"No matching weight was found from node %d to node %d", n.ID, other.ID)
		}
	}
}

func (c *checker) segmentAdjacency(n *NodeDesc) {
	if !n.Type.SegmentOnly() {
		return
	}
	for slot, nb := range n.Neighbours {
		if !nb.Present() {
			continue
		}
		// Dangling ids are reported by the symmetry rule.
		other, ok := c.lookup(*nb.ID)
		if ok && other.Type != roadnet.Segment {
			c.emit(RuleSegmentAdjacency, n.ID, slot,
				"Node %d should have only segment type neighbour but the %dth is not", n.ID, slot)
		}
	}
}

func (c *checker) typeDegree(n *NodeDesc) {
	populated := 0
	for _, nb := range n.Neighbours {
		if nb.Present() {
			populated++
		}
	}

	switch {
	case n.Type == roadnet.DeadEnd && populated != 1:
		c.emit(RuleTypeDegree, n.ID, -1,
			"Error in node %d: %s should have only 1 neighbour, %d was found", n.ID, n.Type, populated)
	case slices.Contains([]roadnet.NodeType{roadnet.Segment, roadnet.LaneSwitch}, n.Type) && populated != 2:
		c.emit(RuleTypeDegree, n.ID, -1,
			"Error in node %d: %s should have 2 neighbours, %d was found", n.ID, n.Type, populated)
	}
}
