package roadnet

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/lanegraph/pkg/errors"
)

// MaxSlots is the number of neighbour slots on every node.
const MaxSlots = 6

// DefaultDirection is the orientation marker given to built nodes.
// The core carries it but does not interpret it.
const DefaultDirection = 1

// BlankName is the display name used when a description leaves the name empty.
const BlankName = " "

// NodeType classifies a node. Values outside the four constants below can
// still be held (they come straight from input) and are reported by
// validation, never by construction.
type NodeType string

const (
	Crossing   NodeType = "crossing"
	Segment    NodeType = "segment"
	LaneSwitch NodeType = "lane_switch"
	DeadEnd    NodeType = "dead_end"
)

// NodeTypes lists the recognized node types in declaration order.
var NodeTypes = []NodeType{Crossing, Segment, LaneSwitch, DeadEnd}

// Valid reports whether t is one of the four recognized types.
func (t NodeType) Valid() bool {
	switch t {
	case Crossing, Segment, LaneSwitch, DeadEnd:
		return true
	}
	return false
}

// SegmentOnly reports whether nodes of this type may only neighbour segments.
func (t NodeType) SegmentOnly() bool {
	return t == Crossing || t == DeadEnd || t == LaneSwitch
}

func (t NodeType) String() string { return string(t) }

// Slot is one directional adjacency of a node.
type Slot struct {
	Node   *Node   // Neighbour, nil when the slot is empty
	Weight float64 // +Inf for empty slots
}

// EmptySlot returns the slot value used for "no neighbour".
func EmptySlot() Slot { return Slot{Weight: math.Inf(1)} }

// Empty reports whether the slot has no neighbour.
func (s Slot) Empty() bool { return s.Node == nil }

// Node is a vertex of the lane network.
//
// The zero value has zeroed slots rather than empty ones; use [New].
type Node struct {
	ID        int
	Type      NodeType
	Name      string
	Direction int
	// Enabled is a hook for collaborators such as simulators; the core
	// never reads it.
	Enabled bool

	slots [MaxSlots]Slot
	count int
}

// New creates a node with all slots empty and a slot count of 0.
// No validation is performed on any argument.
func New(id int, typ NodeType, name string, direction int) *Node {
	n := &Node{
		ID:        id,
		Type:      typ,
		Name:      name,
		Direction: direction,
		Enabled:   true,
	}
	for i := range n.slots {
		n.slots[i] = EmptySlot()
	}
	return n
}

// SetNeighbour assigns target and weight to slot idx, raising the slot count
// to idx+1 if it is lower. Slots skipped over stay empty.
//
// Negative or zero weights and targets already referenced elsewhere are
// accepted. A nil target stores an empty neighbour with the given weight.
// Returns an error coded [errors.ErrCodeSlotOutOfRange] when idx is outside
// [0, MaxSlots).
func (n *Node) SetNeighbour(idx int, target *Node, weight float64) error {
	if idx < 0 || idx >= MaxSlots {
		return errors.New(errors.ErrCodeSlotOutOfRange,
			"node %d: slot %d outside [0, %d)", n.ID, idx, MaxSlots)
	}
	if idx >= n.count {
		n.count = idx + 1
	}
	n.slots[idx] = Slot{Node: target, Weight: weight}
	return nil
}

// Neighbour returns slot idx. Slots beyond the slot count, or outside the
// array, read as empty.
func (n *Node) Neighbour(idx int) Slot {
	if idx < 0 || idx >= n.count {
		return EmptySlot()
	}
	return n.slots[idx]
}

// Slots returns a copy of the assigned slots, length [Node.SlotCount].
func (n *Node) Slots() []Slot {
	out := make([]Slot, n.count)
	copy(out, n.slots[:n.count])
	return out
}

// SlotCount returns how many slots have been assigned (highest index + 1).
func (n *Node) SlotCount() int { return n.count }

// CountPopulated returns the number of slots that hold a neighbour.
func (n *Node) CountPopulated() int {
	populated := 0
	for _, s := range n.slots[:n.count] {
		if !s.Empty() {
			populated++
		}
	}
	return populated
}

// String renders the node and its neighbour ids, e.g. "1(crossing 'A') [2 - - - - -]".
func (n *Node) String() string {
	parts := make([]string, MaxSlots)
	for i := range parts {
		if s := n.Neighbour(i); !s.Empty() {
			parts[i] = fmt.Sprint(s.Node.ID)
		} else {
			parts[i] = "-"
		}
	}
	return fmt.Sprintf("%d(%s %q) [%s]", n.ID, n.Type, n.Name, strings.Join(parts, " "))
}
