package graph

import (
	"math"

	"github.com/matzehuels/lanegraph/pkg/errors"
	"github.com/matzehuels/lanegraph/pkg/roadnet"
)

// Build materializes desc into a linked graph in two passes: first one node
// per description, in order, then the neighbour slots. Forward references
// are therefore fine.
//
// Build trusts its input. It does not run the [Validator]; callers that
// cannot trust desc should call [Check] first. The only failures are
// structural:
//   - a neighbour id that matches no node ([errors.ErrCodeDanglingNeighbour])
//   - more than [roadnet.MaxSlots] slots ([errors.ErrCodeSlotOutOfRange])
//
// Duplicate ids resolve to the first node carrying the id.
func Build(desc *Description) (roadnet.Graph, error) {
	if desc == nil {
		return roadnet.Graph{}, nil
	}

	g := make(roadnet.Graph, len(desc.Nodes))
	for i, nd := range desc.Nodes {
		name := nd.Name
		if name == "" {
			name = roadnet.BlankName
		}
		g[i] = roadnet.New(nd.ID, nd.Type, name, roadnet.DefaultDirection)
	}

	byID := make(map[int]*roadnet.Node, len(g))
	for _, n := range g {
		if _, seen := byID[n.ID]; !seen {
			byID[n.ID] = n
		}
	}

	for i, n := range g {
		for slot, nb := range desc.Nodes[i].Neighbours {
			if !nb.Present() {
				if err := n.SetNeighbour(slot, nil, math.Inf(1)); err != nil {
					return nil, err
				}
				continue
			}
			target, ok := byID[*nb.ID]
			if !ok {
				return nil, errors.New(errors.ErrCodeDanglingNeighbour,
					"node %d slot %d: no node with id %d", n.ID, slot, *nb.ID)
			}
			if err := n.SetNeighbour(slot, target, nb.Weight); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// Describe converts a built graph back into its raw description. Slots past
// a node's slot count are not written; a blank name becomes "".
func Describe(g roadnet.Graph) *Description {
	desc := &Description{Nodes: make([]NodeDesc, 0, len(g))}
	for _, n := range g {
		name := n.Name
		if name == roadnet.BlankName {
			name = ""
		}
		nd := NodeDesc{
			ID:         n.ID,
			Type:       n.Type,
			Name:       name,
			Neighbours: make([]Neighbour, 0, n.SlotCount()),
		}
		for _, s := range n.Slots() {
			if s.Empty() {
				nd.Neighbours = append(nd.Neighbours, Neighbour{Weight: s.Weight})
				continue
			}
			nd.Neighbours = append(nd.Neighbours, To(s.Node.ID, s.Weight))
		}
		desc.Nodes = append(desc.Nodes, nd)
	}
	return desc
}
