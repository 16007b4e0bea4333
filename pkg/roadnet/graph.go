package roadnet

// Graph is the ordered list of nodes of a lane network, in construction order.
type Graph []*Node

// FindByID returns every node whose id equals id, in graph order.
// Returns nil when nothing matches. O(n) per call.
func (g Graph) FindByID(id int) []*Node {
	var found []*Node
	for _, n := range g {
		if n.ID == id {
			found = append(found, n)
		}
	}
	return found
}

// First returns the first node with the given id.
func (g Graph) First(id int) (*Node, bool) {
	for _, n := range g {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// IDs returns the node ids in graph order.
func (g Graph) IDs() []int {
	ids := make([]int, len(g))
	for i, n := range g {
		ids[i] = n.ID
	}
	return ids
}

// LinkCount returns the total number of populated slots across the graph.
func (g Graph) LinkCount() int {
	total := 0
	for _, n := range g {
		total += n.CountPopulated()
	}
	return total
}

// CountByType returns how many nodes of each type the graph holds.
// Unrecognized types are counted under their own key.
func (g Graph) CountByType() map[NodeType]int {
	counts := make(map[NodeType]int)
	for _, n := range g {
		counts[n.Type]++
	}
	return counts
}
