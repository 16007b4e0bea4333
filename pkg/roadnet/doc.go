// Package roadnet provides the in-memory node graph of a lane network.
//
// # Overview
//
// A lane network is a directed, weighted graph of four kinds of node:
//
//   - [Crossing]: an intersection
//   - [Segment]: a stretch of road between features
//   - [LaneSwitch]: a lateral lane-change point
//   - [DeadEnd]: a terminal node
//
// Every [Node] carries six neighbour slots. A slot is either empty (no
// neighbour, weight +Inf) or points at another node of the same graph with a
// finite weight. Slot positions are directional, so a node may have gaps:
// slots 0 and 3 populated, the rest empty.
//
// # Slot Count
//
// Storage is a fixed array of [MaxSlots] slots, but a node also tracks how
// many slots have been assigned so far. A freshly created node has a slot
// count of 0; [Node.SetNeighbour] on slot k raises it to k+1. Builders that
// assign every slot of a well-formed description end up with exactly six.
// Assigning a slot outside [0, MaxSlots) is an error rather than a silent
// overflow.
//
// # Graph
//
// A [Graph] is simply the ordered list of nodes, in construction order.
// There is no index: [Graph.FindByID] is a linear scan that returns every
// match, which keeps duplicate ids observable. Callers that need repeated
// lookups on large networks should build their own map once.
//
// # Concurrency
//
// Nodes are not safe for concurrent mutation. Reading a graph from many
// goroutines is fine as long as nobody calls [Node.SetNeighbour] meanwhile.
package roadnet
