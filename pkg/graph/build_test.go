package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/lanegraph/pkg/errors"
	"github.com/matzehuels/lanegraph/pkg/roadnet"
)

func TestBuildScenario(t *testing.T) {
	g, err := Build(scenario())
	require.NoError(t, err)
	require.Len(t, g, 2)

	a, b := g[0], g[1]
	assert.Same(t, b, a.Neighbour(0).Node)
	assert.Equal(t, 1.0, a.Neighbour(0).Weight)
	assert.Same(t, a, b.Neighbour(0).Node)
	assert.Equal(t, 1.0, b.Neighbour(0).Weight)

	for _, n := range g {
		assert.Equal(t, roadnet.MaxSlots, n.SlotCount())
		assert.Equal(t, 1, n.CountPopulated())
		assert.Equal(t, roadnet.DefaultDirection, n.Direction)
		assert.True(t, n.Enabled)
	}
}

func TestBuildPreservesOrder(t *testing.T) {
	ids := []int{5, 3, 9, 1, 7}
	desc := &Description{}
	for _, id := range ids {
		desc.Nodes = append(desc.Nodes, NodeDesc{ID: id, Type: roadnet.Segment, Neighbours: pad()})
	}

	g, err := Build(desc)
	require.NoError(t, err)
	require.Len(t, g, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, g[i].ID, "node %d", i)
	}
}

func TestBuildWiring(t *testing.T) {
	// A's slot 2 names B with weight 4.5; B is a forward reference.
	desc := &Description{Nodes: []NodeDesc{
		{ID: 10, Type: roadnet.Crossing, Name: "A", Neighbours: pad(Empty(), Empty(), To(20, 4.5))},
		{ID: 20, Type: roadnet.Segment, Name: "B", Neighbours: pad(Empty(), Empty(), Empty(), To(10, 4.5))},
	}}

	g, err := Build(desc)
	require.NoError(t, err)

	a, b := g[0], g[1]
	assert.Same(t, b, a.Neighbour(2).Node)
	assert.Equal(t, 4.5, a.Neighbour(2).Weight)

	for _, i := range []int{0, 1, 3, 4, 5} {
		s := a.Neighbour(i)
		assert.Nil(t, s.Node, "slot %d", i)
		assert.True(t, math.IsInf(s.Weight, 1), "slot %d weight = %v, want +Inf", i, s.Weight)
	}
}

func TestBuildBlankName(t *testing.T) {
	desc := &Description{Nodes: []NodeDesc{
		{ID: 1, Type: roadnet.Segment, Name: "", Neighbours: pad()},
		{ID: 2, Type: roadnet.Segment, Name: "Q", Neighbours: pad()},
	}}

	g, err := Build(desc)
	require.NoError(t, err)
	assert.Equal(t, roadnet.BlankName, g[0].Name)
	assert.Equal(t, "Q", g[1].Name)
}

func TestBuildShortNeighbourList(t *testing.T) {
	desc := &Description{Nodes: []NodeDesc{
		{ID: 1, Type: roadnet.DeadEnd, Neighbours: []Neighbour{Empty(), To(1, 2)}},
	}}

	g, err := Build(desc)
	require.NoError(t, err)
	assert.Equal(t, 2, g[0].SlotCount())
	assert.Same(t, g[0], g[0].Neighbour(1).Node)
}

func TestBuildDoesNotValidate(t *testing.T) {
	desc := &Description{Nodes: []NodeDesc{
		{ID: 1, Type: "bridge", Name: "long", Neighbours: []Neighbour{To(2, -3)}},
		{ID: 2, Type: roadnet.Crossing, Neighbours: nil},
	}}

	g, err := Build(desc)
	require.NoError(t, err)
	assert.Equal(t, roadnet.NodeType("bridge"), g[0].Type)
	assert.Equal(t, -3.0, g[0].Neighbour(0).Weight)
	assert.Equal(t, 0, g[1].SlotCount())
}

func TestBuildDuplicateIDsFirstMatch(t *testing.T) {
	desc := &Description{Nodes: []NodeDesc{
		{ID: 1, Type: roadnet.Crossing, Neighbours: pad(To(2, 1))},
		{ID: 2, Type: roadnet.Segment, Name: "x", Neighbours: pad(To(1, 1))},
		{ID: 2, Type: roadnet.Segment, Name: "y", Neighbours: pad()},
	}}

	g, err := Build(desc)
	require.NoError(t, err)
	assert.Same(t, g[1], g[0].Neighbour(0).Node)
}

func TestBuildDanglingNeighbour(t *testing.T) {
	desc := scenario()
	desc.Nodes[1].Neighbours[4] = To(99, 1)

	g, err := Build(desc)
	require.Error(t, err)
	assert.Nil(t, g)
	assert.True(t, errors.Is(err, errors.ErrCodeDanglingNeighbour))
	assert.Contains(t, err.Error(), "node 2 slot 4: no node with id 99")
}

func TestBuildTooManySlots(t *testing.T) {
	desc := &Description{Nodes: []NodeDesc{
		{ID: 1, Type: roadnet.Segment, Neighbours: append(pad(), Empty())},
	}}

	_, err := Build(desc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeSlotOutOfRange))
}

func TestBuildNil(t *testing.T) {
	g, err := Build(nil)
	require.NoError(t, err)
	assert.Empty(t, g)
}

func TestDescribeRoundTrip(t *testing.T) {
	in := scenario()
	in.Nodes[1].Name = ""

	g, err := Build(in)
	require.NoError(t, err)

	out := Describe(g)
	require.Len(t, out.Nodes, 2)
	assert.Equal(t, "", out.Nodes[1].Name)
	assert.Empty(t, Check(out))

	for i := range in.Nodes {
		assert.Equal(t, in.Nodes[i].ID, out.Nodes[i].ID)
		assert.Equal(t, in.Nodes[i].Type, out.Nodes[i].Type)
		require.Len(t, out.Nodes[i].Neighbours, roadnet.MaxSlots)
		for s, nb := range in.Nodes[i].Neighbours {
			got := out.Nodes[i].Neighbours[s]
			assert.Equal(t, nb.Present(), got.Present(), "node %d slot %d", i, s)
			if nb.Present() {
				assert.Equal(t, *nb.ID, *got.ID)
			}
			assert.Equal(t, nb.Weight, got.Weight)
		}
	}
}
