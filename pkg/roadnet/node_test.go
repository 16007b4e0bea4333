package roadnet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/lanegraph/pkg/errors"
)

func TestNew(t *testing.T) {
	n := New(7, Crossing, "X", DefaultDirection)

	assert.Equal(t, 7, n.ID)
	assert.Equal(t, Crossing, n.Type)
	assert.Equal(t, "X", n.Name)
	assert.Equal(t, 1, n.Direction)
	assert.True(t, n.Enabled)
	assert.Equal(t, 0, n.SlotCount())
	assert.Empty(t, n.Slots())
	assert.Equal(t, 0, n.CountPopulated())
}

func TestNewAcceptsAnything(t *testing.T) {
	n := New(-3, NodeType("roundabout"), "too long", 0)
	assert.Equal(t, NodeType("roundabout"), n.Type)
	assert.False(t, n.Type.Valid())
}

func TestSetNeighbourGrowsSlotCount(t *testing.T) {
	a := New(1, Crossing, "A", DefaultDirection)
	b := New(2, Segment, "B", DefaultDirection)

	require.NoError(t, a.SetNeighbour(2, b, 4.5))
	assert.Equal(t, 3, a.SlotCount())

	slots := a.Slots()
	require.Len(t, slots, 3)
	for _, i := range []int{0, 1} {
		assert.True(t, slots[i].Empty(), "slot %d should be empty", i)
		assert.True(t, math.IsInf(slots[i].Weight, 1), "slot %d weight = %v, want +Inf", i, slots[i].Weight)
	}
	assert.Same(t, b, slots[2].Node)
	assert.Equal(t, 4.5, slots[2].Weight)

	// Lower slots do not shrink the count.
	require.NoError(t, a.SetNeighbour(0, b, 1))
	assert.Equal(t, 3, a.SlotCount())
}

func TestSetNeighbourAcceptsOddValues(t *testing.T) {
	a := New(1, Crossing, "A", DefaultDirection)
	b := New(2, Segment, "B", DefaultDirection)

	require.NoError(t, a.SetNeighbour(0, b, -1))
	require.NoError(t, a.SetNeighbour(1, b, 0))
	assert.Equal(t, 2, a.CountPopulated())
	assert.Equal(t, -1.0, a.Neighbour(0).Weight)
}

func TestSetNeighbourOutOfRange(t *testing.T) {
	a := New(1, Crossing, "A", DefaultDirection)

	for _, idx := range []int{-1, MaxSlots, 42} {
		err := a.SetNeighbour(idx, nil, 1)
		require.Error(t, err, "slot %d", idx)
		assert.True(t, errors.Is(err, errors.ErrCodeSlotOutOfRange))
	}
	assert.Equal(t, 0, a.SlotCount())
}

func TestSetNeighbourNilTarget(t *testing.T) {
	a := New(1, DeadEnd, "", DefaultDirection)
	require.NoError(t, a.SetNeighbour(5, nil, math.Inf(1)))

	assert.Equal(t, MaxSlots, a.SlotCount())
	assert.Equal(t, 0, a.CountPopulated())
}

func TestCountPopulated(t *testing.T) {
	a := New(1, Crossing, "A", DefaultDirection)
	b := New(2, Segment, "B", DefaultDirection)
	c := New(3, Segment, "C", DefaultDirection)

	// [B, none, C, none, none, none]
	require.NoError(t, a.SetNeighbour(0, b, 1))
	require.NoError(t, a.SetNeighbour(1, nil, math.Inf(1)))
	require.NoError(t, a.SetNeighbour(2, c, 1))
	for i := 3; i < MaxSlots; i++ {
		require.NoError(t, a.SetNeighbour(i, nil, math.Inf(1)))
	}

	assert.Equal(t, 2, a.CountPopulated())
	assert.Equal(t, MaxSlots, a.SlotCount())
}

func TestNeighbourBeyondSlotCount(t *testing.T) {
	a := New(1, Crossing, "A", DefaultDirection)
	s := a.Neighbour(4)
	assert.True(t, s.Empty())
	assert.True(t, math.IsInf(s.Weight, 1))

	assert.True(t, a.Neighbour(-1).Empty())
	assert.True(t, a.Neighbour(MaxSlots).Empty())
}

func TestSlotsIsACopy(t *testing.T) {
	a := New(1, Crossing, "A", DefaultDirection)
	b := New(2, Segment, "B", DefaultDirection)
	require.NoError(t, a.SetNeighbour(0, b, 2))

	slots := a.Slots()
	slots[0] = EmptySlot()

	assert.Same(t, b, a.Neighbour(0).Node)
}

func TestNodeTypes(t *testing.T) {
	tests := []struct {
		typ         NodeType
		valid       bool
		segmentOnly bool
	}{
		{Crossing, true, true},
		{Segment, true, false},
		{LaneSwitch, true, true},
		{DeadEnd, true, true},
		{NodeType("bridge"), false, false},
		{NodeType(""), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.typ.Valid())
			assert.Equal(t, tt.segmentOnly, tt.typ.SegmentOnly())
		})
	}
}

func TestNodeString(t *testing.T) {
	a := New(1, Crossing, "A", DefaultDirection)
	b := New(2, Segment, "B", DefaultDirection)
	require.NoError(t, a.SetNeighbour(0, b, 1))
	require.NoError(t, a.SetNeighbour(3, b, 1))

	assert.Equal(t, `1(crossing "A") [2 - - 2 - -]`, a.String())
}
