package graph

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNeighbourUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		present bool
		id      int
		weight  float64
	}{
		{"present", `[2, 1.5]`, true, 2, 1.5},
		{"integer weight", `[3, 4]`, true, 3, 4},
		{"empty string inf", `[null, "inf"]`, false, 0, math.Inf(1)},
		{"empty null weight", `[null, null]`, false, 0, math.Inf(1)},
		{"infinity spelling", `[null, "Infinity"]`, false, 0, math.Inf(1)},
		{"yaml spelling", `[null, ".inf"]`, false, 0, math.Inf(1)},
		{"negative inf", `[4, "-inf"]`, true, 4, math.Inf(-1)},
		{"numeric string", `[4, "2.25"]`, true, 4, 2.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Neighbour
			require.NoError(t, json.Unmarshal([]byte(tt.in), &n))
			assert.Equal(t, tt.present, n.Present())
			if tt.present {
				assert.Equal(t, tt.id, *n.ID)
			}
			assert.Equal(t, tt.weight, n.Weight)
		})
	}
}

func TestNeighbourUnmarshalJSONErrors(t *testing.T) {
	for _, in := range []string{`[1]`, `[1, 2, 3]`, `{"id": 1}`, `[1, "heavy"]`, `["x", 1]`, `[1, true]`} {
		t.Run(in, func(t *testing.T) {
			var n Neighbour
			assert.Error(t, json.Unmarshal([]byte(in), &n))
		})
	}
}

func TestNeighbourMarshalJSON(t *testing.T) {
	tests := []struct {
		in   Neighbour
		want string
	}{
		{To(2, 1.5), `[2,1.5]`},
		{Empty(), `[null,"inf"]`},
		{Neighbour{Weight: math.Inf(-1)}, `[null,"-inf"]`},
	}

	for _, tt := range tests {
		got, err := json.Marshal(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(got))
	}
}

func TestNeighbourNaN(t *testing.T) {
	var n Neighbour
	require.NoError(t, json.Unmarshal([]byte(`[1, "nan"]`), &n))
	assert.True(t, math.IsNaN(n.Weight))

	got, err := json.Marshal(n)
	require.NoError(t, err)
	assert.Equal(t, `[1,"nan"]`, string(got))
}

func TestNeighbourYAML(t *testing.T) {
	in := `
nodes:
  - id: 1
    type: crossing
    name: A
    neighbours:
      - [2, 1.0]
      - [null, .inf]
      - [null, null]
      - [null, inf]
      - [null, "Infinity"]
      - [~, .inf]
`
	var desc Description
	require.NoError(t, yaml.Unmarshal([]byte(in), &desc))
	require.Len(t, desc.Nodes, 1)

	nbs := desc.Nodes[0].Neighbours
	require.Len(t, nbs, 6)
	assert.Equal(t, 2, *nbs[0].ID)
	assert.Equal(t, 1.0, nbs[0].Weight)
	for i, nb := range nbs[1:] {
		assert.False(t, nb.Present(), "slot %d", i+1)
		assert.True(t, math.IsInf(nb.Weight, 1), "slot %d weight = %v", i+1, nb.Weight)
	}
}

func TestNeighbourYAMLErrors(t *testing.T) {
	for _, in := range []string{`[1]`, `{id: 1}`, `[1, heavy]`, `[x, 1]`} {
		t.Run(in, func(t *testing.T) {
			var n Neighbour
			assert.Error(t, yaml.Unmarshal([]byte(in), &n))
		})
	}
}

func TestNeighbourMarshalYAML(t *testing.T) {
	desc := &Description{Nodes: []NodeDesc{
		{ID: 1, Type: "segment", Name: "", Neighbours: []Neighbour{To(2, 1.5), Empty()}},
	}}

	out, err := yaml.Marshal(desc)
	require.NoError(t, err)
	s := string(out)
	assert.True(t, strings.Contains(s, "- [2, 1.5]"), s)
	assert.True(t, strings.Contains(s, "- [null, .inf]"), s)

	var back Description
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, 2, *back.Nodes[0].Neighbours[0].ID)
	assert.True(t, math.IsInf(back.Nodes[0].Neighbours[1].Weight, 1))
}

func TestParseWeight(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		err  bool
	}{
		{"1.5", 1.5, false},
		{" 3 ", 3, false},
		{"inf", math.Inf(1), false},
		{"+Inf", math.Inf(1), false},
		{"INFINITY", math.Inf(1), false},
		{".inf", math.Inf(1), false},
		{"-.Inf", math.Inf(-1), false},
		{"-inf", math.Inf(-1), false},
		{"heavy", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeight(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescriptionFind(t *testing.T) {
	desc := &Description{Nodes: []NodeDesc{
		{ID: 1, Name: "a"},
		{ID: 2, Name: "b"},
		{ID: 1, Name: "c"},
	}}

	nd, ok := desc.Find(1)
	require.True(t, ok)
	assert.Equal(t, "a", nd.Name)

	_, ok = desc.Find(3)
	assert.False(t, ok)

	var nilDesc *Description
	_, ok = nilDesc.Find(1)
	assert.False(t, ok)
}
