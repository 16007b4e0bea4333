package graph_test

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/lanegraph/pkg/graph"
)

const twoNodes = `{
  "nodes": [
    {"id": 1, "type": "crossing", "name": "A",
     "neighbours": [[2, 1.0], [null, "inf"], [null, "inf"], [null, "inf"], [null, "inf"], [null, "inf"]]},
    {"id": 2, "type": "segment", "name": "B",
     "neighbours": [[1, 1.0], [null, "inf"], [null, "inf"], [null, "inf"], [null, "inf"], [null, "inf"]]}
  ]
}`

func ExampleBuild() {
	var desc graph.Description
	if err := json.Unmarshal([]byte(twoNodes), &desc); err != nil {
		panic(err)
	}

	fmt.Println("Diagnostics:", len(graph.Check(&desc)))

	g, err := graph.Build(&desc)
	if err != nil {
		panic(err)
	}
	for _, n := range g {
		fmt.Println(n)
	}
	// Output:
	// Diagnostics: 0
	// 1(crossing "A") [2 - - - - -]
	// 2(segment "B") [1 - - - - -]
}

func ExampleValidator_Check() {
	desc := &graph.Description{Nodes: []graph.NodeDesc{
		{ID: 1, Type: "crossing", Name: "AB", Neighbours: []graph.Neighbour{graph.To(2, 0)}},
		{ID: 2, Type: "dead_end", Neighbours: []graph.Neighbour{graph.To(1, 1)}},
	}}

	v := graph.NewValidator(graph.WithRule(graph.RuleSlotCount, false))
	for _, msg := range graph.Messages(v.Check(desc)) {
		fmt.Println(msg)
	}
	// Output:
	// Error in node 1: weight to neighbour 0 is non positive: 0.0
	// Error in node 1: name can only be 1 character long
	// Node 1 should have only segment type neighbour but the 0th is not
	// Node 2 should have only segment type neighbour but the 0th is not
}
