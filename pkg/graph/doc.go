// Package graph holds the raw, serialized form of a lane network and the two
// operations over it: validation and building.
//
// # Description
//
// A [Description] is what arrives on the wire:
//
//	{
//	  "nodes": [
//	    {"id": 1, "type": "crossing", "name": "A",
//	     "neighbours": [[2, 1.0], [null, "inf"], [null, "inf"], [null, "inf"], [null, "inf"], [null, "inf"]]}
//	  ]
//	}
//
// Each neighbour slot is a [Neighbour]: empty (nil id) or present (id and
// weight). Empty slots conventionally carry an infinite weight.
//
// # Validation
//
// [Check] and [Validator.Check] inspect a description and return every
// problem as a [Diagnostic]. They never fail and never build. Each check is a
// [Rule]; [RuleWeightSymmetry] and [RuleTypeDegree] are disabled by default
// and can be switched on with [WithRule].
//
//	diags := graph.NewValidator(graph.WithRule(graph.RuleTypeDegree, true)).Check(desc)
//	for _, msg := range graph.Messages(diags) {
//	    fmt.Println(msg)
//	}
//
// # Building
//
// [Build] turns a description into a [roadnet.Graph]. It does not validate;
// callers decide whether diagnostics are fatal before building.
// [Describe] goes the other way.
package graph
