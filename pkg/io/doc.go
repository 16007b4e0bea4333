// Package io reads and writes lane network descriptions as JSON or YAML.
//
// # Formats
//
// JSON is the primary format:
//
//	{
//	  "nodes": [
//	    {"id": 1, "type": "crossing", "name": "A",
//	     "neighbours": [[2, 1.0], [null, "inf"], [null, "inf"], [null, "inf"], [null, "inf"], [null, "inf"]]}
//	  ]
//	}
//
// YAML carries the same structure, with flow-style neighbour pairs:
//
//	nodes:
//	  - id: 1
//	    type: crossing
//	    name: A
//	    neighbours:
//	      - [2, 1]
//	      - [null, .inf]
//
// Infinite weights may be written as "inf", "Infinity", .inf or null.
// Files produced by serializers that emit a bare Infinity token are not
// valid JSON; [ReadJSON] falls back to the YAML decoder for them.
//
// # Import
//
// [ImportFile] picks the decoder from the extension (.json, .yaml, .yml):
//
//	desc, err := io.ImportFile("network.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Nothing here validates a description. Run [graph.Check] on the result.
//
// # Export
//
// [ExportFile], [WriteJSON] and [WriteYAML] write a description back out;
// combine with [graph.Describe] to export a built graph.
package io
