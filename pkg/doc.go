// Package pkg holds the lanegraph libraries.
//
// # Overview
//
// Lanegraph turns a road network description (a flat list of crossings,
// segments, lane switches and dead ends, each with up to six weighted
// neighbour slots) into a linked node graph, after checking it for
// structural mistakes:
//
//  1. [io] - Read and write descriptions as JSON or YAML
//  2. [graph] - Description types, the rule-based validator, and the builder
//  3. [roadnet] - The built graph: nodes with fixed neighbour slots
//  4. [pipeline] - Validate then build, with cached validation reports
//  5. [cache] - File, Redis and no-op report caches
//
// # Data flow
//
//	description file (.json / .yaml)
//	         ↓
//	    [io] package (decode)
//	         ↓
//	    [graph] package (validate → diagnostics, build → nodes)
//	         ↓
//	    [roadnet] package (linked graph)
//
// # Quick Start
//
//	desc, err := io.ImportFile("city.json")
//	if err != nil {
//	    return err
//	}
//	for _, d := range graph.Check(desc) {
//	    fmt.Println(d.Message)
//	}
//	g, err := graph.Build(desc)
package pkg
