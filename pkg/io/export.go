package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/lanegraph/pkg/graph"
)

// WriteJSON encodes desc as indented JSON and writes it to w.
// Infinite weights are written as the string "inf".
func WriteJSON(desc *graph.Description, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(desc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes desc as YAML and writes it to w. Neighbour slots are
// written in flow style, e.g. [2, 1.5] and [null, .inf].
func WriteYAML(desc *graph.Description, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(desc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Write encodes desc to w in the given format.
func Write(desc *graph.Description, w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(desc, w)
	case FormatYAML:
		return WriteYAML(desc, w)
	}
	return fmt.Errorf("unsupported format %q", format)
}

// ExportFile writes desc to path, choosing the encoder from its extension.
func ExportFile(desc *graph.Description, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(desc, f, format)
}
