package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/lanegraph/pkg/errors"
	"github.com/matzehuels/lanegraph/pkg/graph"
)

// Format is a description file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format from the file extension:
// .json, .yaml or .yml (case-insensitive).
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"unsupported file extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
}

// ReadJSON decodes a JSON description from r.
//
// Bare Infinity, -Infinity and NaN weights outside strings are accepted and
// read as "inf", "-inf" and "nan"; anything else must be strict JSON.
// Empty input is an error. ReadJSON does not validate the description; see
// [graph.Check].
func ReadJSON(r io.Reader) (*graph.Description, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty input")
	}

	var desc graph.Description
	if err := json.Unmarshal(quoteNonFinite(data), &desc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode")
	}
	return &desc, nil
}

// nonFinite maps the literals JavaScript-style serializers emit to strings
// [graph.ParseWeight] understands.
var nonFinite = []struct {
	token, quoted string
}{
	{"-Infinity", `"-inf"`},
	{"Infinity", `"inf"`},
	{"NaN", `"nan"`},
}

// quoteNonFinite rewrites bare non-finite literals that appear outside JSON
// strings. Other input is returned unchanged, so every other syntax error
// still reaches the decoder.
func quoteNonFinite(data []byte) []byte {
	var out []byte
	inString, escaped := false, false
	last := 0
	for i := 0; i < len(data); i++ {
		ch := data[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		if ch == '"' {
			inString = true
			continue
		}
		for _, nf := range nonFinite {
			if !bytes.HasPrefix(data[i:], []byte(nf.token)) {
				continue
			}
			end := i + len(nf.token)
			if end < len(data) && isIdentByte(data[end]) {
				break
			}
			out = append(out, data[last:i]...)
			out = append(out, nf.quoted...)
			last = end
			i = end - 1
			break
		}
	}
	if out == nil {
		return data
	}
	return append(out, data[last:]...)
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// ReadYAML decodes a YAML description from r. Empty input is an error.
func ReadYAML(r io.Reader) (*graph.Description, error) {
	var desc graph.Description
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&desc); err != nil {
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeInvalidInput, "empty input")
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode")
	}
	return &desc, nil
}

// Read decodes a description from r in the given format.
func Read(r io.Reader, format Format) (*graph.Description, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatYAML:
		return ReadYAML(r)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
}

// ReadBytes decodes data in the given format.
func ReadBytes(data []byte, format Format) (*graph.Description, error) {
	return Read(bytes.NewReader(data), format)
}

// ImportFile reads the description file at path, choosing the decoder from
// its extension. A missing file yields [errors.ErrCodeFileNotFound].
func ImportFile(path string) (*graph.Description, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	desc, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return desc, nil
}
