package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"sveltefmt/internal/diag"
)

func decodeYAML(path string, data []byte) (File, error) {
	// keys first, so unknown ones get their own code
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return File{}, &Error{Path: path, code: diag.CfgInvalid, Err: fmt.Errorf("failed to parse YAML: %w", err)}
	}
	var unknown []string
	for k := range raw {
		if !knownKeys[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		return File{}, unknownKeys(path, unknown)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, &Error{Path: path, code: diag.CfgInvalid, Err: fmt.Errorf("failed to parse YAML: %w", err)}
	}
	return f, nil
}
