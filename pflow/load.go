package pflow

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type document struct {
	Schema string   `yaml:"schema"`
	Roles  []string `yaml:"roles"`
	Places []struct {
		Label   string `yaml:"label"`
		Initial int64  `yaml:"initial"`
	} `yaml:"places"`
	Transitions []struct {
		Label string `yaml:"label"`
		Role  string `yaml:"role"`
	} `yaml:"transitions"`
	Arcs []struct {
		Source string `yaml:"source"`
		Target string `yaml:"target"`
		Weight int64  `yaml:"weight"`
	} `yaml:"arcs"`
}

// Load reads a YAML model definition and returns it frozen
func Load(r io.Reader) (*Net, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	if doc.Schema == "" {
		return nil, fmt.Errorf("model has no schema")
	}

	net := New(doc.Schema)
	for _, label := range doc.Roles {
		if _, err := net.Role(label); err != nil {
			return nil, err
		}
	}

	for _, p := range doc.Places {
		if _, err := net.Place(p.Label, p.Initial); err != nil {
			return nil, err
		}
	}

	for _, t := range doc.Transitions {
		var role *Role
		for _, candidate := range net.Roles {
			if candidate.label == t.Role {
				role = candidate
			}
		}
		if _, err := net.Transition(t.Label, role); err != nil {
			return nil, err
		}
	}

	for _, a := range doc.Arcs {
		source, ok := net.Lookup(a.Source)
		if !ok {
			return nil, fmt.Errorf("%w: unknown source %s", ErrInvalidArc, a.Source)
		}
		target, ok := net.Lookup(a.Target)
		if !ok {
			return nil, fmt.Errorf("%w: unknown target %s", ErrInvalidArc, a.Target)
		}
		if _, err := net.Arc(source, target, a.Weight); err != nil {
			return nil, err
		}
	}

	net.Freeze()
	return net, nil
}
