// Package tools holds the static catalogue of callable DeployHQ tools.
//
// Each Descriptor owns one JSON schema: "tools/list" publishes it and
// incoming arguments are validated against it.
//
// A Registry is immutable after construction and safe for concurrent use.
package tools

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Descriptor describes one tool.
type Descriptor struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema

	// Mutating tools change upstream state and are subject to the read-only gate.
	Mutating bool

	resolved *jsonschema.Resolved
}

// Validate checks raw arguments against the tool's schema. Empty or null
// input is treated as an empty object.
func (d *Descriptor) Validate(raw json.RawMessage) error {
	instance, err := decodeInstance(normalizeArgs(raw))
	if err != nil {
		return &ValidationError{Tool: d.Name, Detail: err.Error(), Err: err}
	}
	if err := d.resolved.Validate(instance); err != nil {
		return &ValidationError{Tool: d.Name, Detail: err.Error(), Err: err}
	}
	return nil
}

// Registry is an ordered, read-only set of tool descriptors.
type Registry struct {
	tools  []*Descriptor
	byName map[string]*Descriptor
}

// NewRegistry resolves every schema and indexes the descriptors by name.
func NewRegistry(descriptors ...*Descriptor) (*Registry, error) {
	r := &Registry{
		tools:  make([]*Descriptor, 0, len(descriptors)),
		byName: make(map[string]*Descriptor, len(descriptors)),
	}

	for _, d := range descriptors {
		if _, exists := r.byName[d.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTool, d.Name)
		}
		if d.Schema == nil || d.Schema.Type != "object" {
			return nil, fmt.Errorf("%w: %s must have an object input schema", ErrInvalidSchema, d.Name)
		}
		resolved, err := d.Schema.Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSchema, d.Name, err)
		}
		d.resolved = resolved

		r.tools = append(r.tools, d)
		r.byName[d.Name] = d
	}

	return r, nil
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// List returns the descriptors in registration order.
func (r *Registry) List() []*Descriptor {
	out := make([]*Descriptor, len(r.tools))
	copy(out, r.tools)
	return out
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.tools))
	for i, d := range r.tools {
		names[i] = d.Name
	}
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.tools)
}

// Decode validates raw against the named tool's schema and unmarshals it into T.
func Decode[T any](r *Registry, name string, raw json.RawMessage) (T, error) {
	var out T

	d, ok := r.Lookup(name)
	if !ok {
		return out, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if err := d.Validate(raw); err != nil {
		return out, err
	}
	if err := json.Unmarshal(normalizeArgs(raw), &out); err != nil {
		return out, &ValidationError{Tool: name, Detail: err.Error(), Err: err}
	}
	return out, nil
}

func normalizeArgs(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage("{}")
	}
	return trimmed
}

func decodeInstance(raw json.RawMessage) (any, error) {
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, fmt.Errorf("arguments are not valid JSON: %w", err)
	}
	return instance, nil
}
