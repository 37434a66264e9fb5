// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownBackend is the sentinel wrapped by UnknownBackendError.
	ErrUnknownBackend = errors.New("unknown backend")
	// ErrDuplicateBackend is returned when two descriptors share an id.
	ErrDuplicateBackend = errors.New("duplicate backend id")
	// ErrEmptyBackendID is returned for a descriptor without an id.
	ErrEmptyBackendID = errors.New("empty backend id")
)

type (
	// Descriptor identifies one backend. It is immutable once built.
	Descriptor struct {
		// ID is the registry-unique backend name, e.g. "rspack".
		ID string `json:"id" yaml:"id" toml:"id"`
		// Package is the distributable package, e.g. "@rspack/core".
		Package string `json:"package" yaml:"package" toml:"package"`
		// Version is the version range declared in package.json.
		Version string `json:"version" yaml:"version" toml:"version"`
		// Installed is the version found under node_modules, if any.
		Installed string `json:"installed,omitempty" yaml:"installed,omitempty" toml:"installed,omitempty"`
	}

	// Registry is an ordered set of descriptors with unique ids.
	Registry struct {
		descs []Descriptor
		index map[string]int
	}

	// UnknownBackendError is returned when an id is not registered.
	UnknownBackendError struct {
		ID    string
		Known []string
	}
)

// ShortLabel is "package@version". It is the CSV header cell for the backend.
func (d Descriptor) ShortLabel() string {
	return d.Package + "@" + d.Version
}

// LongLabel is "id (package@version)".
func (d Descriptor) LongLabel() string {
	return d.ID + " (" + d.ShortLabel() + ")"
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown backend %q (known: %s)", e.ID, strings.Join(e.Known, ", "))
}

// Unwrap returns ErrUnknownBackend for errors.Is.
func (e *UnknownBackendError) Unwrap() error { return ErrUnknownBackend }

// NewRegistry builds a registry preserving the given order.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	r := &Registry{
		descs: make([]Descriptor, 0, len(descs)),
		index: make(map[string]int, len(descs)),
	}
	for _, d := range descs {
		if strings.TrimSpace(d.ID) == "" {
			return nil, ErrEmptyBackendID
		}
		if _, dup := r.index[d.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBackend, d.ID)
		}
		r.index[d.ID] = len(r.descs)
		r.descs = append(r.descs, d)
	}
	return r, nil
}

// All returns the descriptors in registry order.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, len(r.descs))
	copy(out, r.descs)
	return out
}

// IDs returns the backend ids in registry order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.descs))
	for i, d := range r.descs {
		ids[i] = d.ID
	}
	return ids
}

// Len returns the number of registered backends.
func (r *Registry) Len() int { return len(r.descs) }

// Get looks up a descriptor by id.
func (r *Registry) Get(id string) (Descriptor, bool) {
	i, ok := r.index[id]
	if !ok {
		return Descriptor{}, false
	}
	return r.descs[i], true
}

// Select returns a registry restricted to ids, keeping registry order
// (not the order of ids). An empty ids returns r itself.
func (r *Registry) Select(ids []string) (*Registry, error) {
	if len(ids) == 0 {
		return r, nil
	}

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := r.index[id]; !ok {
			return nil, &UnknownBackendError{ID: id, Known: r.IDs()}
		}
		want[id] = true
	}

	picked := make([]Descriptor, 0, len(ids))
	for _, d := range r.descs {
		if want[d.ID] {
			picked = append(picked, d)
		}
	}
	return NewRegistry(picked...)
}
