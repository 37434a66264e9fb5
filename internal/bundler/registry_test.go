// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDescriptor_Labels(t *testing.T) {
	t.Parallel()

	d := Descriptor{ID: "rspack", Package: "@rspack/core", Version: "^1.4.0"}
	if got, want := d.ShortLabel(), "@rspack/core@^1.4.0"; got != want {
		t.Errorf("ShortLabel() = %q, want %q", got, want)
	}
	if got, want := d.LongLabel(), "rspack (@rspack/core@^1.4.0)"; got != want {
		t.Errorf("LongLabel() = %q, want %q", got, want)
	}
}

func TestNewRegistry_RejectsDuplicatesAndEmptyIDs(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(Descriptor{ID: "vite"}, Descriptor{ID: "vite"})
	if !errors.Is(err, ErrDuplicateBackend) {
		t.Errorf("NewRegistry(dup) error = %v, want ErrDuplicateBackend", err)
	}

	_, err = NewRegistry(Descriptor{ID: "  "})
	if !errors.Is(err, ErrEmptyBackendID) {
		t.Errorf("NewRegistry(empty) error = %v, want ErrEmptyBackendID", err)
	}
}

func TestRegistry_SelectKeepsRegistryOrder(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(Resolve(DefaultCatalogue(), nil, "")...)
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}

	sub, err := reg.Select([]string{"vite", "esbuild"})
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if diff := cmp.Diff([]string{"esbuild", "vite"}, sub.IDs()); diff != "" {
		t.Errorf("Select() ids mismatch (-want +got):\n%s", diff)
	}

	same, err := reg.Select(nil)
	if err != nil || same != reg {
		t.Errorf("Select(nil) should return the registry itself")
	}

	_, err = reg.Select([]string{"webpack"})
	var unknown *UnknownBackendError
	if !errors.As(err, &unknown) || !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("Select(unknown) error = %v, want *UnknownBackendError", err)
	}
	if unknown.ID != "webpack" || len(unknown.Known) != 7 {
		t.Errorf("UnknownBackendError = %+v", unknown)
	}
}

func TestRegistry_AllReturnsCopy(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(Descriptor{ID: "rollup", Package: "rollup", Version: "4.0.0"})
	if err != nil {
		t.Fatal(err)
	}
	all := reg.All()
	all[0].ID = "mutated"

	if d, ok := reg.Get("rollup"); !ok || d.ID != "rollup" {
		t.Errorf("mutating All() result leaked into registry: %+v", d)
	}
	if _, ok := reg.Get("mutated"); ok {
		t.Error("Get(mutated) should not be found")
	}
}
