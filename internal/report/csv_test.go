// SPDX-License-Identifier: MPL-2.0

package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/shakebench/shakebench/internal/bundler"
	"github.com/shakebench/shakebench/internal/series"
)

func testRegistry(t testing.TB, ids ...string) *bundler.Registry {
	t.Helper()
	descs := make([]bundler.Descriptor, len(ids))
	for i, id := range ids {
		descs[i] = bundler.Descriptor{ID: id, Package: "@scope/" + id, Version: "^1.2.3"}
	}
	reg, err := bundler.NewRegistry(descs...)
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, "esbuild", "vite")
	s := series.New(reg.IDs())
	s.Append(series.RunSample{"esbuild": series.Ms(12.5), "vite": nil})
	s.Append(series.RunSample{"esbuild": series.Ms(13), "vite": series.Ms(101.25)})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, reg, s); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	want := "@scope/esbuild@^1.2.3,@scope/vite@^1.2.3\n12.5,\n13,101.25\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("WriteCSV() mismatch (-want +got):\n%s", diff)
	}
}

func TestCSV_RoundTripSingleColumnNulls(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, "only")
	s := series.New(reg.IDs())
	s.Append(series.RunSample{"only": nil})
	s.Append(series.RunSample{"only": series.Ms(4)})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, reg, s); err != nil {
		t.Fatal(err)
	}
	got, err := ParseCSV(&buf, reg)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if diff := cmp.Diff(s.Runs, got.Runs); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCSV_RoundTripProperty(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, "a", "b", "c")

	cell := gen.PtrOf(gen.Float64Range(0, 1e5))
	row := gen.SliceOfN(3, cell)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("parse(write(s)) == s", prop.ForAll(
		func(rows [][]*float64) bool {
			s := series.New(reg.IDs())
			for _, r := range rows {
				s.Append(series.RunSample{"a": r[0], "b": r[1], "c": r[2]})
			}

			var buf bytes.Buffer
			if err := WriteCSV(&buf, reg, s); err != nil {
				return false
			}
			got, err := ParseCSV(&buf, reg)
			if err != nil {
				return false
			}
			return cmp.Equal(s.Runs, got.Runs)
		},
		gen.SliceOf(row),
	))

	properties.TestingRun(t)
}

func TestParseCSV_Errors(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, "a", "b")

	tests := []struct {
		name  string
		input string
		is    error
	}{
		{"reordered header", "@scope/b@^1.2.3,@scope/a@^1.2.3\n1,2\n", ErrHeaderMismatch},
		{"bad number", "@scope/a@^1.2.3,@scope/b@^1.2.3\n1,fast\n", nil},
		{"wrong field count", "@scope/a@^1.2.3,@scope/b@^1.2.3\n1\n", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseCSV(strings.NewReader(tt.input), reg)
			if err == nil {
				t.Fatal("ParseCSV() error = nil")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("error = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestCSVFilename(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 3, 4, 5, 6, 7, 890_000_000, time.FixedZone("CET", 3600))
	if got, want := CSVFilename(ts), "results-20250304T040607.890Z.csv"; got != want {
		t.Errorf("CSVFilename() = %q, want %q", got, want)
	}
}

func TestSaveCSV(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, "a", "b")
	s := series.New(reg.IDs())
	s.Append(series.RunSample{"a": series.Ms(1), "b": series.Ms(2)})

	dir := filepath.Join(t.TempDir(), "benchmarks")
	path, err := SaveCSV(dir, time.Unix(0, 0), reg, s)
	if err != nil {
		t.Fatalf("SaveCSV() error = %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("path = %q, want it under %q", path, dir)
	}

	got, err := LoadCSV(path, reg)
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}
	if diff := cmp.Diff(s.Runs, got.Runs); diff != "" {
		t.Errorf("LoadCSV() mismatch (-want +got):\n%s", diff)
	}

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = SaveCSV(filepath.Join(blocker, "sub"), time.Unix(0, 0), reg, s)
	var writeErr *WriteError
	if !errors.As(err, &writeErr) || !errors.Is(err, ErrReportWrite) {
		t.Errorf("SaveCSV() into a file error = %v, want *WriteError", err)
	}
}
