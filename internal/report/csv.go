// SPDX-License-Identifier: MPL-2.0

package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shakebench/shakebench/internal/bundler"
	"github.com/shakebench/shakebench/internal/series"
)

// csvTimeLayout is ISO 8601 basic format, which is safe in file names on
// every platform.
const csvTimeLayout = "20060102T150405.000Z"

// ErrHeaderMismatch is returned when a CSV header does not match the registry.
var ErrHeaderMismatch = errors.New("CSV header does not match backend registry")

// CSVFilename returns "results-<timestamp>.csv" for t.
func CSVFilename(t time.Time) string {
	return "results-" + t.UTC().Format(csvTimeLayout) + ".csv"
}

// WriteCSV writes one header row of short labels in registry order and one
// row per repetition. Null samples are empty cells.
func WriteCSV(w io.Writer, reg *bundler.Registry, s *series.SampleSeries) error {
	cw := csv.NewWriter(w)
	descs := reg.All()

	header := make([]string, len(descs))
	for i, d := range descs {
		header[i] = d.ShortLabel()
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(descs))
	for _, run := range s.Runs {
		for i, d := range descs {
			row[i] = ""
			if v := run[d.ID]; v != nil {
				row[i] = strconv.FormatFloat(*v, 'f', -1, 64)
			}
		}
		if len(row) == 1 && row[0] == "" {
			// A lone empty field would be written as a blank line, which
			// readers skip.
			cw.Flush()
			if _, err := io.WriteString(w, "\"\"\n"); err != nil {
				return err
			}
			continue
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ParseCSV reads a CSV produced by WriteCSV. The header must list reg's
// short labels in registry order.
func ParseCSV(r io.Reader, reg *bundler.Registry) (*series.SampleSeries, error) {
	cr := csv.NewReader(r)
	descs := reg.All()
	cr.FieldsPerRecord = len(descs)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, d := range descs {
		if header[i] != d.ShortLabel() {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrHeaderMismatch, i+1, header[i], d.ShortLabel())
		}
	}

	s := series.New(reg.IDs())
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		sample := make(series.RunSample, len(descs))
		for i, d := range descs {
			if rec[i] == "" {
				sample[d.ID] = nil
				continue
			}
			v, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d, column %q: %w", line, d.ShortLabel(), err)
			}
			sample[d.ID] = series.Ms(v)
		}
		s.Append(sample)
	}
	return s, nil
}

// SaveCSV writes the series to dir/CSVFilename(t), creating dir if needed.
// Failures are returned as *WriteError.
func SaveCSV(dir string, t time.Time, reg *bundler.Registry, s *series.SampleSeries) (string, error) {
	path := filepath.Join(dir, CSVFilename(t))

	var buf bytes.Buffer
	if err := WriteCSV(&buf, reg, s); err != nil {
		return "", &WriteError{Path: path, Cause: err}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &WriteError{Path: path, Cause: err}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", &WriteError{Path: path, Cause: err}
	}
	return path, nil
}

// LoadCSV opens and parses a CSV results file.
func LoadCSV(path string, reg *bundler.Registry) (*series.SampleSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := ParseCSV(f, reg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
