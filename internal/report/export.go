// SPDX-License-Identifier: MPL-2.0

package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/shakebench/shakebench/internal/stats"
)

// Export formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrUnknownFormat is returned for an unsupported export format.
var ErrUnknownFormat = errors.New("unknown export format")

type (
	// Format is a structured export format.
	Format string

	// Document is the structured form of a session's results.
	Document struct {
		Runs     int                        `json:"runs" yaml:"runs" toml:"runs"`
		Backends []stats.AggregateStatistic `json:"backends" yaml:"backends" toml:"backends"`
		// Missing lists backends without any valid sample.
		Missing []string `json:"missing,omitempty" yaml:"missing,omitempty" toml:"missing,omitempty"`
	}
)

// Formats returns the supported structured formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatTOML}
}

// Export encodes doc to w in format.
func Export(w io.Writer, format Format, doc Document) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
