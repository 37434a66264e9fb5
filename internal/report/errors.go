// SPDX-License-Identifier: MPL-2.0

package report

import (
	"errors"
	"fmt"
)

var (
	// ErrReportWrite is the sentinel wrapped by every WriteError.
	ErrReportWrite = errors.New("failed to write report")
	// ErrAnchorNotFound is returned when a document anchor is absent. The
	// affected section is left unmodified.
	ErrAnchorNotFound = errors.New("report anchor not found")
)

// WriteError reports a failed write of a CSV, document or export file.
type WriteError struct {
	Path  string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Cause)
}

// Unwrap returns both ErrReportWrite and the cause.
func (e *WriteError) Unwrap() []error { return []error{ErrReportWrite, e.Cause} }
