// SPDX-License-Identifier: MPL-2.0

package benchmark

import (
	"errors"
	"fmt"
)

// ErrExtraction is the sentinel wrapped by every ExtractionError.
var ErrExtraction = errors.New("no valid timing")

// ExtractionError reports a backend whose build succeeded but whose result
// cannot be used as a timing sample.
type ExtractionError struct {
	BackendID string
	Reason    string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("backend %s: %s", e.BackendID, e.Reason)
}

// Unwrap returns ErrExtraction.
func (e *ExtractionError) Unwrap() error { return ErrExtraction }
