// SPDX-License-Identifier: MPL-2.0

package runtime

// Result is the outcome of one ExecuteCapture call.
type Result struct {
	// ExitCode is the process exit status.
	ExitCode ExitCode
	// Error is set for failures that are not a plain non-zero exit
	// (missing shell, parse errors, spawn failures).
	Error error
	// Output is the captured stdout.
	Output string
	// ErrOutput is the captured stderr.
	ErrOutput string
}

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// Success returns true if the command exited 0 without an error.
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess() && r.Error == nil
}
