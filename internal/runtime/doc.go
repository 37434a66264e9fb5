// SPDX-License-Identifier: MPL-2.0

// Package runtime runs backend command lines and captures their output.
//
// Two runtimes are provided: "native" hands the command line to the host
// shell through os/exec, and "virtual" interprets it with the embedded
// mvdan/sh interpreter so the same command line works on hosts without a
// POSIX shell. External programs (npx, bun, ...) are still executed as
// real subprocesses in both cases.
package runtime
